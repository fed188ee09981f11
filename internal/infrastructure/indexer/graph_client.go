// Package indexer provides the GraphQL client for the protocol indexer.
package indexer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// graphClientImpl implements port.IndexerClient over plain GraphQL POST
// requests.
type graphClientImpl struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGraphClient creates a new GraphQL indexer client.
func NewGraphClient(url string, timeout time.Duration, logger *zap.Logger) port.IndexerClient {
	return &graphClientImpl{
		client:  &fasthttp.Client{},
		url:     strings.TrimRight(url, "/"),
		timeout: timeout,
		logger:  logger.Named("IndexerClient"),
	}
}

type graphRequest struct {
	Query string `json:"query"`
}

type graphError struct {
	Message string `json:"message"`
}

type graphResponse struct {
	Data   jsoniter.RawMessage `json:"data"`
	Errors []graphError        `json:"errors"`
}

// Query implements the port.IndexerClient interface.
func (c *graphClientImpl) Query(ctx context.Context, document string, out interface{}) error {
	body, err := json.Marshal(graphRequest{Query: document})
	if err != nil {
		return fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	c.logger.Debug("Querying indexer", zap.String("url", c.url))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute indexer request", zap.String("url", c.url), zap.Error(err))
			return fmt.Errorf("failed to execute indexer request to %s: %w", c.url, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute indexer request (with default timeout)", zap.String("url", c.url), zap.Error(err))
			return fmt.Errorf("failed to execute indexer request to %s with default timeout: %w", c.url, err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Indexer request failed",
			zap.String("url", c.url),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return fmt.Errorf("indexer request to %s failed with status %d: %s", c.url, resp.StatusCode(), string(rawBody))
	}

	var wrapper graphResponse
	if err := json.Unmarshal(rawBody, &wrapper); err != nil {
		c.logger.Error("Failed to unmarshal indexer response",
			zap.String("url", c.url),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return fmt.Errorf("failed to unmarshal indexer response from %s: %w", c.url, err)
	}
	if len(wrapper.Errors) > 0 {
		messages := make([]string, 0, len(wrapper.Errors))
		for _, e := range wrapper.Errors {
			messages = append(messages, e.Message)
		}
		return fmt.Errorf("indexer returned errors: %s", strings.Join(messages, "; "))
	}
	if wrapper.Data == nil {
		return fmt.Errorf("indexer returned no data")
	}

	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal indexer data: %w", err)
	}
	return nil
}
