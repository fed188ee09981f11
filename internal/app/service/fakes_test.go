package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
)

// fakeChain is an in-memory port.ChainClient recording every interaction.
type fakeChain struct {
	mu sync.Mutex

	submitted  []entity.ContractCall
	submitErrs map[string]error // keyed by function name

	awaitCalls []entity.WaitOptions
	awaitErrs  []error // consumed in order; nil once exhausted

	readCalls   []entity.ContractCall
	readResults map[string][]interface{}
	readErr     error
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		submitErrs:  make(map[string]error),
		readResults: make(map[string][]interface{}),
	}
}

func (f *fakeChain) Submit(_ context.Context, call entity.ContractCall) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.submitErrs[call.Function]; err != nil {
		return "", err
	}
	f.submitted = append(f.submitted, call)
	return fmt.Sprintf("0xhash%d", len(f.submitted)), nil
}

func (f *fakeChain) AwaitConfirmation(_ context.Context, _ string, opts entity.WaitOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.awaitCalls = append(f.awaitCalls, opts)
	if len(f.awaitErrs) == 0 {
		return nil
	}
	err := f.awaitErrs[0]
	f.awaitErrs = f.awaitErrs[1:]
	return err
}

func (f *fakeChain) ReadContract(_ context.Context, call entity.ContractCall) ([]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls = append(f.readCalls, call)
	if f.readErr != nil {
		return nil, f.readErr
	}
	outputs, ok := f.readResults[call.Function]
	if !ok {
		return nil, fmt.Errorf("no fake result for %s", call.Function)
	}
	return outputs, nil
}

func (f *fakeChain) submittedFunctions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.submitted))
	for i, call := range f.submitted {
		out[i] = call.Function
	}
	return out
}

// fakeAccounts reports a connected account when address is non-empty.
type fakeAccounts struct {
	address string
}

func (f *fakeAccounts) CurrentAccount() (string, bool) {
	return f.address, f.address != ""
}

// fakeFees returns a canned quote and counts resolutions.
type fakeFees struct {
	quote entity.FeeQuote
	calls int
}

func (f *fakeFees) Resolve(_ context.Context, destinationEndpointID uint32, _ string, _ uint8, _ entity.TokenInfo) entity.FeeQuote {
	f.calls++
	quote := f.quote
	quote.DestinationEndpointID = destinationEndpointID
	return quote
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
