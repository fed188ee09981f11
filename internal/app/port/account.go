package port

// AccountProvider exposes the operator account on whose behalf mutations are
// submitted. Mutations and balance reads are disabled while no account is
// known.
type AccountProvider interface {
	// CurrentAccount returns the account address and whether one is
	// configured.
	CurrentAccount() (string, bool)
}
