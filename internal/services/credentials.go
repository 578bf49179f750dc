package services

import "givetrack/internal/core"

// CredentialChecker decides whether a supplied password unlocks an account.
type CredentialChecker interface {
	Matches(account core.Account, password string) bool
}

// PlaintextCredentials compares the stored password with plain equality:
// case-sensitive, no hashing and no constant-time comparison.
type PlaintextCredentials struct{}

func (PlaintextCredentials) Matches(account core.Account, password string) bool {
	return account.Password == password
}
