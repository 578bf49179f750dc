package services

import (
	"context"
	"errors"
	"fmt"

	"givetrack/internal/core"
	"givetrack/internal/log"
)

// AccountService creates accounts and checks credentials.
type AccountService struct {
	store       AccountStore
	credentials CredentialChecker
	logger      *log.Logger
}

func NewAccountService(store AccountStore, credentials CredentialChecker, logger *log.Logger) *AccountService {
	if credentials == nil {
		credentials = PlaintextCredentials{}
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &AccountService{
		store:       store,
		credentials: credentials,
		logger:      logger.WithComponent(log.ComponentAccount),
	}
}

// CreateAccount registers a new account. The returned account has its
// password cleared.
func (s *AccountService) CreateAccount(ctx context.Context, signup core.Signup) (core.Account, error) {
	account, err := s.store.CreateAccount(ctx, signup)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	s.logger.InfoContext(ctx, "Account created",
		log.FieldUserID, account.ID,
		log.FieldOperation, log.OpSignup)

	account.Password = ""
	return account, nil
}

// Authenticate returns the account whose stored email and password equal the
// supplied ones, or core.ErrInvalidCredentials. An absent field matches nothing.
func (s *AccountService) Authenticate(ctx context.Context, login core.Login) (core.Account, error) {
	if login.Email == nil || login.Password == nil {
		return core.Account{}, core.ErrInvalidCredentials
	}

	account, err := s.store.FindAccountByEmail(ctx, *login.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Account{}, core.ErrInvalidCredentials
		}
		return core.Account{}, fmt.Errorf("authenticate: %w", err)
	}

	if !s.credentials.Matches(account, *login.Password) {
		return core.Account{}, core.ErrInvalidCredentials
	}

	s.logger.DebugContext(ctx, "Account authenticated",
		log.FieldUserID, account.ID,
		log.FieldOperation, log.OpLogin)

	account.Password = ""
	return account, nil
}
