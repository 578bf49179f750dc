package services

import (
	"context"

	"givetrack/internal/core"
	"givetrack/internal/notify"
)

// AccountStore persists accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, s core.Signup) (core.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (core.Account, error)
	GetAccount(ctx context.Context, id int64) (core.Account, error)
}

// ContributionStore appends contribution records.
type ContributionStore interface {
	InsertDonation(ctx context.Context, accountID int64, amount float64, date string) (core.Donation, error)
	InsertVolunteerLog(ctx context.Context, accountID int64, hours float64, date string) (core.VolunteerLog, error)
	InsertCausePledge(ctx context.Context, accountID int64, causeName string) (core.CausePledge, error)
}

// AggregateStore answers the dashboard's per-account queries.
type AggregateStore interface {
	GetAccount(ctx context.Context, id int64) (core.Account, error)
	SumDonations(ctx context.Context, accountID int64) (float64, error)
	SumVolunteerHours(ctx context.Context, accountID int64) (float64, error)
	ListCauses(ctx context.Context, accountID int64) ([]string, error)
}

// Publisher fans an event out to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, e notify.Event) (int, error)
}

// EventRelay mirrors donation events to an external broker.
type EventRelay interface {
	PublishDonation(ctx context.Context, event string, d core.Donation) error
}
