package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"givetrack/internal/core"
	"givetrack/internal/log"
)

// DashboardService computes per-account aggregates. Every call rescans the
// contribution tables; nothing is cached.
type DashboardService struct {
	store  AggregateStore
	logger *log.Logger
}

func NewDashboardService(store AggregateStore, logger *log.Logger) *DashboardService {
	if logger == nil {
		logger = log.Nop()
	}
	return &DashboardService{
		store:  store,
		logger: logger.WithComponent(log.ComponentDashboard),
	}
}

// GetDashboard returns the totals and cause list for an account, or
// core.ErrNotFound when the account does not exist, whatever contribution
// rows reference its id.
//
// The three sub-aggregates run concurrently and the first failure fails the
// whole call; a partial dashboard is never returned. They are separate reads,
// so a concurrent write can make the snapshot inconsistent across tables.
func (s *DashboardService) GetDashboard(ctx context.Context, accountID int64) (core.Dashboard, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("get dashboard: %w", err)
	}

	dash := core.Dashboard{
		User: core.AccountSummary{Username: account.Username, Email: account.Email},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.store.SumDonations(gctx, accountID)
		dash.TotalDonations = total
		return err
	})
	g.Go(func() error {
		hours, err := s.store.SumVolunteerHours(gctx, accountID)
		dash.TotalHours = hours
		return err
	})
	g.Go(func() error {
		causes, err := s.store.ListCauses(gctx, accountID)
		dash.Causes = causes
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Dashboard aggregation failed",
			log.FieldUserID, accountID,
			log.FieldOperation, log.OpDashboard,
			log.FieldError, err.Error())
		return core.Dashboard{}, fmt.Errorf("get dashboard: %w", err)
	}

	if dash.Causes == nil {
		dash.Causes = []string{}
	}
	return dash, nil
}
