package services

import (
	"context"
	"fmt"
	"time"

	"givetrack/internal/core"
	"givetrack/internal/log"
	"givetrack/internal/notify"
)

// ContributionService appends donations, volunteer hours and cause pledges.
// Recording a donation also notifies live subscribers and, when configured,
// the external relay.
type ContributionService struct {
	store     ContributionStore
	publisher Publisher
	relay     EventRelay
	now       func() time.Time
	logger    *log.Logger
}

func NewContributionService(store ContributionStore, publisher Publisher, relay EventRelay, logger *log.Logger) *ContributionService {
	if logger == nil {
		logger = log.Nop()
	}
	return &ContributionService{
		store:     store,
		publisher: publisher,
		relay:     relay,
		now:       time.Now,
		logger:    logger.WithComponent(log.ComponentContribution),
	}
}

// RecordDonation stores a donation dated now and broadcasts
// donation-update-{accountID} with the amount. accountID is not checked
// against existing accounts.
func (s *ContributionService) RecordDonation(ctx context.Context, accountID int64, amount float64) (core.Donation, error) {
	donation, err := s.store.InsertDonation(ctx, accountID, amount, core.Timestamp(s.now()))
	if err != nil {
		return core.Donation{}, fmt.Errorf("record donation: %w", err)
	}

	event := notify.NewDonationEvent(accountID, amount)
	s.publishEvent(ctx, event)
	s.relayDonation(ctx, event.Name, donation)

	s.logger.InfoContext(ctx, "Donation recorded",
		"id", donation.ID,
		log.FieldUserID, accountID,
		log.FieldAmount, amount,
		log.FieldOperation, log.OpDonate)

	return donation, nil
}

func (s *ContributionService) LogVolunteerHours(ctx context.Context, accountID int64, hours float64) (core.VolunteerLog, error) {
	entry, err := s.store.InsertVolunteerLog(ctx, accountID, hours, core.Timestamp(s.now()))
	if err != nil {
		return core.VolunteerLog{}, fmt.Errorf("log volunteer hours: %w", err)
	}

	s.logger.InfoContext(ctx, "Volunteer hours logged",
		"id", entry.ID,
		log.FieldUserID, accountID,
		log.FieldHours, hours,
		log.FieldOperation, log.OpVolunteer)

	return entry, nil
}

// PledgeCause associates a cause with an account. Pledging the same cause
// twice stores two rows.
func (s *ContributionService) PledgeCause(ctx context.Context, accountID int64, causeName string) (core.CausePledge, error) {
	pledge, err := s.store.InsertCausePledge(ctx, accountID, causeName)
	if err != nil {
		return core.CausePledge{}, fmt.Errorf("pledge cause: %w", err)
	}

	s.logger.InfoContext(ctx, "Cause pledged",
		"id", pledge.ID,
		log.FieldUserID, accountID,
		log.FieldCause, causeName,
		log.FieldOperation, log.OpPledge)

	return pledge, nil
}

func (s *ContributionService) publishEvent(ctx context.Context, event notify.Event) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, event); err != nil {
		// Fire-and-forget: the donation is already stored
		s.logger.ErrorContext(ctx, "Failed to publish donation event",
			log.FieldEvent, event.Name,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err.Error())
	}
}

func (s *ContributionService) relayDonation(ctx context.Context, event string, d core.Donation) {
	if s.relay == nil {
		return
	}
	if err := s.relay.PublishDonation(ctx, event, d); err != nil {
		s.logger.ErrorContext(ctx, "Failed to relay donation event",
			log.FieldEvent, event,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err.Error())
	}
}
