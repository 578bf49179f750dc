package amqp

import (
	"encoding/json"
	"time"

	"givetrack/internal/core"
)

// DonationRecordedMessage mirrors a donation-update event for consumers
// outside this process.
type DonationRecordedMessage struct {
	Event     string    `json:"event"`
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Amount    float64   `json:"amount"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDonationRecordedMessage builds the relay message for a stored donation.
func NewDonationRecordedMessage(event string, d core.Donation) *DonationRecordedMessage {
	return &DonationRecordedMessage{
		Event:     event,
		ID:        d.ID,
		UserID:    d.AccountID,
		Amount:    d.Amount,
		Date:      d.Date,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DonationRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
