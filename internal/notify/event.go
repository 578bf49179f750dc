package notify

import (
	"encoding/json"
	"strconv"
)

// DonationEventPrefix is followed by the account id to form the event name
// clients listen for.
const DonationEventPrefix = "donation-update-"

// Event is a named message fanned out to every connected session.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// DonationPayload is the data carried by a donation-update event.
type DonationPayload struct {
	Amount float64 `json:"amount"`
}

// DonationEventName returns the topic for donations to accountID.
func DonationEventName(accountID int64) string {
	return DonationEventPrefix + strconv.FormatInt(accountID, 10)
}

// NewDonationEvent builds the event broadcast after a donation is recorded.
func NewDonationEvent(accountID int64, amount float64) Event {
	// A struct with one float field cannot fail to marshal.
	data, _ := json.Marshal(DonationPayload{Amount: amount})
	return Event{Name: DonationEventName(accountID), Data: data}
}
