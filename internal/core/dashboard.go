package core

// AccountSummary is the public part of an account shown on its dashboard.
type AccountSummary struct {
	Username string
	Email    string
}

// Dashboard is a point-in-time aggregate of one account's contributions.
type Dashboard struct {
	User           AccountSummary
	TotalDonations float64
	TotalHours     float64
	Causes         []string // insertion order, duplicates kept
}
