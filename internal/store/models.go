package store

import "time"

type Account struct {
	ID             string
	Username       string
	Email          string
	PasswordDigest string
	CreatedAt      time.Time
}

// NewRecord is the input for History.Save.
type NewRecord struct {
	AccountID  string
	Filename   string
	MatchScore int
	// JobTitle is optional; an empty title is stored as NULL.
	JobTitle string
	// Payload is the serialised assessment.
	Payload []byte
}

// Record is one persisted assessment.
type Record struct {
	ID         string
	AccountID  string
	Filename   string
	MatchScore int
	JobTitle   string
	Payload    []byte
	CreatedAt  time.Time
}

// Stats summarises an account's history. Average, Max and Min are zero when
// Count is zero.
type Stats struct {
	Count   int
	Average float64
	Max     int
	Min     int
}
