package models

import "time"

// Tag labels events by topic and users by interest
type Tag struct {
	ID       int64       `json:"id" db:"id"`
	Category TagCategory `json:"category" db:"category"`
	Name     string      `json:"name" db:"name"`
}

// University is a school whose email domains prove student status
type University struct {
	Name    string   `json:"name" db:"name"`
	Domains []string `json:"domains" db:"domains"`
	Logo    *string  `json:"logo,omitempty" db:"logo"`
}

// VerificationCode is a pending student-email verification for a user.
// Only the bcrypt hash of the code is kept.
type VerificationCode struct {
	UserID     int64     `json:"userId" db:"user_id"`
	CodeHash   string    `json:"-" db:"code_hash"`
	Email      string    `json:"email" db:"email"`
	University string    `json:"university" db:"university"`
	Attempts   int       `json:"attempts" db:"attempts"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
