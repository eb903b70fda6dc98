package models

import "time"

// CallSession is a finished stay of a user in an online event's call
type CallSession struct {
	ID       int64     `json:"id" db:"id"`
	EventID  int64     `json:"eventId" db:"event_id"`
	UserID   int64     `json:"userId" db:"user_id"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
	LeftAt   time.Time `json:"leftAt" db:"left_at"`
	Points   int       `json:"points" db:"points"`
}
