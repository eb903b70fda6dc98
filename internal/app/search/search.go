// Package search matches free-text queries against events, organizations
// and users. A query matches an entity when any of its whitespace-separated
// tokens is a case-insensitive substring of any searched field.
package search

import (
	"strings"

	"github.com/yigit/peers/internal/app/models"
)

// Query is a parsed search query
type Query struct {
	tokens []string
}

// Parse splits q on whitespace and lower-cases each token
func Parse(q string) Query {
	fields := strings.Fields(q)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return Query{tokens: tokens}
}

// Tokens returns the lower-cased tokens of the query
func (q Query) Tokens() []string {
	return q.tokens
}

// Empty reports whether the query has no tokens. An empty query matches everything.
func (q Query) Empty() bool {
	return len(q.tokens) == 0
}

// Match reports whether any token is contained in any of the fields
func (q Query) Match(fields ...string) bool {
	if q.Empty() {
		return true
	}
	for _, field := range fields {
		if field == "" {
			continue
		}
		lower := strings.ToLower(field)
		for _, tok := range q.tokens {
			if strings.Contains(lower, tok) {
				return true
			}
		}
	}
	return false
}

// FilterEvents keeps events whose title, description or tag names match
func FilterEvents(q Query, events []models.Event) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		fields := []string{e.Title, e.Description}
		for _, t := range e.Tags {
			fields = append(fields, t.Name)
		}
		if q.Match(fields...) {
			out = append(out, e)
		}
	}
	return out
}

// FilterOrganizations keeps organizations whose name or description match
func FilterOrganizations(q Query, orgs []models.Organization) []models.Organization {
	out := make([]models.Organization, 0, len(orgs))
	for _, o := range orgs {
		if q.Match(o.Name, o.Description) {
			out = append(out, o)
		}
	}
	return out
}

// FilterUsers keeps users whose first name, last name, username or bio match
func FilterUsers(q Query, users []models.User) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if q.Match(deref(u.FirstName), deref(u.LastName), u.Username, deref(u.Bio)) {
			out = append(out, u)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
