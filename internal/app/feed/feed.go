// Package feed builds the personalized event and host recommendations from
// rows already loaded out of the store.
package feed

import (
	"slices"
	"time"

	"github.com/yigit/peers/internal/app/models"
)

// FilterUpcoming returns the events that have not ended at now, sorted by
// start date. Events with equal dates keep their input order. The input
// slice is not modified.
func FilterUpcoming(events []models.Event, now time.Time) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if now.After(e.EndsAt()) {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b models.Event) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// MergeEvents concatenates the result sets of several queries, keeping the
// first occurrence of each event id.
func MergeEvents(lists ...[]models.Event) []models.Event {
	seen := make(map[int64]struct{})
	var out []models.Event
	for _, list := range lists {
		for _, e := range list {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// EventInput is everything RecommendEvents needs about the requesting user
type EventInput struct {
	UserID         int64
	AttendedHosts  []models.Host
	InterestTagIDs []int64
	Candidates     []models.Event
}

// RecommendEvents selects the candidates hosted by someone the user attended
// before or tagged with one of the user's interests. Users with neither
// history nor interests get every candidate. Events hosted by the user are
// always dropped, and the result only holds events that have not ended.
func RecommendEvents(in EventInput, now time.Time) []models.Event {
	hosts := hostSet(in.AttendedHosts)
	interests := idSet(in.InterestTagIDs)
	fallback := len(hosts) == 0 && len(interests) == 0

	var picked []models.Event
	for _, e := range MergeEvents(in.Candidates) {
		if e.Host.IsUser(in.UserID) {
			continue
		}
		if fallback || hosts[e.Host] || anyIn(e.TagIDs(), interests) {
			picked = append(picked, e)
		}
	}
	return FilterUpcoming(picked, now)
}

// HostCandidate is a user or organization together with what it has hosted
type HostCandidate struct {
	Host         models.Host `json:"host"`
	Name         string      `json:"name"`
	Image        *string     `json:"image,omitempty"`
	University   *string     `json:"university,omitempty"`
	HostedEvents int         `json:"hostedEvents"`
	HostedTagIDs []int64     `json:"-"`
}

// HostInput is everything RecommendHosts needs about the requesting user
type HostInput struct {
	UserID         int64
	University     *string
	AttendedHosts  []models.Host
	InterestTagIDs []int64
	Organizations  []HostCandidate
	Users          []HostCandidate
}

// RecommendHosts returns the organizations and users that have hosted at
// least one event and either hosted an event the user attended, share the
// user's university, or hosted an event carrying one of the user's
// interests. The requesting user is never recommended. The result is
// deduplicated by host and carries no ranking.
func RecommendHosts(in HostInput) []HostCandidate {
	hosts := hostSet(in.AttendedHosts)
	interests := idSet(in.InterestTagIDs)

	qualifies := func(c HostCandidate) bool {
		if c.HostedEvents <= 0 {
			return false
		}
		if hosts[c.Host] {
			return true
		}
		if in.University != nil && c.University != nil && *in.University == *c.University {
			return true
		}
		return anyIn(c.HostedTagIDs, interests)
	}

	seen := make(map[models.Host]struct{})
	out := []HostCandidate{}
	add := func(c HostCandidate) {
		if _, ok := seen[c.Host]; ok {
			return
		}
		seen[c.Host] = struct{}{}
		out = append(out, c)
	}

	for _, org := range in.Organizations {
		if qualifies(org) {
			add(org)
		}
	}
	for _, u := range in.Users {
		if u.Host.IsUser(in.UserID) {
			continue
		}
		if qualifies(u) {
			add(u)
		}
	}
	return out
}

func hostSet(hosts []models.Host) map[models.Host]bool {
	set := make(map[models.Host]bool, len(hosts))
	for _, h := range hosts {
		set[h] = true
	}
	return set
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func anyIn(ids []int64, set map[int64]bool) bool {
	for _, id := range ids {
		if set[id] {
			return true
		}
	}
	return false
}
