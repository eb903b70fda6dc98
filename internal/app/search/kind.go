package search

import (
	"strings"

	"github.com/yigit/peers/internal/pkg/apperrors"
)

// Kind selects which collections a search covers
type Kind string

const (
	KindAll           Kind = "all"
	KindEvents        Kind = "events"
	KindOrganizations Kind = "organizations"
	KindUsers         Kind = "users"
)

// ParseKind accepts the kind names case-insensitively. An empty string
// means KindAll.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAll, nil
	case KindAll, KindEvents, KindOrganizations, KindUsers:
		return k, nil
	}
	return "", apperrors.NewValidationError("kind must be one of all, events, organizations, users").
		WithDetails(map[string]interface{}{"field": "kind", "value": s})
}

// Includes reports whether a search of kind k covers other
func (k Kind) Includes(other Kind) bool {
	return k == KindAll || k == other
}
