package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/pkg/apperrors"
)

func strPtr(s string) *string { return &s }

func TestParse(t *testing.T) {
	q := Parse("  Alice\tWORKSHOP \n")
	assert.Equal(t, []string{"alice", "workshop"}, q.Tokens())
	assert.False(t, q.Empty())
	assert.True(t, Parse("   ").Empty())
}

func TestMatchIsOrOfTokensAndFields(t *testing.T) {
	q := Parse("alice workshop")

	assert.True(t, q.Match("Alice's Morning Run"))
	assert.True(t, q.Match("Career", "Resume WORKSHOP"))
	assert.False(t, q.Match("Bob's Evening Walk", ""))
	assert.True(t, Parse("").Match("anything"))
}

func TestFilterEvents(t *testing.T) {
	events := []models.Event{
		{ID: 1, Title: "Alice's Morning Run"},
		{ID: 2, Title: "Chess night", Description: "bring a board"},
		{ID: 3, Title: "Study group", Tags: []models.Tag{{ID: 9, Name: "Workshop"}}},
	}

	got := FilterEvents(Parse("alice workshop"), events)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	assert.Len(t, FilterEvents(Parse(""), events), 3, "empty query returns everything")
	assert.Empty(t, FilterEvents(Parse("karaoke"), events))
}

func TestFilterOrganizations(t *testing.T) {
	orgs := []models.Organization{
		{ID: 1, Name: "Robotics Club", Description: "we build robots"},
		{ID: 2, Name: "Debate Society", Description: "Weekly debates"},
	}

	got := FilterOrganizations(Parse("ROBOT"), orgs)
	assert.Len(t, got, 1)
	assert.Equal(t, "Robotics Club", got[0].Name)
	assert.Len(t, FilterOrganizations(Parse(""), orgs), 2)
}

func TestFilterUsers(t *testing.T) {
	users := []models.User{
		{ID: 1, Username: "ada", FirstName: strPtr("Ada"), LastName: strPtr("Lovelace")},
		{ID: 2, Username: "grace", Bio: strPtr("compilers and navy")},
		{ID: 3, Username: "linus"},
	}

	got := FilterUsers(Parse("lovelace navy"), users)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"":              KindAll,
		"all":           KindAll,
		"Events":        KindEvents,
		" users ":       KindUsers,
		"organizations": KindOrganizations,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("tags")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	assert.True(t, KindAll.Includes(KindUsers))
	assert.True(t, KindEvents.Includes(KindEvents))
	assert.False(t, KindEvents.Includes(KindUsers))
}
