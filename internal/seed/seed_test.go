package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	appModels "github.com/yigit/peers/internal/app/models"
)

type recordingStore struct {
	tags         []string
	universities []string
	failOn       string
}

func (s *recordingStore) Upsert(_ context.Context, tag *appModels.Tag) error {
	if tag.Name == s.failOn {
		return errors.New("boom")
	}
	s.tags = append(s.tags, tag.Name)
	return nil
}

type recordingUniversities struct{ names []string }

func (s *recordingUniversities) Upsert(_ context.Context, u *appModels.University) error {
	s.names = append(s.names, u.Name)
	return nil
}

func TestRunUpsertsEverything(t *testing.T) {
	tags := &recordingStore{}
	unis := &recordingUniversities{}

	err := Run(context.Background(), tags, unis, zerolog.Nop())
	assert.NoError(t, err)
	assert.Len(t, tags.tags, len(DefaultTags))
	assert.Len(t, unis.names, len(DefaultUniversities))
}

func TestRunContinuesPastFailures(t *testing.T) {
	tags := &recordingStore{failOn: "music"}
	unis := &recordingUniversities{}

	err := Run(context.Background(), tags, unis, zerolog.Nop())
	assert.Error(t, err)
	assert.Len(t, tags.tags, len(DefaultTags)-1)
	assert.NotContains(t, tags.tags, "music")
	assert.Len(t, unis.names, len(DefaultUniversities), "universities are still seeded")
}

func TestDefaultTagsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, tag := range DefaultTags {
		assert.False(t, seen[tag.Name], tag.Name)
		seen[tag.Name] = true
	}
}
