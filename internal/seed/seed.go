package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/peers/internal/app/models"
	appRepos "github.com/yigit/peers/internal/app/repositories"
)

// TagUpserter is satisfied by *repositories.TagRepository
type TagUpserter interface {
	Upsert(ctx context.Context, tag *appModels.Tag) error
}

// UniversityUpserter is satisfied by *repositories.UniversityRepository
type UniversityUpserter interface {
	Upsert(ctx context.Context, u *appModels.University) error
}

// DefaultTags are the tags events and interests can be labelled with
var DefaultTags = []appModels.Tag{
	{Category: appModels.TagCategoryAcademic, Name: "study-group"},
	{Category: appModels.TagCategoryAcademic, Name: "research"},
	{Category: appModels.TagCategoryAcademic, Name: "exam-prep"},
	{Category: appModels.TagCategoryArts, Name: "music"},
	{Category: appModels.TagCategoryArts, Name: "film"},
	{Category: appModels.TagCategoryArts, Name: "photography"},
	{Category: appModels.TagCategoryCareer, Name: "internships"},
	{Category: appModels.TagCategoryCareer, Name: "networking"},
	{Category: appModels.TagCategoryCulture, Name: "language-exchange"},
	{Category: appModels.TagCategoryCulture, Name: "food"},
	{Category: appModels.TagCategorySocial, Name: "party"},
	{Category: appModels.TagCategorySocial, Name: "board-games"},
	{Category: appModels.TagCategorySports, Name: "football"},
	{Category: appModels.TagCategorySports, Name: "running"},
	{Category: appModels.TagCategoryTechnology, Name: "programming"},
	{Category: appModels.TagCategoryTechnology, Name: "hackathon"},
	{Category: appModels.TagCategoryTechnology, Name: "ai"},
	{Category: appModels.TagCategoryWellness, Name: "yoga"},
	{Category: appModels.TagCategoryWellness, Name: "meditation"},
}

// DefaultUniversities are the schools whose email domains verify students
var DefaultUniversities = []appModels.University{
	{Name: "Stanford University", Domains: []string{"stanford.edu"}},
	{Name: "Massachusetts Institute of Technology", Domains: []string{"mit.edu"}},
	{Name: "University of California, Berkeley", Domains: []string{"berkeley.edu"}},
	{Name: "University of Toronto", Domains: []string{"utoronto.ca", "mail.utoronto.ca"}},
	{Name: "Middle East Technical University", Domains: []string{"metu.edu.tr"}},
	{Name: "Bogazici University", Domains: []string{"boun.edu.tr", "std.bogazici.edu.tr"}},
}

// CreateDefaultData upserts the default tags and universities. Failures
// are collected so one bad row does not stop the rest.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	return Run(ctx, repos.Tags, repos.Universities, lgr)
}

// Run upserts DefaultTags and DefaultUniversities through the given stores
func Run(ctx context.Context, tags TagUpserter, universities UniversityUpserter, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Tags/Universities)...")
	var finalErr error

	for _, tag := range DefaultTags {
		if err := tags.Upsert(ctx, &tag); err != nil {
			lgr.Error().Err(err).Str("tag", tag.Name).Msg("Error creating tag")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, u := range DefaultUniversities {
		if err := universities.Upsert(ctx, &u); err != nil {
			lgr.Error().Err(err).Str("university", u.Name).Msg("Error creating university")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().
		Int("tags", len(DefaultTags)).
		Int("universities", len(DefaultUniversities)).
		Msg("Default data check/creation finished.")
	return finalErr
}
