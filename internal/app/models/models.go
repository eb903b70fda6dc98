package models

// EventType defines how an event takes place
type EventType string

const (
	EventTypeInPerson    EventType = "IN_PERSON"
	EventTypeOnlineVideo EventType = "ONLINE_VIDEO"
	EventTypeOnlineAudio EventType = "ONLINE_AUDIO"
)

// Valid reports whether t is one of the known event types
func (t EventType) Valid() bool {
	switch t {
	case EventTypeInPerson, EventTypeOnlineVideo, EventTypeOnlineAudio:
		return true
	}
	return false
}

// IsOnline reports whether the event is held through the call provider
func (t EventType) IsOnline() bool {
	switch t {
	case EventTypeOnlineVideo, EventTypeOnlineAudio:
		return true
	case EventTypeInPerson:
		return false
	}
	return false
}

// OrganizationType categorizes an organization
type OrganizationType string

const (
	OrganizationTypeClub      OrganizationType = "CLUB"
	OrganizationTypeSociety   OrganizationType = "SOCIETY"
	OrganizationTypeSports    OrganizationType = "SPORTS"
	OrganizationTypeAcademic  OrganizationType = "ACADEMIC"
	OrganizationTypeCultural  OrganizationType = "CULTURAL"
	OrganizationTypeVolunteer OrganizationType = "VOLUNTEER"
	OrganizationTypeOther     OrganizationType = "OTHER"
)

// Valid reports whether t is one of the known organization types
func (t OrganizationType) Valid() bool {
	switch t {
	case OrganizationTypeClub, OrganizationTypeSociety, OrganizationTypeSports,
		OrganizationTypeAcademic, OrganizationTypeCultural, OrganizationTypeVolunteer,
		OrganizationTypeOther:
		return true
	}
	return false
}

// TagCategory groups tags for display
type TagCategory string

const (
	TagCategoryAcademic   TagCategory = "ACADEMIC"
	TagCategoryArts       TagCategory = "ARTS"
	TagCategoryCareer     TagCategory = "CAREER"
	TagCategoryCulture    TagCategory = "CULTURE"
	TagCategorySocial     TagCategory = "SOCIAL"
	TagCategorySports     TagCategory = "SPORTS"
	TagCategoryTechnology TagCategory = "TECHNOLOGY"
	TagCategoryWellness   TagCategory = "WELLNESS"
	TagCategoryOther      TagCategory = "OTHER"
)

// Valid reports whether c is one of the known tag categories
func (c TagCategory) Valid() bool {
	switch c {
	case TagCategoryAcademic, TagCategoryArts, TagCategoryCareer, TagCategoryCulture,
		TagCategorySocial, TagCategorySports, TagCategoryTechnology, TagCategoryWellness,
		TagCategoryOther:
		return true
	}
	return false
}
