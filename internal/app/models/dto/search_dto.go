package dto

// SearchResponse holds the matches per entity kind. Kinds that were not
// searched are null.
type SearchResponse struct {
	Query         string                 `json:"query" example:"chess"`
	Events        []EventResponse        `json:"events"`
	Organizations []OrganizationResponse `json:"organizations"`
	Users         []PublicUserResponse   `json:"users"`
}
