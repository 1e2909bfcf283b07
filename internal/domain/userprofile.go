package domain

// UserProfile is the identity and demographic view of a simulated user.
// Age and Gender are always present in source data; the remaining fields
// may be empty.
type UserProfile struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Avatar     string        `json:"avatar,omitempty"`
	Domain     CatalogDomain `json:"domain"`
	Age        string        `json:"age"`
	Gender     string        `json:"gender"`
	Occupation string        `json:"occupation,omitempty"`
	Location   string        `json:"location,omitempty"`
	Traits     []string      `json:"traits"`
	RawProfile string        `json:"rawProfile,omitempty"`
}
