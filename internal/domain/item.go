package domain

// HistoryItem is an item the user has already consumed.
type HistoryItem struct {
	Title        string `json:"title"`
	Year         string `json:"year,omitempty"`
	Genre        string `json:"genre,omitempty"`
	Rating       string `json:"rating,omitempty"`
	Cover        string `json:"cover,omitempty"`
	Description  string `json:"description,omitempty"`
	Author       string `json:"author,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	Pages        string `json:"pages,omitempty"`
	GlobalRating string `json:"globalRating,omitempty"`
	MyBehavior   string `json:"myBehavior,omitempty"`
}

// ExposureItem is a candidate shown to the user. Its label is derived from
// its position in the exposure list, never stored.
type ExposureItem struct {
	Title       string `json:"title"`
	Year        string `json:"year,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Cover       string `json:"cover,omitempty"`
	Author      string `json:"author,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	Pages       string `json:"pages,omitempty"`
	Rating      string `json:"rating,omitempty"`
}
