package search

// Fields is the searchable view of a record. Tags must already be parsed.
type Fields struct {
	Title       string
	Description string
	Body        string
	Category    string
	Tags        []string
	Favorite    bool
}

// SearchFields lets a bare Fields value be used as a Record.
func (f Fields) SearchFields() Fields {
	return f
}

// Record is anything the pipeline can filter, rank or extract tags from.
type Record interface {
	SearchFields() Fields
}

// Query holds the user supplied constraints. Zero values mean "no constraint".
type Query struct {
	Search        string   `json:"search"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	OnlyFavorites bool     `json:"onlyFavorites,omitempty"`
}
