package content

// Site everything a repository holds for one site
type Site struct {
	Pages      *Record               `json:"pages"`   // root of the page tree
	Entries    []*Record             `json:"entries"` // flat collection entries
	Structures map[string]*Structure `json:"structures"`
}

// NewSite constructor
func NewSite() *Site {
	return &Site{
		Structures: make(map[string]*Structure),
	}
}
