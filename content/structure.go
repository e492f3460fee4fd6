package content

// Structure a named arrangement of records used for navigation
type Structure struct {
	Handle string           `json:"handle"`
	Title  string           `json:"title"`
	Trees  map[string]*Tree `json:"trees"` // tree variants, i.e. per site
}

// Tree returns the named tree variant or nil
func (s *Structure) Tree(name string) *Tree {
	if s == nil || s.Trees == nil {
		return nil
	}
	return s.Trees[name]
}

// Tree one variant of a structure
type Tree struct {
	Pages []*Page `json:"pages"` // top level pages
}

// All returns the top level pages
func (t *Tree) All() []*Page {
	if t == nil {
		return nil
	}
	return t.Pages
}

// Walk visits every page in the tree, parents first
func (t *Tree) Walk(fn func(page *Page)) {
	for _, page := range t.All() {
		page.walk(fn)
	}
}

// ToArray returns the plain nested form of all top level pages
func (t *Tree) ToArray() []interface{} {
	ret := make([]interface{}, 0, len(t.All()))
	for _, page := range t.All() {
		ret = append(ret, page.ToArray())
	}
	return ret
}

// Page a page descriptor in a tree
type Page struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`   // explicit link, wins over the uri of the record
	Entry    string  `json:"entry"` // id of the record the page points at
	Children []*Page `json:"children"`
	record   *Record
}

// SetRecord wires the page to the record it points at
func (p *Page) SetRecord(v *Record) {
	p.record = v
}

func (p *Page) Record() *Record {
	return p.record
}

// ToArray returns the plain form of the page and its children
func (p *Page) ToArray() map[string]interface{} {
	ret := map[string]interface{}{
		"id":    p.ID,
		"title": p.Title,
		"url":   p.URL,
	}
	if rec := p.record; rec != nil {
		ret["entry_id"] = rec.ID
		ret["uri"] = rec.URI
		ret["slug"] = rec.Slug
		if p.Title == "" {
			ret["title"] = rec.Title
		}
		if p.URL == "" {
			ret["url"] = rec.URI
		}
	}
	children := make([]interface{}, 0, len(p.Children))
	for _, child := range p.Children {
		children = append(children, child.ToArray())
	}
	ret["children"] = children
	return ret
}

func (p *Page) walk(fn func(page *Page)) {
	fn(p)
	for _, child := range p.Children {
		child.walk(fn)
	}
}
