package repo

import (
	"net/url"
	"strings"

	"github.com/foomo/inertiacms/content"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"
)

// Directory lookup tables of a site
type Directory struct {
	Site       *content.Site
	Records    map[string]*content.Record // by id
	URIs       map[string]*content.Record // by normalized uri
	Structures map[string]*content.Structure
}

// NormalizeURI strips query, fragment and trailing slashes and makes sure the
// uri starts with a slash: "blog/posts/?page=2" => "/blog/posts"
func NormalizeURI(v string) string {
	if u, err := url.Parse(v); err == nil {
		v = u.Path
	} else if i := strings.IndexAny(v, "?#"); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimRight(v, content.PathSeparator)
	if !strings.HasPrefix(v, content.PathSeparator) {
		v = content.PathSeparator + v
	}
	return v
}

// newDirectory indexes all pages and entries of a site and wires records and
// tree pages to each other
func newDirectory(site *content.Site) (*Directory, error) {
	d := &Directory{
		Site:       site,
		Records:    map[string]*content.Record{},
		URIs:       map[string]*content.Record{},
		Structures: site.Structures,
	}
	if d.Structures == nil {
		d.Structures = map[string]*content.Structure{}
	}

	if site.Pages != nil {
		site.Pages.WireParents()
		if err := site.Pages.Walk(func(record *content.Record) error {
			return d.add(record, content.KindPage)
		}); err != nil {
			return nil, err
		}
	}
	for _, entry := range site.Entries {
		if entry == nil {
			continue
		}
		if err := d.add(entry, content.KindEntry); err != nil {
			return nil, err
		}
	}

	resolver := content.ResolverFunc(func(id string) *content.Record {
		return d.Records[id]
	})
	for _, record := range d.Records {
		record.SetResolver(resolver)
	}

	if err := d.wireStructures(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Directory) add(record *content.Record, defaultKind content.Kind) error {
	if record.ID == "" {
		return errors.Errorf("record without id: %q", record.URI)
	}
	if existing, ok := d.Records[record.ID]; ok {
		return errors.New("duplicate record with id: " + existing.ID)
	}
	if record.Kind == "" {
		record.Kind = defaultKind
	}
	if record.Slug == "" && record.Title != "" {
		record.Slug = slug.Make(record.Title)
	}
	d.Records[record.ID] = record

	// entries without uri can only be referenced
	if record.URI == "" && record.Kind != content.KindPage {
		return nil
	}
	uri := NormalizeURI(record.URI)
	if _, ok := d.URIs[uri]; ok {
		return errors.New("duplicate uri: " + uri + " (bad record id: " + record.ID + ")")
	}
	d.URIs[uri] = record
	return nil
}

func (d *Directory) wireStructures() error {
	for handle, structure := range d.Structures {
		if structure == nil {
			return errors.Errorf("empty structure %q", handle)
		}
		if structure.Handle == "" {
			structure.Handle = handle
		}
		for _, tree := range structure.Trees {
			var err error
			tree.Walk(func(page *content.Page) {
				if page.Entry == "" || err != nil {
					return
				}
				record, ok := d.Records[page.Entry]
				if !ok {
					err = errors.New("that page points nowhere " + page.Entry + " from " + page.ID + " in " + handle)
					return
				}
				page.SetRecord(record)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
