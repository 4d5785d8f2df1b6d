package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/marketpulse/internal/model"
)

// Entry is one article listed in a catalog
type Entry struct {
	Title       string `yaml:"title"`
	Date        string `yaml:"date,omitempty"`
	URL         string `yaml:"url,omitempty"`
	Content     string `yaml:"content,omitempty"`
	ContentFile string `yaml:"content_file,omitempty"` // Relative to the catalog file
}

// NeedsFetch reports whether the entry has no local content and must be fetched from its URL
func (e Entry) NeedsFetch() bool {
	return strings.TrimSpace(e.Content) == "" && e.ContentFile == "" && e.URL != ""
}

func (e Entry) source() string {
	if e.ContentFile != "" {
		return e.ContentFile
	}
	if e.URL != "" {
		return e.URL
	}
	return e.Title
}

type catalogFile struct {
	Companies map[string][]Entry `yaml:"companies"`
}

// Catalog maps company names to their articles. Lookups ignore case.
type Catalog struct {
	companies map[string][]Entry
	names     map[string]string // Folded name -> name as written
	dir       string
}

// NewCatalog creates an empty catalog resolving content files against dir
func NewCatalog(dir string) *Catalog {
	return &Catalog{
		companies: make(map[string][]Entry),
		names:     make(map[string]string),
		dir:       dir,
	}
}

// LoadCatalog reads a YAML catalog file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data, filepath.Dir(path))
}

// ParseCatalog parses YAML catalog data; dir anchors relative content files
func ParseCatalog(data []byte, dir string) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	catalog := NewCatalog(dir)
	for name, entries := range file.Companies {
		for i, entry := range entries {
			if strings.TrimSpace(entry.Content) == "" && entry.ContentFile == "" && entry.URL == "" {
				return nil, fmt.Errorf("catalog entry %s[%d]: needs content, content_file or url", name, i)
			}
		}
		catalog.Add(name, entries...)
	}
	return catalog, nil
}

// Add appends entries for company
func (c *Catalog) Add(company string, entries ...Entry) {
	key := foldName(company)
	if _, exists := c.names[key]; !exists {
		c.names[key] = strings.TrimSpace(company)
	}
	c.companies[key] = append(c.companies[key], entries...)
}

// AddURLs appends URL-only entries for company, skipping blanks
func (c *Catalog) AddURLs(company string, urls []string) {
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			c.Add(company, Entry{URL: u})
		}
	}
}

// Entries returns the articles listed for company in catalog order
func (c *Catalog) Entries(company string) []Entry {
	return c.companies[foldName(company)]
}

// Companies lists the company names as written in the catalog, sorted
func (c *Catalog) Companies() []string {
	names := make([]string, 0, len(c.names))
	for _, name := range c.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LocalDocument builds a document from an entry's inline content or content file
func (c *Catalog) LocalDocument(e Entry) (model.Document, error) {
	doc := model.Document{Title: e.Title, Date: e.Date, URL: e.URL, Content: strings.TrimSpace(e.Content)}
	if e.ContentFile != "" {
		path := e.ContentFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return doc, fmt.Errorf("read content file: %w", err)
		}
		doc.Content = strings.TrimSpace(string(data))
	}
	if !doc.HasContent() {
		return doc, fmt.Errorf("empty content")
	}
	return doc, nil
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
