package model

// Document is one news article about a company, as produced by an ingestor
type Document struct {
	Title   string `json:"title" yaml:"title"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty"` // Free-form publication date, may be empty
	URL     string `json:"url" yaml:"url"`
	Content string `json:"content" yaml:"content"`
}

// HasContent reports whether the document carries any body text
func (d Document) HasContent() bool {
	for _, r := range d.Content {
		if r != ' ' && r != '\n' && r != '\t' && r != '\r' {
			return true
		}
	}
	return false
}
