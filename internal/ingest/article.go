package ingest

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/ppiankov/marketpulse/internal/model"
)

var (
	isoDateExpr    = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	blankLinesExpr = regexp.MustCompile(`\n\s*\n+`)
	spacesExpr     = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// dateSelectors are checked in order for a publication date
var dateSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="article:published_time"]`, "content"},
	{`meta[name="date"]`, "content"},
	{`meta[name="publish-date"]`, "content"},
	{`meta[itemprop="datePublished"]`, "content"},
	{`time[datetime]`, "datetime"},
}

// maxFallbackParagraphs bounds the paragraph fallback when readability finds nothing
const maxFallbackParagraphs = 12

// ParseArticle turns an article page into a document: readability for the body,
// page metadata for title and date.
func ParseArticle(html, pageURL string) (model.Document, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return model.Document{}, fmt.Errorf("parse URL: %w", err)
	}

	page, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return model.Document{}, fmt.Errorf("parse HTML: %w", err)
	}

	doc := model.Document{
		Title: pageTitle(page),
		Date:  publishedDate(page),
		URL:   pageURL,
	}

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err == nil {
		doc.Content = cleanText(article.TextContent)
		if doc.Title == "" {
			doc.Title = strings.TrimSpace(article.Title)
		}
	}
	if doc.Content == "" {
		doc.Content = paragraphText(page)
	}
	if doc.Title == "" {
		doc.Title = parsedURL.Host
	}

	if !doc.HasContent() {
		return doc, fmt.Errorf("no readable content at %s", pageURL)
	}
	return doc, nil
}

func pageTitle(page *goquery.Document) string {
	if og, ok := page.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	if title := strings.TrimSpace(page.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(page.Find("h1").First().Text())
}

// publishedDate returns the first date found, shortened to YYYY-MM-DD when it starts with one
func publishedDate(page *goquery.Document) string {
	for _, ds := range dateSelectors {
		value, ok := page.Find(ds.selector).First().Attr(ds.attr)
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			continue
		}
		if match := isoDateExpr.FindString(value); match != "" {
			return match
		}
		return value
	}
	return ""
}

func paragraphText(page *goquery.Document) string {
	var parts []string
	page.Find("p").EachWithBreak(func(i int, p *goquery.Selection) bool {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
		return len(parts) < maxFallbackParagraphs
	})
	return cleanText(strings.Join(parts, "\n\n"))
}

func cleanText(s string) string {
	s = spacesExpr.ReplaceAllString(s, " ")
	s = blankLinesExpr.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
