package ingest

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// HTMLLoader extracts readable text from HTML files: readability strips the
// boilerplate, then the remaining article is converted to markdown so the
// chunker sees heading structure.
type HTMLLoader struct {
	converter *md.Converter
}

// NewHTMLLoader creates an HTML loader.
func NewHTMLLoader() *HTMLLoader {
	return &HTMLLoader{
		converter: md.NewConverter("", true, nil),
	}
}

// Supports reports the extensions HTMLLoader handles.
func (*HTMLLoader) Supports(ext string) bool {
	switch ext {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// Load extracts the readable article from an HTML file as markdown.
func (l *HTMLLoader) Load(path string) (*LoadedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	pageURL := &url.URL{Scheme: "file", Path: path}
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract readable content from %s: %w", path, err)
	}

	markdown, err := l.converter.ConvertString(article.Content)
	if err != nil {
		return nil, fmt.Errorf("convert %s to markdown: %w", path, err)
	}

	title := article.Title
	if title == "" {
		title = htmlTitle(data)
	}
	return &LoadedDocument{
		Title: title,
		Text:  markdown,
		Mime:  "text/html",
	}, nil
}

// htmlTitle pulls the <title> element directly, for pages where readability
// does not find one.
func htmlTitle(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	var walk func(*html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if title := walk(child); title != "" {
				return title
			}
		}
		return ""
	}
	return walk(doc)
}
