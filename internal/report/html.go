package report

import "github.com/gomarkdown/markdown"

// ToHTML converts Markdown text to HTML.
func ToHTML(md string) string {
	return string(markdown.ToHTML([]byte(md), nil, nil))
}
