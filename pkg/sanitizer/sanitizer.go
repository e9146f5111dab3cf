package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	blocks = strings.NewReplacer("</p>", "</p> ", "<br>", " ", "<br/>", " ", "<br />", " ", "</div>", "</div> ", "</li>", "</li> ")
)

// PlainText strips all markup from user input and keeps line breaks.
func PlainText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(html.UnescapeString(strict.Sanitize(line)))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SearchText reduces s to a single whitespace-normalized line for indexing.
func SearchText(s string) string {
	cleaned := html.UnescapeString(strict.Sanitize(blocks.Replace(s)))
	return strings.Join(strings.Fields(cleaned), " ")
}

func PlainTextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := PlainText(*s)
	return &v
}
