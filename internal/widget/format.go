package widget

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
)

// Markup applies the widget's minimal markdown: **bold**, then *italic*,
// then newlines. Bold is rewritten first so its asterisks are gone before
// the italic pass.
type Markup struct {
	Escape func(string) string
	Bold   func(string) string
	Italic func(string) string
	Break  string
}

// HTMLMarkup renders to an HTML fragment. Input is escaped first.
var HTMLMarkup = Markup{
	Escape: html.EscapeString,
	Bold:   func(s string) string { return "<strong>" + s + "</strong>" },
	Italic: func(s string) string { return "<em>" + s + "</em>" },
	Break:  "<br>",
}

// Format applies the three transforms in order.
func (m Markup) Format(text string) string {
	if m.Escape != nil {
		text = m.Escape(text)
	}
	if m.Bold != nil {
		text = replaceGroup(boldPattern, text, m.Bold)
	}
	if m.Italic != nil {
		text = replaceGroup(italicPattern, text, m.Italic)
	}
	return strings.ReplaceAll(text, "\n", m.Break)
}

func replaceGroup(re *regexp.Regexp, text string, fn func(string) string) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		return fn(re.FindStringSubmatch(match)[1])
	})
}

// FormatMessage renders message text as an HTML fragment.
func FormatMessage(text string) string {
	return HTMLMarkup.Format(text)
}
