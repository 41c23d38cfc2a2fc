package terminal

import "github.com/soyeahso/agentchat/internal/widget"

// Markup renders the widget's minimal markdown with terminal styles.
func (s *Styles) Markup() widget.Markup {
	return widget.Markup{
		Bold:   func(t string) string { return s.Bold.Render(t) },
		Italic: func(t string) string { return s.Italic.Render(t) },
		Break:  "\n",
	}
}
