package gateway

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/soyeahso/agentchat/internal/widget"
)

// Renderer turns message text into an HTML fragment that is safe to put
// into the page's DOM.
type Renderer interface {
	Render(text string) string
}

// Render modes accepted by NewRenderer.
const (
	RenderMinimal  = "minimal"
	RenderMarkdown = "markdown"
)

// NewRenderer returns the renderer for mode. Unknown modes fall back to
// minimal.
func NewRenderer(mode string) Renderer {
	policy := bluemonday.UGCPolicy()
	if mode == RenderMarkdown {
		return &markdownRenderer{
			md: goldmark.New(
				goldmark.WithExtensions(extension.GFM),
				goldmark.WithRendererOptions(html.WithHardWraps()),
			),
			policy: policy,
		}
	}
	return &minimalRenderer{policy: policy}
}

// minimalRenderer applies the widget's bold, italic and line-break rules.
type minimalRenderer struct {
	policy *bluemonday.Policy
}

func (r *minimalRenderer) Render(text string) string {
	return r.policy.Sanitize(widget.FormatMessage(text))
}

// markdownRenderer renders full CommonMark plus GFM. Raw HTML in the
// source is dropped by goldmark and anything else is sanitized.
type markdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func (r *markdownRenderer) Render(text string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return r.policy.Sanitize(widget.FormatMessage(text))
	}
	return r.policy.Sanitize(buf.String())
}
