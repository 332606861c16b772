package chat

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Agent text is trusted rich text and rendered as markdown. User text is
// never interpreted as markup; only raw URLs inside it become links, so
// user input cannot inject formatting.

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

var linkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true)

// Renderer renders agent messages as formatted terminal markdown.
type Renderer struct {
	md *glamour.TermRenderer
}

// NewRenderer creates a markdown renderer wrapped at the given width.
func NewRenderer(width int) (*Renderer, error) {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{md: md}, nil
}

// Agent renders agent-authored text as markdown, falling back to the plain
// text whenever rendering fails.
func (r *Renderer) Agent(text string) (result string) {
	defer func() {
		if rec := recover(); rec != nil {
			result = text
		}
	}()

	if r == nil || r.md == nil || text == "" {
		return text
	}
	rendered, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

// LinkifyUser styles raw URLs in user-authored text as links and leaves
// everything else verbatim.
func LinkifyUser(text string) string {
	return urlPattern.ReplaceAllStringFunc(text, func(match string) string {
		return linkStyle.Render(match)
	})
}
