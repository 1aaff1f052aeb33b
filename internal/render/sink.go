// Package render writes illustrator results as wiki page markup.
package render

import (
	"html"
	"strings"
)

// Sink receives page output. Raw takes trusted markup, Text escapes.
type Sink interface {
	Raw(markup string)
	Text(text string)
}

// HTMLSink collects output in memory.
type HTMLSink struct {
	b strings.Builder
}

func (s *HTMLSink) Raw(markup string) { s.b.WriteString(markup) }

func (s *HTMLSink) Text(text string) { s.b.WriteString(html.EscapeString(text)) }

func (s *HTMLSink) String() string { return s.b.String() }
