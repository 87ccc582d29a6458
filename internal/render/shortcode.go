package render

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// ShortcodeFunc produces the HTML that replaces a shortcode.
type ShortcodeFunc func(ctx context.Context, attrs map[string]string) (string, error)

// WidgetShortcode is the tag that embeds the registration widget.
const WidgetShortcode = "k-trainingcalculator"

var (
	shortcodePattern = regexp.MustCompile(`\[([A-Za-z0-9_-]+)((?:\s+[^\]]*)?)\]`)
	attrPattern      = regexp.MustCompile(`([A-Za-z0-9_-]+)\s*=\s*(?:"([^"]*)"|'([^']*)'|(\S+))`)
)

type Shortcodes struct {
	handlers map[string]ShortcodeFunc
}

func NewShortcodes() *Shortcodes {
	return &Shortcodes{handlers: make(map[string]ShortcodeFunc)}
}

func (s *Shortcodes) Register(tag string, fn ShortcodeFunc) {
	s.handlers[tag] = fn
}

// Expand replaces every registered shortcode in content. Unregistered
// tags are left as written.
func (s *Shortcodes) Expand(ctx context.Context, content string) (string, error) {
	var firstErr error
	out := shortcodePattern.ReplaceAllStringFunc(content, func(match string) string {
		m := shortcodePattern.FindStringSubmatch(match)
		fn, ok := s.handlers[m[1]]
		if !ok {
			return match
		}
		html, err := fn(ctx, parseAttrs(m[2]))
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("shortcode %s: %w", m[1], err)
			}
			return ""
		}
		return html
	})
	return out, firstErr
}

func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(strings.TrimSpace(raw), -1) {
		attrs[strings.ToLower(m[1])] = m[2] + m[3] + m[4]
	}
	return attrs
}
