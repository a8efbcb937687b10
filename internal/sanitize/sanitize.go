// Package sanitize reduces untrusted HTML-like documents to the text a
// human would actually see. Scripts, styles, comments, and hidden or
// off-screen elements are removed before the text reaches any downstream
// consumer.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// MaxSafeTextLen bounds the sanitized output so a single oversized page
// cannot flood downstream analysis.
const MaxSafeTextLen = 8000

// nonVisibleTags are containers whose content is never rendered as text.
var nonVisibleTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// Style fragments that hide an element from view. Matched against the
	// inline style attribute with spaces stripped.
	hiddenStyleFragments = []string{
		"display:none",
		"visibility:hidden",
	}

	// Off-screen positioning: absolute position pushed far left, or a large
	// negative text-indent. Both are classic hidden-instruction carriers.
	offscreenLeft  = regexp.MustCompile(`position:absolute.*left:-|left:-.*position:absolute`)
	negativeIndent = regexp.MustCompile(`text-indent:-`)
)

// VisibleText parses markup and returns the whitespace-normalized visible
// text. The parse is best-effort: unbalanced or malformed markup degrades
// to whatever text is recoverable, never an error. Empty input yields "".
func VisibleText(raw string) string {
	if raw == "" {
		return ""
	}

	// html.Parse repairs malformed documents instead of failing; the only
	// errors it reports come from the reader, which cannot happen here.
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return ""
	}

	var parts []string
	collectVisible(doc, &parts)

	text := strings.Join(parts, " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// SafeText is VisibleText truncated to MaxSafeTextLen.
func SafeText(raw string) string {
	text := VisibleText(raw)
	if len(text) > MaxSafeTextLen {
		return text[:MaxSafeTextLen]
	}
	return text
}

// Title returns the document title, or "Untitled" when none is present.
func Title(raw string) string {
	if raw == "" {
		return "Untitled"
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "Untitled"
	}
	if t := findTitle(doc); t != "" {
		return t
	}
	return "Untitled"
}

func collectVisible(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.ElementNode:
		if nonVisibleTags[n.Data] || isHidden(n) {
			return
		}
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectVisible(c, parts)
	}
}

// isHidden reports whether an element is marked invisible via the hidden
// attribute, aria-hidden, hiding styles, or off-screen positioning.
func isHidden(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "hidden":
			return true
		case "aria-hidden":
			if strings.EqualFold(strings.TrimSpace(attr.Val), "true") {
				return true
			}
		case "style":
			style := strings.ToLower(strings.ReplaceAll(attr.Val, " ", ""))
			for _, frag := range hiddenStyleFragments {
				if strings.Contains(style, frag) {
					return true
				}
			}
			if offscreenLeft.MatchString(style) || negativeIndent.MatchString(style) {
				return true
			}
		}
	}
	return false
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
