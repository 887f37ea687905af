package utils

import (
	"regexp"
	"strings"
)

var (
	markdownHeaders = regexp.MustCompile(`(?m)^#+\s*`)
	boldMarkers     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	underlineBold   = regexp.MustCompile(`__([^_]+)__`)
	italicMarkers   = regexp.MustCompile(`\*([^*]+)\*`)
	underlineItalic = regexp.MustCompile(`_([^_]+)_`)
	inlineCode      = regexp.MustCompile("`([^`]+)`")
	multiNewlines   = regexp.MustCompile(`\n\n+`)
	extraSpaces     = regexp.MustCompile(`\s+`)
)

// CleanMarkdown flattens markdown formatting that vision models tend to
// emit into plain single-line text for user-facing messages.
func CleanMarkdown(text string) string {
	text = markdownHeaders.ReplaceAllString(text, "")
	text = boldMarkers.ReplaceAllString(text, "$1")
	text = underlineBold.ReplaceAllString(text, "$1")
	text = italicMarkers.ReplaceAllString(text, "$1")
	text = underlineItalic.ReplaceAllString(text, "$1")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = multiNewlines.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = extraSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
