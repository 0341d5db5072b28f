package insight

import (
	"regexp"
	"strings"
)

// Response post-processing limits.
const (
	// MaxResponseLength caps cleaned responses, in characters.
	MaxResponseLength = 2000
	// TruncationSuffix marks a response cut at MaxResponseLength.
	TruncationSuffix = "\n\n[Response truncated]"
)

// Filler the model prepends or appends despite the system instruction.
var pleasantryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(Sure|Certainly|Of course|Absolutely)[,!.]?\s*`),
	regexp.MustCompile(`(?i)^I('d| would) be happy to\s+`),
	regexp.MustCompile(`(?i)^(Great|Good|Excellent) question[!.]?\s*`),
	regexp.MustCompile(`(?i)^Let me\s+`),
	regexp.MustCompile(`(?i)^Here's\s+`),
	regexp.MustCompile(`(?i)\n*(I hope this helps|Let me know if)[^.]*[.!]?\s*$`),
	regexp.MustCompile(`(?i)\n*Feel free to[^.]*[.!]?\s*$`),
}

var (
	codeFence      = regexp.MustCompile("```[\\w]*\\n?")
	inlineCode     = regexp.MustCompile("`([^`]+)`")
	boldStars      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicStar     = regexp.MustCompile(`\*([^*]+)\*`)
	boldUnderscore = regexp.MustCompile(`__([^_]+)__`)
	italicUnder    = regexp.MustCompile(`_([^_]+)_`)
	mdHeader       = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	horizontalRule = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	mdLink         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	blankLineRun   = regexp.MustCompile(`\n{3,}`)
)

// CleanResponse trims, normalizes, and truncates a raw model response.
// Pleasantry prefixes/suffixes are stripped, markdown optionally removed,
// runs of blank lines collapsed, and overlong output cut at the best
// available boundary with TruncationSuffix appended.
func CleanResponse(raw string, stripMarkdown bool, maxLength int) string {
	if raw == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxResponseLength
	}

	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")

	for _, p := range pleasantryPatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}

	if stripMarkdown {
		cleaned = stripMarkdownMarkup(cleaned)
	}

	cleaned = blankLineRun.ReplaceAllString(cleaned, "\n\n")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) > maxLength {
		cleaned = truncateSafely(cleaned, maxLength)
	}
	return cleaned
}

// truncateSafely cuts text at a paragraph break, else a sentence end, else
// a word boundary, else hard, and appends the truncation marker. Boundary
// candidates only count when they land in the tail half (words: tail 30%)
// of the allowed length, so the cut never throws away most of the budget.
func truncateSafely(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}

	effectiveMax := maxLength - len(TruncationSuffix)
	if effectiveMax <= 0 {
		return TruncationSuffix
	}
	truncated := text[:effectiveMax]

	if idx := strings.LastIndex(truncated, "\n\n"); idx > effectiveMax/2 {
		return strings.TrimSpace(truncated[:idx]) + TruncationSuffix
	}

	lastSentence := -1
	for _, end := range []string{". ", ".\n", "? ", "?\n", "! ", "!\n"} {
		if idx := strings.LastIndex(truncated, end); idx > lastSentence {
			lastSentence = idx
		}
	}
	if lastSentence > effectiveMax/2 {
		return strings.TrimSpace(truncated[:lastSentence+1]) + TruncationSuffix
	}

	if idx := strings.LastIndex(truncated, " "); idx > effectiveMax*7/10 {
		return strings.TrimSpace(truncated[:idx]) + TruncationSuffix
	}

	return strings.TrimSpace(truncated) + TruncationSuffix
}

// stripMarkdownMarkup removes lightweight markdown while keeping the text:
// fences and backticks dropped, emphasis unwrapped, headers and rules
// removed, links reduced to their text.
func stripMarkdownMarkup(text string) string {
	text = codeFence.ReplaceAllString(text, "")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = boldStars.ReplaceAllString(text, "$1")
	text = italicStar.ReplaceAllString(text, "$1")
	text = boldUnderscore.ReplaceAllString(text, "$1")
	text = italicUnder.ReplaceAllString(text, "$1")
	text = mdHeader.ReplaceAllString(text, "")
	text = horizontalRule.ReplaceAllString(text, "")
	text = mdLink.ReplaceAllString(text, "$1")
	return text
}
