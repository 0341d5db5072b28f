package insight

import (
	"fmt"
	"regexp"
	"strings"
)

// Prompt guardrails.
const (
	MinPromptLength = 10
	MaxPromptLength = 4000
)

// Patterns that read as prompt-injection attempts. Matches are removed
// from the input, never rejected; sanitization degrades, it does not fail.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(previous|above|all)\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+(previous|above|all)`),
	regexp.MustCompile(`(?i)forget\s+(everything|all|previous)`),
	regexp.MustCompile(`(?i)you\s+are\s+now`),
	regexp.MustCompile(`(?i)act\s+as\s+if`),
	regexp.MustCompile(`(?i)pretend\s+(to\s+be|you)`),
	regexp.MustCompile(`(?i)new\s+instructions:`),
	regexp.MustCompile(`(?i)system\s*:\s*`),
}

// Vague or open-ended prompts that would burn a generation slot on
// chatbot small talk.
var vaguePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(hi|hello|hey)[\s!.]*$`),
	regexp.MustCompile(`^what\s+do\s+you\s+think\??$`),
	regexp.MustCompile(`^tell\s+me\s+(something|anything)`),
	regexp.MustCompile(`^(help|help\s+me)[\s!.]*$`),
	regexp.MustCompile(`^(idk|dunno|not\s+sure)`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ValidatePrompt checks prompt against the guardrails. A failure is a
// pre-flight rejection: no downstream call is attempted.
func ValidatePrompt(prompt string) error {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return &ValidationError{Reason: "prompt cannot be empty"}
	}
	if len(trimmed) < MinPromptLength {
		return &ValidationError{Reason: fmt.Sprintf("prompt too short, minimum %d characters required", MinPromptLength)}
	}
	if len(trimmed) > MaxPromptLength {
		return &ValidationError{Reason: fmt.Sprintf("prompt exceeds maximum length of %d characters", MaxPromptLength)}
	}

	lower := strings.ToLower(trimmed)
	for _, p := range vaguePatterns {
		if p.MatchString(lower) {
			return &ValidationError{Reason: "prompt is too vague, provide a specific question or task"}
		}
	}
	return nil
}

// Sanitize strips known prompt-injection phrasings from text and collapses
// whitespace runs. It never fails.
func Sanitize(text string) string {
	sanitized := strings.TrimSpace(text)
	if sanitized == "" {
		return ""
	}
	for _, p := range injectionPatterns {
		sanitized = p.ReplaceAllString(sanitized, "")
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(sanitized, " "))
}

// BuildPrompt combines the fixed system instruction with the template's
// task framing. Without a template the sanitized prompt is the task text
// verbatim.
func BuildPrompt(prompt string, template Template) (system, formatted string) {
	system = SystemBase
	if spec, ok := templateCatalog[template]; ok {
		formatted = fmt.Sprintf(spec.instruction, prompt)
	} else {
		formatted = prompt
	}
	return system, formatted
}
