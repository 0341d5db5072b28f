package insight

import (
	"strings"
	"testing"
)

func TestCleanResponse_StripsPleasantries(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"sure prefix", "Sure, accuracy drops on hard questions."},
		{"great question", "Great question! accuracy drops on hard questions."},
		{"happy to", "I'd be happy to analyze. accuracy drops on hard questions."},
		{"hope this helps", "accuracy drops on hard questions.\n\nI hope this helps with your studies!"},
		{"feel free", "accuracy drops on hard questions.\nFeel free to ask more."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := CleanResponse(tt.raw, true, 0)
			for _, banned := range []string{"Sure,", "Great question", "happy to", "hope this helps", "Feel free"} {
				if strings.Contains(out, banned) {
					t.Errorf("output %q still contains %q", out, banned)
				}
			}
			if !strings.Contains(out, "accuracy drops") {
				t.Errorf("substance was lost: %q", out)
			}
		})
	}
}

func TestCleanResponse_StripsMarkdown(t *testing.T) {
	raw := "## Summary\n\n**Pattern**: *overconfident* on `geography`.\n\n```\ncode block\n```\n\n---\n\nSee [the data](http://example.com) for detail."
	out := CleanResponse(raw, true, 0)

	for _, marker := range []string{"##", "**", "```", "---", "](", "`"} {
		if strings.Contains(out, marker) {
			t.Errorf("output still contains markdown marker %q: %q", marker, out)
		}
	}
	if !strings.Contains(out, "the data") {
		t.Errorf("link text was lost: %q", out)
	}
	if !strings.Contains(out, "overconfident") {
		t.Errorf("emphasised text was lost: %q", out)
	}
}

func TestCleanResponse_KeepsMarkdownWhenAsked(t *testing.T) {
	out := CleanResponse("**bold** finding", false, 0)
	if !strings.Contains(out, "**bold**") {
		t.Errorf("markdown was stripped despite stripMarkdown=false: %q", out)
	}
}

func TestCleanResponse_CollapsesBlankLines(t *testing.T) {
	out := CleanResponse("first\n\n\n\n\nsecond", true, 0)
	if strings.Contains(out, "\n\n\n") {
		t.Errorf("blank line run survived: %q", out)
	}
}

func TestCleanResponse_NormalizesLineEndings(t *testing.T) {
	out := CleanResponse("first\r\nsecond", true, 0)
	if strings.Contains(out, "\r") {
		t.Errorf("carriage return survived: %q", out)
	}
}

func TestCleanResponse_EmptyInput(t *testing.T) {
	if out := CleanResponse("", true, 0); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestTruncate_SentenceBoundary(t *testing.T) {
	// Sentence ends fall inside the tail half of the budget.
	text := strings.Repeat("Observation recorded. ", 30)
	out := CleanResponse(text, true, 200)

	if len(out) > 200 {
		t.Errorf("output length %d exceeds max 200", len(out))
	}
	if !strings.HasSuffix(out, TruncationSuffix) {
		t.Errorf("expected truncation marker, got %q", out)
	}
	body := strings.TrimSuffix(out, TruncationSuffix)
	if !strings.HasSuffix(body, ".") {
		t.Errorf("expected cut at a sentence boundary, got %q", body)
	}
}

func TestTruncate_ParagraphBoundary(t *testing.T) {
	// No sentence punctuation, so only the paragraph branch can fire.
	paras := make([]string, 14)
	for i := range paras {
		paras[i] = "alpha beta gamma delta"
	}
	text := strings.Join(paras, "\n\n")
	out := CleanResponse(text, true, 300)

	if !strings.HasSuffix(out, TruncationSuffix) {
		t.Fatalf("expected truncation marker, got %q", out)
	}
	if len(out) > 300 {
		t.Errorf("output length %d exceeds max 300", len(out))
	}
	body := strings.TrimSuffix(out, TruncationSuffix)
	if !strings.HasSuffix(body, "delta") {
		t.Errorf("expected cut at a paragraph boundary, got tail %q", body[len(body)-20:])
	}
}

func TestTruncate_WordBoundary(t *testing.T) {
	// No sentence punctuation at all, so the cut falls back to whitespace.
	text := strings.Repeat("word ", 200)
	out := CleanResponse(text, true, 150)

	body := strings.TrimSuffix(out, TruncationSuffix)
	if strings.HasSuffix(body, "wor") || strings.HasSuffix(body, "wo") {
		t.Errorf("expected cut on a word boundary, got %q", body)
	}
	if len(out) > 150 {
		t.Errorf("output length %d exceeds max 150", len(out))
	}
}

func TestTruncate_ShortInputUntouched(t *testing.T) {
	out := CleanResponse("short finding.", true, 2000)
	if strings.Contains(out, TruncationSuffix) {
		t.Errorf("short input should not be truncated: %q", out)
	}
}
