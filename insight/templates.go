package insight

// SystemBase is the fixed system instruction applied to every generation.
// It pins the analytical register the rest of the pipeline (pleasantry
// stripping, truncation) assumes.
const SystemBase = `You are the analytical engine of Skepesis, a metacognitive learning platform.

YOUR ROLE:
You provide cognitive analysis - objective observations about thinking patterns, knowledge gaps, and learning calibration. You are NOT a tutor, coach, or assistant.

VOICE:
- Clinical and observational, like a diagnostic report
- Third-person perspective when discussing the learner
- Present findings as data points, not advice
- Neutral and non-judgmental

OUTPUT STYLE:
- Brief, scannable bullet points
- Single short paragraphs for conclusions
- No greetings, sign-offs, or pleasantries
- No questions back to the user
- No encouragement or motivation

FORBIDDEN:
- "Great job", "Well done", "Keep it up"
- "You should", "I recommend", "Try to"
- "Let me explain", "Here's what I think"
- Emojis, exclamation marks, casual language
- Rhetorical questions or engagement hooks

REMEMBER: You generate insight cards, not conversations.`

// Template names a prompt template from the fixed catalog.
type Template string

// The template catalog. Domain templates target specific UI surfaces;
// the general templates serve ad-hoc analysis.
const (
	TemplatePatternAnalysis   Template = "pattern_analysis"
	TemplateCalibrationCheck  Template = "calibration_check"
	TemplateGapIdentification Template = "gap_identification"
	TemplateThinkingAnalysis  Template = "thinking_analysis"
	TemplateSessionSummary    Template = "session_summary"
	TemplateInsightCard       Template = "insight_card"
	TemplateAnalyze           Template = "analyze"
	TemplateEvaluate          Template = "evaluate"
	TemplateExplain           Template = "explain"
)

// Length is a preset response-length class tied to a UI context.
type Length string

// Length presets and their output token ceilings.
const (
	LengthCard     Length = "card"     // ~25 words, dashboard insight cards
	LengthCompact  Length = "compact"  // ~50 words, inline insights
	LengthStandard Length = "standard" // ~80 words, detail panels
	LengthFull     Length = "full"     // ~150 words, full analysis
)

// Tokens returns the output token ceiling for the length class. Unknown
// classes fall back to the standard preset.
func (l Length) Tokens() int {
	switch l {
	case LengthCard:
		return 50
	case LengthCompact:
		return 100
	case LengthStandard:
		return 150
	case LengthFull:
		return 300
	default:
		return 150
	}
}

type templateSpec struct {
	instruction   string
	defaultLength Length
}

var templateCatalog = map[Template]templateSpec{
	TemplatePatternAnalysis: {
		defaultLength: LengthStandard,
		instruction: `Analyze this learning performance data:

%s

Provide a cognitive pattern observation:
- Primary pattern identified (one line)
- Supporting evidence (2 bullet points)
- Calibration note (one line)

Keep total response under 80 words.`,
	},
	TemplateCalibrationCheck: {
		defaultLength: LengthCompact,
		instruction: `Assess confidence calibration from this data:

%s

Report:
- Calibration status: [well-calibrated | overconfident | underconfident]
- Evidence (2 bullet points)
- Pattern implication (one line)

Keep total response under 60 words.`,
	},
	TemplateGapIdentification: {
		defaultLength: LengthCompact,
		instruction: `Identify knowledge gaps from this quiz performance:

%s

List:
- Primary gap area
- Secondary gap (if evident)
- Confidence-accuracy mismatch (if any)

Keep total response under 50 words.`,
	},
	TemplateThinkingAnalysis: {
		defaultLength: LengthCompact,
		instruction: `Analyze response timing patterns:

%s

Observe:
- Thinking style: [quick/moderate/deliberate]
- Consistency note
- Speed-accuracy relationship

Keep total response under 50 words.`,
	},
	TemplateSessionSummary: {
		defaultLength: LengthCompact,
		instruction: `Summarize this quiz session:

%s

Provide:
- Performance snapshot (one line)
- Notable pattern (one line)
- Calibration observation (one line)

Keep total response under 40 words.`,
	},
	TemplateInsightCard: {
		defaultLength: LengthCard,
		instruction: `Generate a single learning insight from:

%s

Format as one insight card:
- Observation title (3-5 words)
- Supporting detail (one sentence)

Keep total response under 25 words.`,
	},
	TemplateAnalyze: {
		defaultLength: LengthStandard,
		instruction: `Analyze the following:

%s

Provide:
- Key observations (2-3 points)
- Gaps or assumptions noted
- Conclusion (1-2 sentences)

Keep response concise.`,
	},
	TemplateEvaluate: {
		defaultLength: LengthCompact,
		instruction: `Evaluate this:

%s

Assess:
- Reasoning accuracy
- Logical gaps
- Brief verdict

Keep response under 60 words.`,
	},
	TemplateExplain: {
		defaultLength: LengthStandard,
		instruction: `Explain:

%s

Structure:
- Core definition (1 sentence)
- Key components
- Common misconception (if any)

Keep response under 80 words.`,
	},
}

// Valid reports whether t names a catalog template.
func (t Template) Valid() bool {
	_, ok := templateCatalog[t]
	return ok
}

// DefaultLength returns the response-length class a template targets.
func (t Template) DefaultLength() Length {
	if spec, ok := templateCatalog[t]; ok {
		return spec.defaultLength
	}
	return LengthStandard
}

// Templates returns the catalog's template names.
func Templates() []Template {
	names := make([]Template, 0, len(templateCatalog))
	for t := range templateCatalog {
		names = append(names, t)
	}
	return names
}
