package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skepesis/skepesis/insight"
)

// InsightType names a cognitive analysis aligned with a UI surface.
type InsightType string

// Insight types exposed to clients.
const (
	InsightPattern     InsightType = "pattern"     // learning pattern analysis
	InsightCalibration InsightType = "calibration" // confidence calibration check
	InsightGap         InsightType = "gap"         // knowledge gap identification
	InsightThinking    InsightType = "thinking"    // thinking speed analysis
	InsightSummary     InsightType = "summary"     // session summary
	InsightCard        InsightType = "card"        // single dashboard card
	InsightAnalyze     InsightType = "analyze"     // general analysis
	InsightEvaluate    InsightType = "evaluate"    // evaluation
	InsightExplain     InsightType = "explain"     // concept explanation
)

type insightSpec struct {
	template    insight.Template
	length      insight.Length
	description string
}

var insightConfig = map[InsightType]insightSpec{
	InsightPattern:     {insight.TemplatePatternAnalysis, insight.LengthStandard, "Learning pattern observation"},
	InsightCalibration: {insight.TemplateCalibrationCheck, insight.LengthCompact, "Confidence calibration assessment"},
	InsightGap:         {insight.TemplateGapIdentification, insight.LengthCompact, "Knowledge gap identification"},
	InsightThinking:    {insight.TemplateThinkingAnalysis, insight.LengthCompact, "Thinking speed analysis"},
	InsightSummary:     {insight.TemplateSessionSummary, insight.LengthCompact, "Quiz session summary"},
	InsightCard:        {insight.TemplateInsightCard, insight.LengthCard, "Dashboard insight card"},
	InsightAnalyze:     {insight.TemplateAnalyze, insight.LengthStandard, "General analysis"},
	InsightEvaluate:    {insight.TemplateEvaluate, insight.LengthCompact, "Evaluation assessment"},
	InsightExplain:     {insight.TemplateExplain, insight.LengthStandard, "Concept explanation"},
}

// TemplateFor resolves an insight type to its prompt template and default
// response length. ok is false for unknown types.
func TemplateFor(t InsightType) (template insight.Template, length insight.Length, ok bool) {
	spec, ok := insightConfig[t]
	if !ok {
		return "", "", false
	}
	return spec.template, spec.length, true
}

// InsightTypeInfo describes one insight type for feature discovery.
type InsightTypeInfo struct {
	Type          string `json:"type"`
	Description   string `json:"description"`
	TypicalLength string `json:"typical_length"`
}

// InsightTypes lists the available insight types for UI feature discovery.
func InsightTypes() []InsightTypeInfo {
	ordered := []InsightType{
		InsightPattern, InsightCalibration, InsightGap, InsightThinking,
		InsightSummary, InsightCard, InsightAnalyze, InsightEvaluate, InsightExplain,
	}
	infos := make([]InsightTypeInfo, 0, len(ordered))
	for _, t := range ordered {
		spec := insightConfig[t]
		infos = append(infos, InsightTypeInfo{
			Type:          string(t),
			Description:   spec.description,
			TypicalLength: string(spec.length),
		})
	}
	return infos
}

// AttemptNarrative renders an attempt's answers into the factual learning
// data an analysis prompt works from. Numbers only, no interpretation:
// interpretation is the model's job.
func AttemptNarrative(topic string, answers []Answer) string {
	if len(answers) == 0 {
		return fmt.Sprintf("Quiz on %s: no questions answered.", orGeneral(topic))
	}

	correct := 0
	totalConf := 0
	totalTime := 0.0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
		totalConf += a.Confidence
		totalTime += a.Seconds
	}
	n := len(answers)
	accuracy := float64(correct) / float64(n) * 100

	var b strings.Builder
	fmt.Fprintf(&b, "Quiz on %s: answered %d questions, %d correct (%.0f%% accuracy). ",
		orGeneral(topic), n, correct, accuracy)
	fmt.Fprintf(&b, "Average confidence %d%%, average %.1f seconds per question.",
		totalConf/n, totalTime/float64(n))

	gaps := Gaps(answers)
	if len(gaps.OverconfidentErrors) > 0 {
		fmt.Fprintf(&b, " Missed %d questions while confident above 70%%", len(gaps.OverconfidentErrors))
		if cats := gapCategories(gaps.OverconfidentErrors); cats != "" {
			fmt.Fprintf(&b, " (%s)", cats)
		}
		b.WriteString(".")
	}
	if len(gaps.UnderconfidentSuccesses) > 0 {
		fmt.Fprintf(&b, " Answered %d questions correctly despite confidence below 40%%.",
			len(gaps.UnderconfidentSuccesses))
	}

	patterns := Patterns(answers)
	fmt.Fprintf(&b, " Thinking speed %s, risk behavior %s, approach %s, consistency %.0f/100.",
		patterns.ThinkingSpeed, patterns.RiskBehavior, patterns.LearningApproach, patterns.ConsistencyScore)

	// Stable order keeps identical attempts producing identical narratives,
	// which keeps them cacheable downstream.
	categories := make([]string, 0, len(gaps.KnowledgeAreas))
	for category := range gaps.KnowledgeAreas {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		stats := gaps.KnowledgeAreas[category]
		if stats.Total >= 2 && stats.Correct*2 < stats.Total {
			fmt.Fprintf(&b, " Weak area: %s at %d/%d correct.", category, stats.Correct, stats.Total)
		}
	}
	return b.String()
}

func orGeneral(topic string) string {
	if strings.TrimSpace(topic) == "" {
		return "general knowledge"
	}
	return topic
}

func gapCategories(items []GapItem) string {
	seen := map[string]bool{}
	var cats []string
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			cats = append(cats, item.Category)
		}
	}
	return strings.Join(cats, ", ")
}
