package analysis

import "math"

// LearningPatterns describes how a student works through questions rather
// than what they got right.
type LearningPatterns struct {
	ThinkingSpeed    string  `json:"thinking_speed"`
	SpeedInsight     string  `json:"speed_insight"`
	AvgSecondsPerQ   float64 `json:"avg_seconds_per_question"`
	RiskBehavior     string  `json:"risk_behavior"`
	LearningApproach string  `json:"learning_approach"`
	ApproachInsight  string  `json:"approach_insight"`
	ConsistencyScore float64 `json:"consistency_score"`
}

// Patterns classifies thinking speed, risk appetite, and approach from
// response timing and confidence.
func Patterns(answers []Answer) *LearningPatterns {
	if len(answers) == 0 {
		return &LearningPatterns{}
	}

	avgTime := 0.0
	for _, a := range answers {
		avgTime += a.Seconds
	}
	avgTime /= float64(len(answers))

	variance := 0.0
	for _, a := range answers {
		variance += math.Abs(a.Seconds - avgTime)
	}
	variance /= float64(len(answers))

	p := &LearningPatterns{AvgSecondsPerQ: round1(avgTime)}

	switch {
	case avgTime < 15:
		p.ThinkingSpeed = "quick"
		p.SpeedInsight = "You process information rapidly and make fast decisions."
	case avgTime < 30:
		p.ThinkingSpeed = "moderate"
		p.SpeedInsight = "You take a balanced approach, considering options carefully."
	default:
		p.ThinkingSpeed = "deliberate"
		p.SpeedInsight = "You're thorough and take time to analyze each question deeply."
	}

	highConf, lowConf := 0, 0
	for _, a := range answers {
		if a.Confidence > 70 {
			highConf++
		}
		if a.Confidence < 40 {
			lowConf++
		}
	}
	p.RiskBehavior = "calculated"
	if float64(highConf) > float64(len(answers))*0.7 {
		p.RiskBehavior = "bold"
	} else if float64(lowConf) > float64(len(answers))*0.5 {
		p.RiskBehavior = "cautious"
	}

	p.LearningApproach = "balanced"
	p.ApproachInsight = "You blend intuition with analysis effectively."
	switch {
	case variance < 5 && avgTime < 20:
		p.LearningApproach = "intuitive"
		p.ApproachInsight = "You rely on gut instinct and pattern recognition."
	case variance < 5 && avgTime > 25:
		p.LearningApproach = "systematic"
		p.ApproachInsight = "You follow a consistent, methodical thinking process."
	case variance > 10:
		p.LearningApproach = "adaptive"
		p.ApproachInsight = "You adjust your strategy based on question difficulty."
	}

	if avgTime > 0 {
		consistency := 100 - variance/avgTime*100
		if consistency < 0 {
			consistency = 0
		}
		p.ConsistencyScore = round1(consistency)
	}
	return p
}

// GapItem points at one question worth revisiting.
type GapItem struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question,omitempty"`
	Category   string `json:"category"`
	Confidence int    `json:"confidence"`
	Correct    bool   `json:"correct"`
}

// CategoryStats aggregates answers within one knowledge area.
type CategoryStats struct {
	Correct       int     `json:"correct"`
	Total         int     `json:"total"`
	AvgConfidence float64 `json:"avg_confidence"`
	AvgSeconds    float64 `json:"avg_seconds"`
}

// LearningGaps flags answers and knowledge areas that need attention.
type LearningGaps struct {
	OverconfidentErrors     []GapItem                `json:"overconfident_errors"`
	UnderconfidentSuccesses []GapItem                `json:"underconfident_successes"`
	LowConfidenceAnswers    []GapItem                `json:"low_confidence_answers"`
	KnowledgeAreas          map[string]CategoryStats `json:"knowledge_areas"`
}

// Gaps identifies miscalibrated answers and rolls up accuracy by category.
func Gaps(answers []Answer) *LearningGaps {
	g := &LearningGaps{
		OverconfidentErrors:     []GapItem{},
		UnderconfidentSuccesses: []GapItem{},
		LowConfidenceAnswers:    []GapItem{},
		KnowledgeAreas:          map[string]CategoryStats{},
	}

	type accumulator struct {
		correct    int
		total      int
		confidence int
		seconds    float64
	}
	areas := map[string]*accumulator{}

	for _, a := range answers {
		category := a.Category
		if category == "" {
			category = "General"
		}
		item := GapItem{
			QuestionID: a.QuestionID,
			Question:   a.Question,
			Category:   category,
			Confidence: a.Confidence,
			Correct:    a.Correct,
		}

		if !a.Correct && a.Confidence > 70 {
			g.OverconfidentErrors = append(g.OverconfidentErrors, item)
		}
		if a.Correct && a.Confidence < 40 {
			g.UnderconfidentSuccesses = append(g.UnderconfidentSuccesses, item)
		}
		if a.Confidence < 30 {
			g.LowConfidenceAnswers = append(g.LowConfidenceAnswers, item)
		}

		acc, ok := areas[category]
		if !ok {
			acc = &accumulator{}
			areas[category] = acc
		}
		acc.total++
		acc.confidence += a.Confidence
		acc.seconds += a.Seconds
		if a.Correct {
			acc.correct++
		}
	}

	for category, acc := range areas {
		g.KnowledgeAreas[category] = CategoryStats{
			Correct:       acc.correct,
			Total:         acc.total,
			AvgConfidence: round1(float64(acc.confidence) / float64(acc.total)),
			AvgSeconds:    round1(acc.seconds / float64(acc.total)),
		}
	}
	return g
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
