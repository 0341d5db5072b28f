// Package analysis computes performance and metacognition metrics from a
// quiz attempt's answers, and turns them into analysis-ready narratives.
package analysis

// Answer is one answered question, joined with its question metadata.
// Confidence is the student's self-reported certainty, 0 to 100.
type Answer struct {
	QuestionID string
	Question   string
	Category   string
	Difficulty string
	Correct    bool
	Confidence int
	Seconds    float64
}

// WeightedScore scores an attempt 0-100. Correctness dominates; confidence
// alignment adds a bonus or penalty per answer: +10 for confident and
// correct, -15 for confident and wrong, +5 for correct despite low
// confidence. The sum is normalized against the bonus-inclusive maximum.
func WeightedScore(answers []Answer) float64 {
	if len(answers) == 0 {
		return 0
	}

	total := 0.0
	for _, a := range answers {
		base := 0.0
		if a.Correct {
			base = 100
		}

		bonus := 0.0
		switch {
		case a.Correct && a.Confidence > 70:
			bonus = 10
		case !a.Correct && a.Confidence > 70:
			bonus = -15
		case a.Correct && a.Confidence < 40:
			bonus = 5
		}
		total += base + bonus
	}

	maxPossible := float64(len(answers)) * 110
	score := total / maxPossible * 100
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Percentile ranks score against a population of scores, 0-100. An empty
// population ranks at the 50th percentile.
func Percentile(score float64, all []float64) int {
	if len(all) == 0 {
		return 50
	}
	below := 0
	for _, s := range all {
		if s < score {
			below++
		}
	}
	return below * 100 / len(all)
}

// CuriosityScore measures exploratory behavior 0-100. Being correct at low
// confidence, wrong at high confidence, and sitting mid-confidence all
// score curiosity points, normalized against 30 points per answer.
func CuriosityScore(answers []Answer) float64 {
	if len(answers) == 0 {
		return 0
	}

	points := 0.0
	for _, a := range answers {
		conf := float64(a.Confidence)
		if a.Correct && conf < 50 {
			points += (50 - conf) / 50 * 25
		}
		if !a.Correct && conf > 70 {
			points += (conf - 70) / 30 * 20
		}
		if conf >= 40 && conf <= 60 {
			points += 10
		}
	}

	score := points / (float64(len(answers)) * 30) * 100
	if score > 100 {
		score = 100
	}
	return score
}

// ConfidenceAlignment measures how well confidence tracks correctness,
// 0-100. Correct answers contribute their confidence, wrong answers the
// inverse of theirs.
func ConfidenceAlignment(answers []Answer) float64 {
	if len(answers) == 0 {
		return 0
	}
	total := 0.0
	for _, a := range answers {
		if a.Correct {
			total += float64(a.Confidence)
		} else {
			total += float64(100 - a.Confidence)
		}
	}
	return total / float64(len(answers))
}

// CalibrationScore measures how well confidence predicts accuracy, 0-100.
// Answers are bucketed by confidence band and each band's actual accuracy
// is compared with the band's expected accuracy.
func CalibrationScore(answers []Answer) float64 {
	if len(answers) == 0 {
		return 0
	}

	type bucket struct {
		correct  int
		total    int
		expected float64
	}
	low := &bucket{expected: 20}
	mid := &bucket{expected: 55}
	high := &bucket{expected: 85}

	for _, a := range answers {
		b := high
		switch {
		case a.Confidence < 40:
			b = low
		case a.Confidence <= 70:
			b = mid
		}
		b.total++
		if a.Correct {
			b.correct++
		}
	}

	totalError := 0.0
	populated := 0
	for _, b := range []*bucket{low, mid, high} {
		if b.total == 0 {
			continue
		}
		actual := float64(b.correct) / float64(b.total) * 100
		if actual > b.expected {
			totalError += actual - b.expected
		} else {
			totalError += b.expected - actual
		}
		populated++
	}
	if populated == 0 {
		return 50
	}

	score := 100 - totalError/float64(populated)
	if score < 0 {
		score = 0
	}
	return score
}
