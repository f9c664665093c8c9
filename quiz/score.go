package quiz

import (
	"fmt"
	"math"
)

// Answer is a player's submission. Which fields matter depends on the round:
//   - multiple-choice: Choice, or Colors
//   - reverse-identify: Choice, or BrandID
//   - slider: Position (0-100), or Sampled
//   - matching-set: Assignments, keyed by slot brand ID
type Answer struct {
	Choice      *int             `json:"choice,omitempty"`
	Colors      []Color          `json:"colors,omitempty"`
	BrandID     string           `json:"brand_id,omitempty"`
	Position    *float64         `json:"position,omitempty"`
	Sampled     *Color           `json:"sampled,omitempty"`
	Assignments map[string]Color `json:"assignments,omitempty"`
}

// ScoreResult is the outcome of one submission.
type ScoreResult struct {
	Points   int             `json:"points"`
	Correct  bool            `json:"correct"`
	Accuracy int             `json:"accuracy"`
	Distance float64         `json:"distance,omitempty"`
	Sampled  *Color          `json:"sampled,omitempty"`
	Matches  map[string]bool `json:"matches,omitempty"`
}

// Accuracy normalizes an RGB distance to a 0-100 percentage, rounded to the
// nearest integer. Distances at or beyond scale score zero.
func Accuracy(distance, scale float64) int {
	return int(math.Round(clamp(100-distance/scale*100, 0, 100)))
}

// Evaluator scores answers against rounds. It holds no state besides its
// rules.
type Evaluator struct {
	rules Rules
}

func NewEvaluator(rules Rules) Evaluator {
	return Evaluator{rules: rules}
}

func (e Evaluator) Evaluate(r Round, a Answer) (ScoreResult, error) {
	switch r.Mode {
	case ModeMultipleChoice:
		return e.multipleChoice(r, a), nil
	case ModeReverse:
		return e.reverse(r, a), nil
	case ModeSlider:
		return e.slider(r, a), nil
	case ModeMatchingSet:
		return e.matchingSet(r, a), nil
	default:
		return ScoreResult{}, fmt.Errorf("%w: %q", ErrUnknownMode, r.Mode)
	}
}

func (e Evaluator) award(correct bool) ScoreResult {
	if !correct {
		return ScoreResult{}
	}
	return ScoreResult{Points: e.rules.PointsPerAnswer, Correct: true}
}

func chosen(r Round, a Answer) (Option, bool) {
	if a.Choice == nil || *a.Choice < 0 || *a.Choice >= len(r.Options) {
		return Option{}, false
	}
	return r.Options[*a.Choice], true
}

func (e Evaluator) multipleChoice(r Round, a Answer) ScoreResult {
	submitted := a.Colors
	if o, ok := chosen(r, a); ok {
		submitted = o.Colors
	}

	i := r.CorrectOption()
	if i < 0 || len(submitted) == 0 {
		return ScoreResult{}
	}

	return e.award(equalColors(submitted, r.Options[i].Colors))
}

func (e Evaluator) reverse(r Round, a Answer) ScoreResult {
	submitted := a.BrandID
	if o, ok := chosen(r, a); ok {
		submitted = o.BrandID
	}

	return e.award(submitted != "" && submitted == r.Target.ID)
}

func (e Evaluator) slider(r Round, a Answer) ScoreResult {
	var sampled Color
	switch {
	case a.Sampled != nil:
		sampled = *a.Sampled
	case a.Position != nil:
		sampled = r.Gradient.At(*a.Position)
	default:
		return ScoreResult{}
	}

	d := Distance(sampled, r.Gradient.Target)
	accuracy := Accuracy(d, e.rules.AccuracyScale)
	points := e.rules.PointsFor(accuracy)

	return ScoreResult{
		Points:   points,
		Correct:  points > 0,
		Accuracy: accuracy,
		Distance: d,
		Sampled:  &sampled,
	}
}

func (e Evaluator) matchingSet(r Round, a Answer) ScoreResult {
	res := ScoreResult{Matches: make(map[string]bool, len(r.Slots))}

	correct := 0
	for _, b := range r.Slots {
		assigned, ok := a.Assignments[b.ID]
		match := ok && assigned == b.Primary
		res.Matches[b.ID] = match
		if match {
			correct++
		}
	}

	res.Points = correct * e.rules.PointsPerAnswer
	res.Correct = len(r.Slots) > 0 && correct == len(r.Slots)

	return res
}
