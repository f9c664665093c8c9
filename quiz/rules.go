package quiz

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrInvalidRules = errors.New("invalid rules")

type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Breakpoint awards Points when accuracy is at least Accuracy.
type Breakpoint struct {
	Accuracy int `yaml:"accuracy" json:"accuracy"`
	Points   int `yaml:"points" json:"points"`
}

// Rules holds every tunable of round generation and scoring.
type Rules struct {
	// Multiple-choice distractor perturbations. Hue in degrees, lightness
	// as a fraction of HSL lightness. Signs are drawn separately.
	HueShift       Range `yaml:"hue_shift" json:"hue_shift"`
	LightnessShift Range `yaml:"lightness_shift" json:"lightness_shift"`
	Distractors    int   `yaml:"distractors" json:"distractors"`

	SliderHueSpan       float64 `yaml:"slider_hue_span" json:"slider_hue_span"`
	SliderLightnessSpan float64 `yaml:"slider_lightness_span" json:"slider_lightness_span"`
	TargetPosition      Range   `yaml:"target_position" json:"target_position"`

	// AccuracyScale is the RGB distance at which accuracy reaches zero.
	AccuracyScale float64      `yaml:"accuracy_scale" json:"accuracy_scale"`
	Breakpoints   []Breakpoint `yaml:"breakpoints" json:"breakpoints"`

	PointsPerAnswer int `yaml:"points_per_answer" json:"points_per_answer"`
	MatchSetSize    int `yaml:"match_set_size" json:"match_set_size"`
	RoundsPerLevel  int `yaml:"rounds_per_level" json:"rounds_per_level"`
	BonusRounds     int `yaml:"bonus_rounds" json:"bonus_rounds"`
}

func DefaultRules() Rules {
	return Rules{
		HueShift:            Range{Min: 8, Max: 10},
		LightnessShift:      Range{Min: 0.04, Max: 0.08},
		Distractors:         2,
		SliderHueSpan:       40,
		SliderLightnessSpan: 0.4,
		TargetPosition:      Range{Min: 0.2, Max: 0.8},
		AccuracyScale:       100,
		Breakpoints: []Breakpoint{
			{Accuracy: 95, Points: 100},
			{Accuracy: 90, Points: 80},
			{Accuracy: 80, Points: 60},
			{Accuracy: 50, Points: 40},
			{Accuracy: 20, Points: 10},
		},
		PointsPerAnswer: 100,
		MatchSetSize:    5,
		RoundsPerLevel:  4,
		BonusRounds:     5,
	}
}

// LoadRules reads YAML overrides on top of DefaultRules. Keys missing from
// the document keep their default values.
func LoadRules(r io.Reader) (Rules, error) {
	rules := DefaultRules()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		return Rules{}, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}

	return rules, nil
}

func (r Rules) Validate() error {
	check := func(name string, rg Range) error {
		if rg.Min < 0 || rg.Max < rg.Min {
			return fmt.Errorf("%w: %s must satisfy 0 <= min <= max, got [%g, %g]", ErrInvalidRules, name, rg.Min, rg.Max)
		}
		return nil
	}

	if err := check("hue_shift", r.HueShift); err != nil {
		return err
	}
	if err := check("lightness_shift", r.LightnessShift); err != nil {
		return err
	}
	if err := check("target_position", r.TargetPosition); err != nil {
		return err
	}
	if r.LightnessShift.Max > 1 {
		return fmt.Errorf("%w: lightness_shift max must be at most 1, got %g", ErrInvalidRules, r.LightnessShift.Max)
	}
	if r.TargetPosition.Min <= 0 || r.TargetPosition.Max >= 1 {
		return fmt.Errorf("%w: target_position must lie strictly inside (0, 1)", ErrInvalidRules)
	}
	if r.Distractors < 0 {
		return fmt.Errorf("%w: distractors must not be negative, got %d", ErrInvalidRules, r.Distractors)
	}
	if r.SliderHueSpan <= 0 || r.SliderLightnessSpan <= 0 {
		return fmt.Errorf("%w: slider spans must be positive", ErrInvalidRules)
	}
	if r.AccuracyScale <= 0 {
		return fmt.Errorf("%w: accuracy_scale must be positive, got %g", ErrInvalidRules, r.AccuracyScale)
	}
	if r.PointsPerAnswer < 0 {
		return fmt.Errorf("%w: points_per_answer must not be negative", ErrInvalidRules)
	}
	if r.MatchSetSize < 1 || r.RoundsPerLevel < 1 || r.BonusRounds < 0 {
		return fmt.Errorf("%w: match_set_size and rounds_per_level must be at least 1, bonus_rounds at least 0", ErrInvalidRules)
	}

	if !sort.SliceIsSorted(r.Breakpoints, func(i, j int) bool {
		return r.Breakpoints[i].Accuracy > r.Breakpoints[j].Accuracy
	}) {
		return fmt.Errorf("%w: breakpoints must be sorted by descending accuracy", ErrInvalidRules)
	}
	for _, bp := range r.Breakpoints {
		if bp.Points < 0 || bp.Accuracy < 0 || bp.Accuracy > 100 {
			return fmt.Errorf("%w: breakpoint %+v out of range", ErrInvalidRules, bp)
		}
	}

	return nil
}

// PointsFor maps an accuracy percentage to points. The first breakpoint
// whose threshold is met wins; below every threshold scores zero.
func (r Rules) PointsFor(accuracy int) int {
	for _, bp := range r.Breakpoints {
		if accuracy >= bp.Accuracy {
			return bp.Points
		}
	}
	return 0
}
