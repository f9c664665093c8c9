package quiz

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrSessionOver     = errors.New("session is over")
	ErrStaleRound      = errors.New("round is no longer active")
	ErrAlreadyAnswered = errors.New("round already answered")
	ErrNotAnswered     = errors.New("current round has not been answered")
)

// Level is one stage of a session. Matching-set levels are played as a
// single round over all of Brands; other levels play one round per brand.
type Level struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Mode        Mode   `json:"mode"`
	Bonus       bool   `json:"bonus"`
	Family      Family `json:"family,omitempty"`
	Rounds      int    `json:"rounds"`

	ForceSingleColor bool    `json:"-"`
	Brands           []Brand `json:"-"`
}

// Session runs the five-level game and sums its score. It is not safe for
// concurrent use.
type Session struct {
	gen    *Generator
	eval   Evaluator
	levels []Level

	level    int
	round    int
	current  *Round
	answered bool

	score int
	bonus int
}

func NewSession(gen *Generator) *Session {
	s := &Session{
		gen:    gen,
		eval:   NewEvaluator(gen.Rules()),
		levels: PlanLevels(gen),
	}
	s.skipEmpty()

	return s
}

// PlanLevels draws the brands for every level up front:
//  1. single-color brands, multiple-choice on the primary color
//  2. multi-color brands, multiple-choice on the full palette
//  3. brands unused by 1-2, slider
//  4. one hue family, matching set
//  5. any brands, reverse-identify, scored as extra credit
func PlanLevels(gen *Generator) []Level {
	rules := gen.Rules()
	n := rules.RoundsPerLevel

	singles := gen.catalog.Filter(func(b Brand) bool { return !b.MultiColor() })
	multis := gen.catalog.Filter(func(b Brand) bool { return b.MultiColor() })

	lvl1 := Sample(gen.src, singles, n)
	lvl2 := Sample(gen.src, multis, n)

	used := make(map[string]bool, len(lvl1)+len(lvl2))
	for _, b := range append(append([]Brand(nil), lvl1...), lvl2...) {
		used[b.ID] = true
	}

	lvl3 := Sample(gen.src, gen.catalog.Filter(func(b Brand) bool { return !used[b.ID] }), n)
	if len(lvl3) < n {
		lvl3 = Sample(gen.src, gen.catalog.Brands(), n)
	}

	family, lvl4 := gen.PickMatchingSet(FamilyAny, rules.MatchSetSize)

	lvl5 := Sample(gen.src, gen.catalog.Brands(), rules.BonusRounds)

	matchRounds := 0
	if len(lvl4) > 0 {
		matchRounds = 1
	}

	return []Level{
		{
			Number:           1,
			Title:            "Level 1: Single Color",
			Description:      "Identify the primary brand color.",
			Mode:             ModeMultipleChoice,
			ForceSingleColor: true,
			Brands:           lvl1,
			Rounds:           len(lvl1),
		},
		{
			Number:      2,
			Title:       "Level 2: Multicolors",
			Description: "Match the correct brand color palette.",
			Mode:        ModeMultipleChoice,
			Brands:      lvl2,
			Rounds:      len(lvl2),
		},
		{
			Number:      3,
			Title:       "Level 3: Color Spectrum",
			Description: "Use the slider to match the exact hex code.",
			Mode:        ModeSlider,
			Brands:      lvl3,
			Rounds:      len(lvl3),
		},
		{
			Number:      4,
			Title:       "Level 4: Color Match",
			Description: fmt.Sprintf("Match %d %s brands to their exact shade.", len(lvl4), family.Title()),
			Mode:        ModeMatchingSet,
			Family:      family,
			Brands:      lvl4,
			Rounds:      matchRounds,
		},
		{
			Number:      5,
			Title:       "Bonus Round: Reverse Mode",
			Description: "Identify the brand from its color. These points are extra credit above the max score!",
			Mode:        ModeReverse,
			Bonus:       true,
			Brands:      lvl5,
			Rounds:      len(lvl5),
		},
	}
}

func (s *Session) skipEmpty() {
	for s.level < len(s.levels) && s.levels[s.level].Rounds == 0 {
		s.level++
	}
}

func (s *Session) Levels() []Level {
	return append([]Level(nil), s.levels...)
}

func (s *Session) Finished() bool {
	return s.level >= len(s.levels)
}

// Level returns the level in play and the zero-based round within it.
func (s *Session) Level() (Level, int, bool) {
	if s.Finished() {
		return Level{}, 0, false
	}
	return s.levels[s.level], s.round, true
}

func (s *Session) Score() int {
	return s.score
}

func (s *Session) BonusScore() int {
	return s.bonus
}

func (s *Session) Answered() bool {
	return s.answered
}

// Current returns the round in play, generating it on first use. The round
// stays fixed until Advance.
func (s *Session) Current() (Round, error) {
	if s.Finished() {
		return Round{}, ErrSessionOver
	}

	if s.current != nil {
		return *s.current, nil
	}

	lvl := s.levels[s.level]

	var (
		round Round
		err   error
	)
	if lvl.Mode == ModeMatchingSet {
		round, err = s.gen.Generate(lvl.Mode, Brand{}, GenerateOptions{Slots: lvl.Brands, Family: lvl.Family})
	} else {
		round, err = s.gen.Generate(lvl.Mode, lvl.Brands[s.round], GenerateOptions{ForceSingleColor: lvl.ForceSingleColor})
	}
	if err != nil {
		return Round{}, err
	}

	s.current = &round

	return round, nil
}

// Submit scores an answer to the current round. Answers for any other round,
// or a second answer to the same round, are rejected.
func (s *Session) Submit(roundID string, a Answer) (ScoreResult, error) {
	if s.Finished() {
		return ScoreResult{}, ErrSessionOver
	}
	if s.current == nil || s.current.ID != roundID {
		return ScoreResult{}, ErrStaleRound
	}
	if s.answered {
		return ScoreResult{}, ErrAlreadyAnswered
	}

	res, err := s.eval.Evaluate(*s.current, a)
	if err != nil {
		return ScoreResult{}, err
	}

	s.answered = true
	s.score += res.Points
	if s.levels[s.level].Bonus {
		s.bonus += res.Points
	}

	return res, nil
}

// Advance moves past an answered round. It reports whether a new level
// started.
func (s *Session) Advance() (bool, error) {
	if s.Finished() {
		return false, ErrSessionOver
	}
	if !s.answered {
		return false, ErrNotAnswered
	}

	s.current = nil
	s.answered = false
	s.round++

	if s.round < s.levels[s.level].Rounds {
		return false, nil
	}

	s.level++
	s.round = 0
	s.skipEmpty()

	return true, nil
}

// MaxBase is the best score possible without bonus levels.
func (s *Session) MaxBase() int {
	points := s.gen.Rules().PointsPerAnswer

	total := 0
	for _, l := range s.levels {
		if l.Bonus {
			continue
		}
		total += points * len(l.Brands)
	}
	return total
}

func (s *Session) Summary() Summary {
	sum := RankFor(s.score, s.MaxBase())
	sum.Bonus = s.bonus
	return sum
}

// Summary is the end-of-game result.
type Summary struct {
	Score      int    `json:"score"`
	Bonus      int    `json:"bonus"`
	MaxBase    int    `json:"max_base"`
	Percentage int    `json:"percentage"`
	Percentile int    `json:"percentile"`
	Rank       string `json:"rank"`
	Message    string `json:"message"`
}

var rankTiers = []struct {
	percentage int
	rank       string
	message    string
}{
	{90, "Color God", "Perfection. You see hex codes in your sleep."},
	{80, "Creative Director", "Amazing! Your color vision is elite."},
	{60, "Senior Designer", "Impressive! You know your brands."},
	{40, "Junior Designer", "Not bad! You've got potential."},
	{0, "Design Intern", "Great start! Keep training your eye."},
}

// RankFor grades a score against the base maximum. Bonus points count toward
// the percentage, so it can exceed 100.
func RankFor(score, maxBase int) Summary {
	sum := Summary{
		Score:   score,
		MaxBase: maxBase,
	}

	if maxBase > 0 {
		sum.Percentage = int(math.Round(float64(score) / float64(maxBase) * 100))
	}

	for _, t := range rankTiers {
		if sum.Percentage >= t.percentage {
			sum.Rank, sum.Message = t.rank, t.message
			break
		}
	}

	sum.Percentile = percentile(sum.Percentage)

	// 2000 of a 1700 base: only reachable with bonus points.
	if maxBase > 0 && float64(score) > float64(maxBase)*2000/1700 {
		sum.Percentile = 99
	}

	return sum
}

// percentile maps a percentage to a mock player distribution: linear below
// 30, then a cubic ease-out toward 99.
func percentile(percentage int) int {
	if percentage < 30 {
		return max(1, percentage)
	}

	normalized := math.Min(float64(percentage-30)/70, 1)
	eased := 1 - math.Pow(1-normalized, 3)

	return 30 + int(math.Round(eased*69))
}
