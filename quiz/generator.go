package quiz

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// distractorAttempts bounds redraws of a distractor that collides with an
// option already in the round.
const distractorAttempts = 8

// GenerateOptions tunes a single round.
type GenerateOptions struct {
	// ForceSingleColor restricts multiple-choice to the primary color.
	ForceSingleColor bool

	// Family and SetSize select matching-set brands. Slots, when set, is
	// used as the matching set as-is.
	Family  Family
	SetSize int
	Slots   []Brand
}

// Generator builds rounds from a catalog. It never modifies the catalog; all
// randomness comes from the Source it was given.
type Generator struct {
	catalog *Catalog
	rules   Rules
	src     Source
}

func NewGenerator(catalog *Catalog, rules Rules, src Source) *Generator {
	return &Generator{
		catalog: catalog,
		rules:   rules,
		src:     src,
	}
}

func (g *Generator) Rules() Rules {
	return g.rules
}

// Generate builds a round of the given mode for target. Matching-set rounds
// ignore target and pick their own brands.
func (g *Generator) Generate(mode Mode, target Brand, opts GenerateOptions) (Round, error) {
	id, err := uuid.NewRandomFromReader(sourceReader{g.src})
	if err != nil {
		return Round{}, fmt.Errorf("generating round id: %w", err)
	}

	round := Round{
		ID:   id.String(),
		Mode: mode,
	}

	switch mode {
	case ModeMultipleChoice:
		round.Target = target.clone()
		round.Options = g.multipleChoice(target, opts.ForceSingleColor)
	case ModeReverse:
		round.Target = target.clone()
		round.Options = g.reverse(target)
	case ModeSlider:
		round.Target = target.clone()
		round.Variation, round.Gradient = g.slider(target.Primary)
	case ModeMatchingSet:
		slots, family := opts.Slots, opts.Family
		if len(slots) == 0 {
			family, slots = g.PickMatchingSet(opts.Family, opts.SetSize)
		}
		round.Family = family
		round.Slots = make([]Brand, len(slots))
		round.Pool = make([]Color, len(slots))
		for i, b := range slots {
			round.Slots[i] = b.clone()
			round.Pool[i] = b.Primary
		}
		Shuffle(g.src, round.Pool)
	default:
		return Round{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	return round, nil
}

func (g *Generator) multipleChoice(target Brand, forceSingle bool) []Option {
	correct := []Color{target.Primary}
	if !forceSingle {
		correct = target.Palette()
	}

	options := []Option{{Colors: correct, Correct: true}}
	for i := 0; i < g.rules.Distractors; i++ {
		options = append(options, g.distractor(correct, options, i))
	}

	Shuffle(g.src, options)

	return options
}

// distractor perturbs the whole correct set as a unit. Even indexes rotate
// hue, odd indexes shift lightness; a redraw alternates the axis so
// achromatic palettes still get a distinct option.
func (g *Generator) distractor(correct []Color, taken []Option, i int) Option {
	for attempt := 0; attempt < distractorAttempts; attempt++ {
		var opt Option

		if (i+attempt)%2 == 0 {
			shift := signed(g.src, g.rules.HueShift)
			opt = Option{
				Colors:   mapColors(correct, func(c Color) Color { return c.RotateHue(shift) }),
				HueShift: shift,
			}
		} else {
			shift := signed(g.src, g.rules.LightnessShift)
			opt = Option{
				Colors:         mapColors(correct, func(c Color) Color { return c.ShiftLightness(shift) }),
				LightnessShift: shift,
			}
		}

		if !takenColors(taken, opt.Colors) {
			return opt
		}
	}

	// Shift lightness toward mid-grey: it moves every color, so the result
	// can never equal the correct set.
	shift := uniform(g.src, g.rules.LightnessShift)
	if shift == 0 {
		shift = g.rules.LightnessShift.Max
	}
	if _, _, l := correct[0].HSL(); l > 0.5 {
		shift = -shift
	}

	return Option{
		Colors:         mapColors(correct, func(c Color) Color { return c.ShiftLightness(shift) }),
		LightnessShift: shift,
	}
}

func takenColors(options []Option, colors []Color) bool {
	for _, o := range options {
		if equalColors(o.Colors, colors) {
			return true
		}
	}
	return false
}

// reverse offers brand names for the target color. Distractors are the
// brands whose primary hue is nearest the target's, topped up at random.
func (g *Generator) reverse(target Brand) []Option {
	options := []Option{{BrandID: target.ID, Name: target.Name, Correct: true}}

	chosen := map[string]bool{target.ID: true}
	for _, b := range g.nearestHues(target) {
		if len(options) > g.rules.Distractors {
			break
		}
		options = append(options, Option{BrandID: b.ID, Name: b.Name})
		chosen[b.ID] = true
	}

	if len(options) <= g.rules.Distractors {
		rest := g.catalog.Filter(func(b Brand) bool { return !chosen[b.ID] })
		for _, b := range Sample(g.src, rest, g.rules.Distractors+1-len(options)) {
			options = append(options, Option{BrandID: b.ID, Name: b.Name})
		}
	}

	Shuffle(g.src, options)

	return options
}

// nearestHues ranks chromatic catalog brands by hue distance to target,
// skipping the target and any brand that shares its primary color.
func (g *Generator) nearestHues(target Brand) []Brand {
	if target.Primary.Achromatic() {
		return nil
	}

	th, _, _ := target.Primary.HSL()

	candidates := g.catalog.Filter(func(b Brand) bool {
		return b.ID != target.ID && b.Primary != target.Primary && !b.Primary.Achromatic()
	})

	dist := make(map[string]float64, len(candidates))
	for _, b := range candidates {
		h, _, _ := b.Primary.HSL()
		dist[b.ID] = HueDistance(th, h)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return dist[candidates[i].ID] < dist[candidates[j].ID]
	})

	return candidates
}

func (g *Generator) slider(target Color) (Variation, Gradient) {
	p := uniform(g.src, g.rules.TargetPosition)

	grad := Gradient{
		Target:         target,
		TargetPosition: p,
	}

	if g.src.IntN(2) == 0 {
		span := g.rules.SliderHueSpan
		grad.Start = target.RotateHue(-span * p)
		grad.End = target.RotateHue(span * (1 - p))
		return VariationHue, grad
	}

	span := g.rules.SliderLightnessSpan
	grad.Start = target.Darken(span * p)
	grad.End = target.Lighten(span * (1 - p))
	return VariationLightness, grad
}

// PickMatchingSet chooses up to size brands from one hue family. With
// FamilyAny a coin picks red or blue and the other is tried next. A family
// that is too small falls back to random brands and reports FamilyRandom.
func (g *Generator) PickMatchingSet(family Family, size int) (Family, []Brand) {
	if size <= 0 {
		size = g.rules.MatchSetSize
	}
	size = min(size, g.catalog.Len())

	var order []Family
	switch family {
	case FamilyAny:
		order = []Family{FamilyRed, FamilyBlue}
		if g.src.IntN(2) == 0 {
			order = []Family{FamilyBlue, FamilyRed}
		}
	case FamilyRandom:
	default:
		order = []Family{family}
	}

	for _, f := range order {
		members := g.catalog.Filter(func(b Brand) bool { return f.Contains(b.Primary) })
		if len(members) >= size {
			return f, Sample(g.src, members, size)
		}
	}

	return FamilyRandom, Sample(g.src, g.catalog.Brands(), size)
}
