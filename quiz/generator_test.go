package quiz

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func testGenerator(t *testing.T, seed uint64) (*Generator, *Catalog) {
	t.Helper()

	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}

	return NewGenerator(c, DefaultRules(), seeded(seed)), c
}

func mustBrand(t *testing.T, c *Catalog, id string) Brand {
	t.Helper()

	b, ok := c.Lookup(id)
	if !ok {
		t.Fatalf("brand %q missing", id)
	}
	return b
}

func TestMultipleChoiceRounds(t *testing.T) {
	g, c := testGenerator(t, 1)
	rules := DefaultRules()

	for _, b := range c.Brands() {
		for _, force := range []bool{false, true} {
			round, err := g.Generate(ModeMultipleChoice, b, GenerateOptions{ForceSingleColor: force})
			if err != nil {
				t.Fatalf("%s: %v", b.ID, err)
			}

			if len(round.Options) != 3 {
				t.Fatalf("%s: got %d options, want 3", b.ID, len(round.Options))
			}

			want := b.Palette()
			if force {
				want = []Color{b.Primary}
			}

			correct := 0
			for i, o := range round.Options {
				if o.Correct {
					correct++
					if !equalColors(o.Colors, want) {
						t.Errorf("%s: correct option %v, want %v", b.ID, o.Colors, want)
					}
					if o.HueShift != 0 || o.LightnessShift != 0 {
						t.Errorf("%s: correct option carries a perturbation", b.ID)
					}
					continue
				}

				if equalColors(o.Colors, want) {
					t.Errorf("%s: distractor %d equals the correct set", b.ID, i)
				}
				if len(o.Colors) != len(want) {
					t.Errorf("%s: distractor %d has %d colors, want %d", b.ID, i, len(o.Colors), len(want))
				}

				switch {
				case o.HueShift != 0 && o.LightnessShift == 0:
					mag := math.Abs(o.HueShift)
					if mag < rules.HueShift.Min || mag > rules.HueShift.Max {
						t.Errorf("%s: hue shift %.3f outside [8, 10]", b.ID, o.HueShift)
					}
					for j, col := range want {
						if o.Colors[j] != col.RotateHue(o.HueShift) {
							t.Errorf("%s: color %d not rotated by the shared shift", b.ID, j)
						}
					}
				case o.LightnessShift != 0 && o.HueShift == 0:
					mag := math.Abs(o.LightnessShift)
					if mag < rules.LightnessShift.Min || mag > rules.LightnessShift.Max {
						t.Errorf("%s: lightness shift %.3f outside [0.04, 0.08]", b.ID, o.LightnessShift)
					}
					for j, col := range want {
						if o.Colors[j] != col.ShiftLightness(o.LightnessShift) {
							t.Errorf("%s: color %d not shifted by the shared amount", b.ID, j)
						}
					}
				default:
					t.Errorf("%s: distractor %d has shifts hue=%g lightness=%g", b.ID, i, o.HueShift, o.LightnessShift)
				}
			}

			if correct != 1 {
				t.Errorf("%s: %d options flagged correct, want 1", b.ID, correct)
			}
		}
	}
}

func TestMultipleChoiceAchromatic(t *testing.T) {
	c, err := NewCatalog([]Brand{{ID: "white", Name: "White", Primary: MustParseHex("#FFFFFF")}})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	g := NewGenerator(c, DefaultRules(), seeded(3))
	b, _ := c.Lookup("white")

	for i := 0; i < 200; i++ {
		round, err := g.Generate(ModeMultipleChoice, b, GenerateOptions{})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}

		matches := 0
		for _, o := range round.Options {
			if equalColors(o.Colors, []Color{b.Primary}) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("white round has %d options equal to the answer", matches)
		}
	}
}

func TestCorrectPositionIsUniform(t *testing.T) {
	g, c := testGenerator(t, 7)
	b := mustBrand(t, c, "facebook")

	const trials = 3000
	counts := make([]int, 3)

	for i := 0; i < trials; i++ {
		round, err := g.Generate(ModeMultipleChoice, b, GenerateOptions{})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		counts[round.CorrectOption()]++
	}

	for pos, n := range counts {
		if n < 850 || n > 1150 {
			t.Errorf("correct answer at position %d in %d of %d rounds, want about %d", pos, n, trials, trials/3)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	src := seeded(11)

	for n := 0; n < 10; n++ {
		in := make([]int, n)
		for i := range in {
			in[i] = i
		}

		out := append([]int(nil), in...)
		Shuffle(src, out)

		sorted := append([]int(nil), out...)
		slices.Sort(sorted)
		if !slices.Equal(sorted, in) {
			t.Errorf("Shuffle of %d elements is not a permutation: %v", n, out)
		}
	}
}

func TestShuffleUniformity(t *testing.T) {
	src := seeded(13)

	const trials = 4000
	counts := make([][]int, 4)
	for i := range counts {
		counts[i] = make([]int, 4)
	}

	for i := 0; i < trials; i++ {
		s := []int{0, 1, 2, 3}
		Shuffle(src, s)
		for pos, v := range s {
			counts[v][pos]++
		}
	}

	for v, row := range counts {
		for pos, n := range row {
			if n < 850 || n > 1150 {
				t.Errorf("value %d at position %d %d times, want about %d", v, pos, n, trials/4)
			}
		}
	}
}

func TestSliderPassesThroughTarget(t *testing.T) {
	g, c := testGenerator(t, 21)
	rules := DefaultRules()

	seen := map[Variation]bool{}

	for i := 0; i < 20; i++ {
		for _, b := range c.Brands() {
			round, err := g.Generate(ModeSlider, b, GenerateOptions{})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}

			grad := round.Gradient
			seen[round.Variation] = true

			if grad.TargetPosition < rules.TargetPosition.Min || grad.TargetPosition > rules.TargetPosition.Max {
				t.Fatalf("target position %.3f outside [0.2, 0.8]", grad.TargetPosition)
			}
			if grad.Target != b.Primary {
				t.Fatalf("gradient target %v, want %v", grad.Target, b.Primary)
			}

			got := grad.At(grad.TargetPosition * 100)
			if d := Distance(got, b.Primary); d != 0 {
				t.Fatalf("%s: slider at target position gave %v (distance %.2f)", b.ID, got, d)
			}

			if grad.At(0) != grad.Start || grad.At(100) != grad.End {
				t.Errorf("%s: gradient endpoints do not match start/end", b.ID)
			}
		}
	}

	if !seen[VariationHue] || !seen[VariationLightness] {
		t.Errorf("expected both variations, saw %v", seen)
	}
}

func TestSliderGradientShape(t *testing.T) {
	target := MustParseHex("#CC0000")
	p := 0.25

	hue := Gradient{
		Start:          target.RotateHue(-40 * p),
		End:            target.RotateHue(40 * (1 - p)),
		Target:         target,
		TargetPosition: p,
	}

	// The segment below p blends start into the target only.
	mid := hue.At(12.5)
	if mid != hue.Start.Blend(target, 0.5) {
		t.Errorf("At(12.5) = %v, want midpoint of start and target", mid)
	}

	mid = hue.At(62.5)
	if mid != target.Blend(hue.End, 0.5) {
		t.Errorf("At(62.5) = %v, want midpoint of target and end", mid)
	}

	if hue.At(-10) != hue.Start || hue.At(150) != hue.End {
		t.Error("out of range slider values should clamp to the endpoints")
	}
}

func TestReverseIdentifyNearestHues(t *testing.T) {
	c, err := NewCatalog([]Brand{
		{ID: "red", Name: "Red", Primary: MustParseHex("#FF0000")},
		{ID: "red-twin", Name: "Red Twin", Primary: MustParseHex("#FF0000")},
		{ID: "orange-red", Name: "Orange Red", Primary: MustParseHex("#FF2A00")},
		{ID: "rose", Name: "Rose", Primary: MustParseHex("#FF002A")},
		{ID: "green", Name: "Green", Primary: MustParseHex("#00FF00")},
		{ID: "blue", Name: "Blue", Primary: MustParseHex("#0000FF")},
		{ID: "grey", Name: "Grey", Primary: MustParseHex("#808080")},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	g := NewGenerator(c, DefaultRules(), seeded(5))
	target, _ := c.Lookup("red")

	for i := 0; i < 50; i++ {
		round, err := g.Generate(ModeReverse, target, GenerateOptions{})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}

		ids := map[string]bool{}
		for _, o := range round.Options {
			ids[o.BrandID] = true
			if o.Correct != (o.BrandID == "red") {
				t.Errorf("option %s has Correct=%v", o.BrandID, o.Correct)
			}
		}

		if len(round.Options) != 3 || !ids["red"] || !ids["orange-red"] || !ids["rose"] {
			t.Fatalf("options = %+v, want red, orange-red and rose", round.Options)
		}
	}
}

func TestReverseIdentifyFillsRandomly(t *testing.T) {
	c, err := NewCatalog([]Brand{
		{ID: "black", Name: "Black", Primary: MustParseHex("#000000")},
		{ID: "white", Name: "White", Primary: MustParseHex("#FFFFFF")},
		{ID: "grey", Name: "Grey", Primary: MustParseHex("#808080")},
		{ID: "silver", Name: "Silver", Primary: MustParseHex("#C0C0C0")},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	g := NewGenerator(c, DefaultRules(), seeded(9))
	target, _ := c.Lookup("black")

	round, err := g.Generate(ModeReverse, target, GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(round.Options) != 3 {
		t.Fatalf("got %d options, want 3", len(round.Options))
	}

	seen := map[string]bool{}
	for _, o := range round.Options {
		if seen[o.BrandID] {
			t.Errorf("brand %s offered twice", o.BrandID)
		}
		seen[o.BrandID] = true
	}
	if !seen["black"] {
		t.Error("target brand missing from options")
	}
}

func TestReverseIdentifyTinyCatalog(t *testing.T) {
	c, err := NewCatalog([]Brand{
		{ID: "solo", Name: "Solo", Primary: MustParseHex("#123456")},
		{ID: "duo", Name: "Duo", Primary: MustParseHex("#654321")},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	g := NewGenerator(c, DefaultRules(), seeded(1))
	target, _ := c.Lookup("solo")

	round, err := g.Generate(ModeReverse, target, GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(round.Options) != 2 {
		t.Errorf("got %d options, want every available brand", len(round.Options))
	}
}

func TestMatchingSetFamilies(t *testing.T) {
	g, _ := testGenerator(t, 17)

	for _, family := range []Family{FamilyRed, FamilyBlue} {
		round, err := g.Generate(ModeMatchingSet, Brand{}, GenerateOptions{Family: family, SetSize: 5})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}

		if round.Family != family {
			t.Errorf("family = %s, want %s", round.Family, family)
		}
		if len(round.Slots) != 5 || len(round.Pool) != 5 {
			t.Fatalf("%s: %d slots and %d pool colors, want 5 each", family, len(round.Slots), len(round.Pool))
		}

		var primaries []Color
		for _, b := range round.Slots {
			if !family.Contains(b.Primary) {
				t.Errorf("%s outside the %s family", b.ID, family)
			}
			primaries = append(primaries, b.Primary)
		}

		if !sameMultiset(primaries, round.Pool) {
			t.Errorf("pool %v is not a permutation of slot colors %v", round.Pool, primaries)
		}
	}

	round, err := g.Generate(ModeMatchingSet, Brand{}, GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if round.Family != FamilyRed && round.Family != FamilyBlue {
		t.Errorf("unrequested family resolved to %s", round.Family)
	}
}

func TestMatchingSetFallsBack(t *testing.T) {
	c, err := NewCatalog([]Brand{
		{ID: "r1", Name: "R1", Primary: MustParseHex("#CC0000")},
		{ID: "r2", Name: "R2", Primary: MustParseHex("#FF0000")},
		{ID: "g1", Name: "G1", Primary: MustParseHex("#00AA00")},
		{ID: "g2", Name: "G2", Primary: MustParseHex("#00CC00")},
		{ID: "g3", Name: "G3", Primary: MustParseHex("#00EE00")},
		{ID: "g4", Name: "G4", Primary: MustParseHex("#008800")},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	g := NewGenerator(c, DefaultRules(), seeded(2))

	family, brands := g.PickMatchingSet(FamilyRed, 5)
	if family != FamilyRandom || len(brands) != 5 {
		t.Errorf("got family %s with %d brands, want random with 5", family, len(brands))
	}

	family, brands = g.PickMatchingSet(FamilyAny, 10)
	if family != FamilyRandom || len(brands) != c.Len() {
		t.Errorf("oversized set: family %s with %d brands, want random with %d", family, len(brands), c.Len())
	}

	family, brands = g.PickMatchingSet(FamilyRed, 2)
	if family != FamilyRed || len(brands) != 2 {
		t.Errorf("got family %s with %d brands, want red with 2", family, len(brands))
	}
}

func TestGenerateUnknownMode(t *testing.T) {
	g, c := testGenerator(t, 1)

	_, err := g.Generate(Mode("missing-color"), mustBrand(t, c, "target"), GenerateOptions{})
	if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("error = %v, want ErrUnknownMode", err)
	}

	if _, err := ParseMode("bonus"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("ParseMode error = %v, want ErrUnknownMode", err)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	g1, c := testGenerator(t, 99)
	g2, _ := testGenerator(t, 99)
	b := mustBrand(t, c, "mcdonalds")

	for _, mode := range []Mode{ModeMultipleChoice, ModeSlider, ModeReverse, ModeMatchingSet} {
		r1, err1 := g1.Generate(mode, b, GenerateOptions{})
		r2, err2 := g2.Generate(mode, b, GenerateOptions{})
		if err1 != nil || err2 != nil {
			t.Fatalf("%s: %v / %v", mode, err1, err2)
		}

		if r1.ID != r2.ID {
			t.Errorf("%s: ids differ for the same seed", mode)
		}
		if len(r1.Options) != len(r2.Options) {
			t.Fatalf("%s: option counts differ", mode)
		}
		for i := range r1.Options {
			if !equalColors(r1.Options[i].Colors, r2.Options[i].Colors) || r1.Options[i].BrandID != r2.Options[i].BrandID {
				t.Errorf("%s: option %d differs for the same seed", mode, i)
			}
		}
		if r1.Gradient != r2.Gradient {
			t.Errorf("%s: gradients differ for the same seed", mode)
		}
	}
}

func TestGenerateDoesNotMutateCatalog(t *testing.T) {
	g, c := testGenerator(t, 4)
	before := c.Brands()

	for _, b := range before {
		for _, mode := range []Mode{ModeMultipleChoice, ModeSlider, ModeReverse, ModeMatchingSet} {
			round, err := g.Generate(mode, b, GenerateOptions{})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			for i := range round.Options {
				for j := range round.Options[i].Colors {
					round.Options[i].Colors[j] = Color{}
				}
			}
			for i := range round.Slots {
				round.Slots[i].Extra = nil
			}
		}
	}

	after := c.Brands()
	for i := range before {
		if before[i].Primary != after[i].Primary || !equalColors(before[i].Palette(), after[i].Palette()) {
			t.Fatalf("brand %s changed during generation", before[i].ID)
		}
	}
}

func sameMultiset(a, b []Color) bool {
	if len(a) != len(b) {
		return false
	}
	count := map[Color]int{}
	for _, c := range a {
		count[c]++
	}
	for _, c := range b {
		count[c]--
	}
	for _, n := range count {
		if n != 0 {
			return false
		}
	}
	return true
}
