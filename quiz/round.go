package quiz

import (
	"errors"
	"fmt"
)

var ErrUnknownMode = errors.New("unknown round mode")

type Mode string

const (
	ModeMultipleChoice Mode = "multiple-choice"
	ModeSlider         Mode = "slider"
	ModeReverse        Mode = "reverse-identify"
	ModeMatchingSet    Mode = "matching-set"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeMultipleChoice, ModeSlider, ModeReverse, ModeMatchingSet:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Variation is the color axis a slider gradient runs along.
type Variation string

const (
	VariationHue       Variation = "hue"
	VariationLightness Variation = "lightness"
)

// Option is one answer candidate. Colors is set for multiple-choice,
// BrandID and Name for reverse-identify. The shift fields record the
// perturbation that produced a distractor and are zero on the correct option.
type Option struct {
	Colors  []Color
	BrandID string
	Name    string
	Correct bool

	HueShift       float64
	LightnessShift float64
}

// Gradient is a slider span with the target color embedded at
// TargetPosition (0..1).
type Gradient struct {
	Start          Color
	End            Color
	Target         Color
	TargetPosition float64
}

// At samples the slider at s in [0, 100]. The span is two segments joined at
// the target, so At(100*TargetPosition) is exactly the target color.
func (g Gradient) At(s float64) Color {
	x := clamp(s/100, 0, 1)
	p := g.TargetPosition

	if x <= p {
		if p <= 0 {
			return g.Target
		}
		return g.Start.Blend(g.Target, x/p)
	}

	if p >= 1 {
		return g.Target
	}
	return g.Target.Blend(g.End, (x-p)/(1-p))
}

// Round is the generated content of one question. It does not change after
// generation.
type Round struct {
	ID     string
	Mode   Mode
	Target Brand

	// multiple-choice and reverse-identify
	Options []Option

	// slider
	Gradient  Gradient
	Variation Variation

	// matching-set; Pool holds the slot colors in shuffled order.
	Family Family
	Slots  []Brand
	Pool   []Color
}

// CorrectOption returns the index of the correct option, or -1 when the
// round has no options.
func (r Round) CorrectOption() int {
	for i, o := range r.Options {
		if o.Correct {
			return i
		}
	}
	return -1
}
