// Package quiz generates and scores brand color rounds.
//
// A Generator derives rounds from an immutable Catalog: multiple-choice
// palettes with perturbed distractors, reverse-identify brand names, slider
// gradients with an embedded target, and hue-family matching sets. An
// Evaluator turns an Answer into a ScoreResult, and a Session strings the
// rounds together into the five-level game.
//
// Nothing in this package reads global state. All randomness comes from an
// injected Source, so a seeded source reproduces a game exactly.
package quiz
