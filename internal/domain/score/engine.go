// Package score computes a bounded smile score and its display category
// from per-frame expression samples.
package score

import (
	"time"

	"github.com/egaolabs/smiled/internal/domain/model"
)

// Score bounds.
const (
	minScore = 0
	maxScore = 100
)

// floatSlack absorbs binary representation error before truncation, so a
// mean that is exactly 0.4 in decimal still truncates to 40.
const floatSlack = 1e-9

// Default expression keys tracked by the engine. They name the left and
// right mouth-corner raise intensities emitted by the upstream model.
const (
	defaultLeftKey  = "mouthSmileLeft"
	defaultRightKey = "mouthSmileRight"
)

// Level is the coarse three-way classification of a smile score.
type Level string

// Levels, ordered from lowest to highest score range.
const (
	LevelRed    Level = "red"
	LevelYellow Level = "yellow"
	LevelGreen  Level = "green"
)

// Band maps scores at or above Min to a Level. A band list partitions
// [0,100] into contiguous ranges: each band covers [Min, nextBand.Min-1].
type Band struct {
	Min   int   `koanf:"min"`
	Level Level `koanf:"level"`
}

// MessageTier maps scores at or above Min to an encouragement text.
type MessageTier struct {
	Min  int    `koanf:"min"`
	Text string `koanf:"text"`
}

func defaultBands() []Band {
	return []Band{
		{Min: 0, Level: LevelRed},
		{Min: 34, Level: LevelYellow},
		{Min: 67, Level: LevelGreen},
	}
}

func defaultMessageTiers() []MessageTier {
	return []MessageTier{
		{Min: 0, Text: "笑顔を見せて!"},
		{Min: 34, Text: "もう少し口角を上げて!"},
		{Min: 50, Text: "その調子!"},
		{Min: 67, Text: "いい笑顔です!"},
		{Min: 80, Text: "素晴らしい笑顔!"},
	}
}

// Engine converts expression samples into scores, levels and messages.
// It holds no mutable state: all methods are pure and safe for
// concurrent use.
type Engine struct {
	leftKey  string
	rightKey string
	bands    []Band
	tiers    []MessageTier
}

// New creates an Engine with the default thresholds, applying options.
// Band and tier lists are validated: they must be ascending, start at 0
// and stay within [0,100].
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		leftKey:  defaultLeftKey,
		rightKey: defaultRightKey,
		bands:    defaultBands(),
		tiers:    defaultMessageTiers(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := validateBands(e.bands); err != nil {
		return nil, err
	}
	if err := validateTiers(e.tiers); err != nil {
		return nil, err
	}

	return e, nil
}

func validateBands(bands []Band) error {
	if len(bands) == 0 {
		return ErrNoBands
	}
	if bands[0].Min != minScore {
		return ErrBandGap
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].Min <= bands[i-1].Min {
			return ErrBandOrder
		}
	}
	if bands[len(bands)-1].Min > maxScore {
		return ErrBandRange
	}
	return nil
}

func validateTiers(tiers []MessageTier) error {
	if len(tiers) == 0 {
		return ErrNoTiers
	}
	if tiers[0].Min != minScore {
		return ErrTierGap
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Min <= tiers[i-1].Min {
			return ErrTierOrder
		}
	}
	if tiers[len(tiers)-1].Min > maxScore {
		return ErrTierRange
	}
	return nil
}

// Compute derives the smile score from a sample.
//
// An absent or empty sample scores 0. Each tracked expression missing
// from the sample contributes 0.0 rather than failing. The result is the
// mean of the two tracked intensities scaled to [0,100], truncated and
// clamped, so out-of-range model noise degrades to a bounded value
// instead of an error.
func (e *Engine) Compute(sample model.Sample) int {
	if len(sample) == 0 {
		return minScore
	}

	left := sample[e.leftKey]
	right := sample[e.rightKey]
	mean := (left + right) / 2

	s := int(mean*maxScore + floatSlack)
	if s < minScore {
		return minScore
	}
	if s > maxScore {
		return maxScore
	}
	return s
}

// Classify maps a score onto its band. Total on all int inputs: scores
// below the first boundary fall into the lowest band, scores past the
// last boundary into the highest.
func (e *Engine) Classify(score int) Level {
	for i := len(e.bands) - 1; i > 0; i-- {
		if score >= e.bands[i].Min {
			return e.bands[i].Level
		}
	}
	return e.bands[0].Level
}

// Message selects the encouragement text for a score. Tiers are finer
// grained than bands.
func (e *Engine) Message(score int) string {
	for i := len(e.tiers) - 1; i > 0; i-- {
		if score >= e.tiers[i].Min {
			return e.tiers[i].Text
		}
	}
	return e.tiers[0].Text
}

// Evaluate scores a frame and assembles the presentation-ready reading.
func (e *Engine) Evaluate(frame model.Frame) model.Reading {
	score := e.Compute(frame.Blendshapes)
	ts := frame.TS
	if ts.IsZero() {
		ts = time.Now()
	}
	return model.Reading{
		SessionID: frame.SessionID,
		FrameID:   frame.FrameID,
		Score:     score,
		Level:     string(e.Classify(score)),
		Message:   e.Message(score),
		TS:        ts,
	}
}
