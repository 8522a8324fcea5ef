// Package synthetic generates fake expression-sample frames for load and
// demo runs against a running service. Generation is deterministic for a
// given seed so a run can be replayed.
package synthetic

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Expression profile bounds for mouth-corner intensities. Each profile
// spans [min, min+range) in blendshape units.
const (
	beamingMin    = 0.80
	beamingRange  = 0.20
	smilingMin    = 0.55
	smilingRange  = 0.25
	neutralMin    = 0.30
	neutralRange  = 0.20
	slightMin     = 0.10
	slightRange   = 0.20
	frowningMin   = 0.00
	frowningRange = 0.08
)

// asymmetryJitter is the maximum difference injected between the left and
// right corner of one frame. Real faces are never perfectly symmetric.
const asymmetryJitter = 0.08

// Profile indices, weighted towards mid-range expressions.
const (
	caseBeaming = iota
	caseSmiling
	caseNeutral
	caseSlight
	caseFrowning
	profileCount
)

// Generator produces frames with per-session expression profiles.
type Generator struct {
	rng   *rand.Rand
	runID string
}

// NewGenerator creates a generator. The same seed yields the same frame
// intensities; only the run ID differs between runs.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewSource(seed)),
		runID: uuid.New().String()[:8],
	}
}

// GenerateFrames builds frames for the configured sessions. Each session
// gets a fixed expression profile and framesPerSession frames spaced by
// interval, starting at start.
func (g *Generator) GenerateFrames(sessions, framesPerSession int, interval time.Duration, start time.Time) []Frame {
	frames := make([]Frame, 0, sessions*framesPerSession)

	for s := 0; s < sessions; s++ {
		sessionID := fmt.Sprintf("session-%s-%03d", g.runID, s)
		profile := g.rng.Intn(profileCount)

		for f := 0; f < framesPerSession; f++ {
			ts := start.Add(time.Duration(f) * interval)
			frames = append(frames, Frame{
				FrameID:     fmt.Sprintf("%s-f%05d", sessionID, f),
				SessionID:   sessionID,
				Blendshapes: g.sample(profile),
				TS:          ts.UTC().Format(time.RFC3339Nano),
			})
		}
	}

	return frames
}

// sample draws one blendshape map for the given profile.
func (g *Generator) sample(profile int) map[string]float64 {
	var low, span float64
	switch profile {
	case caseBeaming:
		low, span = beamingMin, beamingRange
	case caseSmiling:
		low, span = smilingMin, smilingRange
	case caseNeutral:
		low, span = neutralMin, neutralRange
	case caseSlight:
		low, span = slightMin, slightRange
	case caseFrowning:
		low, span = frowningMin, frowningRange
	default:
		low, span = neutralMin, neutralRange
	}

	base := low + g.rng.Float64()*span
	jitter := (g.rng.Float64() - 0.5) * asymmetryJitter

	left := clamp01(base + jitter)
	right := clamp01(base - jitter)

	return map[string]float64{
		"mouthSmileLeft":  left,
		"mouthSmileRight": right,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
