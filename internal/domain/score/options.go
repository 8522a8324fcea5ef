package score

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithExpressionKeys sets the sample keys tracked for the left and right
// mouth-corner raise intensities.
func WithExpressionKeys(left, right string) Option {
	return func(e *Engine) {
		if left != "" && right != "" {
			e.leftKey = left
			e.rightKey = right
		}
	}
}

// WithBands replaces the classification bands. The list is validated by
// New; passing nil or an empty list keeps the defaults.
func WithBands(bands []Band) Option {
	return func(e *Engine) {
		if len(bands) > 0 {
			e.bands = bands
		}
	}
}

// WithMessageTiers replaces the encouragement message tiers. The list is
// validated by New; passing nil or an empty list keeps the defaults.
func WithMessageTiers(tiers []MessageTier) Option {
	return func(e *Engine) {
		if len(tiers) > 0 {
			e.tiers = tiers
		}
	}
}
