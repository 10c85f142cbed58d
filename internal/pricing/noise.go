package pricing

import "math/rand/v2"

// Noise supplies the market-variance factor multiplied into every quote.
type Noise interface {
	Factor() float64
}

// UniformNoise draws factors uniformly from [Min, Max].
// Float64 defaults to math/rand/v2 and may be replaced for reproducible runs.
type UniformNoise struct {
	Min, Max float64
	Float64  func() float64
}

// Factor implements Noise.
func (n UniformNoise) Factor() float64 {
	draw := n.Float64
	if draw == nil {
		draw = rand.Float64
	}
	return n.Min + draw()*(n.Max-n.Min)
}

// FixedNoise always returns the same factor.
type FixedNoise float64

// Factor implements Noise.
func (n FixedNoise) Factor() float64 { return float64(n) }

// QuoteNoise is the production band for calculated quotes.
func QuoteNoise() UniformNoise { return UniformNoise{Min: 0.9, Max: 1.1} }

// EstimateNoise is the wider band used when the AI service cannot be reached.
// History tightens it.
func EstimateNoise(hasHistory bool) UniformNoise {
	if hasHistory {
		return UniformNoise{Min: 0.95, Max: 1.15}
	}
	return UniformNoise{Min: 0.9, Max: 1.2}
}
