// Package pricing turns validated part attributes and a pricing
// configuration into a quote.
//
// The formula:
//
//	baseCost = basePrice × complexityMultiplier × max(1, log10(qty)+1) × qty
//	amount   = baseCost × noise × (1 + margin/100) [+ rushFee]
//	quote    = round(amount, 2)
package pricing

import (
	"math"

	"factoryflow/quote-service/internal/model"
)

// DefaultComplexityMultiplier applies to labels missing from the table.
const DefaultComplexityMultiplier = 1.5

var complexityMultipliers = map[model.Complexity]float64{
	model.ComplexitySimple:  1.0,
	model.ComplexityMedium:  1.5,
	model.ComplexityComplex: 2.5,
}

// ComplexityMultiplier returns the cost multiplier for c.
func ComplexityMultiplier(c model.Complexity) float64 {
	if m, ok := complexityMultipliers[c]; ok {
		return m
	}
	return DefaultComplexityMultiplier
}

// QuantityMultiplier is the sub-linear volume curve max(1, log10(q)+1).
// q must be at least 1.
func QuantityMultiplier(quantity int) float64 {
	return math.Max(1, math.Log10(float64(quantity))+1)
}

// Breakdown records every intermediate value of a calculation.
type Breakdown struct {
	Material             string           `json:"material"`
	BasePrice            float64          `json:"basePrice"`
	Complexity           model.Complexity `json:"complexity"`
	ComplexityMultiplier float64          `json:"complexityMultiplier"`
	Quantity             int              `json:"quantity"`
	QuantityMultiplier   float64          `json:"quantityMultiplier"`
	BaseCost             float64          `json:"baseCost"`
	RandomFactor         float64          `json:"randomFactor"`
	MarginPercentage     int              `json:"marginPercentage"`
	MarginMultiplier     float64          `json:"marginMultiplier"`
	RushFeeEnabled       bool             `json:"rushFeeEnabled"`
	RushFee              model.Money      `json:"rushFeeAmount"`
	Amount               float64          `json:"amount"`
	FinalQuote           model.Money      `json:"finalQuote"`
}

// Result is a calculated quote and its breakdown.
type Result struct {
	Quote     model.Money `json:"quote"`
	Breakdown Breakdown   `json:"breakdown"`
}

// Calculator computes quotes. The zero value is not usable; see NewCalculator.
type Calculator struct {
	noise Noise
}

// NewCalculator returns a Calculator drawing its variance from noise,
// or from QuoteNoise when noise is nil.
func NewCalculator(noise Noise) *Calculator {
	if noise == nil {
		noise = QuoteNoise()
	}
	return &Calculator{noise: noise}
}

// Calculate prices a validated request. It never fails: Validate is the
// gate in front of it.
func (c *Calculator) Calculate(req Request, cfg model.PricingConfig) Result {
	basePrice := cfg.BasePrice(req.Material)
	complexityMul := ComplexityMultiplier(req.Complexity)
	quantityMul := QuantityMultiplier(req.Quantity)
	baseCost := basePrice * complexityMul * quantityMul * float64(req.Quantity)

	factor := c.noise.Factor()
	marginMul := 1 + float64(cfg.MarginPercentage)/100
	amount := baseCost * factor * marginMul

	var rushFee float64
	if cfg.RushFeeEnabled {
		rushFee = cfg.RushFeeAmount
		amount += rushFee
	}

	quote := model.RoundMoney(amount)
	return Result{
		Quote: quote,
		Breakdown: Breakdown{
			Material:             req.Material,
			BasePrice:            basePrice,
			Complexity:           req.Complexity,
			ComplexityMultiplier: complexityMul,
			Quantity:             req.Quantity,
			QuantityMultiplier:   quantityMul,
			BaseCost:             baseCost,
			RandomFactor:         factor,
			MarginPercentage:     cfg.MarginPercentage,
			MarginMultiplier:     marginMul,
			RushFeeEnabled:       cfg.RushFeeEnabled,
			RushFee:              model.RoundMoney(rushFee),
			Amount:               amount,
			FinalQuote:           quote,
		},
	}
}

// Estimate is the rough figure shown when no AI suggestion is available:
// the same base cost curve scaled by noise, without margin or rush fee.
func Estimate(req Request, cfg model.PricingConfig, noise Noise) model.Money {
	baseCost := cfg.BasePrice(req.Material) *
		ComplexityMultiplier(req.Complexity) *
		QuantityMultiplier(req.Quantity) *
		float64(req.Quantity)
	return model.RoundMoney(baseCost * noise.Factor())
}
