package model

import (
	"maps"
	"slices"
	"strings"
)

// Default pricing values.
const (
	DefaultMarginPercentage = 20
	DefaultRushFeeAmount    = 50.0
	// FallbackBasePrice is the unit price of a material missing from the
	// price table.
	FallbackBasePrice = 10.0
)

// AdvancedOptions are the margin and rush-fee knobs of a quote.
type AdvancedOptions struct {
	RushFeeEnabled   bool    `json:"rushFeeEnabled" yaml:"rush_fee_enabled"`
	RushFeeAmount    float64 `json:"rushFeeAmount" yaml:"rush_fee_amount"`
	MarginPercentage int     `json:"marginPercentage" yaml:"margin_percentage"`
}

// PricingConfig is the session-wide pricing configuration: a unit price per
// material plus the advanced options.
type PricingConfig struct {
	MaterialPrices  map[string]float64 `json:"materialPrices" yaml:"material_prices"`
	AdvancedOptions `yaml:",inline"`
}

// DefaultMaterialPrices returns a fresh copy of the built-in price table.
func DefaultMaterialPrices() map[string]float64 {
	return map[string]float64{
		"aluminum": 10,
		"steel":    15,
		"plastic":  5,
		"titanium": 50,
	}
}

// DefaultAdvancedOptions returns margin 20%, rush fee off ($50 when enabled).
func DefaultAdvancedOptions() AdvancedOptions {
	return AdvancedOptions{
		RushFeeEnabled:   false,
		RushFeeAmount:    DefaultRushFeeAmount,
		MarginPercentage: DefaultMarginPercentage,
	}
}

// DefaultPricingConfig returns the built-in pricing configuration.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		MaterialPrices:  DefaultMaterialPrices(),
		AdvancedOptions: DefaultAdvancedOptions(),
	}
}

// NormalizeMaterial is the key form of a material name: trimmed and lower
// case. Price tables are keyed by it.
func NormalizeMaterial(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BasePrice returns the unit price for material, or FallbackBasePrice when
// the material is not priced. The lookup ignores case and surrounding space.
func (c PricingConfig) BasePrice(material string) float64 {
	if p, ok := c.MaterialPrices[NormalizeMaterial(material)]; ok {
		return p
	}
	return FallbackBasePrice
}

// Materials returns the priced materials in sorted order.
func (c PricingConfig) Materials() []string {
	return slices.Sorted(maps.Keys(c.MaterialPrices))
}

// Clone returns a deep copy.
func (c PricingConfig) Clone() PricingConfig {
	out := c
	out.MaterialPrices = maps.Clone(c.MaterialPrices)
	if out.MaterialPrices == nil {
		out.MaterialPrices = map[string]float64{}
	}
	return out
}
