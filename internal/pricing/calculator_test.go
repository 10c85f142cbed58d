package pricing_test

import (
	"math"
	"testing"

	"factoryflow/quote-service/internal/model"
	"factoryflow/quote-service/internal/pricing"
)

func steelMedium(qty int) pricing.Request {
	return pricing.Request{
		PartType:   "bracket",
		Material:   "steel",
		Quantity:   qty,
		Complexity: model.ComplexityMedium,
	}
}

// ── Reference case ─────────────────────────────────────────────────────────

func TestCalculate_ReferenceBreakdown(t *testing.T) {
	calc := pricing.NewCalculator(pricing.FixedNoise(1.0))
	res := calc.Calculate(steelMedium(10), model.DefaultPricingConfig())

	b := res.Breakdown
	if b.BasePrice != 15 {
		t.Errorf("BasePrice = %v, want 15", b.BasePrice)
	}
	if b.ComplexityMultiplier != 1.5 {
		t.Errorf("ComplexityMultiplier = %v, want 1.5", b.ComplexityMultiplier)
	}
	if b.QuantityMultiplier != 2.0 {
		t.Errorf("QuantityMultiplier = %v, want 2.0", b.QuantityMultiplier)
	}
	if b.BaseCost != 450 {
		t.Errorf("BaseCost = %v, want 450", b.BaseCost)
	}
	if b.MarginMultiplier != 1.2 {
		t.Errorf("MarginMultiplier = %v, want 1.2", b.MarginMultiplier)
	}
	if res.Quote != 540 {
		t.Errorf("Quote = %v, want 540", res.Quote)
	}
	if b.FinalQuote != res.Quote {
		t.Errorf("FinalQuote = %v, want %v", b.FinalQuote, res.Quote)
	}
}

func TestCalculate_ReferenceRangeWithNoise(t *testing.T) {
	for _, draw := range []float64{0, 0.25, 0.5, 0.75, 0.999999} {
		d := draw
		calc := pricing.NewCalculator(pricing.UniformNoise{
			Min: 0.9, Max: 1.1,
			Float64: func() float64 { return d },
		})
		res := calc.Calculate(steelMedium(10), model.DefaultPricingConfig())
		if res.Quote < 486 || res.Quote > 594 {
			t.Errorf("draw %v: quote %v outside [486, 594]", d, res.Quote)
		}
	}
}

func TestCalculate_DefaultNoiseWithinBand(t *testing.T) {
	calc := pricing.NewCalculator(nil)
	for i := 0; i < 200; i++ {
		res := calc.Calculate(steelMedium(10), model.DefaultPricingConfig())
		f := res.Breakdown.RandomFactor
		if f < 0.9 || f > 1.1 {
			t.Fatalf("random factor %v outside [0.9, 1.1]", f)
		}
	}
}

// ── Rush fee and margin ────────────────────────────────────────────────────

func TestCalculate_RushFeeAddedFlat(t *testing.T) {
	cfg := model.DefaultPricingConfig()
	cfg.RushFeeEnabled = true
	cfg.RushFeeAmount = 50

	res := pricing.NewCalculator(pricing.FixedNoise(1.0)).Calculate(steelMedium(10), cfg)
	if res.Quote != 590 {
		t.Errorf("Quote = %v, want 590", res.Quote)
	}
	if res.Breakdown.RushFee != 50 {
		t.Errorf("RushFee = %v, want 50", res.Breakdown.RushFee)
	}
}

func TestCalculate_RushFeeIgnoredWhenDisabled(t *testing.T) {
	cfg := model.DefaultPricingConfig()
	cfg.RushFeeAmount = 75

	res := pricing.NewCalculator(pricing.FixedNoise(1.0)).Calculate(steelMedium(10), cfg)
	if res.Breakdown.RushFee != 0 {
		t.Errorf("RushFee = %v, want 0 when disabled", res.Breakdown.RushFee)
	}
	if res.Quote != 540 {
		t.Errorf("Quote = %v, want 540", res.Quote)
	}
}

func TestCalculate_MarginPresets(t *testing.T) {
	cases := []struct {
		margin int
		want   model.Money
	}{
		{0, 450},
		{10, 495},
		{20, 540},
		{30, 585},
	}
	for _, c := range cases {
		cfg := model.DefaultPricingConfig()
		cfg.MarginPercentage = c.margin
		res := pricing.NewCalculator(pricing.FixedNoise(1.0)).Calculate(steelMedium(10), cfg)
		if res.Quote != c.want {
			t.Errorf("margin %d%%: quote = %v, want %v", c.margin, res.Quote, c.want)
		}
	}
}

// ── Lookup defaults ────────────────────────────────────────────────────────

func TestCalculate_UnknownMaterialUsesFallbackPrice(t *testing.T) {
	req := steelMedium(1)
	req.Material = "unobtainium"
	res := pricing.NewCalculator(pricing.FixedNoise(1.0)).Calculate(req, model.DefaultPricingConfig())
	if res.Breakdown.BasePrice != model.FallbackBasePrice {
		t.Errorf("BasePrice = %v, want %v", res.Breakdown.BasePrice, model.FallbackBasePrice)
	}
}

func TestComplexityMultiplier(t *testing.T) {
	cases := map[model.Complexity]float64{
		model.ComplexitySimple:  1.0,
		model.ComplexityMedium:  1.5,
		model.ComplexityComplex: 2.5,
		"extreme":               pricing.DefaultComplexityMultiplier,
	}
	for c, want := range cases {
		if got := pricing.ComplexityMultiplier(c); got != want {
			t.Errorf("ComplexityMultiplier(%q) = %v, want %v", c, got, want)
		}
	}
}

func TestQuantityMultiplier(t *testing.T) {
	cases := []struct {
		qty  int
		want float64
	}{
		{1, 1},
		{10, 2},
		{100, 3},
		{1000, 4},
	}
	for _, c := range cases {
		if got := pricing.QuantityMultiplier(c.qty); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("QuantityMultiplier(%d) = %v, want %v", c.qty, got, c.want)
		}
	}
}

// ── Properties ─────────────────────────────────────────────────────────────

func TestCalculate_NonNegativeAndCents(t *testing.T) {
	materials := []string{"aluminum", "steel", "plastic", "titanium", "other"}
	quantities := []int{1, 2, 3, 7, 13, 99, 250, 1001}
	draws := []float64{0, 0.123, 0.5, 0.987}

	for _, m := range materials {
		for _, q := range quantities {
			for _, c := range model.Complexities() {
				for _, d := range draws {
					draw := d
					calc := pricing.NewCalculator(pricing.UniformNoise{
						Min: 0.9, Max: 1.1,
						Float64: func() float64 { return draw },
					})
					res := calc.Calculate(pricing.Request{
						PartType: "p", Material: m, Quantity: q, Complexity: c,
					}, model.DefaultPricingConfig())

					if res.Quote < 0 {
						t.Fatalf("%s/%d/%s: negative quote %v", m, q, c, res.Quote)
					}
					cents := float64(res.Quote) * 100
					if math.Abs(cents-math.Round(cents)) > 1e-6 {
						t.Fatalf("%s/%d/%s: quote %v not rounded to cents", m, q, c, res.Quote)
					}
				}
			}
		}
	}
}

// ── Estimate ───────────────────────────────────────────────────────────────

func TestEstimate_NoMarginNoRushFee(t *testing.T) {
	cfg := model.DefaultPricingConfig()
	cfg.RushFeeEnabled = true
	got := pricing.Estimate(steelMedium(10), cfg, pricing.FixedNoise(1.0))
	if got != 450 {
		t.Errorf("Estimate = %v, want 450", got)
	}
}

func TestEstimateNoise_Bands(t *testing.T) {
	wide := pricing.EstimateNoise(false)
	if wide.Min != 0.9 || wide.Max != 1.2 {
		t.Errorf("EstimateNoise(false) = [%v, %v], want [0.9, 1.2]", wide.Min, wide.Max)
	}
	tight := pricing.EstimateNoise(true)
	if tight.Min != 0.95 || tight.Max != 1.15 {
		t.Errorf("EstimateNoise(true) = [%v, %v], want [0.95, 1.15]", tight.Min, tight.Max)
	}
}
