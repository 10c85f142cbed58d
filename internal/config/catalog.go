package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"factoryflow/quote-service/internal/model"
)

// LoadCatalog reads a YAML pricing catalog:
//
//	material_prices:
//	  steel: 15
//	  copper: 22.5
//	margin_percentage: 25
//	rush_fee_enabled: false
//	rush_fee_amount: 50
//
// Keys left out keep the built-in defaults; a material_prices map replaces
// the built-in table. Material names are stored trimmed and lower case.
func LoadCatalog(path string) (model.PricingConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.PricingConfig{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes a catalog document; see LoadCatalog.
func ParseCatalog(raw []byte) (model.PricingConfig, error) {
	cfg := model.DefaultPricingConfig()
	var doc model.PricingConfig
	doc.AdvancedOptions = cfg.AdvancedOptions

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return model.PricingConfig{}, fmt.Errorf("parse catalog: %w", err)
	}
	if doc.MaterialPrices != nil {
		cfg.MaterialPrices = make(map[string]float64, len(doc.MaterialPrices))
		for name, price := range doc.MaterialPrices {
			key := model.NormalizeMaterial(name)
			if key == "" {
				return model.PricingConfig{}, fmt.Errorf("catalog: empty material name")
			}
			if _, dup := cfg.MaterialPrices[key]; dup {
				return model.PricingConfig{}, fmt.Errorf("catalog: material %q listed twice", key)
			}
			cfg.MaterialPrices[key] = price
		}
	}
	cfg.AdvancedOptions = doc.AdvancedOptions

	for m, p := range cfg.MaterialPrices {
		if p < 0 {
			return model.PricingConfig{}, fmt.Errorf("catalog: price of %s must not be negative", m)
		}
	}
	if cfg.MarginPercentage < 0 || cfg.MarginPercentage > 100 {
		return model.PricingConfig{}, fmt.Errorf("catalog: margin_percentage must be between 0 and 100")
	}
	if cfg.RushFeeAmount < 0 {
		return model.PricingConfig{}, fmt.Errorf("catalog: rush_fee_amount must not be negative")
	}
	return cfg, nil
}
