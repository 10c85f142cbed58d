// Package settings keeps the shop's pricing configuration between sessions:
// the material price table and the advanced options, each as a JSON value
// under its own key.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	bolt "go.etcd.io/bbolt"

	"factoryflow/quote-service/internal/model"
)

var bucket = []byte("settings")

// Keys under which the configuration is stored.
const (
	KeyMaterialPrices  = "materialPrices"
	KeyAdvancedOptions = "advancedOptions"
)

// ErrInvalid is wrapped by every rejected setting.
var ErrInvalid = errors.New("invalid pricing setting")

// Store reads and writes the pricing configuration.
type Store struct {
	db       *bolt.DB
	defaults model.PricingConfig
}

// New prepares the settings bucket. defaults is what Load returns for keys
// that were never saved and what ResetMaterialPrices restores.
func New(db *bolt.DB, defaults model.PricingConfig) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create settings bucket: %w", err)
	}
	return &Store{db: db, defaults: defaults.Clone()}, nil
}

// Defaults returns a copy of the configured defaults.
func (s *Store) Defaults() model.PricingConfig { return s.defaults.Clone() }

// Load returns the saved configuration. A saved price table replaces the
// default one; advanced options are decoded over the defaults, so fields
// missing from the stored value keep their default.
func (s *Store) Load() (model.PricingConfig, error) {
	cfg := s.defaults.Clone()
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if raw := b.Get([]byte(KeyMaterialPrices)); raw != nil {
			prices := map[string]float64{}
			if err := json.Unmarshal(raw, &prices); err != nil {
				return fmt.Errorf("decode %s: %w", KeyMaterialPrices, err)
			}
			cfg.MaterialPrices = prices
		}
		if raw := b.Get([]byte(KeyAdvancedOptions)); raw != nil {
			if err := json.Unmarshal(raw, &cfg.AdvancedOptions); err != nil {
				return fmt.Errorf("decode %s: %w", KeyAdvancedOptions, err)
			}
		}
		return nil
	})
	if err != nil {
		return model.PricingConfig{}, err
	}
	return cfg, nil
}

// Save validates cfg and writes both keys. encoding/json sorts map keys, so
// saving what Load returned writes the same bytes back.
func (s *Store) Save(cfg model.PricingConfig) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	prices, err := json.Marshal(cfg.MaterialPrices)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyMaterialPrices, err)
	}
	opts, err := json.Marshal(cfg.AdvancedOptions)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyAdvancedOptions, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if err := b.Put([]byte(KeyMaterialPrices), prices); err != nil {
			return err
		}
		return b.Put([]byte(KeyAdvancedOptions), opts)
	})
}

// Raw returns the stored bytes of key, or nil if it was never saved.
func (s *Store) Raw(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

// SetMaterialPrice sets the unit price of one material, adding it to the
// table if needed, and returns the updated configuration.
func (s *Store) SetMaterialPrice(material string, price float64) (model.PricingConfig, error) {
	material = model.NormalizeMaterial(material)
	if material == "" {
		return model.PricingConfig{}, fmt.Errorf("%w: material name is required", ErrInvalid)
	}
	return s.update(func(cfg *model.PricingConfig) {
		cfg.MaterialPrices[material] = price
	})
}

// ResetMaterialPrices restores the default price table. Advanced options
// are left alone.
func (s *Store) ResetMaterialPrices() (model.PricingConfig, error) {
	return s.update(func(cfg *model.PricingConfig) {
		cfg.MaterialPrices = maps.Clone(s.defaults.MaterialPrices)
	})
}

// SetAdvancedOptions replaces the margin and rush-fee settings.
func (s *Store) SetAdvancedOptions(opts model.AdvancedOptions) (model.PricingConfig, error) {
	return s.update(func(cfg *model.PricingConfig) {
		cfg.AdvancedOptions = opts
	})
}

// Customized reports whether any material price in cfg differs from the
// defaults.
func (s *Store) Customized(cfg model.PricingConfig) bool {
	return !maps.Equal(cfg.MaterialPrices, s.defaults.MaterialPrices)
}

func (s *Store) update(apply func(*model.PricingConfig)) (model.PricingConfig, error) {
	cfg, err := s.Load()
	if err != nil {
		return model.PricingConfig{}, err
	}
	apply(&cfg)
	if err := s.Save(cfg); err != nil {
		return model.PricingConfig{}, err
	}
	return cfg, nil
}

// Validate checks the ranges of a pricing configuration.
func Validate(cfg model.PricingConfig) error {
	for material, price := range cfg.MaterialPrices {
		if material == "" || material != model.NormalizeMaterial(material) {
			return fmt.Errorf("%w: material name %q must be trimmed lower case", ErrInvalid, material)
		}
		if price < 0 {
			return fmt.Errorf("%w: price of %s must not be negative", ErrInvalid, material)
		}
	}
	if cfg.RushFeeAmount < 0 {
		return fmt.Errorf("%w: rush fee must not be negative", ErrInvalid)
	}
	if cfg.MarginPercentage < 0 || cfg.MarginPercentage > 100 {
		return fmt.Errorf("%w: margin must be between 0 and 100", ErrInvalid)
	}
	return nil
}
