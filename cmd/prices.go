package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"factoryflow/quote-service/internal/config"
	"factoryflow/quote-service/internal/db"
	"factoryflow/quote-service/internal/model"
	"factoryflow/quote-service/internal/settings"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Show or change the material price table",
}

var pricesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print material prices and advanced options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(s *settings.Store) error {
			cfg, err := s.Load()
			if err != nil {
				return err
			}
			printPricing(s, cfg)
			return nil
		})
	},
}

var pricesSetCmd = &cobra.Command{
	Use:     "set <material> <price>",
	Short:   "Set the unit price of a material",
	Example: "  quote-service prices set copper 22.50",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("price %q is not a number", args[1])
		}
		return withSettings(func(s *settings.Store) error {
			cfg, err := s.SetMaterialPrice(args[0], price)
			if err != nil {
				return err
			}
			printPricing(s, cfg)
			return nil
		})
	},
}

var pricesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default material prices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(s *settings.Store) error {
			cfg, err := s.ResetMaterialPrices()
			if err != nil {
				return err
			}
			printPricing(s, cfg)
			return nil
		})
	},
}

func init() {
	pricesCmd.AddCommand(pricesShowCmd, pricesSetCmd, pricesResetCmd)
}

// withSettings opens only the local store; price commands never touch the
// database.
func withSettings(fn func(*settings.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	local, err := db.OpenLocalStore(cfg.LocalStorePath)
	if err != nil {
		return err
	}
	defer local.Close()

	s, err := settings.New(local, cfg.Pricing)
	if err != nil {
		return err
	}
	return fn(s)
}

func printPricing(s *settings.Store, cfg model.PricingConfig) {
	headerColor.Println("Material prices (per unit)")
	for _, m := range cfg.Materials() {
		labelColor.Printf("  %-12s", m)
		fmt.Printf("$%.2f\n", cfg.MaterialPrices[m])
	}
	if s.Customized(cfg) {
		warnColor.Println("  (customized)")
	}
	fmt.Println()
	headerColor.Println("Advanced options")
	labelColor.Printf("  %-12s", "Margin")
	fmt.Printf("%d%%\n", cfg.MarginPercentage)
	labelColor.Printf("  %-12s", "Rush fee")
	if cfg.RushFeeEnabled {
		fmt.Printf("on ($%.2f)\n", cfg.RushFeeAmount)
	} else {
		fmt.Printf("off ($%.2f when enabled)\n", cfg.RushFeeAmount)
	}
}
