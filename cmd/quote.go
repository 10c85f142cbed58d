package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"factoryflow/quote-service/internal/config"
	"factoryflow/quote-service/internal/pricing"
	"factoryflow/quote-service/internal/quote"
)

var quoteFlags struct {
	partType   string
	material   string
	quantity   string
	complexity string
	deadline   string
	save       bool
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a job and print the breakdown",
	Example: `  quote-service quote --part bracket --material steel --quantity 10
  quote-service quote --part flange --material titanium --quantity 3 --complexity complex --save`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.RemoteTimeout+5*time.Second)
		defer cancel()

		a, err := openApp(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer a.close()

		in := pricing.Input{
			PartType:   quoteFlags.partType,
			Material:   quoteFlags.material,
			Quantity:   pricing.Field(quoteFlags.quantity),
			Complexity: quoteFlags.complexity,
			Deadline:   quoteFlags.deadline,
		}

		if !quoteFlags.save {
			res, err := a.svc.Preview(ctx, in)
			if err != nil {
				return reportValidation(err)
			}
			printBreakdown(res.Breakdown)
			return nil
		}

		sub, err := a.svc.Submit(ctx, in)
		if sub == nil {
			return reportValidation(err)
		}
		printBreakdown(sub.Breakdown)
		fmt.Println()
		switch sub.Status {
		case quote.StatusSuccess:
			goodColor.Printf("%s (id %s)\n", sub.Message, sub.Job.ID)
		case quote.StatusWarning:
			warnColor.Printf("%s (local id %s)\n", sub.Message, sub.Job.ID)
		default:
			badColor.Printf("%s %v\n", sub.Message, err)
		}
		return err
	},
}

func init() {
	f := quoteCmd.Flags()
	f.StringVar(&quoteFlags.partType, "part", "", "part type, e.g. bracket")
	f.StringVar(&quoteFlags.material, "material", "steel", "material")
	f.StringVar(&quoteFlags.quantity, "quantity", "", "number of parts")
	f.StringVar(&quoteFlags.complexity, "complexity", "medium", "simple, medium or complex")
	f.StringVar(&quoteFlags.deadline, "deadline", "", "deadline as YYYY-MM-DD")
	f.BoolVar(&quoteFlags.save, "save", false, "store the quote in the jobs table")
}

func reportValidation(err error) error {
	var ve *pricing.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	badColor.Println(ve.Msg)
	fields := make([]string, 0, len(ve.Fields))
	for k := range ve.Fields {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	for _, k := range fields {
		fmt.Printf("  %s: %s\n", k, ve.Fields[k])
	}
	return errors.New("invalid quote request")
}

func printBreakdown(b pricing.Breakdown) {
	row := func(label, value string) {
		labelColor.Printf("  %-22s", label)
		fmt.Println(value)
	}
	headerColor.Println("Quote breakdown")
	row("Material", fmt.Sprintf("%s ($%.2f / unit)", b.Material, b.BasePrice))
	row("Complexity", fmt.Sprintf("%s (×%.2f)", b.Complexity, b.ComplexityMultiplier))
	row("Quantity", fmt.Sprintf("%d (×%.2f)", b.Quantity, b.QuantityMultiplier))
	row("Base cost", fmt.Sprintf("$%.2f", b.BaseCost))
	row("Market factor", fmt.Sprintf("×%.2f", b.RandomFactor))
	row("Margin", fmt.Sprintf("%d%% (×%.2f)", b.MarginPercentage, b.MarginMultiplier))
	if b.RushFeeEnabled {
		row("Rush fee", b.RushFee.String())
	} else {
		row("Rush fee", "off")
	}
	fmt.Println()
	labelColor.Printf("  %-22s", "Final quote")
	goodColor.Println(b.FinalQuote.String())
}
