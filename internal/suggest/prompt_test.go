package suggest_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"factoryflow/quote-service/internal/model"
	"factoryflow/quote-service/internal/pricing"
	"factoryflow/quote-service/internal/suggest"
)

func TestBuildPrompt_WithHistory(t *testing.T) {
	deadline, _ := model.ParseDate("2026-10-29")
	past := model.Job{
		PartType:   "bracket",
		Material:   "steel",
		Quantity:   10,
		Complexity: model.ComplexityMedium,
		Deadline:   &deadline,
		Quote:      540,
		CreatedAt:  time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
	}
	newDeadline, _ := model.ParseDate("2026-10-26")
	req := pricing.Request{
		PartType:   "flange",
		Material:   "steel",
		Quantity:   25,
		Complexity: model.ComplexityComplex,
		Deadline:   &newDeadline,
	}
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	prompt := suggest.BuildPrompt(req, []model.Job{past}, now)

	for _, want := range []string{
		"Historical Jobs:\n1. Part: bracket, Material: steel, Quantity: 10, Complexity: medium, Deadline: 10 days → Quote: $540.00",
		"New Job:\nPart: flange, Material: steel, Quantity: 25, Complexity: complex, Deadline: 7 days",
		"Return only the estimated quote as a dollar amount (e.g. $975.00).",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n---\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_NoHistoryNoDeadline(t *testing.T) {
	req := pricing.Request{PartType: "gear", Material: "plastic", Quantity: 1, Complexity: model.ComplexitySimple}
	prompt := suggest.BuildPrompt(req, nil, time.Now())
	if !strings.Contains(prompt, "No historical data available for similar jobs.") {
		t.Error("missing no-history line")
	}
	if !strings.Contains(prompt, "Deadline: not specified") {
		t.Error("missing unspecified deadline")
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		reply string
		want  model.Money
	}{
		{"$975.00", 975},
		{"$1,234.567", 1234.57},
		{"Approximately $ 480 for this job.", 480},
		{"612.4", 612.4},
	}
	for _, c := range cases {
		got, err := suggest.ParseAmount(c.reply)
		if err != nil || got != c.want {
			t.Errorf("ParseAmount(%q) = %v, %v; want %v", c.reply, got, err, c.want)
		}
	}
	if _, err := suggest.ParseAmount("I cannot say."); !errors.Is(err, suggest.ErrNoAmount) {
		t.Errorf("err = %v, want ErrNoAmount", err)
	}
}
