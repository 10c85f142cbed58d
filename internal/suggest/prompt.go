package suggest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"factoryflow/quote-service/internal/model"
	"factoryflow/quote-service/internal/pricing"
)

const noHistory = "No historical data available for similar jobs."

// BuildPrompt renders the user message for a suggestion: the similar jobs,
// each deadline as a day distance from the job's creation, then the new job
// with its deadline counted from now.
func BuildPrompt(req pricing.Request, similar []model.Job, now time.Time) string {
	lines := make([]string, 0, len(similar))
	for i, job := range similar {
		deadline := "not specified"
		if job.Deadline != nil {
			deadline = fmt.Sprintf("%d days", job.Deadline.DaysUntil(job.CreatedAt))
		}
		lines = append(lines, fmt.Sprintf("%d. Part: %s, Material: %s, Quantity: %d, Complexity: %s, Deadline: %s → Quote: %s",
			i+1, job.PartType, job.Material, job.Quantity, job.Complexity, deadline, job.Quote))
	}
	history := strings.Join(lines, "\n")
	if history == "" {
		history = noHistory
	}

	deadline := "not specified"
	if req.Deadline != nil {
		deadline = fmt.Sprintf("%d days", req.Deadline.DaysUntil(now))
	}

	var b strings.Builder
	b.WriteString("You are a quoting assistant for a fabrication shop. Given the following historical quotes and a new job, suggest a reasonable quote amount.\n\n")
	b.WriteString("Historical Jobs:\n")
	b.WriteString(history)
	b.WriteString("\n\nNew Job:\n")
	fmt.Fprintf(&b, "Part: %s, Material: %s, Quantity: %d, Complexity: %s, Deadline: %s\n\n",
		req.PartType, req.Material, req.Quantity, req.Complexity, deadline)
	b.WriteString("Return only the estimated quote as a dollar amount (e.g. $975.00).")
	return b.String()
}

var amountRe = regexp.MustCompile(`\$?\s*(\d[\d,]*(?:\.\d+)?)`)

// ErrNoAmount is returned by ParseAmount when the reply holds no number.
var ErrNoAmount = errors.New("no dollar amount in reply")

// ParseAmount extracts the first dollar amount from a model reply such as
// "$1,234.50" or "Approximately 975 dollars".
func ParseAmount(reply string) (model.Money, error) {
	m := amountRe.FindStringSubmatch(reply)
	if m == nil {
		return 0, ErrNoAmount
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoAmount, err)
	}
	return model.RoundMoney(v), nil
}
