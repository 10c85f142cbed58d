package pricing

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"factoryflow/quote-service/internal/model"
)

// Input is a quote form as submitted: every field still raw text.
type Input struct {
	PartType   string `json:"partType"`
	Material   string `json:"material"`
	Quantity   Field  `json:"quantity"`
	Complexity string `json:"complexity"`
	Deadline   string `json:"deadline"`
}

// Field is a form value that may arrive as a JSON string or a bare number.
type Field string

func (f *Field) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = Field(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = Field(b)
	return nil
}

// Request is a validated Input.
type Request struct {
	PartType   string
	Material   string
	Quantity   int
	Complexity model.Complexity
	Deadline   *model.Date
}

// Field error messages.
const (
	MsgPartTypeRequired = "Part type is required"
	MsgMaterialRequired = "Material is required"
	MsgQuantityInvalid  = "Valid quantity is required"
)

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Msg    string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Msg + " (" + strings.Join(parts, "; ") + ")"
}

// Validate checks a submitted form and converts it to a Request.
func Validate(in Input) (Request, error) {
	fields := map[string]string{}
	req := Request{
		PartType: strings.TrimSpace(in.PartType),
		Material: model.NormalizeMaterial(in.Material),
	}

	if req.PartType == "" {
		fields["partType"] = MsgPartTypeRequired
	}
	if req.Material == "" {
		fields["material"] = MsgMaterialRequired
	}

	qty, err := strconv.Atoi(strings.TrimSpace(string(in.Quantity)))
	if err != nil || qty <= 0 {
		fields["quantity"] = MsgQuantityInvalid
	}
	req.Quantity = qty

	complexity, err := model.ParseComplexity(in.Complexity)
	if err != nil {
		fields["complexity"] = err.Error()
	}
	req.Complexity = complexity

	if d := strings.TrimSpace(in.Deadline); d != "" {
		date, err := model.ParseDate(d)
		if err != nil {
			fields["deadline"] = err.Error()
		} else {
			req.Deadline = &date
		}
	}

	if len(fields) > 0 {
		return Request{}, &ValidationError{
			Msg:    "Please fill in all required fields correctly.",
			Fields: fields,
		}
	}
	return req, nil
}
