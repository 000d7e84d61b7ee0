package site

import (
	"fmt"

	"github.com/okian/attrition/internal/adapters/http/api"
	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/prediction"
)

// page is the view model of index.html.
type page struct {
	Columns [][]input
	Result  *resultView
	Error   string
}

type input struct {
	Key     string
	Label   string
	Numeric bool
	Min     int
	Max     int
	Step    int
	Value   string
	Choices []choice
	Message string
}

type choice struct {
	Value    string
	Selected bool
}

type resultView struct {
	Class    string
	Headline string
	Advice   string
	Stay     string
	Leave    string
}

// newPage lays the schema out in two columns, filling each input from get
// and flagging the fields listed in invalid.
func (h *Handler) newPage(get func(key string) string, invalid *api.InputError) page {
	schema := h.deps.Schema()
	messages := map[string]string{}
	if invalid != nil {
		for _, f := range invalid.Fields {
			messages[f.Field] = f.Message
		}
	}

	inputs := make([]input, 0, len(schema))
	for _, f := range schema {
		in := input{
			Key:     f.Key,
			Label:   f.Label,
			Numeric: f.Kind == employee.KindInteger,
			Min:     f.Min,
			Max:     f.Max,
			Step:    max(f.Step, 1),
			Value:   get(f.Key),
			Message: messages[f.Key],
		}
		for _, c := range f.Choices {
			in.Choices = append(in.Choices, choice{Value: c, Selected: c == in.Value})
		}
		inputs = append(inputs, in)
	}

	split := min(leftColumnSize, len(inputs))
	return page{Columns: [][]input{inputs[:split], inputs[split:]}}
}

// defaultValues returns the form defaults keyed by field key.
func defaultValues(schema employee.Schema) func(key string) string {
	return func(key string) string {
		f, ok := schema.LookupKey(key)
		if !ok || f.Default == nil {
			return ""
		}
		return fmt.Sprint(f.Default)
	}
}

func newResultView(res prediction.Result) *resultView {
	v := &resultView{
		Stay:  prediction.FormatProbability(res.ProbabilityStay),
		Leave: prediction.FormatProbability(res.ProbabilityLeave),
	}
	if res.Label == prediction.LabelLeave {
		v.Class = "leave-box"
		v.Headline = "Employee Likely to Leave"
		v.Advice = "Consider retention strategies and provide engagement support"
	} else {
		v.Class = "stay-box"
		v.Headline = "Employee Likely to Stay"
		v.Advice = "Keep supporting and motivating the employee"
	}
	return v
}
