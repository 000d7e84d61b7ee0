package api

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/attrition/internal/domain/employee"
)

// EmployeeInput is the wire shape of one employee, keyed by field key.
// Integer fields are pointers so that an explicit 0 is told apart from a
// missing value.
type EmployeeInput struct {
	Age                     *int   `json:"age" validate:"required,min=18,max=60"`
	Gender                  string `json:"gender" validate:"required,oneof=Male Female"`
	JobRole                 string `json:"job_role" validate:"required,oneof=Education Media Healthcare Technology Finance"`
	YearsAtCompany          *int   `json:"years_at_company" validate:"required,min=0,max=51"`
	MonthlyIncome           *int   `json:"monthly_income" validate:"required,min=1000,max=20000,step=100"`
	WorkLifeBalance         string `json:"work_life_balance" validate:"required,oneof=Poor Fair Good Excellent"`
	JobSatisfaction         string `json:"job_satisfaction" validate:"required,oneof=Low Medium High 'Very High'"`
	PerformanceRating       string `json:"performance_rating" validate:"required,oneof=Low 'Below Average' Average High"`
	NumberOfPromotions      *int   `json:"number_of_promotions" validate:"required,min=0,max=10"`
	Overtime                string `json:"overtime" validate:"required,oneof=No Yes"`
	DistanceFromHome        *int   `json:"distance_from_home" validate:"required,min=0,max=100"`
	EducationLevel          string `json:"education_level" validate:"required,oneof='High School' 'Associate Degree' 'Bachelor’s Degree' 'Master’s Degree' PhD"`
	MaritalStatus           string `json:"marital_status" validate:"required,oneof=Divorced Married Single"`
	NumberOfDependents      *int   `json:"number_of_dependents" validate:"required,min=0,max=10"`
	JobLevel                string `json:"job_level" validate:"required,oneof=Entry Mid Senior"`
	CompanySize             string `json:"company_size" validate:"required,oneof=Small Medium Large"`
	CompanyTenure           *int   `json:"company_tenure" validate:"required,min=0,max=130"`
	RemoteWork              string `json:"remote_work" validate:"required,oneof=No Yes"`
	LeadershipOpportunities string `json:"leadership_opportunities" validate:"required,oneof=No Yes"`
	InnovationOpportunities string `json:"innovation_opportunities" validate:"required,oneof=No Yes"`
	CompanyReputation       string `json:"company_reputation" validate:"required,oneof=Poor Fair Good Excellent"`
}

// FieldError flags one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InputError carries every invalid field of one input.
type InputError struct {
	Fields []FieldError
}

func (e *InputError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *InputError) Unwrap() error { return ErrValidation }

// Has reports whether key was flagged.
func (e *InputError) Has(key string) bool {
	for _, f := range e.Fields {
		if f.Field == key {
			return true
		}
	}
	return false
}

var validate = newValidator() //nolint:gochecknoglobals // validator caches struct metadata

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("step", validateStep); err != nil {
		panic(err)
	}
	return v
}

// validateStep checks that an integer is a multiple of the tag parameter.
func validateStep(fl validator.FieldLevel) bool {
	step, err := strconv.ParseInt(fl.Param(), 10, 64)
	if err != nil || step <= 0 {
		return false
	}
	return fl.Field().Int()%step == 0
}

// Validate checks every field against its declared domain.
func (in *EmployeeInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	out := &InputError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "step":
		return "must be a multiple of " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), "'", "")
	default:
		return "is invalid"
	}
}

// values returns the input keyed by field key.
func (in *EmployeeInput) values() map[string]any {
	return map[string]any{
		"age":                      deref(in.Age),
		"gender":                   in.Gender,
		"job_role":                 in.JobRole,
		"years_at_company":         deref(in.YearsAtCompany),
		"monthly_income":           deref(in.MonthlyIncome),
		"work_life_balance":        in.WorkLifeBalance,
		"job_satisfaction":         in.JobSatisfaction,
		"performance_rating":       in.PerformanceRating,
		"number_of_promotions":     deref(in.NumberOfPromotions),
		"overtime":                 in.Overtime,
		"distance_from_home":       deref(in.DistanceFromHome),
		"education_level":          in.EducationLevel,
		"marital_status":           in.MaritalStatus,
		"number_of_dependents":     deref(in.NumberOfDependents),
		"job_level":                in.JobLevel,
		"company_size":             in.CompanySize,
		"company_tenure":           deref(in.CompanyTenure),
		"remote_work":              in.RemoteWork,
		"leadership_opportunities": in.LeadershipOpportunities,
		"innovation_opportunities": in.InnovationOpportunities,
		"company_reputation":       in.CompanyReputation,
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Record converts a validated input to a record in schema order.
func (in *EmployeeInput) Record(schema employee.Schema) *employee.Record {
	vals := in.values()
	r := employee.NewRecord()
	for _, f := range schema {
		if v, ok := vals[f.Key]; ok {
			r.Set(f.Name, v)
		}
	}
	return r
}

// InputFromForm reads an input from string values keyed by field key, as
// posted by the web form. Integer fields that do not parse are flagged and
// left empty; the remaining checks happen in Validate.
func InputFromForm(get func(key string) string) (*EmployeeInput, *InputError) {
	in := &EmployeeInput{}
	var bad []FieldError
	ints := map[string]**int{
		"age":                  &in.Age,
		"years_at_company":     &in.YearsAtCompany,
		"monthly_income":       &in.MonthlyIncome,
		"number_of_promotions": &in.NumberOfPromotions,
		"distance_from_home":   &in.DistanceFromHome,
		"number_of_dependents": &in.NumberOfDependents,
		"company_tenure":       &in.CompanyTenure,
	}
	strs := map[string]*string{
		"gender":                   &in.Gender,
		"job_role":                 &in.JobRole,
		"work_life_balance":        &in.WorkLifeBalance,
		"job_satisfaction":         &in.JobSatisfaction,
		"performance_rating":       &in.PerformanceRating,
		"overtime":                 &in.Overtime,
		"education_level":          &in.EducationLevel,
		"marital_status":           &in.MaritalStatus,
		"job_level":                &in.JobLevel,
		"company_size":             &in.CompanySize,
		"remote_work":              &in.RemoteWork,
		"leadership_opportunities": &in.LeadershipOpportunities,
		"innovation_opportunities": &in.InnovationOpportunities,
		"company_reputation":       &in.CompanyReputation,
	}
	for _, f := range employee.Fields {
		if dst, ok := strs[f.Key]; ok {
			*dst = get(f.Key)
			continue
		}
		dst, ok := ints[f.Key]
		if !ok {
			continue
		}
		raw := strings.TrimSpace(get(f.Key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			bad = append(bad, FieldError{Field: f.Key, Message: "must be a whole number"})
			continue
		}
		*dst = &n
	}
	if len(bad) > 0 {
		return in, &InputError{Fields: bad}
	}
	return in, nil
}

// ValidateForm combines parse failures from InputFromForm with Validate.
func ValidateForm(get func(key string) string) (*EmployeeInput, error) {
	in, perr := InputFromForm(get)
	verr := in.Validate()
	if perr == nil {
		return in, verr
	}
	var ie *InputError
	if errors.As(verr, &ie) {
		for _, f := range ie.Fields {
			if !perr.Has(f.Field) {
				perr.Fields = append(perr.Fields, f)
			}
		}
	}
	return in, perr
}
