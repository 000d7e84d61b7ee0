// Package employee defines the fixed employee record schema consumed by the
// attrition classifier.
package employee

import "encoding/json"

// Kind is the value kind of a schema field.
type Kind string

// Field kinds.
const (
	KindInteger  Kind = "integer"
	KindCategory Kind = "category"
)

// Field describes one column of the classifier input.
type Field struct {
	// Name is the column name the trained pipeline expects, e.g. "Job Role".
	Name string `json:"name"`
	// Key is the snake_case parameter name used by forms and the JSON API.
	Key string `json:"key"`
	// Label is the human readable form label.
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`

	// Integer domain.
	Min  int `json:"min"`
	Max  int `json:"max"`
	Step int `json:"step"`

	// Category domain, in display order.
	Choices []string `json:"choices,omitempty"`

	// Default is the pre-filled form value (int or string).
	Default any `json:"default"`
}

// fieldJSON is the wire shape of a Field. Integer bounds are always present
// for integer fields, including a zero minimum, and absent for categories.
type fieldJSON struct {
	Name    string   `json:"name"`
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Kind    Kind     `json:"kind"`
	Min     *int     `json:"min,omitempty"`
	Max     *int     `json:"max,omitempty"`
	Step    *int     `json:"step,omitempty"`
	Choices []string `json:"choices,omitempty"`
	Default any      `json:"default"`
}

// MarshalJSON implements json.Marshaler.
func (f Field) MarshalJSON() ([]byte, error) {
	out := fieldJSON{
		Name:    f.Name,
		Key:     f.Key,
		Label:   f.Label,
		Kind:    f.Kind,
		Choices: f.Choices,
		Default: f.Default,
	}
	if f.Kind == KindInteger {
		out.Min, out.Max, out.Step = &f.Min, &f.Max, &f.Step
	}
	return json.Marshal(out)
}

// Contains reports whether v lies inside the field's declared domain.
func (f Field) Contains(v any) bool {
	switch f.Kind {
	case KindInteger:
		n, ok := v.(int)
		if !ok || n < f.Min || n > f.Max {
			return false
		}
		return f.Step <= 1 || (n-f.Min)%f.Step == 0
	case KindCategory:
		s, ok := v.(string)
		if !ok {
			return false
		}
		for _, c := range f.Choices {
			if c == s {
				return true
			}
		}
	}
	return false
}

// Schema is the ordered list of fields.
type Schema []Field

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Lookup finds a field by column name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// LookupKey finds a field by its parameter key.
func (s Schema) LookupKey(key string) (Field, bool) {
	for _, f := range s {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

var (
	yesNo      = []string{"No", "Yes"}
	fourPoint  = []string{"Poor", "Fair", "Good", "Excellent"}
	bachelors  = "Bachelor’s Degree"
	mastersDeg = "Master’s Degree"
)

// Fields is the schema the attrition pipeline was trained on. Names, order
// and category spellings (including the typographic apostrophes) must match
// the artifact exactly.
var Fields = Schema{
	{Name: "Age", Key: "age", Label: "Age", Kind: KindInteger, Min: 18, Max: 60, Step: 1, Default: 38},
	{Name: "Gender", Key: "gender", Label: "Gender", Kind: KindCategory, Choices: []string{"Male", "Female"}, Default: "Male"},
	{Name: "Job Role", Key: "job_role", Label: "Job Role", Kind: KindCategory, Choices: []string{"Education", "Media", "Healthcare", "Technology", "Finance"}, Default: "Education"},
	{Name: "Years at Company", Key: "years_at_company", Label: "Years at Company", Kind: KindInteger, Min: 0, Max: 51, Step: 1, Default: 15},
	{Name: "Monthly Income", Key: "monthly_income", Label: "Monthly Income ($)", Kind: KindInteger, Min: 1000, Max: 20000, Step: 100, Default: 7300},
	{Name: "Work-Life Balance", Key: "work_life_balance", Label: "Work-Life Balance", Kind: KindCategory, Choices: fourPoint, Default: "Poor"},
	{Name: "Job Satisfaction", Key: "job_satisfaction", Label: "Job Satisfaction", Kind: KindCategory, Choices: []string{"Low", "Medium", "High", "Very High"}, Default: "Low"},
	{Name: "Performance Rating", Key: "performance_rating", Label: "Performance Rating", Kind: KindCategory, Choices: []string{"Low", "Below Average", "Average", "High"}, Default: "Low"},
	{Name: "Number of Promotions", Key: "number_of_promotions", Label: "Number of Promotions", Kind: KindInteger, Min: 0, Max: 10, Step: 1, Default: 1},
	{Name: "Overtime", Key: "overtime", Label: "Overtime", Kind: KindCategory, Choices: yesNo, Default: "No"},
	{Name: "Distance from Home", Key: "distance_from_home", Label: "Distance from Home (miles)", Kind: KindInteger, Min: 0, Max: 100, Step: 1, Default: 50},
	{Name: "Education Level", Key: "education_level", Label: "Education Level", Kind: KindCategory, Choices: []string{"High School", "Associate Degree", bachelors, mastersDeg, "PhD"}, Default: bachelors},
	{Name: "Marital Status", Key: "marital_status", Label: "Marital Status", Kind: KindCategory, Choices: []string{"Divorced", "Married", "Single"}, Default: "Divorced"},
	{Name: "Number of Dependents", Key: "number_of_dependents", Label: "Number of Dependents", Kind: KindInteger, Min: 0, Max: 10, Step: 1, Default: 2},
	{Name: "Job Level", Key: "job_level", Label: "Job Level", Kind: KindCategory, Choices: []string{"Entry", "Mid", "Senior"}, Default: "Entry"},
	{Name: "Company Size", Key: "company_size", Label: "Company Size", Kind: KindCategory, Choices: []string{"Small", "Medium", "Large"}, Default: "Small"},
	{Name: "Company Tenure", Key: "company_tenure", Label: "Company Tenure (years)", Kind: KindInteger, Min: 0, Max: 130, Step: 1, Default: 55},
	{Name: "Remote Work", Key: "remote_work", Label: "Remote Work", Kind: KindCategory, Choices: yesNo, Default: "No"},
	{Name: "Leadership Opportunities", Key: "leadership_opportunities", Label: "Leadership Opportunities", Kind: KindCategory, Choices: yesNo, Default: "No"},
	{Name: "Innovation Opportunities", Key: "innovation_opportunities", Label: "Innovation Opportunities", Kind: KindCategory, Choices: yesNo, Default: "No"},
	{Name: "Company Reputation", Key: "company_reputation", Label: "Company Reputation", Kind: KindCategory, Choices: fourPoint, Default: "Poor"},
}

// FieldCount is the number of columns in a complete record.
const FieldCount = 21
