package entity

import "time"

// Criteria fields.
const (
	FieldReleased = "released"
	FieldCreated  = "created"
	FieldDuration = "duration"
	FieldKeyword  = "keyword"
)

// Criteria operators, constrained per field.
const (
	OpWithin         = "within"
	OpShorterThan    = "shorter_than"
	OpLongerThan     = "longer_than"
	OpMustContain    = "must_contain"
	OpMustNotContain = "must_not_contain"
)

// Criteria units of measure for time and duration fields. Keyword
// criteria carry the fixed sentinel UnitWords.
const (
	UnitSeconds = "seconds"
	UnitMinutes = "minutes"
	UnitHours   = "hours"
	UnitDays    = "days"
	UnitWords   = "words"
)

// operatorsByField enumerates the only legal field/operator pairs.
var operatorsByField = map[string][]string{
	FieldReleased: {OpWithin},
	FieldCreated:  {OpWithin},
	FieldDuration: {OpShorterThan, OpLongerThan},
	FieldKeyword:  {OpMustContain, OpMustNotContain},
}

// unitSeconds maps a time unit to its length in seconds.
var unitSeconds = map[string]int64{
	UnitSeconds: 1,
	UnitMinutes: 60,
	UnitHours:   3600,
	UnitDays:    86400,
}

// Criteria is one declarative inclusion/exclusion predicate attached to
// a Filter. Value is numeric for every field except keyword, where the
// free-text Keyword field is used instead.
type Criteria struct {
	ID       string
	FilterID string
	Field    string
	Operator string
	Value    int64
	Keyword  string
	Unit     string
}

// NewCriteria builds a Criteria, rejecting invalid field/operator/unit
// combinations up front so they are never evaluated.
func NewCriteria(field, operator string, value int64, keyword, unit string) (*Criteria, error) {
	ops, ok := operatorsByField[field]
	if !ok {
		return nil, &ValidationError{Field: "field", Message: "unknown criteria field: " + field}
	}
	legal := false
	for _, op := range ops {
		if op == operator {
			legal = true
			break
		}
	}
	if !legal {
		return nil, &ValidationError{
			Field:   "operator",
			Message: "operator " + operator + " not allowed for field " + field,
		}
	}

	if field == FieldKeyword {
		if keyword == "" {
			return nil, &ValidationError{Field: "keyword", Message: "is required"}
		}
		if unit != UnitWords {
			return nil, &ValidationError{Field: "unit_of_measure", Message: "keyword criteria use the fixed unit " + UnitWords}
		}
		return &Criteria{Field: field, Operator: operator, Keyword: keyword, Unit: UnitWords}, nil
	}

	if _, ok := unitSeconds[unit]; !ok {
		return nil, &ValidationError{Field: "unit_of_measure", Message: "unknown unit: " + unit}
	}
	if value <= 0 {
		return nil, &ValidationError{Field: "value", Message: "must be positive"}
	}
	return &Criteria{Field: field, Operator: operator, Value: value, Unit: unit}, nil
}

// Window returns the criterion's magnitude as a duration, normalizing
// value and unit. Only meaningful for non-keyword criteria.
func (c *Criteria) Window() time.Duration {
	return time.Duration(c.Value*unitSeconds[c.Unit]) * time.Second
}

// Seconds returns the criterion's magnitude normalized to seconds.
func (c *Criteria) Seconds() int64 {
	return c.Value * unitSeconds[c.Unit]
}

// Filter is a named saved view scoped to one Source: an ordered set of
// Criteria plus an optional ordering attribute. Criteria are deleted
// with their Filter.
type Filter struct {
	ID        string
	SourceID  string
	Name      string
	OrderedBy string // released_at | created_at | ""
	Criteria  []*Criteria
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the filter name and ordering attribute.
func (f *Filter) Validate() error {
	if f.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if f.OrderedBy != "" && f.OrderedBy != OrderedByReleasedAt && f.OrderedBy != OrderedByCreatedAt {
		return &ValidationError{
			Field:   "ordered_by",
			Message: "must be released_at, created_at, or empty",
		}
	}
	return nil
}
