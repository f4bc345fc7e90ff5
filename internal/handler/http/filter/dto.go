package filter

import (
	"time"

	"tubefeed/internal/domain/entity"
)

// DTO is the wire representation of a filter with its criteria.
type DTO struct {
	ID        string        `json:"id"`
	SourceID  string        `json:"source_id"`
	Name      string        `json:"name"`
	OrderedBy string        `json:"ordered_by,omitempty"`
	Criteria  []CriteriaDTO `json:"criteria"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// CriteriaDTO is the wire representation of one criterion. Value and
// Unit carry the magnitude for time and duration fields; Keyword is set
// for keyword criteria only.
type CriteriaDTO struct {
	ID       string `json:"id"`
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    int64  `json:"value,omitempty"`
	Keyword  string `json:"keyword,omitempty"`
	Unit     string `json:"unit_of_measure"`
}

func fromEntity(f *entity.Filter) DTO {
	criteria := make([]CriteriaDTO, 0, len(f.Criteria))
	for _, c := range f.Criteria {
		criteria = append(criteria, fromCriteria(c))
	}
	return DTO{
		ID:        f.ID,
		SourceID:  f.SourceID,
		Name:      f.Name,
		OrderedBy: f.OrderedBy,
		Criteria:  criteria,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func fromCriteria(c *entity.Criteria) CriteriaDTO {
	return CriteriaDTO{
		ID:       c.ID,
		Field:    c.Field,
		Operator: c.Operator,
		Value:    c.Value,
		Keyword:  c.Keyword,
		Unit:     c.Unit,
	}
}
