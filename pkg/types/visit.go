package types

import "time"

// Visit is one logged field visit to a producer, optionally tied to a
// specific property.
type Visit struct {
	VisitID         string    `json:"visit_id"` // UUID v7, generated on creation.
	ProducerID      string    `json:"producer_id"`
	PropertyID      string    `json:"property_id,omitempty"`
	VisitDate       time.Time `json:"visit_date"`
	Summary         string    `json:"summary,omitempty"`
	Recommendations string    `json:"recommendations,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
