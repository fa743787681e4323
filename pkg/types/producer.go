package types

import (
	"errors"
	"time"
)

// Producer is a farmer/client record. Opportunities cache the farm name at
// creation; a later producer rename does not rewrite existing opportunities.
type Producer struct {
	ProducerID string    `json:"producer_id"` // UUID v7, generated on creation.
	Name       string    `json:"name"`
	FarmName   string    `json:"farm_name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Contacts   []Contact `json:"contacts,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Contact is a named person reachable at a producer.
type Contact struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Property is a rural property belonging to a producer. Area is a recorded
// value; fieldops does not compute it from boundaries.
type Property struct {
	PropertyID   string    `json:"property_id"` // UUID v7, generated on creation.
	ProducerID   string    `json:"producer_id"`
	Name         string    `json:"name"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	AreaHectares float64   `json:"area_hectares,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ErrEmptyName rejects producers and properties without a name.
var ErrEmptyName = errors.New("name must not be empty")
