package types

import (
	"errors"
	"strings"
	"time"
)

// Opportunity is a tracked potential sale (a commercial proposal) associated
// with a producer and one or more activity groups.
//
// StageID and LastMovementDate change only through the pipeline engine's
// Transition operation (or stage deletion reassignment); every other editable
// field changes through Update. TotalValue is a derived snapshot recomputed
// whenever activity groups change.
type Opportunity struct {
	OpportunityID string    `json:"opportunity_id"` // UUID v7, generated on creation.
	Code          string    `json:"code"`           // Human-readable sequence label (P-0001, ...).
	Title         string    `json:"title"`
	StageID       string    `json:"stage_id"`    // Must reference an existing Stage.
	ProducerID    string    `json:"producer_id"` //
	ContactID     string    `json:"contact_id,omitempty"`
	FarmName      string    `json:"farm_name,omitempty"` // Cached from the producer directory at create/update.
	Safra         string    `json:"safra,omitempty"`     // Season tag, e.g. "2025/26".

	ActivityGroups     []ActivityGroup `json:"activity_groups"`
	TotalValue         float64         `json:"total_value"`
	ClosingProbability int             `json:"closing_probability"` // 0-100.

	CreatedAt           time.Time `json:"created_at"`
	ExpectedClosingDate time.Time `json:"expected_closing_date,omitempty"`
	ValidityDate        time.Time `json:"validity_date,omitempty"`
	LastMovementDate    time.Time `json:"last_movement_date"` // Date the stage last changed.
	NextContactDate     time.Time `json:"next_contact_date,omitempty"`

	// Newest first; notes are never edited or removed once appended.
	ConversationHistory []EngagementNote `json:"conversation_history"`

	Description      string `json:"description,omitempty"`
	InternalNotes    string `json:"internal_notes,omitempty"`
	GeneratedContent string `json:"generated_content,omitempty"` // Opaque collaborator output, stored verbatim.
}

// ActivityGroup bundles catalog line items scoped to one crop/service
// activity and a set of properties.
type ActivityGroup struct {
	Activity    string     `json:"activity"`
	PropertyIDs []string   `json:"property_ids"` // Non-empty.
	Items       []LineItem `json:"items"`
}

// LineItem references a catalog item with the quantity and the unit price
// recorded when the item was added.
type LineItem struct {
	ItemID      string  `json:"item_id"`
	Quantity    float64 `json:"quantity"` // > 0.
	PriceAtTime float64 `json:"price_at_time"`
}

// Opportunity validation errors.
var (
	ErrEmptyTitle         = errors.New("title must not be empty")
	ErrInvalidProbability = errors.New("closing probability must be between 0 and 100")
	ErrEmptyPropertyIDs   = errors.New("activity group must reference at least one property")
	ErrInvalidQuantity    = errors.New("line item quantity must be positive")
	ErrEmptyItemID        = errors.New("line item must reference a catalog item")
)

// Validate checks the editable fields of an opportunity. It is called before
// any write; a failing opportunity is rejected with nothing persisted.
func (o *Opportunity) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return ErrEmptyTitle
	}
	if o.ClosingProbability < 0 || o.ClosingProbability > 100 {
		return ErrInvalidProbability
	}
	for _, g := range o.ActivityGroups {
		if len(g.PropertyIDs) == 0 {
			return ErrEmptyPropertyIDs
		}
		for _, item := range g.Items {
			if item.ItemID == "" {
				return ErrEmptyItemID
			}
			if item.Quantity <= 0 {
				return ErrInvalidQuantity
			}
		}
	}
	return nil
}

// HasActivity reports whether any activity group carries the given label.
// Matching is case-insensitive.
func (o *Opportunity) HasActivity(label string) bool {
	for _, g := range o.ActivityGroups {
		if strings.EqualFold(g.Activity, label) {
			return true
		}
	}
	return false
}

// ConfidenceLevel is the five-level classification of closing probability.
type ConfidenceLevel string

// Confidence levels, inclusive upper bounds.
const (
	ConfidenceVeryLow    ConfidenceLevel = "very_low"   // <= 20
	ConfidenceLow        ConfidenceLevel = "low"        // <= 40
	ConfidenceMedium     ConfidenceLevel = "medium"     // <= 60
	ConfidenceHigh       ConfidenceLevel = "high"       // <= 80
	ConfidenceGuaranteed ConfidenceLevel = "guaranteed" // > 80
)

// Confidence classifies a closing probability into the five fixed levels.
func Confidence(probability int) ConfidenceLevel {
	switch {
	case probability <= 20:
		return ConfidenceVeryLow
	case probability <= 40:
		return ConfidenceLow
	case probability <= 60:
		return ConfidenceMedium
	case probability <= 80:
		return ConfidenceHigh
	default:
		return ConfidenceGuaranteed
	}
}

// ConfidenceBucket is the coarse three-level classification used by list
// filters.
type ConfidenceBucket string

// Coarse confidence buckets.
const (
	BucketLow    ConfidenceBucket = "low"    // < 40
	BucketMedium ConfidenceBucket = "medium" // 40-79
	BucketHigh   ConfidenceBucket = "high"   // >= 80
)

// Bucket classifies a closing probability into a coarse bucket.
func Bucket(probability int) ConfidenceBucket {
	switch {
	case probability < 40:
		return BucketLow
	case probability < 80:
		return BucketMedium
	default:
		return BucketHigh
	}
}

// Range returns the inclusive probability bounds covered by the bucket.
func (b ConfidenceBucket) Range() (low, high int) {
	switch b {
	case BucketLow:
		return 0, 39
	case BucketMedium:
		return 40, 79
	default:
		return 80, 100
	}
}

// Valid reports whether b is a recognized bucket name.
func (b ConfidenceBucket) Valid() bool {
	return b == BucketLow || b == BucketMedium || b == BucketHigh
}

// OpportunityFilter selects opportunities in Fetch/List. All set fields must
// match (logical AND); zero values are ignored.
type OpportunityFilter struct {
	Text     string           // Substring match on title, farm name, or code.
	Safra    string           // Exact season tag.
	Activity string           // Activity group label membership.
	Bucket   ConfidenceBucket // Coarse confidence bucket.
	StageID  string           // Exact stage.
}
