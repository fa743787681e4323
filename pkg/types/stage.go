package types

import "errors"

// Stage is a named, ordered step in the sales pipeline.
// Position values define display sequence; they need not be contiguous,
// only monotonic.
type Stage struct {
	StageID string `json:"stage_id"` // UUID v7, immutable once created.
	Title   string `json:"title"`
	Order   int    `json:"position"` // Display sequence position.
	Color   string `json:"color"`    // Display hint, e.g. "#2e7d32".
}

// Direction selects the neighbor a stage swaps positions with in Reorder.
type Direction string

// Reorder directions.
const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Stage operation errors.
var (
	ErrStageNotFound    = errors.New("stage not found")
	ErrLastStage        = errors.New("cannot delete the last remaining stage")
	ErrInvalidDirection = errors.New("direction must be up or down")
)

// Valid reports whether d is a recognized reorder direction.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}
