package types

import (
	"errors"
	"time"
)

// Store defines the interface for backend-agnostic durable storage.
// Callers attach to a backend, access entity tables through the typed
// accessors, and detach when done. Every mutating table operation is an
// insert-or-update by primary key, so writes are idempotent.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, table operations return ErrStoreDetached.
	Detach() error

	Stages() StageTable
	Opportunities() OpportunityTable
	Producers() ProducerTable
	Properties() PropertyTable
	Visits() VisitTable
	Catalog() CatalogTable
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Table operation errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
)

// StageTable stores pipeline stages. Fetch returns stages in ascending
// display order. SwapOrder exchanges the positions of two stages atomically,
// so no reader or crash ever observes both stages on one position.
type StageTable interface {
	Get(id string) (*Stage, error)
	Put(stage *Stage) (string, error)
	Delete(id string) error
	Fetch() ([]*Stage, error)
	SwapOrder(aID, bID string) error
}

// OpportunityTable stores opportunities. Fetch returns opportunities matching
// the filter, newest first; a nil filter returns everything.
type OpportunityTable interface {
	Get(id string) (*Opportunity, error)
	Put(o *Opportunity) (string, error)
	Delete(id string) error
	Fetch(filter *OpportunityFilter) ([]*Opportunity, error)

	// ReassignStage moves every opportunity on fromStageID to toStageID and
	// stamps their last movement date, in a single transaction. Returns the
	// number of opportunities moved.
	ReassignStage(fromStageID, toStageID string, movedAt time.Time) (int, error)

	// NextCode returns the next unused human-readable sequence code
	// (P-0001, P-0002, ...).
	NextCode() (string, error)
}

// ProducerTable stores producer records.
type ProducerTable interface {
	Get(id string) (*Producer, error)
	Put(p *Producer) (string, error)
	Delete(id string) error
	Fetch() ([]*Producer, error)
}

// PropertyTable stores rural property records. Fetch with an empty
// producerID returns all properties.
type PropertyTable interface {
	Get(id string) (*Property, error)
	Put(p *Property) (string, error)
	Delete(id string) error
	Fetch(producerID string) ([]*Property, error)
}

// VisitTable stores field visit logs. Fetch with an empty producerID
// returns all visits, newest first.
type VisitTable interface {
	Get(id string) (*Visit, error)
	Put(v *Visit) (string, error)
	Delete(id string) error
	Fetch(producerID string) ([]*Visit, error)
}

// CatalogTable stores the product/service catalog.
type CatalogTable interface {
	Get(id string) (*CatalogItem, error)
	Put(item *CatalogItem) (string, error)
	Delete(id string) error
	Fetch() ([]*CatalogItem, error)
}
