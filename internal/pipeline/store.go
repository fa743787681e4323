package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agrovista/fieldops/internal/gentext"
	"github.com/agrovista/fieldops/pkg/types"
)

// ProducerDirectory resolves producer records for display-field caching.
// types.ProducerTable satisfies it; tests substitute a fake.
type ProducerDirectory interface {
	Get(producerID string) (*types.Producer, error)
}

// Opportunities is the opportunity store: CRUD plus stage transitions over
// the canonical collection. Mutations take the store-wide write lock shared
// with the stage registry, so concurrent update/transition calls never
// interleave partial writes and a transition cannot persist a reference to a
// stage the registry is deleting; the last writer wins. Reads go straight to
// the underlying snapshot and never block writers.
type Opportunities struct {
	mu        *sync.Mutex
	store     types.Store
	directory ProducerDirectory
	prices    PriceLookup
	now       func() time.Time
}

// NewOpportunities creates the opportunity store. directory and prices may
// be nil; farm-name caching and price snapshots are then skipped.
func NewOpportunities(store types.Store, directory ProducerDirectory, prices PriceLookup) *Opportunities {
	return &Opportunities{
		mu:        writeLock(store),
		store:     store,
		directory: directory,
		prices:    prices,
		now:       time.Now,
	}
}

// Create validates and persists a new opportunity. The stage defaults to the
// lowest-position stage when unset and must exist otherwise. Create assigns
// the ID and sequence code, stamps creation and movement dates, caches the
// producer's farm name, snapshots line-item prices, and computes the total.
func (s *Opportunities) Create(draft *types.Opportunity) (*types.Opportunity, error) {
	if draft == nil {
		return nil, types.ErrInvalidData
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resolveStage(draft); err != nil {
		return nil, err
	}

	code, err := s.store.Opportunities().NextCode()
	if err != nil {
		return nil, fmt.Errorf("assigning code: %w", err)
	}
	draft.Code = code

	now := s.now()
	draft.OpportunityID = ""
	draft.CreatedAt = now
	draft.LastMovementDate = now
	if draft.ConversationHistory == nil {
		draft.ConversationHistory = []types.EngagementNote{}
	}

	s.cacheFarmName(draft)
	s.priceLineItems(draft)
	draft.TotalValue = ComputeTotal(draft.ActivityGroups, s.prices)

	if _, err := s.store.Opportunities().Put(draft); err != nil {
		return nil, fmt.Errorf("creating opportunity: %w", err)
	}
	return draft, nil
}

// Update replaces the editable fields of an opportunity: title, producer and
// contact references, season tag, activity groups, probability, closing and
// validity dates, description, internal notes, and generated text. StageID
// and LastMovementDate are untouched; those change only via Transition.
// The conversation history and next-contact schedule belong to the
// engagement log.
func (s *Opportunities) Update(id string, patch *types.Opportunity) (*types.Opportunity, error) {
	if patch == nil {
		return nil, types.ErrInvalidData
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Opportunities().Get(id)
	if err != nil {
		return nil, err
	}

	current.Title = patch.Title
	current.ProducerID = patch.ProducerID
	current.ContactID = patch.ContactID
	current.Safra = patch.Safra
	current.ActivityGroups = patch.ActivityGroups
	current.ClosingProbability = patch.ClosingProbability
	current.ExpectedClosingDate = patch.ExpectedClosingDate
	current.ValidityDate = patch.ValidityDate
	current.Description = patch.Description
	current.InternalNotes = patch.InternalNotes
	current.GeneratedContent = patch.GeneratedContent

	s.cacheFarmName(current)
	s.priceLineItems(current)
	current.TotalValue = ComputeTotal(current.ActivityGroups, s.prices)

	if _, err := s.store.Opportunities().Put(current); err != nil {
		return nil, fmt.Errorf("updating opportunity: %w", err)
	}
	return current, nil
}

// Transition moves an opportunity to another stage. This is the only legal
// way to change StageID; it validates the target stage and stamps the
// movement date.
func (s *Opportunities) Transition(id, newStageID string) (*types.Opportunity, error) {
	if newStageID == "" {
		return nil, types.ErrStageNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Stages().Get(newStageID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrStageNotFound
		}
		return nil, fmt.Errorf("validating stage: %w", err)
	}

	o, err := s.store.Opportunities().Get(id)
	if err != nil {
		return nil, err
	}

	o.StageID = newStageID
	o.LastMovementDate = s.now()

	if _, err := s.store.Opportunities().Put(o); err != nil {
		return nil, fmt.Errorf("transitioning opportunity: %w", err)
	}
	return o, nil
}

// Delete removes an opportunity permanently.
func (s *Opportunities) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Opportunities().Delete(id)
}

// Get retrieves one opportunity.
func (s *Opportunities) Get(id string) (*types.Opportunity, error) {
	return s.store.Opportunities().Get(id)
}

// List returns opportunities matching the filter, newest first. Filters
// compose with logical AND.
func (s *Opportunities) List(filter *types.OpportunityFilter) ([]*types.Opportunity, error) {
	return s.store.Opportunities().Fetch(filter)
}

// GenerateProposal asks the text-generation collaborator for commercial
// proposal copy and stores the result verbatim. A collaborator failure is
// surfaced to the caller and leaves the previously stored content untouched.
func (s *Opportunities) GenerateProposal(ctx context.Context, id string, gen gentext.Generator) (*types.Opportunity, error) {
	return s.generate(ctx, id, gen, gentext.KindProposal)
}

// GenerateFollowUp asks the collaborator for a follow-up message draft and
// stores the result verbatim, with the same failure semantics as
// GenerateProposal.
func (s *Opportunities) GenerateFollowUp(ctx context.Context, id string, gen gentext.Generator) (*types.Opportunity, error) {
	return s.generate(ctx, id, gen, gentext.KindFollowUp)
}

func (s *Opportunities) generate(ctx context.Context, id string, gen gentext.Generator, kind gentext.Kind) (*types.Opportunity, error) {
	if gen == nil {
		return nil, gentext.ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.store.Opportunities().Get(id)
	if err != nil {
		return nil, err
	}

	var text string
	switch kind {
	case gentext.KindFollowUp:
		text, err = gen.FollowUp(ctx, o)
	default:
		text, err = gen.Proposal(ctx, o)
	}
	if err != nil {
		return nil, fmt.Errorf("generating %s text: %w", kind, err)
	}

	o.GeneratedContent = text
	if _, err := s.store.Opportunities().Put(o); err != nil {
		return nil, fmt.Errorf("storing generated text: %w", err)
	}
	return o, nil
}

// resolveStage fills in the lowest-position stage when the draft names none,
// and verifies the referenced stage otherwise.
func (s *Opportunities) resolveStage(draft *types.Opportunity) error {
	if draft.StageID == "" {
		stages, err := s.store.Stages().Fetch()
		if err != nil {
			return fmt.Errorf("fetching stages: %w", err)
		}
		if len(stages) == 0 {
			return types.ErrStageNotFound
		}
		draft.StageID = stages[0].StageID
		return nil
	}
	if _, err := s.store.Stages().Get(draft.StageID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return types.ErrStageNotFound
		}
		return fmt.Errorf("validating stage: %w", err)
	}
	return nil
}

// cacheFarmName copies the producer's farm name onto the opportunity. A
// failed directory lookup leaves the field as-is; display caching must not
// block a write.
func (s *Opportunities) cacheFarmName(o *types.Opportunity) {
	if s.directory == nil || o.ProducerID == "" {
		return
	}
	producer, err := s.directory.Get(o.ProducerID)
	if err != nil {
		return
	}
	if producer.FarmName != "" {
		o.FarmName = producer.FarmName
	}
}

// priceLineItems snapshots the current catalog price onto lines that carry
// none yet. Lines with a recorded PriceAtTime keep it.
func (s *Opportunities) priceLineItems(o *types.Opportunity) {
	if s.prices == nil {
		return
	}
	for gi := range o.ActivityGroups {
		items := o.ActivityGroups[gi].Items
		for ii := range items {
			if items[ii].PriceAtTime != 0 {
				continue
			}
			if price, ok := s.prices(items[ii].ItemID); ok {
				items[ii].PriceAtTime = price
			}
		}
	}
}
