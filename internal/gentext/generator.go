// Package gentext defines the boundary to the external text-generation
// collaborator. The engine stores whatever text comes back verbatim; a
// collaborator failure is a recoverable error, never a crash, and never
// overwrites previously stored content.
package gentext

import (
	"context"
	"errors"

	"github.com/agrovista/fieldops/pkg/types"
)

// Kind selects which text a generator produces.
type Kind string

// Generated text kinds.
const (
	KindProposal Kind = "proposal"
	KindFollowUp Kind = "followup"
)

// ErrUnavailable reports that no text-generation collaborator is reachable
// or configured.
var ErrUnavailable = errors.New("text generation is unavailable")

// Generator produces free-form text from structured opportunity context.
type Generator interface {
	// Proposal returns commercial proposal copy for the opportunity.
	Proposal(ctx context.Context, o *types.Opportunity) (string, error)

	// FollowUp returns a follow-up message draft for the opportunity.
	FollowUp(ctx context.Context, o *types.Opportunity) (string, error)
}

// Disabled is the Generator wired when no collaborator is configured. Every
// call fails with ErrUnavailable.
type Disabled struct{}

// Proposal always returns ErrUnavailable.
func (Disabled) Proposal(ctx context.Context, o *types.Opportunity) (string, error) {
	return "", ErrUnavailable
}

// FollowUp always returns ErrUnavailable.
func (Disabled) FollowUp(ctx context.Context, o *types.Opportunity) (string, error) {
	return "", ErrUnavailable
}
