package gentext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agrovista/fieldops/pkg/types"
)

func TestDisabled(t *testing.T) {
	gen := Disabled{}
	opp := &types.Opportunity{Title: "Deal"}

	text, err := gen.Proposal(context.Background(), opp)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, text)

	text, err = gen.FollowUp(context.Background(), opp)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, text)
}
