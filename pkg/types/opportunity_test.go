package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpportunityValidate(t *testing.T) {
	tests := []struct {
		name    string
		opp     Opportunity
		wantErr error
	}{
		{
			name: "valid minimal opportunity",
			opp:  Opportunity{Title: "Soy package", ClosingProbability: 50},
		},
		{
			name:    "empty title rejected",
			opp:     Opportunity{Title: "", ClosingProbability: 50},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "whitespace title rejected",
			opp:     Opportunity{Title: "   ", ClosingProbability: 50},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "negative probability rejected",
			opp:     Opportunity{Title: "Deal", ClosingProbability: -1},
			wantErr: ErrInvalidProbability,
		},
		{
			name:    "probability above 100 rejected",
			opp:     Opportunity{Title: "Deal", ClosingProbability: 101},
			wantErr: ErrInvalidProbability,
		},
		{
			name: "probability boundaries accepted",
			opp:  Opportunity{Title: "Deal", ClosingProbability: 100},
		},
		{
			name: "activity group without properties rejected",
			opp: Opportunity{
				Title: "Deal",
				ActivityGroups: []ActivityGroup{
					{Activity: "soy", PropertyIDs: nil},
				},
			},
			wantErr: ErrEmptyPropertyIDs,
		},
		{
			name: "line item without catalog reference rejected",
			opp: Opportunity{
				Title: "Deal",
				ActivityGroups: []ActivityGroup{
					{
						Activity:    "soy",
						PropertyIDs: []string{"p1"},
						Items:       []LineItem{{ItemID: "", Quantity: 2}},
					},
				},
			},
			wantErr: ErrEmptyItemID,
		},
		{
			name: "zero quantity rejected",
			opp: Opportunity{
				Title: "Deal",
				ActivityGroups: []ActivityGroup{
					{
						Activity:    "soy",
						PropertyIDs: []string{"p1"},
						Items:       []LineItem{{ItemID: "item-1", Quantity: 0}},
					},
				},
			},
			wantErr: ErrInvalidQuantity,
		},
		{
			name: "negative quantity rejected",
			opp: Opportunity{
				Title: "Deal",
				ActivityGroups: []ActivityGroup{
					{
						Activity:    "soy",
						PropertyIDs: []string{"p1"},
						Items:       []LineItem{{ItemID: "item-1", Quantity: -1.5}},
					},
				},
			},
			wantErr: ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opp.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfidenceBoundaries(t *testing.T) {
	tests := []struct {
		probability int
		want        ConfidenceLevel
	}{
		{20, ConfidenceVeryLow},
		{21, ConfidenceLow},
		{40, ConfidenceLow},
		{41, ConfidenceMedium},
		{60, ConfidenceMedium},
		{61, ConfidenceHigh},
		{80, ConfidenceHigh},
		{81, ConfidenceGuaranteed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Confidence(tt.probability),
			"probability %d", tt.probability)
	}

	assert.Equal(t, ConfidenceVeryLow, Confidence(0))
	assert.Equal(t, ConfidenceGuaranteed, Confidence(100))
}

func TestBucketBoundaries(t *testing.T) {
	assert.Equal(t, BucketLow, Bucket(0))
	assert.Equal(t, BucketLow, Bucket(39))
	assert.Equal(t, BucketMedium, Bucket(40))
	assert.Equal(t, BucketMedium, Bucket(79))
	assert.Equal(t, BucketHigh, Bucket(80))
	assert.Equal(t, BucketHigh, Bucket(100))
}

func TestBucketRange(t *testing.T) {
	tests := []struct {
		bucket   ConfidenceBucket
		wantLow  int
		wantHigh int
	}{
		{BucketLow, 0, 39},
		{BucketMedium, 40, 79},
		{BucketHigh, 80, 100},
	}

	for _, tt := range tests {
		low, high := tt.bucket.Range()
		assert.Equal(t, tt.wantLow, low)
		assert.Equal(t, tt.wantHigh, high)
	}
}

func TestBucketValid(t *testing.T) {
	assert.True(t, BucketLow.Valid())
	assert.True(t, BucketMedium.Valid())
	assert.True(t, BucketHigh.Valid())
	assert.False(t, ConfidenceBucket("").Valid())
	assert.False(t, ConfidenceBucket("huge").Valid())
}

func TestHasActivity(t *testing.T) {
	o := Opportunity{
		ActivityGroups: []ActivityGroup{
			{Activity: "Soy", PropertyIDs: []string{"p1"}},
			{Activity: "cotton", PropertyIDs: []string{"p2"}},
		},
	}

	assert.True(t, o.HasActivity("soy"), "matching is case-insensitive")
	assert.True(t, o.HasActivity("Cotton"))
	assert.False(t, o.HasActivity("corn"))

	var empty Opportunity
	assert.False(t, empty.HasActivity("soy"))
}
