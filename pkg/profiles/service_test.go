package profiles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePseudonym(t *testing.T) {
	n, err := NormalizePseudonym("  Gossip-Girl!! ")
	require.NoError(t, err)
	assert.Equal(t, "gossipgirl", n)

	_, err = NormalizePseudonym("a!")
	assert.ErrorIs(t, err, ErrInvalidPseudonym)

	_, err = NormalizePseudonym("abcdefghijklmnopqrstuvwxyz")
	assert.ErrorIs(t, err, ErrInvalidPseudonym)
}

func TestOnboard(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	p, err := svc.Onboard(ctx, "viewer-a", "Tea_Time", "", "spilling")
	require.NoError(t, err)
	assert.True(t, p.Onboarded)
	assert.Equal(t, "tea_time", p.Pseudonym)

	_, err = svc.Onboard(ctx, "viewer-b", "TEA_TIME", "", "")
	assert.ErrorIs(t, err, ErrPseudonymTaken)

	_, err = svc.Onboard(ctx, "viewer-a", "other", "", "")
	assert.ErrorIs(t, err, ErrAlreadyOnboarded)

	found, err := svc.GetByPseudonym(ctx, "Tea_Time")
	require.NoError(t, err)
	assert.Equal(t, "viewer-a", found.Id)
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()
	_, err := svc.Onboard(ctx, "viewer", "sipper", "https://cdn.example.com/a.png", "old bio")
	require.NoError(t, err)

	bio := "new bio"
	p, err := svc.Update(ctx, "viewer", Patch{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "new bio", p.Bio)
	assert.Equal(t, "sipper", p.Pseudonym)
	assert.Equal(t, "https://cdn.example.com/a.png", p.Avatar)

	_, err = svc.Update(ctx, "nobody", Patch{Bio: &bio})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestAuthorFallsBackToAnonymous(t *testing.T) {
	svc := NewService(NewMemoryStore())
	p, err := svc.Author(context.Background(), "0123456789")
	require.NoError(t, err)
	assert.Equal(t, "anon_012345", p.Author().Username)
}
