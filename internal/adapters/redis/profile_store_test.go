package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hillstay/hillstay/internal/domain/model"
	apperrors "github.com/hillstay/hillstay/internal/errors"
	"github.com/hillstay/hillstay/internal/testutil"
)

func TestProfileStore_GetAbsent(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store := NewProfileStore(client)

	doc, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestProfileStore_MergeKeepsUnpatchedKeys(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store := NewProfileStore(client)
	ctx := context.Background()

	require.NoError(t, store.Merge(ctx, "u1", map[string]any{
		model.ProfileKeyUserType:    "owner",
		model.ProfileKeyDisplayName: "Tashi",
	}, model.MergeOptions{}))
	require.NoError(t, store.Merge(ctx, "u1", map[string]any{
		model.ProfileKeyLicenseNumber: "HP-123",
	}, model.MergeOptions{}))

	doc, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "owner", string(doc.UserType))
	assert.Equal(t, "Tashi", doc.DisplayName)
	assert.Equal(t, "HP-123", doc.LicenseNumber)
	assert.Equal(t, int64(2), doc.Version)
}

func TestProfileStore_MergeExpectedVersion(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store := NewProfileStore(client)
	ctx := context.Background()
	zero, one := int64(0), int64(1)

	require.NoError(t, store.Merge(ctx, "u2", map[string]any{model.ProfileKeyDisplayName: "A"}, model.MergeOptions{ExpectedVersion: &zero}))

	err := store.Merge(ctx, "u2", map[string]any{model.ProfileKeyDisplayName: "B"}, model.MergeOptions{ExpectedVersion: &zero})
	assert.True(t, apperrors.IsConflict(err))

	require.NoError(t, store.Merge(ctx, "u2", map[string]any{model.ProfileKeyDisplayName: "C"}, model.MergeOptions{ExpectedVersion: &one}))

	doc, err := store.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "C", doc.DisplayName)
	assert.Equal(t, int64(2), doc.Version)
}

func TestProfileStore_CustomPrefix(t *testing.T) {
	client, srv := testutil.SetupTestRedis(t)
	store := NewProfileStoreWithPrefix(client, "hs:profile:")

	require.NoError(t, store.Merge(context.Background(), "u3", map[string]any{model.ProfileKeyEmail: "a@b.in"}, model.MergeOptions{}))

	assert.True(t, srv.Exists("hs:profile:u3"))
	assert.Equal(t, "1", srv.HGet("hs:profile:u3", "version"))
}

func TestProfileStore_CorruptDocument(t *testing.T) {
	client, srv := testutil.SetupTestRedis(t)
	store := NewProfileStore(client)
	srv.HSet("profile:bad", "doc", "{not json")

	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
}

func TestProfileStore_RequiresUID(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store := NewProfileStore(client)

	_, err := store.Get(context.Background(), "")
	assert.True(t, apperrors.IsInvalidArgument(err))
	err = store.Merge(context.Background(), "", nil, model.MergeOptions{})
	assert.True(t, apperrors.IsInvalidArgument(err))
}
