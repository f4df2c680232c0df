package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gemauth/internal/core/domain"
)

func TestCredentialsService_Save(t *testing.T) {
	ctx := context.Background()
	store := newMockCredentialsStore()
	svc := NewCredentialsService(store, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	err := svc.Save(ctx, domain.StoredCredential{
		ID:         "cred-1",
		Credential: domain.Credential{AccessToken: "ya29.a"},
	})
	require.NoError(t, err)

	saved := store.creds["cred-1"]
	assert.Equal(t, fixed, saved.CreatedAt)
	assert.Equal(t, fixed, saved.UpdatedAt)
}

func TestCredentialsService_Save_KeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := newMockCredentialsStore()
	svc := NewCredentialsService(store, nil)
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Save(ctx, domain.StoredCredential{
		ID:         "cred-1",
		Credential: domain.Credential{AccessToken: "a"},
		CreatedAt:  created,
	}))

	assert.Equal(t, created, store.creds["cred-1"].CreatedAt)
	assert.True(t, store.creds["cred-1"].UpdatedAt.After(created))
}

func TestCredentialsService_Save_Invalid(t *testing.T) {
	svc := NewCredentialsService(newMockCredentialsStore(), nil)

	err := svc.Save(context.Background(), domain.StoredCredential{ID: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCredentialsService_NilStore(t *testing.T) {
	ctx := context.Background()
	svc := NewCredentialsService(nil, nil)

	assert.ErrorIs(t, svc.Save(ctx, domain.StoredCredential{}), domain.ErrNotImplemented)
	_, err := svc.Get(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	assert.ErrorIs(t, svc.Delete(ctx, "x"), domain.ErrNotImplemented)
	_, err = svc.Inspect(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}

func TestCredentialsService_GetListDelete(t *testing.T) {
	ctx := context.Background()
	store := newMockCredentialsStore()
	svc := NewCredentialsService(store, nil)

	for _, id := range []string{"b", "a"} {
		require.NoError(t, svc.Save(ctx, domain.StoredCredential{
			ID:         id,
			Credential: domain.Credential{AccessToken: "tok-" + id},
		}))
	}

	got, err := svc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "tok-a", got.Credential.AccessToken)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.Delete(ctx, "a"))
	_, err = svc.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, ""), domain.ErrInvalidInput)
}

func TestCredentialsService_Inspect(t *testing.T) {
	ctx := context.Background()
	store := newMockCredentialsStore()
	inspector := &mockInspector{info: &domain.TokenInfo{Email: "admin@example.com", LocallyValid: true}}
	svc := NewCredentialsService(store, inspector)

	require.NoError(t, svc.Save(ctx, domain.StoredCredential{
		ID:         "cred-1",
		Credential: domain.Credential{AccessToken: "ya29.a"},
	}))

	info, err := svc.Inspect(ctx, "cred-1")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", info.Email)
	assert.Equal(t, "ya29.a", inspector.got.AccessToken)

	_, err = svc.Inspect(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	inspector.err = errors.New("issuer unavailable")
	_, err = svc.Inspect(ctx, "cred-1")
	assert.EqualError(t, err, "issuer unavailable")
}
