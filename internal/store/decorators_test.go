package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// slowStore blocks every call until its context ends.
type slowStore struct{ EntityStore }

func (slowStore) Find(ctx context.Context, kind model.Kind, name string) (*Entity, error) {
	<-ctx.Done()
	return nil, wrap("find", kind, name, ctx.Err())
}

func (slowStore) Create(ctx context.Context, kind model.Kind, fields map[string]any) (*Entity, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeouts(t *testing.T) {
	s := WithTimeouts(slowStore{NewMemory()}, 10*time.Millisecond, 10*time.Millisecond)

	_, err := s.Find(context.Background(), model.KindItemType, "Tools")
	assert.ErrorIs(t, err, ErrTimeout)

	_, err = s.Create(context.Background(), model.KindItemType, map[string]any{"name": "Tools"})
	assert.ErrorIs(t, err, ErrTimeout)
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "create", ue.Op)
}

func TestWithTimeoutsCallerCancel(t *testing.T) {
	s := WithTimeouts(slowStore{NewMemory()}, time.Minute, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Create(ctx, model.KindItemType, map[string]any{"name": "Tools"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrTimeout, "the caller's deadline is not a store timeout")
}

func TestWithTimeoutsPassesThrough(t *testing.T) {
	s := WithTimeouts(NewMemory(), 0, 0)
	e, err := s.Create(context.Background(), model.KindItemType, map[string]any{"name": "Tools"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(context.Background(), model.KindItemType, e.ID))
}

// downStore fails every call.
type downStore struct{ EntityStore }

var errDown = errors.New("connection refused")

func (downStore) Find(ctx context.Context, kind model.Kind, name string) (*Entity, error) {
	return nil, wrap("find", kind, name, errDown)
}

func (downStore) Get(ctx context.Context, kind model.Kind, id int64) (*Entity, error) {
	return nil, wrap("get", kind, "", errDown)
}

func (downStore) List(ctx context.Context, kind model.Kind) ([]Entity, error) {
	return nil, wrap("list", kind, "", errDown)
}

func TestWithFallbackUsers(t *testing.T) {
	users := []model.User{
		{ID: 12, FullName: "Ana Cruz", IsActive: true},
		{ID: 11, FullName: "Maria Santos", IsActive: true},
	}
	s := WithFallbackUsers(downStore{NewMemory()}, users)
	ctx := context.Background()

	list, err := s.List(ctx, model.KindUser)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(11), list[0].ID)

	u, err := s.Find(ctx, model.KindUser, "ana cruz")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(12), u.ID)

	u, err = s.Get(ctx, model.KindUser, 11)
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", u.Name())

	// Other kinds keep failing.
	_, err = s.List(ctx, model.KindItemType)
	assert.ErrorIs(t, err, errDown)
}

func TestLoadUsers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- id: 11
  fullName: Maria Santos
  email: maria@example.com
  isActive: true
- id: 12
  fullName: Ana Cruz
`), 0o644))

	users, err := LoadUsers(path)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "maria@example.com", users[0].Email)
	assert.False(t, users[1].IsActive)

	require.NoError(t, os.WriteFile(path, []byte("- fullName: Nobody\n"), 0o644))
	_, err = LoadUsers(path)
	assert.ErrorContains(t, err, "needs id and fullName")
}
