package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

// LoadUsers reads a YAML list of users.
//
//	- id: 11
//	  fullName: Maria Santos
//	  email: maria@example.com
//	  isActive: true
func LoadUsers(path string) ([]model.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading users file: %w", err)
	}
	var users []model.User
	if err := yaml.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parsing users file %s: %w", path, err)
	}
	for i, u := range users {
		if u.ID <= 0 || u.FullName == "" {
			return nil, fmt.Errorf("parsing users file %s: entry %d needs id and fullName", path, i+1)
		}
	}
	return users, nil
}

type fallbackUsers struct {
	EntityStore
	users []model.User
}

// WithFallbackUsers serves users from a fixed list when reading them from s
// fails. Other kinds and caller cancellation pass through untouched.
func WithFallbackUsers(s EntityStore, users []model.User) EntityStore {
	sorted := append([]model.User(nil), users...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &fallbackUsers{EntityStore: s, users: sorted}
}

func (f *fallbackUsers) usable(ctx context.Context, kind model.Kind, err error) bool {
	if kind != model.KindUser || err == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	slog.Warn("user directory unavailable, serving fallback users", "error", err, "users", len(f.users))
	return true
}

func (f *fallbackUsers) Find(ctx context.Context, kind model.Kind, name string) (*Entity, error) {
	e, err := f.EntityStore.Find(ctx, kind, name)
	if !f.usable(ctx, kind, err) {
		return e, err
	}
	key := model.NameKey(name)
	for i := range f.users {
		if model.NameKey(f.users[i].FullName) == key {
			return UserEntity(&f.users[i]), nil
		}
	}
	return nil, nil
}

func (f *fallbackUsers) Get(ctx context.Context, kind model.Kind, id int64) (*Entity, error) {
	e, err := f.EntityStore.Get(ctx, kind, id)
	if !f.usable(ctx, kind, err) {
		return e, err
	}
	for i := range f.users {
		if f.users[i].ID == id {
			return UserEntity(&f.users[i]), nil
		}
	}
	return nil, nil
}

func (f *fallbackUsers) List(ctx context.Context, kind model.Kind) ([]Entity, error) {
	list, err := f.EntityStore.List(ctx, kind)
	if !f.usable(ctx, kind, err) {
		return list, err
	}
	out := make([]Entity, 0, len(f.users))
	for i := range f.users {
		out = append(out, *UserEntity(&f.users[i]))
	}
	return out, nil
}
