package strategy

import (
	"context"
	"fmt"
)

// Store persists the flat registry snapshot.
type Store interface {
	LoadSettings(ctx context.Context, prefix string) (map[string]string, error)
	SaveSettings(ctx context.Context, settings map[string]string) error
	DeleteSettings(ctx context.Context, prefix string) error
}

// Load restores the registry from the store. An empty store leaves the
// defaults in place.
func (r *Registry) Load(ctx context.Context, store Store) error {
	settings, err := store.LoadSettings(ctx, "")
	if err != nil {
		return fmt.Errorf("load strategy settings: %w", err)
	}
	if len(settings) == 0 {
		return nil
	}
	return r.Restore(settings)
}

// Save replaces the stored settings with the current snapshot.
func (r *Registry) Save(ctx context.Context, store Store) error {
	if err := store.DeleteSettings(ctx, snapshotPrefix); err != nil {
		return fmt.Errorf("clear strategy settings: %w", err)
	}
	if err := store.SaveSettings(ctx, r.Snapshot()); err != nil {
		return fmt.Errorf("save strategy settings: %w", err)
	}
	return nil
}
