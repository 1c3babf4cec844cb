package settings

import "context"

// Repository persists device settings by name.
type Repository interface {
	// ReplaceAll drops every stored setting and writes the given set.
	ReplaceAll(ctx context.Context, values map[string]string) error

	// Get returns the raw JSON value of one setting, or common.ErrNotFound.
	Get(ctx context.Context, name string) (string, error)

	// All returns every stored setting.
	All(ctx context.Context) (map[string]string, error)
}
