package metadata

import (
	"context"
	"strconv"
)

// GetString reads key as text. A missing key yields "".
func GetString(ctx context.Context, r Repository, key string) (string, error) {
	v, err := r.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// SetString stores value as text.
func SetString(ctx context.Context, r Repository, key, value string) error {
	return r.Set(ctx, key, []byte(value))
}

// GetBool reads key as a boolean; a missing or unparsable value yields def.
func GetBool(ctx context.Context, r Repository, key string, def bool) (bool, error) {
	v, err := r.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if v == nil {
		return def, nil
	}
	b, perr := strconv.ParseBool(string(v))
	if perr != nil {
		return def, nil
	}
	return b, nil
}

// SetBool stores value as "true" or "false".
func SetBool(ctx context.Context, r Repository, key string, value bool) error {
	return r.Set(ctx, key, []byte(strconv.FormatBool(value)))
}

// GetInt reads key as a base-10 integer; missing or unparsable yields 0.
func GetInt(ctx context.Context, r Repository, key string) (int, error) {
	v, err := r.Get(ctx, key)
	if err != nil || v == nil {
		return 0, err
	}
	n, perr := strconv.Atoi(string(v))
	if perr != nil {
		return 0, nil
	}
	return n, nil
}

// SetInt stores value in base 10.
func SetInt(ctx context.Context, r Repository, key string, value int) error {
	return r.Set(ctx, key, []byte(strconv.Itoa(value)))
}
