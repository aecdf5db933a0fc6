package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilPointer indicates Load was called with something other than a
// non-nil struct pointer.
var ErrNilPointer = errors.New("config: target must be a non-nil struct pointer")

var (
	dotenvOnce sync.Once

	// cache holds one loaded value per config type. Types are loaded once
	// per process so every caller observes the same snapshot of the
	// environment.
	cache sync.Map // reflect.Type -> any
)

// Load parses environment variables into the given struct pointer using
// `env` tags. A .env file in the working directory is applied on first use;
// a missing file is not an error. Each type is parsed once and cached.
func Load(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	typ := v.Elem().Type()
	if cached, ok := cache.Load(typ); ok {
		v.Elem().Set(reflect.ValueOf(cached))
		return nil
	}

	if err := env.Parse(target); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", typ, err)
	}

	// First writer wins; concurrent loaders all end up with the same value.
	actual, _ := cache.LoadOrStore(typ, v.Elem().Interface())
	v.Elem().Set(reflect.ValueOf(actual))
	return nil
}

// MustLoad is Load that panics on failure. Intended for process startup
// where a missing required variable should stop the service immediately.
func MustLoad(target any) {
	if err := Load(target); err != nil {
		panic(err)
	}
}
