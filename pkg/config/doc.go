// Package config provides type-safe environment variable loading with
// per-type caching. A .env file is applied automatically on first use and
// struct fields are parsed from `env` tags via caarlos0/env.
//
// Usage:
//
//	var cfg smtp.Config
//	config.MustLoad(&cfg)
//
// Each configuration type is loaded once per process; later calls return
// the cached value so every component observes the same settings.
package config
