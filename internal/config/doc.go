// Package config loads and validates surfacegate configuration from TOML.
//
// Configuration is resolved in this order: an explicit --config path, then
// ~/.config/surfacegate/config.toml, then surfacegate.toml in the working
// directory. A missing file falls back to defaults so the binary runs
// usefully out of the box. All path fields are tilde-expanded and normalized
// before validation.
package config
