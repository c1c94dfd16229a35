// Package config loads and validates the dripfeed TOML configuration.
//
// Configuration resolves from an explicit --config path, then
// ~/.config/dripfeed/config.toml, then ./dripfeed.toml; a missing file yields
// repository defaults. The Telegram bot token may also arrive via the
// DRIPFEED_TELEGRAM_TOKEN environment variable, which takes precedence over
// the file. Load returns a fully normalized config: all paths are expanded
// to absolute form and validation has already passed, so downstream
// components never re-check these invariants.
package config
