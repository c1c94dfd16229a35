// Package daemon composes the long-running pieces of the bot: the daily
// delivery scheduler and the Telegram update loop. A lock file keeps a
// second instance from double-sending lessons against the same progress
// store.
package daemon
