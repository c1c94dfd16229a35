// Package bot runs the Telegram command surface: a long-poll update loop
// that routes /start, /progress, /lesson, and /help to handlers over the
// progress store and the delivery pipeline.
//
// Registration via /start delivers the first lesson immediately; on-demand
// /lesson resends reuse the pipeline but never advance progress, so the
// daily schedule is unaffected by them.
package bot
