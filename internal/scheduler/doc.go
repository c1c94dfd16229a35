// Package scheduler drives the daily delivery fan-out.
//
// A cron trigger (standard five-field expression, evaluated in the
// configured timezone) fires RunOnce, which snapshots the due-subscriber
// list and walks it sequentially with a pacing delay between sends. One
// subscriber's failure never blocks the rest of the batch; progress
// advances only for outcomes the pipeline reports as delivered. Runs are
// serialized twice over: the cron chain skips a tick that would overlap a
// slow run, and an internal mutex keeps manual RunOnce calls from
// interleaving either.
package scheduler
