// Package telegram implements the small slice of the Telegram Bot API the
// daemon needs: plain-text sends, photo and audio uploads, getUpdates long
// polling, and a getMe credential check.
//
// The client retries transport errors, HTTP 429, and 5xx responses with a
// fixed delay and bounded attempts; other API rejections surface as
// *APIError and are terminal. Retry policy lives entirely here so callers
// treat a returned error as final for the current attempt.
package telegram
