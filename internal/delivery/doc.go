// Package delivery sends one lesson to one subscriber.
//
// The pipeline resolves the lesson, then transmits image, text segments,
// audio, and video link in that fixed order. Asset sends are isolated:
// a failed or missing image/audio/video never blocks the rest of the
// message. The lesson text is the primary content; the attempt only counts
// as delivered when every text segment went out, and only then may the
// caller advance the subscriber's progress. The pipeline itself never
// writes progress, which keeps the advance decision in exactly one place
// per calling context (scheduler and registration advance, manual resends
// do not).
package delivery
