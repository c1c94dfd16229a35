// Package curriculum exposes the read-only lesson inputs the delivery
// pipeline draws from.
//
// Three artifacts arrive from external preprocessing: a JSON array of lesson
// texts (required), a JSON array of video links aligned by lesson index
// (optional), and image/audio files resolved by naming convention from the
// 1-based lesson number (lesson_<n>.jpg, lesson_<nnn>.mp3). Asset absence is
// resolved once at load time; a Lesson with an empty asset path simply has no
// such asset. The repository never writes to any of these inputs.
package curriculum
