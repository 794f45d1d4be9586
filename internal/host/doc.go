// Package host is the boundary to the flashcard application. It defines
// the few things lexiforge needs from its host: a note whose fields can be
// read and written, a media store, a source of studied words and a way to
// tell the user which step failed. In-memory and filesystem implementations
// live here; the Anki collection adapter lives in package anki.
package host
