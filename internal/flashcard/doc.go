// Package flashcard runs the "generate" action on a note: it maps the note's
// fields, asks the definition client for the lemma, definition and example,
// synthesizes pronunciation audio for the lemma and writes everything back.
// Every failure is reported to the host notifier together with its step.
package flashcard
