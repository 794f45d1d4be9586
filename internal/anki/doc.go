// Package anki reads and writes Anki collection files (collection.anki2)
// through SQLite and exports enriched cards as .apkg packages.
//
// A Collection implements the host interfaces used by the flashcard and
// story packages: notes with named fields, a media directory, the studied
// words of today and the deck list.
package anki
