// Package processor contains the workflows behind the CLI commands. It builds
// the text and speech backends from the settings and drives single words,
// collection notes, batch files and reading-practice stories through the
// flashcard and story packages, printing progress as it goes.
package processor
