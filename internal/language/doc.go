// Package language holds the static table of supported languages: ISO code,
// display name, the voice identifier of every speech provider and the CEFR
// levels available for reading practice.
package language
