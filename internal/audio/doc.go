// Package audio synthesizes pronunciation audio for a word in a given
// language. Providers return MP3 bytes: Google Translate TTS, OpenAI speech
// and the local espeak-ng engine. Providers can be chained with a fallback
// and wrapped with an on-disk cache.
package audio
