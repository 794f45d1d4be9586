// Package ai wraps the generative-text backends used by lexiforge. Gemini
// (google.golang.org/genai) and OpenAI chat (go-openai) are exposed through
// the TextGenerator interface, and Resilient adds a single bounded retry and
// a circuit breaker on top of any backend.
package ai
