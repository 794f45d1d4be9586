// Package logging provides the structured logger used across lexiforge.
// Loggers are created per call site with NewLogger and are backed by
// logrus unless a custom LoggerFactory has been installed.
package logging
