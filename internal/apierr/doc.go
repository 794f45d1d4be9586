// Package apierr defines the error kinds shared by the definition, audio
// and story clients: authentication failures, request failures, malformed
// responses and unsupported languages. Callers match them with errors.As
// or the Is* helpers.
package apierr
