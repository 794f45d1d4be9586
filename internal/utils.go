package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Version is the application version reported by the CLI
const Version = "0.3.0"

// GenerateCardID creates a unique ID for a card based on timestamp and word
// Format: epochMillis_md5(word)[:8]
func GenerateCardID(word string) string {
	epochMillis := time.Now().UnixNano() / 1000000

	hash := md5.Sum([]byte(word))
	hashStr := hex.EncodeToString(hash[:])[:8]

	return fmt.Sprintf("%d_%s", epochMillis, hashStr)
}

// SanitizeFilename creates a safe filename from a string.
// Letters and digits of any script are kept, everything else becomes '_'.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// AudioFilename builds the media file name used for pronunciation audio:
// lexiforge_<word>_<lang>_<unix>.mp3
func AudioFilename(word, langCode string, at time.Time) string {
	return fmt.Sprintf("lexiforge_%s_%s_%d.mp3",
		SanitizeFilename(word), SanitizeFilename(langCode), at.Unix())
}

// isAlphaNumeric checks if a rune is a letter or digit in any script
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
