package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one word to enrich
type Entry struct {
	Word string
	// Language overrides the configured source language when set
	Language string
	Line     int
}

// ReadBatchFile reads words from a file. Supported line formats:
//   - "word": uses the configured source language
//   - "word = Spanish": the word in the given language (name or code)
//   - "# comment" and blank lines are ignored
func ReadBatchFile(filename string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads entries from r. Duplicate words keep their first occurrence.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word, lang, _ := strings.Cut(line, "=")
		word = strings.TrimSpace(word)
		lang = strings.TrimSpace(lang)
		if word == "" {
			return nil, fmt.Errorf("line %d: missing word before '='", n)
		}

		key := strings.ToLower(word) + "\x00" + strings.ToLower(lang)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, Entry{Word: word, Language: lang, Line: n})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return entries, nil
}
