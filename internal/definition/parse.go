package definition

import (
	"encoding/json"
	"regexp"
	"strings"

	"codeberg.org/snonux/lexiforge/internal/apierr"
)

// ParseFunc turns raw model text into a Result. It is the one place to
// adapt when a model's output format changes.
type ParseFunc func(raw string) (Result, error)

var (
	baseFormRe   = regexp.MustCompile(`(?im)^[ \t]*BASE_FORM:[ \t]*(.+)`)
	definitionRe = regexp.MustCompile(`(?im)^[ \t]*DEFINITION:[ \t]*(.+)`)
	exampleRe    = regexp.MustCompile(`(?im)^[ \t]*EXAMPLE:[ \t]*(.+)`)
	fenceRe      = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// Parse accepts either a JSON object or the BASE_FORM/DEFINITION/EXAMPLE
// line format and requires all three fields to be present and non-empty.
func Parse(raw string) (Result, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Result{}, &apierr.ParseError{Reason: "empty response", Raw: raw}
	}

	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	var res Result
	if strings.HasPrefix(text, "{") {
		var err error
		if res, err = parseJSON(text); err != nil {
			return Result{}, &apierr.ParseError{Reason: "invalid JSON: " + err.Error(), Raw: raw}
		}
	} else {
		res = parseLines(text)
	}

	if missing := res.missing(); len(missing) > 0 {
		return Result{}, &apierr.ParseError{
			Reason: "missing " + strings.Join(missing, ", "),
			Raw:    raw,
		}
	}
	return res, nil
}

func parseLines(text string) Result {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")

	return Result{
		Lemma:      firstGroup(baseFormRe, text),
		Definition: firstGroup(definitionRe, text),
		Example:    firstGroup(exampleRe, text),
	}
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func parseJSON(text string) (Result, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return Result{}, err
	}

	lookup := func(keys ...string) string {
		for k, v := range fields {
			for _, want := range keys {
				if strings.EqualFold(k, want) {
					if s, ok := v.(string); ok {
						return strings.TrimSpace(s)
					}
				}
			}
		}
		return ""
	}

	return Result{
		Lemma:      lookup("lemma", "base_form", "baseForm"),
		Definition: lookup("definition"),
		Example:    lookup("example", "example_sentence"),
	}, nil
}
