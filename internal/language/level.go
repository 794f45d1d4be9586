package language

import (
	"fmt"
	"strings"
)

// Level is a CEFR proficiency level
type Level string

const (
	A1 Level = "A1"
	A2 Level = "A2"
	B1 Level = "B1"
	B2 Level = "B2"
	C1 Level = "C1"
	C2 Level = "C2"
)

// AllLevels returns the six CEFR levels from beginner to mastery
func AllLevels() []Level {
	return []Level{A1, A2, B1, B2, C1, C2}
}

// ParseLevel accepts a level in any letter case, e.g. "b2"
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllLevels() {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("invalid CEFR level %q: must be one of A1, A2, B1, B2, C1, C2", s)
}

// Guidance describes what a learner at this level can handle
func (l Level) Guidance() string {
	switch l {
	case A1:
		return "Use only very common everyday words, present tense and short simple sentences."
	case A2:
		return "Use simple sentences about familiar topics; past and future tenses are fine."
	case B1:
		return "Use clear connected text on familiar matters with some descriptive detail."
	case B2:
		return "Use varied sentence structures and some idiomatic expressions."
	case C1:
		return "Use rich vocabulary, complex sentences and implicit meaning."
	case C2:
		return "Use nuanced, native-level prose with subtle shades of meaning."
	}
	return ""
}
