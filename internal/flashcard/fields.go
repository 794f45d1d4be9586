package flashcard

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/lexiforge/internal/host"
)

// AudioField receives the [sound:...] reference when a note has it
const AudioField = "Audio"

// FieldMapping names the note fields that receive the generated content
type FieldMapping struct {
	WordField       string
	DefinitionField string
	ExampleField    string
}

// DefaultFieldMapping maps to the fields of Anki's Basic note type
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{WordField: "Front", DefinitionField: "Back", ExampleField: "Back"}
}

// Combined reports whether definition and example share one field
func (m FieldMapping) Combined() bool {
	return m.DefinitionField == m.ExampleField
}

// ResolveFields picks the mapping for a note. A note with exactly two fields
// always maps word to the first and definition and example to the second;
// otherwise the configured mapping applies, with empty entries defaulting
// to Front/Back/Back.
func ResolveFields(note host.Note, configured FieldMapping) FieldMapping {
	names := note.FieldNames()
	if len(names) == 2 {
		return FieldMapping{WordField: names[0], DefinitionField: names[1], ExampleField: names[1]}
	}

	def := DefaultFieldMapping()
	if configured.WordField == "" {
		configured.WordField = def.WordField
	}
	if configured.DefinitionField == "" {
		configured.DefinitionField = def.DefinitionField
	}
	if configured.ExampleField == "" {
		configured.ExampleField = def.ExampleField
	}
	return configured
}

// MissingFieldsError lists mapped fields the note type does not have
type MissingFieldsError struct {
	Missing  []string
	Detected []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("the following fields are missing in this note type: %s (detected fields: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Detected, ", "))
}

// Validate checks that the mapped fields exist and returns the cleaned word
func Validate(note host.Note, m FieldMapping) (string, error) {
	if note == nil {
		return "", fmt.Errorf("please select a note")
	}

	var missing []string
	if _, ok := note.Field(m.WordField); !ok {
		missing = append(missing, m.WordField)
	}
	if _, ok := note.Field(m.DefinitionField); !ok {
		missing = append(missing, m.DefinitionField)
	}
	if !m.Combined() {
		if _, ok := note.Field(m.ExampleField); !ok {
			missing = append(missing, m.ExampleField)
		}
	}
	if len(missing) > 0 {
		return "", &MissingFieldsError{Missing: missing, Detected: note.FieldNames()}
	}

	raw, _ := note.Field(m.WordField)
	word := host.CleanFieldText(raw)
	if word == "" {
		return "", fmt.Errorf("please enter a word in the '%s' field", m.WordField)
	}
	return word, nil
}

// apply writes a result into the note following the mapping
func apply(note host.Note, m FieldMapping, res Result) error {
	if res.Lemma != "" {
		if err := note.SetField(m.WordField, res.Lemma); err != nil {
			return err
		}
	}

	if m.Combined() {
		if err := note.SetField(m.DefinitionField, res.Definition+"<br><br>"+res.Example); err != nil {
			return err
		}
	} else {
		if err := note.SetField(m.DefinitionField, res.Definition); err != nil {
			return err
		}
		if err := note.SetField(m.ExampleField, res.Example); err != nil {
			return err
		}
	}

	if res.AudioFile == "" {
		return nil
	}
	sound := fmt.Sprintf("[sound:%s]", res.AudioFile)
	if _, ok := note.Field(AudioField); ok {
		return note.SetField(AudioField, sound)
	}
	word, _ := note.Field(m.WordField)
	return note.SetField(m.WordField, word+" "+sound)
}
