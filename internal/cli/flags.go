package cli

import "codeberg.org/snonux/lexiforge/internal/models"

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile        string
	EnvFile        string
	LogLevel       string
	Verbose        bool
	Provider       string
	Model          string
	SourceLang     string
	DefinitionLang string

	// Anki collection
	Collection string
	NoteID     int64
	DeckID     int64
	MediaDir   string
	SkipAudio  bool

	// Story flags
	Words    []string
	Level    string
	Length   string
	Language string
	HTML     bool

	// Batch flags
	OutputDir string
	DeckName  string
	CSV       bool
	Archive   bool

	// Models flags
	Limit int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		DeckName: "LexiForge Vocabulary",
		Limit:    models.DefaultLimit,
	}
}
