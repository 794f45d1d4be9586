package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/lexiforge/internal/ai"
	"codeberg.org/snonux/lexiforge/internal/audio"
	"codeberg.org/snonux/lexiforge/internal/config"
	"codeberg.org/snonux/lexiforge/internal/models"
	"codeberg.org/snonux/lexiforge/internal/processor"
	"codeberg.org/snonux/lexiforge/internal/testutil"
)

const runningReply = "BASE_FORM: run\nDEFINITION: correr\nEXAMPLE: I am running to the store."

// isolate points HOME at a temp dir and clears the variables that would
// leak the developer's configuration into a test
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "LEXIFORGE_API_KEY", "LEXIFORGE_PROVIDER", "LEXIFORGE_MODEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

// fakeProcessor makes every command use gen instead of a real backend
func fakeProcessor(t *testing.T, gen ai.TextGenerator) *[]*config.Settings {
	t.Helper()
	var seen []*config.Settings
	orig := newProcessor
	newProcessor = func(ctx context.Context, s *config.Settings, skipAudio bool, out io.Writer) (*processor.Processor, error) {
		seen = append(seen, s)
		var speaker audio.Provider
		if !skipAudio {
			speaker = &testutil.MockSpeaker{}
		}
		return processor.New(s, gen, speaker, out), nil
	}
	t.Cleanup(func() { newProcessor = orig })
	return &seen
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := CreateRootCommand(NewFlags())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCreateRootCommand(t *testing.T) {
	cmd := CreateRootCommand(NewFlags())
	assert.Equal(t, "lexiforge", cmd.Use)

	for _, name := range []string{"generate", "story", "batch", "models", "languages", "decks", "settings", "cache"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	for _, name := range []string{"config", "env-file", "log-level", "verbose", "provider", "model", "source-lang", "definition-lang"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %s", name)
	}
}

func TestGenerateWord(t *testing.T) {
	isolate(t)
	seen := fakeProcessor(t, &testutil.MockGenerator{Responses: []string{runningReply}})
	mediaDir := t.TempDir()

	out, err := run(t, "generate", "running", "--media-dir", mediaDir,
		"--source-lang", "English", "--definition-lang", "Spanish")
	require.NoError(t, err)
	assert.Contains(t, out, "Base form:  run")
	assert.Contains(t, out, "Definition: correr")

	require.Len(t, *seen, 1)
	assert.Equal(t, "English", (*seen)[0].SourceLanguage)
	assert.Equal(t, "Spanish", (*seen)[0].DefinitionLanguage)

	entries, err := os.ReadDir(mediaDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerateNeedsInput(t *testing.T) {
	isolate(t)
	fakeProcessor(t, &testutil.MockGenerator{Responses: []string{runningReply}})

	_, err := run(t, "generate")
	assert.ErrorContains(t, err, "a word or --collection with --note-id is required")

	_, err = run(t, "generate", "--collection", "col.anki2")
	assert.ErrorContains(t, err, "--note-id is required")
}

func TestConfigFileAndEnvironment(t *testing.T) {
	isolate(t)
	cfg := filepath.Join(t.TempDir(), "lexiforge.yaml")
	testutil.CreateTestFile(t, cfg, []byte("source_lang: German\ndefinition_lang: English\nstory_level: A2\n"))
	t.Setenv("LEXIFORGE_DEFINITION_LANG", "French")

	seen := fakeProcessor(t, &testutil.MockGenerator{Responses: []string{runningReply}})
	_, err := run(t, "--config", cfg, "generate", "laufen", "--skip-audio")
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, "German", (*seen)[0].SourceLanguage)
	assert.Equal(t, "French", (*seen)[0].DefinitionLanguage)
	assert.Equal(t, "A2", (*seen)[0].StoryLevel)
}

func TestStoryFromWords(t *testing.T) {
	isolate(t)
	gen := &testutil.MockGenerator{Responses: []string{"Title: Der Hund\n\nDer **Hund** will **laufen**."}}
	fakeProcessor(t, gen)

	out, err := run(t, "story", "--words", "Hund,laufen", "--language", "German", "--level", "a1")
	require.NoError(t, err)
	assert.Contains(t, out, "Title: Der Hund")
	assert.Contains(t, gen.LastPrompt(), "Hund, laufen")
	assert.Contains(t, gen.LastPrompt(), "CEFR A1")
}

func TestBatchCommand(t *testing.T) {
	isolate(t)
	fakeProcessor(t, &testutil.MockGenerator{Responses: []string{runningReply}})

	file := filepath.Join(t.TempDir(), "words.txt")
	testutil.CreateTestFile(t, file, []byte("running\n"))
	outDir := t.TempDir()

	out, err := run(t, "--source-lang", "English", "batch", file, "-o", outDir, "--deck-name", "Verbs")
	require.NoError(t, err)
	assert.Contains(t, out, "Done! Anki import file: "+filepath.Join(outDir, "Verbs.apkg"))
	testutil.AssertFileExists(t, filepath.Join(outDir, "Verbs.apkg"))
}

type fakeLister struct{ models []models.Model }

func (f fakeLister) List(ctx context.Context) ([]models.Model, error) { return f.models, nil }

func TestModelsCommand(t *testing.T) {
	isolate(t)
	orig := newLister
	newLister = func(ctx context.Context, c *ai.Config) (models.Lister, error) {
		return fakeLister{[]models.Model{
			{Name: "gemini-2.5-flash", Kind: models.KindText},
			{Name: "gemini-2.5-pro", Kind: models.KindText},
			{Name: "text-embedding-004", Kind: models.KindOther},
		}}, nil
	}
	t.Cleanup(func() { newLister = orig })

	out, err := run(t, "models", "--model", "gemini-2.5-pro")
	require.NoError(t, err)
	assert.Contains(t, out, "Available gemini models:")
	assert.Contains(t, out, "* gemini-2.5-pro")
	assert.NotContains(t, out, "text-embedding-004")
}

func TestLanguagesCommand(t *testing.T) {
	isolate(t)
	out, err := run(t, "languages")
	require.NoError(t, err)
	assert.Contains(t, out, "CODE")
	assert.Contains(t, out, "Japanese")
	assert.Contains(t, out, "A1,A2,B1,B2,C1,C2")

	out, err = run(t, "languages", "--espeak")
	require.NoError(t, err)
	assert.Contains(t, out, "cmn")
	assert.NotContains(t, out, "Japanese")
	assert.NotRegexp(t, `(?m)^th\s`, out, "Thai has no espeak-ng voice")
}

func TestSettingsSetAndShow(t *testing.T) {
	home := isolate(t)

	out, err := run(t, "settings", "set", "definition_lang", "Spanish")
	require.NoError(t, err)
	path := filepath.Join(home, config.FileName+".yaml")
	assert.Contains(t, out, "Saved definition_lang to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "definition_lang: Spanish")

	t.Setenv("LEXIFORGE_API_KEY", "secret-key")
	out, err = run(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Spanish")
	assert.NotContains(t, out, "secret-key")
}

func TestSettingsSetRejectsBadValues(t *testing.T) {
	home := isolate(t)

	_, err := run(t, "settings", "set", "no_such_key", "x")
	assert.ErrorContains(t, err, "unknown setting")

	_, err = run(t, "settings", "set", "story_level", "Z9")
	assert.ErrorContains(t, err, "refusing to save")
	assert.NoFileExists(t, filepath.Join(home, config.FileName+".yaml"))
}

func TestCacheCommands(t *testing.T) {
	isolate(t)
	cacheDir := t.TempDir()
	t.Setenv("LEXIFORGE_TTS_CACHE_DIR", cacheDir)
	testutil.CreateTestFile(t, filepath.Join(cacheDir, "ab", "cdef.mp3"), make([]byte, 2048))

	out, err := run(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "1 cached recordings, 2.0 KiB")

	out, err = run(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Audio cache cleared")
	assert.NoDirExists(t, cacheDir)
}

func TestBindFlagsToViper(t *testing.T) {
	v := viper.New()
	v.SetDefault("provider", "gemini")
	v.SetDefault("model", "gemini-flash-latest")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("provider", "", "")
	fs.String("model", "", "")
	require.NoError(t, fs.Parse([]string{"--provider", "openai"}))
	require.NoError(t, bindFlagsToViper(v, fs))

	assert.Equal(t, "openai", v.GetString("provider"))
	assert.Equal(t, "gemini-flash-latest", v.GetString("model"), "unset flags keep the default")
}
