package anki

import (
	"archive/zip"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDeck(t *testing.T) *Deck {
	t.Helper()
	audio := filepath.Join(t.TempDir(), "lexiforge_run_es_1.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("audio data"), 0644))

	d := NewDeck("LexiForge")
	d.AddCard(Card{Word: "run", Definition: "correr", Example: "I am running to the store.", AudioFile: audio})
	d.AddCard(Card{Word: "blue", Definition: "azul", Example: "The sky is blue."})
	return d
}

func TestDeckStats(t *testing.T) {
	total, withAudio := sampleDeck(t).Stats()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, withAudio)
}

func TestWriteCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cards.csv")
	require.NoError(t, sampleDeck(t).WriteCSV(out, true))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Word,Definition,Example,Audio", lines[0])
	assert.Equal(t, "run,correr,I am running to the store.,[sound:lexiforge_run_es_1.mp3]", lines[1])
	assert.Equal(t, "blue,azul,The sky is blue.,", lines[2])
}

func TestExportAPKG(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "deck.apkg")
	require.NoError(t, sampleDeck(t).ExportAPKG(context.Background(), out))

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()

	files := map[string]*zip.File{}
	for _, f := range r.File {
		files[f.Name] = f
	}
	require.Contains(t, files, "collection.anki2")
	require.Contains(t, files, "media")
	require.Contains(t, files, "0")

	rc, err := files["media"].Open()
	require.NoError(t, err)
	var mapping map[string]string
	require.NoError(t, json.NewDecoder(rc).Decode(&mapping))
	rc.Close()
	assert.Equal(t, map[string]string{"0": "lexiforge_run_es_1.mp3"}, mapping)

	// Extract the collection and check the notes
	dbPath := filepath.Join(dir, "collection.anki2")
	rc, err = files["collection.anki2"].Open()
	require.NoError(t, err)
	f, err := os.Create(dbPath)
	require.NoError(t, err)
	_, err = io.Copy(f, rc)
	require.NoError(t, err)
	f.Close()
	rc.Close()

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var notes, cards int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&notes))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&cards))
	assert.Equal(t, 2, notes)
	assert.Equal(t, 2, cards)

	var flds string
	require.NoError(t, db.QueryRow(`SELECT flds FROM notes WHERE sfld = 'run'`).Scan(&flds))
	assert.Equal(t, []string{"run", "correr", "I am running to the store.", "[sound:lexiforge_run_es_1.mp3]"},
		strings.Split(flds, FieldSeparator))

	// The exported file is itself a readable collection
	c, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer c.Close()
	decks, err := c.Decks(context.Background())
	require.NoError(t, err)
	assert.Len(t, decks, 2)
}
