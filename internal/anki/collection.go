package anki

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/lexiforge/internal/host"
	"codeberg.org/snonux/lexiforge/internal/logging"
)

// ErrNoteNotFound is returned when a note id does not exist
var ErrNoteNotFound = errors.New("note not found")

// Collection is an open Anki collection file
type Collection struct {
	db       *sql.DB
	path     string
	mediaDir string
	now      func() time.Time
}

var (
	_ host.MediaStore        = (*Collection)(nil)
	_ host.StudiedWordSource = (*Collection)(nil)
	_ host.DeckLister        = (*Collection)(nil)
)

// noteType is the part of a col.models entry we need
type noteType struct {
	Name   string `json:"name"`
	Fields []struct {
		Name string `json:"name"`
		Ord  int    `json:"ord"`
	} `json:"flds"`
}

// Open opens an existing collection. Media files are written next to it in
// <name>.media, the way Anki lays out collection.anki2 and collection.media.
func Open(ctx context.Context, path string) (*Collection, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("collection not found: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}

	var ver int
	if err := db.QueryRowContext(ctx, `SELECT ver FROM col LIMIT 1`).Scan(&ver); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s is not an Anki collection: %w", path, err)
	}

	logging.NewLogger(ctx).WithField("path", path).Debugf("opened collection (schema %d)", ver)

	return &Collection{
		db:       db,
		path:     path,
		mediaDir: strings.TrimSuffix(path, filepath.Ext(path)) + ".media",
		now:      time.Now,
	}, nil
}

// Create makes a new empty collection holding one deck and the LexiForge
// note type (Word, Definition, Example, Audio)
func Create(ctx context.Context, path, deckName string) (*Collection, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("collection %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	now := time.Now()
	l := layout{deckID: now.UnixMilli(), deckName: deckName, modelID: now.UnixMilli() + 1}
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if err := insertCollection(ctx, db, l, now); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert collection: %w", err)
	}
	db.Close()

	return Open(ctx, path)
}

// Close releases the database handle
func (c *Collection) Close() error {
	return c.db.Close()
}

// Path returns the collection file
func (c *Collection) Path() string {
	return c.path
}

// MediaDir returns the media directory of the collection
func (c *Collection) MediaDir() string {
	return c.mediaDir
}

// WriteMedia stores data in the collection's media directory
func (c *Collection) WriteMedia(name string, data []byte) (string, error) {
	return host.DirMedia{Dir: c.mediaDir}.WriteMedia(name, data)
}

func (c *Collection) noteTypes(ctx context.Context) (map[int64]noteType, error) {
	var raw string
	if err := c.db.QueryRowContext(ctx, `SELECT models FROM col LIMIT 1`).Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to read note types: %w", err)
	}

	var byKey map[string]noteType
	if err := json.Unmarshal([]byte(raw), &byKey); err != nil {
		return nil, fmt.Errorf("failed to decode note types: %w", err)
	}

	types := make(map[int64]noteType, len(byKey))
	for key, nt := range byKey {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		sort.Slice(nt.Fields, func(i, j int) bool { return nt.Fields[i].Ord < nt.Fields[j].Ord })
		types[id] = nt
	}
	return types, nil
}

// FieldNames returns every field name of every note type, sorted. The
// settings command offers them for the field mapping.
func (c *Collection) FieldNames(ctx context.Context) ([]string, error) {
	types, err := c.noteTypes(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, nt := range types {
		for _, f := range nt.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				names = append(names, f.Name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Decks lists the decks sorted by name
func (c *Collection) Decks(ctx context.Context) ([]host.Deck, error) {
	var raw string
	if err := c.db.QueryRowContext(ctx, `SELECT decks FROM col LIMIT 1`).Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to read decks: %w", err)
	}

	var byKey map[string]struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &byKey); err != nil {
		return nil, fmt.Errorf("failed to decode decks: %w", err)
	}

	decks := make([]host.Deck, 0, len(byKey))
	for _, d := range byKey {
		decks = append(decks, host.Deck{ID: d.ID, Name: d.Name})
	}
	sort.Slice(decks, func(i, j int) bool { return decks[i].Name < decks[j].Name })
	return decks, nil
}

// StudiedWords returns the first field of every note whose card was
// reviewed today and has an interval of at least one day. A nil deckID
// searches all decks.
func (c *Collection) StudiedWords(ctx context.Context, deckID *int64) ([]string, error) {
	now := c.now().Unix()
	todayStart := (now - now%86400) * 1000

	query := `SELECT n.flds
		FROM cards c
		JOIN notes n ON n.id = c.nid
		WHERE c.id IN (SELECT DISTINCT r.cid FROM revlog r WHERE r.id >= ?)
		AND c.ivl >= 1`
	args := []interface{}{todayStart}
	if deckID != nil {
		query += ` AND c.did = ?`
		args = append(args, *deckID)
	}
	query += ` ORDER BY c.id`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query studied cards: %w", err)
	}
	defer rows.Close()

	var first []string
	for rows.Next() {
		var flds string
		if err := rows.Scan(&flds); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		first = append(first, strings.SplitN(flds, FieldSeparator, 2)[0])
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return host.UniqueWords(first), nil
}

// DeckOf returns the deck holding the first card of a note
func (c *Collection) DeckOf(ctx context.Context, noteID int64) (host.Deck, error) {
	var did int64
	err := c.db.QueryRowContext(ctx, `SELECT did FROM cards WHERE nid = ? ORDER BY ord LIMIT 1`, noteID).Scan(&did)
	if errors.Is(err, sql.ErrNoRows) {
		return host.Deck{}, fmt.Errorf("note %d has no cards: %w", noteID, ErrNoteNotFound)
	}
	if err != nil {
		return host.Deck{}, fmt.Errorf("failed to find deck of note %d: %w", noteID, err)
	}

	decks, err := c.Decks(ctx)
	if err != nil {
		return host.Deck{}, err
	}
	for _, d := range decks {
		if d.ID == did {
			return d, nil
		}
	}
	return host.Deck{ID: did}, nil
}

// DeckWordCount pairs a deck with the number of words studied in it today
type DeckWordCount struct {
	Deck  host.Deck
	Words int
}

// StudiedWordCounts returns today's studied word count per deck
func (c *Collection) StudiedWordCounts(ctx context.Context) ([]DeckWordCount, error) {
	decks, err := c.Decks(ctx)
	if err != nil {
		return nil, err
	}

	counts := make([]DeckWordCount, 0, len(decks))
	for _, d := range decks {
		id := d.ID
		words, err := c.StudiedWords(ctx, &id)
		if err != nil {
			return nil, err
		}
		counts = append(counts, DeckWordCount{Deck: d, Words: len(words)})
	}
	return counts, nil
}
