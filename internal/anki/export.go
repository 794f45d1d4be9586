package anki

import (
	"archive/zip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"codeberg.org/snonux/lexiforge/internal"
)

// ExportAPKG writes the deck as an .apkg package: a zip holding a fresh
// collection.anki2, the numbered media files and the media mapping
func (d *Deck) ExportAPKG(ctx context.Context, outputPath string) error {
	tempDir, err := os.MkdirTemp("", "lexiforge_export_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	media, err := copyMedia(d.cards, tempDir)
	if err != nil {
		return fmt.Errorf("failed to copy media files: %w", err)
	}

	if err := writeMediaMapping(media, tempDir); err != nil {
		return fmt.Errorf("failed to create media mapping: %w", err)
	}

	if err := d.writeDatabase(ctx, filepath.Join(tempDir, "collection.anki2"), media); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if err := zipDir(tempDir, outputPath); err != nil {
		return fmt.Errorf("failed to create zip package: %w", err)
	}
	return nil
}

func (d *Deck) writeDatabase(ctx context.Context, dbPath string, media map[string]int) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now()
	l := layout{deckID: now.UnixMilli(), deckName: d.Name, modelID: now.UnixMilli() + 1}

	if err := createTables(ctx, db); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if err := insertCollection(ctx, db, l, now); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	for i, card := range d.cards {
		noteID := now.UnixMilli() + int64(i*2)
		cardID := noteID + 1

		audio := ""
		if card.AudioFile != "" {
			if _, ok := media[filepath.Base(card.AudioFile)]; ok {
				audio = audioField(card.AudioFile)
			}
		}

		fields := strings.Join([]string{card.Word, card.Definition, card.Example, audio}, FieldSeparator)

		_, err := db.ExecContext(ctx, `INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			noteID,                             // id
			internal.GenerateCardID(card.Word), // guid
			l.modelID,                          // mid
			now.Unix(),                         // mod
			-1,                                 // usn
			"",                                 // tags
			fields,                             // flds
			card.Word,                          // sfld
			fieldChecksum(card.Word),           // csum
			0,                                  // flags
			"",                                 // data
		)
		if err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}

		_, err = db.ExecContext(ctx, `INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cardID, noteID, l.deckID, 0, now.Unix(), -1,
			0, 0, i+1, // type, queue, due position
			0, 0, 0, 0, 0, 0, 0, 0, "",
		)
		if err != nil {
			return fmt.Errorf("failed to insert card: %w", err)
		}
	}
	return nil
}

// copyMedia copies every existing audio file into dir under a numeric name
// and returns filename -> number
func copyMedia(cards []Card, dir string) (map[string]int, error) {
	media := make(map[string]int)
	for _, card := range cards {
		if card.AudioFile == "" || !fileExists(card.AudioFile) {
			continue
		}
		name := filepath.Base(card.AudioFile)
		if _, exists := media[name]; exists {
			continue
		}
		n := len(media)
		if err := copyFile(card.AudioFile, filepath.Join(dir, strconv.Itoa(n))); err != nil {
			return nil, fmt.Errorf("failed to copy audio file %s: %w", card.AudioFile, err)
		}
		media[name] = n
	}
	return media, nil
}

func writeMediaMapping(media map[string]int, dir string) error {
	mapping := make(map[string]string, len(media))
	for name, n := range media {
		mapping[strconv.Itoa(n)] = name
	}
	data, err := json.Marshal(mapping)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "media"), data, 0644)
}

func zipDir(dir, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := archive.Create(rel)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		archive.Close()
		return err
	}
	return archive.Close()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
