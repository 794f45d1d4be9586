package anki

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/snonux/lexiforge/internal/host"
)

// Note is a note loaded from a collection. Field changes stay in memory
// until Save.
type Note struct {
	c      *Collection
	id     int64
	names  []string
	values []string
}

var _ host.Note = (*Note)(nil)

// Note loads the note with the given id
func (c *Collection) Note(ctx context.Context, id int64) (*Note, error) {
	var mid int64
	var flds string
	err := c.db.QueryRowContext(ctx, `SELECT mid, flds FROM notes WHERE id = ?`, id).Scan(&mid, &flds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, ErrNoteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load note %d: %w", id, err)
	}

	types, err := c.noteTypes(ctx)
	if err != nil {
		return nil, err
	}
	nt, ok := types[mid]
	if !ok {
		return nil, fmt.Errorf("note %d uses unknown note type %d", id, mid)
	}

	n := &Note{c: c, id: id}
	values := strings.Split(flds, FieldSeparator)
	for i, f := range nt.Fields {
		n.names = append(n.names, f.Name)
		v := ""
		if i < len(values) {
			v = values[i]
		}
		n.values = append(n.values, v)
	}
	return n, nil
}

// AddNote inserts a note of the first note type into a deck with one new
// card and returns its id. Missing trailing values are left empty.
func (c *Collection) AddNote(ctx context.Context, deckID int64, values ...string) (int64, error) {
	types, err := c.noteTypes(ctx)
	if err != nil {
		return 0, err
	}

	var mid int64
	var nt noteType
	for id, t := range types {
		if mid == 0 || id < mid {
			mid, nt = id, t
		}
	}
	if mid == 0 {
		return 0, errors.New("collection has no note types")
	}

	fields := make([]string, len(nt.Fields))
	copy(fields, values)

	now := c.now()
	var noteID int64
	if err := c.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM notes`).Scan(&noteID); err != nil {
		return 0, err
	}
	if noteID < now.UnixMilli() {
		noteID = now.UnixMilli()
	} else {
		noteID++
	}

	_, err = c.db.ExecContext(ctx, `INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		noteID,
		fmt.Sprintf("lf_%d", noteID),
		mid,
		now.Unix(),
		-1,
		"",
		strings.Join(fields, FieldSeparator),
		host.CleanFieldText(fields[0]),
		fieldChecksum(fields[0]),
		0,
		"",
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert note: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		noteID,     // id
		noteID,     // nid
		deckID,     // did
		0,          // ord
		now.Unix(), // mod
		-1,         // usn
		0,          // type (0=new)
		0,          // queue (0=new)
		noteID,     // due
		0,          // ivl
		0,          // factor
		0,          // reps
		0,          // lapses
		0,          // left
		0,          // odue
		0,          // odid
		0,          // flags
		"",         // data
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card: %w", err)
	}
	return noteID, nil
}

// ID returns the note id
func (n *Note) ID() int64 {
	return n.id
}

// FieldNames returns the field names in note-type order
func (n *Note) FieldNames() []string {
	return append([]string(nil), n.names...)
}

// Field returns the value of a field
func (n *Note) Field(name string) (string, bool) {
	for i, fn := range n.names {
		if fn == name {
			return n.values[i], true
		}
	}
	return "", false
}

// SetField changes a field in memory
func (n *Note) SetField(name, value string) error {
	for i, fn := range n.names {
		if fn == name {
			n.values[i] = value
			return nil
		}
	}
	return fmt.Errorf("note %d has no field %q", n.id, name)
}

// Save writes the fields back and marks the note modified
func (n *Note) Save(ctx context.Context) error {
	first := ""
	if len(n.values) > 0 {
		first = n.values[0]
	}

	_, err := n.c.db.ExecContext(ctx,
		`UPDATE notes SET flds = ?, sfld = ?, csum = ?, mod = ?, usn = -1 WHERE id = ?`,
		strings.Join(n.values, FieldSeparator),
		host.CleanFieldText(first),
		fieldChecksum(first),
		n.c.now().Unix(),
		n.id,
	)
	if err != nil {
		return fmt.Errorf("failed to save note %d: %w", n.id, err)
	}
	return nil
}

// fieldChecksum is the first 32 bits of the SHA1 of the stripped field,
// the duplicate check Anki keeps in notes.csum
func fieldChecksum(s string) int64 {
	sum := sha1.Sum([]byte(host.CleanFieldText(s)))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}
