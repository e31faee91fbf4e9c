// Package snapshot reads and writes saved sessions: a JSON header line and a
// JSON document, zstd-compressed and checked against an embedded schema.
package snapshot

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

// Version is the document version written by this package.
const Version = 1

var ErrInvalid = errors.New("snapshot: document does not match schema")

//go:embed snapshot.schema.json
var schemaText string

var schema = jsonschema.MustCompileString("snapshot.schema.json", schemaText)

// Header is the first line of a snapshot, readable without decoding the
// whole document.
type Header struct {
	Version   int       `json:"version"`
	SessionID string    `json:"session_id,omitempty"`
	Dimension int       `json:"dimension"`
	SavedAt   time.Time `json:"saved_at"`
}

// Document is a saved session.
type Document struct {
	Version   int                  `json:"version"`
	SessionID string               `json:"session_id,omitempty"`
	Dimension int                  `json:"dimension"`
	SavedAt   time.Time            `json:"saved_at"`
	Phase     string               `json:"phase,omitempty"`
	Cubies    []lattice.Info       `json:"cubies"`
	History   []history.MoveRecord `json:"history"`
	Plan      history.Plan         `json:"plan"`
}

// Header returns the header line of d.
func (d *Document) Header() Header {
	return Header{
		Version:   d.Version,
		SessionID: d.SessionID,
		Dimension: d.Dimension,
		SavedAt:   d.SavedAt,
	}
}

// Lattice rebuilds the lattice saved in d.
func (d *Document) Lattice() (*lattice.Lattice, error) {
	return lattice.Restore(d.Dimension, d.Cubies)
}

// Validate checks raw JSON against the snapshot schema.
func Validate(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("snapshot: json decode: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Encode writes d to w.
func Encode(w io.Writer, d Document) error {
	if d.Version == 0 {
		d.Version = Version
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(d.Header())
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&d); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Decode reads a document from r, validating it against the schema.
func Decode(r io.Reader) (Document, error) {
	var d Document

	dec, err := zstd.NewReader(r)
	if err != nil {
		return d, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// The header repeats fields of the body.
	if _, err := br.ReadBytes('\n'); err != nil {
		return d, fmt.Errorf("read header: %w", err)
	}

	raw, err := io.ReadAll(br)
	if err != nil {
		return d, err
	}
	if err := Validate(raw); err != nil {
		return d, err
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("json decode: %w", err)
	}
	return d, nil
}

// ReadHeader reads only the header line of the snapshot at path.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(bytes.TrimSpace(line), &h); err != nil {
		return h, fmt.Errorf("json decode: %w", err)
	}
	return h, nil
}

// Write saves d to path, creating parent directories.
func Write(path string, d Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read loads the snapshot at path.
func Read(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	return Decode(f)
}
