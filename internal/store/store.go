// Package store persists scraped records as append-only JSON array
// files, plus a CSV mirror for depth rows. Reads that fail to parse
// are treated as an empty dataset so an interrupted or corrupted file
// never blocks new data.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// AppendJSON writes existing ++ records back to filename,
// pretty-printed. Existing entries are kept verbatim (raw messages),
// so unknown fields and key order survive rewrites.
func AppendJSON[T any](recs []T, filename string) error {
	existing, err := readArray(filename)
	if err != nil {
		slog.Warn("existing dataset unreadable, starting fresh", "file", filename, "err", err)
		existing = nil
	}

	combined := existing
	for _, r := range recs {
		encoded, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		combined = append(combined, json.RawMessage(encoded))
	}

	err = WriteArray(combined, filename)
	if err != nil {
		return err
	}
	action := "saved"
	if len(existing) > 0 {
		action = "appended"
	}
	slog.Info(action+" records", "file", filename, "new", len(recs), "total", len(combined))
	return nil
}

// OverwriteJSON replaces the file with just the given records.
func OverwriteJSON[T any](recs []T, filename string) error {
	var out []json.RawMessage
	for _, r := range recs {
		encoded, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		out = append(out, json.RawMessage(encoded))
	}
	return WriteArray(out, filename)
}

func readArray(filename string) ([]json.RawMessage, error) {
	contents, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, nil
	}
	var out []json.RawMessage
	err = json.Unmarshal(contents, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadArray loads a dataset file as raw elements. A missing file is
// an empty dataset.
func ReadArray(filename string) ([]json.RawMessage, error) {
	return readArray(filename)
}

// WriteArray writes the elements as a two-space-indented JSON array.
// Non-ASCII text stays literal: encoding/json only escapes HTML
// metacharacters, which downstream readers tolerate.
func WriteArray(elements []json.RawMessage, filename string) error {
	if elements == nil {
		elements = []json.RawMessage{}
	}
	encoded, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(encoded, '\n'), 0o644)
}
