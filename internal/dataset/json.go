package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// DecodeJSONArray decodes a JSON array element by element.
// Expects input in the form [{...},{...}]; an empty input yields no elements.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) ([]T, error) {
	decoder := json.NewDecoder(r)

	tok, err := decoder.Token()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "json: read opening token")
	}

	delim, ok := tok.(json.Delim)
	if !ok || delim != '[' {
		return nil, eris.Errorf("json: expected '[', got %v", tok)
	}

	out := []T{}
	for decoder.More() {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "json: context cancelled")
		}

		var item T
		if err := decoder.Decode(&item); err != nil {
			return nil, eris.Wrap(err, "json: decode element")
		}
		out = append(out, item)
	}

	if _, err := decoder.Token(); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "json: read closing token")
	}
	return out, nil
}

// DecodeJSONDocument decodes one JSON document from r. A literal null
// yields the zero value; anything after the document is an error.
func DecodeJSONDocument[T any](r io.Reader) (T, error) {
	var doc T
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return doc, eris.Wrap(err, "json: decode document")
	}
	if _, err := decoder.Token(); err != io.EOF {
		return doc, eris.New("json: unexpected data after document")
	}
	return doc, nil
}

// MarshalJSON renders v the way every file in the layout is written:
// two-space indentation, no HTML escaping, trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, eris.Wrap(err, "json: encode")
	}
	return buf.Bytes(), nil
}

// WriteJSON writes v to path, creating parent directories. The file is
// written to a sibling temp file first and renamed into place so readers
// never observe a partial document.
func WriteJSON(path string, v any) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return eris.Wrapf(err, "json: marshal %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "json: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrapf(err, "json: create temp for %s", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "json: write %s", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "json: close %s", path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "json: chmod %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "json: rename into %s", path)
	}
	return nil
}
