package load

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/syssam/gqlcodegen/internal/fileutil"
)

// DefaultSnapshotPath is where discovered fragments are persisted.
const DefaultSnapshotPath = "./mercurius-schema.json"

// ReadSnapshot returns the fragments stored at path. It reports false when
// the file is missing or does not hold a non-empty array of strings.
func ReadSnapshot(path string) ([]string, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load: read snapshot: %w", err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, nil
	}
	sources, ok := ValidSources(raw)
	return sources, ok, nil
}

// ValidSources converts v to fragments when it is a non-empty list of
// strings.
func ValidSources(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, len(list) > 0
	case []any:
		if len(list) == 0 {
			return nil, false
		}
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// EncodeSnapshot renders fragments as an indented JSON array.
func EncodeSnapshot(sources []string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sources); err != nil {
		return nil, fmt.Errorf("load: encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSnapshot persists fragments at path, leaving an identical file
// untouched. It reports whether the file was written.
func WriteSnapshot(path string, sources []string) (bool, error) {
	data, err := EncodeSnapshot(sources)
	if err != nil {
		return false, err
	}
	_, changed, err := fileutil.WriteIfChanged(path, data)
	if err != nil {
		return false, fmt.Errorf("load: write snapshot: %w", err)
	}
	return changed, nil
}
