// Package catalogfile reads raw hotel rows from catalog files on disk.
// Supported formats are JSON, YAML and XLSX, picked by file extension.
package catalogfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Reader loads every row of one catalog file each time ReadRows is called.
type Reader struct {
	path string
}

func New(path string) *Reader { return &Reader{path: path} }

func (r *Reader) Path() string { return r.path }

func (r *Reader) ReadRows(ctx context.Context) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".json":
		return readJSON(r.path)
	case ".yaml", ".yml":
		return readYAML(r.path)
	case ".xlsx":
		return readXLSX(r.path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, r.path)
	}
}

// rowsOf accepts either a bare list of rows or an object holding the list
// under "hotels".
func rowsOf(doc any) ([]map[string]any, error) {
	if obj, ok := doc.(map[string]any); ok {
		doc = obj["hotels"]
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, errors.New(`expected a list of hotels or {"hotels": [...]}`)
	}
	out := make([]map[string]any, 0, len(list))
	for i, it := range list {
		row, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hotel %d is not an object", i)
		}
		out = append(out, row)
	}
	return out, nil
}

func readJSON(path string) ([]map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	rows, err := rowsOf(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func readYAML(path string) ([]map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	rows, err := rowsOf(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// readXLSX reads the first sheet; its first row is the header.
func readXLSX(path string) ([]map[string]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	out := make([]map[string]any, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(map[string]any, len(header))
		for i, v := range cells {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if v = strings.TrimSpace(v); v != "" {
				row[header[i]] = v
			}
		}
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return out, nil
}

// LoadPlaceCodes reads a YAML mapping of place name to romanized code, used
// to extend the built-in table.
func LoadPlaceCodes(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	codes := map[string]string{}
	if err := yaml.Unmarshal(b, &codes); err != nil {
		return nil, fmt.Errorf("parse place codes %s: %w", path, err)
	}
	return codes, nil
}
