package motion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IndexItem is one clip entry in the viewer's index.
type IndexItem struct {
	File  string `json:"file"`
	Label string `json:"label"`
}

// Index is the document the viewer loads to list available clips.
type Index struct {
	Items []IndexItem `json:"items"`
}

// BuildIndex scans a clips directory for *.json files and returns the
// index, sorted by filename. The index file itself is excluded.
func BuildIndex(dir string) (Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Index{}, fmt.Errorf("reading clips dir: %w", err)
	}

	idx := Index{Items: []IndexItem{}}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == "index.json" {
			continue
		}
		idx.Items = append(idx.Items, IndexItem{
			File:  name,
			Label: strings.TrimSuffix(name, filepath.Ext(name)),
		})
	}
	sort.Slice(idx.Items, func(i, j int) bool { return idx.Items[i].File < idx.Items[j].File })
	return idx, nil
}

// WriteIndex builds the index and writes it as dir/index.json.
func WriteIndex(dir string) (Index, error) {
	idx, err := BuildIndex(dir)
	if err != nil {
		return Index{}, err
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return Index{}, fmt.Errorf("encoding index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.json"), append(data, '\n'), 0o644); err != nil {
		return Index{}, fmt.Errorf("writing index: %w", err)
	}
	return idx, nil
}
