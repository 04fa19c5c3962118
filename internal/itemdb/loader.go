package itemdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

const (
	generatedDir      = "generated"
	generatedStatsDir = "generated_stats"
)

// Load scans root for one subdirectory per DraftSet (named by set name),
// each containing generated/ (item template HTML, one file per item,
// named by an arbitrary on-disk id) and generated_stats/ (same-named stats
// HTML), per spec.md §6. It assigns each item a fresh opaque 64-bit id
// (distinct from the on-disk filename) and builds the deduplicated-name
// index from the token before the first '@' of the rendered plain text,
// trimmed.
func Load(root string) (*Database, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("itemdb: read database root %q: %w", root, err)
	}

	db := &Database{Sets: make(map[string]DraftSet)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		set, err := loadDraftSet(root, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("itemdb: load set %q: %w", entry.Name(), err)
		}
		db.Sets[entry.Name()] = *set
	}
	return db, nil
}

func loadDraftSet(root, name string) (*DraftSet, error) {
	setDir := filepath.Join(root, name)
	templateDir := filepath.Join(setDir, generatedDir)
	statsDir := filepath.Join(setDir, generatedStatsDir)

	files, err := os.ReadDir(templateDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", templateDir, err)
	}

	set := &DraftSet{
		Name:   name,
		Items:  make(map[uint64]Item),
		ByName: make(map[string][]uint64),
	}

	var nextID uint64 = 1 // deterministic within a load; uniqueness is all that matters here
	for _, f := range files {
		if f.IsDir() {
			continue
		}

		templateBytes, err := os.ReadFile(filepath.Join(templateDir, f.Name()))
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", f.Name(), err)
		}

		var statsBytes []byte
		if statsPath := filepath.Join(statsDir, f.Name()); fileExists(statsPath) {
			statsBytes, err = os.ReadFile(statsPath)
			if err != nil {
				return nil, fmt.Errorf("read stats %s: %w", f.Name(), err)
			}
		}

		text, err := plainText(templateBytes)
		if err != nil {
			return nil, fmt.Errorf("render plain text for %s: %w", f.Name(), err)
		}

		id := nextID
		nextID++

		set.Items[id] = Item{
			ID:       id,
			Template: string(templateBytes),
			Text:     text,
			Stats:    string(statsBytes),
		}

		key := dedupKey(text)
		set.ByName[key] = append(set.ByName[key], id)
	}

	return set, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// dedupKey returns the token before the first '@' of text, trimmed, per
// spec.md §6.
func dedupKey(text string) string {
	if idx := strings.IndexByte(text, '@'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// plainText strips HTML tags from an item template, returning its
// rendered text content.
func plainText(htmlBytes []byte) (string, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(string(htmlBytes)))
	var sb strings.Builder
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String()), nil
		case html.TextToken:
			sb.Write(tokenizer.Text())
		}
	}
}
