// Package translation reads human readable tag translations from the
// EhTagTranslation database dump.
package translation

import (
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
)

// DefaultPlaceholder is shown for tags without a translation.
const DefaultPlaceholder = "<无>"

type Entry struct {
	Tagname string
	Text    string
}

type database struct {
	Data []struct {
		Namespace string `json:"namespace"`
		Data      map[string]struct {
			Name struct {
				Text string `json:"text"`
			} `json:"name"`
		} `json:"data"`
	} `json:"data"`
}

// Parse decodes a db.full.json dump into one entry per namespace:tag pair,
// ordered by tag name.
func Parse(r io.Reader) ([]Entry, error) {
	var db database
	if err := json.NewDecoder(r).Decode(&db); err != nil {
		return nil, fmt.Errorf("decoding translation database: %w", err)
	}

	var entries []Entry
	for _, ns := range db.Data {
		if ns.Namespace == "" {
			return nil, fmt.Errorf("translation database: entry without namespace")
		}
		for tag, info := range ns.Data {
			entries = append(entries, Entry{
				Tagname: ns.Namespace + ":" + tag,
				Text:    info.Name.Text,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Tagname < entries[j].Tagname
	})

	return entries, nil
}

// Map converts entries to a tag name keyed map. Later entries win.
func Map(entries []Entry) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Tagname] = e.Text
	}
	return m
}

// Table looks up translations by exact tag name.
type Table struct {
	translations map[string]string
	placeholder  string
}

func NewTable(translations map[string]string, placeholder string) Table {
	return Table{translations: translations, placeholder: placeholder}
}

// Lookup returns the translation of tagname, or the placeholder.
func (t Table) Lookup(tagname string) string {
	if text, ok := t.translations[tagname]; ok {
		return text
	}
	return t.placeholder
}
