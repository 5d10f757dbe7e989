package tags

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ConfigurationError reports a malformed canonicalization mapping.
type ConfigurationError struct {
	Raw    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("canonicalization mapping: %s", e.Reason)
	}
	return fmt.Sprintf("canonicalization mapping: %q: %s", e.Raw, e.Reason)
}

// Mapping renames raw tag names to their canonical names. The zero value is an
// empty mapping that keeps every name unchanged.
type Mapping struct {
	targets map[string]string
}

// NewMapping merges the general mapping with the manual fixes and validates
// the result. Fixes apply after the general mapping: a general entry whose
// target is a fixed raw name is redirected to the fix's target, and a fix
// replaces a general entry with the same raw name.
//
// Every target must be a fixed point of the merged mapping: a chain such as
// a -> b, b -> c has to be collapsed to a -> c by whoever maintains the
// mapping, since normalization applies it exactly once.
func NewMapping(general, fixes map[string]string) (Mapping, error) {
	general, err := checkEntries(general)
	if err != nil {
		return Mapping{}, err
	}
	fixes, err = checkEntries(fixes)
	if err != nil {
		return Mapping{}, err
	}
	if err := checkChains(general); err != nil {
		return Mapping{}, err
	}

	merged := make(map[string]string, len(general)+len(fixes))
	for raw, canonical := range general {
		if fixed, ok := fixes[canonical]; ok {
			canonical = fixed
		}
		if raw != canonical {
			merged[raw] = canonical
		}
	}
	for raw, canonical := range fixes {
		merged[raw] = canonical
	}

	if err := checkChains(merged); err != nil {
		return Mapping{}, err
	}
	return Mapping{targets: merged}, nil
}

// checkEntries rejects empty names and drops self entries.
func checkEntries(entries map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for _, raw := range sortedKeys(entries) {
		canonical := entries[raw]
		if strings.TrimSpace(raw) == "" {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("empty raw name for target %q", canonical)}
		}
		if strings.TrimSpace(canonical) == "" {
			return nil, &ConfigurationError{Raw: raw, Reason: "empty canonical name"}
		}
		if raw != canonical {
			out[raw] = canonical
		}
	}
	return out, nil
}

func checkChains(targets map[string]string) error {
	for _, raw := range sortedKeys(targets) {
		canonical := targets[raw]
		next, chained := targets[canonical]
		if !chained {
			continue
		}
		if next == raw {
			return &ConfigurationError{Raw: raw, Reason: fmt.Sprintf("cycle through %q", canonical)}
		}
		return &ConfigurationError{
			Raw:    raw,
			Reason: fmt.Sprintf("target %q is itself mapped to %q; collapse the chain", canonical, next),
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply returns the canonical name for name.
func (m Mapping) Apply(name string) string {
	if canonical, ok := m.targets[name]; ok {
		return canonical
	}
	return name
}

// Len is the number of renaming entries.
func (m Mapping) Len() int {
	return len(m.targets)
}

// LoadMapping reads a two-column CSV of raw_name,canonical_name rows and
// merges fixes into it. A leading header row is skipped.
func LoadMapping(r io.Reader, fixes map[string]string) (Mapping, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	general := make(map[string]string)
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Mapping{}, &ConfigurationError{Reason: fmt.Sprintf("reading mapping: %v", err)}
		}
		line++
		if len(record) != 2 {
			return Mapping{}, &ConfigurationError{
				Reason: fmt.Sprintf("line %d: expected 2 columns, got %d", line, len(record)),
			}
		}
		raw := strings.TrimSpace(record[0])
		canonical := strings.TrimSpace(record[1])
		if line == 1 && raw == "raw_name" && canonical == "canonical_name" {
			continue
		}
		if existing, ok := general[raw]; ok && existing != canonical {
			return Mapping{}, &ConfigurationError{
				Raw:    raw,
				Reason: fmt.Sprintf("line %d: mapped to both %q and %q", line, existing, canonical),
			}
		}
		general[raw] = canonical
	}

	return NewMapping(general, fixes)
}

// ParseFixes turns "raw=canonical" strings into a mapping.
func ParseFixes(entries []string) (map[string]string, error) {
	fixes := make(map[string]string, len(entries))
	for _, entry := range entries {
		raw, canonical, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("manual fix %q: expected raw=canonical", entry)}
		}
		fixes[strings.TrimSpace(raw)] = strings.TrimSpace(canonical)
	}
	return fixes, nil
}
