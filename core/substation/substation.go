// Package substation loads the static substation coordinate lookup the
// map-oriented views are joined against.
package substation

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
)

// sentinel is the literal not-a-substation key present in the source table.
const sentinel = "NaN"

// coordSplit matches the separator between latitude and longitude, which the
// source data writes as a space with or without a leading comma.
var coordSplit = regexp.MustCompile(`,? `)

// Entry is one substation with its map coordinates.
type Entry struct {
	Name string
	Lat  float64
	Lon  float64
}

// Table is the loaded lookup. Entries iterate in sorted name order.
type Table struct {
	entries []Entry
	index   map[string]int
}

// LocationParseError reports a malformed coordinate string. The entry is
// dropped from map views; the rest of the run proceeds.
type LocationParseError struct {
	Name  string
	Value string
}

func (e *LocationParseError) Error() string {
	return fmt.Sprintf("substation: cannot parse coordinates %q for %q", e.Value, e.Name)
}

// Load reads the JSON lookup file (name -> "lat, lon") from disk. Entries
// that fail to parse are returned as LocationParseErrors alongside the table
// built from the remaining entries.
func Load(path string) (*Table, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read substations %s: %w", path, err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode substations %s: %w", path, err)
	}
	table, bad := Parse(raw)
	return table, bad, nil
}

// Parse builds the table from the raw name -> coordinate-string mapping,
// excluding the sentinel entry and collecting parse failures.
func Parse(raw map[string]string) (*Table, []error) {
	t := &Table{index: make(map[string]int)}
	var bad []error
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == sentinel {
			continue
		}
		value := raw[name]
		parts := coordSplit.Split(value, -1)
		if len(parts) < 2 {
			bad = append(bad, &LocationParseError{Name: name, Value: value})
			continue
		}
		lat, latErr := strconv.ParseFloat(parts[0], 64)
		lon, lonErr := strconv.ParseFloat(parts[1], 64)
		if latErr != nil || lonErr != nil {
			bad = append(bad, &LocationParseError{Name: name, Value: value})
			continue
		}
		t.index[name] = len(t.entries)
		t.entries = append(t.entries, Entry{Name: name, Lat: lat, Lon: lon})
	}
	return t, bad
}

// Lookup returns the entry for the substation name.
func (t *Table) Lookup(name string) (Entry, bool) {
	i, ok := t.index[name]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Entries returns all entries in sorted name order.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Len returns the number of substations with usable coordinates.
func (t *Table) Len() int {
	return len(t.entries)
}
