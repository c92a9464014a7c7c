// Package directory maps display names to ticker codes. A Directory is loaded once
// and never mutated, so it is safe to share between sessions without locking.
package directory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// ErrNotFound is returned when a display name resolves to nothing.
var ErrNotFound = errors.New("symbol not found")

var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9.\-=^]{0,14}$`)

// Entry is one row of the symbol table.
type Entry struct {
	Name   string
	Ticker string
}

// Directory resolves display names to tickers.
type Directory struct {
	byKey   map[string]string
	entries []Entry
}

// Load reads a CSV with a "name,ticker" header. A missing file yields an empty
// directory, which still resolves plain tickers.
func Load(path string) (*Directory, error) {
	if path == "" {
		return New(nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("open symbol table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the symbol table from r.
func Parse(r io.Reader) (*Directory, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return New(nil), nil
		}
		return nil, fmt.Errorf("read symbol table header: %w", err)
	}
	nameIdx, tickerIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "display", "company":
			nameIdx = i
		case "ticker", "symbol", "code":
			tickerIdx = i
		}
	}
	if nameIdx < 0 || tickerIdx < 0 {
		return nil, fmt.Errorf("symbol table header %v needs name and ticker columns", header)
	}

	var entries []Entry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read symbol table: %w", err)
		}
		if nameIdx >= len(rec) || tickerIdx >= len(rec) {
			continue
		}
		e := Entry{Name: strings.TrimSpace(rec[nameIdx]), Ticker: strings.TrimSpace(rec[tickerIdx])}
		if e.Name == "" || e.Ticker == "" {
			continue
		}
		entries = append(entries, e)
	}
	return New(entries), nil
}

// New builds a directory from entries. Both the name and the ticker resolve.
func New(entries []Entry) *Directory {
	d := &Directory{byKey: make(map[string]string, len(entries)*2)}
	for _, e := range entries {
		d.byKey[key(e.Name)] = e.Ticker
		d.byKey[key(e.Ticker)] = e.Ticker
		d.entries = append(d.entries, e)
	}
	sort.Slice(d.entries, func(i, j int) bool { return d.entries[i].Name < d.entries[j].Name })
	return d
}

// Resolve returns the ticker code for a display name. An unknown string shaped
// like a ticker resolves to itself, upper-cased.
func (d *Directory) Resolve(display string) (string, error) {
	display = strings.TrimSpace(display)
	if display == "" {
		return "", fmt.Errorf("%w: empty symbol", ErrNotFound)
	}
	if t, ok := d.byKey[key(display)]; ok {
		return t, nil
	}
	if tickerPattern.MatchString(display) {
		return strings.ToUpper(display), nil
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, display)
}

// Entries returns the table sorted by name.
func (d *Directory) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

func key(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
