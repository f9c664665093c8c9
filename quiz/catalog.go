/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed brands.yaml
var defaultCatalog []byte

var ErrMalformedBrand = errors.New("malformed brand")

// CatalogError describes the catalog entry that failed validation.
type CatalogError struct {
	Index int
	ID    string
	Field string
	Err   error
}

func (e *CatalogError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("catalog entry %d (%q): %s: %v", e.Index, e.ID, e.Field, e.Err)
	}
	return fmt.Sprintf("catalog entry %d: %s: %v", e.Index, e.Field, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Brand is a catalog entry. Secondary and TextColor are nil when absent.
type Brand struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Primary   Color   `json:"primary"`
	Secondary *Color  `json:"secondary,omitempty"`
	Extra     []Color `json:"extra,omitempty"`
	TextColor *Color  `json:"text_color,omitempty"`
	Trivia    string  `json:"trivia,omitempty"`
}

// Palette returns the primary color followed by the secondary and extra
// colors, in catalog order.
func (b Brand) Palette() []Color {
	colors := make([]Color, 0, 2+len(b.Extra))
	colors = append(colors, b.Primary)
	if b.Secondary != nil {
		colors = append(colors, *b.Secondary)
	}
	return append(colors, b.Extra...)
}

func (b Brand) MultiColor() bool {
	return b.Secondary != nil || len(b.Extra) > 0
}

func (b Brand) clone() Brand {
	out := b
	if b.Secondary != nil {
		c := *b.Secondary
		out.Secondary = &c
	}
	if b.TextColor != nil {
		c := *b.TextColor
		out.TextColor = &c
	}
	if b.Extra != nil {
		out.Extra = append([]Color(nil), b.Extra...)
	}
	return out
}

// Catalog is the read-only brand list. Every accessor hands out copies.
type Catalog struct {
	brands []Brand
	index  map[string]int
}

// NewCatalog validates brands and copies them into a new catalog.
func NewCatalog(brands []Brand) (*Catalog, error) {
	c := &Catalog{
		brands: make([]Brand, 0, len(brands)),
		index:  make(map[string]int, len(brands)),
	}

	for i, b := range brands {
		switch {
		case b.ID == "":
			return nil, &CatalogError{Index: i, Field: "id", Err: fmt.Errorf("%w: missing id", ErrMalformedBrand)}
		case b.Name == "":
			return nil, &CatalogError{Index: i, ID: b.ID, Field: "name", Err: fmt.Errorf("%w: missing name", ErrMalformedBrand)}
		}

		if prev, ok := c.index[b.ID]; ok {
			return nil, &CatalogError{Index: i, ID: b.ID, Field: "id", Err: fmt.Errorf("%w: duplicate of entry %d", ErrMalformedBrand, prev)}
		}

		c.index[b.ID] = len(c.brands)
		c.brands = append(c.brands, b.clone())
	}

	return c, nil
}

type catalogEntry struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Color     string   `yaml:"color"`
	Secondary string   `yaml:"secondary"`
	Extra     []string `yaml:"extra"`
	TextColor string   `yaml:"text_color"`
	Trivia    string   `yaml:"trivia"`
}

func (e catalogEntry) brand(i int) (Brand, error) {
	fail := func(field string, err error) (Brand, error) {
		return Brand{}, &CatalogError{Index: i, ID: e.ID, Field: field, Err: fmt.Errorf("%w: %w", ErrMalformedBrand, err)}
	}

	if e.Color == "" {
		return fail("color", errors.New("missing required hex color"))
	}

	primary, err := ParseHex(e.Color)
	if err != nil {
		return fail("color", err)
	}

	b := Brand{
		ID:      e.ID,
		Name:    e.Name,
		Primary: primary,
		Trivia:  e.Trivia,
	}

	if e.Secondary != "" {
		c, err := ParseHex(e.Secondary)
		if err != nil {
			return fail("secondary", err)
		}
		b.Secondary = &c
	}

	for j, hex := range e.Extra {
		c, err := ParseHex(hex)
		if err != nil {
			return fail(fmt.Sprintf("extra[%d]", j), err)
		}
		b.Extra = append(b.Extra, c)
	}

	if e.TextColor != "" {
		c, err := ParseHex(e.TextColor)
		if err != nil {
			return fail("text_color", err)
		}
		b.TextColor = &c
	}

	return b, nil
}

// LoadCatalog parses a YAML list of brands. Any malformed entry fails the
// whole load.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var entries []catalogEntry

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	brands := make([]Brand, 0, len(entries))
	for i, e := range entries {
		b, err := e.brand(i)
		if err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}

	return NewCatalog(brands)
}

// DefaultCatalog returns the built-in brand list.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalog))
}

func (c *Catalog) Len() int {
	return len(c.brands)
}

// Brands returns a copy of every brand, in catalog order.
func (c *Catalog) Brands() []Brand {
	out := make([]Brand, len(c.brands))
	for i, b := range c.brands {
		out[i] = b.clone()
	}
	return out
}

func (c *Catalog) Lookup(id string) (Brand, bool) {
	i, ok := c.index[id]
	if !ok {
		return Brand{}, false
	}
	return c.brands[i].clone(), true
}

// Filter returns copies of the brands for which keep returns true.
func (c *Catalog) Filter(keep func(Brand) bool) []Brand {
	var out []Brand
	for _, b := range c.brands {
		if keep(b) {
			out = append(out, b.clone())
		}
	}
	return out
}
