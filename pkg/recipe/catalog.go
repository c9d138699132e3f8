package recipe

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/matzehuels/recipeflow/pkg/errors"
)

// Catalog is an in-memory recipe database.
//
// The zero value is not usable - use [NewCatalog] or one of the loaders.
// A Catalog never changes after construction.
type Catalog struct {
	items map[string]Item

	hashOnce sync.Once
	hash     string
}

// NewCatalog builds a catalog from items. It returns an INVALID_INPUT error
// if an item has an empty ID or if two items share an ID.
//
// Ingredient references are not checked here: a dangling reference only
// fails when a flattening walk reaches it.
func NewCatalog(items ...Item) (*Catalog, error) {
	c := &Catalog{items: make(map[string]Item, len(items))}
	for _, it := range items {
		if it.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "item with empty ID (name %q)", it.Name)
		}
		if _, dup := c.items[it.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate item ID %q", it.ID)
		}
		it.Recipe.Ingredients = slices.Clone(it.Recipe.Ingredients)
		c.items[it.ID] = it
	}
	return c, nil
}

// Item returns the record for id, or an ITEM_NOT_FOUND error.
func (c *Catalog) Item(id string) (Item, error) {
	it, ok := c.items[id]
	if !ok {
		return Item{}, errors.New(errors.ErrCodeItemNotFound, "unknown item %q", id)
	}
	return it, nil
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.items[id]
	return ok
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// IDs returns all item IDs in ascending order.
func (c *Catalog) IDs() []string {
	return slices.Sorted(maps.Keys(c.items))
}

// Craftable returns the IDs of items that have at least one ingredient,
// in ascending order. These are the meaningful roots for a flow diagram.
func (c *Catalog) Craftable() []string {
	var ids []string
	for id, it := range c.items {
		if !it.Recipe.IsRaw() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Entry is an (ID, name) pair listed under a category.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category groups craftable items by their type tag for selection menus.
type Category struct {
	Name  string  `json:"name"`
	Items []Entry `json:"items"`
}

// Categories groups craftable items by type in a single pass over the
// catalog. Raw resources are skipped since there is nothing to draw for
// them. Categories are ordered by name, entries by name then ID.
func (c *Catalog) Categories() []Category {
	byType := make(map[string][]Entry)
	for id, it := range c.items {
		if it.Recipe.IsRaw() {
			continue
		}
		byType[it.Type] = append(byType[it.Type], Entry{ID: id, Name: it.DisplayName()})
	}

	out := make([]Category, 0, len(byType))
	for _, name := range slices.Sorted(maps.Keys(byType)) {
		entries := byType[name]
		slices.SortFunc(entries, func(a, b Entry) int {
			return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
		})
		out = append(out, Category{Name: name, Items: entries})
	}
	return out
}

// FindCycle returns one ingredient cycle as a path whose first and last
// elements are the same item, or nil if no item depends on itself.
// References to missing items are ignored.
func (c *Catalog) FindCycle() []string {
	const (
		unvisited = iota
		active
		finished
	)
	state := make(map[string]int, len(c.items))
	var path []string

	var visit func(id string) []string
	visit = func(id string) []string {
		switch state[id] {
		case active:
			start := slices.Index(path, id)
			return append(slices.Clone(path[start:]), id)
		case finished:
			return nil
		}
		it, ok := c.items[id]
		if !ok {
			return nil
		}
		state[id] = active
		path = append(path, id)
		for _, ing := range it.Recipe.Ingredients {
			if cycle := visit(ing.ID); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		state[id] = finished
		return nil
	}

	for _, id := range c.IDs() {
		if cycle := visit(id); cycle != nil {
			return cycle
		}
	}
	return nil
}

// Hash returns a SHA-256 fingerprint of the catalog contents. Two catalogs
// with the same items hash identically regardless of how they were loaded.
// Non-finite yields and amounts hash as "NaN", "+Inf" and "-Inf".
// The value is computed once.
func (c *Catalog) Hash() string {
	c.hashOnce.Do(func() {
		h := sha256.New()
		for _, id := range c.IDs() {
			writeItem(h, c.items[id])
		}
		c.hash = hex.EncodeToString(h.Sum(nil))
	})
	return c.hash
}

// writeItem writes one item in a canonical, unambiguous form: strings are
// quoted and every record ends with a newline.
func writeItem(w io.Writer, it Item) {
	fmt.Fprintf(w, "%q %q %q %s", it.ID, it.Name, it.Type, formatFloat(it.Recipe.Yield))
	for _, ing := range it.Recipe.Ingredients {
		fmt.Fprintf(w, " %q %s", ing.ID, formatFloat(ing.Amount))
	}
	io.WriteString(w, "\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Ensure Catalog implements Database.
var _ Database = (*Catalog)(nil)
