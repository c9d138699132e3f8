package recipe

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/recipeflow/pkg/errors"
)

// itemRecord is the on-disk shape of an item, shared by all formats.
type itemRecord struct {
	ID     string       `json:"id,omitempty" toml:"id" yaml:"id"`
	Name   string       `json:"name" toml:"name" yaml:"name"`
	Type   string       `json:"type" toml:"type" yaml:"type"`
	Recipe recipeRecord `json:"recipe" toml:"recipe" yaml:"recipe"`
}

type recipeRecord struct {
	// Yield is a pointer so an absent value can default to 1 while an
	// explicit 0 is preserved.
	Yield       *float64     `json:"yield,omitempty" toml:"yield" yaml:"yield"`
	Ingredients []Ingredient `json:"ingredients" toml:"ingredients" yaml:"ingredients"`
}

// listFile is the TOML and YAML top-level layout.
type listFile struct {
	Items []itemRecord `toml:"items" yaml:"items"`
}

func (r itemRecord) toItem() Item {
	yield := DefaultYield
	if r.Recipe.Yield != nil {
		yield = *r.Recipe.Yield
	}
	return Item{
		ID:   r.ID,
		Name: r.Name,
		Type: r.Type,
		Recipe: Recipe{
			Ingredients: r.Recipe.Ingredients,
			Yield:       yield,
		},
	}
}

func fromItem(it Item) itemRecord {
	yield := it.Recipe.Yield
	ingredients := it.Recipe.Ingredients
	if ingredients == nil {
		ingredients = []Ingredient{}
	}
	return itemRecord{
		ID:     it.ID,
		Name:   it.Name,
		Type:   it.Type,
		Recipe: recipeRecord{Yield: &yield, Ingredients: ingredients},
	}
}

// ReadJSON decodes a recipe database from r.
//
// The input is an object keyed by item ID:
//
//	{
//	  "iron-ore":   {"name": "Iron ore", "type": "Solid", "recipe": {"ingredients": []}},
//	  "iron-plate": {"id": "iron-plate", "name": "Iron plate", "type": "Intermediate product",
//	                 "recipe": {"yield": 1, "ingredients": [{"id": "iron-ore", "amount": 1}]}}
//	}
//
// A record without an "id" takes its key. A record whose "id" differs from
// its key is rejected with INVALID_FORMAT.
func ReadJSON(r io.Reader) (*Catalog, error) {
	var data map[string]itemRecord
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON recipes")
	}

	items := make([]Item, 0, len(data))
	for key, rec := range data {
		if rec.ID == "" {
			rec.ID = key
		}
		if rec.ID != key {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "item key %q does not match its id %q", key, rec.ID)
		}
		items = append(items, rec.toItem())
	}
	return NewCatalog(items...)
}

// ReadTOML decodes a recipe database written as an [[items]] array.
func ReadTOML(r io.Reader) (*Catalog, error) {
	var data listFile
	if _, err := toml.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode TOML recipes")
	}
	return fromList(data)
}

// ReadYAML decodes a recipe database written as an items: list.
func ReadYAML(r io.Reader) (*Catalog, error) {
	var data listFile
	if err := yaml.NewDecoder(r).Decode(&data); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode YAML recipes")
	}
	return fromList(data)
}

func fromList(data listFile) (*Catalog, error) {
	items := make([]Item, len(data.Items))
	for i, rec := range data.Items {
		items[i] = rec.toItem()
	}
	return NewCatalog(items...)
}

// LoadFile opens path and decodes it with the reader matching its
// extension (.json, .toml, .yaml, .yml).
func LoadFile(path string) (*Catalog, error) {
	if err := errors.ValidateDatabasePath(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "recipe database %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var cat *Catalog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		cat, err = ReadJSON(f)
	case ".toml":
		cat, err = ReadTOML(f)
	default:
		cat, err = ReadYAML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cat, nil
}

// WriteJSON encodes the catalog in the layout [ReadJSON] accepts.
// Keys are sorted, so the output is deterministic.
func WriteJSON(c *Catalog, w io.Writer) error {
	out := make(map[string]itemRecord, len(c.items))
	for id, it := range c.items {
		out[id] = fromItem(it)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
