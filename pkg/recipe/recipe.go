package recipe

// TypeLiquid is the item type tag of fluids. Flow rates of liquid
// ingredients can be converted to barrels by the flattening engine.
const TypeLiquid = "Liquid"

// DefaultYield is the yield assumed by the loaders when a recipe omits it.
const DefaultYield = 1.0

// Ingredient is one input line of a recipe.
type Ingredient struct {
	ID     string  `json:"id" toml:"id" yaml:"id"`
	Amount float64 `json:"amount" toml:"amount" yaml:"amount"`
}

// Recipe describes how an item is produced: Ingredients are consumed in
// definition order and one craft yields Yield units of the item.
//
// A Yield of zero is kept as is; dividing by it is the caller's problem.
type Recipe struct {
	Ingredients []Ingredient `json:"ingredients"`
	Yield       float64      `json:"yield"`
}

// IsRaw reports whether the recipe has no ingredients (a raw resource).
func (r Recipe) IsRaw() bool { return len(r.Ingredients) == 0 }

// Item is a record of the recipe database.
type Item struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Recipe Recipe `json:"recipe"`
}

// IsLiquid reports whether the item is tagged as a liquid.
func (it Item) IsLiquid() bool { return it.Type == TypeLiquid }

// DisplayName returns the name if set, otherwise the ID.
func (it Item) DisplayName() string {
	if it.Name != "" {
		return it.Name
	}
	return it.ID
}

// Database is the read-only lookup the flattening engine walks.
// Implementations return an ITEM_NOT_FOUND error for unknown identifiers
// and must be safe for concurrent readers.
type Database interface {
	Item(id string) (Item, error)
}
