// Package recipe models the recipe database that production chains are
// computed from.
//
// # Overview
//
// A database maps item identifiers to [Item] records. Each item carries a
// display name, a type tag and a [Recipe]: the ordered ingredient list and
// the number of units one craft produces. Items without ingredients are raw
// resources.
//
// The flattening engine only needs point lookups, expressed by the
// [Database] interface. [Catalog] is the in-memory implementation used by
// the CLI, the HTTP server and the tests:
//
//	cat, err := recipe.NewCatalog(
//	    recipe.Item{ID: "iron-ore", Name: "Iron ore", Type: "Solid"},
//	    recipe.Item{ID: "iron-plate", Name: "Iron plate", Type: "Intermediate product",
//	        Recipe: recipe.Recipe{Yield: 1, Ingredients: []recipe.Ingredient{{ID: "iron-ore", Amount: 1}}}},
//	)
//
// # File Formats
//
// [LoadFile] picks a decoder by extension:
//
//   - .json: an object keyed by item ID, the layout of the original
//     recipe dump ({"iron-plate": {"id": ..., "name": ..., "type": ...,
//     "recipe": {"yield": 1, "ingredients": [{"id": ..., "amount": ...}]}}})
//   - .toml: an [[items]] array of the same records
//   - .yaml / .yml: an items: list of the same records
//
// A missing yield defaults to 1. Amounts and yields are not validated at
// load time; see the Validate option of the flow package.
//
// # Concurrency
//
// A Catalog is immutable after construction and safe for concurrent readers.
package recipe
