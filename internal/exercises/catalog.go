package exercises

import (
	"sort"

	"github.com/cockroachdb/errors"

	"musicstore-sql/internal/compose"
)

// Exercise is one analytical question over the music-store catalog.
type Exercise struct {
	ID       string
	Title    string
	Prompt   string
	Question compose.Question
}

// Recommended returns the strategy the selection policy picks for e.
func (e Exercise) Recommended() compose.Strategy {
	return compose.RecommendFor(e.Question)
}

// Catalog is an immutable, validated set of exercises.
type Catalog struct {
	byID  map[string]Exercise
	order []string
}

// NewCatalog rejects duplicate ids and exercises that do not compose under
// every strategy.
func NewCatalog(items ...Exercise) (*Catalog, error) {
	catalog := &Catalog{byID: make(map[string]Exercise, len(items))}
	for _, item := range items {
		if item.ID == "" {
			return nil, errors.New("exercise id is required")
		}
		if _, ok := catalog.byID[item.ID]; ok {
			return nil, errors.Newf("exercise %q is defined twice", item.ID)
		}
		for _, strategy := range compose.Strategies {
			if _, err := compose.Compose(item.Question, strategy); err != nil {
				return nil, errors.Wrapf(err, "exercise %q does not compose as %s", item.ID, strategy)
			}
		}
		catalog.byID[item.ID] = item
		catalog.order = append(catalog.order, item.ID)
	}
	return catalog, nil
}

func (c *Catalog) Get(id string) (Exercise, bool) {
	item, ok := c.byID[id]
	return item, ok
}

// All returns exercises in definition order.
func (c *Catalog) All() []Exercise {
	items := make([]Exercise, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, c.byID[id])
	}
	return items
}

// IDs returns exercise ids sorted alphabetically.
func (c *Catalog) IDs() []string {
	ids := append([]string(nil), c.order...)
	sort.Strings(ids)
	return ids
}

// Default returns the built-in exercise collection.
func Default() *Catalog {
	catalog, err := NewCatalog(builtin()...)
	if err != nil {
		panic(err)
	}
	return catalog
}
