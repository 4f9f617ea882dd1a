package services

import (
	"errors"
	"sort"
	"sync"

	"checkout-service/models"
)

var ErrItemNotFound = errors.New("item not found")

// DefaultItems is the fixed book catalog.
func DefaultItems() []models.CatalogItem {
	return []models.CatalogItem{
		{ID: "1", Title: "The Art of Doing Science and Engineering", Amount: 2300},
		{ID: "2", Title: "The Making of Prince of Persia: Journals 1985-1993", Amount: 2500},
		{ID: "3", Title: "Working in Public: The Making and Maintenance of Open Source", Amount: 2800},
	}
}

// Catalog is a read-only item index, populated on first access.
type Catalog struct {
	seed  []models.CatalogItem
	once  sync.Once
	items map[string]models.CatalogItem
}

// NewCatalog returns a catalog over seed, or over DefaultItems when seed is empty.
func NewCatalog(seed ...models.CatalogItem) *Catalog {
	if len(seed) == 0 {
		seed = DefaultItems()
	}
	return &Catalog{seed: seed}
}

func (c *Catalog) init() {
	c.once.Do(func() {
		c.items = make(map[string]models.CatalogItem, len(c.seed))
		for _, item := range c.seed {
			c.items[item.ID] = item
		}
	})
}

// GetItem returns the item with the given id or ErrItemNotFound.
func (c *Catalog) GetItem(id string) (models.CatalogItem, error) {
	c.init()
	item, ok := c.items[id]
	if !ok {
		return models.CatalogItem{}, ErrItemNotFound
	}
	return item, nil
}

// Items lists every item ordered by id.
func (c *Catalog) Items() []models.CatalogItem {
	c.init()
	out := make([]models.CatalogItem, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
