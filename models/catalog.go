package models

// CatalogItem is an immutable catalog entry. Amount is in minor units.
type CatalogItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Amount int64  `json:"amount"`
}
