package domain

// Product is a catalog entry as returned by the backend. Immutable once
// fetched; the catalog snapshot it belongs to is owned by the caller.
type Product struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Cost     float64 `json:"cost"`
	Rating   int     `json:"rating"`
	ImageURL string  `json:"image"`
}
