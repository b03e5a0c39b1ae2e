package domain

// CartEntry is a raw cart line as stored server-side: a product reference and
// a quantity. A cart snapshot holds at most one entry per product id.
type CartEntry struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// CartLineItem is a CartEntry joined with its matching Product: the
// displayable, priced form of a cart line.
type CartLineItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Cost      float64 `json:"cost"`
	Rating    int     `json:"rating"`
	ImageURL  string  `json:"image"`
	Qty       int     `json:"qty"`
}

// Reconcile joins cart entries with the catalog snapshot to produce priced
// line items, preserving the input order of entries. Entries whose product id
// has no match in the catalog are dropped; callers that care about a
// catalog/cart desync should diff the result length against the input.
func Reconcile(entries []CartEntry, catalog []Product) []CartLineItem {
	byID := make(map[string]Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	items := make([]CartLineItem, 0, len(entries))
	for _, e := range entries {
		p, ok := byID[e.ProductID]
		if !ok {
			continue
		}
		items = append(items, CartLineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Cost:      p.Cost,
			Rating:    p.Rating,
			ImageURL:  p.ImageURL,
			Qty:       e.Qty,
		})
	}
	return items
}

// TotalValue returns the monetary total of the line items: sum of cost * qty.
func TotalValue(items []CartLineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Cost * float64(item.Qty)
	}
	return total
}

// TotalQuantity returns the aggregate quantity across all line items.
func TotalQuantity(items []CartLineItem) int {
	var count int
	for _, item := range items {
		count += item.Qty
	}
	return count
}

// IsInCart reports whether the given product id is present in the entries.
// Used to redirect a duplicate "add" into an update-quantity flow instead of
// creating a second entry.
func IsInCart(entries []CartEntry, productID string) bool {
	for i := range entries {
		if entries[i].ProductID == productID {
			return true
		}
	}
	return false
}
