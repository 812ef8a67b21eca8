package domain

// CartItem is one line of the shopper's cart. Title, image and unit price
// are captured at add time so the cart stays renderable even if the
// catalog snapshot changes afterwards. UnitPrice is in minor currency
// units. Quantity is always >= 1; a transition that would drop it to 0
// removes the line instead.
type CartItem struct {
	ProductID  int64  `json:"product_id"`
	Title      string `json:"title"`
	ImageURL   string `json:"image_url"`
	UnitPrice  int64  `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	CategoryID int64  `json:"category_id,omitempty"`
}

// CartState is the full cart value: lines in insertion order plus the two
// derived fields. Total and ItemCount are recomputed on every transition
// and are never stored independently of the item collection.
type CartState struct {
	Items     []CartItem `json:"items"`
	Total     int64      `json:"total"`
	ItemCount int        `json:"item_count"`
}

// QuantityOf returns the cart quantity for a product, 0 if absent.
func (s CartState) QuantityOf(productID int64) int {
	for _, it := range s.Items {
		if it.ProductID == productID {
			return it.Quantity
		}
	}
	return 0
}

// Clone returns a deep copy so readers never alias the live item slice.
func (s CartState) Clone() CartState {
	out := s
	out.Items = make([]CartItem, len(s.Items))
	copy(out.Items, s.Items)
	return out
}
