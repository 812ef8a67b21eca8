// Package stock derives remaining purchasable quantity from the two
// independent sources of truth: a catalog snapshot and the current cart
// state. Results are never cached; every display surface recomputes them
// at query time so all surfaces agree without a shared intermediate.
package stock

import "shopfront/internal/domain"

// LowStockThreshold is the quantity below which a product is flagged as
// running low on listing surfaces.
const LowStockThreshold = 10

// Available returns how many units of the product can still be added,
// clamped at 0 when the cart already holds more than the catalog reports.
func Available(p domain.Product, cart domain.CartState) int {
	remaining := p.Stock - cart.QuantityOf(p.ID)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsOutOfStock reports whether no further units can be added.
func IsOutOfStock(p domain.Product, cart domain.CartState) bool {
	return Available(p, cart) == 0
}

// IsLowStock reports whether some units remain but fewer than the
// threshold.
func IsLowStock(p domain.Product, cart domain.CartState) bool {
	remaining := Available(p, cart)
	return remaining > 0 && remaining < LowStockThreshold
}

// CanAdd reports whether the requested quantity fits in the remaining
// stock. Callers must check this before mutating the cart; the calculator
// itself never enforces.
func CanAdd(p domain.Product, cart domain.CartState, quantity int) bool {
	return Available(p, cart) >= quantity
}
