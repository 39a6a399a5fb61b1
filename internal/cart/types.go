package cart

// StorageKey is the kv key holding the serialized cart.
const StorageKey = "cart-store"

// Product is the denormalized product data copied into a line at add time.
type Product struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
	Price int64  `json:"price" validate:"gte=0"`
	Image string `json:"image,omitempty"`
}

// Line is one product entry in the cart. Qty is always positive.
type Line struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
	Image string `json:"image,omitempty"`
	Qty   int    `json:"qty"`
}

// Subtotal is price times quantity for the line.
func (l Line) Subtotal() int64 {
	return l.Price * int64(l.Qty)
}

// Snapshot is the persisted cart document.
type Snapshot struct {
	Lines  []Line  `json:"lines"`
	Coupon *string `json:"coupon"`
}

// Totals are derived from the lines and coupon; nothing here is stored.
type Totals struct {
	Subtotal      int64  `json:"subtotal"`
	DeliveryFee   int64  `json:"delivery_fee"`
	Discount      int64  `json:"discount"`
	Total         int64  `json:"total"`
	Coupon        string `json:"coupon,omitempty"`
	CouponApplied bool   `json:"coupon_applied"`
}

// CopyLines returns a deep copy so callers can keep it after the cart changes.
func CopyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
