package catalog

import (
	"fmt"

	"github.com/naijagasonline/ngo-storefront/internal/cart"
	"github.com/naijagasonline/ngo-storefront/pkg/gateway"
)

// PriceOption picks which of a product's prices goes into the cart.
type PriceOption string

const (
	PriceDefault     PriceOption = "default"
	PriceRefill      PriceOption = "refill"
	PriceNewCylinder PriceOption = "new"
)

// Product is a catalog entry as listed by the backend.
type Product struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle,omitempty"`
	Description      string   `json:"description,omitempty"`
	Price            int64    `json:"price"`
	RefillPrice      *int64   `json:"refill_price,omitempty"`
	NewCylinderPrice *int64   `json:"new_cylinder_price,omitempty"`
	Image            string   `json:"image,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	Kg               string   `json:"kg,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	State            string   `json:"state,omitempty"`
	City             string   `json:"city,omitempty"`
	SellerName       string   `json:"seller_name,omitempty"`
	AddonIDs         []string `json:"addons,omitempty"`
}

// HasDualPrices reports whether refill and new-cylinder prices are offered.
func (p Product) HasDualPrices() bool {
	return (p.RefillPrice != nil && *p.RefillPrice > 0) || (p.NewCylinderPrice != nil && *p.NewCylinderPrice > 0)
}

// PriceFor resolves the price for an option, falling back to Price.
func (p Product) PriceFor(option PriceOption) int64 {
	switch option {
	case PriceRefill:
		if p.RefillPrice != nil {
			return *p.RefillPrice
		}
	case PriceNewCylinder:
		if p.NewCylinderPrice != nil {
			return *p.NewCylinderPrice
		}
	}
	return p.Price
}

var optionTitles = map[PriceOption]string{
	PriceRefill:      "Refill",
	PriceNewCylinder: "New cylinder",
}

// resolve maps option to the option actually priced. A refill or
// new-cylinder request on a product without that price is the default.
func (p Product) resolve(option PriceOption) PriceOption {
	switch option {
	case PriceRefill:
		if p.RefillPrice != nil {
			return PriceRefill
		}
	case PriceNewCylinder:
		if p.NewCylinderPrice != nil {
			return PriceNewCylinder
		}
	}
	return PriceDefault
}

// LineID is the cart line id for a product bought at option. Each priced
// option is its own line, so a refill and a new cylinder of the same
// product never merge.
func LineID(productID string, option PriceOption) string {
	if option == "" || option == PriceDefault {
		return productID
	}
	return productID + ":" + string(option)
}

// CartProduct is the denormalized copy handed to cart.Service.Add.
func (p Product) CartProduct(option PriceOption) cart.Product {
	option = p.resolve(option)
	title := p.Title
	if suffix, ok := optionTitles[option]; ok {
		title = fmt.Sprintf("%s (%s)", p.Title, suffix)
	}
	return cart.Product{
		ID:    LineID(p.ID, option),
		Title: title,
		Price: p.PriceFor(option),
		Image: p.Image,
	}
}

func productFromRow(row gateway.Row) (Product, error) {
	id := row.String("id")
	if id == "" {
		return Product{}, fmt.Errorf("product row without id")
	}
	p := Product{
		ID:          id,
		Title:       row.String("title"),
		Subtitle:    row.String("subtitle"),
		Description: row.String("description"),
		Image:       row.String("image"),
		Kg:          row.String("kg"),
		Phone:       row.String("phone"),
		State:       row.String("state"),
		City:        row.String("city"),
		SellerName:  row.String("seller_name"),
		AddonIDs:    row.Strings("addons"),
	}
	if price, ok := row.Int64("price"); ok {
		p.Price = price
	}
	if v, ok := row.Int64("refill_price"); ok {
		p.RefillPrice = &v
	}
	if v, ok := row.Int64("new_cylinder_price"); ok {
		p.NewCylinderPrice = &v
	}
	if v, ok := row.Float64("rating"); ok {
		p.Rating = &v
	}
	return p, nil
}
