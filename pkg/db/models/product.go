package models

import "time"

// Product is a catalog listing in the backend products table.
type Product struct {
	ID               string    `gorm:"column:id;primaryKey"`
	Title            string    `gorm:"column:title;not null"`
	Subtitle         *string   `gorm:"column:subtitle"`
	Description      *string   `gorm:"column:description"`
	Price            int64     `gorm:"column:price;not null"`
	RefillPrice      *int64    `gorm:"column:refill_price"`
	NewCylinderPrice *int64    `gorm:"column:new_cylinder_price"`
	Image            *string   `gorm:"column:image"`
	Rating           *float64  `gorm:"column:rating"`
	Kg               *string   `gorm:"column:kg"`
	Phone            *string   `gorm:"column:phone"`
	State            *string   `gorm:"column:state"`
	City             *string   `gorm:"column:city"`
	SellerName       *string   `gorm:"column:seller_name"`
	Addons           *string   `gorm:"column:addons;type:jsonb"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Product) TableName() string { return "products" }

// ProductAddon links a product to an add-on that is itself a product.
type ProductAddon struct {
	ProductID string `gorm:"column:product_id;primaryKey"`
	AddonID   string `gorm:"column:addon_id;primaryKey"`
}

func (ProductAddon) TableName() string { return "product_addons" }
