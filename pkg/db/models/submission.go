package models

import "time"

// Order is the backend row mirrored from a locally committed order.
type Order struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TxRef          *string   `gorm:"column:tx_ref;uniqueIndex"`
	FullName       string    `gorm:"column:full_name;not null"`
	Phone          string    `gorm:"column:phone;not null"`
	Address        *string   `gorm:"column:address"`
	State          *string   `gorm:"column:state"`
	City           *string   `gorm:"column:city"`
	Kg             *string   `gorm:"column:kg"`
	Price          *int64    `gorm:"column:price"`
	Product        *string   `gorm:"column:product;type:jsonb"`
	DeliveryMethod *string   `gorm:"column:delivery_method"`
	DeliveryOption *string   `gorm:"column:delivery_option"`
	PaymentMode    *string   `gorm:"column:payment_mode"`
	Status         string    `gorm:"column:status;not null;default:'pending'"`
	Total          *int64    `gorm:"column:total"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Order) TableName() string { return "orders" }

// ServiceRequest is an installation, repair or inspection booking.
type ServiceRequest struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TxRef       *string   `gorm:"column:tx_ref;uniqueIndex"`
	FullName    string    `gorm:"column:full_name;not null"`
	Phone       string    `gorm:"column:phone;not null"`
	ServiceType *string   `gorm:"column:service_type"`
	Urgency     *string   `gorm:"column:urgency"`
	Budget      *int64    `gorm:"column:budget"`
	Notes       *string   `gorm:"column:notes"`
	Address     *string   `gorm:"column:address"`
	State       *string   `gorm:"column:state"`
	City        *string   `gorm:"column:city"`
	Status      string    `gorm:"column:status;not null;default:'pending'"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ServiceRequest) TableName() string { return "service_requests" }

// JoinRequest is a vendor or rider application to join the network.
type JoinRequest struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	FullName  string    `gorm:"column:full_name;not null"`
	Phone     string    `gorm:"column:phone;not null"`
	Role      string    `gorm:"column:role;not null"`
	Message   *string   `gorm:"column:message"`
	State     *string   `gorm:"column:state"`
	City      *string   `gorm:"column:city"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (JoinRequest) TableName() string { return "join_requests" }
