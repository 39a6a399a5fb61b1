package address

import (
	"fmt"
	"strings"
)

// StorageKey is the kv key holding the serialized address book.
const StorageKey = "ngo.addresses"

// Address is a saved delivery location.
type Address struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Details   string  `json:"details,omitempty"`
	IsDefault bool    `json:"isDefault"`
}

// Text is the single-line form snapshotted onto orders. Without details
// the coordinates are the only deliverable location, so they are always
// included, behind the label when there is one.
func (a Address) Text() string {
	if details := strings.TrimSpace(a.Details); details != "" {
		return details
	}
	coords := fmt.Sprintf("%.5f, %.5f", a.Lat, a.Lng)
	if label := strings.TrimSpace(a.Label); label != "" {
		return fmt.Sprintf("%s (%s)", label, coords)
	}
	return coords
}

// Draft is an address before it has an id.
type Draft struct {
	Label     string  `json:"label" validate:"required,max=120"`
	Lat       float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng       float64 `json:"lng" validate:"gte=-180,lte=180"`
	Details   string  `json:"details,omitempty" validate:"max=500"`
	IsDefault bool    `json:"isDefault"`
}

// Patch carries the fields to merge in Update; nil fields are left alone.
type Patch struct {
	Label     *string  `json:"label,omitempty" validate:"omitempty,min=1,max=120"`
	Lat       *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng       *float64 `json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Details   *string  `json:"details,omitempty" validate:"omitempty,max=500"`
	IsDefault *bool    `json:"isDefault,omitempty"`
}

type document struct {
	Addresses []Address `json:"addresses"`
}
