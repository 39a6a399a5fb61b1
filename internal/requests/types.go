package requests

import "strings"

// RefillPrices is the fixed quick-refill price per cylinder size.
var RefillPrices = map[string]int64{
	"3kg":    3000,
	"5kg":    5000,
	"6kg":    6000,
	"10kg":   10000,
	"12.5kg": 12500,
	"25kg":   25000,
	"50kg":   50000,
}

// Delivery options offered on the quick-refill form.
const (
	DeliveryDoor   = "Door Delivery"
	DeliveryPickup = "Pickup"
)

// ServiceTypes are the bookable services.
var ServiceTypes = []string{
	"New Cylinder Setup",
	"Burner/Regulator Fix",
	"Leak Inspection",
	"Hose Replacement",
	"Full Installation",
	"Maintenance Visit",
}

// Urgencies are the accepted service urgency choices.
var Urgencies = []string{
	"Today",
	"Tomorrow",
	"Within 3 days",
	"Next week",
}

// RefillInput is the quick-refill form.
type RefillInput struct {
	FullName string `json:"full_name" validate:"notblank,max=120"`
	Phone    string `json:"phone" validate:"notblank,max=32"`
	Kg       string `json:"kg" validate:"notblank"`
	Delivery string `json:"delivery" validate:"omitempty,oneof='Door Delivery' Pickup"`
	State    string `json:"state" validate:"notblank,max=64"`
	City     string `json:"city" validate:"notblank,max=64"`
	Address  string `json:"address" validate:"notblank,max=300"`
}

// ServiceInput is the service booking form. Budget is optional.
type ServiceInput struct {
	FullName    string `json:"full_name" validate:"notblank,max=120"`
	Phone       string `json:"phone" validate:"notblank,max=32"`
	ServiceType string `json:"service_type" validate:"notblank"`
	Urgency     string `json:"urgency" validate:"notblank"`
	Budget      int64  `json:"budget" validate:"gte=0"`
	Notes       string `json:"notes" validate:"max=1000"`
	State       string `json:"state" validate:"notblank,max=64"`
	City        string `json:"city" validate:"notblank,max=64"`
	Address     string `json:"address" validate:"notblank,max=300"`
}

// JoinInput is a vendor or rider application. Role is free text.
type JoinInput struct {
	FullName string `json:"full_name" validate:"notblank,max=120"`
	Phone    string `json:"phone" validate:"notblank,max=32"`
	Role     string `json:"role" validate:"notblank,max=64"`
	Message  string `json:"message" validate:"max=1000"`
	State    string `json:"state" validate:"max=64"`
	City     string `json:"city" validate:"max=64"`
}

// joinAddress renders "address, City, State" skipping empty parts.
func joinAddress(address, city, state string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{strings.TrimSpace(address), strings.TrimSpace(city), capitalize(strings.TrimSpace(state))} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
