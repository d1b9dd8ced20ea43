// Package model defines the record types shared by every pipeline stage and
// their stable CSV column layouts. All records are mutable structs keyed by a
// string identifier; the pipeline stage that currently owns a table is the only
// writer of its records.
package model

import (
	"strconv"
	"time"
)

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// TimestampLayout is the wire format for intra-day timestamps.
	TimestampLayout = "2006-01-02 15:04:05"
)

// Cart status values. Status is set to open at creation and finalized exactly
// once by the conversion funnel.
const (
	CartStatusOpen      = "open"
	CartStatusConverted = "converted"
	CartStatusAbandoned = "abandoned"
	CartStatusEmptied   = "emptied"
)

// Customer is a member of the static customer pool. LoyaltyTier and CLVBucket
// start equal to the signup-time assignment and are overwritten exactly once by
// the earned-status post-processor; InitialLoyaltyTier never changes.
type Customer struct {
	CustomerID          string
	FirstName           string
	LastName            string
	Email               string
	PhoneNumber         string
	Age                 int
	Gender              string
	LoyaltyTier         string
	InitialLoyaltyTier  string
	SignupDate          time.Time // zero for guests
	CustomerStatus      string
	EmailVerified       bool
	MarketingOptIn      bool
	LoyaltyEnrollDate   time.Time
	SignupChannel       string
	MailingAddress      string
	BillingAddress      string
	CLVBucket           string
	IsGuest             bool
}

// Product is one entry of the static product catalog.
type Product struct {
	ProductID         int
	ProductName       string
	Category          string
	UnitPrice         float64
	InventoryQuantity int
}

// Cart is a shopping session. CartTotal and UpdatedAt are patched by the cart
// item populator; Status is finalized by the conversion funnel.
type Cart struct {
	CartID             string
	CustomerID         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Status             string
	CartTotal          float64
	IsReactivationCart bool
}

// CartItem is a line item of an open cart. Items of emptied carts are removed
// from the table.
type CartItem struct {
	CartItemID  int
	CartID      string
	ProductID   int
	ProductName string
	Category    string
	Quantity    int
	UnitPrice   float64
	AddedAt     time.Time
}

// Order is materialized 1:1 from a converted cart. CustomerTier and CLVBucket
// are frozen at conversion time and never touched by the post-processor.
type Order struct {
	OrderID         string
	OrderDate       time.Time
	CustomerID      string
	Email           string
	OrderChannel    string
	IsExpedited     bool
	CustomerTier    string
	CLVBucket       string
	OrderTotal      float64
	TotalItems      int
	PaymentMethod   string
	ShippingSpeed   string
	ShippingCost    float64
	AgentID         string
	ShippingAddress string
	BillingAddress  string
	IsReactivated   bool
}

// OrderItem is a cart item copied onto its order, stripped of cart keys.
type OrderItem struct {
	OrderItemID int
	OrderID     string
	ProductID   int
	ProductName string
	Category    string
	Quantity    int
	UnitPrice   float64
}

// Return is a return event against one order. RefundedAmount and ReturnType
// are patched by the return item generator.
type Return struct {
	ReturnID       string
	OrderID        string
	CustomerID     string
	Email          string
	ReturnType     string
	ReturnDate     time.Time
	Reason         string
	RefundedAmount float64
	ReturnChannel  string
	RefundMethod   string
	AgentID        string
}

// ReturnItem is one returned line item. The same (order_id, product_id) pair
// never appears twice across all returns of an order.
type ReturnItem struct {
	ReturnItemID     int
	ReturnID         string
	OrderID          string
	ProductID        int
	ProductName      string
	Category         string
	QuantityReturned int
	UnitPrice        float64
	RefundedAmount   float64
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatAge(age int) string {
	if age == 0 {
		return ""
	}
	return strconv.Itoa(age)
}
