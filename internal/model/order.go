package model

import "time"

// Order status values as they appear in the raw dataset.
const (
	OrderDelivered = "delivered"
	OrderShipped   = "shipped"
	OrderCanceled  = "canceled"
	OrderCreated   = "created"
	OrderApproved  = "approved"
)

// Order is a raw order header. Timestamp absence is status-dependent, not an
// error: an order that was never approved has no approval time.
type Order struct {
	ID          string
	CustomerID  string
	Status      string
	PurchasedAt time.Time
	ApprovedAt  *time.Time
	DeliveredAt *time.Time
}

// OrderItem is one line of an order, keyed by (OrderID, ItemSeq).
type OrderItem struct {
	OrderID   string
	ItemSeq   int
	ProductID string
	SellerID  string
	Price     float64
	Freight   float64
}

// Total returns the item's contribution to the order total.
func (i OrderItem) Total() float64 {
	return i.Price + i.Freight
}

// Payment type values as they appear in the raw dataset.
const (
	PaymentCreditCard = "credit_card"
	PaymentVoucher    = "voucher"
	PaymentBoleto     = "boleto"
	PaymentDebitCard  = "debit_card"
	PaymentNotDefined = "not_defined"
)

// Payment is one payment row of an order, keyed by (OrderID, Seq).
type Payment struct {
	OrderID      string
	Seq          int
	Type         string
	Installments int
	Value        float64
}
