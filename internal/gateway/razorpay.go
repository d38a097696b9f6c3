package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Order statuses reported by Razorpay.
const (
	OrderStatusCreated   = "created"
	OrderStatusAttempted = "attempted"
	OrderStatusPaid      = "paid"
)

// Order is the gateway-side order handle. Receipt carries the appointment
// ID used to correlate the order back to a booking.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Paid reports whether the order has been settled.
func (o *Order) Paid() bool { return o.Status == OrderStatusPaid }

// PaymentGateway is the order-create/order-fetch capability the payment
// service consumes. Amounts are in the gateway's minor unit (paise for INR).
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
}

type razorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpay wraps the Razorpay REST client in the PaymentGateway interface.
func NewRazorpay(keyID, keySecret string) PaymentGateway {
	return &razorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}
	return orderFromBody(body)
}

func (g *razorpayGateway) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	body, err := g.client.Order.Fetch(orderID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order fetch: %w", err)
	}
	return orderFromBody(body)
}

func orderFromBody(body map[string]interface{}) (*Order, error) {
	order := &Order{}
	var ok bool
	if order.ID, ok = body["id"].(string); !ok {
		return nil, fmt.Errorf("razorpay response missing order id")
	}
	order.Receipt, _ = body["receipt"].(string)
	order.Status, _ = body["status"].(string)
	order.Currency, _ = body["currency"].(string)
	// The JSON decoder hands numbers back as float64.
	if amount, ok := body["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	return order, nil
}
