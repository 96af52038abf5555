package domain

import (
	"encoding/json"
	"fmt"
)

// OrderItem is a single line of a staged order.
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// OrderData is the order-creation payload captured at payment time and
// deferred until the gateway confirms the payment.
type OrderData struct {
	UserID    string      `json:"userId"`
	AddressID string      `json:"addressId"`
	Items     []OrderItem `json:"items"`
}

// Validate checks the payload carries everything the order service needs.
func (d *OrderData) Validate() error {
	if d.UserID == "" {
		return fmt.Errorf("userId is required")
	}
	if d.AddressID == "" {
		return fmt.Errorf("addressId is required")
	}
	if len(d.Items) == 0 {
		return fmt.Errorf("items must not be empty")
	}
	for i, item := range d.Items {
		if item.ProductID == "" {
			return fmt.Errorf("items[%d].productId is required", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("items[%d].quantity must be greater than 0", i)
		}
	}
	return nil
}

// ParseOrderData deserializes and validates a staged order payload. A payload
// that does not match the schema is rejected rather than silently dropped.
func ParseOrderData(raw string) (*OrderData, error) {
	var data OrderData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("malformed order data: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid order data: %w", err)
	}
	return &data, nil
}
