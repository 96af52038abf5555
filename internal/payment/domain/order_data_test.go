package domain

import "testing"

func TestParseOrderData(t *testing.T) {
	raw := `{"userId":"u1","addressId":"a1","items":[{"productId":"p1","quantity":2,"price":50000},{"productId":"p2","quantity":1,"price":120000}]}`

	data, err := ParseOrderData(raw)
	if err != nil {
		t.Fatalf("ParseOrderData: %v", err)
	}
	if data.UserID != "u1" || data.AddressID != "a1" {
		t.Errorf("parsed header = %s/%s, want u1/a1", data.UserID, data.AddressID)
	}
	if len(data.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(data.Items))
	}
	if data.Items[0].ProductID != "p1" || data.Items[0].Quantity != 2 || data.Items[0].Price != 50000 {
		t.Errorf("first item = %+v", data.Items[0])
	}
}

func TestParseOrderDataRejectsInvalidPayloads(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"items":`},
		{"empty string", ""},
		{"missing user", `{"addressId":"a1","items":[{"productId":"p1","quantity":1,"price":100}]}`},
		{"missing address", `{"userId":"u1","items":[{"productId":"p1","quantity":1,"price":100}]}`},
		{"no items", `{"userId":"u1","addressId":"a1","items":[]}`},
		{"item without product", `{"userId":"u1","addressId":"a1","items":[{"quantity":1,"price":100}]}`},
		{"zero quantity", `{"userId":"u1","addressId":"a1","items":[{"productId":"p1","quantity":0,"price":100}]}`},
		{"negative quantity", `{"userId":"u1","addressId":"a1","items":[{"productId":"p1","quantity":-2,"price":100}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseOrderData(tc.raw); err == nil {
				t.Errorf("ParseOrderData(%q) accepted an invalid payload", tc.raw)
			}
		})
	}
}
