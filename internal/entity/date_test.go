package entity

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewDate(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	d := NewDate(time.Date(2024, 5, 1, 23, 30, 0, 0, jst))
	if got := d.String(); got != "2024-05-01" {
		t.Fatalf("NewDate = %s, want 2024-05-01", got)
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2024-02-29"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"d":"2024-02-29"}` {
		t.Fatalf("marshal = %s", b)
	}

	if err := json.Unmarshal([]byte(`{"d":"2023-02-29"}`), &v); err == nil {
		t.Fatal("expected error for impossible date")
	}
	if err := json.Unmarshal([]byte(`{"d":""}`), &v); err != nil || !v.D.IsZero() {
		t.Fatalf("empty date: %v %v", err, v.D)
	}
}

func TestSumAmounts(t *testing.T) {
	items := []LineItem{{AmountExclTax: 3800, Quantity: 2}, {AmountExclTax: 2200, Quantity: 1}}
	if got := SumAmounts(items); got != 6000 {
		t.Fatalf("SumAmounts = %d, want 6000", got)
	}
}
