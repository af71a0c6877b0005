package gatito

import (
	"errors"
	"net/url"
	"testing"
)

func TestOrderLink(t *testing.T) {
	link, err := OrderLink(OrderForm{
		Phone:    "+54 9 (11) 5555-0000",
		Quantity: 3,
		Unit:     "kg",
	})
	if err != nil {
		t.Fatalf("OrderLink failed: %v", err)
	}

	want := "https://wa.me/5491155550000?text=Hi%21%20I%27d%20like%20to%20order%203%20kg%20of%20homemade%20cat%20food."
	if link != want {
		t.Errorf("OrderLink =\n  %s\nwant\n  %s", link, want)
	}

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	if got := u.Query().Get("text"); got != "Hi! I'd like to order 3 kg of homemade cat food." {
		t.Errorf("decoded text = %q", got)
	}
}

func TestOrderLink_CustomTemplate(t *testing.T) {
	link, err := OrderLink(OrderForm{
		Phone:    "5491155550000",
		Quantity: 2,
		Template: "¡Hola! Quiero {quantity} {unit} & más",
		Unit:     "bandejas",
	})
	if err != nil {
		t.Fatalf("OrderLink failed: %v", err)
	}

	u, _ := url.Parse(link)
	if got := u.Query().Get("text"); got != "¡Hola! Quiero 2 bandejas & más" {
		t.Errorf("decoded text = %q", got)
	}
}

func TestOrderLink_InvalidQuantity(t *testing.T) {
	for _, q := range []int{0, -1, 21} {
		_, err := OrderLink(OrderForm{Phone: "5491155550000", Quantity: q})
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("quantity %d: err = %v, want invalid quantity", q, err)
		}
	}

	if _, err := OrderLink(OrderForm{Phone: "5491155550000", Quantity: 50, MaxQuantity: 50}); err != nil {
		t.Errorf("custom max quantity should allow 50: %v", err)
	}
}

func TestOrderLink_InvalidPhone(t *testing.T) {
	for _, phone := range []string{"", "12345", "1234567890123456", "+54 11 abc 0000"} {
		_, err := OrderLink(OrderForm{Phone: phone, Quantity: 1})
		if !errors.Is(err, ErrInvalidPhone) {
			t.Errorf("phone %q: err = %v, want invalid phone", phone, err)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"1", 1, true},
		{"20", 20, true},
		{"0", 0, false},
		{"21", 0, false},
		{"01", 0, false},
		{"-2", 0, false},
		{"2.5", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseQuantity(tt.input, 0)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseQuantity(%q) = %d, %v; want %d", tt.input, got, err, tt.want)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("ParseQuantity(%q) err = %v, want invalid quantity", tt.input, err)
		}
	}
}

func TestOrderMessage_Defaults(t *testing.T) {
	msg := OrderMessage(OrderForm{Quantity: 4})
	if msg != "Hi! I'd like to order 4 portions of homemade cat food." {
		t.Errorf("unexpected message: %s", msg)
	}
}
