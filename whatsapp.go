package gatito

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/gatito/validate"
)

const (
	// WhatsAppBaseURL is the click-to-chat endpoint.
	WhatsAppBaseURL = "https://wa.me/"

	// DefaultMaxQuantity bounds the order form selector.
	DefaultMaxQuantity = 20

	// DefaultOrderTemplate is the pre-filled chat message.
	DefaultOrderTemplate = "Hi! I'd like to order {quantity} {unit} of homemade cat food."

	// DefaultUnit is the unit shown in the order message.
	DefaultUnit = "portions"
)

// OrderForm holds the order form input.
type OrderForm struct {
	Phone       string // Business WhatsApp number, any common formatting
	Quantity    int    // Selected quantity
	Unit        string // e.g. "portions" or "kg"
	Template    string // Message with {quantity} and {unit} placeholders
	MaxQuantity int    // Upper bound for Quantity
}

// NewInvalidPhoneError reports a phone number that is not 8-15 digits.
func NewInvalidPhoneError(value string) *ValidationError {
	return &ValidationError{
		Code:        CodeInvalidPhone,
		Field:       "phone",
		Value:       value,
		Message:     fmt.Sprintf("invalid WhatsApp number %q", value),
		Details:     map[string]any{"minDigits": 8, "maxDigits": 15},
		Suggestions: []string{"Use the full international number including country code, e.g. +54 9 11 5555 0000"},
	}
}

// NewInvalidQuantityError reports a quantity outside 1..max.
func NewInvalidQuantityError(value string, max int) *ValidationError {
	return &ValidationError{
		Code:        CodeInvalidQuantity,
		Field:       "quantity",
		Value:       value,
		Message:     fmt.Sprintf("quantity must be between 1 and %d", max),
		Details:     map[string]any{"min": 1, "max": max},
		Suggestions: []string{"Pick a quantity from the selector"},
	}
}

// NormalizePhone strips formatting characters and returns the digits.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", NewInvalidPhoneError(phone)
		}
	}

	digits := b.String()
	if len(digits) < 8 || len(digits) > 15 {
		return "", NewInvalidPhoneError(phone)
	}
	return digits, nil
}

// ParseQuantity parses form input into a quantity within 1..max.
func ParseQuantity(s string, max int) (int, error) {
	if max <= 0 {
		max = DefaultMaxQuantity
	}
	if !validate.ReviewCount(s) {
		return 0, NewInvalidQuantityError(s, max)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > max {
		return 0, NewInvalidQuantityError(s, max)
	}
	return n, nil
}

// OrderMessage renders the pre-filled chat message.
func OrderMessage(form OrderForm) string {
	tmpl := form.Template
	if tmpl == "" {
		tmpl = DefaultOrderTemplate
	}
	unit := form.Unit
	if unit == "" {
		unit = DefaultUnit
	}
	return strings.NewReplacer(
		"{quantity}", strconv.Itoa(form.Quantity),
		"{unit}", unit,
	).Replace(tmpl)
}

// OrderLink builds the https://wa.me/<number>?text=<message> deep link.
func OrderLink(form OrderForm) (string, error) {
	max := form.MaxQuantity
	if max <= 0 {
		max = DefaultMaxQuantity
	}
	if form.Quantity < 1 || form.Quantity > max {
		return "", NewInvalidQuantityError(strconv.Itoa(form.Quantity), max)
	}

	digits, err := NormalizePhone(form.Phone)
	if err != nil {
		return "", err
	}

	text := strings.ReplaceAll(url.QueryEscape(OrderMessage(form)), "+", "%20")
	link := WhatsAppBaseURL + digits + "?text=" + text

	if !validate.URL(link) {
		return "", NewInvalidURLError("link", link)
	}
	return link, nil
}
