package validate

import "sort"

// currencies is the ISO 4217 allow-list accepted in offers.
var currencies = map[string]bool{
	"USD": true, // US Dollar
	"EUR": true, // Euro
	"GBP": true, // Pound Sterling
	"JPY": true, // Yen
	"CAD": true, // Canadian Dollar
	"AUD": true, // Australian Dollar
	"NZD": true, // New Zealand Dollar
	"CHF": true, // Swiss Franc
	"CNY": true, // Yuan Renminbi
	"HKD": true, // Hong Kong Dollar
	"SGD": true, // Singapore Dollar
	"SEK": true, // Swedish Krona
	"NOK": true, // Norwegian Krone
	"DKK": true, // Danish Krone
	"PLN": true, // Zloty
	"CZK": true, // Czech Koruna
	"HUF": true, // Forint
	"RON": true, // Romanian Leu
	"TRY": true, // Turkish Lira
	"ILS": true, // New Israeli Sheqel
	"INR": true, // Indian Rupee
	"IDR": true, // Rupiah
	"KRW": true, // Won
	"THB": true, // Baht
	"PHP": true, // Philippine Peso
	"MYR": true, // Malaysian Ringgit
	"ZAR": true, // Rand
	"BRL": true, // Brazilian Real
	"MXN": true, // Mexican Peso
	"ARS": true, // Argentine Peso
	"CLP": true, // Chilean Peso
	"COP": true, // Colombian Peso
	"PEN": true, // Sol
	"UYU": true, // Peso Uruguayo
	"AED": true, // UAE Dirham
	"SAR": true, // Saudi Riyal
}

// CurrencyCode reports whether s is an allow-listed ISO 4217 code.
// Matching is case-sensitive: "usd" is rejected.
func CurrencyCode(s string) bool {
	return currencies[s]
}

// Currencies returns the accepted codes in sorted order.
func Currencies() []string {
	out := make([]string, 0, len(currencies))
	for code := range currencies {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
