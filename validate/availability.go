package validate

// Schema.org availability states. Only the fully qualified form is valid.
const (
	InStock      = "https://schema.org/InStock"
	OutOfStock   = "https://schema.org/OutOfStock"
	PreOrder     = "https://schema.org/PreOrder"
	Discontinued = "https://schema.org/Discontinued"
)

var availabilityStates = map[string]bool{
	InStock:      true,
	OutOfStock:   true,
	PreOrder:     true,
	Discontinued: true,
}

// AvailabilityState reports whether s is one of the supported schema.org
// availability URLs. Bare names such as "InStock" are rejected.
func AvailabilityState(s string) bool {
	return availabilityStates[s]
}

// AvailabilityStates returns the accepted URLs.
func AvailabilityStates() []string {
	return []string{InStock, OutOfStock, PreOrder, Discontinued}
}
