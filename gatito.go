// Package gatito provides the structured-data, ordering and consent core of
// the Gatito homemade cat food site.
//
// Schemas are generated from configuration and validated before they are
// injected into the page:
//
//	gen := gatito.NewSchemaGenerator(
//	    gatito.WithValidators(gatito.CachedValidators(100)),
//	)
//
//	product, err := gen.Product(gatito.ProductConfig{
//	    Name:          "Chicken & Pumpkin Stew",
//	    URL:           "https://gatito.example.com/",
//	    Price:         "12.50",
//	    PriceCurrency: "EUR",
//	})
//	if errors.Is(err, gatito.ErrInvalidCurrency) {
//	    // fix the config
//	}
//
// Order links open a pre-filled WhatsApp chat:
//
//	link, err := gatito.OrderLink(gatito.OrderForm{Phone: "+34 600 123 456", Quantity: 3})
//
// Package site wires both into an http.Handler.
package gatito
