package gatito

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ZaguanLabs/gatito/cache"
)

func validProduct() ProductConfig {
	return ProductConfig{
		Name:          "Chicken & Pumpkin Stew",
		URL:           "https://gatito.example.com/",
		Images:        []string{"https://gatito.example.com/img/stew.jpg"},
		Price:         "12.50",
		PriceCurrency: "EUR",
		Availability:  "https://schema.org/InStock",
		RatingValue:   "4.75",
		ReviewCount:   "128",
	}
}

func TestProduct_InvalidCurrency(t *testing.T) {
	gen := NewSchemaGenerator()
	cfg := validProduct()
	cfg.PriceCurrency = "XXX"

	p, err := gen.Product(cfg)
	if p != nil {
		t.Error("no schema should be produced on failure")
	}
	if !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected invalid currency error, got %v", err)
	}

	var ve *ValidationError
	errors.As(err, &ve)
	if ve.Field != "offers.priceCurrency" || ve.Value != "XXX" {
		t.Errorf("unexpected error fields: %+v", ve)
	}
	if _, ok := ve.Details["allowed"]; !ok {
		t.Error("error should carry the allow-list")
	}
}

func TestProduct_Valid(t *testing.T) {
	for _, validators := range []*ValidatorSet{StrictValidators(), CachedValidators(10)} {
		gen := NewSchemaGenerator(WithValidators(validators))
		p, err := gen.Product(validProduct())
		if err != nil {
			t.Fatalf("Product failed: %v", err)
		}
		if p.Offers.PriceCurrency != "EUR" {
			t.Errorf("PriceCurrency = %q, want input unchanged", p.Offers.PriceCurrency)
		}
		if p.AggregateRating == nil || p.AggregateRating.RatingValue != "4.75" {
			t.Errorf("AggregateRating = %+v", p.AggregateRating)
		}

		b, err := json.Marshal(p)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{`"@context":"https://schema.org"`, `"@type":"Product"`, `"priceCurrency":"EUR"`} {
			if !strings.Contains(string(b), want) {
				t.Errorf("JSON-LD missing %s: %s", want, b)
			}
		}
	}
}

func TestProduct_Defaults(t *testing.T) {
	gen := NewSchemaGenerator(WithBusiness(BusinessConfig{Name: "Gatito Cocina", URL: "https://gatito.example.com/"}))
	p, err := gen.Product(ProductConfig{Name: "Stew", Price: "10"})
	if err != nil {
		t.Fatalf("Product failed: %v", err)
	}
	if p.Offers.PriceCurrency != "USD" || p.Offers.Availability != "https://schema.org/InStock" {
		t.Errorf("defaults not applied: %+v", p.Offers)
	}
	if p.URL != "https://gatito.example.com/" {
		t.Errorf("URL should fall back to business URL, got %q", p.URL)
	}
	if p.Offers.Seller == nil || p.Offers.Seller.Name != "Gatito Cocina" {
		t.Errorf("Seller = %+v", p.Offers.Seller)
	}
	if p.AggregateRating != nil {
		t.Error("rating should be omitted when not configured")
	}
}

func TestProduct_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProductConfig)
		want   error
		field  string
	}{
		{"missing name", func(c *ProductConfig) { c.Name = " " }, ErrMissingField, "name"},
		{"missing price", func(c *ProductConfig) { c.Price = "" }, ErrMissingField, "offers.price"},
		{"bad price", func(c *ProductConfig) { c.Price = "12,50" }, ErrInvalidPrice, "offers.price"},
		{"bad url", func(c *ProductConfig) { c.URL = "ftp://gatito.example.com" }, ErrInvalidURL, "url"},
		{"bad image", func(c *ProductConfig) { c.Images = []string{"https://a..b/x.jpg"} }, ErrInvalidURL, "image"},
		{"lowercase currency", func(c *ProductConfig) { c.PriceCurrency = "usd" }, ErrInvalidCurrency, "offers.priceCurrency"},
		{"bad availability", func(c *ProductConfig) { c.Availability = "InStock" }, ErrInvalidAvailability, "offers.availability"},
		{"off-grid rating", func(c *ProductConfig) { c.RatingValue = "4.3" }, ErrInvalidRating, "aggregateRating.ratingValue"},
		{"rating above max", func(c *ProductConfig) { c.RatingValue = "5.5" }, ErrInvalidRating, "aggregateRating.ratingValue"},
		{"review count leading zero", func(c *ProductConfig) { c.ReviewCount = "012" }, ErrInvalidReviewCount, "aggregateRating.reviewCount"},
		{"rating without count", func(c *ProductConfig) { c.ReviewCount = "" }, ErrMissingField, "aggregateRating.reviewCount"},
	}

	gen := NewSchemaGenerator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validProduct()
			tt.mutate(&cfg)
			_, err := gen.Product(cfg)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			var ve *ValidationError
			if errors.As(err, &ve) && ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestLocalBusiness(t *testing.T) {
	gen := NewSchemaGenerator()
	lb, err := gen.LocalBusiness(BusinessConfig{
		Name:   "Gatito Cocina",
		URL:    "https://gatito.example.com/",
		SameAs: []string{"https://instagram.com/gatito"},
		Address: Address{
			Locality: "Valencia",
			Country:  "ES",
		},
	})
	if err != nil {
		t.Fatalf("LocalBusiness failed: %v", err)
	}
	if lb.Address == nil || lb.Address.Type != "PostalAddress" {
		t.Errorf("Address = %+v", lb.Address)
	}

	_, err = gen.LocalBusiness(BusinessConfig{Name: "Gatito", URL: "https://gatito.example.com/", SameAs: []string{"instagram"}})
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected invalid sameAs URL, got %v", err)
	}

	_, err = gen.LocalBusiness(BusinessConfig{URL: "https://gatito.example.com/"})
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("expected missing name, got %v", err)
	}
}

func TestWebSite(t *testing.T) {
	gen := NewSchemaGenerator()
	if _, err := gen.WebSite("Gatito", "https://gatito.example.com"); err != nil {
		t.Errorf("WebSite failed: %v", err)
	}
	if _, err := gen.WebSite("Gatito", "https://gatito.example.com:0"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected invalid URL for port 0, got %v", err)
	}
}

func TestFAQPage(t *testing.T) {
	gen := NewSchemaGenerator()
	page, err := gen.FAQPage([]FAQItem{{Question: "Grain free?", Answer: "Yes."}})
	if err != nil {
		t.Fatalf("FAQPage failed: %v", err)
	}
	if len(page.MainEntity) != 1 || page.MainEntity[0].AcceptedAnswer.Text != "Yes." {
		t.Errorf("MainEntity = %+v", page.MainEntity)
	}

	_, err = gen.FAQPage([]FAQItem{{Question: "Grain free?"}, {Question: "x", Answer: "y"}})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "mainEntity[0].acceptedAnswer.text" {
		t.Errorf("expected missing answer, got %v", err)
	}

	if _, err := gen.FAQPage(nil); !errors.Is(err, ErrMissingField) {
		t.Errorf("empty FAQ should fail, got %v", err)
	}
}

func TestAudit(t *testing.T) {
	gen := NewSchemaGenerator()
	p, err := gen.Product(validProduct())
	if err != nil {
		t.Fatal(err)
	}
	good, _ := json.Marshal(p)

	if res := gen.Audit(good); res.Type != "Product" || res.Err != nil {
		t.Errorf("Audit(generated) = %+v", res)
	}

	numeric := `{"@type":"Product","name":"Stew","url":"https://gatito.example.com/","offers":{"price":12.5,"priceCurrency":"EUR","availability":"https://schema.org/InStock"}}`
	if res := gen.Audit([]byte(numeric)); res.Err != nil {
		t.Errorf("numeric price should pass, got %v", res.Err)
	}

	bad := `{"@type":"Product","name":"Stew","url":"https://gatito.example.com/","offers":{"price":"12","priceCurrency":"XXX","availability":"https://schema.org/InStock"}}`
	if res := gen.Audit([]byte(bad)); !errors.Is(res.Err, ErrInvalidCurrency) {
		t.Errorf("Audit(bad currency) = %v", res.Err)
	}

	// Defaults are not applied during audit.
	missing := `{"@type":"Product","name":"Stew","url":"https://gatito.example.com/","offers":{"price":"12"}}`
	if res := gen.Audit([]byte(missing)); !errors.Is(res.Err, ErrInvalidCurrency) {
		t.Errorf("Audit(no currency) = %v", res.Err)
	}

	faq := `{"@type":"FAQPage","mainEntity":[{"@type":"Question","name":"Q","acceptedAnswer":{"@type":"Answer","text":""}}]}`
	if res := gen.Audit([]byte(faq)); !errors.Is(res.Err, ErrMissingField) {
		t.Errorf("Audit(faq) = %v", res.Err)
	}

	if res := gen.Audit([]byte(`{"@type":"BreadcrumbList"}`)); res.Err != nil {
		t.Errorf("unknown types pass, got %v", res.Err)
	}
	if res := gen.Audit([]byte(`{`)); res.Err == nil {
		t.Error("malformed JSON should fail")
	}
}

func TestCachedValidators_Transparent(t *testing.T) {
	strict := StrictValidators()
	cached := CachedValidators(4)
	inputs := []string{"USD", "usd", "XXX", "EUR", "USD", "GBP", "JPY", "usd"}

	for _, in := range inputs {
		if strict.Currency(in) != cached.Currency(in) {
			t.Errorf("Currency(%q) differs between strict and cached", in)
		}
		if strict.Rating(in) != cached.Rating(in) {
			t.Errorf("Rating(%q) differs between strict and cached", in)
		}
	}

	if cached.Stats().Hits == 0 {
		t.Error("repeated inputs should hit the cache")
	}
}

func TestCachedValidators_NamespacedKeys(t *testing.T) {
	// "5" is a valid rating but not a valid currency; a shared key space
	// would leak one predicate's answer into the other.
	v := CachedValidators(10)
	if !v.Rating("5") {
		t.Error("Rating(5) should be true")
	}
	if v.Currency("5") {
		t.Error("Currency(5) should be false")
	}
}

// clearCountingStore counts Clear calls on a wrapped store.
type clearCountingStore struct {
	*cache.InMemoryCache[bool]
	clears int
}

func (c *clearCountingStore) Clear() error {
	c.clears++
	return c.InMemoryCache.Clear()
}

func TestSharedValidators_ClearCacheOnce(t *testing.T) {
	store := &clearCountingStore{InMemoryCache: cache.NewInMemoryCache[bool](100, time.Hour)}
	v := SharedValidators(store)

	v.Currency("USD")
	v.Rating("4.5")
	if store.Len() != 2 {
		t.Fatalf("store holds %d entries, want 2", store.Len())
	}

	v.ClearCache()
	if store.clears != 1 {
		t.Errorf("Clear called %d times, want 1", store.clears)
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d entries after ClearCache", store.Len())
	}
	if !v.Currency("USD") {
		t.Error("USD should still validate after a clear")
	}
}
