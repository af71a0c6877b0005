package gatito

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ZaguanLabs/gatito/validate"
)

// pricePattern accepts plain non-negative decimals such as "12" or "12.50".
var pricePattern = regexp.MustCompile(`^(?:0|[1-9]\d*)(?:\.\d{1,2})?$`)

// SchemaGenerator builds validated schema.org documents.
type SchemaGenerator struct {
	validators *ValidatorSet
	defaults   ProductConfig
	business   BusinessConfig
	logger     *slog.Logger
}

// GeneratorOption is a functional option for configuring the SchemaGenerator.
type GeneratorOption func(*SchemaGenerator)

// WithValidators sets the predicates used for every field.
func WithValidators(v *ValidatorSet) GeneratorOption {
	return func(g *SchemaGenerator) {
		g.validators = v
	}
}

// WithDefaults sets the product values used when a config leaves a field empty.
func WithDefaults(defaults ProductConfig) GeneratorOption {
	return func(g *SchemaGenerator) {
		g.defaults = defaults
	}
}

// WithBusiness sets the business used for seller and brand fallbacks.
func WithBusiness(b BusinessConfig) GeneratorOption {
	return func(g *SchemaGenerator) {
		g.business = b
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *SchemaGenerator) {
		g.logger = l
	}
}

// NewSchemaGenerator creates a generator using strict validators unless
// WithValidators is given.
func NewSchemaGenerator(opts ...GeneratorOption) *SchemaGenerator {
	g := &SchemaGenerator{
		validators: StrictValidators(),
		defaults: ProductConfig{
			PriceCurrency: "USD",
			Availability:  validate.InStock,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Validators returns the generator's validator set.
func (g *SchemaGenerator) Validators() *ValidatorSet {
	return g.validators
}

// Product validates cfg and returns a Product schema.
// The first failing field aborts generation with a *ValidationError.
func (g *SchemaGenerator) Product(cfg ProductConfig) (*Product, error) {
	cfg = g.fillProduct(cfg)

	for _, f := range []struct{ name, value string }{
		{"name", cfg.Name},
		{"url", cfg.URL},
		{"offers.price", cfg.Price},
	} {
		if strings.TrimSpace(f.value) == "" {
			return nil, NewMissingFieldError(f.name)
		}
	}

	if !pricePattern.MatchString(cfg.Price) {
		return nil, NewInvalidPriceError("offers.price", cfg.Price)
	}
	if !g.validators.URL(cfg.URL) {
		return nil, NewInvalidURLError("url", cfg.URL)
	}
	for _, img := range cfg.Images {
		if !g.validators.URL(img) {
			return nil, NewInvalidURLError("image", img)
		}
	}
	if !g.validators.Currency(cfg.PriceCurrency) {
		return nil, NewInvalidCurrencyError("offers.priceCurrency", cfg.PriceCurrency)
	}
	if !g.validators.Availability(cfg.Availability) {
		return nil, NewInvalidAvailabilityError("offers.availability", cfg.Availability)
	}

	var rating *AggregateRating
	if cfg.RatingValue != "" || cfg.ReviewCount != "" {
		if cfg.RatingValue == "" {
			return nil, NewMissingFieldError("aggregateRating.ratingValue")
		}
		if cfg.ReviewCount == "" {
			return nil, NewMissingFieldError("aggregateRating.reviewCount")
		}
		if !g.validators.Rating(cfg.RatingValue) {
			return nil, NewInvalidRatingError("aggregateRating.ratingValue", cfg.RatingValue)
		}
		if !g.validators.ReviewCount(cfg.ReviewCount) {
			return nil, NewInvalidReviewCountError("aggregateRating.reviewCount", cfg.ReviewCount)
		}
		rating = &AggregateRating{
			Type:        "AggregateRating",
			RatingValue: cfg.RatingValue,
			ReviewCount: cfg.ReviewCount,
			BestRating:  "5",
			WorstRating: "0",
		}
	}

	p := &Product{
		Context:     SchemaContext,
		Type:        "Product",
		Name:        cfg.Name,
		Description: cfg.Description,
		URL:         cfg.URL,
		Image:       cfg.Images,
		SKU:         cfg.SKU,
		Offers: Offer{
			Type:          "Offer",
			URL:           cfg.URL,
			Price:         cfg.Price,
			PriceCurrency: cfg.PriceCurrency,
			Availability:  cfg.Availability,
		},
		AggregateRating: rating,
	}
	if cfg.Brand != "" {
		p.Brand = &Brand{Type: "Brand", Name: cfg.Brand}
	}
	if cfg.SellerName != "" {
		p.Offers.Seller = &Seller{Type: "Organization", Name: cfg.SellerName}
	}

	g.logger.Debug("product schema generated", "name", p.Name, "currency", p.Offers.PriceCurrency)
	return p, nil
}

// fillProduct applies defaults to empty fields.
func (g *SchemaGenerator) fillProduct(cfg ProductConfig) ProductConfig {
	d := g.defaults
	fill := func(v *string, def ...string) {
		for _, candidate := range def {
			if *v != "" {
				return
			}
			*v = candidate
		}
	}

	fill(&cfg.Name, d.Name)
	fill(&cfg.Description, d.Description)
	fill(&cfg.URL, d.URL, g.business.URL)
	fill(&cfg.Brand, d.Brand, g.business.Name)
	fill(&cfg.SKU, d.SKU)
	fill(&cfg.Price, d.Price)
	fill(&cfg.PriceCurrency, d.PriceCurrency)
	fill(&cfg.Availability, d.Availability)
	fill(&cfg.RatingValue, d.RatingValue)
	fill(&cfg.ReviewCount, d.ReviewCount)
	fill(&cfg.SellerName, d.SellerName, g.business.Name)
	if len(cfg.Images) == 0 {
		cfg.Images = d.Images
	}
	return cfg
}

// LocalBusiness validates b and returns a LocalBusiness schema.
func (g *SchemaGenerator) LocalBusiness(b BusinessConfig) (*LocalBusiness, error) {
	if strings.TrimSpace(b.Name) == "" {
		return nil, NewMissingFieldError("name")
	}
	if b.URL == "" {
		return nil, NewMissingFieldError("url")
	}
	if !g.validators.URL(b.URL) {
		return nil, NewInvalidURLError("url", b.URL)
	}
	if b.Logo != "" && !g.validators.URL(b.Logo) {
		return nil, NewInvalidURLError("logo", b.Logo)
	}
	for _, u := range b.SameAs {
		if !g.validators.URL(u) {
			return nil, NewInvalidURLError("sameAs", u)
		}
	}

	lb := &LocalBusiness{
		Context:     SchemaContext,
		Type:        "LocalBusiness",
		Name:        b.Name,
		Description: b.Description,
		URL:         b.URL,
		Logo:        b.Logo,
		Telephone:   b.Telephone,
		SameAs:      b.SameAs,
		PriceRange:  b.PriceRange,
	}
	if !b.Address.IsZero() {
		addr := b.Address
		addr.Type = "PostalAddress"
		lb.Address = &addr
	}
	return lb, nil
}

// WebSite validates the site URL and returns a WebSite schema.
func (g *SchemaGenerator) WebSite(name, url string) (*WebSite, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewMissingFieldError("name")
	}
	if url == "" {
		return nil, NewMissingFieldError("url")
	}
	if !g.validators.URL(url) {
		return nil, NewInvalidURLError("url", url)
	}
	return &WebSite{Context: SchemaContext, Type: "WebSite", Name: name, URL: url}, nil
}

// FAQPage returns a FAQPage schema. Every item needs a question and an answer.
func (g *SchemaGenerator) FAQPage(items []FAQItem) (*FAQPage, error) {
	if len(items) == 0 {
		return nil, NewMissingFieldError("mainEntity")
	}

	page := &FAQPage{Context: SchemaContext, Type: "FAQPage"}
	for i, item := range items {
		if strings.TrimSpace(item.Question) == "" {
			return nil, NewMissingFieldError(fieldIndex("mainEntity", i, "name"))
		}
		if strings.TrimSpace(item.Answer) == "" {
			return nil, NewMissingFieldError(fieldIndex("mainEntity", i, "acceptedAnswer.text"))
		}
		page.MainEntity = append(page.MainEntity, Question{
			Type:           "Question",
			Name:           item.Question,
			AcceptedAnswer: Answer{Type: "Answer", Text: item.Answer},
		})
	}
	return page, nil
}

func fieldIndex(list string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}
