package gatito

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AuditResult is the outcome of re-validating one JSON-LD block.
type AuditResult struct {
	Type string // schema.org @type, empty when undecodable
	Err  error  // nil when the block passes
}

// Audit re-runs the generator checks over an existing JSON-LD block.
// Defaults are not applied: every field must be present in the block.
// Unsupported types pass unchecked.
func (g *SchemaGenerator) Audit(raw []byte) AuditResult {
	var head struct {
		Type string `json:"@type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return AuditResult{Err: fmt.Errorf("decode json-ld: %w", err)}
	}

	strict := &SchemaGenerator{validators: g.validators, logger: g.logger}
	res := AuditResult{Type: head.Type}

	switch head.Type {
	case "Product":
		var p auditProduct
		if err := json.Unmarshal(raw, &p); err != nil {
			res.Err = fmt.Errorf("decode product: %w", err)
			return res
		}
		_, res.Err = strict.Product(p.config())
	case "LocalBusiness":
		var b BusinessConfig
		if err := json.Unmarshal(raw, &b); err != nil {
			res.Err = fmt.Errorf("decode business: %w", err)
			return res
		}
		_, res.Err = strict.LocalBusiness(b)
	case "WebSite":
		var w WebSite
		if err := json.Unmarshal(raw, &w); err != nil {
			res.Err = fmt.Errorf("decode website: %w", err)
			return res
		}
		_, res.Err = strict.WebSite(w.Name, w.URL)
	case "FAQPage":
		var f FAQPage
		if err := json.Unmarshal(raw, &f); err != nil {
			res.Err = fmt.Errorf("decode faq: %w", err)
			return res
		}
		items := make([]FAQItem, 0, len(f.MainEntity))
		for _, q := range f.MainEntity {
			items = append(items, FAQItem{Question: q.Name, Answer: q.AcceptedAnswer.Text})
		}
		_, res.Err = strict.FAQPage(items)
	}
	return res
}

// jsonText accepts a JSON string or number; schema.org allows both for
// prices and ratings.
type jsonText string

func (t *jsonText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = jsonText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = jsonText(n.String())
	return nil
}

type auditProduct struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Image       []string `json:"image"`
	SKU         string   `json:"sku"`
	Brand       *Brand   `json:"brand"`
	Offers      struct {
		Price         jsonText `json:"price"`
		PriceCurrency string   `json:"priceCurrency"`
		Availability  string   `json:"availability"`
	} `json:"offers"`
	AggregateRating *struct {
		RatingValue jsonText `json:"ratingValue"`
		ReviewCount jsonText `json:"reviewCount"`
	} `json:"aggregateRating"`
}

func (p auditProduct) config() ProductConfig {
	cfg := ProductConfig{
		Name:          p.Name,
		Description:   p.Description,
		URL:           p.URL,
		Images:        p.Image,
		SKU:           p.SKU,
		Price:         string(p.Offers.Price),
		PriceCurrency: p.Offers.PriceCurrency,
		Availability:  p.Offers.Availability,
	}
	if p.Brand != nil {
		cfg.Brand = p.Brand.Name
	}
	if p.AggregateRating != nil {
		cfg.RatingValue = string(p.AggregateRating.RatingValue)
		cfg.ReviewCount = string(p.AggregateRating.ReviewCount)
	}
	return cfg
}
