package gatito

import "encoding/json"

// PageProcessor injects generated markup into an HTML page and reads it back.
type PageProcessor interface {
	InjectJSONLD(page string, docs []any) (string, error)
	InjectTrackers(page string, trackers []Tracker) (string, error)
	ExtractJSONLD(page string) ([]json.RawMessage, error)
}

// SchemaContext is the JSON-LD @context of every generated document.
const SchemaContext = "https://schema.org"

// ProductConfig describes the product offer. Empty fields are filled from
// the generator defaults.
type ProductConfig struct {
	Name          string   `yaml:"name" json:"name,omitempty"`
	Description   string   `yaml:"description" json:"description,omitempty"`
	URL           string   `yaml:"url" json:"url,omitempty"`
	Images        []string `yaml:"images" json:"images,omitempty"`
	Brand         string   `yaml:"brand" json:"brand,omitempty"`
	SKU           string   `yaml:"sku" json:"sku,omitempty"`
	Price         string   `yaml:"price" json:"price,omitempty"`
	PriceCurrency string   `yaml:"priceCurrency" json:"priceCurrency,omitempty"`
	Availability  string   `yaml:"availability" json:"availability,omitempty"`
	RatingValue   string   `yaml:"ratingValue" json:"ratingValue,omitempty"`
	ReviewCount   string   `yaml:"reviewCount" json:"reviewCount,omitempty"`
	SellerName    string   `yaml:"sellerName" json:"sellerName,omitempty"`
}

// BusinessConfig describes the business behind the site.
type BusinessConfig struct {
	Name        string   `yaml:"name" json:"name,omitempty"`
	Description string   `yaml:"description" json:"description,omitempty"`
	URL         string   `yaml:"url" json:"url,omitempty"`
	Logo        string   `yaml:"logo" json:"logo,omitempty"`
	Telephone   string   `yaml:"telephone" json:"telephone,omitempty"`
	SameAs      []string `yaml:"sameAs" json:"sameAs,omitempty"`
	Address     Address  `yaml:"address" json:"address,omitempty"`
	PriceRange  string   `yaml:"priceRange" json:"priceRange,omitempty"`
}

// Address is a schema.org PostalAddress.
type Address struct {
	Type       string `yaml:"-" json:"@type,omitempty"`
	Street     string `yaml:"street" json:"streetAddress,omitempty"`
	Locality   string `yaml:"locality" json:"addressLocality,omitempty"`
	Region     string `yaml:"region" json:"addressRegion,omitempty"`
	PostalCode string `yaml:"postalCode" json:"postalCode,omitempty"`
	Country    string `yaml:"country" json:"addressCountry,omitempty"`
}

// IsZero reports whether no address field is set.
func (a Address) IsZero() bool {
	return a.Street == "" && a.Locality == "" && a.Region == "" && a.PostalCode == "" && a.Country == ""
}

// FAQItem is one question and answer pair.
type FAQItem struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// Product is a schema.org Product ready for JSON-LD encoding.
type Product struct {
	Context         string           `json:"@context"`
	Type            string           `json:"@type"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	URL             string           `json:"url"`
	Image           []string         `json:"image,omitempty"`
	Brand           *Brand           `json:"brand,omitempty"`
	SKU             string           `json:"sku,omitempty"`
	Offers          Offer            `json:"offers"`
	AggregateRating *AggregateRating `json:"aggregateRating,omitempty"`
}

// Brand is a schema.org Brand.
type Brand struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// Offer is a schema.org Offer.
type Offer struct {
	Type          string  `json:"@type"`
	URL           string  `json:"url"`
	Price         string  `json:"price"`
	PriceCurrency string  `json:"priceCurrency"`
	Availability  string  `json:"availability"`
	Seller        *Seller `json:"seller,omitempty"`
}

// Seller is the organization selling an offer.
type Seller struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// AggregateRating is a schema.org AggregateRating.
type AggregateRating struct {
	Type        string `json:"@type"`
	RatingValue string `json:"ratingValue"`
	ReviewCount string `json:"reviewCount"`
	BestRating  string `json:"bestRating"`
	WorstRating string `json:"worstRating"`
}

// LocalBusiness is a schema.org LocalBusiness.
type LocalBusiness struct {
	Context     string   `json:"@context"`
	Type        string   `json:"@type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url"`
	Logo        string   `json:"logo,omitempty"`
	Telephone   string   `json:"telephone,omitempty"`
	SameAs      []string `json:"sameAs,omitempty"`
	Address     *Address `json:"address,omitempty"`
	PriceRange  string   `json:"priceRange,omitempty"`
}

// WebSite is a schema.org WebSite.
type WebSite struct {
	Context string `json:"@context"`
	Type    string `json:"@type"`
	Name    string `json:"name"`
	URL     string `json:"url"`
}

// FAQPage is a schema.org FAQPage.
type FAQPage struct {
	Context    string     `json:"@context"`
	Type       string     `json:"@type"`
	MainEntity []Question `json:"mainEntity"`
}

// Question is a schema.org Question with its accepted answer.
type Question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer Answer `json:"acceptedAnswer"`
}

// Answer is a schema.org Answer.
type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}
