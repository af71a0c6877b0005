// Package site renders the landing page and serves it over HTTP.
package site

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ZaguanLabs/gatito"
	"github.com/ZaguanLabs/gatito/memo"
	"github.com/ZaguanLabs/gatito/processor"
)

// Rendered is the page after bootstrap.
type Rendered struct {
	HTML     string   // Page with JSON-LD and order links, no trackers
	Injected []string // @type of each injected schema, in order
	Skipped  []error  // Schemas or links left out because they failed validation
	ETag     string
}

// Site holds everything needed to render and serve the page.
type Site struct {
	cfg        gatito.Config
	validators *gatito.ValidatorSet
	gen        *gatito.SchemaGenerator
	proc       *processor.HTMLProcessor
	reporter   *gatito.Reporter
	limiter    *gatito.RateLimiter
	logger     *slog.Logger

	mu         sync.RWMutex
	rendered   *Rendered
	generation uint64 // Bumped by every Reload
	variants   *memo.Func[variantKey, variant]
}

// variantKey identifies a page variant. Variants rendered from an earlier
// bootstrap carry an older generation and are never served again.
type variantKey struct {
	Generation uint64
	Consent    gatito.ConsentState
}

// variant is the rendered page for one consent state.
type variant struct {
	html string
	etag string
	err  error
}

// Option configures a Site.
type Option func(*Site)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) {
		s.logger = l
	}
}

// WithReporter sets the analytics reporter. Without one, events are dropped
// and errors are only logged.
func WithReporter(r *gatito.Reporter) Option {
	return func(s *Site) {
		s.reporter = r
	}
}

// WithValidators sets the validator set, e.g. one backed by Redis.
func WithValidators(v *gatito.ValidatorSet) Option {
	return func(s *Site) {
		s.validators = v
	}
}

// WithProcessor sets the HTML processor.
func WithProcessor(p *processor.HTMLProcessor) Option {
	return func(s *Site) {
		s.proc = p
	}
}

// WithBeaconLimit bounds the rate of /vitals and /errors requests.
func WithBeaconLimit(cfg gatito.RateLimitConfig) Option {
	return func(s *Site) {
		s.limiter = gatito.NewRateLimiter(cfg)
	}
}

// New creates a site and bootstraps page. Schemas that fail validation are
// skipped; only processing failures are returned.
func New(ctx context.Context, cfg gatito.Config, page string, opts ...Option) (*Site, error) {
	s := &Site{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.validators == nil {
		s.validators = gatito.CachedValidators(cfg.Cache.MaxSize, memo.WithTTL(ttlOrDefault(cfg)))
	}
	if s.proc == nil {
		s.proc = processor.NewHTMLProcessor()
	}
	if s.reporter == nil {
		s.reporter = gatito.NewReporter(nil, gatito.WithReporterLogger(s.logger))
	}
	if s.limiter == nil {
		s.limiter = gatito.NewRateLimiter(gatito.RateLimitConfig{RequestsPerMinute: 600, BurstSize: 60})
	}
	s.gen = gatito.NewSchemaGenerator(
		gatito.WithValidators(s.validators),
		gatito.WithBusiness(cfg.Business),
		gatito.WithLogger(s.logger),
	)
	// One variant per consent combination and generation.
	s.variants = memo.New(s.renderVariant, 8)

	if err := s.Reload(ctx, page); err != nil {
		return nil, err
	}
	return s, nil
}

func ttlOrDefault(cfg gatito.Config) time.Duration {
	if d := cfg.CacheTTL(); d > 0 {
		return d
	}
	return memo.DefaultTTL
}

// Reload bootstraps page again and drops cached variants.
func (s *Site) Reload(ctx context.Context, page string) error {
	r, err := s.Bootstrap(ctx, page)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.rendered = r
	s.generation++
	s.mu.Unlock()
	s.variants.ClearCache()
	return nil
}

// Rendered returns the current bootstrap result.
func (s *Site) Rendered() *Rendered {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rendered
}

// Validators returns the validator set used for every schema.
func (s *Site) Validators() *gatito.ValidatorSet {
	return s.validators
}

// Bootstrap generates every configured schema, injects the valid ones into
// page and points order links at the default WhatsApp link.
func (s *Site) Bootstrap(ctx context.Context, page string) (*Rendered, error) {
	r := &Rendered{}
	var docs []any

	add := func(kind string, doc any, err error) {
		if err != nil {
			s.skip(ctx, r, kind, err)
			return
		}
		docs = append(docs, doc)
		r.Injected = append(r.Injected, schemaType(doc))
	}

	product, err := s.gen.Product(s.cfg.Product)
	add("product", product, err)

	if s.cfg.Business.Name != "" {
		business, err := s.gen.LocalBusiness(s.cfg.Business)
		add("business", business, err)
	}

	if s.cfg.Site.Name != "" {
		website, err := s.gen.WebSite(s.cfg.Site.Name, s.cfg.Site.URL+"/")
		add("website", website, err)
	}

	if len(s.cfg.FAQ) > 0 {
		faq, err := s.gen.FAQPage(s.cfg.FAQ)
		add("faq", faq, err)
	}

	html, err := s.proc.InjectJSONLD(page, docs)
	if err != nil {
		return nil, err
	}

	link, err := gatito.OrderLink(s.cfg.OrderForm(1))
	if err != nil {
		s.skip(ctx, r, "order_link", err)
	} else {
		var n int
		html, n, err = s.proc.RewriteOrderLinks(html, link)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("order links rewritten", "count", n)
	}

	r.HTML = html
	r.ETag = gatito.ETag(html)
	s.logger.Info("page bootstrapped", "schemas", len(r.Injected), "skipped", len(r.Skipped))
	return r, nil
}

func (s *Site) skip(ctx context.Context, r *Rendered, kind string, err error) {
	r.Skipped = append(r.Skipped, err)
	s.logger.Warn("schema skipped", "schema", kind, "error", err)
	s.reporter.CaptureError(ctx, err, map[string]any{"schema": kind})
}

// Page returns the page for a visitor's consent state.
func (s *Site) Page(state gatito.ConsentState) (html, etag string, err error) {
	s.mu.RLock()
	key := variantKey{Generation: s.generation, Consent: state}
	s.mu.RUnlock()

	v := s.variants.Call(key)
	return v.html, v.etag, v.err
}

// renderVariant renders from the current bootstrap result. A render that
// races a Reload is stored under the old generation, which Page no longer
// asks for.
func (s *Site) renderVariant(key variantKey) variant {
	base := s.Rendered()
	html, err := s.proc.InjectTrackers(base.HTML, gatito.AllowedTrackers(key.Consent, s.cfg.Trackers))
	if err != nil {
		return variant{err: err}
	}
	return variant{html: html, etag: gatito.ETag(html)}
}

func schemaType(doc any) string {
	switch d := doc.(type) {
	case *gatito.Product:
		return d.Type
	case *gatito.LocalBusiness:
		return d.Type
	case *gatito.WebSite:
		return d.Type
	case *gatito.FAQPage:
		return d.Type
	default:
		return ""
	}
}
