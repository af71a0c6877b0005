package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/gatito"
)

const (
	consentMaxAge  = 180 * 24 * 60 * 60
	maxBeaconBytes = 4 << 10
)

// Handler returns the HTTP handler for the site.
func (s *Site) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /order", s.handleOrder)
	mux.HandleFunc("POST /consent", s.handleConsent)
	mux.HandleFunc("POST /vitals", s.handleVitals)
	mux.HandleFunc("POST /errors", s.handleErrors)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.logRequests(mux)
}

func (s *Site) handlePage(w http.ResponseWriter, r *http.Request) {
	html, etag, err := s.Page(consentFrom(r))
	if err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("ETag", etag)
	h.Set("Vary", "Cookie")
	h.Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
	s.track(r, "page_view", nil)
}

func (s *Site) handleOrder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("quantity")
	if q == "" {
		q = "1"
	}

	n, err := gatito.ParseQuantity(q, s.cfg.Order.MaxQuantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	link, err := gatito.OrderLink(s.cfg.OrderForm(n))
	if err != nil {
		s.reporter.CaptureError(r.Context(), err, map[string]any{"handler": "order"})
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.track(r, "order_click", map[string]any{"quantity": n})
	http.Redirect(w, r, link, http.StatusSeeOther)
}

// handleConsent stores the visitor's banner decision. Revoking a category
// clears the validator caches.
func (s *Site) handleConsent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m := gatito.NewConsentManager(consentFrom(r))
	m.OnReset(s.validators.ClearCache)

	cookie := &http.Cookie{
		Name:     gatito.ConsentCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}

	if r.Form.Get("reset") == "1" {
		m.Reset()
		cookie.MaxAge = -1
		s.logger.Info("consent reset")
	} else {
		revoked := m.Update(gatito.ConsentState{
			Analytics: formFlag(r, "analytics"),
			Marketing: formFlag(r, "marketing"),
		})
		cookie.Value = m.State().String()
		cookie.MaxAge = consentMaxAge
		if revoked {
			s.logger.Info("consent revoked", "state", cookie.Value)
		}
	}

	http.SetCookie(w, cookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Site) handleVitals(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	var v gatito.WebVital
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBeaconBytes)).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode web vital: %w", err))
		return
	}
	if gatito.RateWebVital(v) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown metric %q", v.Name))
		return
	}

	if consentFrom(r).Allows(gatito.ConsentAnalytics) {
		s.reporter.ReportWebVital(r.Context(), v)
	}
	w.WriteHeader(http.StatusNoContent)
}

// browserError is the payload of window.onerror reports.
type browserError struct {
	Message string `json:"message"`
	Source  string `json:"source"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func (s *Site) handleErrors(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	var be browserError
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBeaconBytes)).Decode(&be); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode error report: %w", err))
		return
	}
	if strings.TrimSpace(be.Message) == "" {
		writeError(w, http.StatusBadRequest, gatito.NewMissingFieldError("message"))
		return
	}

	attrs := map[string]any{"origin": "browser", "source": be.Source, "line": be.Line, "column": be.Column}
	if consentFrom(r).Allows(gatito.ConsentAnalytics) {
		s.reporter.CaptureError(r.Context(), errors.New(be.Message), attrs)
	} else {
		s.logger.Warn("browser error", "message", be.Message, "source", be.Source, "line", be.Line)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Site) handleHealth(w http.ResponseWriter, r *http.Request) {
	rendered := s.Rendered()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": gatito.FullVersion(),
		"schemas": rendered.Injected,
		"skipped": len(rendered.Skipped),
	})
}

// track sends an analytics event when the visitor consented to analytics.
func (s *Site) track(r *http.Request, name string, params map[string]any) {
	if consentFrom(r).Allows(gatito.ConsentAnalytics) {
		s.reporter.TrackEvent(r.Context(), name, params)
	}
}

func consentFrom(r *http.Request) gatito.ConsentState {
	c, err := r.Cookie(gatito.ConsentCookieName)
	if err != nil {
		return gatito.ConsentState{}
	}
	return gatito.ParseConsent(c.Value)
}

func formFlag(r *http.Request, name string) bool {
	switch r.Form.Get(name) {
	case "1", "on", "true":
		return true
	default:
		return false
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := map[string]any{"error": err.Error()}

	var ve *gatito.ValidationError
	if errors.As(err, &ve) {
		body["code"] = ve.Code
		body["field"] = ve.Field
		body["message"] = ve.Message
		if len(ve.Suggestions) > 0 {
			body["suggestions"] = ve.Suggestions
		}
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Site) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
