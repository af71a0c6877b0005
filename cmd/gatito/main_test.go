package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/gatito"
)

const testPage = `<!DOCTYPE html><html><head><title>Gatito</title></head><body><a data-gatito-order href="#">Pedir</a></body></html>`

func writeSite(t *testing.T, currency string) string {
	t.Helper()
	t.Setenv("GATITO_REDIS_URL", "")
	dir := t.TempDir()
	config := `
site:
  name: Gatito
  url: https://gatito.example.com
  page: index.html
business:
  name: Gatito Cocina
order:
  phone: "+34 600 123 456"
product:
  name: Chicken Stew
  price: "12.50"
  priceCurrency: ` + currency + `
`
	if err := os.WriteFile(filepath.Join(dir, "gatito.yaml"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(testPage), 0o644); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(dir, "gatito.yaml")
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"version"}, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "gatito") {
		t.Errorf("expected version output, got: %s", stdout.String())
	}
}

func TestRun_NoCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(nil, &stdout, &stderr); err == nil {
		t.Fatal("expected error without a command")
	}
	if !strings.Contains(stderr.String(), "Usage") {
		t.Error("usage should be printed")
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"translate"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("got %v", err)
	}
}

func TestRun_Render(t *testing.T) {
	cfg := writeSite(t, "EUR")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"render", "-config", cfg, "-strict"}, &stdout, &stderr); err != nil {
		t.Fatalf("render failed: %v\n%s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, `"priceCurrency":"EUR"`) {
		t.Errorf("product JSON-LD missing: %s", out)
	}
	if !strings.Contains(stderr.String(), "Schemas injected: 3") {
		t.Errorf("stats missing: %s", stderr.String())
	}
}

func TestRun_RenderJSONSkipsInvalidCurrency(t *testing.T) {
	cfg := writeSite(t, "XXX")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"render", "-config", cfg, "-json", "-quiet"}, &stdout, &stderr); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	var result struct {
		Content  string   `json:"content"`
		Injected []string `json:"injected"`
		Skipped  []struct {
			Code  string `json:"code"`
			Field string `json:"field"`
		} `json:"skipped"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Code != "invalid_currency" {
		t.Errorf("Skipped = %+v", result.Skipped)
	}
	if strings.Contains(result.Content, `"@type":"Product"`) {
		t.Error("invalid product must not be injected")
	}

	// -strict turns skipped schemas into a failure.
	stdout.Reset()
	if err := run([]string{"render", "-config", cfg, "-strict", "-quiet"}, &stdout, &stderr); err == nil {
		t.Error("expected -strict to fail")
	}
}

func TestRun_RenderToFile(t *testing.T) {
	cfg := writeSite(t, "EUR")
	out := filepath.Join(t.TempDir(), "out.html")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"render", "-config", cfg, "-o", out, "-quiet"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "application/ld+json") || stdout.Len() != 0 {
		t.Error("output should go to the file only")
	}
}

func TestRun_Check(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	os.WriteFile(page, []byte(`<html><head>
<script type="application/ld+json">{"@type":"WebSite","name":"Gatito","url":"https://gatito.example.com/"}</script>
<script type="application/ld+json">{"@type":"Product","name":"Stew","url":"https://gatito.example.com/","offers":{"price":"12","priceCurrency":"usd","availability":"https://schema.org/InStock"}}</script>
</head></html>`), 0o644)

	var stdout, stderr bytes.Buffer
	err := run([]string{"check", page}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected failure for lowercase currency")
	}

	out := stdout.String()
	if !strings.Contains(out, "ok    WebSite") || !strings.Contains(out, "FAIL  Product") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRun_Validate(t *testing.T) {
	stdin = strings.NewReader(`{"currency":["USD","usd"],"rating":4.5,"url":"https://gatito.example.com"}`)
	defer func() { stdin = os.Stdin }()

	var stdout, stderr bytes.Buffer
	err := run([]string{"validate"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "2 value(s) rejected") {
		t.Fatalf("got %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		`currency     valid    "USD"`,
		`currency     invalid  "usd"`,
		`rating       type error`,
		`url          valid`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_Link(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"link", "-phone", "+54 9 11 5555-0000", "-quantity", "4", "-unit", "kg"}, &stdout, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	want := "https://wa.me/5491155550000?text=Hi%21%20I%27d%20like%20to%20order%204%20kg%20of%20homemade%20cat%20food.\n"
	if stdout.String() != want {
		t.Errorf("link = %q, want %q", stdout.String(), want)
	}

	if err := run([]string{"link", "-phone", "123", "-quantity", "1"}, &stdout, &stderr); err == nil {
		t.Error("short phone should fail")
	}
	if err := run([]string{"link", "-phone", "+54 9 11 5555-0000", "-quantity", "21"}, &stdout, &stderr); err == nil {
		t.Error("quantity above the default max should fail")
	}
}

func TestNewHandler(t *testing.T) {
	cfg, err := gatito.LoadConfig(writeSite(t, "EUR"))
	if err != nil {
		t.Fatal(err)
	}
	h, cleanup, err := newHandler(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newHandler failed: %v", err)
	}
	defer cleanup()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"@type":"Product"`) {
		t.Errorf("GET / = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/order?quantity=2", nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("GET /order = %d", rec.Code)
	}
}
