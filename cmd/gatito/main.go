// Command gatito renders, audits and serves the Gatito landing page.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/ZaguanLabs/gatito"
	"github.com/ZaguanLabs/gatito/processor"
	"github.com/ZaguanLabs/gatito/site"
	"github.com/ZaguanLabs/gatito/validate"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = gatito.Version
	commit    = gatito.GitCommit
	buildDate = gatito.BuildDate
)

// stdin is read when no input file is given.
var stdin io.Reader = os.Stdin

const usage = `Usage: gatito <command> [flags]

Commands:
  render    inject structured data into the configured page
  check     re-validate the JSON-LD blocks of an HTML file
  validate  run validators over a JSON object of kind -> value(s)
  link      print a WhatsApp order link
  serve     serve the site over HTTP
  version   print version information
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("a command is required")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "render":
		return runRender(rest, stdout, stderr)
	case "check":
		return runCheck(rest, stdout, stderr)
	case "validate":
		return runValidate(rest, stdout, stderr)
	case "link":
		return runLink(rest, stdout, stderr)
	case "serve":
		return runServe(rest, stdout, stderr)
	case "version", "--version", "-version":
		printVersion(stdout)
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", gatito.Name, version)
	if commit != "unknown" && commit != "" {
		fmt.Fprintf(w, "  commit:  %s\n", commit)
	}
	if buildDate != "unknown" && buildDate != "" {
		fmt.Fprintf(w, "  built:   %s\n", buildDate)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// readInput reads the named file, or stdin when name is empty or "-".
func readInput(name string) (string, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), nil
}

// writeOutput writes to the named file, or stdout when name is empty.
func writeOutput(name string, stdout io.Writer, fn func(io.Writer) error) error {
	if name == "" {
		return fn(stdout)
	}
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// errorJSON is the JSON form of a skipped schema or failed check.
type errorJSON struct {
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func toErrorJSON(err error) errorJSON {
	var ve *gatito.ValidationError
	if errors.As(err, &ve) {
		return errorJSON{Code: string(ve.Code), Field: ve.Field, Value: ve.Value, Message: ve.Message}
	}
	return errorJSON{Message: err.Error()}
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runRender(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Config file (default: $GATITO_CONFIG or gatito.yaml)")
	output := fs.String("output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	strict := fs.Bool("strict", false, "Fail when any schema is skipped")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	cfg, err := gatito.LoadConfig(gatito.ConfigPath(*configPath))
	if err != nil {
		return err
	}

	pageFile := cfg.Site.Page
	if fs.NArg() > 0 {
		pageFile = fs.Arg(0)
	}
	if pageFile == "" {
		return errors.New("no page given (argument or site.page)")
	}
	page, err := readInput(pageFile)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, *verbose)
	validators, closeStore, err := newValidators(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	s, err := site.New(context.Background(), cfg, page,
		site.WithLogger(logger),
		site.WithValidators(validators),
	)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	r := s.Rendered()

	err = writeOutput(*output, stdout, func(w io.Writer) error {
		if *jsonOutput {
			out := struct {
				Content  string      `json:"content"`
				ETag     string      `json:"etag"`
				Injected []string    `json:"injected"`
				Skipped  []errorJSON `json:"skipped"`
			}{Content: r.HTML, ETag: r.ETag, Injected: r.Injected, Skipped: []errorJSON{}}
			for _, e := range r.Skipped {
				out.Skipped = append(out.Skipped, toErrorJSON(e))
			}
			return encodeJSON(w, out)
		}
		_, err := io.WriteString(w, r.HTML)
		return err
	})
	if err != nil {
		return err
	}

	if !*quiet {
		fmt.Fprintf(stderr, "\nSchemas injected: %d (%s)\n", len(r.Injected), strings.Join(r.Injected, ", "))
		fmt.Fprintf(stderr, "  Skipped:        %d\n", len(r.Skipped))
		for _, e := range r.Skipped {
			fmt.Fprintf(stderr, "    - %v\n", e)
		}
	}

	if *strict && len(r.Skipped) > 0 {
		return fmt.Errorf("%d schema(s) skipped", len(r.Skipped))
	}
	return nil
}

func runCheck(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	blocks, err := processor.NewHTMLProcessor().ExtractJSONLD(page)
	if err != nil {
		return err
	}

	gen := gatito.NewSchemaGenerator(gatito.WithLogger(newLogger(stderr, false)))
	type checkResult struct {
		Type  string     `json:"type"`
		OK    bool       `json:"ok"`
		Error *errorJSON `json:"error,omitempty"`
	}
	results := make([]checkResult, 0, len(blocks))
	failed := 0
	for _, b := range blocks {
		res := gen.Audit(b)
		cr := checkResult{Type: res.Type, OK: res.Err == nil}
		if res.Err != nil {
			failed++
			e := toErrorJSON(res.Err)
			cr.Error = &e
		}
		results = append(results, cr)
	}

	if *jsonOutput {
		if err := encodeJSON(stdout, results); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(stdout, "Found %d JSON-LD block(s)\n", len(blocks))
		for _, r := range results {
			typ := r.Type
			if typ == "" {
				typ = "(untyped)"
			}
			if r.OK {
				fmt.Fprintf(stdout, "  ok    %s\n", typ)
			} else {
				fmt.Fprintf(stdout, "  FAIL  %s: %s\n", typ, r.Error.Message)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d block(s) failed validation", failed, len(blocks))
	}
	return nil
}

// runValidate reads {"kind": value-or-values} and reports each value.
// Non-string values are reported as type errors.
func runValidate(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	input, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(input), &fields); err != nil {
		return fmt.Errorf("input must be a JSON object: %w", err)
	}

	kinds := make([]string, 0, len(fields))
	for k := range fields {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	bad := 0
	for _, kind := range kinds {
		fn, ok := validate.ByName[kind]
		if !ok {
			fmt.Fprintf(stdout, "%-12s unknown validator\n", kind)
			bad++
			continue
		}

		values, isList := fields[kind].([]any)
		if !isList {
			values = []any{fields[kind]}
		}
		for _, v := range values {
			valid, err := validate.FieldValue(kind, fn, v)
			var typeErr *validate.TypeError
			switch {
			case errors.As(err, &typeErr):
				fmt.Fprintf(stdout, "%-12s type error: %v\n", kind, err)
				bad++
			case valid:
				fmt.Fprintf(stdout, "%-12s valid    %q\n", kind, v)
			default:
				fmt.Fprintf(stdout, "%-12s invalid  %q\n", kind, v)
				bad++
			}
		}
	}

	if bad > 0 {
		return fmt.Errorf("%d value(s) rejected", bad)
	}
	return nil
}

func runLink(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("link", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Config file for defaults")
	phone := fs.String("phone", "", "WhatsApp number (default: order.phone)")
	quantity := fs.String("quantity", "1", "Quantity to order")
	unit := fs.String("unit", "", "Unit shown in the message")
	template := fs.String("template", "", "Message template with {quantity} and {unit}")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := gatito.OrderForm{Phone: *phone}
	if *phone == "" || *configPath != "" {
		cfg, err := gatito.LoadConfig(gatito.ConfigPath(*configPath))
		if err != nil {
			return err
		}
		form = cfg.OrderForm(0)
		if *phone != "" {
			form.Phone = *phone
		}
	}
	if *unit != "" {
		form.Unit = *unit
	}
	if *template != "" {
		form.Template = *template
	}

	n, err := gatito.ParseQuantity(*quantity, form.MaxQuantity)
	if err != nil {
		return err
	}
	form.Quantity = n

	link, err := gatito.OrderLink(form)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, link)
	return nil
}
