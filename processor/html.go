package processor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/gatito"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLProcessor rewrites HTML pages with goquery.
type HTMLProcessor struct {
	indent string
}

// Option configures an HTMLProcessor.
type Option func(*HTMLProcessor)

// WithIndent pretty-prints injected JSON-LD with the given indent.
func WithIndent(indent string) Option {
	return func(p *HTMLProcessor) {
		p.indent = indent
	}
}

// NewHTMLProcessor creates a new HTML processor.
func NewHTMLProcessor(opts ...Option) *HTMLProcessor {
	p := &HTMLProcessor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *HTMLProcessor) parse(page string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, &gatito.ProcessorError{Message: "failed to parse HTML", Cause: err}
	}
	return doc, nil
}

func (p *HTMLProcessor) render(doc *goquery.Document) (string, error) {
	out, err := doc.Html()
	if err != nil {
		return "", &gatito.ProcessorError{Message: "failed to serialize HTML", Cause: err}
	}
	return out, nil
}

// InjectJSONLD replaces previously injected structured data with one
// script block per doc, appended to <head>. The HTML parser synthesizes
// <head> when the page has none.
func (p *HTMLProcessor) InjectJSONLD(page string, docs []any) (string, error) {
	doc, err := p.parse(page)
	if err != nil {
		return "", err
	}

	doc.Find(fmt.Sprintf(`script[%s="schema"]`, Marker)).Remove()

	head := doc.Find("head").First()
	for i, d := range docs {
		body, err := p.encode(d)
		if err != nil {
			return "", &gatito.ProcessorError{
				Message: fmt.Sprintf("failed to encode JSON-LD block %d", i),
				Cause:   err,
			}
		}
		head.AppendNodes(scriptNode(string(body),
			html.Attribute{Key: "type", Val: JSONLDType},
			html.Attribute{Key: Marker, Val: "schema"},
		))
	}

	return p.render(doc)
}

// encode marshals with HTML escaping so "</script>" cannot appear in a block.
func (p *HTMLProcessor) encode(v any) ([]byte, error) {
	if p.indent == "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", p.indent)
}

// InjectTrackers replaces previously injected tracker scripts with trackers.
// Callers filter trackers by consent first.
func (p *HTMLProcessor) InjectTrackers(page string, trackers []gatito.Tracker) (string, error) {
	doc, err := p.parse(page)
	if err != nil {
		return "", err
	}

	doc.Find(fmt.Sprintf(`script[%s="tracker"]`, Marker)).Remove()

	head := doc.Find("head").First()
	for _, t := range trackers {
		attrs := []html.Attribute{
			{Key: Marker, Val: "tracker"},
			{Key: "data-tracker", Val: t.Name},
			{Key: "data-category", Val: string(t.Category)},
		}
		if t.Src != "" {
			attrs = append(attrs, html.Attribute{Key: "async"}, html.Attribute{Key: "src", Val: t.Src})
		}
		head.AppendNodes(scriptNode(t.Inline, attrs...))
	}

	return p.render(doc)
}

// ExtractJSONLD returns every structured data block in the page, injected
// or not, in document order.
func (p *HTMLProcessor) ExtractJSONLD(page string) ([]json.RawMessage, error) {
	doc, err := p.parse(page)
	if err != nil {
		return nil, err
	}

	var (
		blocks []json.RawMessage
		bad    error
	)
	doc.Find(fmt.Sprintf(`script[type=%q]`, JSONLDType)).EachWithBreak(func(i int, s *goquery.Selection) bool {
		raw := bytes.TrimSpace([]byte(s.Text()))
		if !json.Valid(raw) {
			bad = &gatito.ProcessorError{Message: fmt.Sprintf("JSON-LD block %d is not valid JSON", i)}
			return false
		}
		blocks = append(blocks, json.RawMessage(raw))
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return blocks, nil
}

// RewriteOrderLinks points every anchor marked with OrderLinkAttr at href
// and returns how many were changed.
func (p *HTMLProcessor) RewriteOrderLinks(page, href string) (string, int, error) {
	doc, err := p.parse(page)
	if err != nil {
		return "", 0, err
	}

	links := doc.Find("a[" + OrderLinkAttr + "]")
	links.SetAttr("href", href)

	out, err := p.render(doc)
	if err != nil {
		return "", 0, err
	}
	return out, links.Length(), nil
}

func scriptNode(text string, attrs ...html.Attribute) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr:     attrs,
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

// Verify HTMLProcessor implements PageProcessor
var _ PageProcessor = (*HTMLProcessor)(nil)
