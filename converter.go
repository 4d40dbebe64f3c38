package coursedesc

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Supported document formats.
const (
	FormatAsciiDoc = "adoc"
	FormatMarkdown = "md"
)

// ErrInvalidFormat is returned for unsupported input formats.
var ErrInvalidFormat = errors.New("invalid document format")

// defaultTimeout bounds a single PDF rendering.
const defaultTimeout = 30 * time.Second

// Input contains conversion parameters.
type Input struct {
	Document string // AsciiDoc or Markdown content (required)
	Format   string // "adoc" (default) or "md"
	Title    string // page title for Markdown pages
	HTMLOnly bool   // skip PDF generation
}

// Result contains the conversion output. HTML is always present; PDF is nil
// when Input.HTMLOnly was set.
type Result struct {
	HTML string
	PDF  []byte
}

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout time.Duration
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithTimeout sets the PDF rendering timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) ConverterOption {
	if d <= 0 {
		panic("coursedesc: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// withPDFConverter injects a PDF backend, used by tests to avoid launching
// a browser.
func withPDFConverter(p pdfConverter) ConverterOption {
	return func(c *Converter) {
		c.pdf = p
	}
}

// Converter renders a single document to HTML and PDF.
type Converter struct {
	cfg  converterConfig
	adoc *adocConverter
	md   *markdownConverter
	pdf  pdfConverter
}

// NewConverter creates a Converter with default configuration.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{
		cfg:  converterConfig{timeout: defaultTimeout},
		adoc: newAdocConverter(),
		md:   newMarkdownConverter(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Create PDF converter if not injected (e.g., by tests)
	if c.pdf == nil {
		c.pdf = newRodConverter(c.cfg.timeout)
	}
	return c
}

// Convert renders the document to HTML and, unless HTMLOnly is set, to PDF.
func (c *Converter) Convert(ctx context.Context, input Input) (Result, error) {
	if input.Document == "" {
		return Result{}, ErrEmptyDocument
	}

	var htmlContent string
	var err error

	switch input.Format {
	case "", FormatAsciiDoc:
		htmlContent, err = c.adoc.ToHTML(ctx, input.Document)
	case FormatMarkdown:
		htmlContent, err = c.md.ToHTML(ctx, input.Title, input.Document)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidFormat, input.Format)
	}
	if err != nil {
		return Result{}, fmt.Errorf("converting to HTML: %w", err)
	}

	if input.HTMLOnly {
		return Result{HTML: htmlContent}, nil
	}

	pdfBytes, err := c.pdf.ToPDF(ctx, htmlContent)
	if err != nil {
		return Result{}, fmt.Errorf("converting to PDF: %w", err)
	}

	return Result{HTML: htmlContent, PDF: pdfBytes}, nil
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.pdf != nil {
		return c.pdf.Close()
	}
	return nil
}
