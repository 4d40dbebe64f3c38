package coursedesc

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestAdocToHTML_Document(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"= Informatica (2021)",
		"",
		"== https://example.org/algo/en[ALGORITHMS]",
		"",
		"link:degree-informatica-2021.pdf[PDF], xref:degree-informatica-2021.adoc[ADOC].",
		"",
		"=== Learning outcomes",
		"",
		"The student masters algorithms",
		"and data structures.",
		"",
		"* greedy",
		"* dynamic programming",
		"",
	}, "\n")

	c := newAdocConverter()
	out, err := c.ToHTML(context.Background(), content)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}

	for _, want := range []string{
		"<title>Informatica (2021)</title>",
		"<h1>Informatica (2021)</h1>",
		`<h2><a href="https://example.org/algo/en">ALGORITHMS</a></h2>`,
		`<a href="degree-informatica-2021.pdf">PDF</a>`,
		// xref targets are rewritten to the rendition the site serves.
		`<a href="degree-informatica-2021.html">ADOC</a>`,
		"<h3>Learning outcomes</h3>",
		"<p>The student masters algorithms and data structures.</p>",
		"<li>greedy</li>",
		"<li>dynamic programming</li>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAdocToHTML_SourceListing(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"= Snippets",
		"",
		"[source,sql]",
		"----",
		"SELECT * FROM courses;",
		"----",
		"",
		"After the listing.",
	}, "\n")

	c := newAdocConverter()
	out, err := c.ToHTML(context.Background(), content)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}

	// Chroma emits inline-styled pre blocks when classes are disabled.
	if !strings.Contains(out, "<pre") {
		t.Errorf("listing not rendered as <pre>:\n%s", out)
	}
	if !strings.Contains(out, "SELECT") {
		t.Errorf("listing content missing:\n%s", out)
	}
	if !strings.Contains(out, "<p>After the listing.</p>") {
		t.Errorf("paragraph after listing missing:\n%s", out)
	}
}

func TestAdocToHTML_EscapesMarkup(t *testing.T) {
	t.Parallel()

	c := newAdocConverter()
	out, err := c.ToHTML(context.Background(), "= T\n\nA <script> tag & friends.\n")
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("markup not escaped:\n%s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("escaped markup missing:\n%s", out)
	}
}

func TestAdocToHTML_Empty(t *testing.T) {
	t.Parallel()

	c := newAdocConverter()
	if _, err := c.ToHTML(context.Background(), "  \n \t\n"); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("error = %v, want %v", err, ErrEmptyDocument)
	}
}

func TestAdocToHTML_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newAdocConverter()
	if _, err := c.ToHTML(ctx, "= T\n\nbody\n"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want %v", err, context.Canceled)
	}
}
