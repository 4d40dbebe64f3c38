package coursedesc

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// adocHTMLTemplate wraps the rendered body in a complete HTML5 document.
// 1: document title, 2: body.
const adocHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>`

// chromaStyle is the highlighting style for source listings.
const chromaStyle = "github"

// Inline AsciiDoc macros: link:target[label], xref:target[label], and
// labelled bare URLs like https://example.org[label].
var (
	linkMacroPattern = regexp.MustCompile(`(?:link|xref):([^\s\[]+)\[([^\]]*)\]`)
	urlMacroPattern  = regexp.MustCompile(`(https?://[^\s\[\]]+)\[([^\]]*)\]`)
)

// adocConverter renders the AsciiDoc subset the writer emits (document
// title, section headings, link macros, paragraphs, bullet lists, and
// [source] listing blocks) as standalone HTML.
type adocConverter struct{}

// newAdocConverter creates an adocConverter.
func newAdocConverter() *adocConverter {
	return &adocConverter{}
}

// ToHTML converts AsciiDoc content to a standalone HTML5 document.
func (c *adocConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyDocument
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines := strings.Split(content, "\n")
	title := "Document"
	body := strings.Builder{}

	var paragraph []string
	var listItems []string

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		text := renderInline(strings.Join(paragraph, " "))
		fmt.Fprintf(&body, "<p>%s</p>\n", text)
		paragraph = nil
	}
	flushList := func() {
		if len(listItems) == 0 {
			return
		}
		body.WriteString("<ul>\n")
		for _, item := range listItems {
			fmt.Fprintf(&body, "<li>%s</li>\n", renderInline(item))
		}
		body.WriteString("</ul>\n")
		listItems = nil
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")

		switch {
		case line == "":
			flushParagraph()
			flushList()

		case strings.HasPrefix(line, "[source"):
			flushParagraph()
			flushList()
			lang := parseListingLang(line)
			code, next := collectListing(lines, i+1)
			highlighted, err := highlightListing(code, lang)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrHTMLRender, err)
			}
			body.WriteString(highlighted)
			i = next

		case strings.HasPrefix(line, "= ") && body.Len() == 0 && len(paragraph) == 0:
			title = strings.TrimSpace(line[2:])
			fmt.Fprintf(&body, "<h1>%s</h1>\n", renderInline(title))

		case strings.HasPrefix(line, "==== "):
			flushParagraph()
			flushList()
			fmt.Fprintf(&body, "<h4>%s</h4>\n", renderInline(line[5:]))

		case strings.HasPrefix(line, "=== "):
			flushParagraph()
			flushList()
			fmt.Fprintf(&body, "<h3>%s</h3>\n", renderInline(line[4:]))

		case strings.HasPrefix(line, "== "):
			flushParagraph()
			flushList()
			fmt.Fprintf(&body, "<h2>%s</h2>\n", renderInline(line[3:]))

		case strings.HasPrefix(line, "* "):
			flushParagraph()
			listItems = append(listItems, strings.TrimSpace(line[2:]))

		default:
			flushList()
			paragraph = append(paragraph, strings.TrimSpace(line))
		}
	}
	flushParagraph()
	flushList()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf(adocHTMLTemplate, html.EscapeString(stripInline(title)), body.String()), nil
}

// renderInline escapes a text span and expands the inline link macros.
// xref targets pointing at .adoc documents are rewritten to their .html
// renditions, since that is what the site serves.
func renderInline(text string) string {
	escaped := html.EscapeString(text)

	escaped = linkMacroPattern.ReplaceAllStringFunc(escaped, func(m string) string {
		groups := linkMacroPattern.FindStringSubmatch(m)
		target, label := groups[1], groups[2]
		if strings.HasPrefix(m, "xref:") {
			target = strings.TrimSuffix(target, ".adoc") + ".html"
		}
		if label == "" {
			label = target
		}
		return fmt.Sprintf(`<a href="%s">%s</a>`, target, label)
	})

	escaped = urlMacroPattern.ReplaceAllString(escaped, `<a href="$1">$2</a>`)
	return escaped
}

// stripInline reduces inline macros to their labels, for plain-text contexts
// like the <title> element.
func stripInline(text string) string {
	text = linkMacroPattern.ReplaceAllString(text, "$2")
	return urlMacroPattern.ReplaceAllString(text, "$2")
}

// parseListingLang extracts the language from a [source,lang] attribute line.
func parseListingLang(line string) string {
	line = strings.Trim(line, "[]")
	parts := strings.SplitN(line, ",", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// collectListing gathers the body of a ---- delimited block starting at
// index start. Returns the code and the index of the closing delimiter.
func collectListing(lines []string, start int) (code string, next int) {
	i := start
	// Skip the opening delimiter.
	if i < len(lines) && strings.HasPrefix(lines[i], "----") {
		i++
	}
	var block []string
	for ; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "----") {
			break
		}
		block = append(block, lines[i])
	}
	return strings.Join(block, "\n"), i
}

// highlightListing renders a source listing with chroma. Unknown languages
// fall back to the plain-text lexer.
func highlightListing(code, lang string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	style := styles.Get(chromaStyle)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	out := strings.Builder{}
	formatter := chromahtml.New(chromahtml.WithClasses(false))
	if err := formatter.Format(&out, style, iterator); err != nil {
		return "", err
	}
	out.WriteString("\n")
	return out.String(), nil
}
