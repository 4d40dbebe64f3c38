package coursedesc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cartabinaria/course-description-merged/internal/fileutil"
)

// IndexFile is the name of the site index document.
const IndexFile = "index.adoc"

// indexHeader opens the index document.
const indexHeader = `= Unified Course Descriptions for Some UNIBO Degrees

https://cartabinaria.students.cs.unibo.it/en/wiki/web-scraper/course-description-merged/[Documentation]

`

// renderFixups is applied in order to every rendered teaching block. It
// translates teaching names whose English course page still carries the
// Italian title, and promotes the description section labels to headings.
var renderFixups = []struct{ find, replace string }{
	{"BASI DI DATI", "DATABASES"},
	{"INTRODUZIONE ALL'APPRENDIMENTO AUTOMATICO", "Introduction to machine learning"},
	{"FONDAMENTI DI", ""},
	{"Learning outcomes", "=== Learning outcomes"},
	{"Teaching contents", "=== Teaching contents"},
}

// ScrapedDegree pairs a degree with its scraped years.
type ScrapedDegree struct {
	Degree
	Years []DegreeYear
}

// DocumentBase returns the base name (no extension) of the document for a
// (degree slug, year) pair.
func DocumentBase(slug string, year int) string {
	return fmt.Sprintf("degree-%s-%d", slug, year)
}

// Writer renders scraped degrees as AsciiDoc files in an output directory.
type Writer struct {
	// OutputDir is created on demand.
	OutputDir string
}

// WriteAll writes one document per (degree, year) plus the index. Returns
// the paths of every file written, index included.
func (w *Writer) WriteAll(degrees []ScrapedDegree) ([]string, error) {
	if err := fileutil.EnsureDir(w.OutputDir); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	var written []string
	index := strings.Builder{}
	index.WriteString(indexHeader)

	for i, d := range degrees {
		if i > 0 {
			index.WriteString("\n")
		}
		for _, y := range d.Years {
			name := DocumentBase(d.Slug, y.Year) + ".adoc"
			path := filepath.Join(w.OutputDir, name)
			content := RenderYearDocument(d.Degree, y)

			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				return nil, fmt.Errorf("writing %s: %w", path, err)
			}
			written = append(written, path)
			index.WriteString(renderIndexEntry(d.Degree, y.Year))
		}
	}

	indexPath := filepath.Join(w.OutputDir, IndexFile)
	if err := os.WriteFile(indexPath, []byte(index.String()), 0o600); err != nil {
		return nil, fmt.Errorf("writing index: %w", err)
	}
	return append(written, indexPath), nil
}

// RenderYearDocument renders the full AsciiDoc document for one year of a
// degree: a document title followed by one section per teaching.
func RenderYearDocument(d Degree, y DegreeYear) string {
	doc := strings.Builder{}
	fmt.Fprintf(&doc, "= %s (%d)\n\n", d.Name, y.Year)
	for _, t := range y.Teachings {
		doc.WriteString(renderTeaching(d.Slug, y.Year, t))
	}
	return doc.String()
}

// renderTeaching renders a single course section, with links to the PDF and
// AsciiDoc renditions of the document that contains it.
func renderTeaching(slug string, year int, t Teaching) string {
	base := DocumentBase(slug, year)
	block := fmt.Sprintf(
		"\n== %s[%s]\n\nlink:%s.pdf[PDF], xref:%s.adoc[ADOC].\n\n%s",
		t.URL, t.Title, base, base, strings.TrimSpace(t.Description),
	)
	for _, f := range renderFixups {
		block = strings.ReplaceAll(block, f.find, f.replace)
	}
	return block + "\n"
}

// renderIndexEntry renders the index section linking the three renditions of
// a year document.
func renderIndexEntry(d Degree, year int) string {
	base := DocumentBase(d.Slug, year)
	return fmt.Sprintf(
		"\n== %s (%d)\n\nxref:%s.adoc[web] | link:%s.pdf[PDF] | link:%s.adoc[Asciidoc]\n\n",
		d.Name, year, base, base, base,
	)
}
