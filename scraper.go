package coursedesc

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Selectors for the degree structure pages.
const (
	// structureLinkSelector matches the first link of the course listing.
	structureLinkSelector = ".no-bullet > li:first-child > a"
	// courseCellSelector matches the title cells of the course table.
	courseCellSelector = "td.title"
)

// defaultBaseURL is the root of the unibo degree pages.
const defaultBaseURL = "https://corsi.unibo.it"

// HTTP client tuning for corsi.unibo.it, which occasionally times out under
// load. Retries use resty's default exponential backoff.
const (
	httpTimeout    = 30 * time.Second
	httpRetryCount = 2
	httpRetryWait  = 2 * time.Second
)

// Teaching is a single course description scraped from its English page.
type Teaching struct {
	// URL of the English course page.
	URL string
	// Title as displayed on the course page.
	Title string
	// Description, trimmed to the learning outcomes and contents sections,
	// with paragraphs separated by blank lines.
	Description string
}

// DegreeYear holds everything scraped for one (degree, enrollment year) pair.
type DegreeYear struct {
	Year      int
	Teachings []Teaching
}

// Scraper collects course descriptions from degree structure pages.
type Scraper struct {
	client  *resty.Client
	cache   *pageCache
	log     *slog.Logger
	baseURL string
	now     func() time.Time
}

// ScraperOption configures a Scraper.
type ScraperOption func(*Scraper)

// WithBaseURL overrides the unibo base URL, mainly for tests.
func WithBaseURL(u string) ScraperOption {
	return func(s *Scraper) {
		s.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithCacheDir enables the on-disk page cache rooted at dir.
func WithCacheDir(dir string) ScraperOption {
	return func(s *Scraper) {
		s.cache = newPageCache(dir, 0)
	}
}

// WithScraperLogger sets the logger used for scraping progress.
func WithScraperLogger(l *slog.Logger) ScraperOption {
	return func(s *Scraper) {
		s.log = l
	}
}

// withClock overrides the clock used for academic year math in tests.
func withClock(now func() time.Time) ScraperOption {
	return func(s *Scraper) {
		s.now = now
	}
}

// NewScraper creates a Scraper with a retrying HTTP client.
func NewScraper(opts ...ScraperOption) *Scraper {
	s := &Scraper{
		client: resty.New().
			SetTimeout(httpTimeout).
			SetRetryCount(httpRetryCount).
			SetRetryWaitTime(httpRetryWait),
		log:     slog.Default(),
		baseURL: defaultBaseURL,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// get fetches a page, going through the cache when one is configured.
func (s *Scraper) get(ctx context.Context, url string) ([]byte, error) {
	if body, ok := s.cache.Get(url); ok {
		s.log.DebugContext(ctx, "cache hit", "url", url)
		return body, nil
	}

	res, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetching %s: server returned %s", url, res.Status())
	}

	body := res.Body()
	s.cache.Put(url, body)
	return body, nil
}

// document fetches a page and parses it.
func (s *Scraper) document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := s.get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return doc, nil
}

// ResolveDegree turns a Predegree into a Degree by inferring its level and
// unibo slug and discovering the per-year structure URLs.
func (s *Scraper) ResolveDegree(ctx context.Context, p Predegree) (Degree, error) {
	if err := p.Validate(); err != nil {
		return Degree{}, err
	}

	level := InferLevel(p.Name)
	slug := UniboSlug(p.Name, p.Code)

	return Degree{
		Name:     p.Name,
		Slug:     p.ID,
		YearURLs: s.discoverYearURLs(ctx, level, slug),
	}, nil
}

// discoverYearURLs visits the course listing page for each recent enrollment
// year and follows the first listing link. Years whose URL cannot be
// collected are left out of the result.
func (s *Scraper) discoverYearURLs(ctx context.Context, level, uniboSlug string) map[int]string {
	urls := make(map[int]string)

	for _, year := range EnrollmentYears(AcademicYear(s.now())) {
		url := fmt.Sprintf("%s/%s/%s/insegnamenti?year=%d", s.baseURL, level, uniboSlug, year)
		s.log.InfoContext(ctx, "visiting structure page", "url", url)

		doc, err := s.document(ctx, url)
		if err != nil {
			s.log.WarnContext(ctx, "skipping year", "year", year, "err", err)
			continue
		}
		href, ok := doc.Find(structureLinkSelector).First().Attr("href")
		if !ok {
			s.log.WarnContext(ctx, "no structure link", "year", year, "url", url)
			continue
		}
		s.log.InfoContext(ctx, "got structure link", "href", href)
		urls[year] = href
	}
	return urls
}

// ScrapeDegree scrapes every discovered year of a degree. Years and courses
// that fail are logged and skipped; partial output is acceptable.
func (s *Scraper) ScrapeDegree(ctx context.Context, d Degree) ([]DegreeYear, error) {
	years := make([]DegreeYear, 0, len(d.YearURLs))

	for _, year := range sortedKeys(d.YearURLs) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		teachings, err := s.scrapeYear(ctx, d.YearURLs[year])
		if err != nil {
			s.log.WarnContext(ctx, "skipping year",
				"degree", d.Slug, "year", year, "err", err)
			continue
		}
		years = append(years, DegreeYear{Year: year, Teachings: teachings})
	}
	return years, nil
}

// scrapeYear scrapes a yearly degree structure URL, returning one Teaching
// per course whose description page could be read.
func (s *Scraper) scrapeYear(ctx context.Context, url string) ([]Teaching, error) {
	s.log.InfoContext(ctx, "analysing structure page", "url", url)

	doc, err := s.document(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructurePage, err)
	}

	var teachings []Teaching
	doc.Find(courseCellSelector).Each(func(_ int, cell *goquery.Selection) {
		if ctx.Err() != nil {
			return
		}

		name := strings.TrimSpace(cell.Text())
		s.log.InfoContext(ctx, "visiting course", "name", name)

		href, ok := cell.ChildrenFiltered("a").First().Attr("href")
		if !ok {
			s.log.WarnContext(ctx, "missing course link", "name", name)
			return
		}

		teaching, err := s.scrapeTeaching(ctx, href)
		if err != nil {
			s.log.WarnContext(ctx, "cannot get description", "name", name, "err", err)
			return
		}
		teachings = append(teachings, teaching)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return teachings, nil
}

// sortedKeys returns the map keys in ascending order.
func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
