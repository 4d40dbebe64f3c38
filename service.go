package coursedesc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Stage directories under the work dir.
const (
	outputDirName  = "output"    // scrape stage output (.adoc)
	coursesDirName = "courses"   // convert stage input (downloaded artifact)
	siteDirName    = "site"      // convert stage output (html/pdf/adoc)
	artifactsName  = "artifacts" // artifact store root
)

// Service wires the three pipeline stages together around a shared work
// directory and artifact store.
type Service struct {
	cfg     *Config
	log     *slog.Logger
	scraper *Scraper
	store   *ArtifactStore
	pool    *ConverterPool
	group   *RunGroup
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used by all stages.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

// WithScraper injects a preconfigured scraper (e.g. by tests).
func WithScraper(sc *Scraper) ServiceOption {
	return func(s *Service) {
		s.scraper = sc
	}
}

// WithConverterPool injects a preconfigured converter pool (e.g. by tests).
func WithConverterPool(p *ConverterPool) ServiceOption {
	return func(s *Service) {
		s.pool = p
	}
}

// NewService creates a Service from a config. A nil config uses defaults.
func NewService(cfg *Config, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		cfg:   cfg,
		log:   slog.Default(),
		store: NewArtifactStore(filepath.Join(cfg.WorkDir, artifactsName)),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.group == nil {
		group := cfg.Publish.Group
		if group == "" {
			group = "pages"
		}
		s.group = NewRunGroup(group)
	}

	if s.scraper == nil {
		scraperOpts := []ScraperOption{WithScraperLogger(s.log)}
		if cfg.Scrape.BaseURL != "" {
			scraperOpts = append(scraperOpts, WithBaseURL(cfg.Scrape.BaseURL))
		}
		if cfg.Scrape.CacheDir != "" {
			scraperOpts = append(scraperOpts, WithCacheDir(cfg.Scrape.CacheDir))
		}
		s.scraper = NewScraper(scraperOpts...)
	}

	if s.pool == nil {
		timeout, err := cfg.ConvertTimeout()
		if err != nil {
			return nil, err
		}
		s.pool = NewConverterPool(ResolvePoolSize(cfg.Convert.Workers), WithTimeout(timeout))
	}

	return s, nil
}

// Close releases browser resources held by the converter pool.
func (s *Service) Close() error {
	if s.pool != nil {
		return s.pool.Close()
	}
	return nil
}

// Scrape runs the scrape stage: it loads the degree list, scrapes every
// degree, writes the AsciiDoc documents plus the index, and uploads them as
// the "courses" artifact. Degrees that fail to resolve are skipped with a
// warning, matching the partial-output behavior of the hosted pipeline.
func (s *Service) Scrape(ctx context.Context) error {
	predegrees, err := LoadPredegrees(s.cfg.Degrees)
	if err != nil {
		return err
	}

	var degrees []ScrapedDegree
	for _, p := range predegrees {
		if err := ctx.Err(); err != nil {
			return err
		}

		degree, err := s.scraper.ResolveDegree(ctx, p)
		if err != nil {
			s.log.WarnContext(ctx, "skipping degree", "id", p.ID, "err", err)
			continue
		}

		years, err := s.scraper.ScrapeDegree(ctx, degree)
		if err != nil {
			return fmt.Errorf("scraping degree %s: %w", degree.Slug, err)
		}
		degrees = append(degrees, ScrapedDegree{Degree: degree, Years: years})
	}

	outputDir := filepath.Join(s.cfg.WorkDir, outputDirName)
	writer := &Writer{OutputDir: outputDir}
	written, err := writer.WriteAll(degrees)
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "scrape stage finished", "documents", len(written))

	if _, err := s.store.Upload(ArtifactCourses, outputDir, "*.adoc"); err != nil {
		return err
	}
	return nil
}

// Convert runs the convert stage: it downloads the "courses" artifact,
// renders every document to HTML and (unless disabled) PDF in parallel,
// copies the AsciiDoc sources alongside, renders the extra Markdown pages,
// and uploads the assembled site as the "github-pages" artifact.
func (s *Service) Convert(ctx context.Context) error {
	coursesDir := filepath.Join(s.cfg.WorkDir, coursesDirName)
	manifest, err := s.store.Download(ArtifactCourses, coursesDir)
	if err != nil {
		return err
	}

	siteDir := filepath.Join(s.cfg.WorkDir, siteDirName)
	if err := os.RemoveAll(siteDir); err != nil {
		return fmt.Errorf("clearing site dir: %w", err)
	}

	if err := s.convertDocuments(ctx, manifest, coursesDir, siteDir); err != nil {
		return err
	}
	if err := s.renderExtraPages(ctx, siteDir); err != nil {
		return err
	}

	if _, err := s.store.Upload(ArtifactPages, siteDir); err != nil {
		return err
	}
	return nil
}

// convertDocuments renders every .adoc of the courses bundle into siteDir,
// fanning work out over the converter pool.
func (s *Service) convertDocuments(ctx context.Context, manifest *Manifest, coursesDir, siteDir string) error {
	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	workers := s.pool.Size()
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range jobs {
				if ctx.Err() != nil {
					continue
				}
				if err := s.convertDocument(ctx, coursesDir, siteDir, rel); err != nil {
					fail(fmt.Errorf("converting %s: %w", rel, err))
				}
			}
		}()
	}

	for _, f := range manifest.Files {
		if !strings.HasSuffix(f.Path, ".adoc") {
			continue
		}
		jobs <- filepath.FromSlash(f.Path)
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.log.InfoContext(ctx, "convert stage finished",
		"documents", len(manifest.Files), "workers", workers)
	return nil
}

// convertDocument renders one .adoc file to its HTML and PDF renditions and
// copies the source next to them.
func (s *Service) convertDocument(ctx context.Context, coursesDir, siteDir, rel string) error {
	data, err := os.ReadFile(filepath.Join(coursesDir, rel)) // #nosec G304 -- path from manifest
	if err != nil {
		return err
	}

	conv := s.pool.Acquire()
	defer s.pool.Release(conv)

	result, err := conv.Convert(ctx, Input{
		Document: string(data),
		Format:   FormatAsciiDoc,
		HTMLOnly: s.cfg.Convert.HTMLOnly,
	})
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(rel, ".adoc")
	htmlPath := filepath.Join(siteDir, base+".html")
	if err := writeSiteFile(htmlPath, []byte(result.HTML)); err != nil {
		return err
	}
	if result.PDF != nil {
		if err := writeSiteFile(filepath.Join(siteDir, base+".pdf"), result.PDF); err != nil {
			return err
		}
	}
	return writeSiteFile(filepath.Join(siteDir, rel), data)
}

// renderExtraPages converts the configured Markdown pages into site HTML.
func (s *Service) renderExtraPages(ctx context.Context, siteDir string) error {
	for _, page := range s.cfg.Convert.Pages {
		data, err := os.ReadFile(page) // #nosec G304 -- page path is user-provided
		if err != nil {
			return fmt.Errorf("reading page %s: %w", page, err)
		}

		base := strings.TrimSuffix(filepath.Base(page), filepath.Ext(page))

		conv := s.pool.Acquire()
		result, err := conv.Convert(ctx, Input{
			Document: string(data),
			Format:   FormatMarkdown,
			Title:    base,
			HTMLOnly: true,
		})
		s.pool.Release(conv)
		if err != nil {
			return fmt.Errorf("converting page %s: %w", page, err)
		}

		if err := writeSiteFile(filepath.Join(siteDir, base+".html"), []byte(result.HTML)); err != nil {
			return err
		}
	}
	return nil
}

// Publish runs the publish stage: it verifies the deploy gate, syncs the
// "github-pages" artifact into the target directory, and reports the site
// URL. The previous deployment is replaced wholesale, so within a
// concurrency group the newest run wins.
func (s *Service) Publish(ctx context.Context) error {
	if s.cfg.Publish.Ref != s.cfg.Publish.DeployRef {
		return fmt.Errorf("%w: %s (deploys only from %s)",
			ErrRefNotDeployable, s.cfg.Publish.Ref, s.cfg.Publish.DeployRef)
	}

	if _, err := s.store.Manifest(ArtifactPages); err != nil {
		if errors.Is(err, ErrArtifactNotFound) {
			return ErrNoSiteArtifact
		}
		return err
	}

	target := s.cfg.Publish.TargetDir
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("clearing deploy target: %w", err)
	}

	manifest, err := s.store.Download(ArtifactPages, target)
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "site deployed",
		"target", target,
		"files", len(manifest.Files),
		"url", s.cfg.Publish.BaseURL)
	return nil
}

// writeSiteFile writes a site file, creating parent directories as needed.
func writeSiteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
