package coursedesc

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cartabinaria/course-description-merged/internal/fileutil"
	"github.com/cartabinaria/course-description-merged/internal/yamlutil"
)

// Artifact names used by the pipeline.
const (
	// ArtifactCourses carries the scraped .adoc documents.
	ArtifactCourses = "courses"
	// ArtifactPages carries the assembled static site.
	ArtifactPages = "github-pages"
)

// manifestFile is the manifest name inside each bundle.
const manifestFile = "manifest.yaml"

// Manifest describes the contents of an artifact bundle.
type Manifest struct {
	Name    string         `yaml:"name"`
	Created time.Time      `yaml:"created"`
	Files   []ManifestFile `yaml:"files"`
}

// ManifestFile records one file of a bundle.
type ManifestFile struct {
	Path   string `yaml:"path"` // relative to the bundle root
	Size   int64  `yaml:"size"`
	SHA256 string `yaml:"sha256"`
}

// ArtifactStore keeps named artifact bundles under a root directory, one
// subdirectory per bundle. Bundles are opaque beyond pattern matching: the
// store enforces no schema over their contents.
type ArtifactStore struct {
	root string
}

// NewArtifactStore creates a store rooted at root.
func NewArtifactStore(root string) *ArtifactStore {
	return &ArtifactStore{root: root}
}

// bundleDir returns the directory of a named bundle.
func (s *ArtifactStore) bundleDir(name string) string {
	return filepath.Join(s.root, name)
}

// Upload copies the files of dir matching any of the glob patterns into a
// named bundle, replacing a previous bundle of the same name. Empty patterns
// match everything. Relative paths inside dir are preserved.
func (s *ArtifactStore) Upload(name, dir string, patterns ...string) (*Manifest, error) {
	files, err := matchFiles(dir, patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrArtifactEmpty, name, dir)
	}

	// Replace semantics: a re-run of a stage overwrites its own output.
	dest := s.bundleDir(name)
	if err := os.RemoveAll(dest); err != nil {
		return nil, fmt.Errorf("replacing artifact %s: %w", name, err)
	}
	if err := fileutil.EnsureDir(dest); err != nil {
		return nil, fmt.Errorf("creating artifact dir: %w", err)
	}

	manifest := &Manifest{Name: name, Created: time.Now().UTC()}
	for _, rel := range files {
		src := filepath.Join(dir, rel)
		dst := filepath.Join(dest, rel)

		sum, size, err := fileutil.CopyFile(src, dst)
		if err != nil {
			return nil, fmt.Errorf("copying %s into artifact %s: %w", rel, name, err)
		}
		manifest.Files = append(manifest.Files, ManifestFile{
			Path:   filepath.ToSlash(rel),
			Size:   size,
			SHA256: sum,
		})
	}

	data, err := yamlutil.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest for %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dest, manifestFile), data, 0o600); err != nil {
		return nil, fmt.Errorf("writing manifest for %s: %w", name, err)
	}
	return manifest, nil
}

// Download copies a named bundle into dest, verifying file checksums against
// the manifest.
func (s *ArtifactStore) Download(name, dest string) (*Manifest, error) {
	manifest, err := s.Manifest(name)
	if err != nil {
		return nil, err
	}

	if err := fileutil.EnsureDir(dest); err != nil {
		return nil, fmt.Errorf("creating download dir: %w", err)
	}

	src := s.bundleDir(name)
	for _, f := range manifest.Files {
		rel := filepath.FromSlash(f.Path)
		sum, _, err := fileutil.CopyFile(filepath.Join(src, rel), filepath.Join(dest, rel))
		if err != nil {
			return nil, fmt.Errorf("extracting %s from artifact %s: %w", f.Path, name, err)
		}
		if sum != f.SHA256 {
			return nil, fmt.Errorf("artifact %s: checksum mismatch for %s", name, f.Path)
		}
	}
	return manifest, nil
}

// Manifest reads the manifest of a named bundle.
func (s *ArtifactStore) Manifest(name string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.bundleDir(name), manifestFile)) // #nosec G304 -- path rooted in store
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
		}
		return nil, fmt.Errorf("reading manifest for %s: %w", name, err)
	}

	var manifest Manifest
	if err := yamlutil.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestParse, name, err)
	}
	return &manifest, nil
}

// Prune removes bundles older than maxAge, always keeping the keep most
// recent ones. A zero maxAge disables age-based pruning.
func (s *ArtifactStore) Prune(maxAge time.Duration, keep int) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("listing artifact store: %w", err)
	}

	type bundle struct {
		name    string
		created time.Time
	}
	var bundles []bundle
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := s.Manifest(e.Name())
		if err != nil {
			continue
		}
		bundles = append(bundles, bundle{name: e.Name(), created: m.Created})
	}

	// Newest first.
	slices.SortFunc(bundles, func(a, b bundle) int {
		return b.created.Compare(a.created)
	})

	for i, b := range bundles {
		if i < keep {
			continue
		}
		if maxAge > 0 && time.Since(b.created) <= maxAge {
			continue
		}
		if err := os.RemoveAll(s.bundleDir(b.name)); err != nil {
			return fmt.Errorf("pruning artifact %s: %w", b.name, err)
		}
	}
	return nil
}

// matchFiles walks dir and returns the relative paths of regular files
// matching any pattern. Patterns are matched against base names, so "*.adoc"
// matches at any depth.
func matchFiles(dir string, patterns []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !matchesAny(d.Name(), patterns) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	slices.Sort(files)
	return files, nil
}

// matchesAny reports whether the name matches any glob pattern. Empty
// patterns match everything.
func matchesAny(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
