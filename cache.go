package coursedesc

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/cartabinaria/course-description-merged/internal/fileutil"
)

// defaultCacheMaxAge keeps cached pages for a day; course listings change
// rarely, but a stale description should never survive a monthly run.
const defaultCacheMaxAge = 24 * time.Hour

// pageCache is an on-disk cache for scraped pages, keyed by URL. It lets
// re-runs skip network fetches for pages already seen within maxAge.
type pageCache struct {
	dir    string
	maxAge time.Duration
}

// newPageCache creates a cache rooted at dir. An empty dir disables caching.
func newPageCache(dir string, maxAge time.Duration) *pageCache {
	if maxAge <= 0 {
		maxAge = defaultCacheMaxAge
	}
	return &pageCache{dir: dir, maxAge: maxAge}
}

// key hashes the URL into a stable file name.
func (c *pageCache) key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:]) + ".html"
}

// Get returns the cached body for url, or ok=false on miss or expiry.
func (c *pageCache) Get(url string) (body []byte, ok bool) {
	if c == nil || c.dir == "" {
		return nil, false
	}

	path := filepath.Join(c.dir, c.key(url))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.maxAge {
		_ = os.Remove(path)
		return nil, false
	}

	body, err = os.ReadFile(path) // #nosec G304 -- path derived from hash
	if err != nil {
		return nil, false
	}
	return body, true
}

// Put stores the body for url. Failures are ignored: the cache is an
// optimization, never a correctness requirement.
func (c *pageCache) Put(url string, body []byte) {
	if c == nil || c.dir == "" {
		return
	}
	if err := fileutil.EnsureDir(c.dir); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(c.dir, c.key(url)), body, 0o600)
}
