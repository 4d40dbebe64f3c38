package coursedesc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// testClock pins the academic year to 2024, so the scraped enrollment years
// are 2020-2022.
func testClock() time.Time {
	return time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
}

// newFakeUnibo serves a minimal corsi.unibo.it lookalike: a course listing
// per year, one course with a description page and one course cell without a
// link.
func newFakeUnibo(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/laurea/informatica/insegnamenti", func(w http.ResponseWriter, r *http.Request) {
		year := r.URL.Query().Get("year")
		fmt.Fprintf(w, `<html><body>
<ul class="no-bullet">
<li><a href="%s/structure/%s">Course structure</a></li>
<li><a href="%s/other">Other</a></li>
</ul>
</body></html>`, server.URL, year, server.URL)
	})

	mux.HandleFunc("/structure/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body><table>
<tr><td class="title"><a href="%s/course/algorithms"> ALGORITHMS </a></td></tr>
<tr><td class="title"> ORPHAN COURSE </td></tr>
</table></body></html>`, server.URL)
	})

	mux.HandleFunc("/course/algorithms", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body><ul>
<li class="language-it"><a href="%s/course/algorithms">Italiano</a></li>
<li class="language-en"><a href="%s/course/algorithms/en">English</a></li>
</ul></body></html>`, server.URL, server.URL)
	})

	mux.HandleFunc("/course/algorithms/en", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
<div id="u-content-intro"><h1>ALGORITHMS AND DATA STRUCTURES</h1></div>
<div class="description-text">Learning outcomes
The student can design efficient algorithms.
Readings
Lecture notes.</div>
</body></html>`)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestResolveDegree(t *testing.T) {
	t.Parallel()

	server := newFakeUnibo(t)
	s := NewScraper(WithBaseURL(server.URL), withClock(testClock))

	degree, err := s.ResolveDegree(context.Background(), Predegree{
		ID: "informatica", Name: "Informatica", Code: "8009/000",
	})
	if err != nil {
		t.Fatalf("ResolveDegree() error = %v", err)
	}

	if degree.Name != "Informatica" || degree.Slug != "informatica" {
		t.Errorf("degree = %+v", degree)
	}

	want := map[int]string{
		2020: server.URL + "/structure/2020",
		2021: server.URL + "/structure/2021",
		2022: server.URL + "/structure/2022",
	}
	if diff := cmp.Diff(want, degree.YearURLs); diff != "" {
		t.Errorf("YearURLs mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDegree_InvalidPredegree(t *testing.T) {
	t.Parallel()

	s := NewScraper(withClock(testClock))
	_, err := s.ResolveDegree(context.Background(), Predegree{Name: "Informatica"})
	if err == nil {
		t.Fatal("ResolveDegree() accepted a predegree with empty fields")
	}
}

func TestScrapeDegree(t *testing.T) {
	t.Parallel()

	server := newFakeUnibo(t)
	s := NewScraper(WithBaseURL(server.URL), withClock(testClock))

	degree := Degree{
		Name: "Informatica",
		Slug: "informatica",
		YearURLs: map[int]string{
			2021: server.URL + "/structure/2021",
			2020: server.URL + "/structure/2020",
		},
	}

	years, err := s.ScrapeDegree(context.Background(), degree)
	if err != nil {
		t.Fatalf("ScrapeDegree() error = %v", err)
	}

	if len(years) != 2 {
		t.Fatalf("got %d years, want 2", len(years))
	}
	// Years come back in ascending order regardless of map order.
	if years[0].Year != 2020 || years[1].Year != 2021 {
		t.Errorf("year order = %d, %d", years[0].Year, years[1].Year)
	}

	for _, y := range years {
		// The orphan cell has no link and must be skipped.
		if len(y.Teachings) != 1 {
			t.Fatalf("year %d: got %d teachings, want 1", y.Year, len(y.Teachings))
		}
		teaching := y.Teachings[0]
		if teaching.Title != "ALGORITHMS AND DATA STRUCTURES" {
			t.Errorf("title = %q", teaching.Title)
		}
		if teaching.URL != server.URL+"/course/algorithms/en" {
			t.Errorf("url = %q", teaching.URL)
		}
		if teaching.Description != "Learning outcomes\n\nThe student can design efficient algorithms" {
			t.Errorf("description = %q", teaching.Description)
		}
	}
}

func TestScrapeDegree_Cancelled(t *testing.T) {
	t.Parallel()

	server := newFakeUnibo(t)
	s := NewScraper(WithBaseURL(server.URL), withClock(testClock))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ScrapeDegree(ctx, Degree{
		Slug:     "informatica",
		YearURLs: map[int]string{2020: server.URL + "/structure/2020"},
	})
	if err == nil {
		t.Fatal("ScrapeDegree() with cancelled context returned nil error")
	}
}

func TestScraperCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "<html><body>cached</body></html>")
	}))
	t.Cleanup(server.Close)

	s := NewScraper(WithCacheDir(t.TempDir()), withClock(testClock))

	ctx := context.Background()
	for range 3 {
		if _, err := s.get(ctx, server.URL+"/page"); err != nil {
			t.Fatalf("get() error = %v", err)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1 (cache misses)", got)
	}
}

func TestScraper_ServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	s := NewScraper(withClock(testClock))
	if _, err := s.get(context.Background(), server.URL); err == nil {
		t.Fatal("get() on 500 response returned nil error")
	}
}
