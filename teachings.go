package coursedesc

import (
	"context"
	"fmt"
	"strings"
)

// Selectors for the teaching pages.
const (
	// teachingTitleSelector matches the course title heading.
	teachingTitleSelector = "div#u-content-intro>h1"
	// englishVariantSelector matches the language switcher entry pointing at
	// the English rendition of the page.
	englishVariantSelector = "li.language-en"
	// descriptionSelector matches the free-form description block.
	descriptionSelector = "div.description-text"
)

// descriptionStartMarker is where the useful part of a description begins.
const descriptionStartMarker = "Learning outcomes"

// descriptionEndMarkers maps course title substrings to the heading that
// terminates the useful part of the description. "*" is the fallback for
// pages without a dedicated entry.
var descriptionEndMarkers = map[string]string{
	"Numerical Computing":    "Teaching",
	"History of Informatics": "Office",
	"*":                      "Readings",
}

// scrapeTeaching follows a course URL from the structure page, switches to
// the English rendition, and extracts its title and trimmed description.
func (s *Scraper) scrapeTeaching(ctx context.Context, courseURL string) (Teaching, error) {
	englishURL, err := s.englishCourseURL(ctx, courseURL)
	if err != nil {
		return Teaching{}, err
	}

	doc, err := s.document(ctx, englishURL)
	if err != nil {
		return Teaching{}, err
	}

	title := strings.TrimSpace(doc.Find(teachingTitleSelector).First().Text())
	if title == "" {
		return Teaching{}, fmt.Errorf("%w: %s", ErrTeachingTitle, englishURL)
	}

	full := doc.Find(descriptionSelector).First().Text()
	if full == "" {
		return Teaching{}, fmt.Errorf("%w: %s", ErrTeachingDesc, englishURL)
	}

	desc, err := trimDescription(title, full)
	if err != nil {
		return Teaching{}, fmt.Errorf("%s: %w", englishURL, err)
	}

	return Teaching{
		URL:         englishURL,
		Title:       title,
		Description: desc,
	}, nil
}

// englishCourseURL finds the URL of the English rendition of a course page.
// The language switcher entry embeds the URL in its inner HTML, so the href
// is carved out between "http" and the closing quote.
func (s *Scraper) englishCourseURL(ctx context.Context, courseURL string) (string, error) {
	if courseURL == "" {
		return "", nil
	}

	doc, err := s.document(ctx, courseURL)
	if err != nil {
		return "", err
	}

	entry, err := doc.Find(englishVariantSelector).First().Html()
	if err != nil || entry == "" {
		return "", fmt.Errorf("%w: %s", ErrEnglishVariant, courseURL)
	}

	start := strings.Index(entry, "http")
	if start < 0 {
		start = 0
	}
	entry = entry[start:]
	end := strings.IndexByte(entry, '"')
	if end < 0 {
		end = 0
	}
	return entry[:end], nil
}

// trimDescription cuts the raw description text down to the section between
// the learning outcomes heading and the title-specific end marker, then
// collapses whitespace-only lines into paragraph breaks.
func trimDescription(title, full string) (string, error) {
	start := strings.Index(full, descriptionStartMarker)
	if start < 0 {
		start = len(full)
	}

	end := -1
	for pattern, marker := range descriptionEndMarkers {
		if pattern == "*" || !strings.Contains(title, pattern) {
			continue
		}
		if i := strings.Index(full, marker); i >= 0 {
			end = i
		} else {
			end = len(full)
		}
		break
	}
	if end < 0 {
		if i := strings.Index(full, descriptionEndMarkers["*"]); i >= 0 {
			end = i
		}
	}
	if end < 0 {
		return "", ErrNoEndMarker
	}
	if end-2 < start {
		end = start + 2
	}

	var paragraphs []string
	for _, line := range strings.Split(full[start:end-2], "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}
