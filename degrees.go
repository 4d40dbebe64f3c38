package coursedesc

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Degree level slugs used by corsi.unibo.it.
const (
	LevelBachelor = "laurea"
	LevelMaster   = "magistrale"
)

// Degree codes with non-standard unibo slugs.
const (
	// CS Engineering keeps its PascalCase name.
	csEngineeringCode = "9254/000"
	// AI uses a kebab-case slug.
	artificialIntelligenceCode = "9063/000"
)

// Predegree is the degree metadata shipped in the config submodule. It needs
// preprocessing (level inference, slug derivation, URL discovery) before it
// becomes the metadata the scraper requires.
type Predegree struct {
	// ID is the unique kebab-case name used by Cartabinaria software to
	// refer to the degree.
	ID string `json:"id"`
	// Name is the human-readable name of the degree.
	Name string `json:"name"`
	// Code is the unique code used by Unibo to refer to the degree, usually
	// in the format 1234/567.
	Code string `json:"code"`
}

// Validate checks that no field is empty.
func (p Predegree) Validate() error {
	if p.ID == "" || p.Name == "" || p.Code == "" {
		return fmt.Errorf("%w: %+v", ErrEmptyPredegree, p)
	}
	return nil
}

// Degree is the metadata necessary for the scraping process. Part of it is
// derived from the current clock, so it cannot live in the config submodule.
type Degree struct {
	// Name is the human-readable name of the degree.
	Name string
	// Slug is the kebab-case identifier used for output file names.
	Slug string
	// YearURLs maps each recent enrollment year to the URL of the course
	// listing for students enrolled in it. The key is the solar year the
	// academic year started in.
	YearURLs map[int]string
}

// LoadPredegrees reads the degree list from a JSON config file.
func LoadPredegrees(path string) ([]Predegree, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDegreesNotFound, path)
		}
		return nil, fmt.Errorf("reading degrees config: %w", err)
	}

	var predegrees []Predegree
	if err := json.Unmarshal(data, &predegrees); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegreesParse, err)
	}
	return predegrees, nil
}

// slugStripPattern strips connectives and level words from a degree name
// before deriving its unibo slug.
var slugStripPattern = regexp.MustCompile(`( (e|per il|in) )|Magistrale|Master`)

// InferLevel infers a degree level slug from a human-readable degree name.
func InferLevel(name string) string {
	if strings.Contains(name, "Magistrale") || strings.Contains(name, "Master") {
		return LevelMaster
	}
	return LevelBachelor
}

// UniboSlug derives the slug used by unibo.it for a degree from its name and
// code. A couple of degrees have hardcoded exceptions to the usual
// lowercase-and-join rule.
func UniboSlug(name, code string) string {
	s := strings.TrimSpace(slugStripPattern.ReplaceAllString(name, ""))
	if code != csEngineeringCode {
		s = strings.ToLower(s)
	}
	separator := ""
	if code == artificialIntelligenceCode {
		separator = "-"
	}
	return strings.ReplaceAll(s, " ", separator)
}
