package coursedesc

import "errors"

// Sentinel errors for library operations.
var (
	// Degree configuration errors.
	ErrDegreesNotFound = errors.New("degrees config file not found")
	ErrDegreesParse    = errors.New("failed to parse degrees config")
	ErrEmptyPredegree  = errors.New("predegree has an empty field")

	// Scraping errors.
	ErrStructurePage  = errors.New("failed to fetch degree structure page")
	ErrEnglishVariant = errors.New("cannot locate english course page")
	ErrTeachingTitle  = errors.New("cannot parse teaching title")
	ErrTeachingDesc   = errors.New("cannot parse teaching description")
	ErrNoEndMarker    = errors.New("no description end marker for this page")

	// Conversion errors.
	ErrEmptyDocument  = errors.New("document content cannot be empty")
	ErrHTMLRender     = errors.New("HTML rendering failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Artifact errors.
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrArtifactEmpty    = errors.New("artifact matched no files")
	ErrManifestParse    = errors.New("failed to parse artifact manifest")

	// Publish errors.
	ErrRefNotDeployable = errors.New("ref is not deployable")
	ErrNoSiteArtifact   = errors.New("site artifact missing, run convert first")
)
