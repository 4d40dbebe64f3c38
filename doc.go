// Package coursedesc builds a merged course-description site for a set of
// UNIBO degree programmes.
//
// # Pipeline
//
// The work is split into three stages, each consuming the artifact produced
// by the previous one:
//
//  1. scrape  — collect course descriptions from corsi.unibo.it and render
//     them as AsciiDoc documents plus an index ("courses" artifact)
//  2. convert — render every .adoc document to HTML and PDF via headless
//     Chrome ("github-pages" artifact)
//  3. publish — assemble the static site directory and sync it to the
//     deployment target
//
// # Quick Start
//
// Create a service, run the pipeline, and close when done:
//
//	svc, err := coursedesc.NewService(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	if err := svc.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Individual stages are also exposed (Scrape, Convert, Publish) so they can
// be dispatched separately, e.g. from a scheduler that keeps intermediate
// artifacts around.
//
// # Concurrency
//
// Runs belong to a named concurrency group. Starting a run cancels any run
// still in progress for the same group, so a newer deployment always wins.
// Within the convert stage a pool of browser instances renders documents in
// parallel.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// Use ROD_BROWSER_BIN to point at a pre-installed Chrome binary; when it is
// set, or when CI=true, the Chrome sandbox is disabled.
package coursedesc
