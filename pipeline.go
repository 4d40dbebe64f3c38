package coursedesc

import (
	"context"
	"errors"
	"sync"

	"github.com/bpradana/weave"
)

// ErrSuperseded is the cancellation cause of a run that lost to a newer run
// in the same concurrency group.
var ErrSuperseded = errors.New("run superseded by a newer run in the same group")

// Stage names, which double as weave task identifiers.
const (
	StageScrape  = "scraper"
	StageConvert = "asciidoc"
	StagePublish = "pages"
)

// RunGroup implements cancel-in-progress semantics: starting a run cancels
// any run still in progress for the same group, so the newest run always
// wins.
type RunGroup struct {
	name string

	mu      sync.Mutex
	current *groupRun
}

// groupRun identifies one registered run of a group.
type groupRun struct {
	cancel context.CancelCauseFunc
}

// NewRunGroup creates a group with the given name.
func NewRunGroup(name string) *RunGroup {
	return &RunGroup{name: name}
}

// Name returns the group name.
func (g *RunGroup) Name() string {
	return g.name
}

// Start registers a new run, cancelling the previous in-progress one.
// The returned stop function must be called when the run finishes.
func (g *RunGroup) Start(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	r := &groupRun{cancel: cancel}

	g.mu.Lock()
	if g.current != nil {
		g.current.cancel(ErrSuperseded)
	}
	g.current = r
	g.mu.Unlock()

	stop := func() {
		cancel(nil)
		g.mu.Lock()
		if g.current == r {
			g.current = nil
		}
		g.mu.Unlock()
	}
	return ctx, stop
}

// Run executes the full pipeline as a weave task graph: scrape, then
// convert, then publish, each stage consuming the artifact of the previous
// one. The run joins the service's concurrency group, so a concurrent Run
// call cancels this one. The publish stage is skipped (not failed) when the
// configured ref is not deployable, matching the hosted pipeline's gate.
func (s *Service) Run(ctx context.Context) error {
	ctx, stop := s.group.Start(ctx)
	defer stop()

	graph := weave.NewGraph()

	scrapeTask, err := weave.AddTask(graph, StageScrape,
		func(ctx context.Context, _ weave.DependencyResolver) (string, error) {
			return ArtifactCourses, s.Scrape(ctx)
		})
	if err != nil {
		return err
	}

	convertTask, err := weave.AddTask(graph, StageConvert,
		func(ctx context.Context, _ weave.DependencyResolver) (string, error) {
			return ArtifactPages, s.Convert(ctx)
		}, weave.DependsOn(scrapeTask))
	if err != nil {
		return err
	}

	deployable := s.cfg.Publish.Ref == s.cfg.Publish.DeployRef
	if deployable {
		_, err = weave.AddTask(graph, StagePublish,
			func(ctx context.Context, _ weave.DependencyResolver) (string, error) {
				return s.cfg.Publish.BaseURL, s.Publish(ctx)
			}, weave.DependsOn(convertTask))
		if err != nil {
			return err
		}
	} else {
		s.log.InfoContext(ctx, "publish stage skipped",
			"ref", s.cfg.Publish.Ref, "deployRef", s.cfg.Publish.DeployRef)
	}

	_, metrics, err := graph.Run(ctx)
	if err != nil {
		if cause := context.Cause(ctx); cause != nil && errors.Is(cause, ErrSuperseded) {
			return ErrSuperseded
		}
		return err
	}

	s.log.InfoContext(ctx, "pipeline finished",
		"group", s.group.Name(),
		"succeeded", metrics.TasksSucceeded,
		"total", metrics.TasksTotal)
	return nil
}
