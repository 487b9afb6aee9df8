package linker

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/arthur-debert/bcforge/pkg/artifact"
	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/logging"
	"github.com/arthur-debert/bcforge/pkg/metadata"
	"github.com/arthur-debert/bcforge/pkg/runner"
	"github.com/rs/zerolog"
)

// Observer is notified as targets are processed. Calls come from several
// workers at once, so implementations must be safe for concurrent use.
type Observer interface {
	OnStart(target string)
	OnComplete(target string, cached bool)
}

// Options configures a Linker.
type Options struct {
	Store  *artifact.Store
	Runner runner.Runner
	// Tool is the llvm-link executable.
	Tool string
	// Workers is the pool size. Zero or less means one per CPU.
	Workers  int
	Observer Observer
}

// Result summarises a successful Run.
type Result struct {
	Total  int
	Linked int
	Cached int
}

// Linker links graph targets in dependency order.
type Linker struct {
	store    *artifact.Store
	runner   runner.Runner
	tool     string
	workers  int
	observer Observer
	logger   zerolog.Logger
}

// New creates a linker.
func New(opts Options) *Linker {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Linker{
		store:    opts.Store,
		runner:   opts.Runner,
		tool:     opts.Tool,
		workers:  workers,
		observer: opts.Observer,
		logger:   logging.GetLogger("linker"),
	}
}

// schedule is the shared state of one Run.
type schedule struct {
	graph      *metadata.Graph
	pending    []atomic.Int64
	dependents [][]int
	ready      chan int
	done       chan struct{}
	finished   atomic.Int64
	linked     atomic.Int64
	cached     atomic.Int64

	failOnce sync.Once
	failure  error
	cancel   context.CancelFunc
}

func newSchedule(g *metadata.Graph) *schedule {
	n := g.Len()
	s := &schedule{
		graph:      g,
		pending:    make([]atomic.Int64, n),
		dependents: make([][]int, n),
		ready:      make(chan int, n),
		done:       make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		for _, dep := range g.TargetDeps(i) {
			s.pending[i].Add(1)
			s.dependents[dep] = append(s.dependents[dep], i)
		}
	}
	for i := 0; i < n; i++ {
		if s.pending[i].Load() == 0 {
			s.ready <- i
		}
	}
	return s
}

func (s *schedule) fail(err error) {
	s.failOnce.Do(func() {
		s.failure = err
		s.cancel()
	})
}

// complete releases the dependents of target i and closes done once every
// target has finished.
func (s *schedule) complete(i int) {
	for _, d := range s.dependents[i] {
		if s.pending[d].Add(-1) == 0 {
			s.ready <- d
		}
	}
	if s.finished.Add(1) == int64(s.graph.Len()) {
		close(s.done)
	}
}

// Run links every target of g. It refuses to start on a cyclic graph and
// stops at the first link failure.
func (l *Linker) Run(ctx context.Context, g *metadata.Graph) (Result, error) {
	result := Result{Total: g.Len()}
	if err := g.CheckAcyclic(); err != nil {
		return result, err
	}
	if g.Len() == 0 {
		return result, nil
	}
	if err := l.store.Ensure(artifact.Linked); err != nil {
		return result, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := newSchedule(g)
	s.cancel = cancel

	l.logger.Debug().Int("targets", g.Len()).Int("workers", l.workers).Msg("Starting link workers")

	var wg sync.WaitGroup
	for w := 0; w < l.workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					l.logger.Error().Int("worker", id).Interface("panic", r).Msg("Link worker panicked")
					s.fail(errors.Newf(errors.ErrInternal, "link worker %d panicked: %v", id, r).
						WithDetail("stack", string(debug.Stack())))
				}
			}()
			l.worker(runCtx, s, id)
		}(w)
	}
	wg.Wait()

	result.Linked = int(s.linked.Load())
	result.Cached = int(s.cached.Load())

	if s.failure != nil {
		return result, s.failure
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	l.logger.Info().
		Int("total", result.Total).
		Int("linked", result.Linked).
		Int("cached", result.Cached).
		Msg("Linking finished")
	return result, nil
}

func (l *Linker) worker(ctx context.Context, s *schedule, id int) {
	logger := l.logger.With().Int("worker", id).Logger()
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case i := <-s.ready:
			if ctx.Err() != nil {
				return
			}
			cached, err := l.link(ctx, logger, s, i)
			if err != nil {
				s.fail(err)
				return
			}
			if cached {
				s.cached.Add(1)
			} else {
				s.linked.Add(1)
			}
			if l.observer != nil {
				l.observer.OnComplete(s.graph.Target(i).AbsPath, cached)
			}
			s.complete(i)
		}
	}
}

// link produces the artifact for target i and reports whether it was
// already present.
func (l *Linker) link(ctx context.Context, logger zerolog.Logger, s *schedule, i int) (bool, error) {
	target := s.graph.Target(i)
	if l.observer != nil {
		l.observer.OnStart(target.AbsPath)
	}
	logger.Info().
		Int64("finished", s.finished.Load()).
		Int("total", s.graph.Len()).
		Str("target", target.AbsPath).
		Msg("Linking in progress")

	out := l.store.LinkedPath(target.AbsPath)
	hit, err := l.store.Exists(out)
	if err != nil {
		logger.Error().
			Err(err).
			Str("target", target.AbsPath).
			Str("artifact", out).
			Str("tool", l.tool).
			Strs("args", append(l.inputs(s.graph, target), "-o", out)).
			Msg("Cannot check linked target")
		return false, errors.Wrapf(err, errors.ErrLinkFailed, "failed to link %s", target.AbsPath).
			WithDetail("target", target.AbsPath).
			WithDetail("artifact", out)
	}
	if hit {
		logger.Info().Str("artifact", out).Msg("Found linked target, using cached")
		return true, nil
	}

	cmd := runner.Command{
		Name: l.tool,
		Args: append(l.inputs(s.graph, target), "-o", out),
		Dir:  l.store.Dir(artifact.Linked),
	}
	res, err := l.runner.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			// A sibling already failed; this link was abandoned.
			return false, ctx.Err()
		}
		logger.Error().
			Err(err).
			Str("target", target.AbsPath).
			Str("tool", l.tool).
			Strs("args", cmd.Args).
			Str("stdout", res.Stdout).
			Str("stderr", res.Stderr).
			Msg("Failed to link target")
		return false, errors.Wrapf(err, errors.ErrLinkFailed, "failed to link %s", target.AbsPath).
			WithDetail("target", target.AbsPath).
			WithDetail("command", cmd.String())
	}

	logger.Info().Str("target", target.AbsPath).Msg("Linked")
	return false, nil
}

// inputs maps the resolvable dependencies of target to store paths,
// deduplicated in first-seen order. External dependencies are dropped.
func (l *Linker) inputs(g *metadata.Graph, target *metadata.Target) []string {
	args := make([]string, 0, len(target.Dependencies)+2)
	seen := make(map[string]struct{}, len(target.Dependencies))
	for _, dep := range target.Dependencies {
		var p string
		switch {
		case isTarget(g, dep):
			p = l.store.LinkedPath(dep)
		case g.IsObject(dep):
			p = l.store.ObjectPath(dep)
		default:
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		args = append(args, p)
	}
	return args
}

func isTarget(g *metadata.Graph, path string) bool {
	_, ok := g.TargetIndex(path)
	return ok
}
