package compile

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/arthur-debert/bcforge/pkg/artifact"
	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/logging"
	"github.com/arthur-debert/bcforge/pkg/runner"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options configures a Stage.
type Options struct {
	Store     *artifact.Store
	Runner    runner.Runner
	Compilers Compilers
	// Jobs bounds concurrent compilations. Zero or less means one per CPU.
	Jobs int
}

// Stage compiles translation units to bitcode.
type Stage struct {
	store     *artifact.Store
	runner    runner.Runner
	compilers Compilers
	jobs      int
	logger    zerolog.Logger
}

// UnitFailure records a unit that did not produce its bitcode.
type UnitFailure struct {
	Command string
	Output  string
	Err     error
}

// Report summarises a Run.
type Report struct {
	Total    int
	Compiled int
	Cached   int
	Failed   []UnitFailure
}

// OK reports whether every unit has its bitcode.
func (r Report) OK() bool { return len(r.Failed) == 0 }

// New creates a compile stage.
func New(opts Options) *Stage {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return &Stage{
		store:     opts.Store,
		runner:    opts.Runner,
		compilers: opts.Compilers,
		jobs:      jobs,
		logger:    logging.GetLogger("compile"),
	}
}

// Run compiles every command. A unit failure is recorded in the report and
// does not stop its siblings. The returned error is reserved for failures
// that prevent the stage from running at all, or for cancellation.
func (s *Stage) Run(ctx context.Context, commands []string) (Report, error) {
	report := Report{Total: len(commands)}
	if err := s.store.Ensure(artifact.Object); err != nil {
		return report, err
	}

	var (
		mu       sync.Mutex
		started  atomic.Int64
		compiled atomic.Int64
		cached   atomic.Int64
	)
	fail := func(f UnitFailure) {
		mu.Lock()
		report.Failed = append(report.Failed, f)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)

	for _, command := range commands {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error().Interface("panic", r).Str("command", command).Msg("Compile unit panicked")
					fail(UnitFailure{
						Command: command,
						Err: errors.Newf(errors.ErrInternal, "compile unit panicked: %v", r).
							WithDetail("stack", string(debug.Stack())),
					})
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			n := started.Add(1)

			inv, err := s.Rewrite(command)
			if err != nil {
				s.logger.Error().Err(err).Str("command", command).Msg("Cannot rewrite compile command")
				fail(UnitFailure{Command: command, Err: err})
				return nil
			}

			hit, err := s.store.Exists(inv.StorePath)
			if err != nil {
				fail(UnitFailure{Command: inv.String(), Output: inv.Output, Err: err})
				return nil
			}
			if hit {
				s.logger.Info().Str("object", inv.Output).Msg("Found bitcode, using cached")
				cached.Add(1)
				return nil
			}

			s.logger.Trace().
				Msgf("[%d/%d] compiling %s: %s", n, report.Total, inv.Output, inv)

			_, err = s.runner.Run(gctx, runner.Command{
				Name: inv.Name,
				Args: inv.Args,
				Dir:  s.store.Dir(artifact.Object),
			})
			if err != nil {
				s.logger.Error().
					Err(err).
					Str("object", inv.Output).
					Str("command", inv.String()).
					Msg("Cannot compile unit")
				fail(UnitFailure{
					Command: inv.String(),
					Output:  inv.Output,
					Err:     errors.Wrapf(err, errors.ErrCompile, "cannot compile %s", inv.Output),
				})
				return nil
			}
			compiled.Add(1)
			return nil
		})
	}

	err := g.Wait()
	report.Compiled = int(compiled.Load())
	report.Cached = int(cached.Load())

	s.logger.Info().
		Int("total", report.Total).
		Int("compiled", report.Compiled).
		Int("cached", report.Cached).
		Int("failed", len(report.Failed)).
		Msg("Compile stage finished")
	return report, err
}
