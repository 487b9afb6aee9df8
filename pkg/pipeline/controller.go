package pipeline

import (
	"context"

	"github.com/arthur-debert/bcforge/pkg/checkpoint"
	"github.com/arthur-debert/bcforge/pkg/compile"
	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/linker"
	"github.com/arthur-debert/bcforge/pkg/logging"
	"github.com/arthur-debert/bcforge/pkg/metadata"
	"github.com/arthur-debert/bcforge/pkg/paths"
	"github.com/arthur-debert/bcforge/pkg/types"
	"github.com/rs/zerolog"
)

// External runs the tools that precede compilation.
type External interface {
	Configure(ctx context.Context) error
	Build(ctx context.Context) error
	Extract(ctx context.Context) error
}

// Compiler runs the compile stage.
type Compiler interface {
	Run(ctx context.Context, commands []string) (compile.Report, error)
}

// Linker runs the link stage.
type Linker interface {
	Run(ctx context.Context, g *metadata.Graph) (linker.Result, error)
}

// Options wires a Controller.
type Options struct {
	FS       types.FS
	Paths    paths.Paths
	External External
	Compiler Compiler
	Linker   Linker
}

// Controller owns the checkpoint for the lifetime of one invocation.
type Controller struct {
	fs       types.FS
	paths    paths.Paths
	external External
	compiler Compiler
	linker   Linker

	cp         *checkpoint.Checkpoint
	collection *metadata.Collection
	graph      *metadata.Graph
	logger     zerolog.Logger
}

// New loads (or creates) the checkpoint. Callers must Close the controller.
func New(opts Options) (*Controller, error) {
	cp, err := checkpoint.Load(opts.FS, opts.Paths.ProgressPath(), opts.Paths.BuildDir())
	if err != nil {
		return nil, err
	}
	return &Controller{
		fs:       opts.FS,
		paths:    opts.Paths,
		external: opts.External,
		compiler: opts.Compiler,
		linker:   opts.Linker,
		cp:       cp,
		logger:   logging.GetLogger("pipeline"),
	}, nil
}

// Status returns the current stage flags.
func (c *Controller) Status() checkpoint.Progress {
	return c.cp.Progress()
}

// Close persists the checkpoint. It is safe to call more than once.
func (c *Controller) Close() error {
	return c.cp.Close()
}

// Run executes every stage that is not yet done.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info().Str("root", c.paths.Root()).Msg("Work path")
	for _, stage := range checkpoint.Stages() {
		if c.cp.Done(stage) {
			c.logger.Info().Str("stage", string(stage)).Msg("Stage already done, skipping")
			continue
		}
		if err := c.runStage(ctx, stage); err != nil {
			return err
		}
	}
	c.logger.Info().Msg("All stages finished; delete the build dir and the progress file to start over")
	return nil
}

// Compile runs the compile stage even if it is already recorded as done.
// Extraction must have completed.
func (c *Controller) Compile(ctx context.Context) error {
	return c.runStage(ctx, checkpoint.StageCompile)
}

// Link runs the link stage even if it is already recorded as done.
// Compilation must have completed.
func (c *Controller) Link(ctx context.Context) error {
	return c.runStage(ctx, checkpoint.StageLink)
}

func (c *Controller) runStage(ctx context.Context, stage checkpoint.Stage) error {
	if prev, ok := stage.Previous(); ok && !c.cp.Done(prev) {
		return errors.Newf(errors.ErrStageOrder, "stage %s cannot run before %s", stage, prev).
			WithDetail("hint", "remove the progress file and the build dir, then re-run")
	}

	logger := c.logger.With().Str("stage", string(stage)).Logger()
	logger.Info().Msg("Starting stage")

	var err error
	switch stage {
	case checkpoint.StageConfigure:
		err = c.external.Configure(ctx)
	case checkpoint.StageBuild:
		err = c.external.Build(ctx)
	case checkpoint.StageExtract:
		err = c.external.Extract(ctx)
	case checkpoint.StageCompile:
		err = c.compile(ctx)
	case checkpoint.StageLink:
		err = c.link(ctx)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Stage failed")
		return err
	}

	c.cp.Mark(stage)
	logger.Info().Msg("Stage done")
	return nil
}

func (c *Controller) compile(ctx context.Context) error {
	col, _, err := c.metadata()
	if err != nil {
		return err
	}
	report, err := c.compiler.Run(ctx, col.Compile)
	if err != nil {
		return err
	}
	if !report.OK() {
		outputs := make([]string, 0, len(report.Failed))
		for _, f := range report.Failed {
			outputs = append(outputs, f.Output)
		}
		return errors.Newf(errors.ErrCompile, "%d of %d unit(s) failed to compile; re-run to retry them",
			len(report.Failed), report.Total).
			WithDetail("outputs", outputs)
	}
	return nil
}

func (c *Controller) link(ctx context.Context) error {
	_, g, err := c.metadata()
	if err != nil {
		return err
	}
	_, err = c.linker.Run(ctx, g)
	return err
}

// metadata loads the extractor output on first use.
func (c *Controller) metadata() (*metadata.Collection, *metadata.Graph, error) {
	if c.collection != nil {
		return c.collection, c.graph, nil
	}
	col, err := metadata.Load(c.fs, c.paths.MetadataPath())
	if err != nil {
		return nil, nil, err
	}
	c.collection = col
	c.graph = metadata.NewGraph(col)
	c.logger.Debug().
		Int("objects", len(col.Objects)).
		Int("targets", len(col.Scripts)).
		Int("units", len(col.Compile)).
		Msg("Build metadata loaded")
	return c.collection, c.graph, nil
}
