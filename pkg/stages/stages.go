package stages

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/logging"
	"github.com/arthur-debert/bcforge/pkg/paths"
	"github.com/arthur-debert/bcforge/pkg/runner"
	"github.com/arthur-debert/bcforge/pkg/types"
	"github.com/rs/zerolog"
)

// Tools names the external executables.
type Tools struct {
	CMake  string
	Remake string
	CMaker string
}

// Options configures the external stages.
type Options struct {
	FS     types.FS
	Runner runner.Runner
	Paths  paths.Paths
	Tools  Tools
	// Jobs is passed to remake as -j. Zero or less means one per CPU.
	Jobs int
}

// Stages runs configure, build and extract.
type Stages struct {
	fs     types.FS
	runner runner.Runner
	paths  paths.Paths
	tools  Tools
	jobs   int
	logger zerolog.Logger
}

// New creates the external stages.
func New(opts Options) *Stages {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return &Stages{
		fs:     opts.FS,
		runner: opts.Runner,
		paths:  opts.Paths,
		tools:  opts.Tools,
		jobs:   jobs,
		logger: logging.GetLogger("stages"),
	}
}

// Configure creates the build directory and runs cmake on the source root
// from inside it.
func (s *Stages) Configure(ctx context.Context) error {
	buildDir := s.paths.BuildDir()
	if err := s.fs.MkdirAll(buildDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create build dir %s", buildDir)
	}

	done := logging.LogOperationStart(s.logger, "configure")
	_, err := s.runner.Run(ctx, runner.Command{
		Name: s.tools.CMake,
		Args: []string{s.paths.Root()},
		Dir:  buildDir,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigure, "failed to run cmake").
			WithDetail("tool", s.tools.CMake)
	}
	done()
	return nil
}

// Build runs remake in the build directory and stores its standard output
// as the build log.
func (s *Stages) Build(ctx context.Context) error {
	s.logger.Info().Int("jobs", s.jobs).Msg("Start building")

	done := logging.LogOperationStart(s.logger, "build")
	res, err := s.runner.Run(ctx, runner.Command{
		Name: s.tools.Remake,
		Args: []string{fmt.Sprintf("-j%d", s.jobs), "-x", "-Oline"},
		Dir:  s.paths.BuildDir(),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrBuild, "failed to run remake").
			WithDetail("tool", s.tools.Remake)
	}

	logPath := s.paths.BuildLogPath()
	if err := s.fs.WriteFile(logPath, []byte(res.Stdout), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrBuild, "failed to store build log %s", logPath)
	}
	s.logger.Info().Str("path", logPath).Msg("Build log saved")
	done()
	return nil
}

// Extract runs cmaker over the build log and writes the metadata file.
func (s *Stages) Extract(ctx context.Context) error {
	logPath := s.paths.BuildLogPath()
	if _, err := s.fs.Stat(logPath); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrExtract, "build log %s is missing", logPath).
				WithDetail("hint", "remove the progress file and the build dir, then re-run")
		}
		return errors.Wrapf(err, errors.ErrExtract, "cannot access build log %s", logPath)
	}

	buildDir := s.paths.BuildDir()
	out := s.paths.MetadataPath()
	done := logging.LogOperationStart(s.logger, "extract")
	_, err := s.runner.Run(ctx, runner.Command{
		Name: s.tools.CMaker,
		Args: []string{"-w", buildDir, "-o", out, "-t", logPath},
		Dir:  buildDir,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrExtract, "failed to run cmaker").
			WithDetail("tool", s.tools.CMaker)
	}
	s.logger.Info().Str("path", out).Msg("Metadata saved")
	done()
	return nil
}
