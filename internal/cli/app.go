package cli

import (
	"github.com/arthur-debert/bcforge/pkg/artifact"
	"github.com/arthur-debert/bcforge/pkg/compile"
	"github.com/arthur-debert/bcforge/pkg/config"
	"github.com/arthur-debert/bcforge/pkg/filesystem"
	"github.com/arthur-debert/bcforge/pkg/linker"
	"github.com/arthur-debert/bcforge/pkg/paths"
	"github.com/arthur-debert/bcforge/pkg/pipeline"
	"github.com/arthur-debert/bcforge/pkg/runner"
	"github.com/arthur-debert/bcforge/pkg/stages"
	"github.com/arthur-debert/bcforge/pkg/types"
	"github.com/rs/zerolog/log"
)

// env is everything a command needs after configuration is resolved.
type env struct {
	cfg   *config.Config
	paths paths.Paths
	fs    types.FS
}

func (o *globalOptions) load() (*env, error) {
	overrides := map[string]interface{}{}
	if o.jobs > 0 {
		overrides["jobs"] = o.jobs
	}

	cfg, err := config.Load(o.configPath, overrides)
	if err != nil {
		return nil, err
	}

	p, err := paths.New(o.root, cfg.Layout.Paths())
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("root", p.Root()).
		Str("buildDir", p.BuildDir()).
		Int("jobs", cfg.Jobs).
		Msg("Configuration resolved")

	return &env{cfg: cfg, paths: p, fs: filesystem.NewOS()}, nil
}

func (e *env) store() *artifact.Store {
	return artifact.NewStore(e.fs, e.paths.ObjectsDir(), e.paths.LinkedDir())
}

// controller wires every stage over the real filesystem and subprocesses.
func (e *env) controller() (*pipeline.Controller, error) {
	run := runner.NewExec()
	store := e.store()
	tools := e.cfg.Tools

	return pipeline.New(pipeline.Options{
		FS:    e.fs,
		Paths: e.paths,
		External: stages.New(stages.Options{
			FS:     e.fs,
			Runner: run,
			Paths:  e.paths,
			Tools:  stages.Tools{CMake: tools.CMake, Remake: tools.Remake, CMaker: tools.CMaker},
			Jobs:   e.cfg.Jobs,
		}),
		Compiler: compile.New(compile.Options{
			Store:  store,
			Runner: run,
			Compilers: compile.Compilers{
				OriginalCXX: tools.OriginalCXX,
				OriginalCC:  tools.OriginalCC,
				TargetedCXX: tools.TargetedCXX,
				TargetedCC:  tools.TargetedCC,
			},
			Jobs: e.cfg.Jobs,
		}),
		Linker: linker.New(linker.Options{
			Store:   store,
			Runner:  run,
			Tool:    tools.LLVMLink,
			Workers: e.cfg.Jobs,
		}),
	})
}
