package checkpoint

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/logging"
	"github.com/arthur-debert/bcforge/pkg/types"
	"github.com/rs/zerolog"
)

// Stage names one step of the pipeline. The values are the field names used
// in the persisted document.
type Stage string

const (
	StageConfigure Stage = "cmake"
	StageBuild     Stage = "remake"
	StageExtract   Stage = "cmaker"
	StageCompile   Stage = "compile_to_llvm"
	StageLink      Stage = "linking"
)

// Stages returns every stage in execution order.
func Stages() []Stage {
	return []Stage{StageConfigure, StageBuild, StageExtract, StageCompile, StageLink}
}

// Previous returns the stage that must complete before s, and false for the
// first stage.
func (s Stage) Previous() (Stage, bool) {
	all := Stages()
	for i, st := range all {
		if st == s && i > 0 {
			return all[i-1], true
		}
	}
	return "", false
}

// Progress is the persisted record.
type Progress struct {
	CMake         bool `json:"cmake" yaml:"cmake"`
	Remake        bool `json:"remake" yaml:"remake"`
	CMaker        bool `json:"cmaker" yaml:"cmaker"`
	CompileToLLVM bool `json:"compile_to_llvm" yaml:"compile_to_llvm"`
	Linking       bool `json:"linking" yaml:"linking"`
}

// Done reports whether stage s is recorded as complete.
func (p Progress) Done(s Stage) bool {
	if f := p.flag(s); f != nil {
		return *f
	}
	return false
}

func (p *Progress) flag(s Stage) *bool {
	switch s {
	case StageConfigure:
		return &p.CMake
	case StageBuild:
		return &p.Remake
	case StageExtract:
		return &p.CMaker
	case StageCompile:
		return &p.CompileToLLVM
	case StageLink:
		return &p.Linking
	}
	return nil
}

// Checkpoint owns the in-memory progress and its backing file.
type Checkpoint struct {
	mu       sync.Mutex
	fs       types.FS
	path     string
	buildDir string
	progress Progress
	closed   bool
	logger   zerolog.Logger
}

const resetHint = "delete the progress file and the build directory, then re-run"

// Load reads the checkpoint at path, creating an all-false record when the
// file does not exist yet. buildDir is removed by Close if the configure
// stage never completes.
func Load(fs types.FS, path, buildDir string) (*Checkpoint, error) {
	c := &Checkpoint{
		fs:       fs,
		path:     path,
		buildDir: buildDir,
		logger:   logging.GetLogger("checkpoint"),
	}

	data, err := fs.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &c.progress); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCheckpoint, "failed to parse progress file %s", path).
				WithDetail("hint", resetHint)
		}
		c.logger.Debug().Str("path", path).Interface("progress", c.progress).Msg("Loaded checkpoint")
	case os.IsNotExist(err):
		if err := c.write(); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCheckpoint, "failed to initialize progress record %s", path)
		}
		c.logger.Debug().Str("path", path).Msg("Created checkpoint")
	default:
		return nil, errors.Wrapf(err, errors.ErrCheckpoint, "failed to read progress file %s", path).
			WithDetail("hint", resetHint)
	}

	return c, nil
}

// Done reports whether stage has completed.
func (c *Checkpoint) Done(s Stage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.Done(s)
}

// Mark records stage as completed. It is not persisted until Save or Close.
func (c *Checkpoint) Mark(s Stage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f := c.progress.flag(s); f != nil {
		*f = true
	}
}

// Progress returns a copy of the current flags.
func (c *Checkpoint) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Path returns the backing file.
func (c *Checkpoint) Path() string { return c.path }

// Save writes the current flags to disk.
func (c *Checkpoint) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.write(); err != nil {
		return errors.Wrapf(err, errors.ErrCheckpoint, "failed to store progress %s", c.path)
	}
	return nil
}

// Close persists the checkpoint and, when the configure stage never
// completed, removes the build directory. Only the first call has an effect.
func (c *Checkpoint) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	configured := c.progress.CMake
	c.mu.Unlock()

	if !configured && c.buildDir != "" {
		if err := c.fs.RemoveAll(c.buildDir); err != nil {
			c.logger.Warn().Err(err).Str("dir", c.buildDir).Msg("Cannot remove build directory, please check if it was created")
		} else {
			c.logger.Info().Str("dir", c.buildDir).Msg("Removed unconfigured build directory")
		}
	}

	if err := c.Save(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to store progress")
		return err
	}
	return nil
}

// write must be called with mu held or before c is shared.
func (c *Checkpoint) write() error {
	data, err := json.MarshalIndent(c.progress, "", "  ")
	if err != nil {
		return err
	}
	return c.fs.WriteFile(c.path, data, 0644)
}

// Read returns the flags stored at path without creating or locking
// anything. A missing file reads as all stages pending.
func Read(fs types.FS, path string) (Progress, error) {
	var p Progress
	data, err := fs.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, errors.Wrapf(err, errors.ErrCheckpoint, "failed to read progress file %s", path).
			WithDetail("hint", resetHint)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, errors.Wrapf(err, errors.ErrCheckpoint, "failed to parse progress file %s", path).
			WithDetail("hint", resetHint)
	}
	return p, nil
}

// Reset removes the progress file and the build directory.
func Reset(fs types.FS, path, buildDir string) error {
	if err := fs.RemoveAll(buildDir); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove build directory %s", buildDir)
	}
	if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove progress file %s", path)
	}
	return nil
}
