package config

import (
	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/paths"
)

// Config is the complete bcforge configuration.
type Config struct {
	Jobs                int    `koanf:"jobs" toml:"jobs"`
	CallpassLibraryPath string `koanf:"callpass_library_path" toml:"callpass_library_path"`
	Debug               bool   `koanf:"debug" toml:"debug"`
	Tools               Tools  `koanf:"tools" toml:"tools"`
	Layout              Layout `koanf:"layout" toml:"layout"`
}

// Tools names the external executables.
type Tools struct {
	OriginalCXX string `koanf:"original_cxx" toml:"original_cxx"`
	OriginalCC  string `koanf:"original_cc" toml:"original_cc"`
	TargetedCXX string `koanf:"targeted_cxx" toml:"targeted_cxx"`
	TargetedCC  string `koanf:"targeted_cc" toml:"targeted_cc"`
	LLVMLink    string `koanf:"llvm_link" toml:"llvm_link"`
	CMaker      string `koanf:"cmaker" toml:"cmaker"`
	CMake       string `koanf:"cmake" toml:"cmake"`
	Remake      string `koanf:"remake" toml:"remake"`
}

// Layout names files and directories below the work root.
type Layout struct {
	BuildDir     string `koanf:"build_dir" toml:"build_dir"`
	ProgressFile string `koanf:"progress_file" toml:"progress_file"`
	ObjectsDir   string `koanf:"objects_dir" toml:"objects_dir"`
	LinkedDir    string `koanf:"linked_dir" toml:"linked_dir"`
	BuildLog     string `koanf:"build_log" toml:"build_log"`
	MetadataFile string `koanf:"metadata_file" toml:"metadata_file"`
}

// Paths converts the layout section for paths.New.
func (l Layout) Paths() paths.Layout {
	return paths.Layout{
		BuildDir:     l.BuildDir,
		ProgressFile: l.ProgressFile,
		ObjectsDir:   l.ObjectsDir,
		LinkedDir:    l.LinkedDir,
		BuildLog:     l.BuildLog,
		MetadataFile: l.MetadataFile,
	}
}

// Validate reports the first missing tool or invalid value.
func (c *Config) Validate() error {
	tools := []struct {
		key   string
		value string
	}{
		{"tools.original_cxx", c.Tools.OriginalCXX},
		{"tools.original_cc", c.Tools.OriginalCC},
		{"tools.targeted_cxx", c.Tools.TargetedCXX},
		{"tools.targeted_cc", c.Tools.TargetedCC},
		{"tools.llvm_link", c.Tools.LLVMLink},
		{"tools.cmaker", c.Tools.CMaker},
		{"tools.cmake", c.Tools.CMake},
		{"tools.remake", c.Tools.Remake},
	}
	for _, t := range tools {
		if t.value == "" {
			return errors.Newf(errors.ErrConfigValid, "%s must not be empty", t.key).
				WithDetail("key", t.key)
		}
	}
	if c.Jobs < 0 {
		return errors.Newf(errors.ErrConfigValid, "jobs must be 0 or positive, got %d", c.Jobs).
			WithDetail("key", "jobs")
	}
	return nil
}
