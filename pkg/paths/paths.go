package paths

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/bcforge/pkg/errors"
)

// EnvRoot is the environment variable consulted when no work root is given
const EnvRoot = "BCFORGE_ROOT"

// Default names below the work root
const (
	DefaultBuildDir     = "bc_build"
	DefaultProgressFile = ".progress"
	DefaultObjectsDir   = "objects"
	DefaultLinkedDir    = "linked"
	DefaultBuildLog     = "remake.log"
	DefaultMetadataFile = "cmaker.log"
)

// Layout names the files and directories below the work root. Empty fields
// fall back to the defaults above.
type Layout struct {
	BuildDir     string
	ProgressFile string
	ObjectsDir   string
	LinkedDir    string
	BuildLog     string
	MetadataFile string
}

// Paths provides centralized path management for bcforge
type Paths interface {
	Root() string
	BuildDir() string
	ProgressPath() string
	ObjectsDir() string
	LinkedDir() string
	BuildLogPath() string
	MetadataPath() string
}

type paths struct {
	root   string
	layout Layout
}

// New creates a new Paths instance rooted at root. An empty root is taken
// from BCFORGE_ROOT, then from the current directory.
func New(root string, layout Layout) (Paths, error) {
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot determine current directory")
		}
		root = cwd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", root)
	}

	return &paths{root: abs, layout: withDefaults(layout)}, nil
}

func withDefaults(l Layout) Layout {
	def := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return Layout{
		BuildDir:     def(l.BuildDir, DefaultBuildDir),
		ProgressFile: def(l.ProgressFile, DefaultProgressFile),
		ObjectsDir:   def(l.ObjectsDir, DefaultObjectsDir),
		LinkedDir:    def(l.LinkedDir, DefaultLinkedDir),
		BuildLog:     def(l.BuildLog, DefaultBuildLog),
		MetadataFile: def(l.MetadataFile, DefaultMetadataFile),
	}
}

func (p *paths) Root() string { return p.root }

func (p *paths) BuildDir() string {
	return p.resolve(p.root, p.layout.BuildDir)
}

func (p *paths) ProgressPath() string {
	return p.resolve(p.root, p.layout.ProgressFile)
}

func (p *paths) ObjectsDir() string {
	return p.resolve(p.BuildDir(), p.layout.ObjectsDir)
}

func (p *paths) LinkedDir() string {
	return p.resolve(p.BuildDir(), p.layout.LinkedDir)
}

func (p *paths) BuildLogPath() string {
	return p.resolve(p.BuildDir(), p.layout.BuildLog)
}

func (p *paths) MetadataPath() string {
	return p.resolve(p.BuildDir(), p.layout.MetadataFile)
}

// resolve joins name onto base unless name is already absolute
func (p *paths) resolve(base, name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(base, name)
}
