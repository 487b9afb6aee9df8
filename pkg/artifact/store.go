package artifact

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/types"
)

// Kind selects one of the two store directories.
type Kind int

const (
	// Object is compiled bitcode for a single translation unit.
	Object Kind = iota
	// Linked is the linked bitcode of a link target.
	Linked
)

func (k Kind) String() string {
	if k == Linked {
		return "linked"
	}
	return "object"
}

// Store resolves logical artifact paths to files under the store directories.
type Store struct {
	fs         types.FS
	objectsDir string
	linkedDir  string
}

// NewStore creates a store over the given directories.
func NewStore(fs types.FS, objectsDir, linkedDir string) *Store {
	return &Store{
		fs:         fs,
		objectsDir: objectsDir,
		linkedDir:  linkedDir,
	}
}

// Dir returns the directory backing kind.
func (s *Store) Dir(kind Kind) string {
	if kind == Linked {
		return s.linkedDir
	}
	return s.objectsDir
}

// Path returns the file that holds the artifact for logicalPath.
func (s *Store) Path(kind Kind, logicalPath string) string {
	return filepath.Join(s.Dir(kind), Encode(logicalPath))
}

// ObjectPath is Path(Object, logicalPath).
func (s *Store) ObjectPath(logicalPath string) string {
	return s.Path(Object, logicalPath)
}

// LinkedPath is Path(Linked, logicalPath).
func (s *Store) LinkedPath(logicalPath string) string {
	return s.Path(Linked, logicalPath)
}

// Exists reports whether the file at storePath is present. Stat failures
// other than non-existence are returned rather than treated as a miss.
func (s *Store) Exists(storePath string) (bool, error) {
	_, err := s.fs.Stat(storePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to check artifact %s", storePath)
}

// Ensure creates the directory for kind if it is missing.
func (s *Store) Ensure(kind Kind) error {
	code := errors.ErrDirCreate
	if kind == Object {
		code = errors.ErrCompileDir
	}
	if err := s.fs.MkdirAll(s.Dir(kind), 0755); err != nil {
		return errors.Wrapf(err, code, "failed to create %s dir %s", kind, s.Dir(kind))
	}
	return nil
}

// List returns the decoded logical paths of every artifact of kind, sorted.
// A missing directory yields an empty list.
func (s *Store) List(kind Kind) ([]string, error) {
	entries, err := s.fs.ReadDir(s.Dir(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s dir", kind)
	}

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		logical, err := Decode(entry.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, logical)
	}
	sort.Strings(out)
	return out, nil
}
