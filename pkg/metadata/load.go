package metadata

import (
	"encoding/json"

	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/types"
)

const resetHint = "remove the progress file if you need to regenerate the metadata"

// Load reads and validates the collection at path.
func Load(fs types.FS, path string) (*Collection, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMetadataLoad, "failed to read %s", path).
			WithDetail("hint", resetHint)
	}
	return Parse(data)
}

// Parse decodes and validates a collection document.
func Parse(data []byte) (*Collection, error) {
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, errors.ErrMetadataLoad, "failed to decode build metadata").
			WithDetail("hint", resetHint)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every target has a path and that no path is claimed
// by two targets, since both would be linked into the same artifact.
func (c *Collection) Validate() error {
	seen := make(map[string]int, len(c.Scripts))
	for i, s := range c.Scripts {
		path := s.Target.AbsPath
		if path == "" {
			return errors.Newf(errors.ErrMetadataInvalid, "script %d (%s) has no target path", i, s.Target.Name)
		}
		if j, dup := seen[path]; dup {
			return errors.Newf(errors.ErrMetadataInvalid, "target %s is declared by scripts %d and %d", path, j, i).
				WithDetail("target", path)
		}
		seen[path] = i
	}
	return nil
}
