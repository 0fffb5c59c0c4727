package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// loadTOMLLayer decodes path directly as a layer. ok is false (with a nil
// error) when the file doesn't exist, since an absent layer is not an
// error — it simply contributes nothing to the merge.
func loadTOMLLayer(path string) (layer, bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return layer{}, false, nil
		}
		return layer{}, false, err
	}
	var l layer
	if _, err := toml.DecodeFile(path, &l); err != nil {
		return layer{}, false, err
	}
	return l, true, nil
}

// loadPyprojectLayer decodes the [tool.hachimoku] table out of a
// pyproject.toml file. ok is false when the file has no such table at all
// (as opposed to an empty one), matching the original's "section absent ->
// None" semantics.
func loadPyprojectLayer(path string) (layer, bool, error) {
	var wrapper struct {
		Tool struct {
			Hachimoku layer `toml:"hachimoku"`
		} `toml:"tool"`
	}
	md, err := toml.DecodeFile(path, &wrapper)
	if err != nil {
		return layer{}, false, err
	}
	if !md.IsDefined("tool", "hachimoku") {
		return layer{}, false, nil
	}
	return wrapper.Tool.Hachimoku, true, nil
}
