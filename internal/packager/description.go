package packager

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nextroute-dev/nextroute/internal/config"
	"github.com/nextroute-dev/nextroute/internal/errors"
	"github.com/nextroute-dev/nextroute/pkg/build"
)

// LoadDescription reads the build description document from the framework's
// build directory.
func LoadDescription(buildDir string) (*build.Description, error) {
	path := filepath.Join(buildDir, config.DescriptionFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("N201").
			WithDetail("Cannot read %s", path).
			Wrap(err)
	}

	var desc build.Description
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, errors.New("N201").
			WithDetail("Cannot parse %s: %s", path, err).
			Wrap(err)
	}

	if desc.BuildID == "" {
		return nil, errors.New("N201").
			WithDetail("%s has no buildId", path)
	}
	return &desc, nil
}
