package version

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"

	gojson "github.com/goccy/go-json"
)

// ErrMissingPackageJSON is returned by [Resolve] when no package.json is
// found at startPath or any ancestor directory.
var ErrMissingPackageJSON = errors.New("missing-package-json")

// packageManifest is the subset of package.json [Resolve] reads.
type packageManifest struct {
	Version string `json:"version"`
}

// Resolve implements the manifest-walk algorithm a [schema.Version]
// option's Resolve callback falls back to when no literal version is set:
// starting from startPath (conventionally "./package.json"), it reads and
// decodes the file if present, otherwise walks up one directory at a time
// until the parent directory stops changing (the filesystem root), at
// which point it fails with [ErrMissingPackageJSON].
func Resolve(ctx context.Context, startPath string) (string, error) {
	dir, err := filepath.Abs(filepath.Dir(startPath))
	if err != nil {
		return "", err
	}

	name := filepath.Base(startPath)

	for {
		candidate := filepath.Join(dir, name)

		data, err := os.ReadFile(candidate)
		if err == nil {
			var manifest packageManifest

			if err := gojson.Unmarshal(data, &manifest); err != nil {
				return "", err
			}

			return manifest.Version, nil
		}

		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrMissingPackageJSON
		}

		dir = parent
	}
}

var (
	// Version is the application version, set via ldflags.
	Version string
	// Branch is the git branch, set via ldflags.
	Branch string
	// BuildUser is the user who built the binary, set via ldflags.
	BuildUser string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string

	// Revision is the git commit revision.
	Revision = getRevision()
	// GoVersion is the Go version used to build.
	GoVersion = runtime.Version()
	// GoOS is the operating system target.
	GoOS = runtime.GOOS
	// GoArch is the architecture target.
	GoArch = runtime.GOARCH
)

func getRevision() string {
	rev := "unknown"

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			if v.Value == "true" {
				modified = true
			}
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}
