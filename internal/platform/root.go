package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrRootNotFound is returned by FindRoot when no data directory marker exists.
var ErrRootNotFound = errors.New("root not found")

// FindRoot recursively looks upwards for a data directory.
// Indicators are a tally.yaml file or a tally.db database.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) || hasFile(dir, DefaultDatabase) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

// DataDir picks the data directory: flag, then $TALLY_HOME, then the nearest
// root above the working directory, then ~/.tally.
func DataDir(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(HomeEnv); env != "" {
		return env
	}
	if wd, err := os.Getwd(); err == nil {
		if root, err := FindRoot(wd); err == nil {
			return root
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".tally")
	}
	return ".tally"
}

func hasFile(dir, name string) bool {
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	return err == nil
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
// Both build their binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveDataPath re-roots dir under the system temp directory when
// forceTemp is set. Paths already inside the temp directory are kept.
func ResolveDataPath(dir string, forceTemp bool) string {
	if !forceTemp {
		if dir == "" {
			return "."
		}
		return dir
	}

	clean := filepath.Clean(dir)
	rel, err := filepath.Rel(os.TempDir(), clean)
	if err == nil && !strings.HasPrefix(rel, "..") && filepath.IsAbs(clean) {
		return clean
	}

	name := filepath.Base(clean)
	if dir == "" || name == "." || name == string(os.PathSeparator) {
		name = "default"
	}
	return filepath.Join(os.TempDir(), "tally-dev", name)
}
