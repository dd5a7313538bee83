package env

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DotEnvVar names an explicit credentials file. When set, no directory search
// happens and a missing file is an error.
const DotEnvVar = "HAP_DOTENV"

var (
	loadOnce   sync.Once
	loadedPath string
	loadErr    error
)

// Ensure loads worksheet credentials from a .env file once per process and
// returns the file it used, or "" when there was none. Variables already set
// in the process environment win over the file.
//
// $HAP_DOTENV selects the file; otherwise the nearest .env from the working
// directory up to the filesystem root is used.
func Ensure() (string, error) {
	// Unit tests must not pick up a developer-local `.env`.
	// Opt-in with GOTEST_LOAD_DOTENV=1 when running `go test`.
	if runningUnderGoTest() && os.Getenv("GOTEST_LOAD_DOTENV") != "1" {
		return "", nil
	}
	loadOnce.Do(func() {
		loadedPath, loadErr = load()
	})
	return loadedPath, loadErr
}

func load() (string, error) {
	path, err := resolveDotEnv()
	if err != nil || path == "" {
		return "", err
	}
	if err := godotenv.Load(path); err != nil {
		return "", errors.Wrapf(err, "load %s", path)
	}
	return path, nil
}

func resolveDotEnv() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv(DotEnvVar)); explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", errors.Wrapf(err, "$%s", DotEnvVar)
		}
		if info.IsDir() {
			return "", errors.Errorf("$%s=%s is a directory", DotEnvVar, explicit)
		}
		return explicit, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "get working directory")
	}
	return findDotEnvFrom(wd)
}

func runningUnderGoTest() bool {
	if strings.HasSuffix(os.Args[0], ".test") {
		return true
	}
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}
	return false
}

// findDotEnvFrom walks from dir towards the root and returns the first
// regular .env file.
func findDotEnvFrom(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, ".env")
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, nil
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return "", errors.Wrapf(err, "stat %s", candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
