package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// dotenvBase is the base name of the .env files.
const dotenvBase = ".env"

// DotenvFiles returns the .env file names for mode, highest precedence first.
// Test runs skip the *.local files so they behave the same on every machine.
func DotenvFiles(mode RuntimeMode) []string {
	if mode == Test {
		return []string{
			dotenvBase + "." + mode.String(),
			dotenvBase,
		}
	}
	return []string{
		dotenvBase + "." + mode.String() + ".local",
		dotenvBase + ".local",
		dotenvBase + "." + mode.String(),
		dotenvBase,
	}
}

// ReadDotenv reads the .env files for mode from dir. A key defined in a
// higher-precedence file is never replaced by a lower one. Missing files
// are skipped. Values may reference other variables with ${VAR}.
func ReadDotenv(dir string, mode RuntimeMode) (map[string]string, error) {
	vars := make(map[string]string)
	for _, name := range DotenvFiles(mode) {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		fileVars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		for k, v := range fileVars {
			if _, exists := vars[k]; !exists {
				vars[k] = v
			}
		}
	}
	return vars, nil
}
