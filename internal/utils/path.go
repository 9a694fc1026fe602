package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// ResolveDataPath finds the candidate data the user pointed at. Relative paths are
// tried against the working directory first, then the executable directory, then
// configDir. accept decides whether an existing path holds usable data.
func ResolveDataPath(userPath, configDir string, accept func(path string) bool) (string, error) {
	if userPath == "" {
		userPath = "data"
	}
	var candidates []string
	if filepath.IsAbs(userPath) {
		candidates = append(candidates, userPath)
	} else {
		if cwd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(cwd, userPath))
		}
		if execDir, err := GetExecutableDir(); err == nil {
			candidates = append(candidates, filepath.Join(execDir, userPath))
		}
		if configDir != "" {
			candidates = append(candidates, filepath.Join(configDir, userPath))
		}
	}

	for _, path := range candidates {
		if FileExists(path) && accept(path) {
			log.Debugf("Found candidate data at %s", path)
			return path, nil
		}
		log.Debugf("Data path candidate not valid: %s", path)
	}
	return "", fmt.Errorf("no candidate data found for %q (tried %v)", userPath, candidates)
}
