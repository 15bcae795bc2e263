package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

const appDirName = "tripserve"

// PathResolver finds config and data files relative to the executable,
// the working directory and the per-user config directory.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver creates a resolver anchored at the running executable
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		homeDir:       homeDir,
		configDir:     configDirFor(runtime.GOOS, homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

// configDirFor returns the per-user config directory for goos
func configDirFor(goos, homeDir string) string {
	switch goos {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, appDirName)
		}
		return filepath.Join(homeDir, ".config", appDirName)
	case "darwin":
		return filepath.Join(homeDir, ".config", appDirName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appDirName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", appDirName)
	default:
		return filepath.Join(homeDir, "."+appDirName)
	}
}

// GetConfigPath returns a writable location for the config file, falling back
// to ~/.tripserve, the temp dir and finally the executable dir.
func (pr *PathResolver) GetConfigPath(filename string) string {
	candidates := []string{
		pr.configDir,
		filepath.Join(pr.homeDir, "."+appDirName),
		filepath.Join(os.TempDir(), appDirName),
		pr.executableDir,
	}
	for i, dir := range candidates {
		if CheckDirStatus(dir).Writable {
			path := filepath.Join(dir, filename)
			if i > 0 {
				log.Warnf("Using fallback config location: %s", path)
			}
			return path
		}
	}
	return filepath.Join(os.TempDir(), filename)
}

// ResolveDataFile finds a data file (seed catalog, trip db) by trying, in order:
// the path itself when absolute, the executable dir, the working dir and the config dir.
// When nothing exists yet the executable-relative path is returned.
func (pr *PathResolver) ResolveDataFile(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	candidates := []string{filepath.Join(pr.executableDir, path)}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, path))
	}
	candidates = append(candidates, filepath.Join(pr.configDir, path))

	for _, c := range candidates {
		if FileExists(c) {
			log.Debugf("Resolved %s to %s", path, c)
			return c
		}
	}
	log.Debugf("%s not found in any candidate location", path)
	return candidates[0]
}
