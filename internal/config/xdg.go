package config

import (
	"os"
	"path/filepath"
)

const (
	appName        = "retain"
	configFileName = "config.toml"
	schemaFileName = "config.schema.json"
)

// XDGDirs holds the base directories retain reads and writes.
// ConfigHome and StateHome are suffixed with the app name; DataHome is not,
// since it only hosts man pages under man/man1.
type XDGDirs struct {
	ConfigHome string
	StateHome  string
	DataHome   string
}

// baseDir returns $env, or home joined with fallback when it is unset.
// Relative values are ignored, as XDG requires.
func baseDir(env, home string, fallback ...string) string {
	if v := os.Getenv(env); v != "" && filepath.IsAbs(v) {
		return v
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// GetXDGDirs resolves the directories from the environment.
func GetXDGDirs() (*XDGDirs, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &XDGDirs{
		ConfigHome: filepath.Join(baseDir("XDG_CONFIG_HOME", home, ".config"), appName),
		StateHome:  filepath.Join(baseDir("XDG_STATE_HOME", home, ".local", "state"), appName),
		DataHome:   baseDir("XDG_DATA_HOME", home, ".local", "share"),
	}, nil
}

func resolve(pick func(*XDGDirs) string) (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return pick(dirs), nil
}

// GetConfigDir returns the directory holding config.toml.
func GetConfigDir() (string, error) {
	return resolve(func(d *XDGDirs) string { return d.ConfigHome })
}

// GetLogDir returns the directory for per-run log files.
func GetLogDir() (string, error) {
	return resolve(func(d *XDGDirs) string { return filepath.Join(d.StateHome, "logs") })
}

// GetManDir returns the user man page directory for section 1.
func GetManDir() (string, error) {
	return resolve(func(d *XDGDirs) string { return filepath.Join(d.DataHome, "man", "man1") })
}
