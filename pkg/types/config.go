package types

import (
	"errors"
	"path/filepath"
)

// Config holds the directory settings the catalog runs against.
// ProjectsDir and CacheDir may be relative, in which case they resolve
// under BaseDir.
type Config struct {
	BaseDir     string `json:"base_dir" yaml:"base_dir"`
	ProjectsDir string `json:"projects_dir" yaml:"projects_dir"`
	CacheDir    string `json:"cache_dir" yaml:"cache_dir"`
}

// Default directory names under BaseDir.
const (
	DefaultProjectsDirName = "projects"
	DefaultCacheDirName    = "cache"
)

// Config validation errors.
var (
	ErrBaseDirEmpty = errors.New("base_dir must not be empty")
)

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.BaseDir == "" {
		return ErrBaseDirEmpty
	}
	return nil
}

// ProjectsRoot returns the absolute projects directory, resolving a
// relative or empty ProjectsDir under BaseDir.
func (c Config) ProjectsRoot() string {
	dir := c.ProjectsDir
	if dir == "" {
		dir = DefaultProjectsDirName
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.BaseDir, dir)
	}
	return dir
}

// CacheRoot returns the absolute cache directory, resolving a relative or
// empty CacheDir under BaseDir.
func (c Config) CacheRoot() string {
	dir := c.CacheDir
	if dir == "" {
		dir = DefaultCacheDirName
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.BaseDir, dir)
	}
	return dir
}
