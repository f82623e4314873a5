// Shared helpers for quest CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/quest/internal/registry"
	"github.com/mesh-intelligence/quest/internal/sqlite"
	"github.com/mesh-intelligence/quest/pkg/types"
)

// openRegistry resolves and validates the directory settings and returns
// a registry over the projects root.
func openRegistry() (*registry.Registry, error) {
	cfg, err := catalogConfig()
	if err != nil {
		return nil, fmt.Errorf("resolve directories: %w", err)
	}
	return registry.New(cfg.ProjectsRoot(), zap.NewNop()), nil
}

// openActiveStore opens the metadata store of the active project. The
// caller must close the returned store.
func openActiveStore() (*sqlite.Store, error) {
	reg, err := openRegistry()
	if err != nil {
		return nil, err
	}
	if err := reg.EnsureDefault(); err != nil {
		return nil, err
	}
	active, err := reg.Active()
	if err != nil {
		return nil, err
	}
	return reg.OpenStore(active)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// isUserError reports whether the error is caused by user input rather
// than a system failure, for exit-code selection.
func isUserError(err error) bool {
	return errors.Is(err, types.ErrDuplicateName) ||
		errors.Is(err, types.ErrUnknownProject) ||
		errors.Is(err, types.ErrNotFound) ||
		errors.Is(err, types.ErrInvalidData) ||
		errors.Is(err, types.ErrInvalidProject)
}

// fail prints the error prefixed with the command name and exits with
// the appropriate code.
func fail(prefix string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, err)
	if isUserError(err) {
		os.Exit(exitUserError)
	}
	os.Exit(exitSysError)
}
