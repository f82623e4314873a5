// Root command for the quest CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/quest/internal/paths"
	"github.com/mesh-intelligence/quest/pkg/quest"
	"github.com/mesh-intelligence/quest/pkg/types"
)

// Exit codes: user errors (bad input, unknown names) exit 1, system
// errors (I/O, store failures) exit 2.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir   string
	flagBaseDir     string
	flagProjectsDir string
	flagJSON        bool
)

// Values loaded from config.yaml by PersistentPreRunE so all subcommands
// can use them.
var (
	configBaseDir     string
	configProjectsDir string
	configCacheDir    string
)

var rootCmd = &cobra.Command{
	Use:     "quest",
	Short:   "Quest is a catalog for environmental and geospatial data",
	Version: quest.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configBaseDir = cfg.GetString(cfgKeyBaseDir)
		configProjectsDir = cfg.GetString(cfgKeyProjectsDir)
		configCacheDir = cfg.GetString(cfgKeyCacheDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagBaseDir, "base-dir", "", "base data directory (default: platform data dir)")
	rootCmd.PersistentFlags().StringVar(&flagProjectsDir, "projects-dir", "", "projects directory (default: <base-dir>/projects)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(featureCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(uriCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(serveCmd)
}

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > QUEST_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveBaseDir returns the base directory following the precedence:
// --base-dir flag > config.yaml base_dir > QUEST_BASE_DIR env > platform default.
func resolveBaseDir() (string, error) {
	return paths.ResolveBaseDir(flagBaseDir, configBaseDir)
}

// resolveProjectsDir returns the projects root following the precedence:
// --projects-dir flag > config.yaml projects_dir > QUEST_PROJECTS_DIR env
// > <base-dir>/projects.
func resolveProjectsDir() (string, error) {
	baseDir, err := resolveBaseDir()
	if err != nil {
		return "", err
	}
	return paths.ResolveProjectsDir(flagProjectsDir, configProjectsDir, baseDir)
}

// catalogConfig resolves the directory settings into a validated Config.
// All commands that touch the catalog go through it.
func catalogConfig() (types.Config, error) {
	baseDir, err := resolveBaseDir()
	if err != nil {
		return types.Config{}, err
	}
	projectsDir, err := resolveProjectsDir()
	if err != nil {
		return types.Config{}, err
	}

	cfg := types.Config{
		BaseDir:     baseDir,
		ProjectsDir: projectsDir,
		CacheDir:    configCacheDir,
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}
