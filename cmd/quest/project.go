// Project commands for the quest CLI.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/quest/internal/registry"
)

var (
	projectCreateDisplayName string
	projectCreateDescription string
	projectCreateFolder      string
	projectCreateActivate    bool
	projectAddActivate       bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage catalog projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			fail("project list", err)
		}
		if err := reg.EnsureDefault(); err != nil {
			fail("project list", err)
		}

		if flagJSON {
			records, err := reg.ProjectRecords()
			if err != nil {
				fail("project list", err)
			}
			return printJSON(records)
		}

		names, err := reg.Projects()
		if err != nil {
			fail("project list", err)
		}
		active, err := reg.Active()
		if err != nil {
			fail("project list", err)
		}
		for _, name := range names {
			marker := " "
			if name == active {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			fail("project create", err)
		}

		project, err := reg.Create(args[0], registry.CreateOptions{
			DisplayName: projectCreateDisplayName,
			Description: projectCreateDescription,
			Folder:      projectCreateFolder,
			Activate:    projectCreateActivate,
		})
		if err != nil {
			fail("project create", err)
		}

		if flagJSON {
			return printJSON(project)
		}
		fmt.Println("Created project:", project.Name)
		return nil
	},
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Register an existing project folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			fail("project add", err)
		}

		project, err := reg.Register(args[0], args[1], projectAddActivate)
		if err != nil {
			fail("project add", err)
		}

		if flagJSON {
			return printJSON(project)
		}
		fmt.Println("Registered project:", project.Name)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a project and its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			fail("project delete", err)
		}

		remaining, err := reg.Delete(args[0])
		if err != nil {
			fail("project delete", err)
		}

		if flagJSON {
			return printJSON(remaining)
		}
		fmt.Println("Remaining projects:", strings.Join(remaining, ", "))
		return nil
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a project from the index, keeping its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			fail("project remove", err)
		}

		remaining, err := reg.Unregister(args[0])
		if err != nil {
			fail("project remove", err)
		}

		if flagJSON {
			return printJSON(remaining)
		}
		fmt.Println("Remaining projects:", strings.Join(remaining, ", "))
		return nil
	},
}

var projectActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Print the active project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			fail("project active", err)
		}

		active, err := reg.Active()
		if err != nil {
			fail("project active", err)
		}

		if flagJSON {
			return printJSON(map[string]string{"name": active})
		}
		fmt.Println(active)
		return nil
	},
}

var projectUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			fail("project use", err)
		}

		if err := reg.SetActive(args[0]); err != nil {
			fail("project use", err)
		}

		fmt.Println("Active project:", strings.ToLower(args[0]))
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectCreateDisplayName, "display-name", "", "project display name")
	projectCreateCmd.Flags().StringVar(&projectCreateDescription, "description", "", "project description")
	projectCreateCmd.Flags().StringVar(&projectCreateFolder, "folder", "", "project folder (default: <projects-dir>/<name>)")
	projectCreateCmd.Flags().BoolVar(&projectCreateActivate, "activate", false, "make the new project active")
	projectAddCmd.Flags().BoolVar(&projectAddActivate, "activate", false, "make the registered project active")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectRemoveCmd)
	projectCmd.AddCommand(projectActiveCmd)
	projectCmd.AddCommand(projectUseCmd)
}
