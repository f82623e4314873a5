// Filter commands for the quest CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/quest/internal/filters"
)

var filterApplyOptions []string

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "List and apply dataset filters",
}

var filterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := filters.Names()
		if flagJSON {
			return printJSON(names)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var filterApplyCmd = &cobra.Command{
	Use:   "apply <filter> <dataset-id>",
	Short: "Apply a filter to a dataset, producing a derived dataset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := filters.Get(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "filter apply:", err)
			os.Exit(exitUserError)
		}

		opts := filters.Options{}
		for _, kv := range filterApplyOptions {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) != 2 {
				fmt.Fprintf(os.Stderr, "filter apply: invalid option %q (expected key=value)\n", kv)
				os.Exit(exitUserError)
			}
			opts[parts[0]] = parts[1]
		}

		store, err := openActiveStore()
		if err != nil {
			fail("filter apply", err)
		}
		defer store.Close()

		dataset, err := store.Dataset(args[1])
		if err != nil {
			fail("filter apply", err)
		}

		derived, err := filter.Apply(dataset, opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, "filter apply:", err)
			os.Exit(exitUserError)
		}
		if err := store.AddDataset(&derived); err != nil {
			fail("filter apply", err)
		}

		if flagJSON {
			return printJSON(derived)
		}
		fmt.Println("Created dataset:", derived.DatasetID)
		return nil
	},
}

func init() {
	filterApplyCmd.Flags().StringSliceVar(&filterApplyOptions, "option", nil, "filter option as key=value (repeatable)")

	filterCmd.AddCommand(filterListCmd)
	filterCmd.AddCommand(filterApplyCmd)
}
