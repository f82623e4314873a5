// Dataset commands for the quest CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage datasets in the active project",
}

var datasetListCmd = &cobra.Command{
	Use:   "list <feature-id>",
	Short: "List datasets of a feature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openActiveStore()
		if err != nil {
			fail("dataset list", err)
		}
		defer store.Close()

		datasets, err := store.Datasets(args[0])
		if err != nil {
			fail("dataset list", err)
		}

		if flagJSON {
			return printJSON(datasets)
		}
		for _, d := range datasets {
			fmt.Printf("%s  %-14s  %s\n", d.DatasetID, d.Status, d.Unit)
		}
		return nil
	},
}

var datasetGetCmd = &cobra.Command{
	Use:   "get <dataset-id>",
	Short: "Show one dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openActiveStore()
		if err != nil {
			fail("dataset get", err)
		}
		defer store.Close()

		dataset, err := store.Dataset(args[0])
		if err != nil {
			fail("dataset get", err)
		}
		return printJSON(dataset)
	},
}

var datasetDeleteCmd = &cobra.Command{
	Use:   "delete <dataset-id>",
	Short: "Delete a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openActiveStore()
		if err != nil {
			fail("dataset delete", err)
		}
		defer store.Close()

		if err := store.DeleteDataset(args[0]); err != nil {
			fail("dataset delete", err)
		}

		fmt.Println("Deleted dataset:", args[0])
		return nil
	},
}

func init() {
	datasetCmd.AddCommand(datasetListCmd)
	datasetCmd.AddCommand(datasetGetCmd)
	datasetCmd.AddCommand(datasetDeleteCmd)
}
