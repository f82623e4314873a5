// Collection commands for the quest CLI. Collections live in the active
// project's metadata store.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/quest/pkg/types"
)

var (
	collectionNewDisplayName string
	collectionNewDescription string
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage collections in the active project",
}

var collectionNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openActiveStore()
		if err != nil {
			fail("collection new", err)
		}
		defer store.Close()

		collection := types.Collection{
			Name:        args[0],
			DisplayName: collectionNewDisplayName,
			Description: collectionNewDescription,
		}
		if err := store.NewCollection(&collection); err != nil {
			fail("collection new", err)
		}

		if flagJSON {
			return printJSON(collection)
		}
		fmt.Println("Created collection:", collection.Name)
		return nil
	},
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openActiveStore()
		if err != nil {
			fail("collection list", err)
		}
		defer store.Close()

		collections, err := store.Collections()
		if err != nil {
			fail("collection list", err)
		}

		if flagJSON {
			return printJSON(collections)
		}
		for _, c := range collections {
			fmt.Println(c.Name)
		}
		return nil
	},
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a collection and its features",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openActiveStore()
		if err != nil {
			fail("collection delete", err)
		}
		defer store.Close()

		if err := store.DeleteCollection(args[0]); err != nil {
			fail("collection delete", err)
		}

		fmt.Println("Deleted collection:", args[0])
		return nil
	},
}

func init() {
	collectionNewCmd.Flags().StringVar(&collectionNewDisplayName, "display-name", "", "collection display name")
	collectionNewCmd.Flags().StringVar(&collectionNewDescription, "description", "", "collection description")

	collectionCmd.AddCommand(collectionNewCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)
}
