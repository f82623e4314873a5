// Feature commands for the quest CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/quest/pkg/types"
)

var (
	featureAddCollection  string
	featureAddDisplayName string
	featureAddDescription string
	featureAddGeomType    string
	featureAddGeomCoords  string
	featureAddService     string
	featureListCollection string
)

var featureCmd = &cobra.Command{
	Use:   "feature",
	Short: "Manage features in the active project",
}

var featureAddCmd = &cobra.Command{
	Use:   "add [service-uri...]",
	Short: "Add features to a collection",
	Long: `Add features to a collection.

With service URI arguments, one feature is created per URI, each
carrying its source service reference:

  quest feature add --collection col1 svc://usgs-nwis:iv/01529500

Without arguments a single feature is created from the flags.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if featureAddCollection == "" {
			fmt.Fprintln(os.Stderr, "feature add: --collection is required")
			os.Exit(exitUserError)
		}

		if len(args) > 0 {
			store, err := openActiveStore()
			if err != nil {
				fail("feature add", err)
			}
			defer store.Close()

			ids, err := store.AddFeatures(featureAddCollection, args)
			if err != nil {
				fail("feature add", err)
			}

			if flagJSON {
				return printJSON(ids)
			}
			for _, id := range ids {
				fmt.Println("Added feature:", id)
			}
			return nil
		}

		feature := types.Feature{
			Collection:  featureAddCollection,
			DisplayName: featureAddDisplayName,
			Description: featureAddDescription,
			GeomType:    featureAddGeomType,
			Service:     featureAddService,
		}
		if featureAddGeomCoords != "" {
			if !json.Valid([]byte(featureAddGeomCoords)) {
				fmt.Fprintln(os.Stderr, "feature add: --geom-coords must be valid JSON")
				os.Exit(exitUserError)
			}
			feature.GeomCoords = json.RawMessage(featureAddGeomCoords)
		}

		store, err := openActiveStore()
		if err != nil {
			fail("feature add", err)
		}
		defer store.Close()

		if err := store.AddFeature(&feature); err != nil {
			fail("feature add", err)
		}

		if flagJSON {
			return printJSON(feature)
		}
		fmt.Println("Added feature:", feature.FeatureID)
		return nil
	},
}

var featureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List features, optionally filtered by collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openActiveStore()
		if err != nil {
			fail("feature list", err)
		}
		defer store.Close()

		var collections []string
		if featureListCollection != "" {
			collections = append(collections, featureListCollection)
		}
		features, err := store.Features(collections...)
		if err != nil {
			fail("feature list", err)
		}

		if flagJSON {
			return printJSON(features)
		}
		for _, f := range features {
			fmt.Printf("%s  %s  %s\n", f.FeatureID, f.Collection, f.DisplayName)
		}
		return nil
	},
}

var featureGetCmd = &cobra.Command{
	Use:   "get <feature-id>",
	Short: "Show one feature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openActiveStore()
		if err != nil {
			fail("feature get", err)
		}
		defer store.Close()

		feature, err := store.Feature(args[0])
		if err != nil {
			fail("feature get", err)
		}
		return printJSON(feature)
	},
}

var featureDeleteCmd = &cobra.Command{
	Use:   "delete <feature-id>",
	Short: "Delete a feature and its datasets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openActiveStore()
		if err != nil {
			fail("feature delete", err)
		}
		defer store.Close()

		if err := store.DeleteFeature(args[0]); err != nil {
			fail("feature delete", err)
		}

		fmt.Println("Deleted feature:", args[0])
		return nil
	},
}

func init() {
	featureAddCmd.Flags().StringVar(&featureAddCollection, "collection", "", "collection the feature belongs to (required)")
	featureAddCmd.Flags().StringVar(&featureAddDisplayName, "display-name", "", "feature display name")
	featureAddCmd.Flags().StringVar(&featureAddDescription, "description", "", "feature description")
	featureAddCmd.Flags().StringVar(&featureAddGeomType, "geom-type", "", "geometry type (Point, LineString, Polygon)")
	featureAddCmd.Flags().StringVar(&featureAddGeomCoords, "geom-coords", "", "geometry coordinates as JSON")
	featureAddCmd.Flags().StringVar(&featureAddService, "service", "", "source service URI (svc://provider:service)")
	featureAddCmd.MarkFlagRequired("collection")

	featureListCmd.Flags().StringVar(&featureListCollection, "collection", "", "filter by collection")

	featureCmd.AddCommand(featureAddCmd)
	featureCmd.AddCommand(featureListCmd)
	featureCmd.AddCommand(featureGetCmd)
	featureCmd.AddCommand(featureDeleteCmd)
}
