// URI commands for the quest CLI: parsing and classification of catalog
// resource references.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/quest/pkg/ref"
)

var (
	uriClassifyExclude     []string
	uriClassifyRequireSame bool
)

var uriCmd = &cobra.Command{
	Use:   "uri",
	Short: "Parse and classify resource URIs",
}

var uriParseCmd = &cobra.Command{
	Use:   "parse <uri>",
	Short: "Parse a resource URI into its components",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed, err := ref.Parse(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "uri parse:", err)
			os.Exit(exitUserError)
		}

		if flagJSON {
			return printJSON(map[string]string{
				"kind":     string(parsed.Kind),
				"provider": parsed.Provider,
				"service":  parsed.Service,
				"feature":  parsed.Feature,
				"id":       parsed.ID,
			})
		}

		fmt.Println("kind:    ", parsed.Kind)
		if parsed.Kind == ref.KindService {
			fmt.Println("provider:", parsed.Provider)
			fmt.Println("service: ", parsed.Service)
			fmt.Println("feature: ", parsed.Feature)
		} else {
			fmt.Println("id:      ", parsed.ID)
		}
		return nil
	},
}

var uriClassifyCmd = &cobra.Command{
	Use:   "classify <uri>...",
	Short: "Group URIs into resource-kind buckets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exclude := make([]ref.Kind, 0, len(uriClassifyExclude))
		for _, k := range uriClassifyExclude {
			exclude = append(exclude, ref.Kind(k))
		}

		grouped, err := ref.Classify(args, ref.ClassifyOptions{
			Exclude:     exclude,
			RequireSame: uriClassifyRequireSame,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "uri classify:", err)
			os.Exit(exitUserError)
		}

		if flagJSON {
			return printJSON(grouped)
		}

		kinds := make([]string, 0, len(grouped))
		for kind := range grouped {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Printf("%s:\n", kind)
			for _, uri := range grouped[ref.Kind(kind)] {
				fmt.Printf("  %s\n", uri)
			}
		}
		return nil
	},
}

func init() {
	uriClassifyCmd.Flags().StringSliceVar(&uriClassifyExclude, "exclude", nil, "kinds that must not appear")
	uriClassifyCmd.Flags().BoolVar(&uriClassifyRequireSame, "require-same-type", false, "require all URIs to be one kind")

	uriCmd.AddCommand(uriParseCmd)
	uriCmd.AddCommand(uriClassifyCmd)
}
