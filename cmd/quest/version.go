// Version command for the quest CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/quest/pkg/quest"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the quest version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("quest", quest.Version)
	},
}
