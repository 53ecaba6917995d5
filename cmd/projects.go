package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
)

// projectsCmd represents the projects command
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the distinct protocols present in the feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := buildLoader(sourceConfigFromViper())
		if err != nil {
			return err
		}
		items, err := loader.Load(context.Background())
		if err != nil {
			return err
		}

		for _, p := range upgrades.Projects(items) {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}
