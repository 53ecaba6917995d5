package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/upgradefeed/pkg/feed"
	"github.com/sw33tLie/upgradefeed/pkg/render"
	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
)

// output is a feed.UI that writes its retained state once the session ends.
type output interface {
	feed.UI
	Flush() error
}

type htmlOutput struct {
	*render.Page
	w io.Writer
}

func (h htmlOutput) Flush() error { return h.Render(h.w) }

func newOutput(format string, w io.Writer, rich bool) (output, error) {
	switch format {
	case "text", "":
		return &render.Terminal{Out: w}, nil
	case "json":
		return &render.JSON{Out: w, Indent: true}, nil
	case "html":
		return htmlOutput{Page: render.NewPage(render.PageOptions{RichFilters: rich}), w: w}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (available: text, json, html)", format)
}

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the upgrade feed, newest first",
	Long: `Loads the configured source once and prints the records that pass the given filters.
Passing --tier or --min-subtype-confidence turns the rich filters on.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := sourceConfigFromViper()
		loader, err := buildLoader(cfg)
		if err != nil {
			return err
		}

		project, _ := cmd.Flags().GetString("project")
		search, _ := cmd.Flags().GetString("search")
		tierFlag, _ := cmd.Flags().GetString("tier")
		minConf, _ := cmd.Flags().GetFloat64("min-subtype-confidence")
		format, _ := cmd.Flags().GetString("output")

		tier, err := upgrades.ParseStatusTier(tierFlag)
		if err != nil {
			return err
		}
		if !(minConf >= 0 && minConf <= 1) {
			return fmt.Errorf("--min-subtype-confidence must be between 0 and 1, got %v", minConf)
		}

		rich := cfg.richFilters() || cmd.Flags().Changed("tier") || cmd.Flags().Changed("min-subtype-confidence")
		out, err := newOutput(format, os.Stdout, rich)
		if err != nil {
			return err
		}

		c := feed.New(loader, out, feed.Options{RichFilters: rich})
		if loadErr := c.Load(cmd.Context()); loadErr != nil {
			if err := out.Flush(); err != nil {
				return err
			}
			return loadErr
		}
		c.ApplyFilters(upgrades.FilterState{
			Project:              project,
			Tier:                 tier,
			MinSubtypeConfidence: minConf,
			Query:                search,
		})
		return out.Flush()
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringP("project", "p", upgrades.AllProjects, "Only show this protocol (case-insensitive)")
	showCmd.Flags().StringP("search", "q", "", "Case-insensitive text to find in headlines and reasoning")
	showCmd.Flags().StringP("tier", "t", "", "Status tier. Available: all, confirmed, imminent, in-progress, speculative")
	showCmd.Flags().Float64("min-subtype-confidence", 0, "Keep records with a subtype impact at or above this confidence (0-1)")
	showCmd.Flags().StringP("output", "o", "text", "Output format. Available: text, json, html")
}
