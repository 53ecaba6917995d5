package cmd

import (
	"github.com/spf13/cobra"
	"github.com/sw33tLie/upgradefeed/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upgrade feed web interface",
	Long:  `Start a web server rendering the feed page, plus a JSON API at /api/upgrades and /api/projects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := sourceConfigFromViper()
		loader, err := buildLoader(cfg)
		if err != nil {
			return err
		}

		// Auth
		user, _ := cmd.Flags().GetString("username")
		pass, _ := cmd.Flags().GetString("password")
		addr, _ := cmd.Flags().GetString("bind")
		title, _ := cmd.Flags().GetString("title")

		srv := server.New(loader, user, pass, cfg.richFilters())
		srv.Title = title
		return srv.Start(addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("bind", "b", ":9999", "Address to bind the server to")
	serveCmd.Flags().StringP("username", "u", "", "Username for basic auth (optional)")
	serveCmd.Flags().StringP("password", "p", "", "Password for basic auth (optional)")
	serveCmd.Flags().String("title", "", "Page title")
}
