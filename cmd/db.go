package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sw33tLie/upgradefeed/internal/utils"
	"github.com/sw33tLie/upgradefeed/pkg/source"
	"github.com/sw33tLie/upgradefeed/pkg/storage"
	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the local upgrades database",
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.json|->",
	Short: "Import upgrade records from a JSON file into the local database",
	Long: `Import a JSON array of upgrade records, or of rows carrying a "payload" object.
Records already present (same id, or same project and headline) are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			body []byte
			err  error
		)
		if args[0] == "-" {
			body, err = io.ReadAll(os.Stdin)
		} else {
			body, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}

		items, err := source.Decode(body)
		if err != nil {
			return fmt.Errorf("could not decode %s: %w", args[0], err)
		}
		return importIntoDB(cmd.Context(), viper.GetString("source.dbpath"), items)
	},
}

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy every record from the configured remote source into the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := sourceConfigFromViper()
		if cfg.Kind == sourceSQLite {
			return fmt.Errorf("sync needs a remote source (%s or %s)", sourceStatic, sourceREST)
		}
		loader, err := buildLoader(cfg)
		if err != nil {
			return err
		}
		items, err := loader.Load(context.Background())
		if err != nil {
			return err
		}
		return importIntoDB(cmd.Context(), cfg.DBPath, items)
	},
}

func importIntoDB(ctx context.Context, dbPath string, items []upgrades.Upgrade) error {
	absPath, err := utils.GetAbsDBPath(dbPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return err
	}

	lock, err := utils.NewDBLock(absPath)
	if err != nil {
		return err
	}
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer lock.Unlock()

	db, err := storage.Open(absPath)
	if err != nil {
		return err
	}
	defer db.Close()

	added, err := db.ImportUpgrades(ctx, items)
	if err != nil {
		return err
	}
	utils.Log.WithField("db", absPath).Infof("Imported %d new upgrades (%d already present)", added, len(items)-added)
	return nil
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints statistics about the upgrades in the database.",
	Long:  "Prints per-protocol upgrade counts and the latest upgrade time in the database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		absPath, err := utils.GetAbsDBPath(viper.GetString("source.dbpath"))
		if err != nil {
			return err
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", absPath)
		}

		db, err := storage.Open(absPath)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No data in the database to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "PROTOCOL\tUPGRADES\tLATEST\t")

		var total int
		for _, s := range stats {
			latest := s.LatestAt
			if latest == "" {
				latest = upgrades.UnknownTime
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t\n", s.Project, s.UpgradeCount, latest)
			total += s.UpgradeCount
		}

		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t \t\n", total)

		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(importCmd)
	dbCmd.AddCommand(syncCmd)
	dbCmd.AddCommand(statsCmd)
}
