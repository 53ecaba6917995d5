package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/upgradefeed/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                                 _       __              _
	 _  _ _ __  __ _ _ _ __ _ __| |___  / _|___ ___ __| |
	| || | '_ \/ _' | '_/ _' / _' / -_)|  _/ -_) -_) _' |
	 \_,_| .__/\__, |_| \__,_\__,_\___||_| \___\___\__,_|
	     |_|   |___/

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "upgradefeed",
	Short: "A filterable feed of detected protocol upgrades.",
	Long: LOGO + `upgradefeed loads upgrade events detected across DeFi protocols and shows them
newest first, filtered by protocol, free text, confidence tier and subtype impact.

Records come from a static JSON document, a hosted REST table or a local SQLite database.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.upgradefeed.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")

	// Data source
	rootCmd.PersistentFlags().StringP("source", "s", "", "Data source kind. Available: static, rest, sqlite")
	rootCmd.PersistentFlags().String("url", "", "Static JSON document URL, or REST base URL")
	rootCmd.PersistentFlags().String("table", "", "REST table name (default upgrades)")
	rootCmd.PersistentFlags().String("apikey", "", "REST API key")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (default ~/.config/upgradefeed/upgrades.sqlite)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP timeout for remote sources")
	rootCmd.PersistentFlags().Int("retries", 0, "Retries for failed remote requests")
	rootCmd.PersistentFlags().Bool("rich-filters", false, "Enable status tier and subtype confidence filters")

	bindFlag("proxy", "proxy")
	bindFlag("source.kind", "source")
	bindFlag("source.url", "url")
	bindFlag("source.table", "table")
	bindFlag("source.apikey", "apikey")
	bindFlag("source.dbpath", "dbpath")
	bindFlag("source.timeout", "timeout")
	bindFlag("source.retries", "retries")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Set default values before a missing config file is written out
	viper.SetDefault("source.kind", sourceStatic)
	viper.SetDefault("source.url", "")
	viper.SetDefault("source.table", "upgrades")
	viper.SetDefault("source.apikey", "")
	viper.SetDefault("source.dbpath", "")
	viper.SetDefault("source.timeout", "30s")
	viper.SetDefault("source.retries", 0)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".upgradefeed")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("UPGRADEFEED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.upgradefeed.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		} else {
			fmt.Printf("Error reading config file: %s\n", err)
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		utils.Log.Fatal(err)
	}
}
