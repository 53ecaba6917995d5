package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/sw33tLie/upgradefeed/pkg/source"
	"github.com/sw33tLie/upgradefeed/pkg/whttp"
)

const (
	sourceStatic = "static"
	sourceREST   = "rest"
	sourceSQLite = "sqlite"
)

type sourceConfig struct {
	Kind    string
	URL     string
	Table   string
	APIKey  string
	DBPath  string
	Proxy   string
	Timeout time.Duration
	Retries int

	// RichFilters is nil when neither the config nor a flag sets it.
	RichFilters *bool
}

func sourceConfigFromViper() sourceConfig {
	cfg := sourceConfig{
		Kind:    strings.ToLower(strings.TrimSpace(viper.GetString("source.kind"))),
		URL:     strings.TrimSpace(viper.GetString("source.url")),
		Table:   viper.GetString("source.table"),
		APIKey:  viper.GetString("source.apikey"),
		DBPath:  viper.GetString("source.dbpath"),
		Proxy:   viper.GetString("proxy"),
		Timeout: viper.GetDuration("source.timeout"),
		Retries: viper.GetInt("source.retries"),
	}
	// Not bound to viper: a freshly written config file would pin it to false.
	if flags := rootCmd.PersistentFlags(); flags.Changed("rich-filters") {
		rich, _ := flags.GetBool("rich-filters")
		cfg.RichFilters = &rich
	} else if viper.IsSet("feed.rich_filters") {
		rich := viper.GetBool("feed.rich_filters")
		cfg.RichFilters = &rich
	}
	return cfg
}

// richFilters defaults to on for sources that carry subtype data.
func (c sourceConfig) richFilters() bool {
	if c.RichFilters != nil {
		return *c.RichFilters
	}
	return c.Kind != "" && c.Kind != sourceStatic
}

func buildLoader(cfg sourceConfig) (source.Loader, error) {
	switch cfg.Kind {
	case sourceStatic, "":
		if cfg.URL == "" {
			return nil, fmt.Errorf("source.url is required for the %s source", sourceStatic)
		}
		client, err := whttp.NewClient(whttp.ClientOptions{Timeout: cfg.Timeout, RetryMax: cfg.Retries, Proxy: cfg.Proxy})
		if err != nil {
			return nil, err
		}
		return &source.Static{URL: cfg.URL, Client: client}, nil

	case sourceREST:
		if cfg.URL == "" {
			return nil, fmt.Errorf("source.url is required for the %s source", sourceREST)
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("source.apikey is required for the %s source", sourceREST)
		}
		client, err := whttp.NewClient(whttp.ClientOptions{Timeout: cfg.Timeout, RetryMax: cfg.Retries, Proxy: cfg.Proxy})
		if err != nil {
			return nil, err
		}
		return &source.REST{BaseURL: cfg.URL, Table: cfg.Table, APIKey: cfg.APIKey, Client: client}, nil

	case sourceSQLite:
		return &source.SQLite{Path: cfg.DBPath}, nil
	}
	return nil, fmt.Errorf("unknown source %q (available: %s, %s, %s)", cfg.Kind, sourceStatic, sourceREST, sourceSQLite)
}
