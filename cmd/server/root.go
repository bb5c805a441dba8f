package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"linkedlist/config"
)

var version = "0.0.0-dev"

func init() {
	RootCmd.AddCommand(ServeCmd)
	RootCmd.AddCommand(VersionCmd)
}

// RootCmd is the main command for the 'listd' binary.
var RootCmd = &cobra.Command{
	Use:   "listd",
	Short: "`listd` serves named linked lists over gRPC",
	Long:  "`listd` serves named linked lists over gRPC",
	Run: func(cmd *cobra.Command, args []string) {
		// nolint:errcheck
		cmd.Usage()
	},
}

// VersionCmd prints the version and exits.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "`version` shows the version and exits",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "listd", version)
	},
}

// resolveConfiguration reads the file named by the first argument or
// LINKEDLIST_CONFIGURATION_PATH. With neither, defaults are used.
func resolveConfiguration(args []string) (*config.Config, error) {
	var configurationPath string

	if len(args) > 0 {
		configurationPath = args[0]
	} else if os.Getenv("LINKEDLIST_CONFIGURATION_PATH") != "" {
		configurationPath = os.Getenv("LINKEDLIST_CONFIGURATION_PATH")
	}

	if configurationPath == "" {
		return config.Default(), nil
	}

	fp, err := os.Open(configurationPath)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	cfg, err := config.Parse(fp)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %v", configurationPath, err)
	}
	return cfg, nil
}

func configureLogging(cfg config.Log) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	switch cfg.Formatter {
	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	case "text":
		log.SetFormatter(&log.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	default:
		return fmt.Errorf("unsupported logging formatter: %q", cfg.Formatter)
	}

	log.Debugf("using %q logging formatter", cfg.Formatter)
	return nil
}
