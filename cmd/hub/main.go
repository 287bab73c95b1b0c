// Command hub renders and inspects hub-and-spoke datasets.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ha1tch/hubview/pkg/config"
	"github.com/ha1tch/hubview/pkg/debug"
	"github.com/ha1tch/hubview/pkg/hub"
)

var version = "0.3.0"

var (
	configPath string
	debugFile  string
	cfg        *config.Config
)

// errInvalid makes the process exit non-zero without printing again.
var errInvalid = errors.New("dataset has problems")

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hub",
		Short: "hub - hub-and-spoke dataset toolkit",
		Long: Brand.Sprint("hub") + " - render and inspect hub-and-spoke datasets\n" +
			Subtle.Sprint("Datasets are JSON, YAML or TOML files with one hub and its nodes"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debugFile != "" {
				debug.Enable(debugFile)
			}
			var err error
			if configPath != "" {
				cfg, err = config.LoadFrom(configPath)
			} else {
				cfg, err = config.Load()
			}
			return err
		},
	}
	root.SetVersionTemplate("hub {{ .Version }}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.Path()+")")
	root.PersistentFlags().StringVar(&debugFile, "debug", "", "write debug log to file")

	root.AddCommand(
		renderCmd(),
		dotCmd(),
		infoCmd(),
		validateCmd(),
		layoutCmd(),
	)
	return root
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			Bad.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func loadDataset(path string) (*hub.Dataset, error) {
	ds, err := hub.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return ds, nil
}
