package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sushihentaime/blogist-web/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	v := newViper()
	var configPath string

	cmd := &cobra.Command{
		Use:          "blogist-web",
		Short:        "Web frontend for the blog API",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", ".env", "path to an optional .env file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, configPath)
			if err != nil {
				return fmt.Errorf("could not load configuration: %w", err)
			}

			app, err := newApplication(cfg, logger.New(cfg.LogLevel, cfg.Environment))
			if err != nil {
				return err
			}

			return app.serve(cfg.Port)
		},
	}
	serve.Flags().String("port", "", "listen address, overrides PORT")
	serve.Flags().String("api-url", "", "base URL of the blog API, overrides API_URL")
	v.BindPFlag("PORT", serve.Flags().Lookup("port"))
	v.BindPFlag("API_URL", serve.Flags().Lookup("api-url"))

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	cmd.AddCommand(serve, versionCmd)
	return cmd
}
