package cli

import (
	"context"
	"fmt"

	"github.com/amankumarsingh77/slideshow-encoder/internal/config"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion overrides the version reported by --version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand wires the serve and render subcommands.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "slideshow",
		Short:         "Render image slideshows into videos",
		Long:          `slideshow turns an ordered list of images with durations and transitions into a single encoded video, either as an HTTP job service or as a one-shot command.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultConfigFile, "path to the yaml config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newRenderCmd(opts))
	return root
}

// Execute runs the CLI with ctx as the lifetime of every command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// load reads configuration and builds the logger shared by all commands.
func (o *rootOptions) load() (*config.Config, logger.Logger, error) {
	v, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		return nil, nil, fmt.Errorf("parse config: %w", err)
	}
	if o.verbose {
		cfg.Logger.Level = "debug"
	}

	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)
	return cfg, appLogger, nil
}
