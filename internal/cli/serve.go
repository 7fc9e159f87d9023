package cli

import (
	"github.com/amankumarsingh77/slideshow-encoder/internal/app"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP job service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Fetch.AllowLocal {
				log.Warnf("fetch.allow_local is ignored by serve; only remote sources are accepted")
				cfg.Fetch.AllowLocal = false
			}
			a := app.New(cfg, log)
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
}
