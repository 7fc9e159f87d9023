package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/amankumarsingh77/slideshow-encoder/internal/app"
	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	specPath   string
	allowLocal bool
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one slideshow job and wait for it",
		Long: `Render reads a job description in the same JSON shape accepted by POST /video,
runs it through the pipeline and prints the final status.`,
		Example: `  slideshow render --spec job.json
  slideshow render --allow-local --spec slides.json
  slideshow render --spec - < job.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readSpec(opts.specPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			if opts.allowLocal {
				cfg.Fetch.AllowLocal = true
			}
			a := app.New(cfg, log)
			defer a.Close()

			id, status, runErr := a.RenderOnce(cmd.Context(), input)
			if id != "" {
				if err := printStatus(cmd.OutOrStdout(), id, status); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&opts.specPath, "spec", "s", "", "job JSON file, or - for stdin")
	cmd.Flags().BoolVar(&opts.allowLocal, "allow-local", false, "accept file:// and plain path sources")
	_ = cmd.MarkFlagRequired("spec")
	return cmd
}

func readSpec(path string, stdin io.Reader) (*models.CreateVideoInput, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open spec: %w", err)
		}
		defer f.Close()
		r = f
	}

	input := &models.CreateVideoInput{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(input); err != nil {
		return nil, fmt.Errorf("decode spec: %w", err)
	}
	return input, nil
}

func printStatus(w io.Writer, id string, status models.StatusResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		ID string `json:"id"`
		models.StatusResponse
	}{ID: id, StatusResponse: status})
}
