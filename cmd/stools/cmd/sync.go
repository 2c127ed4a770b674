package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/service/download"
	"github.com/hyperloopupv-h8/stools/internal/service/mount"
	"github.com/hyperloopupv-h8/stools/internal/service/sync"
)

func newSyncCommand(a *app) *cobra.Command {
	var (
		output      string
		backendTag  string
		frontendTag string
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "sync <frontend>",
		Short: "Sync the backend and a frontend",
		Long: `Downloads the backend and the given frontend, then mounts both. This is the
same as calling download and mount for each target by hand.

A failed asset is reported but does not stop the sync unless --strict is set.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTargets(release.FrontendNames()),
		RunE: func(cmd *cobra.Command, args []string) error {
			frontend, err := release.ParseFrontend(args[0])
			if err != nil {
				return err
			}

			pipeline := sync.NewPipeline(download.NewService(a.client), mount.NewService())

			report, err := pipeline.Run(cmd.Context(), &sync.Options{
				Frontend:    frontend,
				BackendTag:  backendTag,
				FrontendTag: frontendTag,
				Output:      a.output(output),
				Strict:      strict,
			})
			sync.Print(cmd.OutOrStdout(), cmd.ErrOrStderr(), report, err)

			if err != nil {
				return errReported
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&backendTag, "backend", "", "version tag for the backend (default newest)")
	cmd.Flags().StringVar(&frontendTag, "frontend", "", "version tag for the frontend (default newest)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path for the downloaded files (default from settings, ./stools)")
	cmd.Flags().BoolVar(&strict, "strict", false, "abort before mounting if any asset failed to download")

	return cmd
}
