package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/service/download"
)

func newDownloadCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <target> [tag]",
		Short: "Download all the target files",
		Long: `Downloads every artifact of the GitHub release to the output directory,
creating it if it doesn't exist. Without a tag the newest release is used.

Assets are downloaded concurrently. A failing asset does not stop the others;
each one is reported on its own line.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeTargets(release.TargetNames()),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTargetArg(args)
			if err != nil {
				return err
			}

			options := &download.Options{
				Target: target,
				Output: a.output(output),
			}

			if len(args) > 1 {
				options.Tag = args[1]
			}

			report, err := download.NewService(a.client).Run(cmd.Context(), options)
			if err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), err)

				return errReported
			}

			download.Print(cmd.OutOrStdout(), cmd.ErrOrStderr(), report)

			if len(report.Unsuccessful()) > 0 {
				return errReported
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path for the downloaded files (default from settings, ./stools)")

	return cmd
}
