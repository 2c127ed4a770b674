package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/service/list"
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <target>",
		Short: "List all the available versions for the target",
		Long: `Outputs the version tags available to download, newest first. A tag can be
passed to other commands to download a specific version of the target.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTargets(release.TargetNames()),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTargetArg(args)
			if err != nil {
				return err
			}

			tags, err := list.Run(cmd.Context(), a.client, &list.Options{Target: target})
			list.Print(cmd.OutOrStdout(), cmd.ErrOrStderr(), tags, err)

			if err != nil {
				return errReported
			}

			return nil
		},
	}
}
