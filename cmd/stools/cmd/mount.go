package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/service/mount"
)

func newMountCommand(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "mount <target>",
		Short: "Prepare all the target files",
		Long: `After downloading all the artifacts run this command to put every file where it
should go. For a frontend it means extracting static.zip; the backend files stay
as they are.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTargets(release.TargetNames()),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTargetArg(args)
			if err != nil {
				return err
			}

			err = mount.NewService().Run(cmd.Context(), &mount.Options{
				Target: target,
				Path:   a.output(path),
			})
			mount.Print(cmd.OutOrStdout(), cmd.ErrOrStderr(), err)

			if err != nil {
				return errReported
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "path where the files are stored (default from settings, ./stools)")

	return cmd
}
