package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyperloopupv-h8/stools/internal/config"
	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/github"
	"github.com/hyperloopupv-h8/stools/internal/logger"
	"github.com/hyperloopupv-h8/stools/internal/version"
)

// errReported means the command already printed its failure.
var errReported = errors.New("command failed")

// annotationNoSettings marks commands, and their children, that run without
// loading settings or building the client.
const annotationNoSettings = "stools/no-settings"

// app holds the state shared by subcommands of one invocation.
type app struct {
	// configPath is the --config flag.
	configPath string
	// logLevel is the --log-level flag; it overrides the settings file.
	logLevel string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
	// client is shared by every request of the invocation.
	client *github.Client
}

// newRootCommand builds the command tree.
func newRootCommand() *cobra.Command {
	a := new(app)

	root := &cobra.Command{
		Use:   "stools",
		Short: "The power of software at the palm of your hands",
		Long: `Sync with a selection of the software applications easily. Currently, it can
sync the back end, the ethernet view and the control station.

To start working run "stools sync <target>".`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.prepare,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"path to settings file (default "+config.DefaultConfigFilename+" if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newListCommand(a),
		newDownloadCommand(a),
		newMountCommand(a),
		newSyncCommand(a),
		newConfigCommand(a),
	)

	version.AttachCobraVersionCommand(root)

	return root
}

// prepare loads settings, applies the log level and builds the shared client.
func (a *app) prepare(cmd *cobra.Command, _ []string) error {
	if skipsSettings(cmd) {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	logger.SetLevel(level)

	client, err := github.FromConfig(cfg)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.client = client

	return nil
}

// skipsSettings reports whether cmd works without settings, so a broken
// settings file cannot stop it.
func skipsSettings(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if _, found := current.Annotations[annotationNoSettings]; found {
			return true
		}

		switch current.Name() {
		case "help", "version", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}

	return false
}

// output returns flagValue, or the configured default directory.
func (a *app) output(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	return a.cfg.Output
}

// completeTargets offers target names for the first positional argument.
func completeTargets(names []string) cobra.CompletionFunc {
	return func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

// parseTargetArg validates the target positional argument.
func parseTargetArg(args []string) (release.Target, error) {
	return release.ParseTarget(args[0])
}

// Execute runs the stools CLI and exits with non-zero status on error.
func Execute() {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := newRootCommand().ExecuteContext(ctx)

	stop()

	if err == nil {
		return
	}

	if !errors.Is(err, errReported) {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
	}

	os.Exit(1)
}
