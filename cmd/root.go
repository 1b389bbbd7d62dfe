package cmd

import (
	"sync"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	configFile string
	logLevel   string
}

// appLoader wires the application on first use so that flags parsed by
// cobra reach the configuration layer.
type appLoader struct {
	opts *rootOptions

	once sync.Once
	app  *app
	err  error
}

func (l *appLoader) load(cmd *cobra.Command) (*app, error) {
	l.once.Do(func() {
		l.app, l.err = wireApp(*l.opts, cmd.ErrOrStderr())
	})
	return l.app, l.err
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	loader := &appLoader{opts: opts}

	rootCmd := &cobra.Command{
		Use:           "gccpr",
		Short:         "GCC pass reordering sessions (gccpr)",
		Long:          "gccpr drives pass-reordering sessions against a GCC plugin: it keeps per-slot pass lists legal, builds benchmarks with them and measures code size and runtime against a baseline.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: ~/.gccpr/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newVersionCmd(),
		newEpisodeCmd(loader),
		newPassesCmd(loader),
		newHistoryCmd(loader),
		newServeCmd(loader),
	)

	return rootCmd
}
