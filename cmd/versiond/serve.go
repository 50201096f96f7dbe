package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"versiond/internal/config"
	"versiond/internal/engine"
)

type ServeOptions struct {
	ConfigFile string
}

func NewCmdServe() *cobra.Command {
	o := &ServeOptions{ConfigFile: "versiond.yml"}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resources in the manifest over HTTP and gRPC.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.ConfigFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e, err := engine.Bootstrap(ctx, cfg)
			if err != nil {
				return err
			}
			return e.Run(ctx)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ServeOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFile, "config", "c", o.ConfigFile, "Service config file; a missing file means defaults and env only.")
}
