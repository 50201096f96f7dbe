package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"versiond/internal/transport"
)

type HealthOptions struct {
	Addr     string
	Resource string
	Timeout  time.Duration
}

func NewCmdHealth() *cobra.Command {
	o := &HealthOptions{Addr: "localhost:7070", Timeout: 5 * time.Second}
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the gRPC health service of a running versiond.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := transport.Dial(o.Addr)
			if err != nil {
				return err
			}
			defer cli.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), o.Timeout)
			defer cancel()
			st, err := cli.Check(ctx, o.Resource)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), st.String())
			return nil
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *HealthOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "addr", o.Addr, "gRPC address of the server.")
	fs.StringVarP(&o.Resource, "resource", "r", o.Resource, "Resource to check; empty checks the server.")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Request timeout.")
}
