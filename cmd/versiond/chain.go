package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"versiond/transform"
)

type ChainOptions struct {
	ResourceOptions

	From int
}

func NewCmdChain() *cobra.Command {
	o := &ChainOptions{ResourceOptions: ResourceOptions{Manifest: "resources.yml"}, From: 1}
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "List the transform steps between a version and latest.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			res, err := o.load()
			if err != nil {
				return err
			}
			r := transform.NewResolver(nil)
			fwd, err := r.Resolve(res.Spec.TransformBase, o.From, false)
			if err != nil {
				return err
			}
			bwd, err := r.Resolve(res.Spec.TransformBase, o.From, true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "family:    %s\n", res.Spec.TransformBase)
			fmt.Fprintf(out, "versions:  %d -> %d\n", o.From, res.Latest())
			fmt.Fprintf(out, "forwards:  %s\n", formatSteps(fwd))
			fmt.Fprintf(out, "backwards: %s\n", formatSteps(bwd))
			return nil
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ChainOptions) Bind(fs *pflag.FlagSet) {
	o.ResourceOptions.Bind(fs)
	fs.IntVar(&o.From, "from", o.From, "Version the chain starts from.")
}

func formatSteps(steps []transform.Step) string {
	if len(steps) == 0 {
		return "(none)"
	}
	return strings.Join(lo.Map(steps, func(s transform.Step, _ int) string { return fmt.Sprintf("%04d", s.Index) }), " ")
}
