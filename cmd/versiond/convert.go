package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"versiond/codec"
	"versiond/transform"
	"versiond/versioning"
)

type ConvertOptions struct {
	ResourceOptions

	File       string
	From       int
	To         int
	InputType  string
	OutputType string

	// fromSet and toSet record whether --from / --to were given; unset means latest.
	fromSet bool
	toSet   bool
}

func NewCmdConvert() *cobra.Command {
	o := &ConvertOptions{
		ResourceOptions: ResourceOptions{Manifest: "resources.yml"},
		File:            "-",
		InputType:       codec.MediaTypeJSON,
		OutputType:      codec.MediaTypeJSON,
	}
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Upgrade a payload from --from to latest, then downgrade it to --to.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.fromSet = cmd.Flags().Changed("from")
			o.toSet = cmd.Flags().Changed("to")
			if err := o.Validate(); err != nil {
				return err
			}
			in := cmd.InOrStdin()
			if o.File != "-" {
				f, err := os.Open(o.File)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return o.Run(cmd.Context(), in, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ConvertOptions) Bind(fs *pflag.FlagSet) {
	o.ResourceOptions.Bind(fs)
	fs.StringVarP(&o.File, "file", "f", o.File, "Payload file, - for stdin.")
	fs.IntVar(&o.From, "from", o.From, "Version of the input; latest when unset.")
	fs.IntVar(&o.To, "to", o.To, "Version of the output; latest when unset.")
	fs.StringVar(&o.InputType, "input-type", o.InputType, "Media type of the input.")
	fs.StringVar(&o.OutputType, "output-type", o.OutputType, "Media type of the output.")
}

func (o *ConvertOptions) Validate() error {
	return o.ResourceOptions.Validate()
}

func (o *ConvertOptions) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	res, err := o.load()
	if err != nil {
		return err
	}
	enc, err := codec.Default.Lookup(o.OutputType)
	if err != nil {
		return err
	}

	parseReq := transform.NewRequest(nil)
	if o.fromSet {
		parseReq = parseReq.WithVersion(o.From)
	}
	latest, err := res.Parser.Parse(transform.ContextWithRequest(ctx, parseReq), in, o.InputType)
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}

	// the payload is its own entity here
	s := &versioning.Serializer{Base: res.Spec.TransformBase, Representer: versioning.PayloadRepresenter{}}
	outReq := transform.NewRequest(nil)
	if o.toSet {
		outReq = outReq.WithVersion(o.To)
	}
	p, err := s.ToRepresentation(transform.ContextWithRequest(ctx, outReq), latest)
	if err != nil {
		return fmt.Errorf("downgrade: %w", err)
	}
	return enc.Encode(out, p)
}
