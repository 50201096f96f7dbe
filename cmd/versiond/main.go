package main

import (
	"os"

	"github.com/spf13/cobra"

	"versiond/internal/logging"
)

func main() {
	logging.InitFromEnv()
	if err := NewVersiondCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewVersiondCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versiond",
		Short: "versiond serves resources at the representation version each client asks for.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(NewCmdServe())
	cmd.AddCommand(NewCmdConvert())
	cmd.AddCommand(NewCmdChain())
	cmd.AddCommand(NewCmdHealth())
	return cmd
}
