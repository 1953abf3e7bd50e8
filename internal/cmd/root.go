package cmd

import (
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "tictactoe",
		Short: "Tic-tac-toe for two players on one device",
		Args:  cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
	root.Version = version

	root.AddCommand(Serve())
	root.AddCommand(Play())

	return root
}
