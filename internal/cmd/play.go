package cmd

import (
	"ctchen222/tictactoe-solo/internal/cli"
	"ctchen222/tictactoe-solo/internal/config"
	"ctchen222/tictactoe-solo/internal/logger"
	"log/slog"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a hot-seat game in the terminal",
		Long: heredoc.Doc(`play starts a game in the terminal. X moves first and
			the players take turns at the same keyboard.

			Enter a move as "<row> <col>" with both numbers between 0
			and 2, "reset" to start over, or "quit" to leave.`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			slog.SetDefault(logger.New(cmd.ErrOrStderr(), config.Log{Level: level}))

			return cli.NewSession(cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}

	cmd.Flags().String("log-level", "warn", "Log level for diagnostics written to stderr")

	return cmd
}
