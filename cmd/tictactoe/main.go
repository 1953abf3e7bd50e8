package main

import (
	"context"
	"ctchen222/tictactoe-solo/internal/cmd"
	"fmt"
	"os"
)

func main() {
	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "tictactoe:", err)
		os.Exit(1)
	}
}
