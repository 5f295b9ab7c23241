package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/dendrascience/vzip/internal/cmd"
	"github.com/dendrascience/vzip/version"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		cmd.NewRootCmd(),
		fang.WithVersion(version.GetFullVersion()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
