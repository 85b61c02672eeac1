package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/idilsaglam/tada/internal/cli"
	"github.com/idilsaglam/tada/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	groupPending := flag.Bool("group", false, "group output by pending/done")
	server := flag.String("server", "", "todo server URL (default $TADA_SERVER)")
	theme := flag.String("theme", os.Getenv("TADA_THEME"), "color theme: classic, neon or mono")
	noColor := flag.Bool("no-color", false, "disable colors")
	flag.Parse()

	ui.SetTheme(*theme)
	if *noColor {
		ui.SetColorForcing(false, true)
	}

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, args, cli.Options{
		Group:  *groupPending,
		Server: *server,
	})
	stop()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
