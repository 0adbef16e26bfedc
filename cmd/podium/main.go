// Command podium runs the ranking service and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "podium:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "podium",
		Usage: "battle-royale ranking consolidation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Usage:   "path to a YAML config file",
				EnvVars: []string{"PODIUM_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			processCommand(),
			migrateCommand(),
			rosterCommand(),
		},
	}
}
