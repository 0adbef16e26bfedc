package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/adapters/roster"
	"github.com/okian/podium/pkg/logger"
)

func rosterCommand() *cli.Command {
	return &cli.Command{
		Name:  "roster",
		Usage: "roster maintenance",
		Subcommands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "load a YAML or XLSX roster into the database",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagCompetition, Usage: "import only this competition"},
				},
				Action: importRoster,
			},
		},
	}
}

func importRoster(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("%w: expected one roster file", roster.ErrInvalidRoster)
	}
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	if cfg.DatabaseDSN == "" {
		return errNoDatabase
	}

	static, err := roster.Open(c.Args().First())
	if err != nil {
		return err
	}
	ids := static.Competitions()
	if only := c.String(flagCompetition); only != "" {
		ids = []string{only}
	}

	db, closeDB, err := openDB(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeDB()
	store := repository.NewBunStore(db)

	for _, id := range ids {
		teams, err := static.Teams(c.Context, id)
		if err != nil {
			return err
		}
		if err := store.ImportTeams(c.Context, id, teams); err != nil {
			return fmt.Errorf("import %s: %w", id, err)
		}
		logger.Get().Info(c.Context, "roster imported", logger.String("competition", id), logger.Int("teams", len(teams)))
	}
	return nil
}
