package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	service "github.com/okian/podium/internal/app"
)

var errCommitNeedsDatabase = errors.New("--commit needs database_dsn")

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "rank one match from screenshots and print the session as JSON",
		ArgsUsage: "IMAGE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagCompetition, Usage: "competition id", Required: true},
			&cli.StringFlag{Name: flagRoster, Usage: "YAML or XLSX roster file (overrides roster_path)"},
			&cli.IntFlag{Name: flagMaxTeams, Usage: "lobby size (default from config)"},
			&cli.BoolFlag{Name: flagCommit, Usage: "save the results to the database"},
		},
		Action: process,
	}
}

func process(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("%w: no images given", service.ErrInvalidBatch)
	}
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	if c.Bool(flagCommit) && cfg.DatabaseDSN == "" {
		return errCommitNeedsDatabase
	}

	images, err := loadImages(c.Args().Slice())
	if err != nil {
		return err
	}

	db, closeDB, err := openDB(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	svc, err := buildService(cfg, db, c.String(flagRoster))
	if err != nil {
		return err
	}

	sess, runErr := svc.RunBatch(c.Context, service.BatchRequest{
		CompetitionID: c.String(flagCompetition),
		MaxTeams:      c.Int(flagMaxTeams),
		Images:        images,
	})
	if runErr == nil && c.Bool(flagCommit) {
		sess, runErr = svc.Commit(c.Context, sess.ID)
	}
	if sess.ID != "" {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sess); err != nil {
			return fmt.Errorf("write session: %w", err)
		}
	}
	return runErr
}
