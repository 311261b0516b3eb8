package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/eventfinder/pkg/storage"
)

// OptimizeCommand creates the optimize command
func OptimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Database optimization and maintenance commands",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Run integrity checks on the database",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "quick",
						Usage: "Skip the FTS5-specific integrity check",
						Value: false,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStorage(c.String("config"), func(store *storage.Storage) error {
						fmt.Print("Checking database... ")
						if err := store.IntegrityCheck(); err != nil {
							fmt.Println("✗ FAILED")
							return err
						}
						if !c.Bool("quick") {
							if err := store.FTSIntegrityCheck(); err != nil {
								fmt.Println("✗ FTS FAILED")
								fmt.Println("To fix FTS index corruption, run: eventfinder optimize fts-rebuild")
								return err
							}
						}
						fmt.Println("✓ OK")
						return nil
					})
				},
			},
			{
				Name:  "fts-rebuild",
				Usage: "Rebuild the FTS5 index from the events table",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStorage(c.String("config"), func(store *storage.Storage) error {
						if !store.FullTextAvailable() {
							fmt.Println("FTS5 not available in this build; nothing to rebuild")
							return nil
						}
						fmt.Print("Rebuilding FTS index... ")
						if err := store.FTSRebuild(); err != nil {
							fmt.Println("✗ FAILED")
							return err
						}
						fmt.Println("✓ OK")
						return nil
					})
				},
			},
			{
				Name:  "analyze",
				Usage: "Run ANALYZE to update query planner statistics",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStorage(c.String("config"), func(store *storage.Storage) error {
						fmt.Print("Analyzing database... ")
						if err := store.Analyze(); err != nil {
							fmt.Println("✗ FAILED")
							return err
						}
						fmt.Println("✓ OK")
						return nil
					})
				},
			},
			{
				Name:  "vacuum",
				Usage: "Run VACUUM to defragment the database",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStorage(c.String("config"), func(store *storage.Storage) error {
						fmt.Print("Vacuuming database... ")
						if err := store.Vacuum(); err != nil {
							fmt.Println("✗ FAILED")
							return err
						}
						fmt.Println("✓ OK")
						return nil
					})
				},
			},
			{
				Name:  "checkpoint",
				Usage: "Run WAL checkpoint to flush changes",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStorage(c.String("config"), func(store *storage.Storage) error {
						fmt.Print("Checkpointing database... ")
						if err := store.WALCheckpoint(); err != nil {
							fmt.Println("✗ FAILED")
							return err
						}
						fmt.Println("✓ OK")
						return nil
					})
				},
			},
			{
				Name:  "all",
				Usage: "Run all maintenance operations (optimize, analyze, checkpoint)",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStorage(c.String("config"), func(store *storage.Storage) error {
						steps := []struct {
							name string
							run  func() error
						}{
							{"PRAGMA optimize", store.Optimize},
							{"ANALYZE", store.Analyze},
							{"WAL checkpoint", store.WALCheckpoint},
						}
						for _, step := range steps {
							fmt.Printf("Running %s... ", step.name)
							if err := step.run(); err != nil {
								fmt.Println("✗ FAILED")
								return err
							}
							fmt.Println("✓ OK")
						}
						fmt.Println("All maintenance operations completed successfully")
						return nil
					})
				},
			},
		},
	}
}

func withStorage(configPath string, fn func(*storage.Storage) error) error {
	_, store, err := openStorage(configPath)
	if err != nil {
		return err
	}
	defer closeStorage(store)
	return fn(store)
}
