package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/eventfinder/pkg/storage"
)

// SeedCommand creates the seed command
func SeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Seed the database with sample events for development",
		Action: func(ctx context.Context, c *cli.Command) error {
			return seedEvents(ctx, c.String("config"))
		},
	}
}

func seedEvents(ctx context.Context, configPath string) error {
	_, store, err := openStorage(configPath)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	today := time.Now().UTC()
	date := func(days int) string {
		return today.AddDate(0, 0, days).Format("2006-01-02")
	}

	samples := []storage.EventDraft{
		{Title: "Lagos Tech Meetup", Description: "Talks on AI, Web and Cloud.", Location: "Lagos, Nigeria", Category: storage.CategoryTech, Date: date(14)},
		{Title: "Abuja Business Summit", Description: "Leaders discuss SME growth and funding.", Location: "Abuja, Nigeria", Category: storage.CategoryBusiness, Date: date(21)},
		{Title: "Port Harcourt Music Festival", Description: "Live performances by top Nigerian artists.", Location: "Port Harcourt, Nigeria", Category: storage.CategoryMusic, Date: date(30)},
		{Title: "Lagos Marathon", Description: "Annual road race across Lagos.", Location: "Lagos, Nigeria", Category: storage.CategorySports, Date: date(45)},
		{Title: "Abuja Art & Culture Fair", Description: "Exhibitions and performances celebrating Nigerian culture.", Location: "Abuja, Nigeria", Category: storage.CategoryArts, Date: date(35)},
		{Title: "Kano Community Clean-up", Description: "Join hands to keep Kano clean.", Location: "Kano, Nigeria", Category: storage.CategoryCommunity, Date: date(10)},
		{Title: "Ibadan Startup Weekend", Description: "Build and pitch startup ideas in 54 hours.", Location: "Ibadan, Nigeria", Category: storage.CategoryTech, Date: date(28)},
		{Title: "Enugu Food Carnival", Description: "Taste delicacies from across Nigeria.", Location: "Enugu, Nigeria", Category: storage.CategoryCommunity, Date: date(40)},
	}

	for _, draft := range samples {
		if _, err := store.Create(ctx, draft); err != nil {
			return fmt.Errorf("seeding event %q: %w", draft.Title, err)
		}
	}

	fmt.Printf("Seeded %d events successfully\n", len(samples))
	return nil
}
