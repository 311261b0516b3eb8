package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rubiojr/eventfinder/pkg/storage"
)

var (
	searchTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86"))

	searchMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	searchCategoryStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("214"))

	searchCountStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("32")).
				Margin(1, 0, 0, 0)

	searchNoDataStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search events from the terminal",
		ArgsUsage: "[keyword]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "location",
				Usage: "Filter by location substring",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Filter by category (music, tech, sports, arts, business, community)",
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "Filter by exact date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "start-date",
				Usage: "Filter by start date (YYYY-MM-DD, inclusive)",
			},
			&cli.StringFlag{
				Name:  "end-date",
				Usage: "Filter by end date (YYYY-MM-DD, inclusive)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of events to show",
				Value: 20,
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Number of matching events to skip",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort order: date_asc, date_desc or created_desc",
				Value: "date_asc",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			filter := storage.SearchFilter{
				Keyword:   strings.Join(c.Args().Slice(), " "),
				Location:  c.String("location"),
				Category:  storage.Category(strings.ToLower(c.String("category"))),
				Date:      c.String("date"),
				StartDate: c.String("start-date"),
				EndDate:   c.String("end-date"),
				Limit:     c.Int("limit"),
				Offset:    c.Int("offset"),
				Sort:      storage.Sort(c.String("sort")),
			}
			return searchEvents(ctx, c.String("config"), filter)
		},
	}
}

func searchEvents(ctx context.Context, configPath string, filter storage.SearchFilter) error {
	_, store, err := openStorage(configPath)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	page, err := store.Search(ctx, filter)
	if err != nil {
		return fmt.Errorf("searching events: %w", err)
	}

	if len(page.Events) == 0 {
		fmt.Println(searchNoDataStyle.Render("No events found"))
		return nil
	}

	titleCaser := cases.Title(language.English)
	for _, ev := range page.Events {
		category := searchCategoryStyle.Render(titleCaser.String(string(ev.Category)))
		fmt.Printf("%s  %s\n", searchTitleStyle.Render(ev.Title), category)
		fmt.Println(searchMetaStyle.Render(fmt.Sprintf("#%d  %s  %s", ev.ID, ev.Date, ev.Location)))
		if ev.Description != "" {
			fmt.Println(ev.Description)
		}
		fmt.Println()
	}

	fmt.Println(searchCountStyle.Render(fmt.Sprintf("Showing %d of %d matching events", len(page.Events), page.TotalCount)))
	return nil
}
