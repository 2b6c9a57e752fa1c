package scans

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/detoxscan/internal/cli"
	"github.com/julianstephens/detoxscan/internal/models"
	"github.com/julianstephens/detoxscan/internal/tui"
	"github.com/julianstephens/detoxscan/internal/tui/components/result"
)

var idStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// confirmClear asks before wiping history. Replaced in tests.
var confirmClear = func(n int) (bool, error) {
	accept := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete all %d saved scans?", n)).
				Description("A database backup is taken first when using sqlite.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&accept),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return accept, nil
}

type HistoryListCmd struct {
	JSON  bool `help:"Print history as JSON."`
	Limit int  `help:"Show at most N scans (0 for all)." default:"0"`
}

func (c *HistoryListCmd) Run(ctx *cli.Context) error {
	items := ctx.History.History(ctx.Ctx())
	if c.Limit > 0 && len(items) > c.Limit {
		items = items[:c.Limit]
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 0 {
		ctx.Println("No scans in history yet.")
		return nil
	}

	for _, item := range items {
		name := "-"
		if item.ImageRef != "" {
			name = filepath.Base(item.ImageRef)
		}
		ctx.Printf("%s  %s  %-14s %s\n",
			idStyle.Render(shortID(item.ID)),
			result.Badge(item.Result),
			humanize.Time(item.Date),
			name,
		)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type HistoryShowCmd struct {
	ID   string `arg:"" help:"Scan id, or a unique prefix of it."`
	JSON bool   `help:"Print the scan as JSON."`
}

func (c *HistoryShowCmd) Run(ctx *cli.Context) error {
	item, err := ctx.History.Get(ctx.Ctx(), c.ID)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(item)
	}
	printItem(ctx, item)
	return nil
}

func printItem(ctx *cli.Context, item models.HistoryItem) {
	ctx.Printf("Scan %s\n", item.ID)
	ctx.Printf("Taken %s (%s)\n", item.Date.Local().Format("Mon Jan 2 2006 15:04"), humanize.Time(item.Date))
	if item.ImageRef != "" {
		ctx.Printf("Image %s\n", item.ImageRef)
	}
	ctx.Println()
	ctx.Println(result.Render(item.Result, 80))
}

type HistoryClearCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HistoryClearCmd) Run(ctx *cli.Context) error {
	n := len(ctx.History.History(ctx.Ctx()))
	if n == 0 {
		ctx.Println("History is already empty.")
		return nil
	}

	if !c.Yes {
		ok, err := confirmClear(n)
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.History.Clear(ctx.Ctx()); err != nil {
		return err
	}
	ctx.Printf("✓ Cleared %d scans from history\n", n)
	return nil
}

type HistoryBrowseCmd struct{}

func (c *HistoryBrowseCmd) Run(ctx *cli.Context) error {
	return tui.Run(ctx.Ctx(), ctx.History)
}
