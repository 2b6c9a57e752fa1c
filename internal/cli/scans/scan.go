package scans

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/detoxscan/internal/analyzer"
	"github.com/julianstephens/detoxscan/internal/cli"
	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/models"
	"github.com/julianstephens/detoxscan/internal/scanner"
	"github.com/julianstephens/detoxscan/internal/tui/components/result"
)

// confirmTrial asks whether to start the trial when the quota is used up.
// Replaced in tests.
var confirmTrial = func() (bool, error) {
	accept := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("You've used all your free scans for today.").
				Description("Start a 3-day free trial for unlimited scans?").
				Affirmative("Start trial").
				Negative("Not now").
				Value(&accept),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return accept, nil
}

type ScanCmd struct {
	Image   string `arg:"" type:"existingfile" help:"Photo of the ingredient list (JPEG, PNG or WebP)."`
	NoSave  bool   `help:"Do not add the result to history."`
	JSON    bool   `help:"Print the result as JSON."`
	NoInput bool   `help:"Never prompt; fail when the daily quota is used up."`
}

type scanOutput struct {
	ID        string                `json:"id,omitempty"`
	Saved     bool                  `json:"saved"`
	Remaining int                   `json:"remaining"`
	Result    models.AnalysisResult `json:"result"`
}

func (c *ScanCmd) Run(ctx *cli.Context) error {
	s := scanner.New(ctx.Gate, ctx.History, nil)
	if _, err := s.Preflight(ctx.Ctx()); err != nil {
		if !errors.Is(err, scanner.ErrQuotaExhausted) || c.JSON || c.NoInput {
			return err
		}
		if err := c.offerTrial(ctx); err != nil {
			return err
		}
	}

	a, err := ctx.NewAnalyzer()
	if err != nil {
		return err
	}
	image, err := analyzer.EncodeImageFile(c.Image)
	if err != nil {
		return err
	}
	ref, err := filepath.Abs(c.Image)
	if err != nil {
		ref = c.Image
	}

	if !c.JSON {
		fmt.Fprintln(os.Stderr, "Analyzing ingredients...")
	}
	out, err := scanner.New(ctx.Gate, ctx.History, a).Scan(ctx.Ctx(), scanner.Request{
		Image:    image,
		ImageRef: ref,
		NoSave:   c.NoSave,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(scanOutput{
			ID:        out.Item.ID,
			Saved:     out.Saved,
			Remaining: out.Remaining,
			Result:    out.Result,
		})
	}

	ctx.Println(result.Render(out.Result, 80))
	ctx.Println()
	switch {
	case out.Saved:
		ctx.Printf("Saved to history as %s\n", out.Item.ID)
	case !c.NoSave:
		ctx.Println("⚠ Could not save this scan to history (see log for details).")
	}
	ctx.Println(remainingLine(out.Remaining))
	return nil
}

func (c *ScanCmd) offerTrial(ctx *cli.Context) error {
	accept, err := confirmTrial()
	if err != nil || !accept {
		return scanner.ErrQuotaExhausted
	}
	if err := ctx.Gate.StartFreeTrial(ctx.Ctx()); err != nil {
		return err
	}
	ctx.Println("✓ Free trial started. Enjoy unlimited scans!")
	return nil
}

func remainingLine(remaining int) string {
	if remaining == constants.Unlimited {
		return "Unlimited scans (trial active)"
	}
	return fmt.Sprintf("Free scans left today: %d/%d", remaining, constants.MaxFreeScans)
}
