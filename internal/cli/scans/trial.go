package scans

import (
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/detoxscan/internal/cli"
)

type TrialStartCmd struct{}

func (c *TrialStartCmd) Run(ctx *cli.Context) error {
	if err := ctx.Gate.StartFreeTrial(ctx.Ctx()); err != nil {
		return err
	}
	st, err := ctx.Gate.Status(ctx.Ctx())
	if err != nil {
		return err
	}

	ctx.Println("✓ Free trial started. Scans are unlimited until the trial ends.")
	if st.TrialEndsAt != nil {
		ctx.Printf("  Ends %s (%s)\n", st.TrialEndsAt.Local().Format("Mon Jan 2 15:04"), humanize.Time(*st.TrialEndsAt))
	}
	return nil
}
