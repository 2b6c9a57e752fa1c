package scans

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/detoxscan/internal/cli"
	"github.com/julianstephens/detoxscan/internal/constants"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(18)
	proStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	freeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

type StatusCmd struct {
	JSON bool `help:"Print the status as JSON."`
}

type statusOutput struct {
	Plan         string     `json:"plan"`
	Remaining    int        `json:"remaining"`
	UsedToday    int        `json:"usedToday"`
	DailyLimit   int        `json:"dailyLimit"`
	TrialStarted *time.Time `json:"trialStarted,omitempty"`
	TrialEnds    *time.Time `json:"trialEnds,omitempty"`
	TrialExpired bool       `json:"trialExpired"`
	HistoryCount int        `json:"historyCount"`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Gate.Status(ctx.Ctx())
	if err != nil {
		return err
	}

	out := statusOutput{
		Plan:         "free",
		Remaining:    st.Remaining,
		UsedToday:    st.UsedToday,
		DailyLimit:   st.Limit,
		TrialStarted: st.Subscription.TrialStartDate,
		TrialEnds:    st.TrialEndsAt,
		TrialExpired: st.TrialExpired,
		HistoryCount: len(ctx.History.History(ctx.Ctx())),
	}
	if st.Subscription.IsPro {
		out.Plan = "trial"
		if st.Subscription.TrialStartDate == nil {
			out.Plan = "pro"
		}
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	row := func(label, value string) {
		ctx.Println(labelStyle.Render(label) + value)
	}

	switch out.Plan {
	case "pro":
		row("Plan", proStyle.Render("Pro"))
	case "trial":
		row("Plan", proStyle.Render("Free trial"))
		if st.TrialEndsAt != nil {
			row("Trial ends", st.TrialEndsAt.Local().Format("Mon Jan 2 15:04")+" ("+humanize.Time(*st.TrialEndsAt)+")")
		}
	default:
		row("Plan", freeStyle.Render("Free"))
		if st.TrialExpired && st.TrialEndsAt != nil {
			row("Trial", "expired "+humanize.Time(*st.TrialEndsAt))
		}
	}

	if out.Remaining == constants.Unlimited {
		row("Scans today", humanize.Comma(int64(st.UsedToday))+" (unlimited)")
	} else {
		row("Scans today", humanize.Comma(int64(st.UsedToday))+" used, "+humanize.Comma(int64(st.Remaining))+" left of "+humanize.Comma(int64(st.Limit)))
	}
	row("History", humanize.Comma(int64(out.HistoryCount))+" of "+humanize.Comma(constants.MaxHistoryItems)+" saved scans")
	row("Storage", ctx.Store.GetConfigPath())

	if out.Plan == "free" && out.Remaining == 0 {
		ctx.Println()
		ctx.Println("Out of free scans. Run 'detoxscan trial start' for unlimited scans.")
	}
	return nil
}
