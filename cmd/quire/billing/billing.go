// Package billingcmder provides the usage, plans, checkout and portal
// commands.
package billingcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/papercomputeco/quire/pkg/cliui"
	"github.com/papercomputeco/quire/pkg/subscription"
)

const usageBarWidth = 24

// printUsage writes the plan name, a usage bar and the remaining count.
func printUsage(out io.Writer, sub *subscription.Subscription) {
	name := string(sub.Plan)
	if p, ok := subscription.LookupPlan(sub.Plan); ok {
		name = p.Name
	}

	fmt.Fprintf(out, "\n  %s  %s %s\n",
		cliui.KeyStyle.Render("Plan:"),
		cliui.ValueStyle.Render(name),
		cliui.DimStyle.Render("("+sub.Status+")"),
	)
	fmt.Fprintf(out, "  %s  %s %d / %d researches this month\n",
		cliui.KeyStyle.Render("Used:"),
		cliui.UsageBar(sub.ResearchCount, sub.MonthlyLimit, usageBarWidth),
		sub.ResearchCount,
		sub.MonthlyLimit,
	)

	if sub.CanResearch() {
		fmt.Fprintf(out, "  %s %d remaining, resets %s\n\n",
			cliui.SuccessMark,
			sub.Remaining(),
			sub.PeriodStart.AddDate(0, 1, 0).Format("Jan 2"),
		)
		return
	}
	fmt.Fprintf(out, "  %s Limit reached. Run 'quire plans' to upgrade.\n\n", cliui.FailMark)
}

// printPlans writes every plan, marking current when it is set.
func printPlans(out io.Writer, current subscription.PlanID) {
	fmt.Fprintln(out)
	for _, p := range subscription.Plans() {
		marker := " "
		if p.ID == current {
			marker = cliui.SuccessMark
		}

		price := "free"
		if p.Price > 0 {
			price = fmt.Sprintf("$%d/month", p.Price)
		}

		fmt.Fprintf(out, "  %s %s %s %s\n",
			marker,
			cliui.TitleStyle.Render(p.Name),
			cliui.AccentStyle.Render(price),
			cliui.DimStyle.Render("["+string(p.ID)+"]"),
		)
		fmt.Fprintf(out, "      %s\n\n", cliui.StepStyle.Render(strings.Join(p.Features, " · ")))
	}
}
