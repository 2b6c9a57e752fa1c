// Package result renders an analysis result for the terminal.
package result

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/detoxscan/internal/models"
)

var (
	cleanColor    = lipgloss.Color("42")
	moderateColor = lipgloss.Color("214")
	toxicColor    = lipgloss.Color("196")

	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	nameStyle    = lipgloss.NewStyle().Bold(true)
)

func productColor(s models.ProductStatus) lipgloss.Color {
	switch s {
	case models.StatusClean:
		return cleanColor
	case models.StatusModerate:
		return moderateColor
	default:
		return toxicColor
	}
}

func ingredientColor(s models.IngredientStatus) lipgloss.Color {
	switch s {
	case models.IngredientSafe:
		return cleanColor
	case models.IngredientModerate:
		return moderateColor
	default:
		return toxicColor
	}
}

// Badge is the colored "85 Clean" score label.
func Badge(r models.AnalysisResult) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(productColor(r.Status)).
		Bold(true).
		Padding(0, 1).
		Render(fmt.Sprintf("%d  %s", r.Score, r.Status))
}

// Render lays out the full breakdown, wrapping descriptions at width.
// A width of zero disables wrapping.
func Render(r models.AnalysisResult, width int) string {
	var b strings.Builder

	b.WriteString(Badge(r))
	safe, moderate, toxic := r.Counts()
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d safe · %d moderate · %d toxic", safe, moderate, toxic)))
	b.WriteString("\n")

	body := lipgloss.NewStyle().PaddingLeft(4)
	if width > 8 {
		body = body.Width(width - 4)
	}

	b.WriteString(headingStyle.Render("Ingredients"))
	b.WriteString("\n")
	if len(r.Ingredients) == 0 {
		b.WriteString(dimStyle.Render("  No ingredients were recognized."))
		b.WriteString("\n")
	}
	for _, ing := range r.Ingredients {
		dot := lipgloss.NewStyle().Foreground(ingredientColor(ing.Status)).Render("●")
		fmt.Fprintf(&b, "  %s %s %s\n", dot, nameStyle.Render(ing.Name), dimStyle.Render("("+string(ing.Status)+")"))
		if ing.Description != "" {
			b.WriteString(body.Render(ing.Description))
			b.WriteString("\n")
		}
	}

	if len(r.Alternatives) > 0 {
		b.WriteString(headingStyle.Render("Healthier alternatives"))
		b.WriteString("\n")
		for _, alt := range r.Alternatives {
			fmt.Fprintf(&b, "  → %s\n", nameStyle.Render(alt.Name))
			if alt.Reason != "" {
				b.WriteString(body.Render(alt.Reason))
				b.WriteString("\n")
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
