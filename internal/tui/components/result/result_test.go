package result

import (
	"strings"
	"testing"

	"github.com/julianstephens/detoxscan/internal/models"
)

func TestRender(t *testing.T) {
	r := models.AnalysisResult{
		Score:  45,
		Status: models.StatusToxic,
		Ingredients: []models.Ingredient{
			{Name: "High Fructose Corn Syrup", Status: models.IngredientToxic, Description: "Linked to metabolic issues"},
			{Name: "Water", Status: models.IngredientSafe},
		},
		Alternatives: []models.Alternative{{Name: "Unsweetened tea", Reason: "No added sugar"}},
	}

	out := Render(r, 60)
	for _, want := range []string{"45", "Toxic", "High Fructose Corn Syrup", "1 safe", "1 toxic", "Unsweetened tea", "No added sugar"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
}

func TestRender_NoIngredients(t *testing.T) {
	out := Render(models.AnalysisResult{Score: 100, Status: models.StatusClean}, 0)
	if !strings.Contains(out, "No ingredients were recognized") {
		t.Errorf("Render() = %q", out)
	}
	if strings.Contains(out, "alternatives") {
		t.Error("empty alternatives section should be omitted")
	}
}
