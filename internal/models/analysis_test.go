package models

import (
	"strings"
	"testing"
)

func validResult() AnalysisResult {
	return AnalysisResult{
		Score:  85,
		Status: StatusClean,
		Ingredients: []Ingredient{
			{Name: "Water", Status: IngredientSafe, Description: "Hydration base"},
			{Name: "Natural Flavors", Status: IngredientModerate, Description: "Vague label"},
		},
		Alternatives: []Alternative{
			{Name: "Sparkling water", Reason: "No additives"},
		},
	}
}

func TestAnalysisResult_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *AnalysisResult)
		wantErr string
	}{
		{
			name:   "valid result",
			mutate: func(r *AnalysisResult) {},
		},
		{
			name:   "empty lists are valid",
			mutate: func(r *AnalysisResult) { r.Ingredients = nil; r.Alternatives = nil },
		},
		{
			name:    "score too high",
			mutate:  func(r *AnalysisResult) { r.Score = 101 },
			wantErr: "outside 0-100",
		},
		{
			name:    "negative score",
			mutate:  func(r *AnalysisResult) { r.Score = -1 },
			wantErr: "outside 0-100",
		},
		{
			name:    "lowercase product status",
			mutate:  func(r *AnalysisResult) { r.Status = "clean" },
			wantErr: "invalid product status",
		},
		{
			name:    "unknown ingredient status",
			mutate:  func(r *AnalysisResult) { r.Ingredients[0].Status = "harmful" },
			wantErr: "invalid status",
		},
		{
			name:    "ingredient without name",
			mutate:  func(r *AnalysisResult) { r.Ingredients[1].Name = "" },
			wantErr: "ingredient 1 has no name",
		},
		{
			name:    "alternative without name",
			mutate:  func(r *AnalysisResult) { r.Alternatives[0].Name = "" },
			wantErr: "alternative 0 has no name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResult()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestStatusForScore(t *testing.T) {
	tests := []struct {
		score int
		want  ProductStatus
	}{
		{100, StatusClean},
		{80, StatusClean},
		{79, StatusModerate},
		{50, StatusModerate},
		{49, StatusToxic},
		{0, StatusToxic},
	}

	for _, tt := range tests {
		if got := StatusForScore(tt.score); got != tt.want {
			t.Errorf("StatusForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestAnalysisResult_Counts(t *testing.T) {
	r := validResult()
	r.Ingredients = append(r.Ingredients, Ingredient{Name: "Red 40", Status: IngredientToxic})

	safe, moderate, toxic := r.Counts()
	if safe != 1 || moderate != 1 || toxic != 1 {
		t.Errorf("Counts() = (%d, %d, %d), want (1, 1, 1)", safe, moderate, toxic)
	}
}
