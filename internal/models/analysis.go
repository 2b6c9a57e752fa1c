package models

import "fmt"

// ProductStatus is the overall verdict for a scanned product
type ProductStatus string

// IngredientStatus is the verdict for a single ingredient
type IngredientStatus string

const (
	StatusClean    ProductStatus = "Clean"
	StatusModerate ProductStatus = "Moderate"
	StatusToxic    ProductStatus = "Toxic"

	IngredientSafe     IngredientStatus = "safe"
	IngredientModerate IngredientStatus = "moderate"
	IngredientToxic    IngredientStatus = "toxic"
)

type Ingredient struct {
	Name        string           `json:"name"`
	Status      IngredientStatus `json:"status"`
	Description string           `json:"description"`
}

type Alternative struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// AnalysisResult is the model's breakdown of one ingredient list.
type AnalysisResult struct {
	Score        int           `json:"score"`
	Status       ProductStatus `json:"status"`
	Ingredients  []Ingredient  `json:"ingredients"`
	Alternatives []Alternative `json:"alternatives"`
}

func (s ProductStatus) Valid() bool {
	switch s {
	case StatusClean, StatusModerate, StatusToxic:
		return true
	}
	return false
}

func (s IngredientStatus) Valid() bool {
	switch s {
	case IngredientSafe, IngredientModerate, IngredientToxic:
		return true
	}
	return false
}

// StatusForScore maps a 0-100 score onto the rubric bands the model is
// asked to use: 80-100 Clean, 50-79 Moderate, 0-49 Toxic.
func StatusForScore(score int) ProductStatus {
	switch {
	case score >= 80:
		return StatusClean
	case score >= 50:
		return StatusModerate
	default:
		return StatusToxic
	}
}

func (r *AnalysisResult) Validate() error {
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("score %d is outside 0-100", r.Score)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid product status %q", r.Status)
	}
	for i, ing := range r.Ingredients {
		if ing.Name == "" {
			return fmt.Errorf("ingredient %d has no name", i)
		}
		if !ing.Status.Valid() {
			return fmt.Errorf("ingredient %q has invalid status %q", ing.Name, ing.Status)
		}
	}
	for i, alt := range r.Alternatives {
		if alt.Name == "" {
			return fmt.Errorf("alternative %d has no name", i)
		}
	}
	return nil
}

// Counts returns how many ingredients fall in each status.
func (r *AnalysisResult) Counts() (safe, moderate, toxic int) {
	for _, ing := range r.Ingredients {
		switch ing.Status {
		case IngredientSafe:
			safe++
		case IngredientModerate:
			moderate++
		case IngredientToxic:
			toxic++
		}
	}
	return safe, moderate, toxic
}
