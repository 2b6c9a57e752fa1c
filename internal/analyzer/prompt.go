package analyzer

import (
	"regexp"
	"strings"
)

const analysisPrompt = `Analyze the ingredients in this product image.

Step 1: Perform OCR to extract the text from the image. Focus specifically on the "Ingredients" list.
Step 2: Identify each individual ingredient.
Step 3: Analyze each ingredient for health impact based on scientific consensus.
Step 4: Calculate a health score from 0 to 100 using this STRICT scoring rubric:
    - Start with 100 points.
    - Deduct 10 points for each "Toxic" or "Harmful" ingredient (e.g., High Fructose Corn Syrup, Artificial Colors, Parabens, Sulfates).
    - Deduct 5 points for each "Moderate" concern ingredient (e.g., Added Sugar, Natural Flavors, Preservatives).
    - Do not deduct points for "Safe" or "Clean" ingredients (e.g., Water, Whole Grains, Fruits, Vegetables).
    - The minimum score is 0.

Step 5: Determine the overall status:
    - 80-100: "Clean"
    - 50-79: "Moderate"
    - 0-49: "Toxic"

Return ONLY valid JSON in the following format, with no markdown formatting:
{
  "score": number,
  "status": "Clean" | "Toxic" | "Moderate",
  "ingredients": [
    { "name": "string", "status": "safe" | "toxic" | "moderate", "description": "short health impact description" }
  ],
  "alternatives": [
    { "name": "string", "reason": "string" }
  ]
}`

var dataURIPrefix = regexp.MustCompile(`^data:(image/\w+);base64,`)

// SplitDataURI separates an optional "data:image/...;base64," prefix from
// the payload. mime is empty when no prefix was present.
func SplitDataURI(s string) (mime, payload string) {
	s = strings.TrimSpace(s)
	m := dataURIPrefix.FindStringSubmatch(s)
	if m == nil {
		return "", s
	}
	return m[1], s[len(m[0]):]
}

// StripCodeFences removes markdown code fences the model sometimes wraps
// its JSON in.
func StripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
