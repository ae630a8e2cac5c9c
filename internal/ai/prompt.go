package ai

import (
	"fmt"
	"strings"
)

// SkinPrompt is the stored prompt for a skin assessment.
func SkinPrompt(age int, gender, skinType string) string {
	return fmt.Sprintf("Skin analysis for %d year old %s with %s skin", age, gender, skinType)
}

// HairPrompt is the stored prompt for a hair assessment.
func HairPrompt(age int, gender, hairType string) string {
	return fmt.Sprintf("Hair analysis for %d year old %s with %s hair", age, gender, hairType)
}

const instructions = `You are a dermatology and trichology assistant for the GlowNexa app.
Look at the attached photo and give an initial, educational assessment.
Structure the answer with these headings: Observations, Possible Conditions, Care Routine, When To See A Dermatologist.
Keep it under 300 words. This is not a medical diagnosis; say so in one sentence at the end.`

// ModelPrompt wraps the stored prompt with the response instructions sent to the model.
func ModelPrompt(prompt string) string {
	return instructions + "\n\nRequest: " + strings.TrimSpace(prompt)
}
