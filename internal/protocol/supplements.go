package protocol

import "github.com/hyperengineering/regimen/internal/types"

// supplements is the static reference table shown in the UI and embedded
// in exported reports. Phase is the inclusive day range the supplement
// is taken.
var supplements = []types.Supplement{
	{Name: "Black Walnut", Purpose: "Adult parasite killer", Dosage: "1–20 drops", Timing: "AM (empty)", Phase: "1–21", Brand: "Gaia Herbs"},
	{Name: "Wormwood", Purpose: "Larvae killer", Dosage: "500–1000 mg", Timing: "Pre‑lunch", Phase: "1–21", Brand: "BioPure"},
	{Name: "Clove", Purpose: "Egg disruptor", Dosage: "500 mg", Timing: "PM", Phase: "1–21", Brand: "NOW"},
	{Name: "Diatomaceous Earth", Purpose: "Mechanical sweep", Dosage: "1 tbsp", Timing: "Bedtime", Phase: "8–21", Brand: "Earthworks"},
	{Name: "Bentonite Clay", Purpose: "Toxin binder", Dosage: "1 tbsp", Timing: "Bedtime (alt)", Phase: "8–21", Brand: "Yerba Prima"},
	{Name: "Serrapeptase", Purpose: "Biofilm buster", Dosage: "120 000 SU", Timing: "AM (fasted)", Phase: "1–21", Brand: "Doctor's Best"},
	{Name: "Zinc", Purpose: "Immune support", Dosage: "25 mg", Timing: "Dinner", Phase: "1–28", Brand: "Thorne"},
	{Name: "Vitamin C", Purpose: "Antioxidant", Dosage: "1 g", Timing: "Twice daily", Phase: "1–28", Brand: "LivOn"},
	{Name: "Probiotic", Purpose: "Gut repopulation", Dosage: "50 B CFU", Timing: "AM", Phase: "22–28", Brand: "Seed"},
	{Name: "L‑Glutamine", Purpose: "Gut repair", Dosage: "5 g", Timing: "PM", Phase: "22–28", Brand: "Jarrow"},
}

// Supplements returns a copy of the supplement reference table.
func Supplements() []types.Supplement {
	out := make([]types.Supplement, len(supplements))
	copy(out, supplements)
	return out
}
