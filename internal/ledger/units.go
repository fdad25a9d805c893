// Package ledger holds the pure bookkeeping used by the recording workflows:
// unit conversion between entry units and kilograms, display formatting and
// cost aggregation over purchases.
package ledger

import (
	"fmt"
	"math"
	"strconv"

	"resto-ledger/internal/model"
)

const gramsPerKilogram = 1000.0

// QuantityPreset is a common fraction offered by the purchase form.
type QuantityPreset struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// QuantityPresets are the shortcuts shown next to the quantity field.
var QuantityPresets = []QuantityPreset{
	{Value: 0.125, Label: "1/8"},
	{Value: 0.25, Label: "1/4"},
	{Value: 0.5, Label: "1/2"},
	{Value: 0.75, Label: "3/4"},
	{Value: 1, Label: "1"},
}

// ToCanonical converts a quantity entered in unit into kilograms.
// approxWeightG is the weight of one item in grams and is only read for
// model.UnitCount, where it must be positive.
func ToCanonical(quantity float64, unit model.Unit, approxWeightG float64) (float64, error) {
	switch unit {
	case model.UnitKilogram:
		return quantity, nil
	case model.UnitGram:
		return quantity / gramsPerKilogram, nil
	case model.UnitCount:
		if approxWeightG <= 0 {
			return 0, model.NewValidationError("approxWeightG", "approximate weight per unit is required")
		}
		return quantity * (approxWeightG / gramsPerKilogram), nil
	default:
		return 0, model.NewValidationError("unit", fmt.Sprintf("unknown unit %q", unit))
	}
}

// FromCanonical converts kilograms back into the unit the quantity was
// entered in. A count with no known item weight is returned unchanged.
func FromCanonical(kilograms float64, unit model.Unit, approxWeightG float64) float64 {
	switch unit {
	case model.UnitGram:
		return kilograms * gramsPerKilogram
	case model.UnitCount:
		if approxWeightG <= 0 {
			return kilograms
		}
		return kilograms / (approxWeightG / gramsPerKilogram)
	default:
		return kilograms
	}
}

// KilogramsToGrams converts a stored per-unit weight back to grams.
func KilogramsToGrams(kg float64) float64 {
	return kg * gramsPerKilogram
}

// GramsToKilograms converts an entered per-unit weight to kilograms.
func GramsToKilograms(g float64) float64 {
	return g / gramsPerKilogram
}

// ToIngredient converts a form line into its persisted representation.
func ToIngredient(line model.IngredientLine) (model.Ingredient, error) {
	kg, err := ToCanonical(line.Quantity, line.Unit, line.ApproxWeightG)
	if err != nil {
		return model.Ingredient{}, err
	}

	ing := model.Ingredient{
		Name:     line.Name,
		Quantity: kg,
		Unit:     line.Unit,
		Cost:     line.Cost,
	}
	if line.Unit == model.UnitCount {
		ing.ApproxWeightPerUnit = GramsToKilograms(line.ApproxWeightG)
	}
	return ing, nil
}

// ToLine converts a persisted ingredient back into display units.
func ToLine(ing model.Ingredient) model.IngredientLine {
	weightG := 0.0
	if ing.Unit == model.UnitCount {
		weightG = KilogramsToGrams(ing.ApproxWeightPerUnit)
	}

	unit := ing.Unit
	if !unit.Valid() {
		unit = model.UnitKilogram
	}

	return model.IngredientLine{
		Name:          ing.Name,
		Quantity:      FromCanonical(ing.Quantity, unit, weightG),
		Unit:          unit,
		Cost:          ing.Cost,
		ApproxWeightG: weightG,
	}
}

// DisplayQuantity renders a stored ingredient quantity in its entry unit.
// Grams and units are rounded to whole numbers; kilograms keep the stored
// precision.
func DisplayQuantity(ing model.Ingredient) string {
	switch ing.Unit {
	case model.UnitCount:
		if ing.ApproxWeightPerUnit <= 0 {
			return "(units)"
		}
		units := ing.Quantity / ing.ApproxWeightPerUnit
		return strconv.FormatFloat(math.Round(units), 'f', 0, 64) + " unit"
	case model.UnitGram:
		grams := ing.Quantity * gramsPerKilogram
		return strconv.FormatFloat(math.Round(grams), 'f', 0, 64) + " g"
	default:
		return strconv.FormatFloat(ing.Quantity, 'f', -1, 64) + " kg"
	}
}
