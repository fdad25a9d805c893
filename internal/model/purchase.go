package model

// Unit is the unit an ingredient quantity was entered in.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitGram     Unit = "g"
	UnitCount    Unit = "unit"
)

// Units lists the units offered when recording a purchase.
var Units = []Unit{UnitKilogram, UnitGram, UnitCount}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitKilogram, UnitGram, UnitCount:
		return true
	}
	return false
}

// Ingredient is one purchased line. Quantity is always in kilograms;
// ApproxWeightPerUnit is in kilograms and only set when Unit is UnitCount.
type Ingredient struct {
	Name                string  `json:"name"`
	Quantity            float64 `json:"quantity"`
	Unit                Unit    `json:"unit"`
	Cost                float64 `json:"cost"`
	ApproxWeightPerUnit float64 `json:"approxWeightPerUnit,omitempty"`
}

// Purchase groups the ingredients bought on one date.
type Purchase struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"ownerId"`
	Date        string       `json:"date"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Total returns the summed cost of all ingredient lines.
func (p Purchase) Total() float64 {
	total := 0.0
	for _, ing := range p.Ingredients {
		total += ing.Cost
	}
	return total
}

// IngredientLine is the editable form of an ingredient, in display units.
// ApproxWeightG is the per-unit weight in grams, zero when not applicable.
type IngredientLine struct {
	Name          string  `json:"name" validate:"required"`
	Quantity      float64 `json:"quantity" validate:"gte=0.001"`
	Unit          Unit    `json:"unit" validate:"required,oneof=kg g unit"`
	Cost          float64 `json:"cost" validate:"gte=0.01"`
	ApproxWeightG float64 `json:"approxWeightG" validate:"gte=0"`
}

// PurchaseForm holds the editable fields of a purchase.
type PurchaseForm struct {
	ID    string           `json:"id,omitempty"`
	Date  string           `json:"date" validate:"required,isodate"`
	Lines []IngredientLine `json:"lines" validate:"min=1,dive"`
}
