package emissions

// Factor resolves the kg CO2 conversion factor for a category and subtype.
// Unrecognised subtypes fall back to the category default rather than failing:
// fuel defaults to petrol, waste to non-recyclable, food to meat. This mirrors
// the behaviour users already rely on when an older client omits the subtype.
func Factor(category Category, subtype Subtype) float64 {
	switch category {
	case CategoryElectricity:
		return FactorElectricity
	case CategoryFuel:
		if subtype == SubtypeDiesel {
			return FactorDiesel
		}
		return FactorPetrol
	case CategoryWater:
		return FactorWater
	case CategoryWaste:
		if subtype == SubtypeRecyclable {
			return FactorWasteRecyclable
		}
		return FactorWasteNonRecyclable
	case CategoryPaper:
		return FactorPaper
	case CategoryFood:
		switch subtype {
		case SubtypeVegetarian:
			return FactorFoodVegetarian
		case SubtypeVegan:
			return FactorFoodVegan
		default:
			return FactorFoodMeat
		}
	default:
		return 0
	}
}

// Calculate converts an input quantity into estimated kg CO2 emissions.
// Quantity is expected to be non-negative and within MaxQuantity; callers
// validate bounds before invoking.
func Calculate(category Category, quantity float64, subtype Subtype) float64 {
	return quantity * Factor(category, subtype)
}
