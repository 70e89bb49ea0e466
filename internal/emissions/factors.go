package emissions

// Category identifies a consumption category.
type Category string

const (
	CategoryElectricity Category = "electricity"
	CategoryFuel        Category = "fuel"
	CategoryWater       Category = "water"
	CategoryWaste       Category = "waste"
	CategoryPaper       Category = "paper"
	CategoryFood        Category = "food"
)

// Subtype refines a category for factor selection (fuel, waste and food only).
type Subtype string

const (
	SubtypePetrol Subtype = "petrol"
	SubtypeDiesel Subtype = "diesel"

	SubtypeRecyclable    Subtype = "recyclable"
	SubtypeNonRecyclable Subtype = "non-recyclable"

	SubtypeMeat       Subtype = "meat"
	SubtypeVegetarian Subtype = "vegetarian"
	SubtypeVegan      Subtype = "vegan"
)

// Emission factors in kg CO2 per unit of input.
const (
	FactorElectricity = 0.85 // per kWh

	FactorPetrol = 2.31 // per liter
	FactorDiesel = 2.68 // per liter

	FactorWater = 0.000298 // per liter, treatment and distribution

	FactorWasteRecyclable    = 0.21 // per kg
	FactorWasteNonRecyclable = 0.5  // per kg

	FactorPaper = 0.01 // per A4 page

	FactorFoodMeat       = 7.2 // per meal
	FactorFoodVegetarian = 2.5 // per meal
	FactorFoodVegan      = 1.5 // per meal
)

// MaxQuantity bounds a single input value; anything above is rejected upstream.
const MaxQuantity = 1_000_000

// Unit returns the input unit label for a category.
func (c Category) Unit() string {
	switch c {
	case CategoryElectricity:
		return "kWh"
	case CategoryFuel, CategoryWater:
		return "liters"
	case CategoryWaste:
		return "kg"
	case CategoryPaper:
		return "pages"
	case CategoryFood:
		return "meals"
	default:
		return ""
	}
}

// HasSubtypes reports whether the category factor depends on a subtype.
func (c Category) HasSubtypes() bool {
	return c == CategoryFuel || c == CategoryWaste || c == CategoryFood
}

// ValidSubtype reports whether the subtype is one of the recognised values
// for the category. An empty subtype is valid for categories without subtypes.
func (c Category) ValidSubtype(s Subtype) bool {
	switch c {
	case CategoryFuel:
		return s == SubtypePetrol || s == SubtypeDiesel
	case CategoryWaste:
		return s == SubtypeRecyclable || s == SubtypeNonRecyclable
	case CategoryFood:
		return s == SubtypeMeat || s == SubtypeVegetarian || s == SubtypeVegan
	default:
		return s == ""
	}
}

// Categories lists all known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryElectricity,
		CategoryFuel,
		CategoryWater,
		CategoryWaste,
		CategoryPaper,
		CategoryFood,
	}
}
