package emissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMatchesFactorTable(t *testing.T) {
	cases := []struct {
		name     string
		category Category
		quantity float64
		subtype  Subtype
		expected float64
	}{
		{"electricity", CategoryElectricity, 100, "", 85},
		{"petrol", CategoryFuel, 10, SubtypePetrol, 23.1},
		{"diesel", CategoryFuel, 10, SubtypeDiesel, 26.8},
		{"water", CategoryWater, 1000, "", 0.298},
		{"waste recyclable", CategoryWaste, 5, SubtypeRecyclable, 1.05},
		{"waste non-recyclable", CategoryWaste, 5, SubtypeNonRecyclable, 2.5},
		{"paper", CategoryPaper, 200, "", 2},
		{"food meat", CategoryFood, 3, SubtypeMeat, 21.6},
		{"food vegetarian", CategoryFood, 3, SubtypeVegetarian, 7.5},
		{"food vegan", CategoryFood, 3, SubtypeVegan, 4.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Calculate(tc.category, tc.quantity, tc.subtype), 1e-9)
		})
	}
}

func TestCalculateZeroQuantity(t *testing.T) {
	for _, category := range Categories() {
		assert.Zero(t, Calculate(category, 0, ""))
	}
}

func TestCalculateUnknownSubtypeFallsBack(t *testing.T) {
	// Unknown subtypes silently use the category default rather than erroring.
	assert.InDelta(t, 23.1, Calculate(CategoryFuel, 10, "kerosene"), 1e-9)
	assert.InDelta(t, 2.5, Calculate(CategoryWaste, 5, "organic"), 1e-9)
	assert.InDelta(t, 7.2, Calculate(CategoryFood, 1, "pescatarian"), 1e-9)
}

func TestValidSubtype(t *testing.T) {
	assert.True(t, CategoryFuel.ValidSubtype(SubtypeDiesel))
	assert.False(t, CategoryFuel.ValidSubtype(SubtypeVegan))
	assert.True(t, CategoryElectricity.ValidSubtype(""))
	assert.False(t, CategoryElectricity.ValidSubtype(SubtypePetrol))
	assert.True(t, CategoryFood.ValidSubtype(SubtypeVegan))
	assert.False(t, CategoryWaste.ValidSubtype(""))
}
