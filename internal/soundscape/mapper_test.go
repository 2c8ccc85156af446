package soundscape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCategories_MaxAggregation(t *testing.T) {
	taxonomy := DefaultTaxonomy(0)

	// Both classes map to car_sound, the higher score wins
	result := taxonomy.Map([]ClassScore{
		{Name: "Car", Score: 0.8},
		{Name: "Vehicle horn, car horn, honking", Score: 0.3},
	})

	require.Len(t, result.Categories, 1)
	assert.Equal(t, CategoryCar, result.Categories[0].Label)
	assert.InDelta(t, 1.0, result.Categories[0].Confidence, 1e-9)
}

func TestMapCategories_UnknownFallback(t *testing.T) {
	taxonomy := DefaultTaxonomy(0)

	result := taxonomy.Map([]ClassScore{
		{Name: "Theremin", Score: 0.9},
		{Name: "Zither", Score: 0.5},
	})

	require.Len(t, result.Categories, 1)
	assert.Equal(t, CategoryUnknown, result.Categories[0].Label)
	assert.InDelta(t, 1.0, result.Categories[0].Confidence, 1e-9)
}

func TestMapCategories_NormalizedAndSorted(t *testing.T) {
	taxonomy := DefaultTaxonomy(0)

	result := taxonomy.Map([]ClassScore{
		{Name: "Car", Score: 0.6},
		{Name: "Bird", Score: 0.3},
		{Name: "Speech", Score: 0.1},
	})

	require.Len(t, result.Categories, 3)

	var sum float64
	for _, cat := range result.Categories {
		sum += cat.Confidence
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	// Descending by confidence
	assert.Equal(t, CategoryCar, result.Categories[0].Label)
	assert.Equal(t, CategoryBird, result.Categories[1].Label)
	assert.Equal(t, CategoryVoice, result.Categories[2].Label)
	assert.Greater(t, result.Categories[0].Confidence, result.Categories[1].Confidence)
}

func TestMapCategories_MinScoreThreshold(t *testing.T) {
	taxonomy := DefaultTaxonomy(0.01)

	result := taxonomy.Map([]ClassScore{
		{Name: "Car", Score: 0.009},
	})

	require.Len(t, result.Categories, 1)
	assert.Equal(t, CategoryUnknown, result.Categories[0].Label)
}

func TestFindCategory_MatchOrder(t *testing.T) {
	taxonomy := DefaultTaxonomy(0)

	tests := []struct {
		name      string
		className string
		want      string
	}{
		{"exact match", "Truck", CategoryTruck},
		{"substring class in key", "Bird vocalization, bird call, bird song", CategoryBird},
		{"substring key in class", "Heavy truck engine", CategoryTruck},
		{"case insensitive", "RAIN ON SURFACE", CategoryRain},
		{"keyword group", "Acoustic guitar strumming", CategoryMusic},
		{"keyword group construction", "Electric drill whine", CategoryConstruction},
		{"no match", "Theremin", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, taxonomy.findCategory(tt.className))
		})
	}
}

func TestMapEnvironment_NaturalDominant(t *testing.T) {
	taxonomy := DefaultTaxonomy(0)

	// "Bird" hits both natural and outdoor buckets
	result := taxonomy.Map([]ClassScore{
		{Name: "Bird", Score: 0.9},
	})

	env := result.Environment
	assert.InDelta(t, 0.5, env.TypeScores[EnvNatural], 1e-9)
	assert.InDelta(t, 0.5, env.TypeScores[EnvOutdoor], 1e-9)
	assert.InDelta(t, 0.0, env.TypeScores[EnvUrban], 1e-9)

	// Tie between natural and outdoor resolves to the earlier enumeration entry
	assert.Equal(t, EnvNatural, env.PrimaryType)
}

func TestMapEnvironment_ScoresSumToOne(t *testing.T) {
	taxonomy := DefaultTaxonomy(0)

	result := taxonomy.Map([]ClassScore{
		{Name: "Car", Score: 0.5},
		{Name: "Bird", Score: 0.3},
		{Name: "Speech", Score: 0.2},
	})

	var sum float64
	for _, v := range result.Environment.TypeScores {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestMapEnvironment_UniformFallback(t *testing.T) {
	taxonomy := DefaultTaxonomy(0)

	result := taxonomy.Map([]ClassScore{
		{Name: "Theremin", Score: 0.9},
	})

	for _, envType := range EnvironmentTypes {
		assert.InDelta(t, 0.25, result.Environment.TypeScores[envType], 1e-9)
	}
	assert.Equal(t, EnvUrban, result.Environment.PrimaryType)
}

func TestMapEnvironment_Description(t *testing.T) {
	taxonomy := DefaultTaxonomy(0)

	result := taxonomy.Map([]ClassScore{
		{Name: "Bird", Score: 0.9},
	})

	// natural primary, outdoor at 0.5 exceeds the 0.2 inclusion threshold
	assert.Contains(t, result.Environment.Description, environmentDescriptions[EnvNatural])
	assert.Contains(t, result.Environment.Description, "also elements of: outdoor")
}

func TestMap_Deterministic(t *testing.T) {
	taxonomy := DefaultTaxonomy(0)
	input := []ClassScore{
		{Name: "Car", Score: 0.4},
		{Name: "Bird", Score: 0.4},
		{Name: "Rain", Score: 0.1},
	}

	first := taxonomy.Map(input)
	for range 10 {
		assert.Equal(t, first, taxonomy.Map(input))
	}
}

func TestMap_DoesNotMutateInput(t *testing.T) {
	taxonomy := DefaultTaxonomy(0)
	input := []ClassScore{
		{Name: "Car", Score: 0.4},
		{Name: "Bird", Score: 0.2},
	}

	_ = taxonomy.Map(input)

	assert.Equal(t, "Car", input[0].Name)
	assert.InDelta(t, 0.4, input[0].Score, 1e-12)
	assert.InDelta(t, 0.2, input[1].Score, 1e-12)
}
