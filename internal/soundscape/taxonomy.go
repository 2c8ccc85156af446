package soundscape

// Category identifiers. Stable ASCII ids used in API payloads.
const (
	CategoryCar          = "car_sound"
	CategoryTruck        = "truck_sound"
	CategoryMotorcycle   = "motorcycle_sound"
	CategoryBus          = "bus_sound"
	CategoryTraffic      = "traffic_noise"
	CategoryTrain        = "train_sound"
	CategoryBird         = "bird_song"
	CategoryRain         = "rain_sound"
	CategoryWind         = "wind_sound"
	CategoryVoice        = "human_voice"
	CategoryMusic        = "music"
	CategoryConstruction = "construction_sound"

	// CategoryUnknown is assigned when no class maps to any category.
	CategoryUnknown = "unknown"
)

// Environment type identifiers. EnvironmentTypes fixes the enumeration order
// used for scoring, tie-breaking and descriptions.
const (
	EnvUrban   = "urban"
	EnvNatural = "natural"
	EnvIndoor  = "indoor"
	EnvOutdoor = "outdoor"
)

// EnvironmentTypes is the fixed enumeration order of environment types.
var EnvironmentTypes = []string{EnvUrban, EnvNatural, EnvIndoor, EnvOutdoor}

// classMapping associates one classifier class name with a category.
type classMapping struct {
	ClassName string
	Category  string
}

// KeywordGroup maps any class name containing one of its keywords to a
// category. Applied only when direct class matching fails.
type KeywordGroup struct {
	Keywords []string
	Category string
}

// envKeywords holds the substring list that credits a class score to one
// environment type.
type envKeywords struct {
	EnvType  string
	Keywords []string
}

// Taxonomy is the immutable mapping table set. Build it once with
// DefaultTaxonomy and share it freely; Map never mutates it.
type Taxonomy struct {
	classMappings []classMapping
	keywordGroups []KeywordGroup
	environment   []envKeywords
	minScore      float64
}

// MinScore returns the score threshold below which classes are ignored
// during category mapping.
func (t *Taxonomy) MinScore() float64 {
	return t.minScore
}

// DefaultTaxonomy builds the standard mapping tables. minScore <= 0 selects
// the default threshold of 0.001.
func DefaultTaxonomy(minScore float64) *Taxonomy {
	if minScore <= 0 {
		minScore = 0.001
	}
	return &Taxonomy{
		minScore: minScore,
		classMappings: []classMapping{
			// Road traffic
			{"Motor vehicle (road)", CategoryCar},
			{"Car", CategoryCar},
			{"Vehicle horn, car horn, honking", CategoryCar},
			{"Truck", CategoryTruck},
			{"Motorcycle", CategoryMotorcycle},
			{"Bus", CategoryBus},
			{"Traffic noise, roadway noise", CategoryTraffic},

			// Rail
			{"Train", CategoryTrain},
			{"Rail transport", CategoryTrain},
			{"Train horn", CategoryTrain},

			// Nature
			{"Bird", CategoryBird},
			{"Bird vocalization, bird call, bird song", CategoryBird},
			{"Rain", CategoryRain},
			{"Rainfall", CategoryRain},
			{"Rain on surface", CategoryRain},
			{"Wind", CategoryWind},
			{"Wind noise (microphone)", CategoryWind},

			// Human voice
			{"Speech", CategoryVoice},
			{"Human voice", CategoryVoice},
			{"Conversation", CategoryVoice},
			{"Child speech, kid speaking", CategoryVoice},
			{"Male speech, man speaking", CategoryVoice},
			{"Female speech, woman speaking", CategoryVoice},

			// Music
			{"Music", CategoryMusic},
			{"Musical instrument", CategoryMusic},
			{"Singing", CategoryMusic},

			// Construction
			{"Construction noise", CategoryConstruction},
			{"Jackhammer", CategoryConstruction},
			{"Tools", CategoryConstruction},
			{"Power tool", CategoryConstruction},
			{"Drilling", CategoryConstruction},
		},
		keywordGroups: []KeywordGroup{
			{[]string{"honk", "horn"}, CategoryCar},
			{[]string{"chirp", "tweet", "sparrow", "crow", "pigeon"}, CategoryBird},
			{[]string{"guitar", "piano", "drum", "violin", "song"}, CategoryMusic},
			{[]string{"hammer", "drill", "saw", "excavat"}, CategoryConstruction},
			{[]string{"whisper", "shout", "laughter"}, CategoryVoice},
		},
		environment: []envKeywords{
			{EnvUrban, []string{
				"Motor vehicle", "Car", "Truck", "Motorcycle", "Bus", "Traffic",
				"Train", "Construction", "Power tool", "Siren",
			}},
			{EnvNatural, []string{
				"Bird", "Rain", "Wind", "Water", "Stream", "Ocean", "Thunder",
				"Insect", "Animal",
			}},
			{EnvIndoor, []string{
				"Speech", "Music", "Television", "Radio", "Air conditioning",
				"Door", "Footsteps", "Typing",
			}},
			{EnvOutdoor, []string{
				"Bird", "Rain", "Wind", "Traffic", "Construction", "Aircraft",
				"Thunder", "Water",
			}},
		},
	}
}

// environmentDescriptions are the base description per primary type.
var environmentDescriptions = map[string]string{
	EnvUrban:   "Urban environment with traffic and city sounds",
	EnvNatural: "Natural environment with wildlife and weather sounds",
	EnvIndoor:  "Indoor environment with human activity",
	EnvOutdoor: "Open outdoor environment",
}
