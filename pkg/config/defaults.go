package config

// Default returns the built-in configuration. A loaded YAML file is layered
// on top of these values; hand-built configs can start from here too.
func Default() *Config {
	return &Config{
		TargetCountries: []string{
			"Austria", "Belgium", "Bulgaria", "Croatia", "Czech Republic",
			"Denmark", "Estonia", "Finland", "France", "Germany", "Greece",
			"Hungary", "Ireland", "Italy", "Latvia", "Lithuania",
			"Luxembourg", "Netherlands", "Norway", "Poland", "Portugal",
			"Romania", "Slovakia", "Slovenia", "Spain", "Sweden",
			"Switzerland", "United Kingdom",
		},
		TargetFueltypes: []string{
			"Bioenergy", "Geothermal", "Hard Coal", "Hydro", "Lignite",
			"Natural Gas", "Nuclear", "Oil", "Other", "Solar", "Waste",
			"Wind",
		},
		TargetTechnologies: []string{
			"CCGT", "OCGT", "Steam Turbine", "Combustion Engine",
			"Run-Of-River", "Pumped Storage", "Reservoir", "Marine",
			"Onshore", "Offshore", "PV", "CSP",
		},
		TargetSets: []string{"PP", "CHP", "Store"},

		MinSourceCount: 2,
		DisplayNet:     true,
		GrossToNet: map[string]float64{
			"Hard Coal":   0.94,
			"Lignite":     0.93,
			"Natural Gas": 0.96,
			"Nuclear":     0.95,
			"Oil":         0.96,
			"Other":       0.95,
		},

		StopWords: []string{
			"i", "ii", "iii", "iv", "v", "vi", "vii", "viii", "ix", "x",
			"xi", "xii",
			"power", "plant", "station", "powerplant", "project", "stage",
			"unit", "block", "grupo", "parque", "planta", "central",
			"kraftwerk", "kraftwerke", "kernkraftwerk", "heizkraftwerk",
			"centrale", "energia", "energie",
			"de", "la", "el", "los", "del", "the",
			"france", "germany", "spain", "italia", "austria",
		},
		DedupNameTokens: true,

		Rules: Rules{
			Fueltype: RuleList{
				{Category: "Other", Keywords: []string{"other", "mixed", "unspecified"}},
				{Category: "Bioenergy", Keywords: []string{"bio", "biomass", "biogas", "wood", "straw", "biomasa"}},
				{Category: "Geothermal", Keywords: []string{"geothermal"}},
				{Category: "Natural Gas", Keywords: []string{"gas", "natural gas", "ccgt", "ocgt", "gasturbine"}},
				{Category: "Oil", Keywords: []string{"oil", "diesel", "crude"}},
				{Category: "Hard Coal", Keywords: []string{"coal", "anthracite", "hard coal", "steinkohle"}},
				// Lignite sits after Hard Coal so a row naming both is
				// classified as lignite.
				{Category: "Lignite", Keywords: []string{"lignite", "brown coal", "braunkohle"}},
				{Category: "Nuclear", Keywords: []string{"nuclear", "kernkraft"}},
				{Category: "Solar", Keywords: []string{"solar", "photovoltaic", "pv", "csp"}},
				{Category: "Hydro", Keywords: []string{"hydro", "water", "wasserkraft"}},
				{Category: "Wind", Keywords: []string{"wind", "eolico", "onshore", "offshore"}},
				{Category: "Waste", Keywords: []string{"waste", "refuse", "municipal"}},
			},
			Technology: RuleList{
				{Category: "Steam Turbine", Keywords: []string{"steam turbine", "critical thermal", "steam"}},
				{Category: "OCGT", Keywords: []string{"gas turbine", "open cycle", "ocgt"}},
				{Category: "CCGT", Keywords: []string{"combined cycle", "combustion", "ccgt"}},
				{Category: "Combustion Engine", Keywords: []string{"combustion engine", "reciprocating"}},
				{Category: "Run-Of-River", Keywords: []string{"run-of-river", "run of river", "weir"}},
				{Category: "Reservoir", Keywords: []string{"reservoir", "lake", "dam"}},
				{Category: "Pumped Storage", Keywords: []string{"pump", "pumped"}},
				{Category: "Onshore", Keywords: []string{"onshore"}},
				{Category: "Offshore", Keywords: []string{"offshore"}},
				{Category: "PV", Keywords: []string{"photovoltaic", "pv"}},
				{Category: "CSP", Keywords: []string{"csp", "concentrated solar"}},
				{Category: "Marine", Keywords: []string{"tidal", "wave", "marine"}},
			},
			Set: RuleList{
				{Category: "PP", Match: "pp"},
				{Category: "CHP", Keywords: []string{
					"chp", "cogeneration", "heizkraftwerk", "hkw", "bhkw",
					"power and heat", "heat and power",
				}},
				{Category: "Store", Keywords: []string{"battery", "storage"}},
			},
		},

		Matching: Matching{
			Threshold: 0.75,
			Weights: Weights{
				Name:       0.35,
				Geo:        0.20,
				Capacity:   0.25,
				Fueltype:   0.15,
				Technology: 0.05,
			},
			GeoRadiusKM:       50,
			GeoBucketDeg:      0.5,
			CapacityTolerance: 0.5,
			SameCountryOnly:   true,
		},

		Aggregation: Aggregation{
			GroupByFueltype: true,
			GeoToleranceKM:  25,
		},

		Heuristics: Heuristics{
			FillCommissioningYears: false,
			FillRetirementYears:    false,
			EstimateCapacity:       false,
		},

		FuelLifetimes: map[string]int{
			"Bioenergy":   20,
			"Geothermal":  15,
			"Hard Coal":   45,
			"Hydro":       100,
			"Lignite":     45,
			"Natural Gas": 40,
			"Nuclear":     50,
			"Oil":         40,
			"Other":       5,
			"Solar":       25,
			"Waste":       25,
			"Wind":        25,
		},
	}
}
