package climate

import "math"

// ConditionID identifies a weather condition category.
type ConditionID string

const (
	ConditionVeryHot         ConditionID = "very-hot"
	ConditionVeryCold        ConditionID = "very-cold"
	ConditionVeryWet         ConditionID = "very-wet"
	ConditionVeryWindy       ConditionID = "very-windy"
	ConditionUncomfortable   ConditionID = "uncomfortable"
	ConditionVeryComfortable ConditionID = "very-comfortable"
)

// Condition thresholds. Comparisons are strict unless noted.
const (
	VeryHotAboveF  = 90.0
	VeryColdBelowF = 32.0
	VeryWetAboveMm = 10.0
	VeryWindyAbove = 20.0 // mph

	MuggyAboveF         = 85.0
	MuggyHumidityAbove  = 60.0
	UncomfortableAboveF = 95.0
	UncomfortableBelowF = 40.0

	ComfortableMinF          = 65.0 // inclusive
	ComfortableMaxF          = 78.0 // inclusive
	ComfortableHumidityBelow = 65.0
	ComfortablePrecipBelowMm = 2.0
	ComfortableWindBelow     = 15.0 // mph
)

// Condition is a named predicate over a sample.
type Condition struct {
	ID        ConditionID
	Label     string
	Predicate func(Sample) bool
}

// Conditions is the canonical, fixed condition set in display order.
var Conditions = []Condition{
	{
		ID:    ConditionVeryHot,
		Label: "Very Hot",
		Predicate: func(s Sample) bool {
			return s.TemperatureF > VeryHotAboveF
		},
	},
	{
		ID:    ConditionVeryCold,
		Label: "Very Cold",
		Predicate: func(s Sample) bool {
			return s.TemperatureF < VeryColdBelowF
		},
	},
	{
		ID:    ConditionVeryWet,
		Label: "Very Wet",
		Predicate: func(s Sample) bool {
			return s.PrecipitationMm > VeryWetAboveMm
		},
	},
	{
		ID:    ConditionVeryWindy,
		Label: "Very Windy",
		Predicate: func(s Sample) bool {
			return s.WindSpeedMph > VeryWindyAbove
		},
	},
	{
		ID:    ConditionUncomfortable,
		Label: "Very Uncomfortable",
		Predicate: func(s Sample) bool {
			muggy := s.TemperatureF > MuggyAboveF && s.HumidityPct > MuggyHumidityAbove
			return muggy || s.TemperatureF > UncomfortableAboveF || s.TemperatureF < UncomfortableBelowF
		},
	},
	{
		ID:    ConditionVeryComfortable,
		Label: "Very Comfortable",
		Predicate: func(s Sample) bool {
			return s.TemperatureF >= ComfortableMinF && s.TemperatureF <= ComfortableMaxF &&
				s.HumidityPct < ComfortableHumidityBelow &&
				s.PrecipitationMm < ComfortablePrecipBelowMm &&
				s.WindSpeedMph < ComfortableWindBelow
		},
	},
}

// LookupCondition returns the canonical condition with the given id.
func LookupCondition(id ConditionID) (Condition, bool) {
	for _, c := range Conditions {
		if c.ID == id {
			return c, true
		}
	}
	return Condition{}, false
}

// Evaluate computes, for each requested id in order, the rounded percentage of
// samples satisfying the condition. An empty dataset yields DefaultProbability
// for every id. Unknown ids never match.
func Evaluate(dataset []Sample, ids []ConditionID) []ProbabilityResult {
	results := make([]ProbabilityResult, 0, len(ids))

	for _, id := range ids {
		if len(dataset) == 0 {
			results = append(results, ProbabilityResult{ConditionID: id, Probability: DefaultProbability})
			continue
		}

		count := 0
		if cond, ok := LookupCondition(id); ok {
			for _, s := range dataset {
				if cond.Predicate(s) {
					count++
				}
			}
		}

		results = append(results, ProbabilityResult{
			ConditionID: id,
			Probability: int(math.Round(100 * float64(count) / float64(len(dataset)))),
		})
	}

	return results
}

// AverageProbability returns the arithmetic mean of the probabilities, or 0 for none.
func AverageProbability(results []ProbabilityResult) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0
	for _, r := range results {
		sum += r.Probability
	}
	return float64(sum) / float64(len(results))
}
