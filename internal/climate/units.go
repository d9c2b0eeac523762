package climate

import "math"

// MphPerMeterPerSecond is the canonical wind conversion factor for every provider.
const MphPerMeterPerSecond = 2.23694

// CelsiusToFahrenheit converts a temperature from °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// MetersPerSecondToMph converts a speed from m/s to mph.
func MetersPerSecondToMph(mps float64) float64 {
	return mps * MphPerMeterPerSecond
}

// Normalize converts a provider record into a canonical sample.
// Precipitation (mm) and humidity (%) pass through unchanged.
func Normalize(r RawRecord, provenance Provenance) Sample {
	return Sample{
		TemperatureF:    CelsiusToFahrenheit(r.TemperatureMaxC),
		HumidityPct:     r.HumidityPct,
		PrecipitationMm: r.PrecipitationMm,
		WindSpeedMph:    MetersPerSecondToMph(r.WindSpeedMS),
		Provenance:      provenance,
	}
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
