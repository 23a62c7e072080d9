// Package meteo provides dew point calculation and temperature unit handling.
package meteo

import "math"

// Magnus formula constants, per Mark G. Lawrence, "The Relationship Between
// Relative Humidity and the Dewpoint Temperature in Moist Air," Bulletin of
// the American Meteorological Society 86(2) (February 2005), 225-234,
// https://doi.org/10.1175/BAMS-86-2-225 (equation 8).
const (
	magnusA = 17.625
	magnusB = 243.04
)

// Unit is a temperature scale.
type Unit int

const (
	Celsius Unit = iota
	Fahrenheit
)

// String returns the unit's full name.
func (u Unit) String() string {
	if u == Fahrenheit {
		return "Fahrenheit"
	}
	return "Celsius"
}

// Symbol returns the short unit symbol used in storage and API payloads.
func (u Unit) Symbol() string {
	if u == Fahrenheit {
		return "F"
	}
	return "C"
}

// UnitFromSymbol parses a unit symbol or name. It accepts the forms used on
// the command line and in the API ("c", "celsius", "centigrade", "f",
// "fahrenheit"), case-insensitively via the caller lowercasing.
func UnitFromSymbol(s string) (Unit, bool) {
	switch s {
	case "c", "celsius", "centigrade":
		return Celsius, true
	case "f", "fahrenheit":
		return Fahrenheit, true
	}
	return Celsius, false
}

// DewPoint approximates the dew point of air at the given Celsius temperature
// and relative humidity (as a percentage, where 100 means saturation) using
// the Magnus formula. At 100% humidity the dew point equals the temperature.
//
// Humidity must be positive; callers validate before invoking.
func DewPoint(celsius, humidity float64) float64 {
	x := math.Log(humidity/100) + magnusA*celsius/(magnusB+celsius)
	return magnusB * x / (magnusA - x)
}

// DewPointFahrenheit computes the dew point for a Fahrenheit temperature,
// converting through Celsius and back.
func DewPointFahrenheit(fahrenheit, humidity float64) float64 {
	return CelsiusToFahrenheit(DewPoint(FahrenheitToCelsius(fahrenheit), humidity))
}

// DewPointIn computes the dew point in the given unit, for a temperature
// expressed in that same unit.
func DewPointIn(unit Unit, temperature, humidity float64) float64 {
	if unit == Fahrenheit {
		return DewPointFahrenheit(temperature, humidity)
	}
	return DewPoint(temperature, humidity)
}

// FahrenheitToCelsius converts a Fahrenheit temperature to Celsius.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// CelsiusToFahrenheit converts a Celsius temperature to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
