package meteo

import (
	"math"
	"testing"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestDewPointCelsius(t *testing.T) {
	// 20°C at 50% RH: x = ln(0.5) + 17.625*20/263.04 ≈ 0.647, dew ≈ 9.3°C
	got := DewPoint(20, 50)
	if !almostEqual(got, 9.3, 0.05) {
		t.Errorf("DewPoint(20, 50) = %f, want ≈9.3", got)
	}
}

func TestDewPointFahrenheit(t *testing.T) {
	// 68°F is 20°C; the Celsius dew point ≈9.3°C converts back to ≈48.7°F
	got := DewPointFahrenheit(68, 50)
	if !almostEqual(got, 48.7, 0.1) {
		t.Errorf("DewPointFahrenheit(68, 50) = %f, want ≈48.7", got)
	}
}

func TestDewPointAtSaturation(t *testing.T) {
	// At 100% humidity the dew point is the temperature itself.
	for _, temp := range []float64{-40, -10, 0, 15, 20, 35} {
		got := DewPoint(temp, 100)
		if !almostEqual(got, temp, 1e-9) {
			t.Errorf("DewPoint(%f, 100) = %f, want %f", temp, got, temp)
		}
	}
	for _, temp := range []float64{-40, 32, 68, 95} {
		got := DewPointFahrenheit(temp, 100)
		if !almostEqual(got, temp, 1e-9) {
			t.Errorf("DewPointFahrenheit(%f, 100) = %f, want %f", temp, got, temp)
		}
	}
}

func TestDewPointRoundedScenarios(t *testing.T) {
	if got := int(math.Round(DewPoint(20, 50))); got != 9 {
		t.Errorf("rounded DewPoint(20, 50) = %d, want 9", got)
	}
	if got := int(math.Round(DewPointFahrenheit(68, 50))); got != 49 {
		t.Errorf("rounded DewPointFahrenheit(68, 50) = %d, want 49", got)
	}
}

func TestDewPointIn(t *testing.T) {
	if got, want := DewPointIn(Celsius, 20, 50), DewPoint(20, 50); got != want {
		t.Errorf("DewPointIn(Celsius) = %f, want %f", got, want)
	}
	if got, want := DewPointIn(Fahrenheit, 68, 50), DewPointFahrenheit(68, 50); got != want {
		t.Errorf("DewPointIn(Fahrenheit) = %f, want %f", got, want)
	}
}

func TestConversionsRoundTrip(t *testing.T) {
	if got := FahrenheitToCelsius(32); got != 0 {
		t.Errorf("FahrenheitToCelsius(32) = %f, want 0", got)
	}
	if got := CelsiusToFahrenheit(100); got != 212 {
		t.Errorf("CelsiusToFahrenheit(100) = %f, want 212", got)
	}
	for _, c := range []float64{-40, 0, 20, 37.5} {
		if got := FahrenheitToCelsius(CelsiusToFahrenheit(c)); !almostEqual(got, c, 1e-12) {
			t.Errorf("round trip of %f came back as %f", c, got)
		}
	}
}

func TestUnitString(t *testing.T) {
	if Celsius.String() != "Celsius" {
		t.Errorf("Celsius.String() = %q", Celsius.String())
	}
	if Fahrenheit.String() != "Fahrenheit" {
		t.Errorf("Fahrenheit.String() = %q", Fahrenheit.String())
	}
	if Celsius.Symbol() != "C" || Fahrenheit.Symbol() != "F" {
		t.Errorf("unexpected symbols: %q, %q", Celsius.Symbol(), Fahrenheit.Symbol())
	}
}

func TestUnitFromSymbol(t *testing.T) {
	cases := []struct {
		in   string
		unit Unit
		ok   bool
	}{
		{"c", Celsius, true},
		{"celsius", Celsius, true},
		{"centigrade", Celsius, true},
		{"f", Fahrenheit, true},
		{"fahrenheit", Fahrenheit, true},
		{"kelvin", Celsius, false},
		{"", Celsius, false},
	}
	for _, tc := range cases {
		unit, ok := UnitFromSymbol(tc.in)
		if ok != tc.ok || unit != tc.unit {
			t.Errorf("UnitFromSymbol(%q) = (%v, %t), want (%v, %t)", tc.in, unit, ok, tc.unit, tc.ok)
		}
	}
}
