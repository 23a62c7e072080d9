package storage

import (
	"time"

	"github.com/wxkit/dewpoint/internal/meteo"
)

// Computation sources.
const (
	SourceCLI = "cli"
	SourceAPI = "api"
)

// Computation represents a dew point computation stored in the database.
// Temperature and dew point are kept in the unit the user supplied; the dew
// point is stored unrounded.
type Computation struct {
	ID          int64     `json:"id"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	DewPoint    float64   `json:"dew_point"`
	Unit        string    `json:"unit"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewComputation builds a record for a just-computed dew point.
func NewComputation(unit meteo.Unit, temperature, humidity, dewPoint float64, source string) *Computation {
	return &Computation{
		Temperature: temperature,
		Humidity:    humidity,
		DewPoint:    dewPoint,
		Unit:        unit.Symbol(),
		Source:      source,
		CreatedAt:   time.Now().UTC(),
	}
}

// TemperatureCelsius returns the input temperature normalized to Celsius.
func (c *Computation) TemperatureCelsius() float64 {
	if c.Unit == "F" {
		return meteo.FahrenheitToCelsius(c.Temperature)
	}
	return c.Temperature
}

// DewPointCelsius returns the dew point normalized to Celsius.
func (c *Computation) DewPointCelsius() float64 {
	if c.Unit == "F" {
		return meteo.FahrenheitToCelsius(c.DewPoint)
	}
	return c.DewPoint
}
