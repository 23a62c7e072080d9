// Package locale inspects the process's measurement locale to decide which
// temperature scale the user's territory conventionally uses.
package locale

import (
	"os"
	"strings"
)

// fahrenheitTerritories are the territory codes whose measurement convention
// is Fahrenheit: United States, Liberia, Micronesia, Cayman Islands,
// Marshall Islands, Palau.
var fahrenheitTerritories = map[string]bool{
	"US": true,
	"LR": true,
	"FM": true,
	"KY": true,
	"MH": true,
	"PW": true,
}

// Measurement returns the measurement locale identifier from the environment,
// following the libc category precedence: LC_ALL overrides LC_MEASUREMENT,
// which overrides LANG. An unset locale is reported as "C". The value is read
// once at startup and passed down explicitly.
func Measurement() string {
	for _, key := range []string{"LC_ALL", "LC_MEASUREMENT", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "C"
}

// UsesFahrenheit reports whether the locale identifier names a territory that
// conventionally uses Fahrenheit. The territory is the substring between the
// first '_' and the first '.', compared exactly: "en_US.UTF-8" matches,
// "en_USA.UTF-8" does not. Locales without both delimiters in that order
// ("C", "en", "en_US") default to Celsius, matching the safe metric default.
func UsesFahrenheit(locale string) bool {
	underscore := strings.IndexByte(locale, '_')
	dot := strings.IndexByte(locale, '.')
	if underscore == -1 || dot == -1 || dot <= underscore {
		return false
	}
	return fahrenheitTerritories[locale[underscore+1:dot]]
}
