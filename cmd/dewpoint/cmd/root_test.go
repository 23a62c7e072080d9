package cmd

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/wxkit/dewpoint/internal/config"
	"github.com/wxkit/dewpoint/internal/meteo"
)

// execRoot resets command state and runs the root command, capturing stdout.
func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	unitSel = unitSelection{}
	cfg = nil
	noSave = true
	// Flag values persist across Execute calls; a prior --help run would
	// otherwise short-circuit every run after it.
	if f := rootCmd.Flags().Lookup("help"); f != nil {
		_ = f.Value.Set("false")
		f.Changed = false
	}
	t.Cleanup(func() {
		unitSel = unitSelection{}
		cfg = nil
		noSave = false
	})

	if args == nil {
		args = []string{}
	}
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestComputeCelsius(t *testing.T) {
	out, err := execRoot(t, "-c", "20", "50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "9\n" {
		t.Errorf("expected output %q, got %q", "9\n", out)
	}
}

func TestComputeFahrenheit(t *testing.T) {
	out, err := execRoot(t, "-f", "68", "50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "49\n" {
		t.Errorf("expected output %q, got %q", "49\n", out)
	}
}

func TestCentigradeAlias(t *testing.T) {
	out, err := execRoot(t, "--centigrade", "20", "50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "9\n" {
		t.Errorf("expected output %q, got %q", "9\n", out)
	}
}

func TestLastUnitFlagWins(t *testing.T) {
	out, err := execRoot(t, "-c", "-f", "68", "50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "49\n" {
		t.Errorf("-c then -f: expected Fahrenheit output %q, got %q", "49\n", out)
	}

	out, err = execRoot(t, "-f", "-c", "20", "50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "9\n" {
		t.Errorf("-f then -c: expected Celsius output %q, got %q", "9\n", out)
	}
}

func TestSaturationEqualsTemperature(t *testing.T) {
	out, err := execRoot(t, "-c", "20", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "20\n" {
		t.Errorf("at 100%% humidity expected %q, got %q", "20\n", out)
	}
}

func TestInvalidTemperature(t *testing.T) {
	_, err := execRoot(t, "abc", "50")
	if err == nil {
		t.Fatal("expected error for invalid temperature")
	}

	var argErr *argumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected argumentError, got %T", err)
	}
	if argErr.kind != "temperature" || argErr.token != "abc" {
		t.Errorf("got kind=%q token=%q, want temperature/abc", argErr.kind, argErr.token)
	}
}

func TestTrailingGarbageRejected(t *testing.T) {
	_, err := execRoot(t, "20x", "50")
	if err == nil {
		t.Fatal("expected error for partially numeric temperature")
	}

	var argErr *argumentError
	if !errors.As(err, &argErr) || argErr.kind != "temperature" {
		t.Fatalf("expected temperature argumentError, got %v", err)
	}
}

func TestInvalidHumidity(t *testing.T) {
	for _, humidity := range []string{"x", "0"} {
		_, err := execRoot(t, "20", humidity)
		if err == nil {
			t.Fatalf("expected error for humidity %q", humidity)
		}

		var argErr *argumentError
		if !errors.As(err, &argErr) {
			t.Fatalf("expected argumentError, got %T", err)
		}
		if argErr.kind != "humidity" || argErr.token != humidity {
			t.Errorf("got kind=%q token=%q, want humidity/%q", argErr.kind, argErr.token, humidity)
		}
	}
}

func TestNegativeHumidity(t *testing.T) {
	// A bare -5 is parsed as an unknown shorthand flag, same as getopt would.
	_, err := execRoot(t, "20", "-5")
	var flgErr *flagError
	if !errors.As(err, &flgErr) {
		t.Fatalf("expected flagError for bare -5, got %v", err)
	}

	// After the terminator it reaches humidity validation.
	_, err = execRoot(t, "--", "20", "-5")
	var argErr *argumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected argumentError after --, got %v", err)
	}
	if argErr.kind != "humidity" || argErr.token != "-5" {
		t.Errorf("got kind=%q token=%q, want humidity/-5", argErr.kind, argErr.token)
	}
}

func TestWrongArgumentCount(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"20"},
		{"20", "50", "30"},
	} {
		_, err := execRoot(t, args...)
		if !errors.Is(err, errUsage) {
			t.Errorf("args %v: expected usage error, got %v", args, err)
		}
	}
}

func TestUnknownOption(t *testing.T) {
	_, err := execRoot(t, "--bogus", "20", "50")
	if err == nil {
		t.Fatal("expected error for unknown option")
	}

	var flgErr *flagError
	if !errors.As(err, &flgErr) {
		t.Fatalf("expected flagError, got %T", err)
	}
}

func TestHelpOutput(t *testing.T) {
	saved := measurementLocale
	measurementLocale = "en_US.UTF-8"
	t.Cleanup(func() { measurementLocale = saved })

	out, err := execRoot(t, "--help")
	if err != nil {
		t.Fatalf("--help must succeed, got: %v", err)
	}

	if !strings.HasPrefix(out, "Usage: dewpoint TEMPERATURE HUMIDITY\n") {
		t.Errorf("help must start with the short usage line, got %q", out)
	}
	if !strings.Contains(out, "--centigrade") {
		t.Error("help must document the --centigrade alias")
	}
	if !strings.Contains(out, "Your current measurement locale is en_US.UTF-8, which uses Fahrenheit by") {
		t.Errorf("help must report the detected locale and unit, got %q", out)
	}
}

func TestHelpReportsCelsiusLocale(t *testing.T) {
	saved := measurementLocale
	measurementLocale = "de_DE.UTF-8"
	t.Cleanup(func() { measurementLocale = saved })

	out, err := execRoot(t, "--help")
	if err != nil {
		t.Fatalf("--help must succeed, got: %v", err)
	}
	if !strings.Contains(out, "uses Celsius by") {
		t.Errorf("expected Celsius locale report, got %q", out)
	}
}

func TestDiagnosticFormatting(t *testing.T) {
	cases := []struct {
		err  error
		want []string
	}{
		{
			errUsage,
			[]string{"Usage: dewpoint TEMPERATURE HUMIDITY\n", "Try 'dewpoint --help'"},
		},
		{
			&argumentError{kind: "temperature", token: "abc"},
			[]string{`dewpoint: invalid temperature "abc"`, "Try 'dewpoint --help'"},
		},
		{
			&argumentError{kind: "humidity", token: "0"},
			[]string{`dewpoint: invalid humidity "0"`, "Try 'dewpoint --help'"},
		},
		{
			&flagError{err: errors.New("unknown flag: --bogus")},
			[]string{"dewpoint: unknown flag: --bogus", "Try 'dewpoint --help'"},
		},
	}

	for _, tc := range cases {
		buf := &bytes.Buffer{}
		printDiagnostic(buf, tc.err)
		for _, want := range tc.want {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("diagnostic for %v missing %q, got %q", tc.err, want, buf.String())
			}
		}
	}
}

func TestResolveUnit(t *testing.T) {
	reset := func() { unitSel = unitSelection{} }
	t.Cleanup(reset)

	// Flag beats everything.
	reset()
	unitSel = unitSelection{unit: meteo.Fahrenheit, set: true}
	fahrenheitCfg := config.NewDefault()
	fahrenheitCfg.General.DefaultUnit = "celsius"
	if got := resolveUnit(fahrenheitCfg, "de_DE.UTF-8"); got != meteo.Fahrenheit {
		t.Errorf("explicit flag must win, got %v", got)
	}

	// Config default beats locale.
	reset()
	if got := resolveUnit(fahrenheitCfg, "en_US.UTF-8"); got != meteo.Celsius {
		t.Errorf("config default_unit must beat locale, got %v", got)
	}

	// Locale inference when config says auto.
	autoCfg := config.NewDefault()
	if got := resolveUnit(autoCfg, "en_US.UTF-8"); got != meteo.Fahrenheit {
		t.Errorf("US locale must infer Fahrenheit, got %v", got)
	}
	if got := resolveUnit(autoCfg, "en_GB.UTF-8"); got != meteo.Celsius {
		t.Errorf("GB locale must infer Celsius, got %v", got)
	}
	if got := resolveUnit(nil, "C"); got != meteo.Celsius {
		t.Errorf("bare C locale must infer Celsius, got %v", got)
	}
}

func TestOutputIsSingleInteger(t *testing.T) {
	out, err := execRoot(t, "-c", "24.5", "61.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trimmed := strings.TrimSuffix(out, "\n")
	if strings.ContainsAny(trimmed, ".e \t") || strings.Contains(out[:len(out)-1], "\n") {
		t.Errorf("output must be a single integer line, got %q", out)
	}
	want := int(math.Round(meteo.DewPoint(24.5, 61.2)))
	if trimmed != strconv.Itoa(want) {
		t.Errorf("expected %d, got %q", want, trimmed)
	}
}
