package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ecotrack/internal/activity"
	"github.com/rshade/ecotrack/internal/cli"
	"github.com/rshade/ecotrack/internal/config"
	"github.com/rshade/ecotrack/internal/emission"
	"github.com/rshade/ecotrack/internal/engine"
	"github.com/rshade/ecotrack/internal/report"
)

// wednesday is the clock of every command run in these tests.
var wednesday = time.Date(2026, time.October, 21, 9, 0, 0, 0, time.Local)

// setupCLI isolates the config directory and global config of one test.
func setupCLI(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvUser, "")
	t.Setenv(config.EnvStoreDSN, "")
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

func newRoot() *cobra.Command {
	return cli.NewRootCmdWithClock("test", func() time.Time { return wednesday })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRoot()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestRootCommand(t *testing.T) {
	root := newRoot()
	assert.Equal(t, "ecotrack", root.Use)

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{
		"log", "today", "week", "history", "stats", "achievements",
		"factors", "budget", "import", "report", "dashboard", "config",
	} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	for _, flag := range []string{"debug", "output", "user", "store"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestLogTransport(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, "log", "transport", "motor", "12")
	assert.Contains(t, out, "1.80 kg CO₂")
	assert.Contains(t, out, "Achievement unlocked: Eco Starter")

	out = mustExecute(t, "log", "transport", "car", "4", "--output", "json")
	res := decode[engine.Result](t, out)
	assert.Equal(t, "mobil", res.Record.Subtype)
	assert.InDelta(t, 1.0, res.Record.Emission, 1e-9)
	assert.Equal(t, activity.DateOf(wednesday), res.Record.Date)
	assert.InDelta(t, 2.8, res.Stats.View.TodayTotal, 1e-9)
	assert.Equal(t, 17, res.Stats.TreesNeeded)
}

func TestLogErrors(t *testing.T) {
	setupCLI(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{name: "unknown subtype", args: []string{"log", "food", "pizza", "1"}, wantErr: emission.ErrUnknownSubtype},
		{name: "negative quantity", args: []string{"log", "transport", "motor", "--", "-3"}, wantErr: emission.ErrInvalidQuantity},
		{name: "not a number", args: []string{"log", "food", "sapi", "two"}, wantErr: emission.ErrInvalidQuantity},
		{name: "future date", args: []string{"log", "food", "sapi", "1", "--date", "2026-10-22"}, wantErr: engine.ErrFutureDate},
		{name: "bad date", args: []string{"log", "food", "sapi", "1", "--date", "22/10/2026"}, wantMsg: "invalid --date"},
		{name: "missing quantity", args: []string{"log", "food", "sapi"}, wantMsg: "accepts 2 arg"},
		{name: "energy without hours", args: []string{"log", "energy"}, wantMsg: "at least one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}

	out := mustExecute(t, "history", "--output", "json")
	assert.Equal(t, "[]\n", out, "failed submissions never append")
}

func TestLogEnergyAndToday(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, "log", "energy", "--ac", "2", "--tv", "3", "--output", "json")
	res := decode[engine.Result](t, out)
	assert.Equal(t, emission.CompositeSubtype, res.Record.Subtype)
	assert.InDelta(t, 2.1, res.Record.Emission, 1e-9)
	assert.Equal(t, map[string]float64{"ac": 2, "tv": 3}, res.Record.Components)

	mustExecute(t, "log", "food", "sapi", "1", "--date", "2026-10-20")

	view := decode[engine.View](t, mustExecute(t, "today", "-o", "json"))
	assert.InDelta(t, 2.1, view.TodayTotal, 1e-9)
	assert.InDelta(t, 29.1, view.WeekTotal, 1e-9)
	assert.Equal(t, map[emission.Category]float64{emission.CategoryEnergy: 2.1}, view.CategoryBreakdown)

	out = mustExecute(t, "today")
	assert.Contains(t, out, "Today, 2026-10-21")
	assert.Contains(t, out, "energy")

	out = mustExecute(t, "week")
	assert.Contains(t, out, "Tue 2026-10-20")
	assert.Contains(t, out, "Week total: 29.10 kg CO₂")
}

func TestHistoryStatsAchievements(t *testing.T) {
	setupCLI(t)

	for i := range 3 {
		date := activity.DateOf(wednesday).AddDays(-i).String()
		mustExecute(t, "log", "transport", "busway", "10", "--date", date)
	}

	records := decode[[]activity.Activity](t, mustExecute(t, "history", "-o", "json", "--limit", "2"))
	require.Len(t, records, 2)
	assert.Equal(t, activity.DateOf(wednesday).AddDays(-2), records[0].Date, "most recently recorded first")

	records = decode[[]activity.Activity](t, mustExecute(t, "history", "-o", "json", "--date", "2026-10-20"))
	require.Len(t, records, 1)

	stats := decode[engine.LifetimeStats](t, mustExecute(t, "stats", "-o", "json"))
	assert.InDelta(t, 1.5, stats.TotalKg, 1e-9)
	assert.InDelta(t, 0.21, stats.WeeklyAverageKg, 1e-9)
	assert.Equal(t, 3, stats.ActiveDays)
	assert.Equal(t, 3, stats.Streak)

	out := mustExecute(t, "stats")
	assert.Contains(t, out, "Lifetime statistics for default")

	list := decode[[]engine.Achievement](t, mustExecute(t, "achievements", "-o", "json"))
	require.Len(t, list, 4)
	assert.True(t, engine.Unlocked(list, engine.EcoStarter))
	assert.True(t, engine.Unlocked(list, engine.LowCarbon))
	assert.False(t, engine.Unlocked(list, engine.WeekWarrior))
}

func TestUsersAreSeparate(t *testing.T) {
	setupCLI(t)

	mustExecute(t, "log", "food", "sapi", "1", "--user", "alice")
	t.Setenv(config.EnvUser, "bob")
	config.ResetGlobalConfigForTest()
	mustExecute(t, "log", "food", "ikan", "1")

	alice := decode[engine.View](t, mustExecute(t, "today", "-o", "json", "-u", "alice"))
	bob := decode[engine.View](t, mustExecute(t, "today", "-o", "json"))
	assert.InDelta(t, 27.0, alice.TodayTotal, 1e-9)
	assert.InDelta(t, 5.1, bob.TodayTotal, 1e-9)
}

func TestFactors(t *testing.T) {
	setupCLI(t)

	factors := decode[[]emission.Factor](t, mustExecute(t, "factors", "transport", "-o", "json"))
	require.Len(t, factors, 6)
	assert.Equal(t, "motor", factors[0].Subtype)

	out := mustExecute(t, "factors")
	assert.Contains(t, out, "daging_sapi")
	assert.Contains(t, out, "listrik")

	_, err := execute(t, "factors", "flights")
	require.ErrorIs(t, err, emission.ErrUnknownCategory)
}

func TestStoreSelection(t *testing.T) {
	home := setupCLI(t)

	mustExecute(t, "log", "food", "sapi", "1", "--store", "memory")
	_, err := os.Stat(filepath.Join(home, "activities.json"))
	assert.True(t, os.IsNotExist(err), "memory store writes nothing")

	mustExecute(t, "log", "food", "sapi", "1")
	_, err = os.Stat(filepath.Join(home, "activities.json"))
	require.NoError(t, err)

	_, err = execute(t, "today", "--store", "postgres")
	require.ErrorIs(t, err, config.ErrStoreDSNRequired)

	_, err = execute(t, "today", "--store", "redis")
	require.Error(t, err)
}

func TestBudgetCommand(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "budget")
	require.ErrorIs(t, err, engine.ErrBudgetDisabled)

	mustExecute(t, "log", "food", "vegetarian", "2", "--date", "2026-10-19")
	mustExecute(t, "log", "food", "vegetarian", "1")

	out := mustExecute(t, "budget", "--limit", "20")
	assert.Contains(t, out, "CARBON BUDGET")
	assert.Contains(t, out, "Current: 6.00 kg CO₂ (30.0%)")
	assert.Contains(t, out, "Forecast: 14.00 kg CO₂ (70.0%)")
	assert.Contains(t, out, "Status: OK")

	status := decode[engine.BudgetStatus](t, mustExecute(t, "budget", "--limit", "10", "-o", "json"))
	assert.Equal(t, engine.HealthOK, status.Health)
	assert.True(t, status.Triggered(), "default 50% threshold")

	_, err = execute(t, "budget", "--limit", "10", "--exit-on-threshold", "--exit-code", "2")
	var exitErr *cli.BudgetExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.ExitCode)
	assert.Contains(t, exitErr.Reason, "actual 50%")

	_, err = execute(t, "budget", "--limit", "10", "--exit-on-threshold", "--exit-code", "0")
	require.NoError(t, err, "exit code 0 only warns")

	_, err = execute(t, "budget", "--limit", "10", "--period", "yearly")
	require.ErrorIs(t, err, config.ErrUnsupportedBudgetPeriod)
}

func TestImportCommand(t *testing.T) {
	home := setupCLI(t)

	path := filepath.Join(home, "import.csv")
	csv := "date,category,subtype,quantity\n" +
		"2026-10-19,transport,kereta,25\n" +
		"2026-10-20,food,ayam,1\n" +
		",energy,ac,2\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	res := decode[engine.ImportResult](t, mustExecute(t, "import", path, "-o", "json"))
	assert.Equal(t, 3, res.Imported)
	assert.InDelta(t, 9.7, res.TotalKg, 1e-9)
	assert.InDelta(t, 1.8, res.View.TodayTotal, 1e-9)

	bad := filepath.Join(home, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("2026-10-19,food,sapi,1\n2026-10-19,food,pizza,1\n"), 0o600))
	_, err := execute(t, "import", bad)
	var rowErr *engine.ImportError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Row)

	stats := decode[engine.LifetimeStats](t, mustExecute(t, "stats", "-o", "json"))
	assert.Equal(t, 3, stats.ActivityCount, "a rejected import records nothing")

	var out, errOut bytes.Buffer
	cmd := newRoot()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader("2026-10-21,food,telur,1\n"))
	cmd.SetArgs([]string{"import", "-"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Imported 1 activities for default")
	assert.Contains(t, errOut.String(), "Imported 1/1 (100%)")
}

func TestParseImportCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "header skipped", input: "date,category,subtype,quantity\n2026-10-19,food,ikan,1\n", want: 1},
		{name: "comments and spaces", input: "# trips\n2026-10-19, transport, motor, 12\n", want: 1},
		{name: "empty", input: "", want: 0},
		{name: "wrong column count", input: "2026-10-19,food,ikan\n", wantErr: true},
		{name: "bad quantity", input: "2026-10-19,food,ikan,x\n", wantErr: true},
		{name: "bad date", input: "19.10.2026,food,ikan,1\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := cli.ParseImportCSV(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, tt.want)
		})
	}

	rows, err := cli.ParseImportCSV(strings.NewReader(",transport,motor,12\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Date.IsZero())
	assert.Equal(t, emission.CategoryTransport, rows[0].Category)
	assert.InDelta(t, 12.0, rows[0].Quantity, 1e-12)
}

func TestReportCommand(t *testing.T) {
	home := setupCLI(t)
	mustExecute(t, "log", "transport", "motor", "12")

	xlsx := filepath.Join(home, "week.xlsx")
	out := mustExecute(t, "report", "--out", xlsx)
	assert.Contains(t, out, "Report written to")
	data, err := os.ReadFile(xlsx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "xlsx is a zip archive")

	pdf := filepath.Join(home, "week.out")
	mustExecute(t, "report", "--format", "pdf", "--out", pdf)
	data, err = os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = execute(t, "report", "--out", filepath.Join(home, "week.docx"))
	require.ErrorIs(t, err, report.ErrUnknownFormat)
	_, err = execute(t, "report")
	require.Error(t, err)

	both := []string{filepath.Join(home, "both.xlsx"), filepath.Join(home, "both.pdf")}
	out = mustExecute(t, "report", "--out", both[0], "--out", both[1])
	for _, path := range both {
		assert.Contains(t, out, "Report written to "+path)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	_, err = execute(t, "report", "--out", filepath.Join(home, "ok.pdf"), "--out", filepath.Join(home, "bad.txt"))
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestConfigCommands(t *testing.T) {
	home := setupCLI(t)

	out := mustExecute(t, "config", "init")
	assert.Contains(t, out, filepath.Join(home, config.ConfigFileName))

	_, err := execute(t, "config", "init")
	require.Error(t, err, "existing file is kept")
	mustExecute(t, "config", "init", "--force")

	mustExecute(t, "config", "set", "budget.limit_kg", "35")
	mustExecute(t, "config", "set", "output.default_format", "json")

	out = mustExecute(t, "config", "get", "budget.limit_kg")
	assert.Equal(t, "35\n", out)

	_, err = execute(t, "config", "set", "output.precision", "9")
	require.ErrorIs(t, err, config.ErrPrecisionRange)
	_, err = execute(t, "config", "get", "nope")
	require.ErrorIs(t, err, config.ErrUnknownKey)

	out = mustExecute(t, "config", "list")
	assert.Contains(t, out, "budget.period")
	assert.Contains(t, out, "store.driver")

	out = mustExecute(t, "config", "validate", "--verbose")
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Budget: 35.00 kg CO₂ weekly")

	// The saved default format applies to later commands.
	config.ResetGlobalConfigForTest()
	out = mustExecute(t, "log", "food", "ikan", "1")
	res := decode[engine.Result](t, out)
	assert.InDelta(t, 5.1, res.Record.Emission, 1e-9)
}

func TestCustomCatalog(t *testing.T) {
	home := setupCLI(t)

	catalog := filepath.Join(home, "catalog.yaml")
	doc := `version: 1.1.0
categories:
  - name: transport
    unit: km
    factors:
      - subtype: ojek
        kg_per_unit: 0.1
`
	require.NoError(t, os.WriteFile(catalog, []byte(doc), 0o600))
	mustExecute(t, "config", "set", "catalog.file", catalog)
	config.ResetGlobalConfigForTest()

	res := decode[engine.Result](t, mustExecute(t, "log", "transport", "ojek", "10", "-o", "json"))
	assert.InDelta(t, 1.0, res.Record.Emission, 1e-9)

	_, err := execute(t, "log", "food", "sapi", "1")
	require.ErrorIs(t, err, emission.ErrUnknownCategory)
}
