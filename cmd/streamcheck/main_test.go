package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"streamcheck/internal/config"
	"streamcheck/internal/testsupport"
)

type cliTestEnv struct {
	backends   *testsupport.Backends
	configPath string
	csvPath    string
	cacheDir   string
}

// setupCLITestEnv serves two accounts: alpha streams through its only match,
// beta never streams.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", "")
	previous := config.DotEnvPath
	config.DotEnvPath = filepath.Join(t.TempDir(), ".env")
	t.Cleanup(func() { config.DotEnvPath = previous })

	matchStart := time.Date(2024, 12, 5, 18, 0, 0, 0, time.UTC)
	backends := testsupport.NewBackends(t)
	backends.AddAccount("Alpha#NA1", "p-alpha", testsupport.Match{ID: "NA1_a", Start: matchStart, Length: 30 * time.Minute})
	backends.AddAccount("Beta#NA1", "p-beta", testsupport.Match{ID: "NA1_b", Start: matchStart, Length: 30 * time.Minute})
	backends.AddStreamer("alpha", "id-alpha", testsupport.Video{ID: "v1", Start: matchStart.Add(-30 * time.Minute), Duration: "2h"})
	backends.AddStreamer("beta", "id-beta")
	backends.AddStreamer("ghost", "id-ghost")

	cfg := testsupport.NewConfig(t, backends, opts...)
	return &cliTestEnv{
		backends:   backends,
		configPath: testsupport.WriteConfig(t, cfg),
		csvPath:    cfg.Analysis.OutputCSV,
		cacheDir:   cfg.Cache.Dir,
	}
}

func runCLI(t *testing.T, args []string, stdin string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func readCSV(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return string(data)
}

func TestCheckCommandPrintsSummaryAndAppendsCSV(t *testing.T) {
	env := setupCLITestEnv(t)
	args := []string{"check", "-c", env.configPath, "--riot-id", "Alpha#NA1", "--twitch", "alpha", "--event-year", "2024"}

	out, err := runCLI(t, args, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "100.00%")
	requireContains(t, out, "PASS (threshold 50%)")
	csv := readCSV(t, env.csvPath)
	requireContains(t, csv, "Name,GameName,TagLine,Twitch,Total,OnStream,OffStream,Unknown,PctTotal,Result\n")
	requireContains(t, csv, "Alpha#NA1,Alpha,NA1,alpha,1,1,0,0,100.00%,PASS\n")
	if _, err := os.Stat(filepath.Join(env.cacheDir, "puuid", "AMERICAS_Alpha_NA1.json")); err != nil {
		t.Fatalf("expected account lookup cached: %v", err)
	}
}

func TestCheckCommandFlagsOverrideConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	args := []string{"check", "-c", env.configPath, "--riot-id", "Beta#NA1", "--twitch", "beta",
		"--event-year", "2024", "--threshold", "0", "--no-cache", "--output-csv", ""}

	out, err := runCLI(t, args, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "PASS (threshold 0%)")
	if _, err := os.Stat(env.csvPath); !os.IsNotExist(err) {
		t.Fatalf("empty --output-csv should disable the csv, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(env.cacheDir, "puuid")); !os.IsNotExist(err) {
		t.Fatalf("--no-cache must not write the cache, stat err=%v", err)
	}
}

func TestCheckCommandErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing twitch", []string{"--riot-id", "Alpha#NA1"}, "--twitch is required"},
		{"bad riot id", []string{"--riot-id", "nohash", "--twitch", "alpha"}, "format error"},
		{"unknown account", []string{"--riot-id", "Ghost#NA1", "--twitch", "alpha", "--event-year", "2024"}, "not found"},
		{"inverted window", []string{"--riot-id", "Alpha#NA1", "--twitch", "alpha", "--start", "2000", "--end", "1000"}, "invalid window"},
		{"bad threshold", []string{"--riot-id", "Alpha#NA1", "--twitch", "alpha", "--threshold", "3"}, "analysis.threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"check", "-c", env.configPath}, tt.args...)
			_, err := runCLI(t, args, "")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestBatchCommandReadsStdinAndReportsSkips(t *testing.T) {
	env := setupCLITestEnv(t)
	input := `{"participants":[
		{"name":"Alpha#NA1","socials":[{"linkUri":"https://www.twitch.tv/alpha"}]},
		{"name":"Beta#NA1","socials":[{"linkUri":"https://twitch.tv/beta"}]},
		{"name":"Ghost#NA1","socials":[{"linkUri":"https://twitch.tv/ghost"}]},
		{"name":"Quiet#NA1","socials":[]}
	]}`

	out, err := runCLI(t, []string{"batch", "-c", env.configPath, "--event-year", "2024"}, input)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	requireContains(t, out, "no twitch link")
	requireContains(t, out, "1/2 PASS")

	csv := readCSV(t, env.csvPath)
	for _, line := range []string{
		"Alpha#NA1,Alpha,NA1,alpha,1,1,0,0,100.00%,PASS",
		"Beta#NA1,Beta,NA1,beta,1,0,1,0,0.00%,FAIL",
		"Ghost#NA1,Ghost,NA1,ghost,0,0,0,0,0.00%,SKIP",
		"Quiet#NA1,Quiet,NA1,,0,0,0,0,0.00%,SKIP",
	} {
		requireContains(t, csv, line+"\n")
	}
	if strings.Count(csv, "Name,GameName") != 1 {
		t.Fatalf("header should be written once:\n%s", csv)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{"config", "validate", "-c", env.configPath}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Config file:")
	requireContains(t, out, "[OK] "+env.configPath)
	requireContains(t, out, "CSV output:")

	out, err = runCLI(t, []string{"config", "init", "--stdout"}, "")
	if err != nil {
		t.Fatalf("config init --stdout: %v", err)
	}
	requireContains(t, out, "[riot]")
	requireContains(t, out, "[twitch]")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireContains(t, out, "streamcheck status")
	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}

func TestCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	args := []string{"check", "-c", env.configPath, "--riot-id", "Alpha#NA1", "--twitch", "alpha", "--event-year", "2024"}
	for i := 0; i < 2; i++ {
		if _, err := runCLI(t, args, ""); err != nil {
			t.Fatalf("check: %v", err)
		}
	}
	if got := env.backends.Hits("account"); got != 1 {
		t.Fatalf("second run should reuse the cached account lookup, got %d requests", got)
	}

	out, err := runCLI(t, []string{"cache", "path", "-c", env.configPath}, "")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	requireContains(t, out, env.cacheDir)

	out, err = runCLI(t, []string{"cache", "clear", "-c", env.configPath}, "")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared "+env.cacheDir)
	if _, err := os.Stat(filepath.Join(env.cacheDir, "puuid")); !os.IsNotExist(err) {
		t.Fatalf("expected cache namespaces removed, stat err=%v", err)
	}
}

func TestStatusCommandReportsReadiness(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{"status", "-c", env.configPath}, "")
	if err != nil {
		t.Fatalf("status returned error: %v\n%s", err, out)
	}
	requireContains(t, out, "== Readiness ==")
	requireContains(t, out, "Riot API:")
	requireContains(t, out, "[OK] API key accepted")
	requireContains(t, out, "[OK] App token issued")
	requireContains(t, out, "Threshold:")
	if strings.Contains(out, "[ERROR]") {
		t.Fatalf("expected no failing checks:\n%s", out)
	}
}

func TestStatusCommandFailsOnUnreachableBackend(t *testing.T) {
	backends := testsupport.NewBackends(t)
	cfg := testsupport.NewConfig(t, backends)
	cfg.Twitch.AuthURL = backends.URL + "/missing"
	env := setupCLITestEnv(t)
	env.configPath = testsupport.WriteConfig(t, cfg)

	out, err := runCLI(t, []string{"status", "-c", env.configPath}, "")
	if err == nil {
		t.Fatalf("expected status to fail:\n%s", out)
	}
	requireContains(t, out, "Twitch API:")
	requireContains(t, out, "[ERROR] unexpected status 404")
}
