package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConstants(t *testing.T) {
	if DefaultHost != "0.0.0.0" {
		t.Errorf("DefaultHost = %v, want '0.0.0.0'", DefaultHost)
	}
	if DefaultPort != 8080 {
		t.Errorf("DefaultPort = %v, want 8080", DefaultPort)
	}
	if DefaultLogLevel != "INFO" {
		t.Errorf("DefaultLogLevel = %v, want 'INFO'", DefaultLogLevel)
	}
	if DefaultMaxSelectionLines != 500 {
		t.Errorf("DefaultMaxSelectionLines = %v, want 500", DefaultMaxSelectionLines)
	}
}

func TestJournalConfig(t *testing.T) {
	cfg := NewJournalConfig()

	if !cfg.Enabled() {
		t.Error("Enabled() should be true by default")
	}
	if cfg.Retention() != 0 {
		t.Errorf("Retention() = %v, want 0", cfg.Retention())
	}

	cfg = cfg.WithEnabled(false).WithRetention(48 * time.Hour)
	if cfg.Enabled() {
		t.Error("Enabled() should be false after WithEnabled(false)")
	}
	if cfg.Retention() != 48*time.Hour {
		t.Errorf("Retention() = %v, want 48h", cfg.Retention())
	}

	cfg = cfg.WithRetention(-time.Hour)
	if cfg.Retention() != 0 {
		t.Errorf("negative retention = %v, want 0", cfg.Retention())
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	if cfg.Host() != DefaultHost {
		t.Errorf("Host() = %v, want %v", cfg.Host(), DefaultHost)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %v, want %v", cfg.Port(), DefaultPort)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %v, want 0.0.0.0:8080", cfg.Addr())
	}
	if cfg.LogFormat() != LogFormatPretty {
		t.Errorf("LogFormat() = %v, want pretty", cfg.LogFormat())
	}
	if cfg.MaxSelectionLines() != DefaultMaxSelectionLines {
		t.Errorf("MaxSelectionLines() = %v, want %v", cfg.MaxSelectionLines(), DefaultMaxSelectionLines)
	}
	if cfg.StrictSyntax() {
		t.Error("StrictSyntax() should be false by default")
	}
	if cfg.AllowedRoot() != "" {
		t.Errorf("AllowedRoot() = %v, want empty", cfg.AllowedRoot())
	}
	if !cfg.Journal().Enabled() {
		t.Error("Journal().Enabled() should be true by default")
	}
	if !strings.HasSuffix(cfg.DBURL(), DefaultDBName) {
		t.Errorf("DBURL() = %v, want suffix %v", cfg.DBURL(), DefaultDBName)
	}
	if len(cfg.CORSOrigins()) != 0 || len(cfg.APIKeys()) != 0 {
		t.Error("CORSOrigins() and APIKeys() should be empty by default")
	}
}

func TestAppConfig_WithOptions(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithHost("127.0.0.1"),
		WithPort(9000),
		WithDBURL("postgres://u:p@db/linedit"),
		WithLogLevel("DEBUG"),
		WithLogFormat(LogFormatJSON),
		WithMaxSelectionLines(25),
		WithStrictSyntax(true),
		WithValidatorsFile("/etc/validators.yaml"),
		WithAllowedRoot("/work"),
		WithJournalConfig(NewJournalConfig().WithEnabled(false)),
	)

	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %v", cfg.Addr())
	}
	if cfg.DBURL() != "postgres://u:p@db/linedit" {
		t.Errorf("DBURL() = %v", cfg.DBURL())
	}
	if cfg.LogLevel() != "DEBUG" || cfg.LogFormat() != LogFormatJSON {
		t.Errorf("log = %v/%v", cfg.LogLevel(), cfg.LogFormat())
	}
	if cfg.MaxSelectionLines() != 25 {
		t.Errorf("MaxSelectionLines() = %v, want 25", cfg.MaxSelectionLines())
	}
	if !cfg.StrictSyntax() {
		t.Error("StrictSyntax() should be true")
	}
	if cfg.ValidatorsFile() != "/etc/validators.yaml" {
		t.Errorf("ValidatorsFile() = %v", cfg.ValidatorsFile())
	}
	if cfg.AllowedRoot() != "/work" {
		t.Errorf("AllowedRoot() = %v", cfg.AllowedRoot())
	}
	if cfg.Journal().Enabled() {
		t.Error("Journal().Enabled() should be false")
	}
}

func TestAppConfig_IgnoresNonPositiveSelectionCap(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithMaxSelectionLines(0), WithMaxSelectionLines(-3))
	if cfg.MaxSelectionLines() != DefaultMaxSelectionLines {
		t.Errorf("MaxSelectionLines() = %v, want %v", cfg.MaxSelectionLines(), DefaultMaxSelectionLines)
	}
}

func TestAppConfig_ListsAreCopied(t *testing.T) {
	keys := []string{"a", "b"}
	cfg := NewAppConfigWithOptions(WithAPIKeys(keys), WithCORSOrigins(keys))

	keys[0] = "mutated"
	if cfg.APIKeys()[0] != "a" || cfg.CORSOrigins()[0] != "a" {
		t.Error("options should copy their input")
	}

	got := cfg.APIKeys()
	got[1] = "mutated"
	if cfg.APIKeys()[1] != "b" {
		t.Error("APIKeys() should return a copy")
	}
}

func TestAppConfig_DataDirUpdatesDBURL(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDataDir("/var/lib/linedit"))
	want := "sqlite:///" + filepath.Join("/var/lib/linedit", DefaultDBName)
	if cfg.DBURL() != want {
		t.Errorf("DBURL() = %v, want %v", cfg.DBURL(), want)
	}

	custom := NewAppConfigWithOptions(WithDBURL("postgres://db/x"), WithDataDir("/other"))
	if custom.DBURL() != "postgres://db/x" {
		t.Errorf("explicit DBURL should survive WithDataDir, got %v", custom.DBURL())
	}
}

func TestAppConfig_Apply(t *testing.T) {
	base := NewAppConfig()
	next := base.Apply(WithPort(1234))
	if base.Port() != DefaultPort {
		t.Error("Apply should not modify the receiver")
	}
	if next.Port() != 1234 {
		t.Errorf("Port() = %v, want 1234", next.Port())
	}
}

func TestAppConfig_MaskedDBURL(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDBURL("postgres://user:secret@db/linedit"))
	for _, attr := range cfg.LogAttrs() {
		if attr.Key == "db_url" && strings.Contains(attr.Value.String(), "secret") {
			t.Errorf("db_url should be masked, got %v", attr.Value)
		}
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , , b ", []string{"a", "b"}},
	}
	for _, tc := range tests {
		got := ParseList(tc.input)
		if len(got) != len(tc.expected) {
			t.Errorf("ParseList(%q) = %v, want %v", tc.input, got, tc.expected)
			continue
		}
		for i := range got {
			if got[i] != tc.expected[i] {
				t.Errorf("ParseList(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		}
	}
}
