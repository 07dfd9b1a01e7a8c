package config

import (
	"flag"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"BACKOFFICE_API_URL", "BACKOFFICE_DB", "BACKOFFICE_RATE", "BACKOFFICE_PAGE_SIZES"} {
		t.Setenv(k, "")
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != defaultAPIURL || cfg.DBPath != defaultDBPath {
		t.Errorf("Load() = %+v", cfg)
	}
	if !slices.Equal(cfg.PageSizes, []int{10, 20, 50}) {
		t.Errorf("PageSizes = %v", cfg.PageSizes)
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("BACKOFFICE_API_URL", "")
	t.Setenv("BACKOFFICE_RATE", "")
	t.Setenv("BACKOFFICE_TIMEOUT", "")
	os.Unsetenv("BACKOFFICE_API_URL")
	os.Unsetenv("BACKOFFICE_RATE")
	os.Unsetenv("BACKOFFICE_TIMEOUT")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "BACKOFFICE_API_URL=https://api.example.in/v1\nBACKOFFICE_RATE=2.5\nBACKOFFICE_TIMEOUT=5s\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != "https://api.example.in/v1" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.RateLimit != 2.5 {
		t.Errorf("RateLimit = %v", cfg.RateLimit)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("BACKOFFICE_RATE", "fast")
	if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Error("Load() accepted BACKOFFICE_RATE=fast")
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("BACKOFFICE_DB", "from-env.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.env"))
	if err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse([]string{"-db", "from-flag.db", "-page-sizes", "25, 100"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.DBPath != "from-flag.db" {
		t.Errorf("DBPath = %q, want from-flag.db", cfg.DBPath)
	}
	if !slices.Equal(cfg.PageSizes, []int{25, 100}) {
		t.Errorf("PageSizes = %v", cfg.PageSizes)
	}
}

func TestParsePageSizes(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"50", []int{50}, false},
		{"10,20,50", []int{10, 20, 50}, false},
		{"10,,20", []int{10, 20}, false},
		{"0", nil, true},
		{"ten", nil, true},
		{"", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePageSizes(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePageSizes(%q) error = %v", tt.in, err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParsePageSizes(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
