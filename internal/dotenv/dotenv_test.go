package dotenv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_MissingFileIsNoop(t *testing.T) {
	t.Parallel()
	if err := LoadFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("LoadFile missing file error: %v", err)
	}
}

func TestLoadFile_LoadsValuesAndPreservesExisting(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	content := "" +
		"# telephony credentials\n" +
		"TWILIO_NUMBER=+15550001111\n" +
		"VIDEOSDK_AUTH_TOKEN=\"tok en\"\n" +
		"export GOOGLE_API_KEY=gk\n" +
		"TWILIO_SID=from_file\n" +
		"not-a-pair\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("TWILIO_SID", "already_set")

	if err := LoadFile(envPath); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	if got := os.Getenv("TWILIO_NUMBER"); got != "+15550001111" {
		t.Fatalf("TWILIO_NUMBER=%q, want %q", got, "+15550001111")
	}
	if got := os.Getenv("VIDEOSDK_AUTH_TOKEN"); got != "tok en" {
		t.Fatalf("VIDEOSDK_AUTH_TOKEN=%q, want %q", got, "tok en")
	}
	if got := os.Getenv("GOOGLE_API_KEY"); got != "gk" {
		t.Fatalf("GOOGLE_API_KEY=%q, want %q", got, "gk")
	}
	if got := os.Getenv("TWILIO_SID"); got != "already_set" {
		t.Fatalf("TWILIO_SID=%q, want existing value preserved", got)
	}
}

func TestParseLine(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw      string
		key, val string
		ok       bool
	}{
		{"A=1", "A", "1", true},
		{"  A = 1 ", "A", "1", true},
		{"export B=two", "B", "two", true},
		{`C="quoted"`, "C", "quoted", true},
		{"C='quoted'", "C", "quoted", true},
		{"# comment", "", "", false},
		{"", "", "", false},
		{"=nokey", "", "", false},
	}
	for _, tc := range cases {
		key, val, ok := parseLine(tc.raw)
		if key != tc.key || val != tc.val || ok != tc.ok {
			t.Errorf("parseLine(%q) = (%q, %q, %v), want (%q, %q, %v)", tc.raw, key, val, ok, tc.key, tc.val, tc.ok)
		}
	}
}
