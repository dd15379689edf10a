package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI exercises run() up to the argument-validation boundary; cases
// that would reach AWS are not covered here.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_Version(t *testing.T) {
	stdout, _, err := runCLI(t, "-version")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(stdout, "lokal") {
		t.Errorf("stdout = %q, want the program name", stdout)
	}
}

func TestRun_NoCommand(t *testing.T) {
	_, _, err := runCLI(t)
	if err == nil || !strings.Contains(err.Error(), "command is required") {
		t.Errorf("err = %v, want a missing-command error", err)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	_, _, err := runCLI(t, "-table", "t", "frobnicate")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("err = %v, want an unknown-command error", err)
	}
}

func TestRun_TableRequired(t *testing.T) {
	t.Setenv("LOKAL_TABLE", "")
	_, _, err := runCLI(t, "stats")
	if err == nil || !strings.Contains(err.Error(), "--table") {
		t.Errorf("err = %v, want a missing-table error", err)
	}
}

func TestRun_LocaleRequired(t *testing.T) {
	for _, command := range []string{"import", "export", "warm", "resolve"} {
		_, _, err := runCLI(t, "-table", "t", command)
		if err == nil || !strings.Contains(err.Error(), "--locale") {
			t.Errorf("%s: err = %v, want a missing-locale error", command, err)
		}
	}
}

func TestRun_ImportRequiresFile(t *testing.T) {
	_, _, err := runCLI(t, "-table", "t", "-locale", "en", "import")
	if err == nil || !strings.Contains(err.Error(), "--file") {
		t.Errorf("err = %v, want a missing-file error", err)
	}
}

func TestRun_ResolveRequiresKey(t *testing.T) {
	_, _, err := runCLI(t, "-table", "t", "-locale", "en", "resolve")
	if err == nil || !strings.Contains(err.Error(), "--key") {
		t.Errorf("err = %v, want a missing-key error", err)
	}
}

func TestReadFlatMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translations.json")
	if err := os.WriteFile(path, []byte(`{"greeting.hello": "Hello", "cart.empty": "Your cart is empty"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	flat, err := readFlatMap(path)
	if err != nil {
		t.Fatalf("readFlatMap failed: %v", err)
	}
	if len(flat) != 2 || flat["greeting.hello"] != "Hello" {
		t.Errorf("flat = %v", flat)
	}
}

func TestReadFlatMap_Errors(t *testing.T) {
	if _, err := readFlatMap(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("absent file should be an error")
	}

	path := filepath.Join(t.TempDir(), "nested.json")
	if err := os.WriteFile(path, []byte(`{"a": {"b": "c"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readFlatMap(path); err == nil {
		t.Error("a nested object is not a flat map and should be rejected")
	}
}
