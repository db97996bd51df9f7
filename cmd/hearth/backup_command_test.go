package main

import (
	"strings"
	"testing"
)

func TestBackupRequiresBucket(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"backup"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "backup.bucket is required") {
		t.Fatalf("expected missing bucket error, got %v", err)
	}
}

func TestBackupRejectsArguments(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"backup", "extra"}, env.configPath); err == nil {
		t.Fatal("expected argument rejection")
	}
}
