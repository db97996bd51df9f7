package main

import (
	"strings"
	"testing"
)

func TestImportFlagValidation(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"import", "--file", "2026-01.csv"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--service is required with --file") {
		t.Fatalf("expected missing --service error, got %v", err)
	}

	_, _, err = runCLI(t, []string{"import", "--service", "vpass"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--service only applies with --file") {
		t.Fatalf("expected stray --service error, got %v", err)
	}
}

func TestImportRequiresDatabaseConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.MySQL.Password = ""
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"import"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "mysql.password is required") {
		t.Fatalf("expected missing password error, got %v", err)
	}
}
