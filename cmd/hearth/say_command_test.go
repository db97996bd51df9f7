package main

import (
	"strings"
	"testing"

	"hearth/internal/testsupport"
)

func TestSayRequiresSpeechConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"say", "ご飯ですよ"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "speech.device_addr is required") {
		t.Fatalf("expected missing device error, got %v", err)
	}
}

func TestSayDiscordRequiresWebhook(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCastDevice("192.0.2.10", "http://media.local"))

	_, _, err := runCLI(t, []string{"say", "--discord", "hello"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "notifications.webhook_url is required") {
		t.Fatalf("expected missing webhook error, got %v", err)
	}
}

func TestSayRecordsFailedRun(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"say", "good", "morning"}, env.configPath); err == nil {
		t.Fatal("expected say to fail without a cast device")
	}

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "say")
	requireContains(t, out, "failed")
	requireContains(t, out, "speech.device_addr is required")
}
