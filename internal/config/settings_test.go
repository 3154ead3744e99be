package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDir, EnvLogLevel, EnvDestutterMax, EnvHTMLEntities, EnvHistoryLimit} {
		t.Setenv(k, "")
	}
}

func TestNewDefaults(t *testing.T) {
	clearEnv(t)

	s, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Dir != "./phraser_data" {
		t.Errorf("expected default dir, got %q", s.Dir)
	}
	if s.LogLevel != "info" {
		t.Errorf("expected log level 'info', got %q", s.LogLevel)
	}
	if s.HistoryLimit != 1000 {
		t.Errorf("expected history limit 1000, got %d", s.HistoryLimit)
	}
	if s.Analysis.DestutterMaxConsecutive != 3 || !s.Analysis.ReplaceHTMLEntities {
		t.Errorf("unexpected analysis defaults: %+v", s.Analysis)
	}
}

func TestNewFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDir, "/tmp/phr")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvDestutterMax, "0")
	t.Setenv(EnvHTMLEntities, "false")
	t.Setenv(EnvHistoryLimit, "5")

	s, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Dir != "/tmp/phr" || s.LogLevel != "debug" || s.HistoryLimit != 5 {
		t.Errorf("unexpected settings: %+v", s)
	}
	if s.Analysis.DestutterMaxConsecutive != 0 || s.Analysis.ReplaceHTMLEntities {
		t.Errorf("unexpected analysis options: %+v", s.Analysis)
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{EnvDestutterMax, "many"},
		{EnvDestutterMax, "-1"},
		{EnvHTMLEntities, "maybe"},
		{EnvHistoryLimit, "-2"},
		{EnvLogLevel, "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := New(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestMustNewPanics(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "loud")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid log level")
		}
	}()
	MustNew()
}
