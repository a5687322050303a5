package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)
	logger.SetLevel(LevelInfo)

	// Debug should be filtered
	logger.Debug("debug message")
	if buf.Len() > 0 {
		t.Error("debug message should be filtered at INFO level")
	}

	// Info should pass
	logger.Info("info message")
	if buf.Len() == 0 {
		t.Error("info message should be logged")
	}

	output := buf.String()
	if !strings.Contains(output, "INFO") {
		t.Error("log should contain INFO level")
	}
	if !strings.Contains(output, "info message") {
		t.Error("log should contain the message")
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New().WithComponent("registry")
	logger.SetOutput(&buf)

	logger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "[registry]") {
		t.Errorf("expected component 'registry' in log, got: %s", output)
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.Info("publish", map[string]interface{}{"topic": "tasks/ui"})

	output := buf.String()
	if !strings.Contains(output, "topic=tasks/ui") {
		t.Errorf("expected field in log, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"info", LevelInfo},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogger_TransportHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New().WithComponent("ws-registry")
	logger.SetOutput(&buf)
	logger.SetLevel(LevelDebug)

	logger.SubscribeAdded("tasks/ui")
	logger.MessageRelayed("tasks/ui", 42)
	logger.PeerConnected("ws://localhost:9000")
	logger.PeerDisconnected("ws://localhost:9000", errors.New("broken pipe"))
	logger.RelayDropped("tasks/ui", errors.New("peer gone"))

	output := buf.String()
	for _, want := range []string{"subscribe", "relay", "peer_connected", "peer_disconnected", "relay_dropped", "broken pipe"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}
