package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf)

	log.WithField("table", "apt_raw").Info("batch loaded")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}

	if entry["message"] != "batch loaded" {
		t.Errorf("message = %v, want 'batch loaded'", entry["message"])
	}
	if entry["table"] != "apt_raw" {
		t.Errorf("table = %v, want apt_raw", entry["table"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf)

	log.WithError(errors.New("no such table")).Error("load failed")

	if !strings.Contains(buf.String(), "no such table") {
		t.Errorf("expected error field in output, got %s", buf.String())
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf)

	zlog := log.Component("analyzer.normalizer")
	zlog.Info().Msg("start")

	if !strings.Contains(buf.String(), "analyzer.normalizer") {
		t.Errorf("expected component field in output, got %s", buf.String())
	}
}
