package common

import "testing"

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogDebug},
		{"info", LogInfo},
		{"warn", LogWarn},
		{"warning", LogWarn},
		{"error", LogError},
		{"fatal", LogFatal},
		{" Error ", LogError},
		{"", LogInfo},
		{"verbose", LogInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestSetGlobalLogLevel(t *testing.T) {
	defer SetGlobalLogLevel(LogInfo)

	SetGlobalLogLevel(LogError)
	for _, logger := range []*SafeLogger{EngineLogger, ServerLogger, CLILogger} {
		if logger.level != LogError {
			t.Errorf("Expected logger %s at error level, got %v", logger.prefix, logger.level)
		}
	}
}
