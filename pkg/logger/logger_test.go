package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewWithCloudRunHandler(t *testing.T) {
	log := New("warn", NewCloudRunHandler)
	if log == nil {
		t.Fatal("New returned nil")
	}
	if log.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	if !log.Enabled(context.Background(), slog.LevelError) {
		t.Error("error disabled at warn level")
	}
}

func TestGetSlogLevelDefaultsToInfo(t *testing.T) {
	if got := getSlogLevel("verbose"); got != slog.LevelInfo {
		t.Errorf("level = %v, want info", got)
	}
	if got := getSlogLevel("DEBUG"); got != slog.LevelDebug {
		t.Errorf("level = %v, want debug", got)
	}
}
