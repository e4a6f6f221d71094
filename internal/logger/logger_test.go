package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewWritesDailyFile(t *testing.T) {
	root := t.TempDir()
	l, err := New(root, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Infow("hello", "k", "v")
	_ = l.Sync()

	name := filepath.Join(root, "logs", time.Now().Format("2006-01-02")+".log")
	if _, err := os.Stat(name); err != nil {
		t.Fatalf("log file missing: %v", err)
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	if FromContext(context.Background()) != zap.S() {
		t.Errorf("expected global logger")
	}
	l := zap.NewNop().Sugar()
	if FromContext(WithContext(context.Background(), l)) != l {
		t.Errorf("expected context logger")
	}
}
