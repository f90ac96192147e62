package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(&buf, "json"); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}

	Get().Info(context.Background(), "run finished",
		String("run_id", "r1"),
		Int("groups", 6),
		Bool("degenerate", false),
		Duration("took", 3*time.Millisecond),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("record is not json: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "run finished" || rec["run_id"] != "r1" {
		t.Errorf("unexpected record: %v", rec)
	}
	if _, ok := rec["source"]; !ok {
		t.Errorf("record has no source: %v", rec)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWith(&buf, "text"); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	ctx := context.Background()

	Get().Debug(ctx, "hidden")
	if buf.Len() != 0 {
		t.Errorf("debug written at info level: %q", buf.String())
	}

	if err := SetLevelString("debug"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Named("rounds").Debug(ctx, "visible", Int64("seed", 42))
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug not written after SetLevelString: %q", buf.String())
	}

	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := InitWith(&buf, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
