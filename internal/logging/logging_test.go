package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatalf("expected no logger on a fresh context")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected the attached logger back")
	}

	if got := ContextWithLogger(ctx, nil); got != ctx {
		t.Fatalf("nil logger must leave the context untouched")
	}
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := ContextWithLogger(context.Background(), logger)

	ctx = With(ctx, "slot_id", "slot-9")
	FromContext(ctx).Info("checking")

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("unexpected log line %q: %v", line, err)
	}
	if record["slot_id"] != "slot-9" {
		t.Fatalf("expected slot_id attribute, got %v", record)
	}
}

func TestWithWithoutLoggerPassesThrough(t *testing.T) {
	ctx := context.Background()
	if got := With(ctx, "key", "value"); got != ctx {
		t.Fatalf("expected unchanged context")
	}
}
