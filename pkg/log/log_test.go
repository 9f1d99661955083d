package log

import (
	"strings"
	"testing"
)

func TestTestLogger_CapturesAtOrAboveLevel(t *testing.T) {
	logger, buffer := NewTestLogger(LevelInfo)

	logger.Debug("hidden", ColumnKey, "age")
	logger.Info("fitting", ColumnKey, "age")
	logger.Warn("degraded", RowsKey, 3)

	out := buffer.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !strings.Contains(out, "fitting") || !strings.Contains(out, "data.column=age") {
		t.Errorf("info record missing or unstructured: %q", out)
	}
	if !strings.Contains(out, "degraded") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestTestLogger_WithFields(t *testing.T) {
	logger, buffer := NewTestLogger(LevelDebug)

	named := logger.With(ComponentKey, "missingness")
	named.Info("predicting")

	if !strings.Contains(buffer.String(), "ml.component=missingness") {
		t.Errorf("pre-populated field not emitted: %q", buffer.String())
	}
}

func TestPairs_OddFieldCount(t *testing.T) {
	m := pairs([]any{"key", 1, "dangling"})
	if m["key"] != 1 {
		t.Errorf("expected key=1, got %v", m["key"])
	}
	if _, ok := m["!BADKEY"]; !ok {
		t.Error("dangling field should be recorded under !BADKEY")
	}
}

func TestGetLoggerWithName_DefaultProvider(t *testing.T) {
	logger := GetLoggerWithName("preprocessing")
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}
