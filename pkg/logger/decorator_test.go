package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer, extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(buf, nil)
	return slog.New(NewLogHandlerDecorator(h, extractors...))
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestOrderIDExtractor(t *testing.T) {
	t.Parallel()

	t.Run("injects order id from context", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := jsonLogger(&buf, OrderIDExtractor)

		ctx := WithOrderID(context.Background(), "ORD-1042")
		log.InfoContext(ctx, "sending invoice email")

		rec := lastRecord(t, &buf)
		assert.Equal(t, "ORD-1042", rec["order_id"])
		assert.Equal(t, "sending invoice email", rec["msg"])
	})

	t.Run("absent without context value", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := jsonLogger(&buf, OrderIDExtractor)

		log.InfoContext(context.Background(), "no order")
		rec := lastRecord(t, &buf)
		assert.NotContains(t, rec, "order_id")
	})
}

func TestDecorator_NilExtractorsFiltered(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := jsonLogger(&buf, nil, OrderIDExtractor, nil)

	ctx := WithOrderID(context.Background(), "ORD-7")
	assert.NotPanics(t, func() {
		log.InfoContext(ctx, "still works")
	})
	assert.Equal(t, "ORD-7", lastRecord(t, &buf)["order_id"])
}

func TestDecorator_WithAttrsKeepsExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := jsonLogger(&buf, OrderIDExtractor).With(slog.String("component", "mailer"))

	ctx := WithOrderID(context.Background(), "ORD-9")
	log.InfoContext(ctx, "hello")

	rec := lastRecord(t, &buf)
	assert.Equal(t, "mailer", rec["component"])
	assert.Equal(t, "ORD-9", rec["order_id"])
}

func TestNewNope_Discards(t *testing.T) {
	t.Parallel()

	log := NewNope()
	assert.NotPanics(t, func() {
		log.Info("discarded", slog.String("k", "v"))
	})
}
