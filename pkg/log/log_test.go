package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCtxReturnsStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf))

	Ctx(ctx).Info().Str(FieldUserID, "u1").Msg("stored logger used")

	assert.Contains(t, buf.String(), `"user_id":"u1"`)
	assert.Contains(t, buf.String(), "stored logger used")
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	logger := Ctx(context.Background())
	assert.NotNil(t, logger)

	// Level methods chain directly on the returned logger.
	logger.Debug().Str(FieldConnID, "conn-1").Msg("global fallback")
	L().Debug().Msg("global chain")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}
