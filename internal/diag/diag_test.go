package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{nil, CodeUnknown},
		{errors.New("boom"), CodeUnknown},
		{fmt.Errorf("%w: phrase %q", ErrBadConfig, "x"), CodeBadConfig},
		{fmt.Errorf("%w: unknown key", ErrBadOption), CodeBadOption},
		{ErrInputTooLong, CodeInputTooLong},
		{fmt.Errorf("analyze: %w", ErrNotInitialized), CodeNotInitialized},
		{ErrInternal, CodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "Classify(%v)", tt.err)
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("TRACE")
	require.NoError(t, err)
	assert.Equal(t, zapcore.Level(-TRACE), lvl)

	lvl, err = parseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.V(DEBUG).Enabled())
	assert.False(t, logger.V(TRACE).Enabled())

	_, err = NewLogger("nope")
	assert.Error(t, err)
}
