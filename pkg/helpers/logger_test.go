package helpers_test

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
)

func TestNewLogger_Levels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, helpers.NewLogger("app", "development", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, helpers.NewLogger("app", "production", "").GetLevel())
	assert.Equal(t, logrus.WarnLevel, helpers.NewLogger("app", "production", "warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, helpers.NewLogger("app", "production", "loud").GetLevel())

	_, isJSON := helpers.NewLogger("app", "production", "").Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}

func TestLogError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	helpers.LogError(logger, "boom", errors.New("disk full"), logrus.Fields{"key": "v"})
	helpers.LogInfo(logger, "fine", nil)

	require.Len(t, hook.Entries, 2)
	first := hook.Entries[0]
	assert.Equal(t, logrus.ErrorLevel, first.Level)
	assert.Equal(t, "v", first.Data["key"])
	assert.EqualError(t, first.Data[logrus.ErrorKey].(error), "disk full")
	assert.Equal(t, "fine", hook.LastEntry().Message)
}
