package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporterFuncReceivesError(t *testing.T) {
	var got []string
	r := ReporterFunc(func(err error, msg string, _ map[string]interface{}) {
		got = append(got, msg+": "+err.Error())
	})

	r.Report(errors.New("pq: connection refused"), "request failed", nil)

	assert.Equal(t, []string{"request failed: pq: connection refused"}, got)
}

func TestNewReporterWithoutToken(t *testing.T) {
	r := NewReporter("", "test", "localhost")
	assert.IsType(t, nopReporter{}, r)
	assert.NotPanics(t, func() { r.Report(errors.New("boom"), "ignored", nil) })
}

func TestRollbarExtras(t *testing.T) {
	extras := map[string]interface{}{"path": "/trash"}
	out := rollbarExtras("request failed", extras)

	assert.Equal(t, map[string]interface{}{"path": "/trash", "message": "request failed"}, out)
	assert.NotContains(t, extras, "message")
}
