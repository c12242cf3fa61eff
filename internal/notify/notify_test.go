package notify

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_KeepsMostRecent(t *testing.T) {
	r := NewRecorder(2)
	r.Notify(LevelInfo, "one")
	r.Notify(LevelWarning, "two")
	r.Notify(LevelError, "three")

	recent := r.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Message)
	assert.Equal(t, LevelError, recent[1].Level)
}

func TestRecorder_Drain(t *testing.T) {
	r := NewRecorder(5)
	assert.Empty(t, r.Drain())

	r.Notify(LevelInfo, "hello")
	drained := r.Drain()
	require.Len(t, drained, 1)
	assert.Equal(t, "hello", drained[0].Message)
	assert.Empty(t, r.Recent())
}

func TestNewRecorder_MinimumCapacity(t *testing.T) {
	r := NewRecorder(0)
	r.Notify(LevelInfo, "a")
	r.Notify(LevelInfo, "b")
	require.Len(t, r.Recent(), 1)
	assert.Equal(t, "b", r.Recent()[0].Message)
}

func TestLogNotifier_Levels(t *testing.T) {
	log, hook := test.NewNullLogger()
	n := LogNotifier{Entry: logrus.NewEntry(log)}

	n.Notify(LevelError, "boom")
	n.Notify(LevelWarning, "careful")
	n.Notify(LevelInfo, "fyi")

	require.Len(t, hook.Entries, 3)
	assert.Equal(t, logrus.ErrorLevel, hook.Entries[0].Level)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[1].Level)
	assert.Equal(t, logrus.InfoLevel, hook.Entries[2].Level)
}

func TestMulti_FansOut(t *testing.T) {
	a := NewRecorder(3)
	b := NewRecorder(3)
	Multi{a, nil, b, Nop{}}.Notify(LevelInfo, "x")

	assert.Len(t, a.Recent(), 1)
	assert.Len(t, b.Recent(), 1)
}
