package apu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apucore/internal/apu"
	"apucore/internal/config"
)

func TestSnapshotRestoreRoundTripsBusOwnedState(t *testing.T) {
	a, _, _ := newTestApu()

	a.WriteU8(0x0200, 0x77)
	a.WriteU8(0x00fa, 0x03)
	a.WriteU8(0x00f1, 0x80|0x01)
	a.CyclesCallback(300)

	data, err := a.Snapshot()
	require.NoError(t, err)

	b, _, _ := newTestApu()
	require.NoError(t, b.Restore(data))

	assert.Equal(t, a.ReadU8(0x0200), b.ReadU8(0x0200))
	assert.Equal(t, a.ReadU8(0xffc0), b.ReadU8(0xffc0), "IPL ROM enable state should carry over")
}

func TestRestoreRejectsTruncatedStream(t *testing.T) {
	a, _, _ := newTestApu()
	data, err := a.Snapshot()
	require.NoError(t, err)

	corrupted := append([]byte(nil), data...)
	// Exercises the decode-error path by truncating the gob stream.
	if len(corrupted) > 4 {
		corrupted = corrupted[:len(corrupted)/2]
	}

	b, _, _ := newTestApu()
	assert.Error(t, b.Restore(corrupted))
}

func TestRestoreDoesNotTouchSmpOrDsp(t *testing.T) {
	a, _, _ := newTestApu()
	data, err := a.Snapshot()
	require.NoError(t, err)

	smp := &fakeSmp{}
	dsp := &fakeDsp{}
	b := apu.New(config.Default(), smp, dsp, nil)
	require.NoError(t, b.Restore(data))

	assert.Equal(t, uint16(0), smp.PC(), "Restore is scoped to bus-owned state only")
	assert.Nil(t, dsp.restoredSnapshot, "Restore is scoped to bus-owned state only")
}
