package apu

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"apucore/internal/timer"
)

const snapshotVersion = 1

func init() {
	gob.Register(timer.State{})
	gob.Register(snapshot{})
}

// snapshot is the gob wire format for Apu.Snapshot. It covers only what Apu
// itself owns: RAM, the boot ROM image, the I/O latches, and the three
// timers. Smp and Dsp state is out of scope, the same way it is out of
// scope for FromSnapshot's SPC-file path — each collaborator owns its own
// save/restore.
type snapshot struct {
	Version       int
	RAM           [0x10000]byte
	BootROM       [64]byte
	IplROMEnabled bool
	DspRegAddress uint8
	Timers        [3]timer.State
}

// Snapshot serializes the bus-owned state (RAM, boot ROM image, I/O
// latches, timers) to a self-contained byte slice.
func (a *Apu) Snapshot() ([]byte, error) {
	s := snapshot{
		Version:       snapshotVersion,
		RAM:           a.ram,
		BootROM:       a.bootROM,
		IplROMEnabled: a.iplROMEnabled,
		DspRegAddress: a.dspRegAddress,
	}
	for i, t := range a.timers {
		s.Timers[i] = t.State()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("apu: failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore overwrites the bus-owned state from data produced by Snapshot.
// Smp and Dsp are left untouched; their state is not part of the snapshot,
// and the Smp and Dsp contracts have no save/restore methods of their own.
func (a *Apu) Restore(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("apu: failed to decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return fmt.Errorf("apu: unsupported snapshot version %d (expected %d)", s.Version, snapshotVersion)
	}

	a.ram = s.RAM
	a.bootROM = s.BootROM
	a.iplROMEnabled = s.IplROMEnabled
	a.dspRegAddress = s.DspRegAddress
	for i, ts := range s.Timers {
		a.timers[i].Restore(ts)
	}

	return nil
}
