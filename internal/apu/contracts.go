package apu

import "apucore/internal/spcfile"

// Sample is one stereo frame of signed 16-bit PCM.
type Sample struct {
	L int16
	R int16
}

// Bus is what an Smp implementation sees: every memory access and every
// consumed cycle is reported through it. Apu implements Bus; Smp
// implementations never store their own reference to it — it is threaded
// through Run on every call (spec.md §9, option (c)).
type Bus interface {
	ReadU8(address uint16) uint8
	WriteU8(address uint16, value uint8)
	CyclesCallback(n int)
}

// Smp is the collaborator contract for the CPU interpreter. It is treated as
// a black box by this module: no concrete decoder lives here.
type Smp interface {
	// Run executes against bus until at least cycleBudget master cycles
	// have been consumed, reporting cycles via bus.CyclesCallback after
	// each instruction.
	Run(bus Bus, cycleBudget int)

	PC() uint16
	SetPC(uint16)
	A() uint8
	SetA(uint8)
	X() uint8
	SetX(uint8)
	Y() uint8
	SetY(uint8)
	SP() uint8
	SetSP(uint8)
	SetPSW(uint8)
}

// Dsp is the collaborator contract for the sample-mixing engine. It needs no
// back-reference to the bus: its inputs are the 128-entry register file, a
// snapshot to restore from, and a cycle count; its output is a drainable
// FIFO of stereo samples.
type Dsp interface {
	GetRegister(addr uint8) uint8
	SetRegister(addr uint8, value uint8)

	// SetState restores DSP register file and voice state from a parsed
	// SPC snapshot.
	SetState(snapshot *spcfile.File)

	// CyclesCallback advances the mixer by n master cycles, appending any
	// samples that complete as a result to the output buffer.
	CyclesCallback(n int)

	// Flush finalizes any in-progress sample accumulator so BufferedSamples
	// reflects it immediately, without waiting for the next cycle batch.
	Flush()

	// BufferedSamples reports how many complete samples are queued.
	BufferedSamples() int

	// Drain removes up to len(dst) samples from the front of the output
	// queue into dst, in order, and returns how many were copied.
	Drain(dst []Sample) int

	EchoStartAddress() uint16
	EchoLength() int32
}
