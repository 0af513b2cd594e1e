// Package apu implements the APU bus: the memory map that unifies RAM, the
// memory-mapped I/O registers, the IPL boot ROM, the DSP register window and
// the three timers, plus the render loop and snapshot-restore logic that sit
// on top of it. The Smp instruction decoder and the Dsp mixer are supplied
// by the caller through the Smp and Dsp interfaces (contracts.go) — this
// package only defines the bus they run against.
package apu

import (
	"apucore/internal/config"
	"apucore/internal/debug"
	"apucore/internal/iplrom"
	"apucore/internal/spcfile"
	"apucore/internal/timer"
)

// Apu owns every byte of mutable state on the bus: RAM, the IPL ROM image,
// the three timers, the DSP register address latch, and the Smp/Dsp
// collaborators. Smp and Dsp never outlive it and never hold their own
// reference back to it (spec.md §9 option (c)); Apu calls into them
// directly and implements Bus for Smp.Run to call back through.
type Apu struct {
	ram     [0x10000]byte
	bootROM [iplrom.Len]byte

	timers [3]*timer.Timer

	iplROMEnabled bool
	dspRegAddress uint8

	smp Smp
	dsp Dsp

	cfg    *config.Config
	logger *debug.Logger
}

// New constructs an Apu at cold reset: zeroed RAM, the default IPL ROM, IPL
// ROM reads enabled or not per cfg.IPLROMEnabledAtReset, and the three
// timers built from cfg's resolutions. A nil cfg uses the reference
// hardware's defaults (IPL ROM reads enabled).
func New(cfg *config.Config, smp Smp, dsp Dsp, logger *debug.Logger) *Apu {
	if cfg == nil {
		cfg = config.Default()
	}

	a := &Apu{
		bootROM:       iplrom.Default,
		iplROMEnabled: cfg.IPLROMEnabledAtReset,
		smp:           smp,
		dsp:           dsp,
		cfg:           cfg,
		logger:        logger,
	}

	for i, resolution := range cfg.TimerResolutions {
		t := timer.New(resolution)
		t.SetLogger(logger)
		a.timers[i] = t
	}

	return a
}

// FromSnapshot builds an Apu from cold reset, then overlays the parsed SPC
// snapshot: RAM, boot ROM image, Smp registers, Dsp state, timer targets,
// and the control-register and DSP-address latches (spec.md §4.2).
func FromSnapshot(snapshot *spcfile.File, cfg *config.Config, smp Smp, dsp Dsp, logger *debug.Logger) *Apu {
	a := New(cfg, smp, dsp, logger)

	a.ram = snapshot.RAM
	a.bootROM = snapshot.BootROM

	smp.SetPC(snapshot.PC)
	smp.SetA(snapshot.A)
	smp.SetX(snapshot.X)
	smp.SetY(snapshot.Y)
	smp.SetPSW(snapshot.PSW)
	smp.SetSP(snapshot.SP)

	dsp.SetState(snapshot)

	for i, t := range a.timers {
		t.SetTarget(a.ram[0xfa+i])
	}

	a.setControlReg(a.ram[0xf1])
	a.dspRegAddress = a.ram[0xf2]

	return a
}

// ReadU8 decodes a CPU-visible read at address (spec.md §4.2).
func (a *Apu) ReadU8(address uint16) uint8 {
	switch {
	case address == 0x00f0 || address == 0x00f1:
		return 0 // test/control registers read as zero

	case address == 0x00f2:
		return a.dspRegAddress

	case address == 0x00f3:
		return a.dsp.GetRegister(a.dspRegAddress)

	case address >= 0x00fa && address <= 0x00fc:
		return 0 // timer targets are write-only

	case address == 0x00fd:
		return a.timers[0].ReadCounter()

	case address == 0x00fe:
		return a.timers[1].ReadCounter()

	case address == 0x00ff:
		return a.timers[2].ReadCounter()

	case address >= 0xffc0 && a.iplROMEnabled:
		return a.bootROM[address-0xffc0]

	default:
		return a.ram[address]
	}
}

// WriteU8 decodes a CPU-visible write at address (spec.md §4.2).
func (a *Apu) WriteU8(address uint16, value uint8) {
	switch {
	case address == 0x00f0:
		a.setTestReg(value)

	case address == 0x00f1:
		a.setControlReg(value)

	case address == 0x00f2:
		a.dspRegAddress = value

	case address == 0x00f3:
		a.dsp.SetRegister(a.dspRegAddress, value)

	case address == 0x00fa:
		a.timers[0].SetTarget(value)

	case address == 0x00fb:
		a.timers[1].SetTarget(value)

	case address == 0x00fc:
		a.timers[2].SetTarget(value)

	case address >= 0x00fd && address <= 0x00ff:
		// ignored

	default:
		a.ram[address] = value
	}
}

// setControlReg applies the 0xF1 write semantics: IPL ROM enable, the two
// mailbox-clear bits, and the three timer running flags.
func (a *Apu) setControlReg(value uint8) {
	if a.logger != nil {
		a.logger.Logf(debug.ComponentBus, debug.LogLevelDebug, "control register write: 0x%02x", value)
	}

	wasEnabled := a.iplROMEnabled
	a.iplROMEnabled = value&0x80 != 0

	if value&0x20 != 0 {
		a.WriteU8(0xf6, 0x00)
		a.WriteU8(0xf7, 0x00)
	}
	if value&0x10 != 0 {
		a.WriteU8(0xf4, 0x00)
		a.WriteU8(0xf5, 0x00)
	}

	a.timers[0].SetRunning(value&0x01 != 0)
	a.timers[1].SetRunning(value&0x02 != 0)
	a.timers[2].SetRunning(value&0x04 != 0)

	if a.logger != nil && wasEnabled != a.iplROMEnabled {
		a.logger.Logf(debug.ComponentBus, debug.LogLevelDebug, "IPL ROM enabled=%v (control reg write 0x%02x)", a.iplROMEnabled, value)
	}
}

// setTestReg handles the reserved 0xF0 register. The hardware's test mode is
// not emulated; a correct snapshot never writes it, so this is logged as a
// diagnostic rather than treated as a failure (spec.md §7).
func (a *Apu) setTestReg(value uint8) {
	if a.logger != nil {
		a.logger.Logf(debug.ComponentBus, debug.LogLevelWarning, "test register (0xF0) write ignored: value=0x%02x", value)
	}
}

// CyclesCallback fans n master cycles out to the Dsp, then to the three
// timers, in that fixed order.
func (a *Apu) CyclesCallback(n int) {
	a.dsp.CyclesCallback(n)
	for _, t := range a.timers {
		t.CyclesCallback(n)
	}
}

// Render fills buf with exactly len(buf) stereo samples, running the Smp in
// cycle-budget batches of len(buf) * MasterCyclesPerSample master cycles
// until the Dsp has buffered enough output, flushing after each batch so a
// partially-mixed sample is not left stranded.
func (a *Apu) Render(buf []Sample) {
	for a.dsp.BufferedSamples() < len(buf) {
		a.smp.Run(a, len(buf)*a.cfg.MasterCyclesPerSample)
		a.dsp.Flush()
	}
	a.dsp.Drain(buf)
}

// ClearEchoBuffer fills the Dsp's configured echo region in RAM with 0xFF,
// clamped to the end of the address space. Used to neutralize leftover echo
// data immediately after a snapshot restore.
func (a *Apu) ClearEchoBuffer() {
	start := int32(a.dsp.EchoStartAddress())
	end := start + a.dsp.EchoLength()
	if end > 0x10000 {
		end = 0x10000
	}
	for i := start; i < end; i++ {
		a.ram[i] = 0xff
	}
}

// Diagnostics returns the buffered log entries recorded so far, oldest
// first. Returns nil if this Apu was built without a logger. Intended for a
// caller that wants to inspect bus activity after the fact (a failed SPC
// load, an unexpected control-register write) without threading its own
// observer through every component.
func (a *Apu) Diagnostics() []debug.LogEntry {
	if a.logger == nil {
		return nil
	}
	return a.logger.GetEntries()
}
