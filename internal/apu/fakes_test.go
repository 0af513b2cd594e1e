package apu_test

import (
	"apucore/internal/apu"
	"apucore/internal/spcfile"
)

// fakeSmp is a minimal Smp stand-in: it does not decode instructions, it
// just records what the bus does. Run reports the whole requested cycle
// budget in a single bus.CyclesCallback call, exercising the same fan-out
// path a real decoder would use.
type fakeSmp struct {
	pcWide       uint16
	a, x, y, psw uint8
	sp           uint8
	runCalls     int
	lastBudget   int
	onRun        func(bus apu.Bus, cycleBudget int)
}

func (s *fakeSmp) Run(bus apu.Bus, cycleBudget int) {
	s.runCalls++
	s.lastBudget = cycleBudget
	if s.onRun != nil {
		s.onRun(bus, cycleBudget)
		return
	}
	bus.CyclesCallback(cycleBudget)
}

func (s *fakeSmp) PC() uint16      { return s.pcWide }
func (s *fakeSmp) SetPC(v uint16)  { s.pcWide = v }
func (s *fakeSmp) A() uint8        { return s.a }
func (s *fakeSmp) SetA(v uint8)    { s.a = v }
func (s *fakeSmp) X() uint8        { return s.x }
func (s *fakeSmp) SetX(v uint8)    { s.x = v }
func (s *fakeSmp) Y() uint8        { return s.y }
func (s *fakeSmp) SetY(v uint8)    { s.y = v }
func (s *fakeSmp) SP() uint8       { return s.sp }
func (s *fakeSmp) SetSP(v uint8)   { s.sp = v }
func (s *fakeSmp) SetPSW(v uint8)  { s.psw = v }

// fakeDsp is a minimal Dsp stand-in backed by a 128-byte register file and a
// sample queue that Render can drain from. produceOnCycles, when set, is
// how many samples CyclesCallback appends per call, letting a test control
// exactly when Render's wait loop exits.
type fakeDsp struct {
	registers         [128]byte
	lastAddrWritten   uint8
	lastValueWritten  uint8
	restoredSnapshot  *spcfile.File
	queued            []apu.Sample
	produceOnCycles   int
	flushCalls        int
	echoStart         uint16
	echoLen           int32
}

func (d *fakeDsp) GetRegister(addr uint8) uint8 { return d.registers[addr] }

func (d *fakeDsp) SetRegister(addr uint8, value uint8) {
	d.registers[addr] = value
	d.lastAddrWritten = addr
	d.lastValueWritten = value
}

func (d *fakeDsp) SetState(snapshot *spcfile.File) { d.restoredSnapshot = snapshot }

func (d *fakeDsp) CyclesCallback(n int) {
	for i := 0; i < d.produceOnCycles && i < n; i++ {
		d.queued = append(d.queued, apu.Sample{L: 1, R: -1})
	}
}

func (d *fakeDsp) Flush() { d.flushCalls++ }

func (d *fakeDsp) BufferedSamples() int { return len(d.queued) }

func (d *fakeDsp) Drain(dst []apu.Sample) int {
	n := copy(dst, d.queued)
	d.queued = d.queued[n:]
	return n
}

func (d *fakeDsp) EchoStartAddress() uint16 { return d.echoStart }
func (d *fakeDsp) EchoLength() int32        { return d.echoLen }
