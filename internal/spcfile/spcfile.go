// Package spcfile parses the machine-state portions of an SPC snapshot: the
// CPU registers, the 64 KiB RAM image, the I/O-and-scratch region, and the
// boot ROM image. The textual ID666 metadata block is read past but never
// decoded — see the metadata-marker check in Load.
package spcfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"apucore/internal/debug"
)

const (
	headerText        = "SNES-SPC700 Sound File Data v0.30"
	headerLen         = 33
	magicOffset       = 0x21
	magicValue        = 0x1a1a
	markerOffset      = 0x23
	markerHasMetadata = 0x1a
	markerNoMetadata  = 0x1b
	versionOffset     = 0x24
	registersOffset   = 0x25

	ramOffset     = 0x100
	ramLen        = 0x10000
	ioOffset      = 0x10100
	ioLen         = 128
	bootROMOffset = 0x101c0
	bootROMLen    = 64
)

// InvalidHeaderError reports a header string, magic, or metadata marker
// mismatch. Offset is the absolute byte offset where the mismatch was found.
type InvalidHeaderError struct {
	Offset int64
	Detail string
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("spcfile: invalid header at offset 0x%x: %s", e.Offset, e.Detail)
}

// IoError wraps a read or seek failure encountered while parsing.
type IoError struct {
	Offset int64
	Err    error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("spcfile: i/o error at offset 0x%x: %v", e.Offset, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// File is the parsed machine-state subset of an SPC snapshot. It is built
// once by Load and never mutated afterward.
type File struct {
	Header       [headerLen]byte
	VersionMinor uint8

	PC  uint16
	A   uint8
	X   uint8
	Y   uint8
	PSW uint8
	SP  uint8

	RAM     [ramLen]byte
	IO      [ioLen]byte
	BootROM [bootROMLen]byte
}

// Load parses the machine-state fields of an SPC file from r. Any failure
// aborts the parse; a non-nil *File is returned only on complete success.
func Load(r io.ReadSeeker, logger *debug.Logger) (*File, error) {
	var f File

	// logFail records a load failure before it's returned. IoError covers
	// low-level seek/read trouble (LogLevelDebug); a header/magic/marker
	// mismatch is a more meaningful rejection of the file itself
	// (LogLevelWarning).
	logFail := func(err error) error {
		if logger == nil {
			return err
		}
		level := debug.LogLevelDebug
		var headerErr *InvalidHeaderError
		if errors.As(err, &headerErr) {
			level = debug.LogLevelWarning
		}
		logger.Logf(debug.ComponentSpc, level, "SPC load failed: %v", err)
		return err
	}

	if err := seek(r, 0); err != nil {
		return nil, logFail(err)
	}
	if err := readFull(r, 0, f.Header[:]); err != nil {
		return nil, logFail(err)
	}
	if string(f.Header[:]) != headerText {
		return nil, logFail(&InvalidHeaderError{Offset: 0, Detail: "header string does not match \"" + headerText + "\""})
	}

	var magic uint16
	if err := readLE(r, magicOffset, &magic); err != nil {
		return nil, logFail(err)
	}
	if magic != magicValue {
		return nil, logFail(&InvalidHeaderError{Offset: magicOffset, Detail: fmt.Sprintf("magic 0x%04x != 0x%04x", magic, magicValue)})
	}

	marker, err := readByte(r, markerOffset)
	if err != nil {
		return nil, logFail(err)
	}
	switch marker {
	case markerHasMetadata, markerNoMetadata:
		// Both are valid; the metadata block itself (offsets 0x2e-0x100)
		// is out of scope for the core and is simply skipped by the
		// absolute seeks below.
	default:
		return nil, logFail(&InvalidHeaderError{Offset: markerOffset, Detail: fmt.Sprintf("unrecognized metadata marker 0x%02x", marker)})
	}

	f.VersionMinor, err = readByte(r, versionOffset)
	if err != nil {
		return nil, logFail(err)
	}

	if err := readLE(r, registersOffset, &f.PC); err != nil {
		return nil, logFail(err)
	}
	regs := make([]byte, 5)
	if err := readFull(r, registersOffset+2, regs); err != nil {
		return nil, logFail(err)
	}
	f.A, f.X, f.Y, f.PSW, f.SP = regs[0], regs[1], regs[2], regs[3], regs[4]

	if err := readFull(r, ramOffset, f.RAM[:]); err != nil {
		return nil, logFail(err)
	}
	if err := readFull(r, ioOffset, f.IO[:]); err != nil {
		return nil, logFail(err)
	}
	if err := readFull(r, bootROMOffset, f.BootROM[:]); err != nil {
		return nil, logFail(err)
	}

	if logger != nil {
		logger.Logf(debug.ComponentSpc, debug.LogLevelInfo, "loaded SPC snapshot (version_minor=%d, pc=0x%04x)", f.VersionMinor, f.PC)
	}

	return &f, nil
}

func seek(r io.Seeker, offset int64) error {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return &IoError{Offset: offset, Err: err}
	}
	return nil
}

func readFull(r io.ReadSeeker, offset int64, buf []byte) error {
	if err := seek(r, offset); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return &IoError{Offset: offset, Err: fmt.Errorf("short read: %w", err)}
		}
		return &IoError{Offset: offset, Err: err}
	}
	return nil
}

func readByte(r io.ReadSeeker, offset int64) (uint8, error) {
	var b [1]byte
	if err := readFull(r, offset, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func readLE(r io.ReadSeeker, offset int64, v interface{}) error {
	size := binary.Size(v)
	buf := make([]byte, size)
	if err := readFull(r, offset, buf); err != nil {
		return err
	}
	switch p := v.(type) {
	case *uint16:
		*p = binary.LittleEndian.Uint16(buf)
	default:
		return fmt.Errorf("spcfile: unsupported readLE type %T", v)
	}
	return nil
}
