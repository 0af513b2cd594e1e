// Package iplrom holds the 64-byte boot stub mapped at 0xFFC0-0xFFFF
// whenever the bus has IPL ROM reads enabled.
package iplrom

// Len is the size in bytes of the IPL ROM window.
const Len = 64

// Default is the platform's reset stub, shadowing RAM at 0xFFC0-0xFFFF on
// cold reset until a snapshot or a control-register write disables it.
var Default = [Len]byte{
	0xcd, 0xef, 0xbd, 0xe8, 0x00, 0xc6, 0x1d, 0xd0, 0xfc, 0x8f, 0xaa, 0xf4, 0x8f, 0xbb, 0xf5, 0x78,
	0xcc, 0xf4, 0xd0, 0xfb, 0x2f, 0x19, 0xeb, 0xf4, 0xd0, 0xfc, 0x7e, 0xf4, 0xd0, 0x0b, 0xe4, 0xf5,
	0xcb, 0xf4, 0xd7, 0x00, 0xfc, 0xd0, 0xf3, 0xab, 0x01, 0x10, 0xef, 0x7e, 0xf4, 0x10, 0xeb, 0xba,
	0xf6, 0xda, 0x00, 0xba, 0xf4, 0xc4, 0xf4, 0xdd, 0x5d, 0xd0, 0xdb, 0x1f, 0x00, 0x00, 0xc0, 0xff,
}
