// Intel 82540EM-family (E1000) Gigabit Ethernet Controller driver
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package e1000 implements the interrupt-driven descriptor-ring driver for
// an 82540EM-class Ethernet controller: PCI discovery, EEPROM MAC read,
// RX/TX descriptor ring management, and the interrupt handler that drains
// inbound frames into the ingress pipeline.
package e1000

// Register offsets from the device's MMIO base (section 13, 82540EM
// developer's manual).
const (
	CTRL   = 0x0000
	STATUS = 0x0008
	EERD   = 0x0014
	ICR    = 0x00c0
	IMS    = 0x00d0
	RCTL   = 0x0100
	TCTL   = 0x0400
	TIPG   = 0x0410

	RDBAL = 0x2800
	RDBAH = 0x2804
	RDLEN = 0x2808
	RDH   = 0x2810
	RDT   = 0x2818

	TDBAL = 0x3800
	TDBAH = 0x3804
	TDLEN = 0x3808
	TDH   = 0x3810
	TDT   = 0x3818

	RAL = 0x5400
	RAH = 0x5404
	MTA = 0x5200 // through 0x53fc
)

// EERD bits.
const (
	eerdStart = 0 // bit 0: START
	eerdDone  = 4 // bit 4: DONE
)

// RCTL bits.
const (
	rctlEN   = 1  // receiver enable
	rctlSBP  = 2  // store bad packets
	rctlUPE  = 3  // unicast promiscuous (accept unicast)
	rctlMPE  = 4  // multicast promiscuous (accept multicast)
	rctlLPE  = 5  // long packet enable
	rctlBAM  = 15 // broadcast accept mode
	rctlBSEX = 25 // buffer size extension
)

const rctlBSizeMask = 3 << 16 // combined with BSEX, selects 4096-byte buffers

// TCTL bits.
const (
	tctlEN  = 1 // transmitter enable
	tctlPSP = 3 // pad short packets
)

const (
	tctlCT   = 0x0f << 4   // collision threshold
	tctlCOLD = 0x200 << 12 // collision distance
)

const tipgDefault = 0x0a

// ICR/IMS cause bits.
const (
	icrTXDW   = 1 << 0
	icrLSC    = 1 << 2
	icrRXSEQ  = 1 << 3
	icrRXDMT0 = 1 << 4
	icrRXO    = 1 << 6
	icrRXT0   = 1 << 7
)

const imsEnabled = icrTXDW | icrLSC | icrRXSEQ | icrRXDMT0 | icrRXO | icrRXT0

// RingSize is the number of descriptors in both the RX and TX rings. Each
// descriptor is 16 bytes, so a ring of this size fills exactly one 4 KiB
// page.
const RingSize = 256

// DescSize is the on-wire size of a single RX or TX descriptor.
const DescSize = 16

// RX descriptor status bits.
const (
	rxStatusDD  = 1 << 0 // descriptor done
	rxStatusEOP = 1 << 1 // end of packet
)

// TX descriptor options word layout.
const (
	txLengthMask = 0xffff
	txDTYPShift  = 20
	txDTYPData   = 1

	txDCMDShift = 24
	txDCMDEOP   = 1 << 0
	txDCMDRS    = 1 << 3
	txDCMDIFCS  = 1 << 5
)

// FCSLen is the 4-byte Ethernet frame check sequence the NIC appends to
// every received frame and strips from none: the driver strips it itself
// before handing bytes to the ingress pipeline.
const FCSLen = 4

// VendorID and DeviceID identify the 82540EM-class controller this driver
// targets.
const (
	VendorID = 0x8086
	DeviceID = 0x100e
)

// IRQ is the legacy interrupt line this controller is wired to on the
// target platform.
const IRQ = 11
