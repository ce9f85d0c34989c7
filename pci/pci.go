// Intel Peripheral Component Interconnect (PCI) configuration access
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package pci implements port-mapped configuration-space access for Intel
// PCI controllers, adopting the PCI Local Bus Specification, revision 3.0
// (PCI Special Interest Group).
//
// Only what the kernel's boot-time device discovery needs is implemented:
// vendor/device identification, BAR decoding and bus-mastering enable. A
// general bus enumerator, capability walking (MSI-X and friends) and
// multi-function devices are out of scope — this core only ever talks to
// a single legacy-IRQ Ethernet controller found among the first few
// devices on bus 0.
package pci

import (
	"github.com/usbarmory/netkernel/bits"
	"github.com/usbarmory/netkernel/internal/reg"
)

// Port-mapped configuration access ports (section 3.2.2.3.2, PCI Local Bus
// Specification).
const (
	CONFIG_ADDRESS = 0x0cf8
	CONFIG_DATA    = 0x0cfc
)

// MaxBuses is the number of buses a 32-bit configuration address can
// address.
const MaxBuses = 256

// MaxDevices is the number of device slots on a single PCI bus.
const MaxDevices = 32

// Header Type 0x0 offsets.
const (
	VendorID   = 0x00
	Command    = 0x04
	RevisionID = 0x08
	Bar0       = 0x10
)

// Command register bits (offset 0x04).
const (
	// CommandBusMaster enables the device as a DMA bus master.
	CommandBusMaster = 2
)

// Device represents a probed PCI device function 0.
type Device struct {
	// Bus number.
	Bus uint32
	// Vendor ID.
	Vendor uint16
	// Device ID.
	Device uint16
	// PCI device (slot) number.
	Slot uint32
}

func (d *Device) address(fn uint32, off uint32) uint32 {
	return 1<<31 | d.Bus<<16 | d.Slot<<11 | fn<<8 | off&0xfc
}

// Read reads the device configuration space for a given function and
// register offset.
func (d *Device) Read(fn uint32, off uint32) uint32 {
	reg.Out32(CONFIG_ADDRESS, d.address(fn, off))
	return reg.In32(CONFIG_DATA) >> ((off & 2) * 8)
}

// Write writes the device configuration space for a given function and
// register offset, the offset must be 32-bit aligned.
func (d *Device) Write(fn uint32, off uint32, val uint32) {
	if (off&2)*8 != 0 {
		return
	}

	reg.Out32(CONFIG_ADDRESS, d.address(fn, off))
	reg.Out32(CONFIG_DATA, val)
}

// BaseAddress returns a device Base Address Register (BAR) as a physical
// MMIO address. Only 32-bit and 64-bit memory BARs are decoded; I/O-space
// and unimplemented BARs return 0.
func (d *Device) BaseAddress(n int) uint {
	if n > 5 {
		return 0
	}

	off := Bar0 + uint32(n)*4
	bar := d.Read(0, off)

	if bar&1 != 0 {
		// I/O space BAR
		return 0
	}

	switch bits.Get(&bar, 1, 0b11) {
	case 0:
		return uint(bar) &^ 0xf
	case 2:
		return uint(d.Read(0, off+4))<<32 | uint(bar)&0xfffffff0
	}

	return 0
}

// SetBusMaster enables the device as a DMA bus master by setting bit 2 of
// the command register.
func (d *Device) SetBusMaster() {
	cmd := d.Read(0, Command)
	cmd |= 1 << CommandBusMaster
	d.Write(0, Command, cmd)
}

func (d *Device) probe() bool {
	val := d.Read(0, VendorID)

	if d.Vendor = uint16(val); d.Vendor == 0xffff {
		return false
	}

	d.Device = uint16(val >> 16)

	return true
}

// Probe scans up to maxSlot devices (exclusive) on the given bus and
// returns the first device matching vendor/device, or nil if none match.
// A maxSlot of 0 scans the full MaxDevices range.
func Probe(bus int, vendor uint16, device uint16, maxSlot int) *Device {
	if maxSlot <= 0 || maxSlot > MaxDevices {
		maxSlot = MaxDevices
	}

	d := &Device{Bus: uint32(bus)}

	for slot := uint32(0); slot < uint32(maxSlot); slot++ {
		d.Slot = slot

		if d.probe() && d.Vendor == vendor && d.Device == device {
			return d
		}
	}

	return nil
}

// Devices returns all responding devices on a given bus.
func Devices(bus int) (devices []*Device) {
	for slot := uint32(0); slot < MaxDevices; slot++ {
		d := &Device{Bus: uint32(bus), Slot: slot}

		if d.probe() {
			devices = append(devices, d)
		}
	}

	return
}
