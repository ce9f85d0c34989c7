// Package netdev defines the narrow capability set the ingress pipeline,
// ARP resolver and socket syscalls need from a network card driver. One
// concrete driver (e1000.Device) satisfies it today; keeping the interface
// separate from that driver means a second NIC variant only has to
// implement these six methods, not thread itself through every caller.
package netdev

import "github.com/usbarmory/netkernel/wire"

// Device is the capability set a driver exposes to the rest of the
// network stack.
type Device interface {
	HardwareAddress() wire.EthernetAddress
	ProtocolAddress() wire.Ipv4Addr
	SetProtocolAddress(wire.Ipv4Addr)

	// ClearInterrupts acknowledges and disables further interrupt
	// delivery; used by init-time teardown and tests, never by the
	// steady-state data path.
	ClearInterrupts()

	// Send transmits buf.Bytes() as a single frame.
	Send(buf *wire.PacketBuffer) error

	// OnReceive installs the handler invoked once per drained frame
	// during the driver's interrupt handler. Only one handler is ever
	// installed, at init time.
	OnReceive(handler func(buf *wire.PacketBuffer))
}
