// Package boot assembles the network stack's singletons into the one
// object graph the rest of the kernel talks to: an ARP cache, a socket
// table, the ingress pipeline, the syscall server, and (optionally) a
// gVisor mirror for host-side integration testing. Call Wire once at
// kernel init, after the driver itself has been opened via e1000.Open.
package boot

import (
	"github.com/usbarmory/netkernel/arpcache"
	"github.com/usbarmory/netkernel/netdev"
	"github.com/usbarmory/netkernel/netstack"
	"github.com/usbarmory/netkernel/netstack/gvisorbridge"
	"github.com/usbarmory/netkernel/platform"
	"github.com/usbarmory/netkernel/socket"
	"github.com/usbarmory/netkernel/syscall"
	"github.com/usbarmory/netkernel/wire"
)

// Stack is the fully wired network stack: the pipeline is already
// registered as dev's receive handler by the time Wire returns.
type Stack struct {
	Device  netdev.Device
	Cache   *arpcache.Cache
	Sockets *socket.Table
	Pipe    *netstack.Pipeline
	Syscall *syscall.Server

	// Mirror is non-nil only when Wire was called with mirror=true. It
	// taps every inbound and outbound frame for host-side integration
	// tests; nothing in the kernel-resident path reads from it.
	Mirror *gvisorbridge.Mirror
}

// Wire builds the stack on top of an already-opened device. tsc backs the
// syscall layer's ARP-reply busy-wait. Set mirror to attach a gVisor
// channel.Endpoint tap alongside the kernel's own pipeline handler, for
// integration tests that want an independent decode of every frame this
// kernel sends and receives. cli backs the ARP cache's and socket table's
// spinlocks (spec.md §5); it may be nil in a hosted test environment.
func Wire(dev netdev.Device, cli platform.CLI, tsc platform.TSC, mirror bool) *Stack {
	cache := arpcache.NewWithCLI(cli)
	sockets := socket.NewWithCLI(cli)

	s := &Stack{
		Device:  dev,
		Cache:   cache,
		Sockets: sockets,
		Syscall: &syscall.Server{Device: dev, Cache: cache, Sockets: sockets, TSC: tsc},
	}

	if mirror {
		m := gvisorbridge.New(dev)
		s.Mirror = m
		dev = &mirroredDevice{Device: dev, mirror: m}
		s.Device = dev
		s.Syscall.Device = dev
	}

	// netstack.New registers its dispatch as dev's sole receive handler;
	// when mirroring, dev is the wrapped device so Send is tapped too.
	s.Pipe = netstack.New(dev, cache, sockets)

	return s
}

// mirroredDevice wraps a netdev.Device so every inbound frame the
// pipeline sees, and every outbound frame the driver transmits, is also
// injected into the attached gVisor endpoint.
type mirroredDevice struct {
	netdev.Device
	mirror *gvisorbridge.Mirror
}

func (m *mirroredDevice) OnReceive(handler func(buf *wire.PacketBuffer)) {
	m.Device.OnReceive(func(buf *wire.PacketBuffer) {
		m.mirror.ObserveInbound(buf)
		handler(buf)
	})
}

func (m *mirroredDevice) Send(buf *wire.PacketBuffer) error {
	m.mirror.ObserveOutbound(buf.Bytes())
	return m.Device.Send(buf)
}
