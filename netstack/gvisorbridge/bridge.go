// Package gvisorbridge mirrors every frame that crosses the ingress
// pipeline and the driver's TX path into a gVisor channel.Endpoint, the
// same shape the teacher's USB-Ethernet CDC-ECM driver feeds into a
// gVisor network stack. Nothing in the kernel-resident pipeline depends
// on this package: it exists so host-side integration tests (and the
// pcapdump tooling) can attach a real tcpip.Stack to this kernel's frames
// without the driver itself paying for a full network-stack dependency.
package gvisorbridge

import (
	"github.com/usbarmory/netkernel/netdev"
	"github.com/usbarmory/netkernel/wire"

	"gvisor.dev/gvisor/pkg/buffer"
	"gvisor.dev/gvisor/pkg/tcpip"
	"gvisor.dev/gvisor/pkg/tcpip/link/channel"
	"gvisor.dev/gvisor/pkg/tcpip/stack"
)

// QueueDepth is the number of frames channel.Endpoint buffers in each
// direction before it starts dropping.
const QueueDepth = 256

// Mirror wraps a channel.Endpoint and taps both directions of a device's
// traffic: inbound frames observed by the pipeline, and outbound frames
// handed to the driver's Send.
type Mirror struct {
	Endpoint *channel.Endpoint
}

// New creates a Mirror bound to dev's hardware address. The caller
// attaches Endpoint to a tcpip.Stack as its link-layer NIC.
func New(dev netdev.Device) *Mirror {
	mac := dev.HardwareAddress()
	linkAddr := tcpip.LinkAddress(mac[:])

	return &Mirror{Endpoint: channel.New(QueueDepth, wire.EthernetMTU, linkAddr)}
}

// ObserveInbound injects a copy of an inbound frame into the gVisor
// stack. Call from a netdev.Device.OnReceive handler installed alongside
// (not instead of) the kernel's own pipeline handler.
func (m *Mirror) ObserveInbound(buf *wire.PacketBuffer) {
	data := buf.Remaining()
	if len(data) < wire.EthernetHeaderSize {
		return
	}

	proto := tcpip.NetworkProtocolNumber(uint16(data[12])<<8 | uint16(data[13]))
	payload := buffer.MakeWithData(append([]byte(nil), data[wire.EthernetHeaderSize:]...))

	pkt := stack.NewPacketBuffer(stack.PacketBufferOptions{Payload: payload})
	defer pkt.DecRef()

	m.Endpoint.InjectInbound(proto, pkt)
}

// ObserveOutbound mirrors a frame handed to the driver's Send so a test
// harness can assert on what gVisor's own encoder would have produced for
// the same packet, the same cross-check role pcapdump plays for the
// hand-rolled wire package.
func (m *Mirror) ObserveOutbound(frame []byte) {
	if len(frame) < wire.EthernetHeaderSize {
		return
	}

	proto := tcpip.NetworkProtocolNumber(uint16(frame[12])<<8 | uint16(frame[13]))
	payload := buffer.MakeWithData(append([]byte(nil), frame[wire.EthernetHeaderSize:]...))

	pkt := stack.NewPacketBuffer(stack.PacketBufferOptions{Payload: payload})
	defer pkt.DecRef()

	m.Endpoint.InjectInbound(proto, pkt)
}
