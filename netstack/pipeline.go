// Package netstack implements the ingress demultiplexer atop the driver's
// RX drain: Ethernet → ARP/IPv4 dispatch, ARP request/reply handling,
// ICMP echo reply, and UDP delivery into the socket table.
package netstack

import (
	"github.com/usbarmory/netkernel/arpcache"
	"github.com/usbarmory/netkernel/klog"
	"github.com/usbarmory/netkernel/netdev"
	"github.com/usbarmory/netkernel/wire"
)

// SocketTable is the narrow slice of the socket table the pipeline needs:
// finding the socket bound to a UDP destination port and appending to its
// receive queue.
type SocketTable interface {
	DeliverUDP(dstPort uint16, payload []byte)
}

// Pipeline wires a device, ARP cache and socket table together and
// dispatches each inbound frame. It has no state of its own beyond those
// three collaborators.
type Pipeline struct {
	Device  netdev.Device
	Cache   *arpcache.Cache
	Sockets SocketTable
}

// New builds a pipeline and registers it as dev's receive handler.
func New(dev netdev.Device, cache *arpcache.Cache, sockets SocketTable) *Pipeline {
	p := &Pipeline{Device: dev, Cache: cache, Sockets: sockets}
	dev.OnReceive(p.OnFrame)
	return p
}

// OnFrame parses and dispatches a single inbound frame. Parse failures at
// any layer abort the frame silently; no ICMP errors are generated.
func (p *Pipeline) OnFrame(buf *wire.PacketBuffer) {
	eth, err := wire.ParseEthernet(buf)
	if err != nil {
		klog.Debugf("netstack: drop, %v", err)
		return
	}

	switch eth.Ethertype {
	case wire.EthertypeARP:
		p.handleArp(buf)
	case wire.EthertypeIPv4:
		p.handleIpv4(buf, eth)
	default:
		// Unrecognized ethertype: silently dropped, per the design's
		// closed dispatch set.
	}
}

func (p *Pipeline) handleArp(buf *wire.PacketBuffer) {
	arp, err := wire.ParseArp(buf)
	if err != nil {
		klog.Debugf("netstack: drop arp, %v", err)
		return
	}

	switch arp.Oper {
	case wire.ArpRequest:
		if arp.TPA != p.Device.ProtocolAddress() {
			return
		}
		p.sendArpReply(arp)
	case wire.ArpReply:
		p.Cache.Learn(arp.SPA, arp.SHA)
	default:
		// Unknown operation code: dropped.
	}
}

func (p *Pipeline) sendArpReply(req wire.ArpPacket) {
	reply := wire.ArpReplyFromRequest(req, p.Device.HardwareAddress())

	eth := wire.EthernetHeader{
		Destination: req.SHA,
		Source:      p.Device.HardwareAddress(),
		Ethertype:   wire.EthertypeARP,
	}

	out := wire.New(wire.DefaultCapacity)
	if err := reply.Serialize(out); err != nil {
		klog.Errorf("netstack: arp reply serialize: %v", err)
		return
	}
	if err := eth.Serialize(out); err != nil {
		klog.Errorf("netstack: arp reply serialize: %v", err)
		return
	}

	if err := p.Device.Send(out); err != nil {
		klog.Errorf("netstack: arp reply send: %v", err)
	}
}

func (p *Pipeline) handleIpv4(buf *wire.PacketBuffer, eth wire.EthernetHeader) {
	ip, err := wire.ParseIpv4(buf)
	if err != nil {
		klog.Debugf("netstack: drop ipv4, %v", err)
		return
	}

	switch ip.Protocol {
	case wire.IPProtocolICMP:
		p.handleIcmp(buf, eth, ip)
	case wire.IPProtocolUDP:
		p.handleUdp(buf)
	default:
		// TCP and anything else: dropped.
	}
}

func (p *Pipeline) handleIcmp(buf *wire.PacketBuffer, eth wire.EthernetHeader, ip wire.Ipv4Header) {
	echo, err := wire.ParseIcmpEcho(buf)
	if err != nil {
		klog.Debugf("netstack: drop icmp, %v", err)
		return
	}

	if echo.Type != wire.IcmpEchoRequest {
		return
	}

	reply := echo.EchoReply()

	replyIP := wire.Ipv4Header{
		TotalLength:  uint16(wire.Ipv4HeaderSize + reply.Size()),
		DontFragment: true,
		TTL:          64,
		Protocol:     wire.IPProtocolICMP,
		Source:       p.Device.ProtocolAddress(),
		Destination:  ip.Source,
	}

	replyEth := wire.EthernetHeader{
		Destination: eth.Source,
		Source:      p.Device.HardwareAddress(),
		Ethertype:   wire.EthertypeIPv4,
	}

	out := wire.New(wire.DefaultCapacity)
	if err := reply.Serialize(out); err != nil {
		klog.Errorf("netstack: icmp reply serialize: %v", err)
		return
	}
	if err := replyIP.Serialize(out); err != nil {
		klog.Errorf("netstack: icmp reply serialize: %v", err)
		return
	}
	if err := replyEth.Serialize(out); err != nil {
		klog.Errorf("netstack: icmp reply serialize: %v", err)
		return
	}

	if err := p.Device.Send(out); err != nil {
		klog.Errorf("netstack: icmp reply send: %v", err)
	}
}

func (p *Pipeline) handleUdp(buf *wire.PacketBuffer) {
	datagram, err := wire.ParseUdp(buf)
	if err != nil {
		klog.Debugf("netstack: drop udp, %v", err)
		return
	}

	if p.Sockets == nil {
		return
	}

	p.Sockets.DeliverUDP(datagram.DestinationPort, datagram.Payload)
}
