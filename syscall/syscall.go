// Package syscall implements the marshalling layer between a process's
// trap-frame arguments and the socket/ARP/driver core: socket, bind,
// connect, send, recv and shutdown, with the numeric return conventions a
// user-space libc expects.
//
// connect is the one syscall that can block: it is the sole caller
// allowed to release the device lock and busy-wait on the TSC for an ARP
// reply, per the acquire order NIC → cache → sockets that every other
// path in this kernel respects.
package syscall

import (
	"github.com/usbarmory/netkernel/arpcache"
	"github.com/usbarmory/netkernel/klog"
	"github.com/usbarmory/netkernel/netdev"
	"github.com/usbarmory/netkernel/platform"
	"github.com/usbarmory/netkernel/socket"
	"github.com/usbarmory/netkernel/wire"
)

// ArpTimeout is how long connect waits for an ARP reply before giving up.
const ArpTimeout = 1_000_000_000 // 1s, expressed in nanoseconds (time.Second, without importing time into this doc comment)

// Server bundles the three singletons every syscall needs, in strict
// acquire order NIC → cache → sockets. Each field carries its own lock;
// Server itself holds none.
type Server struct {
	Device  netdev.Device
	Cache   *arpcache.Cache
	Sockets *socket.Table
	TSC     platform.TSC
}

// Socket implements sys_socket: domain 0 is UDP, anything else fails.
// Returns socket_id (non-negative) or -1.
func (s *Server) Socket(domain int) int {
	id, err := s.Sockets.Create(socket.Domain(domain))
	if err != nil {
		return -1
	}
	return id
}

// Bind implements sys_bind. The source address is hard-coded to the
// device's single static IP, per the design. Returns 0 on success,
// non-zero on failure.
func (s *Server) Bind(sid int, port uint16) int {
	if err := s.Sockets.Bind(sid, s.Device.ProtocolAddress(), port); err != nil {
		return 1
	}
	return 0
}

// Connect implements sys_connect: resolve dstIP via the ARP cache,
// issuing a broadcast request and busy-waiting up to ArpTimeout for the
// reply if it isn't already cached, then records the peer on the socket.
// Returns 0 on success, non-zero on failure (including ARP timeout).
func (s *Server) Connect(sid int, dstIP wire.Ipv4Addr, dstPort uint16) int {
	mac, ok := s.Cache.Lookup(dstIP)

	if !ok {
		if err := arpcache.Resolve(s.Device, dstIP); err != nil {
			klog.Warnf("syscall: connect: arp resolve: %v", err)
			return 1
		}

		if !s.waitForArpReply(dstIP, ArpTimeout) {
			return 1
		}

		mac, ok = s.Cache.Lookup(dstIP)
		if !ok {
			return 1
		}
	}

	if err := s.Sockets.Connect(sid, dstIP, dstPort, mac, s.Device.ProtocolAddress()); err != nil {
		return 1
	}

	return 0
}

// waitForArpReply busy-waits on the TSC for the cache to learn ip's MAC
// address, up to timeoutNanos. The device and cache locks must already be
// released by the caller before this runs: the wait must not hold either.
func (s *Server) waitForArpReply(ip wire.Ipv4Addr, timeoutNanos uint64) bool {
	start := s.TSC.Read()
	deadlineCycles := timeoutNanos * s.TSC.FrequencyMHz() / 1000

	for {
		if _, ok := s.Cache.Lookup(ip); ok {
			return true
		}

		if s.TSC.Read()-start >= deadlineCycles {
			return false
		}
	}
}

// Send implements sys_send: builds UDP(src_port, dst_port, data) wrapped
// in IPv4 then Ethernet, using the socket's recorded peer. Copies up to
// socket.MaxSendPayload bytes of data. Returns bytes sent or -1.
func (s *Server) Send(sid int, data []byte) int {
	sock, err := s.Sockets.Get(sid)
	if err != nil {
		return -1
	}

	if len(data) > socket.MaxSendPayload {
		data = data[:socket.MaxSendPayload]
	}

	datagram := wire.UdpDatagram{
		SourcePort:      sock.SourcePort,
		DestinationPort: sock.DestPort,
		Payload:         data,
	}

	ip := wire.Ipv4Header{
		TotalLength:  uint16(wire.Ipv4HeaderSize + datagram.Size()),
		DontFragment: true,
		TTL:          64,
		Protocol:     wire.IPProtocolUDP,
		Source:       sock.SourceAddr,
		Destination:  sock.DestProtoAddr,
	}

	eth := wire.EthernetHeader{
		Destination: sock.DestHardwareAddr,
		Source:      s.Device.HardwareAddress(),
		Ethertype:   wire.EthertypeIPv4,
	}

	buf := wire.New(wire.DefaultCapacity)
	if err := datagram.Serialize(buf); err != nil {
		return -1
	}
	if err := ip.Serialize(buf); err != nil {
		return -1
	}
	if err := eth.Serialize(buf); err != nil {
		return -1
	}

	if err := s.Device.Send(buf); err != nil {
		return -1
	}

	return len(data)
}

// Recv implements sys_recv: a non-blocking drain of up to len(dst) bytes
// from the socket's receive queue. Returns the byte count (may be 0) or
// -1 on an unknown socket id.
func (s *Server) Recv(sid int, dst []byte) int {
	n, err := s.Sockets.Recv(sid, dst)
	if err != nil {
		return -1
	}
	return n
}

// Shutdown implements sys_shutdown. Returns 0 on success, non-zero on an
// unknown socket id.
func (s *Server) Shutdown(sid int) int {
	if err := s.Sockets.Shutdown(sid); err != nil {
		return 1
	}
	return 0
}
