package syscall

import (
	"testing"

	"github.com/usbarmory/netkernel/arpcache"
	"github.com/usbarmory/netkernel/socket"
	"github.com/usbarmory/netkernel/wire"
)

var (
	ourMAC = wire.EthernetAddress{0x52, 0x54, 0x00, 0x12, 0x34, 0x56}
	ourIP  = wire.NewIpv4Addr(10, 0, 0, 2)
)

type fakeDevice struct {
	mac  wire.EthernetAddress
	ip   wire.Ipv4Addr
	sent [][]byte
}

func (f *fakeDevice) HardwareAddress() wire.EthernetAddress    { return f.mac }
func (f *fakeDevice) ProtocolAddress() wire.Ipv4Addr           { return f.ip }
func (f *fakeDevice) SetProtocolAddress(ip wire.Ipv4Addr)      { f.ip = ip }
func (f *fakeDevice) ClearInterrupts()                         {}
func (f *fakeDevice) OnReceive(h func(buf *wire.PacketBuffer)) { _ = h }

func (f *fakeDevice) Send(buf *wire.PacketBuffer) error {
	f.sent = append(f.sent, append([]byte(nil), buf.Bytes()...))
	return nil
}

// fakeTSC advances by a fixed step on every Read, letting tests run a
// busy-wait loop to completion without sleeping.
type fakeTSC struct {
	cycles   uint64
	step     uint64
	freqMHz  uint64
	onRead   func(n int)
	readCall int
}

func (f *fakeTSC) Read() uint64 {
	if f.onRead != nil {
		f.onRead(f.readCall)
	}
	f.readCall++
	c := f.cycles
	f.cycles += f.step
	return c
}

func (f *fakeTSC) FrequencyMHz() uint64 { return f.freqMHz }

func newServer(dev *fakeDevice, tsc *fakeTSC) *Server {
	return &Server{
		Device:  dev,
		Cache:   arpcache.New(),
		Sockets: socket.New(),
		TSC:     tsc,
	}
}

func TestSocketAndShutdown(t *testing.T) {
	s := newServer(&fakeDevice{mac: ourMAC, ip: ourIP}, &fakeTSC{freqMHz: 3000, step: 1})

	id := s.Socket(int(socket.DomainUDP))
	if id < 0 {
		t.Fatalf("Socket returned %d, want >= 0", id)
	}

	if bad := s.Socket(7); bad != -1 {
		t.Fatalf("Socket(7) = %d, want -1", bad)
	}

	if rc := s.Shutdown(id); rc != 0 {
		t.Fatalf("Shutdown(%d) = %d, want 0", id, rc)
	}
	if rc := s.Shutdown(id); rc == 0 {
		t.Fatal("Shutdown of an already-closed socket must fail")
	}
}

func TestBind(t *testing.T) {
	s := newServer(&fakeDevice{mac: ourMAC, ip: ourIP}, &fakeTSC{freqMHz: 3000, step: 1})
	id := s.Socket(int(socket.DomainUDP))

	if rc := s.Bind(id, 9000); rc != 0 {
		t.Fatalf("Bind = %d, want 0", rc)
	}
	if rc := s.Bind(id+1, 9000); rc == 0 {
		t.Fatal("Bind of an unknown socket must fail")
	}
}

func TestConnectResolvesFromCache(t *testing.T) {
	dev := &fakeDevice{mac: ourMAC, ip: ourIP}
	s := newServer(dev, &fakeTSC{freqMHz: 3000, step: 1})
	id := s.Socket(int(socket.DomainUDP))

	peerMAC := wire.EthernetAddress{1, 2, 3, 4, 5, 6}
	peerIP := wire.NewIpv4Addr(10, 0, 0, 9)
	s.Cache.Learn(peerIP, peerMAC)

	if rc := s.Connect(id, peerIP, 7000); rc != 0 {
		t.Fatalf("Connect = %d, want 0", rc)
	}
	if len(dev.sent) != 0 {
		t.Fatalf("an already-cached peer must not trigger an ARP request, got %d frames sent", len(dev.sent))
	}

	sock, err := s.Sockets.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sock.DestPort != 7000 || sock.DestHardwareAddr != peerMAC {
		t.Fatalf("peer not recorded: %+v", sock)
	}
	if sock.SourcePort != uint16(1024+id) {
		t.Fatalf("SourcePort = %d, want %d", sock.SourcePort, 1024+id)
	}
}

func TestConnectResolvesAfterArpReplyLandsMidWait(t *testing.T) {
	dev := &fakeDevice{mac: ourMAC, ip: ourIP}
	tsc := &fakeTSC{freqMHz: 3000, step: 1}
	s := newServer(dev, tsc)
	id := s.Socket(int(socket.DomainUDP))

	peerMAC := wire.EthernetAddress{9, 9, 9, 9, 9, 9}
	peerIP := wire.NewIpv4Addr(10, 0, 0, 50)

	// Simulate the reply arriving after a few busy-wait iterations, as if
	// another goroutine delivered it via the ingress pipeline.
	tsc.onRead = func(n int) {
		if n == 3 {
			s.Cache.Learn(peerIP, peerMAC)
		}
	}

	if rc := s.Connect(id, peerIP, 7000); rc != 0 {
		t.Fatalf("Connect = %d, want 0", rc)
	}
	if len(dev.sent) != 1 {
		t.Fatalf("expected exactly one ARP request sent, got %d", len(dev.sent))
	}

	sock, err := s.Sockets.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sock.DestHardwareAddr != peerMAC {
		t.Fatalf("DestHardwareAddr = %v, want %v", sock.DestHardwareAddr, peerMAC)
	}
}

func TestConnectTimesOutWithoutReply(t *testing.T) {
	dev := &fakeDevice{mac: ourMAC, ip: ourIP}
	// A huge step relative to frequency fast-forwards past ArpTimeout on
	// the very first iteration, so the test doesn't spin.
	tsc := &fakeTSC{freqMHz: 1, step: ArpTimeout * 10}
	s := newServer(dev, tsc)
	id := s.Socket(int(socket.DomainUDP))

	if rc := s.Connect(id, wire.NewIpv4Addr(10, 0, 0, 99), 7000); rc == 0 {
		t.Fatal("Connect must fail when no ARP reply ever arrives")
	}
}

func TestSendBuildsUdpIpv4EthernetFrame(t *testing.T) {
	dev := &fakeDevice{mac: ourMAC, ip: ourIP}
	s := newServer(dev, &fakeTSC{freqMHz: 3000, step: 1})
	id := s.Socket(int(socket.DomainUDP))

	peerMAC := wire.EthernetAddress{1, 2, 3, 4, 5, 6}
	peerIP := wire.NewIpv4Addr(10, 0, 0, 9)
	s.Cache.Learn(peerIP, peerMAC)
	if rc := s.Connect(id, peerIP, 7000); rc != 0 {
		t.Fatalf("Connect = %d, want 0", rc)
	}

	payload := []byte("hello")
	n := s.Send(id, payload)
	if n != len(payload) {
		t.Fatalf("Send = %d, want %d", n, len(payload))
	}
	if len(dev.sent) != 1 {
		t.Fatalf("expected one frame sent, got %d", len(dev.sent))
	}

	out := wire.NewFromBytes(dev.sent[0], len(dev.sent[0]))
	eth, err := wire.ParseEthernet(out)
	if err != nil {
		t.Fatalf("ParseEthernet: %v", err)
	}
	if eth.Destination != peerMAC || eth.Source != ourMAC {
		t.Fatalf("ethernet header wrong: %+v", eth)
	}

	ip, err := wire.ParseIpv4(out)
	if err != nil {
		t.Fatalf("ParseIpv4: %v", err)
	}
	if ip.Destination != peerIP || ip.Source != ourIP || !ip.DontFragment || ip.TTL != 64 {
		t.Fatalf("ipv4 header wrong: %+v", ip)
	}

	datagram, err := wire.ParseUdp(out)
	if err != nil {
		t.Fatalf("ParseUdp: %v", err)
	}
	if datagram.DestinationPort != 7000 || string(datagram.Payload) != "hello" {
		t.Fatalf("udp datagram wrong: %+v", datagram)
	}
}

func TestSendUnknownSocketFails(t *testing.T) {
	s := newServer(&fakeDevice{mac: ourMAC, ip: ourIP}, &fakeTSC{freqMHz: 3000, step: 1})
	if n := s.Send(42, []byte("x")); n != -1 {
		t.Fatalf("Send on unknown socket = %d, want -1", n)
	}
}

func TestRecvDrainsQueue(t *testing.T) {
	dev := &fakeDevice{mac: ourMAC, ip: ourIP}
	s := newServer(dev, &fakeTSC{freqMHz: 3000, step: 1})
	id := s.Socket(int(socket.DomainUDP))

	if rc := s.Bind(id, 9000); rc != 0 {
		t.Fatalf("Bind = %d, want 0", rc)
	}

	s.Sockets.DeliverUDP(9000, []byte("payload"))

	buf := make([]byte, 32)
	n := s.Recv(id, buf)
	if n != len("payload") {
		t.Fatalf("Recv = %d, want %d", n, len("payload"))
	}
	if string(buf[:n]) != "payload" {
		t.Fatalf("Recv data = %q, want %q", buf[:n], "payload")
	}

	if n := s.Recv(42, buf); n != -1 {
		t.Fatalf("Recv on unknown socket = %d, want -1", n)
	}
}
