// Package socket implements the UDP-only socket table: monotonically
// assigned socket IDs, per-socket receive queues, and the delivery path
// the ingress pipeline calls into.
package socket

import (
	"github.com/usbarmory/netkernel/kerr"
	"github.com/usbarmory/netkernel/platform"
	"github.com/usbarmory/netkernel/wire"
)

// QueueCapacity is the fixed receive queue size reserved per socket.
const QueueCapacity = 2048

// MaxSendPayload is the largest payload a single Send call will copy.
const MaxSendPayload = 1024

// Domain identifies a socket's address family. UDP is the only domain
// this kernel implements.
type Domain int

const (
	DomainUDP Domain = 0
)

// Socket is one table entry. Zero value is the state right after
// socket(): no address bound, empty queue.
type Socket struct {
	Domain Domain

	SourcePort uint16
	SourceAddr wire.Ipv4Addr
	bound      bool

	DestPort         uint16
	DestProtoAddr    wire.Ipv4Addr
	DestHardwareAddr wire.EthernetAddress
	connected        bool

	queue []byte
}

// Table is the process-wide socket table, keyed by a monotonically
// increasing socket_id that is never reused, even after Shutdown.
type Table struct {
	mu      *platform.Spinlock
	sockets map[int]*Socket
	nextID  int
}

// New returns an empty socket table with no interrupt-masking CLI wired
// in — the shape every hosted test in this module uses.
func New() *Table {
	return NewWithCLI(nil)
}

// NewWithCLI returns an empty socket table whose lock disables interrupts
// on cli while held, per spec.md §5. Production wiring (package boot)
// uses this constructor with the kernel's real platform.CLI.
func NewWithCLI(cli platform.CLI) *Table {
	return &Table{mu: platform.NewSpinlock(cli), sockets: make(map[int]*Socket)}
}

// Create allocates a new socket of the given domain. Only DomainUDP is
// accepted.
func (t *Table) Create(domain Domain) (int, error) {
	if domain != DomainUDP {
		return 0, kerr.New(kerr.BadSocket, "socket.create", errUnsupportedDomain)
	}

	t.mu.Acquire()
	defer t.mu.Release()

	id := t.nextID
	t.nextID++

	t.sockets[id] = &Socket{Domain: domain, queue: make([]byte, 0, QueueCapacity)}

	return id, nil
}

// Get returns the socket for id, or an error if it doesn't exist.
func (t *Table) Get(id int) (*Socket, error) {
	t.mu.Acquire()
	defer t.mu.Release()

	s, ok := t.sockets[id]
	if !ok {
		return nil, kerr.New(kerr.BadSocket, "socket.get", errUnknownSocket)
	}

	return s, nil
}

// Bind sets a socket's local address and port.
func (t *Table) Bind(id int, addr wire.Ipv4Addr, port uint16) error {
	s, err := t.Get(id)
	if err != nil {
		return err
	}

	t.mu.Acquire()
	defer t.mu.Release()

	s.SourceAddr = addr
	s.SourcePort = port
	s.bound = true

	return nil
}

// Connect records a socket's peer and, if not already bound, assigns an
// ephemeral source port. ARP resolution happens one layer up, in package
// syscall, which is the only place allowed to drop the device lock and
// busy-wait.
func (t *Table) Connect(id int, dstIP wire.Ipv4Addr, dstPort uint16, dstMAC wire.EthernetAddress, localIP wire.Ipv4Addr) error {
	s, err := t.Get(id)
	if err != nil {
		return err
	}

	t.mu.Acquire()
	defer t.mu.Release()

	s.DestProtoAddr = dstIP
	s.DestPort = dstPort
	s.DestHardwareAddr = dstMAC
	s.connected = true

	if !s.bound {
		s.SourcePort = uint16(1024 + id)
		s.SourceAddr = localIP
		s.bound = true
	}

	return nil
}

// Shutdown removes a socket from the table. The socket_id is never
// reassigned.
func (t *Table) Shutdown(id int) error {
	t.mu.Acquire()
	defer t.mu.Release()

	if _, ok := t.sockets[id]; !ok {
		return kerr.New(kerr.BadSocket, "socket.shutdown", errUnknownSocket)
	}

	delete(t.sockets, id)

	return nil
}

// Recv drains up to len(dst) bytes from a socket's receive queue,
// truncating the queue by the amount copied.
func (t *Table) Recv(id int, dst []byte) (int, error) {
	s, err := t.Get(id)
	if err != nil {
		return 0, err
	}

	t.mu.Acquire()
	defer t.mu.Release()

	n := copy(dst, s.queue)
	s.queue = s.queue[n:]

	return n, nil
}

// DeliverUDP appends payload to the receive queue of whichever bound
// socket matches dstPort, if it has room; otherwise the datagram is
// dropped silently. Implements netstack.SocketTable.
func (t *Table) DeliverUDP(dstPort uint16, payload []byte) {
	t.mu.Acquire()
	defer t.mu.Release()

	for _, s := range t.sockets {
		if !s.bound || s.SourcePort != dstPort {
			continue
		}

		if len(s.queue)+len(payload) >= QueueCapacity {
			return
		}

		s.queue = append(s.queue, payload...)
		return
	}
}
