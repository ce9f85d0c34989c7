// Package arpcache implements the IPv4→Ethernet address cache this kernel
// resolves destinations through: a plain map with no expiry (ARP entry
// aging is an explicit non-goal here), plus the broadcast-request half of
// resolution. The caller-side busy-wait for a Reply lives in the syscall
// layer (package syscall), which is the only place allowed to drop the
// device lock and spin on the TSC.
package arpcache

import (
	"github.com/usbarmory/netkernel/netdev"
	"github.com/usbarmory/netkernel/platform"
	"github.com/usbarmory/netkernel/wire"
)

// Cache maps resolved IPv4 addresses to their Ethernet address. Entries
// are inserted only on receipt of an ARP Reply; Requests never populate
// it, and nothing ever removes an entry once learned.
//
// Guarded by a platform.Spinlock, not a plain sync.Mutex: spec.md §5's
// safety argument for connect's TSC busy-wait depends on no holder of
// this lock being preemptable by a NIC interrupt on the same CPU, which
// is exactly what the spinlock's CLI push/pop discipline provides.
type Cache struct {
	mu      *platform.Spinlock
	entries map[wire.Ipv4Addr]wire.EthernetAddress
}

// New returns an empty cache with no interrupt-masking CLI wired in — the
// shape every hosted test in this module uses.
func New() *Cache {
	return NewWithCLI(nil)
}

// NewWithCLI returns an empty cache whose lock disables interrupts on cli
// while held, per spec.md §5. Production wiring (package boot) uses this
// constructor with the kernel's real platform.CLI.
func NewWithCLI(cli platform.CLI) *Cache {
	return &Cache{mu: platform.NewSpinlock(cli), entries: make(map[wire.Ipv4Addr]wire.EthernetAddress)}
}

// Lookup returns the cached Ethernet address for ip, if any.
func (c *Cache) Lookup(ip wire.Ipv4Addr) (wire.EthernetAddress, bool) {
	c.mu.Acquire()
	defer c.mu.Release()

	mac, ok := c.entries[ip]
	return mac, ok
}

// Learn records the mapping ip→mac, overwriting any previous entry.
func (c *Cache) Learn(ip wire.Ipv4Addr, mac wire.EthernetAddress) {
	c.mu.Acquire()
	defer c.mu.Release()

	c.entries[ip] = mac
}

// Resolve sends one broadcast ARP Request for ip through dev and returns
// immediately; it never blocks. The caller is responsible for waiting for
// the reply to land in the cache via Learn (see syscall.Connect).
func Resolve(dev netdev.Device, ip wire.Ipv4Addr) error {
	req := wire.NewArpRequest(dev.HardwareAddress(), dev.ProtocolAddress(), ip)

	eth := wire.EthernetHeader{
		Destination: wire.BroadcastAddress,
		Source:      dev.HardwareAddress(),
		Ethertype:   wire.EthertypeARP,
	}

	buf := wire.New(wire.DefaultCapacity)
	if err := req.Serialize(buf); err != nil {
		return err
	}
	if err := eth.Serialize(buf); err != nil {
		return err
	}

	return dev.Send(buf)
}
