package e1000

import (
	"errors"

	"github.com/usbarmory/netkernel/bits"
	"github.com/usbarmory/netkernel/internal/reg"
	"github.com/usbarmory/netkernel/kerr"
	"github.com/usbarmory/netkernel/klog"
	"github.com/usbarmory/netkernel/netdev"
	"github.com/usbarmory/netkernel/pci"
	"github.com/usbarmory/netkernel/platform"
	"github.com/usbarmory/netkernel/wire"
)

var errFrameTooLarge = errors.New("e1000: frame exceeds one page")

// Device satisfies netdev.Device, the capability set boot.Wire consumes.
var _ netdev.Device = (*Device)(nil)

// Stats are diagnostic counters surfaced for inspection only; nothing in
// the driver's control flow consults them.
type Stats struct {
	FramesReceived  uint32
	FramesSent      uint32
	FragmentedDrops uint32
	Overruns        uint32
}

// Device is an initialized 82540EM-class controller: its MMIO base, both
// descriptor rings, and the software-side ring indices.
//
// Send and HandleInterrupt both acquire lock before touching the rings.
// The address accessors, ClearInterrupts and OnReceive do not take it.
type Device struct {
	base uint32

	mac wire.EthernetAddress
	ip  wire.Ipv4Addr

	pages  platform.PageAllocator
	ioapic platform.IOAPIC

	lock  *platform.Spinlock
	rx    ring
	rxIdx int
	tx    ring
	txIdx int

	onReceive func(buf *wire.PacketBuffer)

	Stats Stats
}

// Open locates the device on bus 0 among its first maxSlot device slots,
// enables it, and runs the full RX/TX initialization sequence. It panics
// (InitFatal) if no matching device is found. cli backs the device's
// spinlock and may be nil in a hosted test environment.
func Open(pages platform.PageAllocator, ioa platform.IOAPIC, cli platform.CLI, ip wire.Ipv4Addr, maxSlot int) *Device {
	pd := pci.Probe(0, VendorID, DeviceID, maxSlot)
	if pd == nil {
		kerr.Fatal("e1000: no matching PCI device found")
	}

	pd.SetBusMaster()

	d := &Device{
		base:   uint32(pd.BaseAddress(0)),
		ip:     ip,
		pages:  pages,
		ioapic: ioa,
		lock:   platform.NewSpinlock(cli),
	}

	d.mac = d.readMAC()
	d.initRx()
	d.initTx()
	d.setInterruptMask()
	d.ioapic.EnableInterrupt(IRQ, IRQ)

	klog.Infof("e1000: ready, mac=%s ip=%s", d.mac, d.ip)

	return d
}

func (d *Device) reg(off uint32) uint32         { return reg.Read(d.base + off) }
func (d *Device) setReg(off uint32, val uint32) { reg.Write(d.base+off, val) }

// readMAC reads the station address out of the EEPROM by polling EERD for
// three 16-bit words.
func (d *Device) readMAC() wire.EthernetAddress {
	var mac wire.EthernetAddress

	for i := 0; i < 3; i++ {
		d.setReg(EERD, 1<<eerdStart|uint32(i)<<8)

		for d.reg(EERD)&(1<<eerdDone) == 0 {
		}

		word := d.reg(EERD) >> 16
		mac[2*i] = byte(word)
		mac[2*i+1] = byte(word >> 8)
	}

	return mac
}

func (d *Device) initRx() {
	d.rx.descPage = d.pages.AllocPage()

	d.setReg(RAL, uint32(d.mac[0])|uint32(d.mac[1])<<8|uint32(d.mac[2])<<16|uint32(d.mac[3])<<24)
	d.setReg(RAH, uint32(d.mac[4])|uint32(d.mac[5])<<8)

	for i := 0; i < RingSize; i++ {
		page := d.pages.AllocPage()
		d.rx.data[i] = page

		desc := d.rx.rx(i)
		desc.Addr = uint64(page.Phys)
		desc.Length = 0
		desc.Status = 0
	}

	d.setReg(RDBAL, d.rx.descPage.Phys)
	d.setReg(RDBAH, 0)
	d.setReg(RDLEN, platform.PageSize)
	d.setReg(RDH, 0)
	d.setReg(RDT, RingSize-1)
	d.rxIdx = 0

	rctl := uint32(1<<rctlEN | 1<<rctlSBP | 1<<rctlUPE | 1<<rctlMPE | 1<<rctlLPE | 1<<rctlBAM | 1<<rctlBSEX | rctlBSizeMask)
	d.setReg(RCTL, rctl)
}

func (d *Device) initTx() {
	d.tx.descPage = d.pages.AllocPage()

	for i := 0; i < RingSize; i++ {
		page := d.pages.AllocPage()
		d.tx.data[i] = page

		desc := d.tx.tx(i)
		desc.Addr = uint64(page.Phys)
		desc.Options = 0
	}

	d.setReg(TDBAL, d.tx.descPage.Phys)
	d.setReg(TDBAH, 0)
	d.setReg(TDLEN, platform.PageSize)
	d.setReg(TDH, 0)
	d.setReg(TDT, 0)
	d.txIdx = 1

	tctl := uint32(1<<tctlEN | 1<<tctlPSP | tctlCT | tctlCOLD)
	d.setReg(TCTL, tctl)
	d.setReg(TIPG, tipgDefault)
}

func (d *Device) setInterruptMask() {
	d.setReg(IMS, imsEnabled)
}

// HardwareAddress returns the station MAC address read from the EEPROM.
func (d *Device) HardwareAddress() wire.EthernetAddress { return d.mac }

// ProtocolAddress returns the device's configured IPv4 address.
func (d *Device) ProtocolAddress() wire.Ipv4Addr { return d.ip }

// SetProtocolAddress reconfigures the device's IPv4 address.
func (d *Device) SetProtocolAddress(ip wire.Ipv4Addr) { d.ip = ip }

// ClearInterrupts masks all interrupt causes.
func (d *Device) ClearInterrupts() { d.setReg(IMS, 0) }

// OnReceive installs the frame handler invoked from HandleInterrupt.
func (d *Device) OnReceive(handler func(buf *wire.PacketBuffer)) { d.onReceive = handler }

// Send copies buf's live bytes into the next TX descriptor's data page and
// hands it to the hardware.
func (d *Device) Send(buf *wire.PacketBuffer) error {
	data := buf.Bytes()
	if len(data) > platform.PageSize {
		return kerr.New(kerr.ParseError, "e1000.send", errFrameTooLarge)
	}

	d.lock.Acquire()
	defer d.lock.Release()

	desc := d.tx.tx(d.txIdx)
	copy(d.tx.data[d.txIdx].Virt, data)

	var options uint64
	bits.SetN64(&options, 0, txLengthMask, uint64(len(data)))
	bits.SetN64(&options, txDTYPShift, 0xf, txDTYPData)
	bits.Set64(&options, txDCMDShift+0) // EOP
	bits.Set64(&options, txDCMDShift+3) // RS
	bits.Set64(&options, txDCMDShift+5) // IFCS
	desc.Options = options

	d.txIdx = (d.txIdx + 1) % RingSize
	d.setReg(TDT, uint32(d.txIdx))
	d.Stats.FramesSent++

	return nil
}

// HandleInterrupt is the driver's interrupt handler: it reads-and-clears
// ICR, treats a receiver overrun as fatal, and otherwise drains the RX
// ring, dispatching each completed frame to the installed handler.
//
// The device lock is held only across the ring bookkeeping, not across
// the dispatch to the installed handler: the pipeline's ARP/ICMP
// responders call back into Send on this same device, and a non-reentrant
// spinlock held across that call would deadlock against itself. This
// mirrors how the ring is the only state the lock actually protects —
// the handler callback is free-running, ordinary Go code.
func (d *Device) HandleInterrupt() {
	d.lock.Acquire()
	cause := d.reg(ICR)

	if cause&icrRXO != 0 {
		d.Stats.Overruns++
		d.lock.Release()
		kerr.Fatal("e1000: receiver overrun")
	}

	d.drainRx()
	d.lock.Release()
}

// drainRx must be called with d.lock held; it releases the lock around
// each onReceive callback and reacquires it before continuing the ring
// walk, so a responder's Send doesn't deadlock against this same lock.
func (d *Device) drainRx() {
	head := int(d.reg(RDH))

	for d.rxIdx != head {
		desc := d.rx.rx(d.rxIdx)

		if desc.Status&rxStatusEOP == 0 {
			d.Stats.FragmentedDrops++
			kerr.Fatal("e1000: fragmented RX descriptor")
		}

		n := int(desc.Length)
		if n >= FCSLen {
			n -= FCSLen
		}

		d.Stats.FramesReceived++

		rxIdx := d.rxIdx
		desc.Status = 0
		d.rxIdx = (d.rxIdx + 1) % RingSize

		if d.onReceive != nil {
			buf := wire.NewFromBytes(d.rx.data[rxIdx].Virt, n)
			d.lock.Release()
			d.onReceive(buf)
			d.lock.Acquire()
		}
	}

	tail := (d.rxIdx - 1 + RingSize) % RingSize
	d.setReg(RDT, uint32(tail))
}
