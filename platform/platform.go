// Package platform is the narrow boundary between the network stack/driver
// and the surrounding micro-kernel: physical page allocation, console
// output, interrupt-controller unmasking, the CLI push/pop discipline, the
// TSC, and syscall argument marshalling. Every other package in this module
// depends only on these interfaces, never on a concrete kernel; platform/ref
// supplies the one implementation this kernel ships, grounded on the dma,
// ioapic and internal/reg packages.
package platform

import "time"

// Page is a single physical page backing a DMA descriptor or buffer.
type Page struct {
	// Phys is the page's physical address, as programmed into a
	// descriptor's address field.
	Phys uint32
	// Virt is a byte slice over the page's virtual address, length
	// PageSize, through which the kernel reads and writes its contents.
	Virt []byte
}

// PageSize is the fixed page granularity this kernel allocates in: one
// NIC descriptor, one page.
const PageSize = 4096

// PageAllocator hands out zeroed, permanently page-aligned physical pages.
// AllocPage never fails in steady state; FreePage returns a page once its
// owning descriptor is permanently retired (in practice, never, since
// descriptor rings are allocated once at init and live for the kernel's
// lifetime).
type PageAllocator interface {
	AllocPage() Page
	FreePage(Page)
}

// Console is the kernel's sole debug output sink.
type Console interface {
	Write(msg string)
}

// IOAPIC unmasks a single legacy interrupt line at boot, routing irq to
// the given interrupt vector.
type IOAPIC interface {
	EnableInterrupt(irq int, vector int)
}

// CLI models the nested interrupt-disable counter backing every spinlock
// acquire/release in this kernel: the first Push disables interrupts, the
// last matching Pop re-enables them.
type CLI interface {
	Push()
	Pop()
}

// TSC is the Time Stamp Counter, used for the ARP reply busy-wait timeout.
type TSC interface {
	Read() uint64
	// FrequencyMHz is the CPU's TSC tick rate, used to convert a cycle
	// delta into a time.Duration.
	FrequencyMHz() uint64
}

// Elapsed converts a TSC cycle delta into a duration.
func Elapsed(t TSC, startCycles uint64) time.Duration {
	delta := t.Read() - startCycles
	ns := delta * 1000 / t.FrequencyMHz()
	return time.Duration(ns) * time.Nanosecond
}

// ArgSource pulls trusted syscall arguments out of the calling process's
// trap frame, the same role as xv6's argint/argptr.
type ArgSource interface {
	ArgInt(i int) (int, error)
	ArgPtr(i int, size int) ([]byte, error)
}
