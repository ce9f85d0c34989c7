// Package ref is the one concrete platform.* implementation this kernel
// ships: a page allocator over dma.Region, a console writer, an IOAPIC
// wrapper, a CLI push/pop counter backed by real CLI/STI, a TSC reader, and
// a trap-frame syscall argument source.
package ref

import (
	"sync"

	"github.com/usbarmory/netkernel/dma"
	"github.com/usbarmory/netkernel/platform"
)

// KernBase is the kernel's virtual/physical offset: virt = phys + KernBase,
// phys = virt - KernBase.
const KernBase = 0x80000000

// PhysOf returns the physical address backing a kernel virtual address.
func PhysOf(virt uint32) uint32 { return virt - KernBase }

// VirtOf returns the kernel virtual address mapping a physical address.
func VirtOf(phys uint32) uint32 { return phys + KernBase }

// PageAllocator allocates fixed 4 KiB pages out of a dma.Region. Pages are
// always zeroed before being handed out, matching alloc_page's contract.
type PageAllocator struct {
	mu     sync.Mutex
	region *dma.Region
}

// NewPageAllocator wraps the DMA region initialized at start for size
// bytes. The caller (kernel init) must have already called dma.Init.
func NewPageAllocator() *PageAllocator {
	return &PageAllocator{region: dma.Default()}
}

// AllocPage returns a fresh, zeroed page whose Virt slice is a live view
// onto the page's memory: writes through Virt are what the NIC DMA engine
// reads and writes too. It never fails in steady state: callers size their
// DMA region generously enough that descriptor ring allocation at boot
// cannot run out.
func (a *PageAllocator) AllocPage() platform.Page {
	a.mu.Lock()
	defer a.mu.Unlock()

	addr, virt := a.region.Reserve(platform.PageSize, platform.PageSize)
	if addr == 0 {
		platformFatal("page allocator out of memory")
	}
	for i := range virt {
		virt[i] = 0
	}

	return platform.Page{Phys: uint32(addr), Virt: virt}
}

// FreePage returns a page to the region. In this kernel descriptor rings
// are allocated once at boot and never released, so this exists for
// interface completeness rather than a live code path.
func (a *PageAllocator) FreePage(p platform.Page) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.region.Release(uint(p.Phys))
}

func platformFatal(msg string) { panic(msg) }
