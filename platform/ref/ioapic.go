package ref

import "github.com/usbarmory/netkernel/ioapic"

// IOAPIC wraps the ioapic package's register-level driver as a
// platform.IOAPIC.
type IOAPIC struct {
	dev *ioapic.IOAPIC
}

// NewIOAPIC wraps a probed ioapic.IOAPIC.
func NewIOAPIC(dev *ioapic.IOAPIC) *IOAPIC {
	return &IOAPIC{dev: dev}
}

func (a *IOAPIC) EnableInterrupt(irq int, vector int) {
	a.dev.EnableInterrupt(irq, vector)
}
