package ref

import "github.com/usbarmory/netkernel/platform"

// CPUFreqMHz is the target platform's TSC tick rate. The 82540EM reference
// environment this kernel targets runs at a fixed ~3000 MHz TSC.
const CPUFreqMHz = 3000

// TSC implements platform.TSC by reading the CPU's time stamp counter.
type TSC struct{}

func (TSC) Read() uint64         { return rdtsc() }
func (TSC) FrequencyMHz() uint64 { return CPUFreqMHz }

var _ platform.TSC = TSC{}

// rdtsc is implemented in tsc_amd64.s.
func rdtsc() uint64
