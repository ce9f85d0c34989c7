package ref

// CLI implements platform.CLI as a nested interrupt-disable counter: the
// first Push issues a real CLI, the matching final Pop issues STI. Callers
// (the three singleton spinlocks) nest Push/Pop strictly, so depth never
// goes negative in correct use.
//
// This assumes uniprocessor semantics, per the design's stated limitation:
// on SMP each CPU needs its own depth counter, and the NIC IRQ must be
// pinned to one CPU for the spinlock/interrupt invariant to hold.
type CLI struct {
	depth int
}

func (c *CLI) Push() {
	if c.depth == 0 {
		disableInterrupts()
	}
	c.depth++
}

func (c *CLI) Pop() {
	c.depth--
	if c.depth == 0 {
		enableInterrupts()
	}
}
