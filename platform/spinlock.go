package platform

import "sync/atomic"

// Spinlock is the interrupt-disabling mutual-exclusion lock spec.md §5
// describes for the three process-wide singletons (the NIC, the ARP
// cache, the socket table): Acquire spins on an atomic compare-and-swap
// until it wins the lock, then pushes the CPU's interrupt-disable depth
// so a NIC interrupt on the same CPU cannot preempt the holder; Release
// drops the lock and pops the depth, re-enabling interrupts on the final
// pop. A nil CLI degrades Spinlock to a bare spin-lock, which is all a
// hosted test environment (no privileged CLI/STI instructions available)
// needs.
type Spinlock struct {
	locked uint32
	cli    CLI
}

// NewSpinlock returns a Spinlock backed by cli. cli may be nil, in which
// case Acquire/Release only perform the atomic CAS, with no interrupt
// masking — the shape every package test in this module uses, since
// tests run hosted and never field a real interrupt.
func NewSpinlock(cli CLI) *Spinlock {
	return &Spinlock{cli: cli}
}

// Acquire spins until the lock is won, then disables interrupts on this
// CPU (via the first nested Push) before returning.
func (l *Spinlock) Acquire() {
	for !atomic.CompareAndSwapUint32(&l.locked, 0, 1) {
		pauseHint()
	}

	if l.cli != nil {
		l.cli.Push()
	}
}

// Release re-enables interrupts (on the last nested Pop) and then frees
// the lock for the next Acquire.
func (l *Spinlock) Release() {
	if l.cli != nil {
		l.cli.Pop()
	}

	atomic.StoreUint32(&l.locked, 0)
}

// pauseHint is a spin-wait yield point; on real hardware this would be a
// PAUSE instruction, but nothing in this module's CLI/TSC split needs a
// dedicated assembly stub for it, so a no-op suffices here — the CAS loop
// itself is what spec.md §5 describes, and contention never lasts longer
// than a handful of instructions in this single-core design.
func pauseHint() {}
