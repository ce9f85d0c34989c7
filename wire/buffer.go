// Package wire implements the packet buffer scratch region and the
// Ethernet/ARP/IPv4/ICMP/UDP wire types this kernel parses and serializes.
//
// Each wire type is a plain value struct decoded from, and encoded into, a
// PacketBuffer by its own ParseX function and Serialize method, with a
// round-trip test per type (the test style of github.com/soypat/lneto)
// rather than anything in the teacher's own code, because the teacher
// (a bare-metal runtime) has no protocol stack of its own to imitate here —
// its nearest analogue is the fixed-layout buffer descriptor in
// soc/nxp/enet/dma.go, which is the grounding source for the bidirectional
// cursor idea (a descriptor's Length/Addr fields are read and written
// in-place against a byte slice the same way).
package wire

import (
	"errors"

	"github.com/usbarmory/netkernel/kerr"
)

// DefaultCapacity is the default PacketBuffer capacity, matching the
// receive buffer capacity configured for this kernel.
const DefaultCapacity = 2048

// PacketBuffer is a fixed-capacity byte region with a bidirectional cursor.
//
// While Written is false, Offset counts bytes consumed from the front by
// Consume (parsing, front-to-back). Once Reserve has been called at least
// once, the buffer is in write mode: Offset counts total bytes written so
// far, and the live payload occupies the trailing Offset bytes of the
// capacity. A single PacketBuffer must not mix both directions — the
// normal pattern is to parse an inbound buffer, then build a fresh reply
// buffer for the outbound direction.
type PacketBuffer struct {
	buf     []byte
	end     int // parse mode: Consume and Remaining stop here
	offset  int
	written bool
}

// New returns a zeroed PacketBuffer of the given capacity.
func New(capacity int) *PacketBuffer {
	return &PacketBuffer{buf: make([]byte, capacity), end: capacity}
}

// NewFromBytes returns a PacketBuffer of DefaultCapacity, with the first n
// bytes of src copied into its front. Used on ingress to copy a frame out
// of a DMA descriptor's backing page so the descriptor can be recycled
// immediately.
func NewFromBytes(src []byte, n int) *PacketBuffer {
	pb := New(DefaultCapacity)
	pb.end = copy(pb.buf, src[:n])
	return pb
}

// Len returns the number of bytes consumed (parse mode) or written
// (serialize mode) so far.
func (p *PacketBuffer) Len() int { return p.offset }

// Written reports whether Reserve has been called at least once.
func (p *PacketBuffer) Written() bool { return p.written }

// Cap returns the buffer's fixed capacity.
func (p *PacketBuffer) Cap() int { return len(p.buf) }

// Bytes returns the live payload: in write mode, the trailing Offset bytes
// of the capacity (the fully encapsulated packet, with the outermost layer,
// written last, sitting at the front); in parse mode, the Offset bytes consumed
// so far from the front.
func (p *PacketBuffer) Bytes() []byte {
	if p.written {
		return p.buf[len(p.buf)-p.offset:]
	}
	return p.buf[:p.offset]
}

var (
	errWrongMode  = errors.New("packetbuffer: wrong mode for operation")
	errShortRead  = errors.New("packetbuffer: short buffer on parse")
	errNoCapacity = errors.New("packetbuffer: capacity exceeded on serialize")
)

// Consume returns the next size bytes starting at the current offset and
// advances the cursor. Only valid before any Reserve call on this buffer.
func (p *PacketBuffer) Consume(size int) ([]byte, error) {
	if p.written {
		return nil, kerr.New(kerr.ParseError, "packetbuffer.consume", errWrongMode)
	}
	if size < 0 || p.offset+size > p.end {
		return nil, kerr.New(kerr.ParseError, "packetbuffer.consume", errShortRead)
	}

	b := p.buf[p.offset : p.offset+size]
	p.offset += size

	return b, nil
}

// Remaining returns the bytes not yet consumed, without advancing the
// cursor. Used by variable-length payload parsing (ICMP, UDP) once the
// fixed header has been consumed.
func (p *PacketBuffer) Remaining() []byte {
	if p.written || p.offset > p.end {
		return nil
	}
	return p.buf[p.offset:p.end]
}

// Reserve returns a size-byte slice positioned immediately in front of
// anything already written, sets write mode, and advances the cursor.
// Each Reserve call effectively prepends an outer header in front of the
// payload written by the previous call — the natural direction for
// building an encapsulated packet from the innermost layer outward.
func (p *PacketBuffer) Reserve(size int) ([]byte, error) {
	if size < 0 || p.offset+size > len(p.buf) {
		return nil, kerr.New(kerr.ParseError, "packetbuffer.reserve", errNoCapacity)
	}

	p.written = true
	p.offset += size
	start := len(p.buf) - p.offset

	return p.buf[start : start+size], nil
}

// Parseable is implemented by wire types that can report their on-wire
// size after having been parsed (relevant for variable-length records).
type Parseable interface {
	Size() int
}

// Serializable is implemented by wire types that can report their on-wire
// size before being serialized (so callers can size outer headers, e.g.
// IPv4's TotalLength, without re-walking the payload).
type Serializable interface {
	Size() int
}
