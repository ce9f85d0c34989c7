// First-fit memory allocator for DMA buffers
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dma is a first-fit allocator over a fixed physical address range,
// used here to back the 4 KiB pages that the E1000 RX/TX descriptor rings
// and descriptor buffers live in. The kernel never lets the Go runtime's own
// allocator touch this range.
package dma

import "container/list"

var global *Region

// Init initializes the global DMA region over the given address range. The
// caller must guarantee that range is never touched by the Go runtime's own
// allocator (in this kernel, platform/ref.PageAllocator hands out its
// pages from this range).
func Init(start, size uint) {
	global = &Region{start: start, size: size}
	global.freeBlocks = list.New()
	global.freeBlocks.PushFront(&block{addr: start, size: size})
	global.usedBlocks = make(map[uint]*block)
}

// Default returns the global DMA region, or nil if Init has not been called.
func Default() *Region {
	return global
}

// Reserve is the equivalent of Region.Reserve on the global DMA region.
func Reserve(size int, align int) (addr uint, buf []byte) {
	return global.Reserve(size, align)
}

// Reserved is the equivalent of Region.Reserved on the global DMA region.
func Reserved(buf []byte) (res bool, addr uint) {
	return global.Reserved(buf)
}

// Alloc is the equivalent of Region.Alloc on the global DMA region.
func Alloc(buf []byte, align int) (addr uint) {
	return global.Alloc(buf, align)
}

// Read is the equivalent of Region.Read on the global DMA region.
func Read(addr uint, off int, buf []byte) {
	global.Read(addr, off, buf)
}

// Write is the equivalent of Region.Write on the global DMA region.
func Write(addr uint, off int, buf []byte) {
	global.Write(addr, off, buf)
}

// Free is the equivalent of Region.Free on the global DMA region.
func Free(addr uint) {
	global.Free(addr)
}

// Release is the equivalent of Region.Release on the global DMA region.
func Release(addr uint) {
	global.Release(addr)
}
