package ref

import (
	"os"
	"testing"
)

func TestPhysVirtRoundTrip(t *testing.T) {
	virt := uint32(KernBase + 0x1000)

	phys := PhysOf(virt)
	if phys != 0x1000 {
		t.Fatalf("PhysOf(%#x) = %#x, want %#x", virt, phys, 0x1000)
	}

	if got := VirtOf(phys); got != virt {
		t.Fatalf("VirtOf(%#x) = %#x, want %#x", phys, got, virt)
	}
}

func TestTrapFrameArgInt(t *testing.T) {
	f := &TrapFrame{Ints: [6]int{10, 20, 30, 0, 0, 0}}

	v, err := f.ArgInt(1)
	if err != nil {
		t.Fatalf("ArgInt(1): %v", err)
	}
	if v != 20 {
		t.Fatalf("ArgInt(1) = %d, want 20", v)
	}

	if _, err := f.ArgInt(6); err == nil {
		t.Fatal("expected error for out-of-range argument index")
	}
	if _, err := f.ArgInt(-1); err == nil {
		t.Fatal("expected error for negative argument index")
	}
}

func TestTrapFrameArgPtr(t *testing.T) {
	f := &TrapFrame{Ptrs: [6][]byte{{1, 2, 3, 4}}}

	b, err := f.ArgPtr(0, 3)
	if err != nil {
		t.Fatalf("ArgPtr(0, 3): %v", err)
	}
	if len(b) != 3 || b[0] != 1 || b[2] != 3 {
		t.Fatalf("ArgPtr(0, 3) = %v", b)
	}

	if _, err := f.ArgPtr(0, 10); err == nil {
		t.Fatal("expected error requesting more bytes than the argument carries")
	}
	if _, err := f.ArgPtr(6, 1); err == nil {
		t.Fatal("expected error for out-of-range argument index")
	}
}

func TestConsoleWritesToFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "console")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	c := NewConsole(f)
	c.Write("net: ready\n")

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "net: ready\n" {
		t.Fatalf("console contents = %q", data)
	}
}
