package memory

import "testing"

func TestRAMReadWrite(t *testing.T) {
	m := NewMemory()
	m.Write(0x1234, 0x42)
	if got := m.Read(0x1234); got != 0x42 {
		t.Fatalf("Read = %#02x, want 0x42", got)
	}
}

func TestROMWritesDropped(t *testing.T) {
	m := NewMemory()
	if err := m.MapROM(0xF000, 0xFFFF, []uint8{0xAA, 0xBB}); err != nil {
		t.Fatalf("MapROM: %v", err)
	}
	m.Write(0xF000, 0x99)
	if got := m.Read(0xF000); got != 0xAA {
		t.Fatalf("ROM write landed: Read = %#02x, want 0xAA", got)
	}
}

func TestOverlapRejected(t *testing.T) {
	m := NewMemory()
	if err := m.MapROM(0xF000, 0xFFFF, nil); err != nil {
		t.Fatalf("first MapROM: %v", err)
	}
	err := m.MapWatchedRAM(0xF800, 0xF900)
	if err == nil {
		t.Fatal("expected RangeOverlap, got nil")
	}
	if _, ok := err.(*RangeOverlap); !ok {
		t.Fatalf("expected *RangeOverlap, got %T: %v", err, err)
	}
}

func TestWatcherFires(t *testing.T) {
	m := NewMemory()
	if err := m.MapWatchedRAM(0x0300, 0x03FF); err != nil {
		t.Fatalf("MapWatchedRAM: %v", err)
	}
	var sawAddr uint16
	var sawVal uint8
	if err := m.AddWatcher(0x0300, 0x03FF, func(addr uint16, val uint8) {
		sawAddr, sawVal = addr, val
	}); err != nil {
		t.Fatalf("AddWatcher: %v", err)
	}
	m.Write(0x0310, 0x55)
	if sawAddr != 0x0310 || sawVal != 0x55 {
		t.Fatalf("watcher saw (%#04x, %#02x), want (0x0310, 0x55)", sawAddr, sawVal)
	}
}

func TestHookedIO(t *testing.T) {
	m := NewMemory()
	var written uint8
	if err := m.MapIO(0xD000, 0xD000,
		func(addr uint16) uint8 { return 0x7E },
		func(addr uint16, val uint8) { written = val },
	); err != nil {
		t.Fatalf("MapIO: %v", err)
	}
	if got := m.Read(0xD000); got != 0x7E {
		t.Fatalf("hooked read = %#02x, want 0x7E", got)
	}
	m.Write(0xD000, 0x11)
	if written != 0x11 {
		t.Fatalf("hooked write saw %#02x, want 0x11", written)
	}
}

func TestReadWord(t *testing.T) {
	m := NewMemory()
	m.Write(0x2000, 0x34)
	m.Write(0x2001, 0x12)
	if got := m.ReadWord(0x2000); got != 0x1234 {
		t.Fatalf("ReadWord = %#04x, want 0x1234", got)
	}
}

func TestLoadDataSkipsHookedIO(t *testing.T) {
	m := NewMemory()
	if err := m.MapIO(0xD000, 0xD0FF, nil, nil); err != nil {
		t.Fatalf("MapIO: %v", err)
	}
	data := make([]uint8, 0x200)
	for i := range data {
		data[i] = 0xFF
	}
	m.LoadData(0xCF00, data)
	if got := m.Read(0xD000); got != 0 {
		t.Fatalf("LoadData wrote into hooked range: Read = %#02x, want 0", got)
	}
	if got := m.Read(0xCF00); got != 0xFF {
		t.Fatalf("LoadData did not write plain RAM: Read = %#02x, want 0xFF", got)
	}
}
