// Package functionality runs the well-known Klaus Dormann 6502 functional
// test suite end to end, the same shape jmchacon-6502/functionality_test.go
// uses, adapted to this module's atomic ExecuteOne model and multi-variant
// opcode table. The ROM image itself is not part of this repository (no
// binary fixtures were available to fetch for it); the test skips itself
// when testdata/6502_functional_test.bin is absent rather than failing.
package functionality

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wdrummond/go6502/cpu"
	"github.com/wdrummond/go6502/memory"
)

const (
	functionalTestFile = "testdata/6502_functional_test.bin"
	functionalTestLoad = 0x0000
	functionalTestPC   = 0x0400
	// successPC is the address the suite jumps to in an infinite loop once
	// every test has passed; a PC stuck anywhere else after the loop
	// detector fires indicates the specific test that failed.
	successPC = 0x3469
)

func TestKlausDormannFunctional(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running functional ROM test in short mode")
	}
	path := functionalTestFile
	if _, err := os.Stat(path); err != nil {
		t.Skipf("skipping: %s not present (%v)", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}

	mem := memory.NewMemory()
	mem.LoadData(functionalTestLoad, data)
	mem.LoadData(cpu.ResetVector, []uint8{uint8(functionalTestPC & 0xFF), uint8(functionalTestPC >> 8)})

	c, err := cpu.Init(&cpu.Def{Variant: cpu.NMOS, Mem: mem})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	c.EnableLoopDetection()

	var instructions, cycles int
	for {
		used, _, err := c.ExecuteOne()
		cycles += used
		instructions++
		if err != nil {
			var halted *cpu.Halted
			if e, ok := err.(*cpu.Halted); ok {
				halted = e
			}
			if halted == nil {
				t.Fatalf("unexpected error after %d instructions: %v", instructions, err)
			}
			break
		}
	}

	if c.PC != successPC {
		t.Fatalf("functional test stopped at PC %#04x (not the success loop at %#04x) after %d instructions, %d cycles",
			c.PC, successPC, instructions, cycles)
	}
	t.Logf("functional test succeeded: %d instructions, %d cycles", instructions, cycles)
}

func TestKlausDormannFunctionalCMOS(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running functional ROM test in short mode")
	}
	path := filepath.Join("testdata", "6502_functional_test.bin")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("skipping: %s not present (%v)", path, err)
	}
	// The Klaus Dormann suite is written against NMOS semantics (it
	// exercises the decimal-mode N/Z/V quirk directly); running it on
	// CMOS is only useful as a smoke test that the CMOS table decodes the
	// same documented opcode bytes, not as a pass/fail oracle, so this
	// just checks it runs without an InvalidOpcode for a bounded number
	// of instructions rather than asserting the NMOS success address.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	mem := memory.NewMemory()
	mem.LoadData(functionalTestLoad, data)
	mem.LoadData(cpu.ResetVector, []uint8{uint8(functionalTestPC & 0xFF), uint8(functionalTestPC >> 8)})

	c, err := cpu.Init(&cpu.Def{Variant: cpu.CMOS, Mem: mem})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	for i := 0; i < 1_000_000; i++ {
		if _, _, err := c.ExecuteOne(); err != nil {
			if _, ok := err.(*cpu.InvalidOpcode); ok {
				t.Fatalf("CMOS run hit an invalid opcode after %d instructions: %v", i, err)
			}
			return
		}
	}
}
