package disassemble

import (
	"testing"

	"github.com/wdrummond/go6502/cpu"
	"github.com/wdrummond/go6502/memory"
)

func TestStepDocumented(t *testing.T) {
	tests := []struct {
		name    string
		bytes   []uint8
		variant cpu.Variant
		want    string
		length  int
	}{
		{"LDA immediate", []uint8{0xA9, 0x42}, cpu.NMOS, "LDA #$42", 2},
		{"LDA zero page", []uint8{0xA5, 0x10}, cpu.NMOS, "LDA $10", 2},
		{"JMP absolute", []uint8{0x4C, 0x34, 0x12}, cpu.NMOS, "JMP $1234", 3},
		{"ASL accumulator", []uint8{0x0A}, cpu.NMOS, "ASL A", 1},
		{"implied", []uint8{0xEA}, cpu.NMOS, "NOP", 1},
		{"BRA relative (CMOS)", []uint8{0x80, 0x02}, cpu.CMOS, "BRA $0204", 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mem := memory.NewMemory()
			mem.LoadData(0x0200, test.bytes)
			got, length := Step(0x0200, mem, test.variant)
			if got != test.want {
				t.Errorf("Step() = %q, want %q", got, test.want)
			}
			if length != test.length {
				t.Errorf("Step() length = %d, want %d", length, test.length)
			}
		})
	}
}

func TestStepInvalidOnNMOS(t *testing.T) {
	mem := memory.NewMemory()
	mem.LoadData(0x0200, []uint8{0x02})
	got, length := Step(0x0200, mem, cpu.NMOS)
	if length != 1 {
		t.Errorf("Step() length for invalid opcode = %d, want 1", length)
	}
	if got == "" {
		t.Errorf("Step() returned empty text for invalid opcode")
	}
}
