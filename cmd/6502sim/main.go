// Command 6502sim wires memory, busclock, cpu and disassemble together
// into a small driver: load a raw image or an Intel HEX file, then either
// run it to a halt address or single-step it with a trace, grounded on
// jmchacon-6502/disassembler/disassembler.go's load-and-decode shape and
// on master-g-childhood/go/chr2png/main.go for the urfave/cli.v2 Flags/
// Action pattern — the one CLI-framework dependency in the retrieved pack.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"gopkg.in/urfave/cli.v2"

	"github.com/wdrummond/go6502/busclock"
	"github.com/wdrummond/go6502/cpu"
	"github.com/wdrummond/go6502/disassemble"
	"github.com/wdrummond/go6502/intelhex"
	"github.com/wdrummond/go6502/memory"
)

func variantFlag(name string) (cpu.Variant, error) {
	switch name {
	case "nmos":
		return cpu.NMOS, nil
	case "cmos":
		return cpu.CMOS, nil
	case "rcmos":
		return cpu.RCMOS, nil
	default:
		return 0, fmt.Errorf("unknown variant %q (want nmos, cmos or rcmos)", name)
	}
}

func loadImage(mem *memory.Memory, path string, start uint16, hex bool) error {
	if hex {
		return intelhex.LoadInto(mem, path)
	}
	return mem.LoadDataFromFile(start, path)
}

func setup(c *cli.Context) (*cpu.CPU, *busclock.BusClock, error) {
	variant, err := variantFlag(c.String("variant"))
	if err != nil {
		return nil, nil, err
	}
	mem := memory.NewMemory()
	mem.PowerOn()
	if err := loadImage(mem, c.String("image"), uint16(c.Uint("start")), c.Bool("hex")); err != nil {
		return nil, nil, err
	}
	if reset := c.Uint("reset-vector"); reset != 0 {
		mem.LoadData(cpu.ResetVector, []uint8{uint8(reset), uint8(reset >> 8)})
	}
	clk := busclock.New(uint16(c.Uint("mhz")))
	def := &cpu.Def{Variant: variant, Mem: mem}
	proc, err := cpu.Init(def)
	if err != nil {
		return nil, nil, err
	}
	if halt := c.Uint("halt"); halt != 0 {
		proc.SetHaltAddress(uint16(halt))
	}
	return proc, clk, nil
}

func runAction(c *cli.Context) error {
	proc, clk, err := setup(c)
	if err != nil {
		return err
	}
	for {
		used, _, err := proc.ExecuteOne()
		if err != nil {
			fmt.Printf("stopped: %v\n", err)
			return nil
		}
		clk.Delay(used)
	}
}

func stepAction(c *cli.Context) error {
	proc, clk, err := setup(c)
	if err != nil {
		return err
	}
	proc.SetDebug(false)
	for {
		pc := proc.PC
		text, _ := disassemble.Step(pc, proc.Mem, proc.Variant)
		used, _, err := proc.ExecuteOne()
		fmt.Printf("%04X  %-20s A=%02X X=%02X Y=%02X SP=%02X P=%02X\n",
			pc, text, proc.A, proc.X, proc.Y, proc.SP, proc.P)
		if err != nil {
			fmt.Printf("stopped: %v\n", err)
			return nil
		}
		clk.Delay(used)
	}
}

func hexAction(c *cli.Context) error {
	return intelhex.LoadInto(memory.NewMemory(), c.Args().First())
}

func main() {
	commonFlags := []cli.Flag{
		&cli.StringFlag{Name: "variant", Value: "nmos", Usage: "nmos, cmos or rcmos"},
		&cli.StringFlag{Name: "image", Usage: "binary or Intel HEX image to load", Required: true},
		&cli.BoolFlag{Name: "hex", Usage: "treat --image as Intel HEX rather than raw binary"},
		&cli.UintFlag{Name: "start", Usage: "load address for a raw image"},
		&cli.UintFlag{Name: "reset-vector", Usage: "override the reset vector to point here"},
		&cli.UintFlag{Name: "halt", Usage: "address that stops execution"},
		&cli.UintFlag{Name: "mhz", Value: 1, Usage: "target clock frequency in MHz"},
	}

	app := &cli.App{
		Name:  "6502sim",
		Usage: "run or single-step a 6502/65C02/R65C02 image",
		Commands: []*cli.Command{
			{Name: "run", Usage: "run an image to completion or halt", Flags: commonFlags, Action: runAction},
			{Name: "step", Usage: "single-step an image with a trace", Flags: commonFlags, Action: stepAction},
			{Name: "hex", Usage: "validate an Intel HEX file", Action: hexAction},
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
