// Command bin2hex converts a raw binary image into Intel HEX text, the
// Go-native cousin of original_source/tools/bin2hex.cc's stdin/stdout/file
// argument-count dispatch, rewritten against intelhex.Write instead of
// that tool's informal "addr: bytes" dump.
package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"os"

	"github.com/wdrummond/go6502/intelhex"
)

func main() {
	start := flag.Uint("start", 0, "load address of the first byte")
	in := flag.String("in", "", "input binary file; defaults to stdin")
	out := flag.String("out", "", "output Intel HEX file; defaults to stdout")
	flag.Parse()

	input := os.Stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatalf("bin2hex: opening input: %v", err)
		}
		defer f.Close()
		input = f
	}

	output := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("bin2hex: opening output: %v", err)
		}
		defer f.Close()
		output = f
	}

	data, err := readAll(input)
	if err != nil {
		log.Fatalf("bin2hex: reading input: %v", err)
	}
	if err := intelhex.Write(output, uint16(*start), data); err != nil {
		log.Fatalf("bin2hex: writing output: %v", err)
	}
}

func readAll(f *os.File) ([]byte, error) {
	var data []byte
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		data = append(data, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return data, nil
			}
			return data, err
		}
	}
}
