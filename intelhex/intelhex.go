// Package intelhex reads and writes the standard Intel HEX record format
// (":llaaaatt[dd...]cc"), the on-disk shape original_source/6502/debugger.h
// names loadHexFile/saveToHexFile for and original_source/tools/bin2hex.cc
// exists to produce an ad hoc cousin of. LoadInto feeds parsed records
// through memory.Memory.LoadData, the same bypass-write-protect path every
// other loader in this module uses.
package intelhex

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/wdrummond/go6502/memory"
)

// RecordType identifies an Intel HEX record's purpose. Only the two types
// this module needs to round-trip a flat binary image are implemented;
// extended-address and start-address record types are out of scope.
type RecordType uint8

const (
	Data RecordType = 0x00
	EOF  RecordType = 0x01
)

// Record is one parsed line of an Intel HEX file.
type Record struct {
	Address uint16
	Type    RecordType
	Data    []byte
}

// ParseError reports a malformed or checksum-failing record.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("intelhex: line %d: %s", e.Line, e.Msg)
}

// Load reads and parses every record in path.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &memory.FileError{Path: path, Err: err}
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads Intel HEX records from r until EOF or an EOF record.
func Parse(r io.Reader) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		rec, err := parseLine(text, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		if rec.Type == EOF {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseLine(text string, line int) (Record, error) {
	if text[0] != ':' {
		return Record{}, &ParseError{line, "record does not start with ':'"}
	}
	raw := text[1:]
	bytes := make([]byte, len(raw)/2)
	for i := range bytes {
		var b int
		if _, err := fmt.Sscanf(raw[i*2:i*2+2], "%02x", &b); err != nil {
			return Record{}, &ParseError{line, fmt.Sprintf("bad hex digit: %v", err)}
		}
		bytes[i] = byte(b)
	}
	if len(bytes) < 5 {
		return Record{}, &ParseError{line, "record too short"}
	}
	length := int(bytes[0])
	addr := uint16(bytes[1])<<8 | uint16(bytes[2])
	typ := RecordType(bytes[3])
	if len(bytes) != length+5 {
		return Record{}, &ParseError{line, "length field does not match record size"}
	}
	data := bytes[4 : 4+length]
	checksum := bytes[4+length]

	var sum byte
	for _, b := range bytes[:len(bytes)-1] {
		sum += b
	}
	if want := byte(-sum); want != checksum {
		return Record{}, &ParseError{line, fmt.Sprintf("checksum mismatch: got %#02x want %#02x", checksum, want)}
	}

	return Record{Address: addr, Type: typ, Data: data}, nil
}

// LoadInto parses path and loads every Data record's bytes into mem at its
// recorded address via memory.LoadData.
func LoadInto(mem *memory.Memory, path string) error {
	records, err := Load(path)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Type == Data {
			mem.LoadData(r.Address, r.Data)
		}
	}
	return nil
}

// Write emits data as Intel HEX, starting at start and wrapping to a new
// record every 16 bytes, followed by a terminating EOF record.
func Write(w io.Writer, start uint16, data []byte) error {
	const chunk = 16
	addr := start
	for len(data) > 0 {
		n := chunk
		if n > len(data) {
			n = len(data)
		}
		if err := writeRecord(w, addr, Data, data[:n]); err != nil {
			return err
		}
		data = data[n:]
		addr += uint16(n)
	}
	return writeRecord(w, 0, EOF, nil)
}

func writeRecord(w io.Writer, addr uint16, typ RecordType, data []byte) error {
	bytes := make([]byte, 0, len(data)+4)
	bytes = append(bytes, byte(len(data)), byte(addr>>8), byte(addr), byte(typ))
	bytes = append(bytes, data...)
	var sum byte
	for _, b := range bytes {
		sum += b
	}
	bytes = append(bytes, byte(-sum))

	if _, err := fmt.Fprint(w, ":"); err != nil {
		return err
	}
	for _, b := range bytes {
		if _, err := fmt.Fprintf(w, "%02X", b); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
