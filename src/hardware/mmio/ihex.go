package mmio

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"bitreg/src/lib/trust"
)

// HexLineType is the record type byte of an Intel HEX line.
type HexLineType int

const (
	DataLine               HexLineType = 0
	EndOfFile              HexLineType = 1
	ExtendedSegmentAddress HexLineType = 2
	StartSegmentAddress    HexLineType = 3
	ExtendedLinearAddress  HexLineType = 4
	StartLinearAddress     HexLineType = 5
)

func (h HexLineType) String() string {
	switch h {
	case DataLine:
		return "DataLine"
	case EndOfFile:
		return "EndOfFile"
	case ExtendedSegmentAddress:
		return "ExtendedSegmentAddress"
	case StartSegmentAddress:
		return "StartSegmentAddress"
	case ExtendedLinearAddress:
		return "ExtendedLinearAddress"
	case StartLinearAddress:
		return "StartLinearAddress"
	}
	return fmt.Sprintf("HexLineType(%d)", int(h))
}

var ErrHexFormat = errors.New("bad intel hex")

const hexDataLineSize = 0x10

type hexRecord struct {
	kind   HexLineType
	offset uint16
	data   []byte
}

// decodeHexLine checks the length and checksum of one ":..." line.
func decodeHexLine(s string) (hexRecord, error) {
	if !strings.HasPrefix(s, ":") {
		return hexRecord{}, fmt.Errorf("%w: line does not start with ':'", ErrHexFormat)
	}
	raw, err := hex.DecodeString(s[1:])
	if err != nil {
		return hexRecord{}, fmt.Errorf("%w: %v", ErrHexFormat, err)
	}
	if len(raw) < 5 {
		return hexRecord{}, fmt.Errorf("%w: line too short", ErrHexFormat)
	}
	if int(raw[0]) != len(raw)-5 {
		return hexRecord{}, fmt.Errorf("%w: length byte %d but %d data bytes", ErrHexFormat, raw[0], len(raw)-5)
	}
	var sum byte
	for _, b := range raw {
		sum += b
	}
	if sum != 0 {
		return hexRecord{}, fmt.Errorf("%w: checksum", ErrHexFormat)
	}
	kind := HexLineType(raw[3])
	if kind > StartLinearAddress {
		return hexRecord{}, fmt.Errorf("%w: unknown record type %d", ErrHexFormat, raw[3])
	}
	return hexRecord{
		kind:   kind,
		offset: uint16(raw[1])<<8 | uint16(raw[2]),
		data:   raw[4 : len(raw)-1],
	}, nil
}

func encodeHexLine(kind HexLineType, offset uint16, data []byte) string {
	raw := make([]byte, 0, len(data)+5)
	raw = append(raw, byte(len(data)), byte(offset>>8), byte(offset), byte(kind))
	raw = append(raw, data...)
	raw = append(raw, createChecksum(raw))
	return ":" + strings.ToUpper(hex.EncodeToString(raw))
}

// createChecksum is the two's complement of the byte sum.
func createChecksum(raw []byte) byte {
	var sum byte
	for _, b := range raw {
		sum += b
	}
	return ^sum + 1
}

// SaveHex writes the non-zero memory as an Intel HEX image. Addresses above
// 32 bits cannot be expressed and are an error.
func (s *Sim) SaveHex(w io.Writer) error {
	bw := bufio.NewWriter(w)
	upper := int64(-1)
	lines := 0
	for _, rg := range s.regions() {
		for off := 0; off < len(rg.Bytes); {
			addr := rg.Addr + uint64(off)
			if addr > 0xFFFFFFFF {
				return fmt.Errorf("%w: address 0x%x needs more than 32 bits", ErrHexFormat, addr)
			}
			if hi := int64(addr >> 16); hi != upper {
				fmt.Fprintln(bw, encodeHexLine(ExtendedLinearAddress, 0, []byte{byte(hi >> 8), byte(hi)}))
				upper = hi
			}
			//a data line may not cross into the next 64k
			n := min(hexDataLineSize, len(rg.Bytes)-off, int(0x10000-(addr&0xFFFF)))
			fmt.Fprintln(bw, encodeHexLine(DataLine, uint16(addr), rg.Bytes[off:off+n]))
			off += n
			lines++
		}
	}
	fmt.Fprintln(bw, encodeHexLine(EndOfFile, 0, nil))
	trust.Infof("sim: saved %d hex data lines", lines)
	return bw.Flush()
}

// LoadHex replaces the memory contents with an Intel HEX image. Start
// address records are ignored.
func (s *Sim) LoadHex(r io.Reader) error {
	mem := make(map[uintptr]byte)
	var base uint64
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec, err := decodeHexLine(text)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		switch rec.kind {
		case DataLine:
			for i, b := range rec.data {
				if b != 0 {
					mem[uintptr(base+uint64(rec.offset)+uint64(i))] = b
				}
			}
		case EndOfFile:
			s.replace(mem)
			return nil
		case ExtendedSegmentAddress, ExtendedLinearAddress:
			if len(rec.data) != 2 {
				return fmt.Errorf("line %d: %w: %s needs 2 bytes", line, ErrHexFormat, rec.kind)
			}
			base = uint64(rec.data[0])<<8 | uint64(rec.data[1])
			if rec.kind == ExtendedSegmentAddress {
				base <<= 4
			} else {
				base <<= 16
			}
		default:
			trust.Debugf("sim: ignoring %s record", rec.kind)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w: no end of file record", ErrHexFormat)
}
