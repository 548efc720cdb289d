package riscv

import (
	"github.com/mbutler/ropgrub/binfmt"
	"github.com/mbutler/ropgrub/gadget"
)

// invalidInstruction is the sentinel occupying offsets that don't start a
// recognizable encoding, or whose encoding runs past the end of the section
// (spec §4.4). Offsets inside another instruction's span are decoded on
// their own like any other offset.
var invalidInstruction = gadget.Instruction(Instruction{in: Instr{Op: OpIllegal}})

// Disassemble produces the dense per-byte-offset index described in spec
// §4.4: for every offset in the section, a decode is attempted as though an
// instruction began there, at the ISA width implied by the section's
// bitness (RV32 or RV64).
func Disassemble(sec binfmt.Section) ([]gadget.Instruction, error) {
	data := sec.Bytes
	idx := make([]gadget.Instruction, len(data))
	xlen := mode(sec.Bitness)

	for i := range data {
		in := Decode(data[i:], xlen)
		if in.Op == OpIllegal || in.Len == 0 || i+in.Len > len(data) {
			idx[i] = invalidInstruction
			continue
		}
		idx[i] = Instruction{in: in}
	}
	return idx, nil
}
