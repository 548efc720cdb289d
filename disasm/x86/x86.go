// Package x86 implements gadget.Instruction for the x86(-64) architecture
// on top of golang.org/x/arch/x86/x86asm, and the dense per-byte-offset
// disassembly pass described in spec.md §4.3.
package x86

import (
	"github.com/mbutler/ropgrub/binfmt"
	"github.com/mbutler/ropgrub/gadget"
	"golang.org/x/arch/x86/x86asm"
)

// Instruction wraps a decoded x86asm.Inst together with its encoded bytes,
// implementing gadget.Instruction.
type Instruction struct {
	inst  x86asm.Inst
	bytes []byte
}

func (i Instruction) Len() int              { return i.inst.Len }
func (i Instruction) IsRet() bool           { return isRet(i.inst) }
func (i Instruction) IsSys() bool           { return isSys(i.inst) }
func (i Instruction) IsJOP(noisy bool) bool { return isJOP(i.inst, noisy) }
func (i Instruction) IsInvalid() bool       { return isInvalid(i.inst) }

func (i Instruction) IsGadgetTail(rop, sys, jop, noisy bool) bool {
	return isGadgetTail(i.inst, rop, sys, jop, noisy)
}

func (i Instruction) IsROPGadgetHead(noisy bool) bool {
	return isROPGadgetHead(i.inst, noisy)
}

func (i Instruction) IsStackPivotHead() bool { return isStackPivotHead(i.inst) }
func (i Instruction) IsStackPivotTail() bool { return isStackPivotTail(i.inst) }
func (i Instruction) IsBasePivotHead() bool  { return isBasePivotHead(i.inst) }
func (i Instruction) Format() string         { return formatInst(i.inst) }
func (i Instruction) Bytes() []byte          { return i.bytes }

// invalidInstruction is the sentinel occupying every index where decoding
// failed or ran past the end of the section.
var invalidInstruction = Instruction{}

// mode converts a binfmt.Bitness into the x86asm decode-mode argument.
func mode(bitness binfmt.Bitness) int {
	if bitness == binfmt.Bits64 {
		return 64
	}
	return 32
}

// Disassemble produces the dense per-offset index of spec.md §4.3: for every
// byte offset in the section, a decode is attempted as though execution
// began there. Offsets that fail to decode, or whose encoding runs past the
// end of the buffer, receive the invalid sentinel rather than an error, so
// scanning can proceed densely across the whole section regardless of how
// many offsets are not real instruction starts.
func Disassemble(sec binfmt.Section) ([]gadget.Instruction, error) {
	data := sec.Bytes
	idx := make([]gadget.Instruction, len(data))
	m := mode(sec.Bitness)

	for i := range data {
		inst, err := x86asm.Decode(data[i:], m)
		if err != nil || inst.Len == 0 || i+inst.Len > len(data) {
			idx[i] = invalidInstruction
			continue
		}
		idx[i] = Instruction{
			inst:  inst,
			bytes: data[i : i+inst.Len],
		}
	}
	return idx, nil
}
