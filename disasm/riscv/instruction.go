package riscv

import "github.com/mbutler/ropgrub/binfmt"

const (
	regSP = 2 // x2
	regS0 = 8 // x8 (s0/fp)
)

// Instruction wraps a decoded Instr, implementing gadget.Instruction for
// RV32/RV64.
type Instruction struct {
	in Instr
}

func (i Instruction) Len() int { return i.in.Len }

func (i Instruction) IsRet() bool { return i.in.Op == OpRet }

func (i Instruction) IsSys() bool { return i.in.Op == OpECALL }

func (i Instruction) IsJOP(noisy bool) bool {
	switch classifyFlow(i.in.Op) {
	case flowIndirectBranch:
		return true
	case flowUnconditionalBranch:
		return noisy
	default:
		return false
	}
}

func (i Instruction) IsInvalid() bool { return i.in.Op == OpIllegal }

func (i Instruction) IsGadgetTail(rop, sys, jop, noisy bool) bool {
	if i.IsInvalid() {
		return false
	}
	if classifyFlow(i.in.Op) == flowNext {
		return false
	}
	if rop && i.IsRet() {
		return true
	}
	if sys && i.IsSys() {
		return true
	}
	if jop && i.IsJOP(noisy) {
		return true
	}
	return false
}

func (i Instruction) IsROPGadgetHead(noisy bool) bool {
	if i.IsInvalid() {
		return false
	}
	switch classifyFlow(i.in.Op) {
	case flowNext, flowInterrupt, flowCall:
		return true
	case flowConditionalBranch:
		return noisy
	default:
		return false
	}
}

func (i Instruction) IsStackPivotHead() bool { return modifiesReg(i.in, regSP) }
func (i Instruction) IsStackPivotTail() bool { return i.IsRet() }
func (i Instruction) IsBasePivotHead() bool  { return modifiesReg(i.in, regS0) }

func (i Instruction) Format() string { return formatInstr(i.in) }

func (i Instruction) Bytes() []byte {
	if i.in.Len == 2 {
		return []byte{byte(i.in.raw), byte(i.in.raw >> 8)}
	}
	if i.in.Len == 4 {
		return []byte{byte(i.in.raw), byte(i.in.raw >> 8), byte(i.in.raw >> 16), byte(i.in.raw >> 24)}
	}
	return nil
}

// modifiesReg reports whether in writes target, restricted to the op
// families that unconditionally write rd a constant or computed value
// (matching the reference implementation's table; spec §9 notes this list
// is not exhaustive over every RISC-V ALU op that writes rd).
func modifiesReg(in Instr, target uint32) bool {
	if in.rd != target {
		return false
	}
	switch in.Op {
	case OpADD, OpADDW, OpADDI, OpADDIW, OpSUB, OpSUBW,
		OpLB, OpLBU, OpLH, OpLHU, OpLW, OpLWU, OpLD,
		OpLUI, OpJAL, OpJALR,
		OpCAdd, OpCAddi, OpCAddi4spn, OpCAddi16sp,
		OpCSub, OpCLi, OpCLui, OpCLw, OpCLd, OpCLwsp, OpCLdsp,
		OpCMv, OpCJal, OpCJalr:
		return true
	default:
		return false
	}
}

func mode(bitness binfmt.Bitness) int {
	if bitness == binfmt.Bits64 {
		return 64
	}
	return 32
}
