package x86

import "golang.org/x/arch/x86/x86asm"

// Raw prefix byte values (Intel SDM vol. 2A §2.1.1). golang.org/x/arch's
// Prefix type stores the literal prefix byte, so these are matched
// directly rather than through named constants. 0xF2/0xF3 double as
// XACQUIRE/XRELEASE on the instructions that support hardware lock
// elision; at the byte level they are indistinguishable from REPNE/REP,
// so this check intentionally treats them the same way the spec's quiet
// mode does (disqualify either reading).
const (
	prefixByteLock = 0xF0
	prefixByteRepn = 0xF2
	prefixByteRep  = 0xF3
)

func hasNoisyPrefix(inst x86asm.Inst) bool {
	for _, p := range inst.Prefix {
		switch byte(p) {
		case prefixByteLock, prefixByteRepn, prefixByteRep:
			return true
		case 0:
			return false
		}
	}
	return false
}

func isRet(inst x86asm.Inst) bool {
	return inst.Op == x86asm.RET || inst.Op == x86asm.RETF
}

// isSys matches spec.md §4.2's is_sys list literally: SYSCALL, INT 0x80, the
// IRET family, and SYSRET/SYSEXIT (x86asm encodes the 64-bit SYSRETQ/
// SYSEXITQ forms under the same Op, distinguished only by REX.W). SYSENTER
// is deliberately excluded; the spec's list does not name it.
func isSys(inst x86asm.Inst) bool {
	switch inst.Op {
	case x86asm.SYSCALL, x86asm.SYSEXIT, x86asm.SYSRET,
		x86asm.IRET, x86asm.IRETD, x86asm.IRETQ:
		return true
	case x86asm.INT:
		imm, ok := inst.Args[0].(x86asm.Imm)
		return ok && imm == 0x80
	default:
		return false
	}
}

// isNearBranchOperand reports whether arg is a direct, PC-relative branch
// target (an x86asm.Rel) as opposed to a register- or memory-indirect one.
func isNearBranchOperand(arg x86asm.Arg) bool {
	_, ok := arg.(x86asm.Rel)
	return ok
}

func isJOP(inst x86asm.Inst, noisy bool) bool {
	switch inst.Op {
	case x86asm.JMP, x86asm.CALL:
	default:
		return false
	}
	op0 := inst.Args[0]
	if noisy {
		return !isNearBranchOperand(op0)
	}
	switch a := op0.(type) {
	case x86asm.Reg:
		return true
	case x86asm.Mem:
		return a.Base != x86asm.EIP && a.Base != x86asm.RIP
	default:
		return false
	}
}

func isInvalid(inst x86asm.Inst) bool {
	return inst.Op == 0 || inst.Len == 0
}

func isGadgetTail(inst x86asm.Inst, rop, sys, jop, noisy bool) bool {
	if isInvalid(inst) {
		return false
	}
	if classifyFlow(inst.Op) == flowNext {
		return false
	}
	if rop && isRet(inst) {
		return true
	}
	if sys && isSys(inst) {
		return true
	}
	if jop && isJOP(inst, noisy) {
		return true
	}
	return false
}

func isROPGadgetHead(inst x86asm.Inst, noisy bool) bool {
	if isInvalid(inst) {
		return false
	}
	if !noisy && hasNoisyPrefix(inst) {
		return false
	}
	switch classifyFlow(inst.Op) {
	case flowNext, flowInterrupt:
		return true
	case flowConditionalBranch:
		return noisy
	case flowCall:
		// Mirrors the reference implementation's `mnemonic() != Call` guard:
		// on plain x86 every Call-flow instruction is the canonical CALL
		// mnemonic, so this branch never actually admits a head (ported
		// faithfully rather than simplified away).
		return inst.Op != x86asm.CALL
	default:
		return false
	}
}

// isPivotReg reports whether r is one of the given pivot register triple:
// {RSP, ESP, SP} for stack-pivot checks, {RBP, EBP, BP} for base-pivot
// checks.
func isPivotReg(r x86asm.Reg, wide, mid, narrow x86asm.Reg) bool {
	return r == wide || r == mid || r == narrow
}

func isStackPivotHead(inst x86asm.Inst) bool {
	return isPivotHead(inst, x86asm.RSP, x86asm.ESP, x86asm.SP, x86asm.LEAVE)
}

// isPivotHead implements the shared shape of spec.md §4.6's stack-pivot and
// base-pivot head predicates against the given pivot register triple.
// unconditionalOp, when non-zero, additionally qualifies the mnemonic that
// unconditionally counts as a head regardless of operands (LEAVE for the
// stack pivot, ENTER for the base pivot).
func isPivotHead(inst x86asm.Inst, wide, mid, narrow, unconditionalOp x86asm.Op) bool {
	reg0, reg0ok := inst.Args[0].(x86asm.Reg)
	reg1, reg1ok := inst.Args[1].(x86asm.Reg)
	mem1, mem1ok := inst.Args[1].(x86asm.Mem)

	switch inst.Op {
	case x86asm.ADC, x86asm.ADD, x86asm.SBB, x86asm.SUB,
		x86asm.CMOVA, x86asm.CMOVAE, x86asm.CMOVB, x86asm.CMOVBE,
		x86asm.CMOVE, x86asm.CMOVG, x86asm.CMOVGE, x86asm.CMOVL,
		x86asm.CMOVLE, x86asm.CMOVNE, x86asm.CMOVNO, x86asm.CMOVNP,
		x86asm.CMOVNS, x86asm.CMOVO, x86asm.CMOVP, x86asm.CMOVS,
		x86asm.CMPXCHG, x86asm.CMPXCHG8B, x86asm.CMPXCHG16B,
		x86asm.POP, x86asm.POPA, x86asm.POPAD:
		if !reg0ok || !isPivotReg(reg0, wide, mid, narrow) {
			return false
		}
		if inst.Args[1] == nil {
			// Single-operand form (POP reg): the pivot register itself is
			// written from the stack.
			return true
		}
		if _, isImm := inst.Args[1].(x86asm.Imm); isImm {
			return true
		}
		return reg1ok
	case x86asm.MOV, x86asm.MOVBE, x86asm.MOVD:
		if !reg0ok || !isPivotReg(reg0, wide, mid, narrow) {
			return false
		}
		if reg1ok {
			return true
		}
		return mem1ok && mem1.Base != 0
	case x86asm.XADD, x86asm.XCHG:
		if reg0ok && isPivotReg(reg0, wide, mid, narrow) {
			return true
		}
		return reg1ok && isPivotReg(reg1, wide, mid, narrow)
	default:
		return inst.Op == unconditionalOp
	}
}

func isBasePivotHead(inst x86asm.Inst) bool {
	return isPivotHead(inst, x86asm.RBP, x86asm.EBP, x86asm.BP, x86asm.ENTER)
}

func isStackPivotTail(inst x86asm.Inst) bool {
	return isRet(inst)
}
