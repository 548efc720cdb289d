package x86

import "golang.org/x/arch/x86/x86asm"

// flowControl is the control-flow classification the gadget predicates of
// spec.md §4.2/§4.5 are defined against. golang.org/x/arch/x86/x86asm has
// no such enum (unlike iced-x86, which the reference implementation was
// built on), so it is synthesized here from the decoded opcode — this is
// the one translation seam noted in SPEC_FULL.md's disasm/x86 section.
type flowControl int

const (
	flowNext flowControl = iota
	flowCall
	flowReturn
	flowConditionalBranch
	flowUnconditionalBranch
	flowInterrupt
)

func classifyFlow(op x86asm.Op) flowControl {
	switch op {
	case x86asm.RET, x86asm.RETF:
		return flowReturn
	case x86asm.CALL:
		return flowCall
	case x86asm.JMP:
		return flowUnconditionalBranch
	case x86asm.JA, x86asm.JAE, x86asm.JB, x86asm.JBE, x86asm.JCXZ, x86asm.JE,
		x86asm.JECXZ, x86asm.JG, x86asm.JGE, x86asm.JL, x86asm.JLE, x86asm.JNE,
		x86asm.JNO, x86asm.JNP, x86asm.JNS, x86asm.JO, x86asm.JP, x86asm.JRCXZ,
		x86asm.JS, x86asm.LOOP, x86asm.LOOPE, x86asm.LOOPNE:
		return flowConditionalBranch
	case x86asm.INT, x86asm.INT3, x86asm.INTO, x86asm.IRET, x86asm.IRETD, x86asm.IRETQ,
		x86asm.SYSCALL, x86asm.SYSRET, x86asm.SYSENTER, x86asm.SYSEXIT:
		return flowInterrupt
	default:
		return flowNext
	}
}
