// Package gadget implements the ISA-agnostic core of the engine: the
// Instruction capability set (spec.md §4.2), the backward enumeration
// algorithm (spec.md §4.5), pivot classification (spec.md §4.6), and
// canonical formatting (spec.md §4.7). It knows nothing about ELF, PE,
// x86, or RISC-V — those details flow in through the Instruction
// interface, implemented separately by disasm/x86 and disasm/riscv.
package gadget

// Instruction is the uniform capability set every decoded instruction,
// regardless of ISA, must expose (spec.md §4.2). Implementations are
// immutable value types; equality for dedup purposes is defined on encoded
// bytes, not mnemonic form (spec.md §9 "Hashing identity").
type Instruction interface {
	// Len returns the number of bytes the instruction occupies, 0 if
	// invalid.
	Len() int

	// IsRet reports whether this is an architectural return (x86 RET/RETF;
	// RISC-V canonical ret).
	IsRet() bool

	// IsSys reports whether this is a syscall-family instruction.
	IsSys() bool

	// IsJOP reports whether this is an indirect control transfer suitable
	// as a JOP tail. noisy relaxes the predicate to admit direct branches.
	IsJOP(noisy bool) bool

	// IsInvalid reports whether the decoder rejected this encoding.
	IsInvalid() bool

	// IsGadgetTail reports whether this instruction can terminate a gadget
	// under the requested category set, per spec.md §4.2.
	IsGadgetTail(rop, sys, jop, noisy bool) bool

	// IsROPGadgetHead is the head-eligibility predicate, spec.md §4.5.
	IsROPGadgetHead(noisy bool) bool

	// IsStackPivotHead reports whether this instruction, as a non-terminal
	// gadget member, redirects the stack pointer (spec.md §4.6).
	IsStackPivotHead() bool

	// IsStackPivotTail reports whether this instruction, as the terminal
	// gadget member, makes the gadget a stack pivot (spec.md §4.6: is_ret).
	IsStackPivotTail() bool

	// IsBasePivotHead reports whether this instruction, as a non-terminal
	// gadget member, redirects the frame-pointer register (spec.md §4.6).
	IsBasePivotHead() bool

	// Format renders the instruction in its ISA's canonical syntax, with no
	// trailing separator (spec.md §4.7 composes these with "; ").
	Format() string

	// Bytes returns the exact encoded bytes of the instruction. Two
	// instructions are the same gadget-identity iff their Bytes are equal
	// (spec.md §3, §9).
	Bytes() []byte
}

// Category is a bitmask selecting which tail families are enabled for a
// scan (spec.md §6 Invocation configuration: rop, sys, jop).
type Category uint8

const (
	CategoryROP Category = 1 << iota
	CategorySys
	CategoryJOP
)

// Has reports whether cat includes c.
func (cat Category) Has(c Category) bool { return cat&c != 0 }

// IsGadgetTail is a convenience wrapper applying a Category mask to an
// Instruction's IsGadgetTail predicate.
func IsGadgetTail(instr Instruction, cat Category, noisy bool) bool {
	return instr.IsGadgetTail(cat.Has(CategoryROP), cat.Has(CategorySys), cat.Has(CategoryJOP), noisy)
}
