package gadget

import "strings"

// Gadget is an ordered sequence of 1..M instructions (spec.md §3): the last
// instruction is a tail, every other instruction is a valid head, and
// consecutive instructions are byte-adjacent. Address is the absolute
// virtual address of the first instruction. UniqueID is either Address
// (address-distinct output) or 0 (instruction-sequence dedup), per spec.md
// §4.7.
type Gadget struct {
	Instructions []Instruction
	Address      uint64
	UniqueID     uint64
}

// IsStackPivot reports whether g redirects the stack pointer: a single-
// instruction gadget whose tail is a stack-pivot tail (RET family), or a
// multi-instruction gadget with a stack-pivot head among its non-last
// instructions (spec.md §4.6).
func (g *Gadget) IsStackPivot() bool {
	switch len(g.Instructions) {
	case 0:
		return false
	case 1:
		return g.Instructions[0].IsStackPivotTail()
	default:
		for _, instr := range g.Instructions[:len(g.Instructions)-1] {
			if instr.IsStackPivotHead() {
				return true
			}
		}
		return false
	}
}

// IsBasePivot reports whether g redirects the frame-pointer register;
// requires at least 2 instructions and a base-pivot head among the
// non-last instructions (spec.md §4.6).
func (g *Gadget) IsBasePivot() bool {
	if len(g.Instructions) < 2 {
		return false
	}
	for _, instr := range g.Instructions[:len(g.Instructions)-1] {
		if instr.IsBasePivotHead() {
			return true
		}
	}
	return false
}

// Format renders g in the canonical "i1; i2; tail;" textual form used for
// output and dedup fingerprinting (spec.md §4.7).
func (g *Gadget) Format() string {
	var b strings.Builder
	for i, instr := range g.Instructions {
		if i != 0 {
			b.WriteByte(' ')
		}
		b.WriteString(instr.Format())
		b.WriteByte(';')
	}
	return b.String()
}

// Len returns the number of instructions in the gadget.
func (g *Gadget) Len() int { return len(g.Instructions) }
