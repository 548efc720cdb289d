package x86

import (
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// formatInst renders inst in lowercase Intel syntax with no trailing
// separator, matching spec.md §4.7's canonical gadget strings (e.g. the
// sequence "pop rdi; pop rbp; ret;" is built by joining each instruction's
// Format() with "; "). x86asm.Inst's own GoSyntax/String output uses AT&T
// ordering and uppercase mnemonics, so the Intel string form is built
// directly from IntelSyntax and lowered.
func formatInst(inst x86asm.Inst) string {
	if inst.Op == 0 {
		return "(bad)"
	}
	s := x86asm.IntelSyntax(inst, 0, nil)
	return strings.ToLower(s)
}
