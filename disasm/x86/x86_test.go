package x86

import (
	"testing"

	"github.com/mbutler/ropgrub/binfmt"
	"github.com/mbutler/ropgrub/gadget"
)

func sectionOf(data []byte, bitness binfmt.Bitness) binfmt.Section {
	return binfmt.Section{Bytes: data, Bitness: bitness}
}

// B2: a section of exactly one RET byte decodes to one instruction, a
// one-byte ret.
func TestDisassembleSingleRet(t *testing.T) {
	idx, err := Disassemble(sectionOf([]byte{0xC3}, binfmt.Bits64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx) != 1 {
		t.Fatalf("expected index of length 1, got %d", len(idx))
	}
	if !idx[0].IsRet() {
		t.Fatalf("expected offset 0 to decode as ret")
	}
	if idx[0].Len() != 1 {
		t.Fatalf("expected ret length 1, got %d", idx[0].Len())
	}
	if got := idx[0].Format(); got != "ret" {
		t.Fatalf("expected %q, got %q", "ret", got)
	}
}

// Scenario 2 (spec.md §8): 5F C3 -> "pop rdi; ret;" chain.
func TestDisassemblePopRdiRet(t *testing.T) {
	idx, err := Disassemble(sectionOf([]byte{0x5F, 0xC3}, binfmt.Bits64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx) != 2 {
		t.Fatalf("expected index of length 2, got %d", len(idx))
	}
	if idx[0].IsInvalid() {
		t.Fatalf("expected offset 0 (pop rdi) to decode")
	}
	if !idx[0].IsROPGadgetHead(false) {
		t.Fatalf("expected pop rdi to be a valid rop gadget head")
	}
	if idx[0].Len() != 1 {
		t.Fatalf("expected pop rdi length 1, got %d", idx[0].Len())
	}
	if !idx[1].IsRet() {
		t.Fatalf("expected offset 1 to decode as ret")
	}
}

// Scenario 3 (spec.md §8): 48 89 E0 C3 -> mov rax, rsp; ret at offset 0, and
// a plain ret at offset 3.
func TestDisassembleOverlapping(t *testing.T) {
	idx, err := Disassemble(sectionOf([]byte{0x48, 0x89, 0xE0, 0xC3}, binfmt.Bits64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx) != 4 {
		t.Fatalf("expected index of length 4, got %d", len(idx))
	}
	if idx[0].Len() != 3 {
		t.Fatalf("expected mov rax, rsp to be 3 bytes, got %d", idx[0].Len())
	}
	if idx[0].IsStackPivotHead() {
		t.Fatalf("expected mov rax, rsp not to be a stack pivot head: it writes rax, not rsp")
	}
	if !idx[3].IsRet() {
		t.Fatalf("expected offset 3 to be ret")
	}
}

// B3: a section ending mid-instruction leaves the truncated tail offsets
// invalid rather than erroring.
func TestDisassembleTruncatedTail(t *testing.T) {
	// 48 89 E0 is a complete three-byte mov; with its ModRM byte E0
	// stripped off, 0x48 0x89 alone can't decode to a complete instruction.
	idx, err := Disassemble(sectionOf([]byte{0x48, 0x89}, binfmt.Bits64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx) != 2 {
		t.Fatalf("expected index of length 2, got %d", len(idx))
	}
	for i, instr := range idx {
		if !instr.IsInvalid() {
			t.Fatalf("expected offset %d to be invalid in a truncated buffer", i)
		}
	}
}

// Scenario 6 (spec.md §8): an indirect jmp reg is a JOP tail regardless of
// noisy; a near direct jmp is a JOP tail only when noisy.
func TestJOPNoisyToggle(t *testing.T) {
	// FF E0 = jmp rax (indirect through register).
	idxIndirect, err := Disassemble(sectionOf([]byte{0xFF, 0xE0}, binfmt.Bits64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !idxIndirect[0].IsJOP(false) {
		t.Fatalf("expected jmp rax to be a JOP tail when noisy=false")
	}
	if !idxIndirect[0].IsJOP(true) {
		t.Fatalf("expected jmp rax to be a JOP tail when noisy=true")
	}

	// EB 00 = jmp +2 (near direct jmp, 2-byte encoding).
	idxDirect, err := Disassemble(sectionOf([]byte{0xEB, 0x00}, binfmt.Bits64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idxDirect[0].IsJOP(false) {
		t.Fatalf("expected near direct jmp to not be a JOP tail when noisy=false")
	}
	if !idxDirect[0].IsJOP(true) {
		t.Fatalf("expected near direct jmp to be a JOP tail when noisy=true")
	}
}

// spec.md §4.2: SYSCALL is a sys-category tail.
func TestSyscallIsSysTail(t *testing.T) {
	idx, err := Disassemble(sectionOf([]byte{0x0F, 0x05}, binfmt.Bits64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx[0].IsInvalid() {
		t.Fatalf("expected 0F 05 to decode as syscall")
	}
	if !idx[0].IsSys() {
		t.Fatalf("expected syscall to satisfy IsSys")
	}
	if !gadget.IsGadgetTail(idx[0], gadget.CategorySys, false) {
		t.Fatalf("expected syscall to be emitted as a sys-category tail")
	}
	if gadget.IsGadgetTail(idx[0], gadget.CategoryROP, false) {
		t.Fatalf("did not expect syscall to be a rop-category tail")
	}
}

// Sanity: the gadget package's IsGadgetTail wrapper composes correctly with
// real x86 instructions, exercising the seam between the two packages.
func TestGadgetCategoryWrapper(t *testing.T) {
	idx, err := Disassemble(sectionOf([]byte{0xC3}, binfmt.Bits64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gadget.IsGadgetTail(idx[0], gadget.CategoryROP, false) {
		t.Fatalf("expected ret to be a ROP-category tail")
	}
	if gadget.IsGadgetTail(idx[0], gadget.CategorySys, false) {
		t.Fatalf("did not expect ret to be a Sys-category tail")
	}
}
