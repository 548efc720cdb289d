package gadget

import "testing"

func TestIsStackPivotSingleInstructionTail(t *testing.T) {
	g := &Gadget{Instructions: []Instruction{ret()}}
	if !g.IsStackPivot() {
		t.Fatalf("expected single ret gadget to be a stack pivot")
	}
	if g.IsBasePivot() {
		t.Fatalf("single-instruction gadgets can never be base pivots")
	}
}

// Scenario 4 (spec.md §8): a gadget ending in ret whose chain contains
// "pop rsp" must be classified as a stack pivot.
func TestIsStackPivotPopRspRet(t *testing.T) {
	popRsp := fakeInstr{name: "pop rsp", length: 1, head: true, stackHead: true}
	g := &Gadget{Instructions: []Instruction{popRsp, ret()}}
	if !g.IsStackPivot() {
		t.Fatalf("expected pop rsp; ret; to classify as a stack pivot")
	}
}

func TestIsBasePivotRequiresHead(t *testing.T) {
	popRbp := fakeInstr{name: "pop rbp", length: 1, head: true, basePivotHead: true}
	g := &Gadget{Instructions: []Instruction{popRbp, ret()}}
	if !g.IsBasePivot() {
		t.Fatalf("expected pop rbp; ret; to classify as a base pivot")
	}
	if g.IsStackPivot() {
		t.Fatalf("pop rbp; ret; should not be a stack pivot")
	}
}

func TestFormatJoinsWithSemicolons(t *testing.T) {
	g := &Gadget{Instructions: []Instruction{
		headInstr("pop rdi", 1, 0),
		headInstr("pop rbp", 1, 0),
		ret(),
	}}
	want := "pop rdi; pop rbp; ret;"
	if got := g.Format(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
