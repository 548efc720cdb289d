package gadget

// fakeInstr is a hand-built Instruction fixture used to exercise the
// enumeration algorithm and classifier without depending on disasm/x86 or
// disasm/riscv (spec.md §8's invariants are ISA-agnostic).
type fakeInstr struct {
	name          string
	length        int
	ret           bool
	sys           bool
	jop           bool
	noisyOnlyJOP  bool
	invalid       bool
	head          bool
	noisyOnlyHead bool
	stackHead     bool
	basePivotHead bool
	bytesVal      []byte
}

func (f fakeInstr) Len() int     { return f.length }
func (f fakeInstr) IsRet() bool  { return f.ret }
func (f fakeInstr) IsSys() bool  { return f.sys }
func (f fakeInstr) IsJOP(noisy bool) bool {
	if f.noisyOnlyJOP {
		return noisy && f.jop
	}
	return f.jop
}
func (f fakeInstr) IsInvalid() bool { return f.invalid }

func (f fakeInstr) IsGadgetTail(rop, sys, jop, noisy bool) bool {
	if f.invalid {
		return false
	}
	if rop && f.ret {
		return true
	}
	if sys && f.sys {
		return true
	}
	if jop && f.IsJOP(noisy) {
		return true
	}
	return false
}

func (f fakeInstr) IsROPGadgetHead(noisy bool) bool {
	if f.invalid {
		return false
	}
	if f.noisyOnlyHead {
		return noisy
	}
	return f.head
}

func (f fakeInstr) IsStackPivotHead() bool { return f.stackHead }
func (f fakeInstr) IsStackPivotTail() bool { return f.ret }
func (f fakeInstr) IsBasePivotHead() bool  { return f.basePivotHead }
func (f fakeInstr) Format() string         { return f.name }
func (f fakeInstr) Bytes() []byte          { return f.bytesVal }

func ret() fakeInstr {
	return fakeInstr{name: "ret", length: 1, ret: true, head: false, bytesVal: []byte{0xC3}}
}

func headInstr(name string, length int, b ...byte) fakeInstr {
	return fakeInstr{name: name, length: length, head: true, bytesVal: b}
}

func invalidInstr() fakeInstr {
	return fakeInstr{name: "(bad)", length: 0, invalid: true}
}
