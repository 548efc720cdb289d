package gadget

// maxInstrBytes is the maximum length, in bytes, of a single instruction on
// either supported ISA family. x86 instructions run up to 15 bytes; this
// bound is used as a conservative window for both ISAs (spec.md §4.5).
const maxInstrBytes = 15

// Emission pairs a fully-built Gadget with its absolute start address. One
// tail's enumeration produces a local stream of Emissions that the caller
// folds into a shared aggregator (spec.md §5).
type Emission struct {
	Gadget  *Gadget
	Address uint64
}

// ScanTails walks a dense instruction index and returns every offset that
// could terminate a gadget under the requested category set. No
// deduplication happens at this stage (spec.md §4.5 "Tail scan").
func ScanTails(idx []Instruction, cat Category, noisy bool) []int {
	var tails []int
	for i, instr := range idx {
		if IsGadgetTail(instr, cat, noisy) {
			tails = append(tails, i)
		}
	}
	return tails
}

// EnumerateFromTail yields every gadget ending at tailOffset: the
// tail-only singleton, plus one emission for every predecessor chain in
// [start, tailOffset) that slides byte-by-byte and reconstructs
// instruction-by-instruction, per the backward enumeration algorithm of
// spec.md §4.5. sectionBase is the absolute address of relative offset 0
// in idx (ProgramBase + VAddr). The tail-only gadget is always the last
// element of the returned slice (spec.md §4.5, §5 ordering guarantee).
func EnumerateFromTail(idx []Instruction, tailOffset int, sectionBase uint64, maxInstructions int, noisy, uniq bool) []Emission {
	if maxInstructions < 1 {
		panic("gadget: max instructions must be >= 1")
	}

	start := tailOffset - (maxInstructions-1)*maxInstrBytes
	if start < 0 {
		start = 0
	}
	tail := idx[tailOffset]

	out := make([]Emission, 0, tailOffset-start+1)
	for s := start; s < tailOffset; s++ {
		chain := make([]Instruction, 0, maxInstructions-1)
		k := s
		for {
			instr := idx[k]
			if !instr.IsROPGadgetHead(noisy) {
				break
			}
			chain = append(chain, instr)
			k += instr.Len()
			if k == tailOffset {
				out = append(out, emit(chain, tail, sectionBase, s, uniq))
				break
			}
			if k > tailOffset {
				break
			}
			if len(chain) == maxInstructions-1 {
				break
			}
		}
	}

	// Final tail-only gadget, always emitted, always last (spec.md §4.5).
	out = append(out, emit(nil, tail, sectionBase, tailOffset, uniq))
	return out
}

func emit(heads []Instruction, tail Instruction, sectionBase uint64, start int, uniq bool) Emission {
	instrs := make([]Instruction, 0, len(heads)+1)
	instrs = append(instrs, heads...)
	instrs = append(instrs, tail)

	addr := sectionBase + uint64(start)
	var id uint64
	if !uniq {
		id = addr
	}
	return Emission{
		Gadget: &Gadget{
			Instructions: instrs,
			Address:      addr,
			UniqueID:     id,
		},
		Address: addr,
	}
}
