package riscv

// flowControl mirrors disasm/x86's synthesized control-flow classification
// (spec §4.2/§4.5), built directly from the decoded Op rather than a
// library-provided enum.
type flowControl int

const (
	flowNext flowControl = iota
	flowCall
	flowReturn
	flowConditionalBranch
	flowUnconditionalBranch
	flowIndirectBranch
	flowInterrupt
)

func classifyFlow(op Op) flowControl {
	switch op {
	case OpRet, OpJALR, OpCJr, OpCJalr:
		// ret is architecturally jalr x0, 0(x1): mechanically an indirect
		// branch through ra, so it is also eligible as a JOP tail in
		// addition to satisfying is_ret (spec §4.2 "RISC-V: any indirect
		// branch").
		return flowIndirectBranch
	case OpJAL, OpCJal, OpCJ:
		return flowUnconditionalBranch
	case OpECALL:
		return flowCall
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU, OpCBeqz, OpCBnez:
		return flowConditionalBranch
	case OpEBREAK, OpCEbreak:
		return flowInterrupt
	default:
		return flowNext
	}
}
