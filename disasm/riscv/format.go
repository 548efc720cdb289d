package riscv

import "fmt"

// regNames gives the ABI nickname for each of the 32 integer registers,
// matching the reference formatter's reg_nicknames option (spec §4.7:
// "RISC-V with register nicknames").
var regNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

func reg(n uint32) string {
	if int(n) < len(regNames) {
		return regNames[n]
	}
	return fmt.Sprintf("x%d", n)
}

func formatInstr(in Instr) string {
	switch in.Op {
	case OpIllegal:
		return "(bad)"
	case OpRet:
		return "ret"
	case OpJAL:
		if in.rd == 0 {
			return fmt.Sprintf("j %#x", in.imm)
		}
		return fmt.Sprintf("jal %s, %#x", reg(in.rd), in.imm)
	case OpJALR:
		return fmt.Sprintf("jalr %s, %d(%s)", reg(in.rd), in.imm, reg(in.rs1))
	case OpECALL:
		return "ecall"
	case OpEBREAK:
		return "ebreak"
	case OpFENCE:
		return "fence"
	case OpLUI:
		return fmt.Sprintf("lui %s, %#x", reg(in.rd), uint32(in.imm)>>12)
	case OpAUIPC:
		return fmt.Sprintf("auipc %s, %#x", reg(in.rd), uint32(in.imm)>>12)
	case OpBEQ:
		return branchStr("beq", in)
	case OpBNE:
		return branchStr("bne", in)
	case OpBLT:
		return branchStr("blt", in)
	case OpBGE:
		return branchStr("bge", in)
	case OpBLTU:
		return branchStr("bltu", in)
	case OpBGEU:
		return branchStr("bgeu", in)
	case OpLB:
		return loadStr("lb", in)
	case OpLH:
		return loadStr("lh", in)
	case OpLW:
		return loadStr("lw", in)
	case OpLBU:
		return loadStr("lbu", in)
	case OpLHU:
		return loadStr("lhu", in)
	case OpLWU:
		return loadStr("lwu", in)
	case OpLD:
		return loadStr("ld", in)
	case OpSB:
		return storeStr("sb", in)
	case OpSH:
		return storeStr("sh", in)
	case OpSW:
		return storeStr("sw", in)
	case OpSD:
		return storeStr("sd", in)
	case OpADDI:
		return immStr("addi", in)
	case OpSLTI:
		return immStr("slti", in)
	case OpSLTIU:
		return immStr("sltiu", in)
	case OpXORI:
		return immStr("xori", in)
	case OpORI:
		return immStr("ori", in)
	case OpANDI:
		return immStr("andi", in)
	case OpSLLI:
		return immStr("slli", in)
	case OpSRLI:
		return immStr("srli", in)
	case OpSRAI:
		return immStr("srai", in)
	case OpADD:
		return regStr("add", in)
	case OpSUB:
		return regStr("sub", in)
	case OpSLL:
		return regStr("sll", in)
	case OpSLT:
		return regStr("slt", in)
	case OpSLTU:
		return regStr("sltu", in)
	case OpXOR:
		return regStr("xor", in)
	case OpSRL:
		return regStr("srl", in)
	case OpSRA:
		return regStr("sra", in)
	case OpOR:
		return regStr("or", in)
	case OpAND:
		return regStr("and", in)
	case OpADDIW:
		return immStr("addiw", in)
	case OpSLLIW:
		return immStr("slliw", in)
	case OpSRLIW:
		return immStr("srliw", in)
	case OpSRAIW:
		return immStr("sraiw", in)
	case OpADDW:
		return regStr("addw", in)
	case OpSUBW:
		return regStr("subw", in)
	case OpSLLW:
		return regStr("sllw", in)
	case OpSRLW:
		return regStr("srlw", in)
	case OpSRAW:
		return regStr("sraw", in)

	case OpCAddi4spn:
		return fmt.Sprintf("c.addi4spn %s, %#x", reg(in.rd), in.imm)
	case OpCLw:
		return loadStr("c.lw", in)
	case OpCLd:
		return loadStr("c.ld", in)
	case OpCSw:
		return storeStr("c.sw", in)
	case OpCSd:
		return storeStr("c.sd", in)
	case OpCNop:
		return "c.nop"
	case OpCAddi:
		return immStr("c.addi", in)
	case OpCJal:
		return fmt.Sprintf("c.jal %#x", in.imm)
	case OpCLi:
		return fmt.Sprintf("c.li %s, %d", reg(in.rd), in.imm)
	case OpCAddi16sp:
		return fmt.Sprintf("c.addi16sp %d", in.imm)
	case OpCLui:
		return fmt.Sprintf("c.lui %s, %#x", reg(in.rd), uint32(in.imm)>>12)
	case OpCSrli:
		return immStr("c.srli", in)
	case OpCSrai:
		return immStr("c.srai", in)
	case OpCAndi:
		return immStr("c.andi", in)
	case OpCSub:
		return regStr("c.sub", in)
	case OpCXor:
		return regStr("c.xor", in)
	case OpCOr:
		return regStr("c.or", in)
	case OpCAnd:
		return regStr("c.and", in)
	case OpCJ:
		return fmt.Sprintf("c.j %#x", in.imm)
	case OpCBeqz:
		return fmt.Sprintf("c.beqz %s, %#x", reg(in.rs1), in.imm)
	case OpCBnez:
		return fmt.Sprintf("c.bnez %s, %#x", reg(in.rs1), in.imm)
	case OpCSlli:
		return immStr("c.slli", in)
	case OpCLwsp:
		return fmt.Sprintf("c.lwsp %s, %d(sp)", reg(in.rd), in.imm)
	case OpCLdsp:
		return fmt.Sprintf("c.ldsp %s, %d(sp)", reg(in.rd), in.imm)
	case OpCJr:
		return fmt.Sprintf("c.jr %s", reg(in.rs1))
	case OpCMv:
		return fmt.Sprintf("c.mv %s, %s", reg(in.rd), reg(in.rs2))
	case OpCEbreak:
		return "c.ebreak"
	case OpCJalr:
		return fmt.Sprintf("c.jalr %s", reg(in.rs1))
	case OpCAdd:
		return regStr("c.add", in)
	case OpCSwsp:
		return fmt.Sprintf("c.swsp %s, %d(sp)", reg(in.rs2), in.imm)
	case OpCSdsp:
		return fmt.Sprintf("c.sdsp %s, %d(sp)", reg(in.rs2), in.imm)
	default:
		return "(bad)"
	}
}

func branchStr(mnemonic string, in Instr) string {
	return fmt.Sprintf("%s %s, %s, %#x", mnemonic, reg(in.rs1), reg(in.rs2), in.imm)
}

func loadStr(mnemonic string, in Instr) string {
	return fmt.Sprintf("%s %s, %d(%s)", mnemonic, reg(in.rd), in.imm, reg(in.rs1))
}

func storeStr(mnemonic string, in Instr) string {
	return fmt.Sprintf("%s %s, %d(%s)", mnemonic, reg(in.rs2), in.imm, reg(in.rs1))
}

func immStr(mnemonic string, in Instr) string {
	return fmt.Sprintf("%s %s, %s, %d", mnemonic, reg(in.rd), reg(in.rs1), in.imm)
}

func regStr(mnemonic string, in Instr) string {
	return fmt.Sprintf("%s %s, %s, %s", mnemonic, reg(in.rd), reg(in.rs1), reg(in.rs2))
}
