package riscv

// Instr is a decoded RISC-V instruction: enough of its operand fields to
// classify it as a gadget tail/head and render it, not a full semantic
// decode. rd/rs1/rs2 are raw 5-bit register numbers.
type Instr struct {
	Op           Op
	Len          int // 2 or 4; an OpIllegal decode may keep its encoding's size, or 0 if it could not be sized
	rd, rs1, rs2 uint32
	imm          int64
	raw          uint32
}

// baseOpcode is the bits[6:2] base-opcode field of a 32-bit instruction,
// per riscv-spec-v2.2 table 19.1.
type baseOpcode uint32

const (
	boLoad    baseOpcode = 0x00
	boMiscMem baseOpcode = 0x03
	boOpImm   baseOpcode = 0x04
	boAUIPC   baseOpcode = 0x05
	boOpImm32 baseOpcode = 0x06
	boStore   baseOpcode = 0x08
	boAMO     baseOpcode = 0x0b
	boOp      baseOpcode = 0x0c
	boLUI     baseOpcode = 0x0d
	boOp32    baseOpcode = 0x0e
	boBranch  baseOpcode = 0x18
	boJALR    baseOpcode = 0x19
	boJAL     baseOpcode = 0x1b
	boSystem  baseOpcode = 0x1c
)

// decodeSize reports the length, in bytes, of the instruction starting at
// b, per riscv-spec-v2.2 figure 1.1. Only the 16-bit and 32-bit forms are
// supported; anything wider decodes as illegal.
func decodeSize(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	if b[0]&0x3 != 0x3 {
		return 2, true
	}
	if b[0]&0x1f != 0x1f {
		return 4, true
	}
	return 0, false
}

// Decode decodes the instruction at the head of data for the given xlen (32
// or 64). It never errors: unsupported or malformed encodings decode with
// Op OpIllegal (Disassemble then stores the Len-0 invalid sentinel in that
// slot), mirroring spec §4.4's "fill invalid slots" contract.
func Decode(data []byte, xlen int) Instr {
	size, ok := decodeSize(data)
	if !ok || len(data) < size {
		return Instr{Op: OpIllegal}
	}
	if size == 2 {
		word := uint16(data[0]) | uint16(data[1])<<8
		in := decodeCompressed(word)
		in.raw = uint32(word)
		return in
	}
	if len(data) < 4 {
		return Instr{Op: OpIllegal}
	}
	word := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	return decode32(word, xlen)
}

func decode32(in uint32, xlen int) Instr {
	rd := in >> 7 & 0x1f
	rs1 := in >> 15 & 0x1f
	rs2 := in >> 20 & 0x1f
	funct3 := in >> 12 & 0x7
	funct7 := in >> 25 & 0x7f

	base := baseOpcode(in >> 2 & 0x1f)
	switch base {
	case boLUI:
		return Instr{Op: OpLUI, Len: 4, rd: rd, imm: int64(int32(in & 0xfffff000)), raw: in}
	case boAUIPC:
		return Instr{Op: OpAUIPC, Len: 4, rd: rd, imm: int64(int32(in & 0xfffff000)), raw: in}
	case boJAL:
		imm := in>>11&0x100000 | in&0xff000 | in>>9&0x800 | in>>20&0x7fe
		return Instr{Op: OpJAL, Len: 4, rd: rd, imm: signExtend(uint64(imm), 20), raw: in}
	case boJALR:
		if funct3 != 0 {
			return Instr{Op: OpIllegal, Len: 4, raw: in}
		}
		imm := signExtend(uint64(in>>20), 11)
		op := OpJALR
		if rd == 0 && rs1 == 1 && imm == 0 {
			op = OpRet
		}
		return Instr{Op: op, Len: 4, rd: rd, rs1: rs1, imm: imm, raw: in}
	case boBranch:
		imm := in>>19&0x1000 | in<<4&0x800 | in>>20&0x7e0 | in>>7&0x1e
		var op Op
		switch funct3 {
		case 0x0:
			op = OpBEQ
		case 0x1:
			op = OpBNE
		case 0x4:
			op = OpBLT
		case 0x5:
			op = OpBGE
		case 0x6:
			op = OpBLTU
		case 0x7:
			op = OpBGEU
		default:
			op = OpIllegal
		}
		return Instr{Op: op, Len: 4, rs1: rs1, rs2: rs2, imm: signExtend(uint64(imm), 12), raw: in}
	case boLoad:
		var op Op
		switch funct3 {
		case 0x0:
			op = OpLB
		case 0x1:
			op = OpLH
		case 0x2:
			op = OpLW
		case 0x3:
			op = OpLD
		case 0x4:
			op = OpLBU
		case 0x5:
			op = OpLHU
		case 0x6:
			op = OpLWU
		default:
			op = OpIllegal
		}
		return Instr{Op: op, Len: 4, rd: rd, rs1: rs1, imm: signExtend(uint64(in>>20), 11), raw: in}
	case boStore:
		imm := in>>20&0xfe0 | in>>7&0x1f
		var op Op
		switch funct3 {
		case 0x0:
			op = OpSB
		case 0x1:
			op = OpSH
		case 0x2:
			op = OpSW
		case 0x3:
			op = OpSD
		default:
			op = OpIllegal
		}
		return Instr{Op: op, Len: 4, rs1: rs1, rs2: rs2, imm: signExtend(uint64(imm), 11), raw: in}
	case boOpImm:
		imm := signExtend(uint64(in>>20), 11)
		switch funct3 {
		case 0x0:
			return Instr{Op: OpADDI, Len: 4, rd: rd, rs1: rs1, imm: imm, raw: in}
		case 0x2:
			return Instr{Op: OpSLTI, Len: 4, rd: rd, rs1: rs1, imm: imm, raw: in}
		case 0x3:
			return Instr{Op: OpSLTIU, Len: 4, rd: rd, rs1: rs1, imm: imm, raw: in}
		case 0x4:
			return Instr{Op: OpXORI, Len: 4, rd: rd, rs1: rs1, imm: imm, raw: in}
		case 0x6:
			return Instr{Op: OpORI, Len: 4, rd: rd, rs1: rs1, imm: imm, raw: in}
		case 0x7:
			return Instr{Op: OpANDI, Len: 4, rd: rd, rs1: rs1, imm: imm, raw: in}
		case 0x1:
			return Instr{Op: OpSLLI, Len: 4, rd: rd, rs1: rs1, imm: int64(rs2), raw: in}
		case 0x5:
			op := OpSRLI
			if funct7&0x20 != 0 {
				op = OpSRAI
			}
			return Instr{Op: op, Len: 4, rd: rd, rs1: rs1, imm: int64(rs2), raw: in}
		}
		return Instr{Op: OpIllegal, Len: 4, raw: in}
	case boOp:
		key := funct7<<3 | funct3
		switch key {
		case 0x000:
			return Instr{Op: OpADD, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x200:
			return Instr{Op: OpSUB, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x001:
			return Instr{Op: OpSLL, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x002:
			return Instr{Op: OpSLT, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x003:
			return Instr{Op: OpSLTU, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x004:
			return Instr{Op: OpXOR, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x005:
			return Instr{Op: OpSRL, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x205:
			return Instr{Op: OpSRA, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x006:
			return Instr{Op: OpOR, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x007:
			return Instr{Op: OpAND, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		}
		return Instr{Op: OpIllegal, Len: 4, raw: in}
	case boOpImm32:
		if xlen < 64 {
			return Instr{Op: OpIllegal, Len: 4, raw: in}
		}
		imm := signExtend(uint64(in>>20), 11)
		switch funct3 {
		case 0x0:
			return Instr{Op: OpADDIW, Len: 4, rd: rd, rs1: rs1, imm: imm, raw: in}
		case 0x1:
			return Instr{Op: OpSLLIW, Len: 4, rd: rd, rs1: rs1, imm: int64(rs2), raw: in}
		case 0x5:
			op := OpSRLIW
			if funct7&0x20 != 0 {
				op = OpSRAIW
			}
			return Instr{Op: op, Len: 4, rd: rd, rs1: rs1, imm: int64(rs2), raw: in}
		}
		return Instr{Op: OpIllegal, Len: 4, raw: in}
	case boOp32:
		if xlen < 64 {
			return Instr{Op: OpIllegal, Len: 4, raw: in}
		}
		key := funct7<<3 | funct3
		switch key {
		case 0x000:
			return Instr{Op: OpADDW, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x200:
			return Instr{Op: OpSUBW, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x001:
			return Instr{Op: OpSLLW, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x005:
			return Instr{Op: OpSRLW, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		case 0x205:
			return Instr{Op: OpSRAW, Len: 4, rd: rd, rs1: rs1, rs2: rs2, raw: in}
		}
		return Instr{Op: OpIllegal, Len: 4, raw: in}
	case boMiscMem:
		return Instr{Op: OpFENCE, Len: 4, raw: in}
	case boSystem:
		if in>>7 == 0 {
			return Instr{Op: OpECALL, Len: 4, raw: in}
		}
		if in>>20&0xfff == 1 {
			return Instr{Op: OpEBREAK, Len: 4, raw: in}
		}
		return Instr{Op: OpIllegal, Len: 4, raw: in}
	default:
		return Instr{Op: OpIllegal, Len: 4, raw: in}
	}
}

func signExtend(v uint64, signBit uint) int64 {
	mask := uint64(1) << signBit
	v &= mask<<1 - 1
	if v&mask != 0 {
		v |= ^(mask<<1 - 1)
	}
	return int64(v)
}
