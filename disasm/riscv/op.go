// Package riscv implements gadget.Instruction for RV32 and RV64, including
// the compressed ("C") extension, grounded on the base-opcode dispatch-table
// decoding style used by RISC-V software emulators.
package riscv

// Op identifies the decoded mnemonic of a RISC-V instruction, uncompressed
// or compressed. Compressed ops keep their "c." prefix in their string form
// (format.go) even though many expand to the same semantics as a base op;
// classification (flow.go) treats both forms explicitly, matching how the
// reference disassembler surfaces them as distinct mnemonics.
type Op int

const (
	OpIllegal Op = iota

	// RV32I / RV64I base.
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpRet // pseudo-op: jalr x0, 0(x1)
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpLWU
	OpLD
	OpSB
	OpSH
	OpSW
	OpSD
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpFENCE
	OpECALL
	OpEBREAK
	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW

	// Compressed (RVC) forms relevant to gadget discovery and pivot
	// classification; see spec §4.4/§4.6.
	OpCAddi4spn
	OpCLw
	OpCLd
	OpCSw
	OpCSd
	OpCNop
	OpCAddi
	OpCJal
	OpCLi
	OpCAddi16sp
	OpCLui
	OpCSrli
	OpCSrai
	OpCAndi
	OpCSub
	OpCXor
	OpCOr
	OpCAnd
	OpCJ
	OpCBeqz
	OpCBnez
	OpCSlli
	OpCLwsp
	OpCLdsp
	OpCJr
	OpCMv
	OpCEbreak
	OpCJalr
	OpCAdd
	OpCSwsp
	OpCSdsp
)
