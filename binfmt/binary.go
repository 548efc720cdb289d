// Package binfmt loads ELF and PE object files and extracts their
// executable sections for gadget discovery. It is the loader described in
// spec.md §4.1: parse a file, identify its kind, and yield a list of
// Sections ready for disassembly.
package binfmt

import (
	"bytes"
	"debug/elf"
	"os"

	"github.com/pkg/errors"
)

// Arch identifies the instruction set family of a Binary.
type Arch int

const (
	// ArchX86 covers both 32-bit x86 and x86-64.
	ArchX86 Arch = iota
	// ArchRiscV covers RV32 and RV64.
	ArchRiscV
)

func (a Arch) String() string {
	switch a {
	case ArchRiscV:
		return "riscv"
	default:
		return "x86"
	}
}

// Bitness is the address width of a Binary or Section.
type Bitness int

const (
	Bits32 Bitness = 32
	Bits64 Bitness = 64
)

// ELF machine constants used for architecture detection, spec.md §4.1.
const (
	elfMachineX86    = 0x03
	elfMachineX86_64 = 0x3E
	elfMachineRiscV  = 0xF3
)

// Binary is an immutable, read-only view of a file's bytes together with
// its detected architecture. It is constructed once per invocation.
type Binary struct {
	path  string
	bytes []byte
	arch  Arch
}

// Path returns the file path the Binary was loaded from.
func (b *Binary) Path() string { return b.path }

// Bytes returns the full, read-only byte buffer of the file.
func (b *Binary) Bytes() []byte { return b.bytes }

// Arch returns the Binary's detected instruction-set architecture.
func (b *Binary) Arch() Arch { return b.arch }

// Load reads path and classifies its architecture. The object itself is not
// rejected here if parsing fails — that surfaces later from Sections, so
// that a raw-mode caller can still scan bytes that are not a valid object
// file at all.
func Load(path string) (*Binary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "binfmt: read %q", path)
	}
	return &Binary{
		path:  path,
		bytes: data,
		arch:  detectArch(data),
	}, nil
}

// detectArch best-effort classifies the architecture of data without
// failing; unparseable or non-ELF/PE data defaults to ArchX86 per spec.md
// §4.1 ("otherwise X86 by default").
func detectArch(data []byte) Arch {
	ef, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return ArchX86
	}
	defer ef.Close()
	switch ef.FileHeader.Machine {
	case elfMachineRiscV:
		return ArchRiscV
	case elfMachineX86, elfMachineX86_64:
		return ArchX86
	default:
		return ArchX86
	}
}
