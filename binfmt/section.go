package binfmt

import (
	"bytes"
	"debug/elf"
	"debug/pe"

	"github.com/pkg/errors"
)

// Section is a borrowed, executable-only view into a Binary's byte buffer.
// The effective instruction address of the byte at relative index i is
// ProgramBase + VAddr + i (spec.md §3).
type Section struct {
	Bytes       []byte
	FileOffset  int
	VAddr       uint64
	ProgramBase uint64
	Bitness     Bitness
}

// Addr returns the absolute virtual address of the byte at relOffset within
// the section.
func (s Section) Addr(relOffset int) Addr {
	return Addr(s.ProgramBase + s.VAddr + uint64(relOffset))
}

// Sections extracts the executable sections of bin per spec.md §4.1.
//
// raw == nil means "unspecified": attempt ELF/PE parsing first, falling
// back to a single synthetic raw section (bitness 32) if the object is
// neither. raw == true always yields the synthetic raw section (bitness
// 64). raw == false forces ELF/PE parsing and fails if neither applies.
func Sections(bin *Binary, raw *bool) ([]Section, error) {
	if raw != nil && *raw {
		return []Section{rawSection(bin.bytes, Bits64)}, nil
	}
	known, sections, err := parseObject(bin.bytes)
	if raw != nil && !*raw {
		if err != nil {
			return nil, err
		}
		if !known {
			return nil, errors.WithStack(ErrParse)
		}
		return sections, nil
	}
	// raw unspecified: a recognized-but-malformed object is a hard parse
	// error (propagated, not swallowed); an unrecognized object falls back
	// to the synthetic raw section at bitness 32.
	if err != nil {
		return nil, err
	}
	if !known {
		return []Section{rawSection(bin.bytes, Bits32)}, nil
	}
	return sections, nil
}

func rawSection(data []byte, bitness Bitness) Section {
	return Section{
		Bytes:       data,
		FileOffset:  0,
		VAddr:       0,
		ProgramBase: 0,
		Bitness:     bitness,
	}
}

// parseObject parses data as ELF or PE and extracts its executable
// sections. known reports whether the magic bytes identified a known object
// family at all (ELF or PE); err carries a structural ErrParse/ErrUnsupported
// failure for a recognized-but-unparseable object, per spec.md §7.
func parseObject(data []byte) (known bool, sections []Section, err error) {
	switch {
	case isELF(data):
		sections, err = elfSections(data)
		return true, sections, err
	case isPE(data):
		sections, err = peSections(data)
		return true, sections, err
	default:
		return false, nil, nil
	}
}

func isELF(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte{0x7f, 'E', 'L', 'F'})
}

func isPE(data []byte) bool {
	return len(data) >= 2 && data[0] == 'M' && data[1] == 'Z'
}

func elfSections(data []byte) ([]Section, error) {
	ef, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(ErrParse, err.Error())
	}
	defer ef.Close()

	bitness := Bits32
	if ef.Class == elf.ELFCLASS64 {
		bitness = Bits64
	}

	var sections []Section
	for _, ph := range ef.Progs {
		if ph.Flags&elf.PF_X == 0 {
			continue
		}
		start := int(ph.Off)
		end := start + int(ph.Filesz)
		if start < 0 || end > len(data) || start > end {
			continue
		}
		sections = append(sections, Section{
			Bytes:       data[start:end],
			FileOffset:  start,
			VAddr:       ph.Vaddr,
			ProgramBase: 0,
			Bitness:     bitness,
		})
	}
	return sections, nil
}

// peSectionExecMask is IMAGE_SCN_MEM_EXECUTE.
const peSectionExecMask = 0x20000000

func peSections(data []byte) ([]Section, error) {
	pf, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(ErrParse, err.Error())
	}
	defer pf.Close()

	bitness := Bits32
	var imageBase uint64
	switch opt := pf.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		bitness = Bits64
		imageBase = opt.ImageBase
	case *pe.OptionalHeader32:
		bitness = Bits32
		imageBase = uint64(opt.ImageBase)
	default:
		return nil, errors.WithStack(ErrUnsupported)
	}

	var sections []Section
	for _, sec := range pf.Sections {
		if sec.Characteristics&peSectionExecMask == 0 {
			continue
		}
		start := int(sec.Offset)
		end := start + int(sec.Size)
		if start < 0 || end > len(data) || start > end {
			continue
		}
		sections = append(sections, Section{
			Bytes:       data[start:end],
			FileOffset:  start,
			VAddr:       uint64(sec.VirtualAddress),
			ProgramBase: imageBase,
			Bitness:     bitness,
		})
	}
	return sections, nil
}
