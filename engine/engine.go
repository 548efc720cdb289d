// Package engine orchestrates the full gadget-discovery pipeline described
// in spec.md §5: load a binary, fan out disassembly and enumeration across
// its executable sections and tails, fold the results into a deduplicated,
// deterministically ordered listing.
package engine

import (
	"bytes"
	"context"
	"regexp"
	"runtime"
	"sort"
	"sync"

	"github.com/mbutler/ropgrub/binfmt"
	"github.com/mbutler/ropgrub/disasm/riscv"
	"github.com/mbutler/ropgrub/disasm/x86"
	"github.com/mbutler/ropgrub/gadget"
	"github.com/pkg/errors"
)

// Options configures a Scan, directly mirroring spec.md §6's invocation
// configuration.
type Options struct {
	// Raw selects object-parsing mode: nil = unspecified (ELF/PE with raw
	// fallback), true = force raw, false = force ELF/PE.
	Raw *bool
	// ROP, Sys, JOP select which tail categories are enabled. At least one
	// must be true (enforced by the caller; spec.md §6).
	ROP, Sys, JOP bool
	// Noisy relaxes head/tail eligibility per spec.md §4.2/§4.5.
	Noisy bool
	// Uniq switches dedup from address-distinct to sequence-distinct
	// (spec.md §4.7).
	Uniq bool
	// MaxInstructions bounds gadget length (spec.md §4.5's M). Must be >= 1.
	MaxInstructions int
	// Bits overrides the bitness of every scanned section, most useful
	// paired with Raw=true for a blob whose width the loader cannot infer
	// (spec.md §9 open question on the raw=nil bitness-32 fallback).
	Bits *int
	// Filter, when non-nil, restricts output to gadgets whose formatted
	// text matches.
	Filter *regexp.Regexp
	// StackPivotOnly, BasePivotOnly further restrict output to gadgets
	// classified as the corresponding pivot kind (spec.md §4.6).
	StackPivotOnly, BasePivotOnly bool
}

// ResultEntry is one deduplicated gadget in a Scan's output, annotated with
// the section it was found in so results can be sorted deterministically.
type ResultEntry struct {
	Gadget       *gadget.Gadget
	Address      binfmt.Addr
	SectionIndex int
}

// Result is the full, sorted output of a Scan.
type Result struct {
	Entries []ResultEntry
}

func (o Options) category() gadget.Category {
	var cat gadget.Category
	if o.ROP {
		cat |= gadget.CategoryROP
	}
	if o.Sys {
		cat |= gadget.CategorySys
	}
	if o.JOP {
		cat |= gadget.CategoryJOP
	}
	return cat
}

// disassemble picks the decoder for bin's architecture. Both backends share
// the Disassemble(Section) ([]gadget.Instruction, error) shape.
func disassemble(arch binfmt.Arch, sec binfmt.Section) ([]gadget.Instruction, error) {
	if arch == binfmt.ArchRiscV {
		return riscv.Disassemble(sec)
	}
	return x86.Disassemble(sec)
}

// Scan runs the full pipeline of spec.md §5 over bin: sections are
// disassembled and scanned in parallel (tier 1), each tail's backward
// enumeration also runs in parallel (tier 2), and results fold into a
// deduplicated set before being sorted for deterministic output.
//
// Only the preceding binfmt.Load call blocks on I/O; everything Scan itself
// does is CPU-bound. ctx is checked between sections for cooperative
// cancellation; it does not affect the correctness of any single section's
// results, only how many sections run before an early return.
func Scan(ctx context.Context, bin *binfmt.Binary, opts Options) (*Result, error) {
	if opts.MaxInstructions < 1 {
		return nil, errors.New("engine: MaxInstructions must be >= 1")
	}
	if !opts.ROP && !opts.Sys && !opts.JOP {
		return nil, errors.New("engine: at least one of rop, sys, jop must be enabled")
	}

	sections, err := binfmt.Sections(bin, opts.Raw)
	if err != nil {
		return nil, errors.Wrap(err, "engine: scan")
	}
	if opts.Bits != nil {
		bitness := binfmt.Bitness(*opts.Bits)
		for i := range sections {
			sections[i].Bitness = bitness
		}
	}

	cat := opts.category()
	agg := newAggregator()

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup

	for secIdx, sec := range sections {
		if ctx.Err() != nil {
			break
		}
		secIdx, sec := secIdx, sec
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			scanSection(bin.Arch(), secIdx, sec, cat, opts, agg)
		}()
	}
	wg.Wait()

	entries := agg.entries()
	entries = applyFilters(entries, opts)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SectionIndex != entries[j].SectionIndex {
			return entries[i].SectionIndex < entries[j].SectionIndex
		}
		return entries[i].Address < entries[j].Address
	})
	return &Result{Entries: entries}, nil
}

// scanSection disassembles one section, scans its dense index for tails,
// and fans tier-2 enumeration out across those tails, folding every
// emission into agg. Errors from a single section's disassembly are not
// fatal to the overall scan; an unparseable section simply yields nothing,
// matching the architecture-agnostic dense-index contract (invalid slots
// are data, not failures).
func scanSection(arch binfmt.Arch, secIdx int, sec binfmt.Section, cat gadget.Category, opts Options, agg *aggregator) {
	idx, err := disassemble(arch, sec)
	if err != nil {
		return
	}
	tails := gadget.ScanTails(idx, cat, opts.Noisy)

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for _, tail := range tails {
		tail := tail
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			base := sec.ProgramBase + sec.VAddr
			emissions := gadget.EnumerateFromTail(idx, tail, base, opts.MaxInstructions, opts.Noisy, opts.Uniq)
			for _, e := range emissions {
				agg.add(ResultEntry{Gadget: e.Gadget, Address: binfmt.Addr(e.Address), SectionIndex: secIdx}, opts.Uniq)
			}
		}()
	}
	wg.Wait()
}

// applyFilters runs the text/classification post-filters of spec.md §6
// (--filter, --stack-pivot, --base-pivot) over the deduplicated entries.
func applyFilters(entries []ResultEntry, opts Options) []ResultEntry {
	if opts.Filter == nil && !opts.StackPivotOnly && !opts.BasePivotOnly {
		return entries
	}
	out := entries[:0]
	for _, e := range entries {
		if opts.Filter != nil && !opts.Filter.MatchString(e.Gadget.Format()) {
			continue
		}
		if opts.StackPivotOnly && !e.Gadget.IsStackPivot() {
			continue
		}
		if opts.BasePivotOnly && !e.Gadget.IsBasePivot() {
			continue
		}
		out = append(out, e)
	}
	return out
}

// aggregator is the concurrent deduplicating set described in spec.md §4.7
// / §9 ("a sharded concurrent set keyed by instruction-sequence hash avoids
// contention"). A single mutex-guarded map is used here rather than
// sharding: gadget enumeration is CPU-bound and the critical section is a
// single map insert, so contention is bounded by the number of logical
// cores, not the gadget count.
type aggregator struct {
	mu   sync.Mutex
	seen map[string]ResultEntry
}

func newAggregator() *aggregator {
	return &aggregator{seen: make(map[string]ResultEntry)}
}

// add inserts e if its dedup key has not been seen before. When uniq is
// true the key is derived from the gadget's encoded instruction bytes, so
// that distinct addresses with identical sequences collapse (I4); when
// uniq is false, the key is the (section, address) pair, so that distinct
// addresses always yield distinct entries even if their sequences coincide
// (I5) — this mirrors Gadget.UniqueID's own address-vs-zero split, applied
// at the point where the enumerator's local stream is folded into the
// shared set.
func (a *aggregator) add(e ResultEntry, uniq bool) {
	key := dedupKey(e, uniq)
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.seen[key]; !ok {
		a.seen[key] = e
	}
}

func (a *aggregator) entries() []ResultEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ResultEntry, 0, len(a.seen))
	for _, e := range a.seen {
		out = append(out, e)
	}
	return out
}

func dedupKey(e ResultEntry, uniq bool) string {
	if !uniq {
		return addrKey(e.SectionIndex, e.Address)
	}
	var buf bytes.Buffer
	for _, instr := range e.Gadget.Instructions {
		buf.Write(instr.Bytes())
	}
	return buf.String()
}

func addrKey(sectionIndex int, addr binfmt.Addr) string {
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(sectionIndex >> (8 * i))
	}
	for i := 0; i < 8; i++ {
		buf[8+i] = byte(addr >> (8 * i))
	}
	return string(buf[:])
}
