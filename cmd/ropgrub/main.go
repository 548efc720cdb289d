// The ropgrub tool finds ROP/JOP/SYS gadgets in ELF and PE executables.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"

	"github.com/fatih/color"
	"github.com/mbutler/ropgrub/binfmt"
	"github.com/mbutler/ropgrub/engine"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	// dbg is a logger which logs debug messages with "ropgrub:" prefix to
	// standard error.
	dbg = log.New(os.Stderr, color.MagentaString("ropgrub:")+" ", 0)
	// warn is a logger which logs warning messages with "warning:" prefix to
	// standard error.
	warn = log.New(os.Stderr, color.RedString("warning:")+" ", 0)
)

type flags struct {
	rop, sys, jop bool
	noisy         bool
	max           int
	uniq          bool
	raw           bool
	rawSet        bool
	noRaw         bool
	bits          int
	filter        string
	stackPivot    bool
	basePivot     bool
	color         bool
	noColor       bool
	quiet         bool
	verbose       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "ropgrub <path>",
		Short: "Find ROP/JOP/SYS gadgets in an ELF or PE executable",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFlags(cmd, f)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], f)
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(&f.rop, "rop", true, "enable ROP (ret-terminated) gadgets")
	cmd.Flags().BoolVar(&f.sys, "sys", false, "enable syscall-terminated gadgets")
	cmd.Flags().BoolVar(&f.jop, "jop", false, "enable JOP (indirect-branch-terminated) gadgets")
	cmd.Flags().BoolVar(&f.noisy, "noisy", false, "relax head/tail eligibility to admit more gadgets")
	cmd.Flags().IntVar(&f.max, "max", 6, "maximum instructions per gadget")
	cmd.Flags().BoolVar(&f.uniq, "uniq", false, "deduplicate by instruction sequence instead of address")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "force raw byte-blob scanning (overrides ELF/PE detection)")
	cmd.Flags().BoolVar(&f.noRaw, "no-raw", false, "force ELF/PE parsing, failing if neither applies")
	cmd.Flags().IntVar(&f.bits, "bits", 0, "override section bitness (32 or 64)")
	cmd.Flags().StringVar(&f.filter, "filter", "", "regex filter on formatted gadget text")
	cmd.Flags().BoolVar(&f.stackPivot, "stack-pivot", false, "show only stack-pivot gadgets")
	cmd.Flags().BoolVar(&f.basePivot, "base-pivot", false, "show only base-pivot gadgets")
	cmd.Flags().BoolVar(&f.color, "color", false, "force colorized output")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable colorized output")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "suppress non-error messages")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "print full error context")

	return cmd
}

func validateFlags(cmd *cobra.Command, f *flags) error {
	if !f.rop && !f.sys && !f.jop {
		return errors.New("at least one of --rop, --sys, --jop must be enabled")
	}
	if f.max < 1 {
		return errors.New("--max must be >= 1")
	}
	if f.bits != 0 && f.bits != 32 && f.bits != 64 {
		return errors.New("--bits must be 32 or 64")
	}
	if cmd.Flags().Changed("raw") {
		f.rawSet = true
	} else if cmd.Flags().Changed("no-raw") {
		f.rawSet = true
		f.raw = false
	}
	if f.color && f.noColor {
		return errors.New("--color and --no-color are mutually exclusive")
	}
	return nil
}

func runScan(cmd *cobra.Command, path string, f *flags) error {
	if f.quiet {
		dbg.SetOutput(io.Discard)
	}
	applyColorMode(f)

	bin, err := binfmt.Load(path)
	if err != nil {
		return reportErr(f, err)
	}
	dbg.Printf("loaded %s (arch=%s)", bin.Path(), bin.Arch())

	opts := engine.Options{
		ROP:             f.rop,
		Sys:             f.sys,
		JOP:             f.jop,
		Noisy:           f.noisy,
		Uniq:            f.uniq,
		MaxInstructions: f.max,
		StackPivotOnly:  f.stackPivot,
		BasePivotOnly:   f.basePivot,
	}
	if f.rawSet {
		raw := f.raw
		opts.Raw = &raw
	}
	if f.bits != 0 {
		bits := f.bits
		opts.Bits = &bits
	}
	if f.filter != "" {
		re, err := regexp.Compile(f.filter)
		if err != nil {
			return reportErr(f, errors.Wrap(err, "invalid --filter regex"))
		}
		opts.Filter = re
	}

	result, err := engine.Scan(context.Background(), bin, opts)
	if err != nil {
		return reportErr(f, err)
	}
	dbg.Printf("found %d gadgets", len(result.Entries))

	printResult(cmd.OutOrStdout(), result, f)
	return nil
}

func applyColorMode(f *flags) {
	switch {
	case f.noColor:
		color.NoColor = true
	case f.color:
		color.NoColor = false
	}
}

func printResult(w io.Writer, result *engine.Result, f *flags) {
	for _, e := range result.Entries {
		line := fmt.Sprintf("%s: %s", e.Address, e.Gadget.Format())
		fmt.Fprintln(w, colorizeLine(line, e, f))
	}
}

// colorizeLine applies category/classification color per SPEC_FULL.md's
// CLI section: ROP cyan, SYS yellow, JOP magenta, pivots bolded.
func colorizeLine(line string, e engine.ResultEntry, f *flags) string {
	if color.NoColor {
		return line
	}
	c := categoryColor(e)
	if e.Gadget.IsStackPivot() || e.Gadget.IsBasePivot() {
		c.Add(color.Bold)
	}
	return c.Sprint(line)
}

func categoryColor(e engine.ResultEntry) *color.Color {
	tail := e.Gadget.Instructions[len(e.Gadget.Instructions)-1]
	switch {
	case tail.IsSys():
		return color.New(color.FgYellow)
	case tail.IsRet():
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgMagenta)
	}
}

func reportErr(f *flags, err error) error {
	if f.verbose {
		warn.Printf("%+v", err)
	} else {
		warn.Println(err)
	}
	return err
}
