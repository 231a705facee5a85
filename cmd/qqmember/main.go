// Command qqmember converts QQ group-member pages saved from
// https://qun.qq.com/member.html into tabular files. Each FILE (or each
// .html file found under a directory argument) produces a sibling
// output file with the extension replaced.
package main

import (
	"flag"
	"fmt"
	"os"

	"qq-member-export/internal/convert"
	"qq-member-export/internal/logging"
)

// verbosity counts repeated -v flags.
type verbosity int

func (v *verbosity) String() string   { return fmt.Sprint(int(*v)) }
func (v *verbosity) IsBoolFlag() bool { return true }
func (v *verbosity) Set(string) error { *v++; return nil }

func main() {
	var verbose verbosity
	format := flag.String("format", "csv", "output format: csv or xlsx")
	flag.Var(&verbose, "v", "increase log verbosity (repeatable)")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage: %s [-v] [-format csv|xlsx] FILE...\n\n", os.Args[0])
		fmt.Fprintln(out, "Extracts member records from saved qun.qq.com member pages.")
		fmt.Fprintln(out, "Directories are walked recursively for .html files.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := logging.New(os.Stderr, int(verbose))

	f, err := convert.ParseFormat(*format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := convert.New(log, f).Run(flag.Args()); err != nil {
		log.Error("conversion failed", "err", err)
		os.Exit(1)
	}
}
