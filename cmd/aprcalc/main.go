/*
main.go - Command-line APR calculator

PURPOSE:
  Solves one loan document without a server or database.

USAGE:
  aprcalc -file loan.yaml
  aprcalc -file loan.json -guess 12 -v

  Files ending in .yaml or .yml are read as YAML, anything else as JSON.
  Exit status is 1 on any error, with the reason on stderr.

SEE ALSO:
  - factory/loan.go: Document schema
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/warp/apr-engine/factory"
	"github.com/warp/apr-engine/regz"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("aprcalc: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("aprcalc", flag.ContinueOnError)
	file := fs.String("file", "", "Loan document (.json, .yaml or .yml)")
	guess := fs.Float64("guess", 0, "Starting APR guess in percent (default: document's apr_guess, then 5)")
	verbose := fs.Bool("v", false, "Print solver details")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	loan, err := readLoan(*file)
	if err != nil {
		return err
	}
	if *guess != 0 {
		loan.Guess = *guess
	}

	res, err := regz.Calculate(loan)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "APR: %s%%\n", res.Rounded().StringFixed(2))
	fmt.Fprintf(out, "Periods to first payment: %d full + %.4f odd\n", res.Offset.Full, res.Offset.Odd)
	if *verbose {
		fmt.Fprintf(out, "Unrounded APR: %.10f\n", res.APR)
		fmt.Fprintf(out, "Iterations: %d (restarted: %t)\n", res.Iterations, res.Restarted)
	}
	return nil
}

func readLoan(path string) (regz.Loan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return regz.Loan{}, err
	}

	f := factory.NewLoanFactory()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ParseLoanYAML(data)
	default:
		return f.ParseLoan(string(data))
	}
}
