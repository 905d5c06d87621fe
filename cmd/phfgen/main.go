// Command phfgen is a small harness that exercises the compiler
// pipeline end to end: it reads newline-delimited keys from stdin,
// compiles them into a perfect-hash function, and prints a summary.
// It is not the project's CLI frontend — key-spec parsing and C code
// generation live elsewhere, outside this module's scope.
package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/ncruces/go-strftime"

	compileerrors "phfgen/internal/errors"
	"phfgen/internal/phf"
	"phfgen/internal/report"
	"phfgen/internal/spec"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "phfgen: %s\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	keys, readErr := readKeys(os.Stdin)
	if readErr != nil {
		return readErr
	}
	if len(keys) == 0 {
		return fmt.Errorf("no keys on stdin")
	}

	sp := spec.New(keys)

	start := time.Now()
	result, compileErr := phf.Compile(sp)
	elapsed := time.Since(start)
	if compileErr != nil {
		if ce, ok := compileErr.(*compileerrors.CompileError); ok {
			return fmt.Errorf("%s", ce.Error())
		}
		return compileErr
	}

	summary := report.Build(result, elapsed)
	fmt.Printf("%s at %s\n", summary, strftime.Format("%Y-%m-%d %H:%M:%S", time.Now()))
	return nil
}

func readKeys(f *os.File) ([]spec.Key, error) {
	var keys []spec.Key
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		keys = append(keys, spec.Key(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
