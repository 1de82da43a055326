// Command gturtle translates Turtle documents to N-Triples or N3P.
//
// Usage:
//
//	gturtle [-b=base-uri] [-o=output-file] [-f=nt|n3p|n3p-rdiv] [input-files]
//
// Input files default to stdin; "-" reads stdin explicitly. Exit status is
// 0 on success and 1 on a parse or I/O failure.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/golang/glog"

	"github.com/aleksaelezovic/gturtle/pkg/n3p"
	"github.com/aleksaelezovic/gturtle/pkg/ntriples"
	"github.com/aleksaelezovic/gturtle/pkg/turtle"
	"github.com/aleksaelezovic/gturtle/pkg/uri"
)

const (
	formatNTriples = "nt"
	formatN3P      = "n3p"
	formatN3PRdiv  = "n3p-rdiv"
)

var (
	baseFlag   = flag.String("b", "", "base URI relative IRIs are resolved against (default: the input file's URI)")
	outputFlag = flag.String("o", "-", "output file, - for stdout")
	formatFlag = flag.String("f", formatNTriples, "output format: nt, n3p or n3p-rdiv")
)

func main() {
	_ = flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	out := io.Writer(os.Stdout)
	if *outputFlag != "" && *outputFlag != "-" {
		f, err := os.Create(*outputFlag)
		if err != nil {
			glog.Exitf("error opening %q: %v", *outputFlag, err)
		}
		defer f.Close()
		out = f
	}
	buffered := bufio.NewWriterSize(out, 1<<20)

	var sink turtle.TripleSink
	switch *formatFlag {
	case formatN3P:
		sink = n3p.NewWriter(buffered)
	case formatN3PRdiv:
		sink = n3p.NewWriter(buffered, n3p.WithRdivDecimals())
	case formatNTriples:
		sink = ntriples.NewWriter(buffered)
	default:
		glog.Exitf("unknown output format %q", *formatFlag)
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	start := time.Now()
	if err := sink.Start(); err != nil {
		glog.Exitf("write error: %v", err)
	}

	for _, input := range inputs {
		if err := translate(input, sink); err != nil {
			_ = sink.End()
			_ = buffered.Flush()
			glog.Exit(err)
		}
	}

	if err := sink.End(); err != nil {
		glog.Exitf("write error: %v", err)
	}
	if err := buffered.Flush(); err != nil {
		glog.Exitf("write error: %v", err)
	}

	count := sink.Count()
	elapsed := time.Since(start)
	if count > 0 && elapsed > 0 {
		rate := float64(count) / elapsed.Seconds()
		glog.Infof("translated %d triples in %.1f ms (%.0f triples/s)",
			count, float64(elapsed.Microseconds())/1000.0, rate)
	} else {
		glog.Infof("translated %d triples", count)
	}
}

func translate(input string, sink turtle.TripleSink) error {
	var (
		in     io.Reader
		source string
	)
	if input == "-" {
		in = os.Stdin
		source = "file:///dev/stdin"
	} else {
		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("error opening %q: %w", input, err)
		}
		defer f.Close()
		in = f
		source, err = fileURI(input)
		if err != nil {
			return err
		}
	}

	glog.Infof("translating %s", source)

	baseIRI := source
	if *baseFlag != "" {
		baseIRI = *baseFlag
	}
	base, err := uri.Parse(baseIRI)
	if err != nil {
		return fmt.Errorf("invalid base URI %q: %w", baseIRI, err)
	}

	parser := turtle.New(bufio.NewReader(in), base, sink)
	if err := parser.Parse(); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	return nil
}

// fileURI maps a local path to a file:// URI.
func fileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("could not determine the absolute path for %q: %w", path, err)
	}
	abs = filepath.ToSlash(abs)
	if runtime.GOOS == "windows" {
		return "file:///" + abs, nil
	}
	return "file://" + abs, nil
}
