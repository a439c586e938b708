// Command wenyan runs a single '.wy' source file.
//
// A single-purpose read-file/compile/run/report-exit-code runner, since
// Wenyan has one thing to do with a file: run it. A positional source
// path plus one boolean flag, parsed with the stdlib flag package.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wenyan-go/wenyan"
	"github.com/wenyan-go/wenyan/internal/ast"
)

func main() {
	roman := flag.Bool("roman", false, "also print an uncaught throw's tag in runtime diagnostics (no romanization is done)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: wenyan [--roman] <file.wy>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	path := flag.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "wenyan: 讀檔有誤:", err)
		os.Exit(1)
	}

	loader := &fileLoader{dir: filepath.Dir(path)}
	runErr := wenyan.Run(string(src), path, os.Stdout, loader)
	if runErr == nil {
		return
	}

	report(runErr, *roman)
	os.Exit(1)
}

func report(err error, roman bool) {
	switch e := err.(type) {
	case *wenyan.GrammarError:
		fmt.Fprintf(os.Stderr, "文法之禍: %s", e.Message)
		if e.Span.Start.Line != 0 {
			fmt.Fprintf(os.Stderr, " (%d:%d)", e.Span.Start.Line, e.Span.Start.Column)
		}
		fmt.Fprintln(os.Stderr)
	case *wenyan.RuntimeError:
		fmt.Fprintf(os.Stderr, "執行之禍: %s\n", e.Message)
		if roman && e.Tag != "" {
			fmt.Fprintf(os.Stderr, "  (tag: %s)\n", e.Tag)
		}
	default:
		fmt.Fprintln(os.Stderr, err)
	}
}

// fileLoader resolves '吾嘗觀 path 之書' against the directory the entry
// file lives in, the usual relative-path import convention.
type fileLoader struct {
	dir string
}

func (l *fileLoader) Load(path string) (*ast.Program, error) {
	full := filepath.Join(l.dir, path+".wy")
	src, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	prog, err := wenyan.Compile(string(src), full)
	if err != nil {
		return nil, err
	}
	return prog, nil
}
