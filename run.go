package main

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/tinyscript/ast"
	"github.com/pontaoski/tinyscript/errors"
	"github.com/pontaoski/tinyscript/eval"
	"github.com/pontaoski/tinyscript/parser"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/tinyscript", "main")

const stdinName = "<stdin>"

// openSource picks the program named on the command line, or stdin.
func openSource(c *cli.Context) (io.ReadCloser, string, error) {
	switch c.NArg() {
	case 0:
		return ioutil.NopCloser(c.App.Reader), stdinName, nil
	case 1:
		name := c.Args().First()
		f, err := os.Open(name)
		if err != nil {
			plog.Debugf("open %s: %v", name, err)
			return nil, name, cli.Exit("COULD NOT OPEN "+name, 1)
		}
		return f, name, nil
	}
	return nil, "", cli.Exit("TOO MANY FILENAMES", 1)
}

func internalError(cfg config, err error) error {
	err = tracerr.Wrap(err)
	if cfg.Trace {
		return cli.Exit(tracerr.SprintSourceColor(err), 1)
	}
	return cli.Exit(tracerr.Unwrap(err).Error(), 1)
}

// parseSource parses the selected program and prints its diagnostics to out.
// The program is nil when there was anything to report.
func parseSource(c *cli.Context, cfg config, out io.Writer) (*ast.StmtList, error) {
	src, name, err := openSource(c)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	prog, diags, err := parser.Parse(src, name)
	if err != nil {
		return nil, internalError(cfg, err)
	}
	if _, err := diags.WriteTo(out); err != nil {
		return nil, internalError(cfg, tracerr.Wrap(err))
	}
	return prog, nil
}

func runAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(c.App.Writer)
	defer out.Flush()

	prog, err := parseSource(c, cfg, out)
	if err != nil || prog == nil {
		return err
	}

	ctx := eval.NewContext(out)
	err = eval.Run(ctx, prog)
	if rerr, ok := tracerr.Unwrap(err).(*errors.RuntimeError); ok {
		fmt.Fprintf(out, "RUNTIME ERROR %s\n", rerr.Message)
	} else if err != nil {
		return internalError(cfg, err)
	}

	if cfg.Symbols != "" {
		if err := dumpSymbols(ctx, cfg.Symbols); err != nil {
			return internalError(cfg, err)
		}
	}
	return nil
}

func dumpSymbols(ctx *eval.Context, path string) error {
	data, err := yaml.Marshal(ctx.Symbols.Snapshot())
	if err != nil {
		return tracerr.Wrap(err)
	}
	return tracerr.Wrap(ioutil.WriteFile(path, data, 0644))
}
