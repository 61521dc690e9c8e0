package main

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/tinyscript/ast"
	"github.com/pontaoski/tinyscript/codegen"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"
)

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "tinyscript",
		Usage:     "run a tinyscript program",
		ArgsUsage: "[file]",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil || err.Error() == "" {
				return
			}
			fmt.Fprintln(c.App.ErrWriter, err)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "read settings from a YAML `FILE`",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "CRITICAL, ERROR, WARNING, NOTICE, INFO, DEBUG or TRACE",
				Value: "WARNING",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print stack traces for internal errors",
			},
			&cli.StringFlag{
				Name:  "symbols",
				Usage: "write the final symbol table as YAML to `FILE`",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "parse a program and report its diagnostics",
				ArgsUsage: "[file]",
				Action: func(c *cli.Context) error {
					cfg, err := setup(c)
					if err != nil {
						return err
					}
					prog, err := parseSource(c, cfg, c.App.Writer)
					if err != nil {
						return err
					}
					if prog == nil {
						return cli.Exit("", 1)
					}
					return nil
				},
			},
			{
				Name:      "dump",
				Usage:     "print the syntax tree of a program",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "source",
						Usage: "print the tree as formatted source instead",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := setup(c)
					if err != nil {
						return err
					}
					prog, err := parseSource(c, cfg, c.App.Writer)
					if err != nil || prog == nil {
						return err
					}
					if c.Bool("source") {
						fmt.Fprint(c.App.Writer, ast.Format(prog))
						return nil
					}
					repr.New(c.App.Writer, repr.Indent("  ")).Println(prog)
					return nil
				},
			},
			{
				Name:      "stats",
				Usage:     "print size metrics of the syntax tree",
				ArgsUsage: "[file]",
				Action: func(c *cli.Context) error {
					cfg, err := setup(c)
					if err != nil {
						return err
					}
					prog, err := parseSource(c, cfg, c.App.Writer)
					if err != nil || prog == nil {
						return err
					}
					out, err := yaml.Marshal(ast.Measure(prog))
					if err != nil {
						return internalError(cfg, err)
					}
					_, err = c.App.Writer.Write(out)
					return err
				},
			},
			{
				Name:      "build",
				Usage:     "compile an integer-only program with clang",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name: "output",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "print the LLVM IR instead of linking",
						Value: false,
					},
				},
				Action: buildAction,
			},
		},
	}
}

func buildAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	prog, err := parseSource(c, cfg, c.App.Writer)
	if err != nil {
		return err
	}
	if prog == nil {
		return cli.Exit("", 1)
	}

	module, err := codegen.Compile(prog)
	if err != nil {
		return cli.Exit("cannot compile: "+err.Error(), 1)
	}

	if c.Bool("dump") {
		w := bufio.NewWriter(c.App.Writer)
		defer w.Flush()
		_, err := io.WriteString(w, module.String())
		return err
	}

	out := c.String("output")
	if out == "" {
		out = "a.out"
		if c.NArg() == 1 {
			base := filepath.Base(c.Args().First())
			out = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}

	fi, err := ioutil.TempFile("", "tinyscript-*.ll")
	if err != nil {
		return internalError(cfg, err)
	}
	defer os.Remove(fi.Name())
	defer fi.Close()
	if _, err := io.WriteString(fi, module.String()); err != nil {
		return internalError(cfg, err)
	}

	plog.Infof("linking %s", out)
	cmd := exec.Command("clang", "-Wno-override-module", "-o", out, fi.Name())
	cmd.Stdout = c.App.Writer
	cmd.Stderr = c.App.ErrWriter
	if err := cmd.Run(); err != nil {
		return internalError(cfg, err)
	}
	return nil
}

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		if coder, ok := err.(cli.ExitCoder); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}
