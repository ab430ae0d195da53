package compile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/brimdata/sqm/cmd/sqm/root"
	"github.com/brimdata/sqm/compiler"
	"github.com/brimdata/sqm/compiler/parser"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/kr/pretty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Command struct {
	query    string
	source   string
	dump     bool
	stats    bool
	parallel int
}

func init() {
	root.Sqm.AddCommand(New())
}

func New() *cobra.Command {
	c := &Command{}
	cmd := &cobra.Command{
		Use:   "compile [ options ] [ file ... ]",
		Short: "resolve statements and print their semantic query model",
		Long: `
This command resolves each statement against the domain model and prints
the resulting semantic query model as indented text.

Files ending in ".json" hold a syntax tree produced by an external parser.
The optional --source file holds the query text such a tree was parsed
from so that errors can point into it.  Any other file holds query text.
A query may also be given on the command line with -c.

Statements are compiled concurrently.  The first failure stops the
command.  With --dump, the model is printed as a Go value instead.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&c.query, "query", "c", "", "query text to compile")
	f.StringVar(&c.source, "source", "", "query text of a single JSON syntax tree")
	f.BoolVar(&c.dump, "dump", false, "print the model as a Go value")
	f.BoolVar(&c.stats, "stats", false, "print compile metrics to stderr")
	f.IntVarP(&c.parallel, "parallel", "P", runtime.GOMAXPROCS(0), "maximum number of concurrent compiles")
	return cmd
}

func (c *Command) Run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.query == "" && len(args) == 0 {
		return errors.New("no query specified")
	}
	srcs, err := c.sources(args)
	if err != nil {
		return err
	}
	env, err := root.NewEnv()
	if err != nil {
		return err
	}
	defer env.Logger.Sync()
	stmts, err := env.Compiler.CompileAll(ctx, srcs, c.parallel)
	if c.stats {
		if statsErr := writeStats(stderr, env.Registry); statsErr != nil {
			env.Logger.Error("writing metrics", zap.Error(statsErr))
		}
	}
	if err != nil {
		return err
	}
	for k, stmt := range stmts {
		if len(stmts) > 1 {
			fmt.Fprintf(stdout, "-- %s\n", srcs[k].Name)
		}
		if c.dump {
			fmt.Fprintf(stdout, "%# v\n", pretty.Formatter(stmt))
		} else {
			fmt.Fprintln(stdout, sqm.Format(stmt))
		}
	}
	return nil
}

func (c *Command) sources(args []string) ([]compiler.Source, error) {
	var source string
	if c.source != "" {
		if len(args) != 1 || filepath.Ext(args[0]) != ".json" {
			return nil, errors.New("--source requires exactly one JSON syntax tree")
		}
		b, err := os.ReadFile(c.source)
		if err != nil {
			return nil, err
		}
		source = string(b)
	}
	var srcs []compiler.Source
	if c.query != "" {
		p, err := parser.ParseQuery(c.query)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, compiler.Source{Name: "-c", AST: p})
	}
	for _, path := range args {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var p *parser.AST
		if filepath.Ext(path) == ".json" {
			p, err = parser.ParseJSON(b, source)
		} else {
			p, err = parser.ParseQuery(string(b))
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		srcs = append(srcs, compiler.Source{Name: path, AST: p})
	}
	return srcs, nil
}

func writeStats(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
