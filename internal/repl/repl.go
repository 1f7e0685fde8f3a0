// Package repl implements the interactive type-checking loop: declarations
// accumulate into an in-memory module and expressions are checked against it
// one at a time, printing their inferred type. There is no evaluator --
// execution is out of scope for the core -- so the REPL is a conversation
// with the front-end and the type checker only.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/sunholo/petrc/internal/compile"
	"github.com/sunholo/petrc/internal/config"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/typecheck"
)

// Color functions for pretty output
var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// itWrapper names the synthetic function an expression input is wrapped in.
// Its generic return type lets any expression through; the inferred type is
// read off the checked body.
const itWrapper = "repl_it"

// REPL holds the accumulated declarations of one interactive session.
type REPL struct {
	opts    *config.Options
	decls   []string
	history []string
	version string
}

// New creates a REPL with the given options (nil for defaults).
func New(opts *config.Options) *REPL {
	if opts == nil {
		opts = config.Default()
	}
	return &REPL{opts: opts}
}

// SetVersion records version info for the banner.
func (r *REPL) SetVersion(v string) { r.version = v }

// Start runs the interactive loop until :quit or EOF.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".petrc_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetMultiLineMode(true)
	line.SetCompleter(func(input string) (c []string) {
		if strings.HasPrefix(input, ":") {
			for _, cmd := range []string{":help", ":quit", ":type", ":decls", ":history", ":clear"} {
				if strings.HasPrefix(cmd, input) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	version := r.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(out, "%s %s\n", bold("petrc"), bold(version))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt("π> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if r.command(input, out) {
				break
			}
			continue
		}
		if isDeclaration(input) {
			r.addDeclaration(input, out)
		} else {
			r.showType(input, out)
		}
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// command dispatches a :-prefixed input; returns true to exit the loop.
func (r *REPL) command(input string, out io.Writer) bool {
	cmd, rest, _ := strings.Cut(input, " ")
	switch cmd {
	case ":quit", ":q":
		fmt.Fprintln(out, green("Goodbye!"))
		return true
	case ":help", ":h":
		fmt.Fprintln(out, bold("Commands:"))
		fmt.Fprintln(out, "  :type <expr>   show the inferred type of an expression")
		fmt.Fprintln(out, "  :decls         list accumulated declarations")
		fmt.Fprintln(out, "  :history       show input history")
		fmt.Fprintln(out, "  :clear         drop all accumulated declarations")
		fmt.Fprintln(out, "  :quit          exit")
		fmt.Fprintln(out, dim("Anything beginning with function/Function/type/import/export is"))
		fmt.Fprintln(out, dim("added as a declaration; anything else is type-checked as an"))
		fmt.Fprintln(out, dim("expression."))
	case ":type", ":t":
		if rest == "" {
			fmt.Fprintf(out, "%s: usage: :type <expr>\n", red("Error"))
			return false
		}
		r.showType(rest, out)
	case ":decls":
		if len(r.decls) == 0 {
			fmt.Fprintln(out, dim("(none)"))
			return false
		}
		for _, d := range r.decls {
			fmt.Fprintln(out, d)
		}
	case ":history":
		for _, h := range r.history {
			fmt.Fprintln(out, h)
		}
	case ":clear":
		r.decls = nil
		fmt.Fprintln(out, green("Cleared."))
	default:
		fmt.Fprintf(out, "%s: unknown command %s\n", red("Error"), cmd)
	}
	return false
}

// isDeclaration reports whether an input line opens a top-level declaration
// rather than an expression.
func isDeclaration(input string) bool {
	for _, kw := range []string{"function ", "Function ", "type ", "import ", "export "} {
		if strings.HasPrefix(input, kw) {
			return true
		}
	}
	return false
}

// addDeclaration trial-compiles the accumulated module plus the new
// declaration; only an error-free result is kept.
func (r *REPL) addDeclaration(decl string, out io.Writer) {
	res := r.check(append(append([]string{}, r.decls...), decl))
	if res.HasErrors() {
		r.printReports(res, out)
		return
	}
	r.decls = append(r.decls, decl)
	fmt.Fprintln(out, green("ok"))
}

// showType compiles the module with the expression wrapped in a synthetic
// generic function, then prints the inferred type of its body.
func (r *REPL) showType(expr string, out io.Writer) {
	wrapper := fmt.Sprintf("function %s() returns 'A %s", itWrapper, expr)
	res := r.check(append(append([]string{}, r.decls...), wrapper))
	if res.HasErrors() {
		r.printReports(res, out)
		return
	}
	sym, ok := res.Interner.Lookup(itWrapper)
	if !ok {
		fmt.Fprintf(out, "%s: expression did not parse\n", red("Error"))
		return
	}
	var fn *typecheck.Function
	var best ids.FunctionID
	for id, f := range res.TypedFunctions {
		if f.Name.Name == sym && (fn == nil || id > best) {
			fn, best = f, id
		}
	}
	if fn == nil {
		fmt.Fprintf(out, "%s: expression did not parse\n", red("Error"))
		return
	}
	fmt.Fprintf(out, "%s %s\n", cyan("::"), res.Types.PrettyVar(fn.Body.Ty()))
}

func (r *REPL) check(decls []string) *compile.Result {
	text := strings.Join(decls, "\n")
	return compile.Run([]source.File{{Name: "repl.petr", Text: text}}, nil)
}

func (r *REPL) printReports(res *compile.Result, out io.Writer) {
	max := r.opts.MaxErrors
	for i, rep := range res.Reports {
		if max > 0 && i == max {
			fmt.Fprintln(out, dim(fmt.Sprintf("... and %d more", len(res.Reports)-i)))
			break
		}
		fmt.Fprintf(out, "%s %s: %s\n", red(rep.Code), yellow(rep.Phase), rep.Message)
		if rep.Help != "" {
			fmt.Fprintln(out, dim(rep.Help))
		}
	}
}
