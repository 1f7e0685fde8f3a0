package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sunholo/petrc/internal/compile"
	"github.com/sunholo/petrc/internal/config"
	"github.com/sunholo/petrc/internal/diag"
	"github.com/sunholo/petrc/internal/repl"
	"github.com/sunholo/petrc/internal/source"
)

var (
	// Version info - set by ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	// Color output
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		jsonFlag    = flag.Bool("json", false, "Emit diagnostics as JSON, one report per line")
		configFlag  = flag.String("config", config.DefaultFile, "Path to the options file")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	opts, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	if *jsonFlag {
		opts.JSON = true
	}

	switch command := flag.Arg(0); command {
	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: petrc check <file.petr> [more files...]")
			os.Exit(1)
		}
		checkFiles(flag.Args()[1:], opts)

	case "repl":
		r := repl.New(opts)
		r.SetVersion(Version)
		r.Start(os.Stdout)

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

// checkFiles runs the whole front-end over the given files and prints every
// collected diagnostic. Exit status 1 means the compilation has errors.
func checkFiles(paths []string, opts *config.Options) {
	files := make([]source.File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			os.Exit(1)
		}
		files = append(files, source.File{Name: path, Text: string(data)})
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "%s %d file(s)\n", cyan("checking"), len(files))
	}
	res := compile.Run(files, nil)

	if opts.TraceConstraints {
		for _, ct := range res.Types.Constraints() {
			fmt.Fprintf(os.Stderr, "%s %s(%s, %s)\n", cyan("constraint"),
				ct.Kind, res.Types.PrettyVar(ct.A), res.Types.PrettyVar(ct.B))
		}
	}

	printReports(res, opts)
	if res.HasErrors() {
		os.Exit(1)
	}
	fmt.Printf("%s %d function(s), %d specialization(s)\n",
		green("ok:"), len(res.TypedFunctions), res.Monomorphized.Len())
}

func printReports(res *compile.Result, opts *config.Options) {
	for i, rep := range res.Reports {
		if opts.MaxErrors > 0 && i == opts.MaxErrors {
			fmt.Fprintf(os.Stderr, "... and %d more\n", len(res.Reports)-i)
			break
		}
		if opts.JSON {
			if line, err := rep.ToJSON(true); err == nil {
				fmt.Println(line)
			}
			continue
		}
		fmt.Fprintf(os.Stderr, "%s %s: %s%s\n", red(rep.Code), yellow(rep.Phase), rep.Message, where(res, rep))
		if rep.Help != "" {
			fmt.Fprintln(os.Stderr, "  "+rep.Help)
		}
	}
}

// where renders a report's primary position as " (name:offset)". Rendering
// annotated source snippets is a renderer's job, not the core's; this is
// just enough to find the spot.
func where(res *compile.Result, rep *diag.Report) string {
	if rep.Span == nil {
		return ""
	}
	return fmt.Sprintf(" (%s:%d)", res.Sources.Name(rep.Span.Source()), rep.Span.Offset())
}

func printVersion() {
	fmt.Printf("%s %s\n", bold("petrc"), Version)
	fmt.Printf("  commit: %s\n", Commit)
	fmt.Printf("  built:  %s\n", BuildTime)
}

func printHelp() {
	fmt.Printf("%s - compiler front-end for the petr language\n\n", bold("petrc"))
	fmt.Println("Usage: petrc [flags] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  check <files...>  Parse, bind, resolve, and type-check the given files")
	fmt.Println("  repl              Interactive type-checking loop")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
