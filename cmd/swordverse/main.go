// Command swordverse looks up verses in SWORD zText modules.
//
// Usage:
//
//	swordverse lookup KJV "Gen 1:1"
//	swordverse lookup KJV Genesis 1 1
//	swordverse index KJV ot 4
//	swordverse info KJV
//	swordverse export KJV --out kjv.db
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/FocuswithJustin/swordverse/core/canon"
	lookuperr "github.com/FocuswithJustin/swordverse/core/errors"
	"github.com/FocuswithJustin/swordverse/core/sqlite"
	"github.com/FocuswithJustin/swordverse/core/ztext"
	"github.com/FocuswithJustin/swordverse/internal/config"
	"github.com/FocuswithJustin/swordverse/internal/export"
	"github.com/FocuswithJustin/swordverse/internal/fingerprint"
	"github.com/FocuswithJustin/swordverse/internal/logging"
)

const version = "0.1.0"

// Exit codes.
const (
	exitOK             = 0
	exitFailure        = 1
	exitReferenceError = 2
	exitCorpusError    = 3
)

// CLI defines the command-line interface for swordverse.
type CLI struct {
	// Global flags
	ModulesRoot string `name:"modules-root" short:"m" help:"Directory holding zText modules (env SWORD_MODULES_ROOT)" type:"path"`
	Config      string `name:"config" short:"c" help:"YAML configuration file" type:"existingfile"`
	LogLevel    string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat   string `name:"log-format" help:"Log format (text, json)"`

	Lookup  LookupCmd  `cmd:"" help:"Print the text of a verse"`
	Index   IndexCmd   `cmd:"" help:"Print the text stored at a raw testament index"`
	Info    InfoCmd    `cmd:"" help:"Describe a module and fingerprint its files"`
	Export  ExportCmd  `cmd:"" help:"Export every verse of a module to SQLite"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// runEnv is bound into every command's Run method.
type runEnv struct {
	ctx    context.Context
	cfg    *config.Config
	stdout io.Writer
}

// open opens a module with its configured options.
func (e *runEnv) open(name string) (*ztext.Module, error) {
	opts, err := e.cfg.ModuleOptions(name)
	if err != nil {
		return nil, err
	}
	opts.Logger = logging.LoggerFromContext(e.ctx)
	return ztext.Open(e.cfg.ModulesRoot, name, opts)
}

// LookupCmd prints one verse.
type LookupCmd struct {
	Module    string   `arg:"" help:"Module name (directory under the modules root)"`
	Reference []string `arg:"" help:"Reference as \"Gen 1:1\" or as <book> <chapter> <verse>"`
}

func (c *LookupCmd) Run(env *runEnv) error {
	mod, err := env.open(c.Module)
	if err != nil {
		return err
	}
	defer mod.Close()

	start := time.Now()
	ref := strings.Join(c.Reference, " ")

	var text string
	if book, chapter, verse, ok := splitReference(c.Reference); ok {
		text, err = mod.Lookup(book, chapter, verse)
	} else {
		text, err = mod.LookupRef(ref)
	}
	if err != nil {
		logging.LookupFailure(env.ctx, c.Module, string(lookuperr.StageOf(err)), err, "ref", ref)
		return err
	}

	logging.VerseLookup(env.ctx, c.Module, ref, len(text), time.Since(start))
	fmt.Fprintln(env.stdout, text)
	return nil
}

// splitReference recognizes the <book...> <chapter> <verse> argument form.
func splitReference(args []string) (book string, chapter, verse int, ok bool) {
	n := len(args)
	if n < 3 {
		return "", 0, 0, false
	}
	chapter, err := strconv.Atoi(args[n-2])
	if err != nil {
		return "", 0, 0, false
	}
	verse, err = strconv.Atoi(args[n-1])
	if err != nil {
		return "", 0, 0, false
	}
	return strings.Join(args[:n-2], " "), chapter, verse, true
}

// IndexCmd prints the text at a raw index, bypassing the canon.
type IndexCmd struct {
	Module    string `arg:"" help:"Module name"`
	Testament string `arg:"" enum:"ot,nt" help:"Testament (ot or nt)"`
	Index     int    `arg:"" help:"Global verse index"`
}

func (c *IndexCmd) Run(env *runEnv) error {
	t, err := canon.ParseTestament(c.Testament)
	if err != nil {
		return err
	}
	mod, err := env.open(c.Module)
	if err != nil {
		return err
	}
	defer mod.Close()

	text, err := mod.LookupIndex(t, c.Index)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.stdout, text)
	return nil
}

// InfoCmd describes a module.
type InfoCmd struct {
	Module string `arg:"" help:"Module name"`
	NoHash bool   `name:"no-hash" help:"Skip BLAKE3 fingerprints"`
}

func (c *InfoCmd) Run(env *runEnv) error {
	mod, err := env.open(c.Module)
	if err != nil {
		return err
	}
	defer mod.Close()

	info, err := mod.Info()
	if err != nil {
		return err
	}

	digests := make(map[string]string)
	if !c.NoHash {
		list, err := fingerprint.Module(mod)
		if err != nil {
			return err
		}
		for _, d := range list {
			digests[d.Name] = d.BLAKE3
		}
	}

	w := env.stdout
	fmt.Fprintf(w, "Module:    %s\n", info.Name)
	fmt.Fprintf(w, "Path:      %s\n", info.Dir)
	fmt.Fprintf(w, "Codec:     %s\n", info.Codec)
	fmt.Fprintf(w, "Encoding:  %s\n", info.Encoding)
	fmt.Fprintf(w, "Canon:     %s\n", info.Canon)
	for _, t := range info.Testaments {
		fmt.Fprintf(w, "\n%s: %s slots, %s blocks\n", t.Testament,
			humanize.Comma(int64(t.Slots)), humanize.Comma(int64(t.Blocks)))
		for _, f := range t.Files {
			fmt.Fprintf(w, "  %-7s %10s", f.Name, humanize.IBytes(uint64(f.Size)))
			if sum, ok := digests[f.Name]; ok {
				fmt.Fprintf(w, "  blake3:%s", sum)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

// ExportCmd writes a module to SQLite.
type ExportCmd struct {
	Module string `arg:"" help:"Module name"`
	Out    string `required:"" short:"o" help:"Output database path" type:"path"`
	Force  bool   `short:"f" help:"Replace an existing output file"`
}

func (c *ExportCmd) Run(env *runEnv) error {
	if c.Force {
		if err := os.Remove(c.Out); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	mod, err := env.open(c.Module)
	if err != nil {
		return err
	}
	defer mod.Close()

	stats, err := export.ToSQLite(env.ctx, mod, c.Out)
	if err != nil {
		return err
	}

	st, err := os.Stat(c.Out)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "Exported %s verses from %d books to %s (%s) in %s\n",
		humanize.Comma(int64(stats.Verses)), stats.Books, c.Out,
		humanize.IBytes(uint64(st.Size())), stats.Duration.Round(time.Millisecond))
	if stats.Failed > 0 {
		fmt.Fprintf(env.stdout, "Skipped %s unreadable verses\n", humanize.Comma(int64(stats.Failed)))
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(env *runEnv) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(env.stdout, "swordverse version %s (sqlite: %s)\n", version, info.DriverType)
	return nil
}

// loadConfig layers defaults, the config file, the environment and flags.
func (cli *CLI) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cli.Config != "" {
		var err error
		if cfg, err = config.LoadFile(cli.Config); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()

	if cli.ModulesRoot != "" {
		cfg.ModulesRoot = cli.ModulesRoot
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Log.Format = cli.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case lookuperr.IsReferenceError(err):
		return exitReferenceError
	case lookuperr.IsCorpusError(err):
		return exitCorpusError
	default:
		return exitFailure
	}
}

// printError writes "swordverse: <stage>: <error>" to w.
func printError(w io.Writer, err error) {
	if stage := lookuperr.StageOf(err); stage != "" {
		fmt.Fprintf(w, "swordverse: %s: %v\n", stage, err)
		return
	}
	fmt.Fprintf(w, "swordverse: %v\n", err)
}

// kongExit carries an exit code requested by kong (e.g. after --help).
type kongExit int

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(kongExit)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("swordverse"),
		kong.Description("Resolve verse references against SWORD zText modules"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(kongExit(c)) }),
	)
	if err != nil {
		printError(stderr, err)
		return exitFailure
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		printError(stderr, err)
		return exitFailure
	}

	cfg, err := cli.loadConfig()
	if err != nil {
		printError(stderr, err)
		return exitFailure
	}
	level, _ := logging.ParseLevel(cfg.Log.Level)
	format, _ := logging.ParseFormat(cfg.Log.Format)
	logging.InitLoggerWithWriter(stderr, level, format)

	ctx, _ = logging.WithNewRequestID(ctx)
	logging.DebugContext(ctx, "starting command",
		"command", kctx.Command(),
		"modules_root", cfg.ModulesRoot)

	env := &runEnv{ctx: ctx, cfg: cfg, stdout: stdout}
	if err := kctx.Run(env); err != nil {
		printError(stderr, err)
		return exitCodeFor(err)
	}
	return exitOK
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
