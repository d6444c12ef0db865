package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/folium-app/mango/catalog"
	"github.com/folium-app/mango/internal/log"
)

type mode byte

const (
	runMode      mode = iota // run a ROM in a window
	infoMode                 // show ROM infos
	dumpMode                 // run headless and dump the output
	fetchRDBMode             // download the game database
	versionMode              // show version
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run ROM in a window. (default command)" default:"withargs"`
		Info     Info     `cmd:"" help:"Show ROM infos."`
		Dump     Dump     `cmd:"" help:"Run ROM without a window and dump the last frame and the audio."`
		FetchRDB FetchRDB `cmd:"" help:"Download the game database." name:"fetch-rdb"`
		Version  Version  `cmd:"" help:"Show mango version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `name:"config" help:"Configuration file." type:"path" placeholder:"FILE"`
		Core   string     `name:"core" help:"${core_help}" type:"existingfile" placeholder:"FILE"`
		RDB    string     `name:"rdb" help:"Game database file." type:"path" placeholder:"FILE"`

		mode mode
	}

	Run struct {
		RomPath string            `arg:"" name:"/path/to/rom" help:"${rompath_help}" optional:"" type:"existingfile"`
		Stats   bool              `name:"stats" help:"${stats_help}"`
		Remote  string            `name:"remote" help:"${remote_help}" placeholder:"HOST:PORT"`
		Resume  bool              `name:"resume" help:"Restore the state saved when the game was last closed."`
		Option  map[string]string `name:"option" short:"o" help:"Set a core option." placeholder:"KEY=VALUE"`
	}

	Info struct {
		RomPaths []string `arg:"" name:"/path/to/rom" type:"existingfile"`
		JSON     bool     `name:"json" help:"Print JSON."`
		Options  bool     `name:"options" help:"Also list the options of the core."`
	}

	Dump struct {
		RomPath string            `arg:"" name:"/path/to/rom" type:"existingfile"`
		Frames  int               `name:"frames" help:"Number of frames to run." default:"600"`
		PNG     string            `name:"png" help:"Write the last frame to this PNG file." type:"path" default:"frame.png"`
		WAV     string            `name:"wav" help:"Write the audio to this WAV file." type:"path"`
		Scale   int               `name:"scale" help:"Integer scale of the PNG." default:"1"`
		Option  map[string]string `name:"option" short:"o" help:"Set a core option." placeholder:"KEY=VALUE"`
	}

	FetchRDB struct {
		URL string `name:"url" help:"Base URL of the database folder." default:"${rdb_url}"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"rompath_help": "ROM to run. A file dialog asks for one when omitted.",
	"core_help":    "libretro SNES core shared library.",
	"stats_help":   "Serve runtime statistics at http://" + statsAddr + "/debug/statsview.",
	"remote_help":  "Serve the websocket remote control on this address.",
	"log_help":     "Enable logging for specified modules.",
	"rdb_url":      catalog.DefaultRDBURL,
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("mango"),
		kong.Description("SNES emulator frontend for libretro cores."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")

	switch {
	case strings.HasPrefix(ctx.Command(), "info"):
		cfg.mode = infoMode
	case strings.HasPrefix(ctx.Command(), "dump"):
		cfg.mode = dumpMode
	case ctx.Command() == "fetch-rdb":
		cfg.mode = fetchRDBMode
	case ctx.Command() == "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, "all" enables all logs.
`
	var strs []string
	for _, m := range log.ModuleNames() {
		strs = append(strs, "    - "+m)
	}

	fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask
// and enables debug logs for them.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	s, ok := tok.Value.(string)
	if !ok {
		return fmt.Errorf("expected a list of log modules")
	}

	mask, err := log.ParseModules(s)
	if err != nil {
		return err
	}
	*lm = logModMask(mask)
	log.EnableDebugModules(mask)
	return nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
