package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	flag "github.com/spf13/pflag"

	"github.com/ogri-la/gear-journey-go/src/bis"
	"github.com/ogri-la/gear-journey-go/src/types"
)

// SubCommand represents CLI subcommands
type SubCommand string

const (
	ServeSubCommand    SubCommand = "serve"
	PlanSubCommand     SubCommand = "plan"
	SearchSubCommand   SubCommand = "search"
	ListSubCommand     SubCommand = "list"
	ValidateSubCommand SubCommand = "validate"
)

var KnownSubCommands = []SubCommand{
	ServeSubCommand, PlanSubCommand, SearchSubCommand, ListSubCommand, ValidateSubCommand,
}

var logLevelMap = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLogLevel maps a level name to a slog level
func ParseLogLevel(name string) (slog.Level, error) {
	level, exists := logLevelMap[name]
	if !exists {
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
	return level, nil
}

// Flags holds all CLI flags and configuration
type Flags struct {
	SubCommand  SubCommand
	ConfigPath  string
	LogLevel    string
	ShowHelp    bool
	ShowVersion bool

	ServeConfig    ServeConfig
	PlanConfig     PlanConfig
	SearchConfig   SearchConfig
	ListConfig     ListConfig
	ValidateConfig ValidateConfig
}

// ServeConfig holds flags for the serve command. Zero values keep the config file's.
type ServeConfig struct {
	BindAddress string
	Port        int
}

// PlanConfig holds flags for the plan command
type PlanConfig struct {
	ItemIDs     []int
	Level       int
	Models      bool
	OutputFiles []string
}

// SearchConfig holds flags for the search command
type SearchConfig struct {
	Query   string
	Filters types.ItemFilters
	JSON    bool
}

// ListConfig holds flags for the list command
type ListConfig struct {
	Add      []int
	Remove   []int
	Clear    bool
	Fragment string
}

// ValidateConfig holds flags for the validate command
type ValidateConfig struct {
	File string
}

// ParseFlags parses command line arguments and returns configuration
func ParseFlags(args []string, version string) (*Flags, error) {
	flags := &Flags{}

	// Global flags
	defaults := flag.NewFlagSet("gear-journey", flag.ContinueOnError)
	defaults.BoolVarP(&flags.ShowHelp, "help", "h", false, "print this help and exit")
	defaults.BoolVarP(&flags.ShowVersion, "version", "V", false, "print program version and exit")
	defaults.StringVar(&flags.LogLevel, "log-level", "", "verbosity level. one of: debug, info, warn, error (default: from config)")
	defaults.StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "path to YAML config")

	// Determine subcommand
	var subcommand string
	if len(args) > 1 {
		subcommand = args[1]
	}

	var flagset *flag.FlagSet
	var bisIDs string
	var minLevel, maxLevel, phase int
	var class, quality, source string

	switch SubCommand(subcommand) {
	case ServeSubCommand:
		flagset = flag.NewFlagSet("serve", flag.ContinueOnError)
		flagset.StringVar(&flags.ServeConfig.BindAddress, "bind", "", "address to listen on")
		flagset.IntVarP(&flags.ServeConfig.Port, "port", "p", 0, "port to listen on")
		flagset.AddFlagSet(defaults)

	case PlanSubCommand:
		flagset = flag.NewFlagSet("plan", flag.ContinueOnError)
		flagset.StringVar(&bisIDs, "bis", "", "comma separated item ids, or a #bis= share fragment")
		flagset.IntVarP(&flags.PlanConfig.Level, "level", "l", bis.MaxLevel, "character level")
		flagset.BoolVar(&flags.PlanConfig.Models, "models", false, "resolve model display ids for the viewer slots")
		flagset.StringArrayVar(&flags.PlanConfig.OutputFiles, "out", []string{}, "write results to file (default: stdout)")
		flagset.AddFlagSet(defaults)

	case SearchSubCommand:
		flagset = flag.NewFlagSet("search", flag.ContinueOnError)
		flagset.StringVarP(&flags.SearchConfig.Query, "query", "q", "", "case insensitive name match")
		flagset.StringVar(&flags.SearchConfig.Filters.Slot, "slot", "", "raw equip slot, e.g. Head or One-Hand")
		flagset.StringVar(&class, "class", "", "item class")
		flagset.StringVar(&quality, "quality", "", "item quality")
		flagset.StringVar(&source, "source", "", "source category")
		flagset.IntVar(&minLevel, "min-level", 0, "lowest required level")
		flagset.IntVar(&maxLevel, "max-level", 0, "highest required level")
		flagset.IntVar(&phase, "phase", 0, "content phase")
		flagset.BoolVar(&flags.SearchConfig.JSON, "json", false, "print JSON instead of a table")
		flagset.AddFlagSet(defaults)

	case ListSubCommand:
		flagset = flag.NewFlagSet("list", flag.ContinueOnError)
		flagset.IntSliceVar(&flags.ListConfig.Add, "add", []int{}, "item ids to add")
		flagset.IntSliceVar(&flags.ListConfig.Remove, "remove", []int{}, "item ids to remove")
		flagset.BoolVar(&flags.ListConfig.Clear, "clear", false, "remove every item first")
		flagset.StringVar(&flags.ListConfig.Fragment, "from", "", "replace the list with a #bis= share fragment")
		flagset.AddFlagSet(defaults)

	case ValidateSubCommand:
		flagset = flag.NewFlagSet("validate", flag.ContinueOnError)
		flagset.StringVarP(&flags.ValidateConfig.File, "file", "f", "", "items.json to check (default: catalogue path from config)")
		flagset.AddFlagSet(defaults)

	default:
		flagset = defaults
	}

	// Parse flags
	if err := flagset.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	// Handle help and version
	if flags.ShowHelp {
		printUsage(flagset)
		os.Exit(0)
	}

	if flags.ShowVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Validate subcommand
	if subcommand == "" || !slices.Contains(KnownSubCommands, SubCommand(subcommand)) {
		printUsage(flagset)
		return nil, fmt.Errorf("unknown subcommand: %s", subcommand)
	}

	if flags.LogLevel != "" {
		if _, err := ParseLogLevel(flags.LogLevel); err != nil {
			return nil, err
		}
	}

	switch SubCommand(subcommand) {
	case PlanSubCommand:
		flags.PlanConfig.ItemIDs = parseIDs(bisIDs)

	case SearchSubCommand:
		filters := &flags.SearchConfig.Filters
		filters.Class = types.ItemClass(class)
		filters.Quality = types.Quality(quality)
		filters.SourceCategory = types.SourceCategory(source)
		if flagset.Changed("min-level") {
			filters.MinLevel = &minLevel
		}
		if flagset.Changed("max-level") {
			filters.MaxLevel = &maxLevel
		}
		if flagset.Changed("phase") {
			filters.Phase = &phase
		}
	}

	flags.SubCommand = SubCommand(subcommand)
	return flags, nil
}

// parseIDs accepts "1,2,3" or a full "#bis=1,2,3" fragment
func parseIDs(value string) []int {
	if value == "" {
		return []int{}
	}
	if ids := bis.DecodeFragment(value); ids != nil {
		return ids
	}
	return bis.DecodeFragment("#bis=" + value)
}

// printUsage prints usage information
func printUsage(flagset *flag.FlagSet) {
	fmt.Println("usage: gear-journey <serve|plan|search|list|validate> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve     Serve the planner API")
	fmt.Println("  plan      Print the gear progression of a list of items")
	fmt.Println("  search    Search the item catalogue")
	fmt.Println("  list      Show or edit the saved best-in-slot list")
	fmt.Println("  validate  Check an items.json file")
	fmt.Println()
	fmt.Println("Options:")
	flagset.PrintDefaults()
}
