package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/jacoelho/treeq/internal/exit"
)

const (
	ModeEager  = "eager"
	ModeLazy   = "lazy"
	ModeSingle = "single"

	FormatYAML = "yaml"
	FormatJSON = "json"

	DefaultMode   = ModeEager
	DefaultFormat = FormatYAML
)

var (
	ErrNoArguments      = errors.New("no arguments provided")
	ErrNoDocument       = errors.New("no document file specified")
	ErrNoQuery          = errors.New("no query file specified")
	ErrUnexpectedArgs   = errors.New("unexpected positional arguments")
	ErrInvalidMode      = errors.New("mode must be one of eager, lazy, single")
	ErrInvalidFormat    = errors.New("format must be one of yaml, json")
	ErrInvalidLimit     = errors.New("limit cannot be negative")
	ErrInvalidKeyFormat = errors.New("key must be in format list=field[,field...]")
	ErrEmptyKeyName     = errors.New("key list name cannot be empty")
)

// Config represents the complete configuration for the treeq tool.
type Config struct {
	// Inputs
	DocumentFile string
	QueryFile    string
	SchemaFile   string
	Keys         map[string][]string // list keys given on the command line, override the schema file

	// Evaluation
	Mode  string
	Limit int     // maximum matches printed (0 = all)
	Rate  float64 // lazy pulls per second (0 = unlimited)

	// Output
	Format string
	Debug  bool
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.DocumentFile == "" {
		return ErrNoDocument
	}
	if c.QueryFile == "" {
		return ErrNoQuery
	}

	for _, file := range []string{c.DocumentFile, c.QueryFile, c.SchemaFile} {
		if file == "" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("file %s not found: %w", file, err)
		}
	}

	if !slices.Contains([]string{ModeEager, ModeLazy, ModeSingle}, c.Mode) {
		return fmt.Errorf("%w, got: %s", ErrInvalidMode, c.Mode)
	}
	if !slices.Contains([]string{FormatYAML, FormatJSON}, c.Format) {
		return fmt.Errorf("%w, got: %s", ErrInvalidFormat, c.Format)
	}
	if c.Limit < 0 {
		return ErrInvalidLimit
	}

	return nil
}

// keysFlag implements flag.Value for parsing multiple -key flags.
type keysFlag map[string][]string

func (k keysFlag) String() string {
	var pairs []string
	for name, fields := range k {
		pairs = append(pairs, name+"="+strings.Join(fields, ","))
	}
	slices.Sort(pairs)
	return strings.Join(pairs, " ")
}

// Set parses list=field[,field...]; a later flag for the same list wins.
func (k keysFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("%w, got: %s", ErrInvalidKeyFormat, value)
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return ErrEmptyKeyName
	}

	var fields []string
	for f := range strings.SplitSeq(parts[1], ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			return fmt.Errorf("%w, got: %s", ErrInvalidKeyFormat, value)
		}
		fields = append(fields, f)
	}

	k[name] = fields
	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Suppress the default usage output since we handle it ourselves
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		document = fs.String("document", "", "Path to the YAML or JSON document")
		queryF   = fs.String("query", "", "Path to the YAML query definition")
		schema   = fs.String("schema", "", "Path to the YAML schema naming list keys")
		keys     = make(keysFlag)
		mode     = fs.String("mode", DefaultMode, "Evaluation mode: eager, lazy or single")
		limit    = fs.Int("limit", 0, "Maximum number of matches to print (0 for all)")
		rate     = fs.Float64("rate", 0, "Lazy pulls per second (0 for unlimited)")
		format   = fs.String("format", DefaultFormat, "Output format: yaml or json")
		debug    = fs.Bool("debug", false, "Enable debug logging")
	)

	fs.Var(keys, "key", "List key in format list=field[,field...] (can be used multiple times)")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	if fs.NArg() > 0 {
		return nil, exit.Errorf("Error: %v: %s\n\n%s", ErrUnexpectedArgs, strings.Join(fs.Args(), " "), Usage())
	}

	config := &Config{
		DocumentFile: *document,
		QueryFile:    *queryF,
		SchemaFile:   *schema,
		Keys:         keys,
		Mode:         strings.ToLower(*mode),
		Limit:        *limit,
		Rate:         *rate,
		Format:       strings.ToLower(*format),
		Debug:        *debug,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `treeq - query hierarchical documents

Usage: treeq -document FILE -query FILE [options]

Options:
  --document FILE         YAML or JSON document to query
  --query FILE            YAML query definition
  --schema FILE           YAML schema naming the key fields of lists
  --key LIST=FIELDS       Key fields of a list, comma separated (can be used multiple times)
  --mode MODE             eager, lazy or single (default: eager)
  --limit N               Maximum number of matches to print (0 for all)
  --rate N                Lazy pulls per second (0 for unlimited)
  --format FORMAT         yaml or json (default: yaml)
  --debug                 Enable debug logging
  -h, --help              Show this help message

Examples:
  treeq -document inv.yaml -query active.yaml                  # Print every match
  treeq -document inv.yaml -query active.yaml -key items=id    # Key the items list by id
  treeq -document inv.json -query active.yaml -mode single     # Print the first match only
  treeq -document inv.yaml -query active.yaml -mode lazy -rate 2 -limit 10`
}
