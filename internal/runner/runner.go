// Package runner loads a document and a query and prints the matches.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/jacoelho/treeq/internal/config"
	"github.com/jacoelho/treeq/internal/document"
	"github.com/jacoelho/treeq/internal/exit"
	"github.com/jacoelho/treeq/internal/output"
	"github.com/jacoelho/treeq/internal/query"
	"github.com/jacoelho/treeq/internal/queryfile"
	"github.com/jacoelho/treeq/internal/ratelimit"
	"github.com/jacoelho/treeq/internal/tree"
)

// Runner evaluates one query against one document.
type Runner struct {
	config    *config.Config
	logger    hclog.Logger
	limiter   *ratelimit.Limiter
	formatter output.Formatter
	document  tree.Node
	query     query.Query
}

// New loads the inputs named by cfg. If loading fails, returns nil runner and
// exit result.
func New(cfg *config.Config, logger hclog.Logger) (*Runner, *exit.Result) {
	return NewWithWriter(cfg, logger, os.Stdout)
}

// NewWithWriter is New with matches written to w.
func NewWithWriter(cfg *config.Config, logger hclog.Logger, w io.Writer) (*Runner, *exit.Result) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	formatter, err := output.NewWithWriter(cfg.Format, w)
	if err != nil {
		return nil, exit.Errorf("Error creating runner: %v\n", err)
	}

	schema, err := loadSchema(cfg)
	if err != nil {
		return nil, exit.Errorf("Error loading schema: %v\n", err)
	}
	logger.Debug("schema loaded", "lists", len(schema.Keys))

	doc, err := decodeFile(cfg.DocumentFile, func(r io.Reader) (tree.Node, error) {
		return document.Decode(r, schema)
	})
	if err != nil {
		return nil, exit.Errorf("Error loading document %s:\n%v\n", cfg.DocumentFile, err)
	}
	logger.Debug("document loaded", "file", cfg.DocumentFile)

	q, err := decodeFile(cfg.QueryFile, queryfile.Parse)
	if err != nil {
		return nil, exit.Errorf("Error loading query %s: %v\n", cfg.QueryFile, err)
	}
	logger.Debug("query loaded", "file", cfg.QueryFile, "query", q.String())

	return &Runner{
		config:    cfg,
		logger:    logger,
		limiter:   ratelimit.New(cfg.Rate),
		formatter: formatter,
		document:  doc,
		query:     q,
	}, nil
}

// loadSchema reads the schema file, if any, and applies the keys given on the
// command line over it.
func loadSchema(cfg *config.Config) (document.Schema, error) {
	schema := document.Schema{}
	if cfg.SchemaFile != "" {
		loaded, err := decodeFile(cfg.SchemaFile, document.LoadSchema)
		if err != nil {
			return document.Schema{}, err
		}
		schema = loaded
	}

	if len(cfg.Keys) > 0 {
		keys := make(map[string][]string, len(schema.Keys)+len(cfg.Keys))
		maps.Copy(keys, schema.Keys)
		maps.Copy(keys, cfg.Keys)
		schema.Keys = keys
	}
	return schema, nil
}

func decodeFile[T any](path string, decode func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return decode(f)
}

// Run evaluates the query in the configured mode and returns the exit code.
func (r *Runner) Run(ctx context.Context) int {
	r.logger.Info("evaluating", "mode", r.config.Mode, "limit", r.config.Limit)

	var (
		count int
		err   error
	)
	switch r.config.Mode {
	case config.ModeSingle:
		count, err = r.runSingle()
	case config.ModeLazy:
		count, err = r.runLazy(ctx)
	default:
		count, err = r.runEager()
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			exit.Interrupted(fmt.Sprintf("Interrupted after %d match(es)\n", count)).Print()
			return exit.CodeInterrupted
		}
		exit.Errorf("Error writing matches: %v\n", err).Print()
		return exit.CodeError
	}

	r.logger.Info("done", "matches", count)
	return exit.CodeOK
}

func (r *Runner) runEager() (int, error) {
	matches := query.EvaluateFrom(r.query, r.document)
	r.logger.Debug("eager evaluation finished", "matches", len(matches))
	if r.config.Limit > 0 && len(matches) > r.config.Limit {
		matches = matches[:r.config.Limit]
	}

	for i, m := range matches {
		if err := r.formatter.Format(m); err != nil {
			return i, err
		}
	}
	return len(matches), nil
}

func (r *Runner) runSingle() (int, error) {
	m, ok := query.EvaluateSingleFrom(r.query, r.document)
	if !ok {
		return 0, nil
	}
	if err := r.formatter.Format(m); err != nil {
		return 0, err
	}
	return 1, nil
}

func (r *Runner) runLazy(ctx context.Context) (int, error) {
	result := query.EvaluateLazyFrom(r.query, r.document)
	r.logger.Debug("pulling lazily", "rate", r.limiter.Limit())

	count := 0
	for m, err := range ratelimit.Throttle(ctx, r.limiter, result.All()) {
		if err != nil {
			return count, err
		}
		r.logger.Trace("match", "path", m.Path.String())
		if err := r.formatter.Format(m); err != nil {
			return count, err
		}
		count++
		if r.config.Limit > 0 && count >= r.config.Limit {
			break
		}
	}
	return count, nil
}
