package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ngc-linker/packages/compiler-cli/linker/treesitter"
	"ngc-linker/packages/compiler-cli/logging"
)

var (
	positionColor = color.New(color.Bold)
	errorColor    = color.New(color.FgRed, color.Bold)
	summaryColor  = color.New(color.FgGreen)
)

func newLinkCommand(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link [files...]",
		Short: "Link the partial declarations of the given files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			configFile, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(fs, cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			logger, err := cfg.logger()
			if err != nil {
				return err
			}
			l := &fileLinker{fs: fs, cfg: cfg, logger: logger}
			results, err := l.linkAll(cmd.Context(), files)
			if err != nil {
				return err
			}
			return report(cmd.ErrOrStderr(), results)
		},
	}

	flags := cmd.Flags()
	flags.String("out-dir", "", "write linked files below this directory instead of in place")
	flags.String("dialect", "", "source dialect (js|ts), chosen by file extension when empty")
	flags.Int("jobs", 0, "number of files linked in parallel (default GOMAXPROCS)")
	flags.Bool("jit", false, "emit NgModule scopes inline for JIT compilation")
	flags.Bool("source-mapping", true, "load source maps of linked files")
	flags.String("unknown-version-handling", "error", "what to do with unsupported declaration versions (error|warn|ignore)")
	return cmd
}

// fileLinker links files from disk.
type fileLinker struct {
	fs     afero.Fs
	cfg    *config
	logger logging.Logger
}

type fileResult struct {
	path   string
	result *treesitter.Result
}

// linkAll links files in parallel, bounded by the configured number of jobs.
// Results are returned in the order of files.
func (l *fileLinker) linkAll(ctx context.Context, files []string) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(l.cfg.Jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			result, err := l.link(gctx, path)
			if err != nil {
				return err
			}
			results[i] = fileResult{path: path, result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// link links one file and writes the result. Each file gets its own
// environment, whose source file loader is not safe for concurrent use.
func (l *fileLinker) link(ctx context.Context, path string) (*treesitter.Result, error) {
	source, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	dialect, err := l.dialect(path)
	if err != nil {
		return nil, err
	}
	env, err := treesitter.NewEnvironment(l.fs, l.logger, l.cfg.LinkerPartialOptions)
	if err != nil {
		return nil, err
	}
	result, err := treesitter.LinkFile(ctx, env, path, source, dialect)
	if err != nil {
		l.logger.Error("linking failed", "file", path, "error", err)
		return nil, err
	}
	l.logger.Info("linked file", "file", path, "declarations", result.Linked, "failures", len(result.Diagnostics))

	dest := path
	if l.cfg.OutDir != "" {
		dest = outputPath(l.cfg.OutDir, path)
	} else if !result.Changed() {
		return result, nil
	}
	if err := l.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating directory for %s", dest)
	}
	if err := afero.WriteFile(l.fs, dest, []byte(result.Code), 0o644); err != nil {
		return nil, errors.Wrapf(err, "writing %s", dest)
	}
	return result, nil
}

func (l *fileLinker) dialect(path string) (treesitter.Dialect, error) {
	if l.cfg.Dialect != "" {
		return treesitter.ParseDialect(l.cfg.Dialect)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return treesitter.TypeScript, nil
	}
	return treesitter.JavaScript, nil
}

// outputPath places path below outDir, keeping relative paths intact.
func outputPath(outDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Join(outDir, filepath.Base(path))
	}
	return filepath.Join(outDir, path)
}

// report prints the diagnostics of every file and fails when there were any.
func report(w io.Writer, results []fileResult) error {
	linked, failed := 0, 0
	for _, r := range results {
		linked += r.result.Linked
		for _, d := range r.result.Diagnostics {
			failed++
			fmt.Fprintf(w, "%s %s %s\n",
				positionColor.Sprintf("%s:%d:%d:", d.File, d.Line, d.Column),
				errorColor.Sprint("error:"),
				d.Message,
			)
		}
	}
	fmt.Fprintln(w, summaryColor.Sprintf("linked %d declaration(s) in %d file(s)", linked, len(results)))
	if failed > 0 {
		return errors.Newf("%d declaration(s) could not be linked", failed)
	}
	return nil
}
