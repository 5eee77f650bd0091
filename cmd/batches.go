package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fulmenhq/scansort/internal/collect"
	"github.com/fulmenhq/scansort/internal/parity"
	"github.com/fulmenhq/scansort/internal/reconcile"
	"github.com/fulmenhq/scansort/pkg/config"
	"github.com/fulmenhq/scansort/pkg/logger"
	"github.com/fulmenhq/scansort/pkg/safeio"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const scanOrderNote = `Files in each batch are numbered in name order (bytewise by default, or
--collation natural so that scan2 sorts before scan10). The scanner must name
files so that this order is the order the sheets went through it.`

// addBatchFlags registers the flags shared by sort and plan.
func addBatchFlags(fs *pflag.FlagSet) {
	defaults := config.Defaults()
	fs.String("config", "", "Config file (default: scansort.yaml in the working directory)")
	fs.String("front", "", "Directory holding the front sides (odd pages), relative to the working directory")
	fs.String("back", "", "Directory holding the back sides (even pages), relative to the working directory")
	fs.String("missing", "", "Pages absent from the scans, e.g. 10,12,20-22")
	fs.String("collation", defaults.Collect.Collation, "File name order within a batch (bytewise|natural)")
	fs.StringSlice("include", nil, "Only collect files matching these globs (repeatable)")
	fs.StringSlice("exclude", nil, "Skip files matching these gitignore-style patterns (repeatable)")
}

// session carries everything derived from the command line before any file
// is touched.
type session struct {
	workdir  string
	cfg      *config.Config
	frontDir string
	backDir  string
	doc      *reconcile.Document
	mapping  reconcile.Mapping
}

// reconcileBatches loads the configuration for the working directory in
// args, collects both batches and computes the proposed mapping.
func reconcileBatches(cmd *cobra.Command, args []string) (*session, error) {
	workdir, err := filepath.Abs(args[0])
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	st, err := os.Stat(workdir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, config.Invalid(fmt.Errorf("working directory %s is not a directory", workdir))
	}

	explicit, _ := cmd.Flags().GetString("config")
	if explicit != "" && !filepath.IsAbs(explicit) {
		explicit = filepath.Join(workdir, explicit)
	}
	cfg, err := config.Load(workdir, explicit, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.File != "" {
		logger.Debug("Loaded project config", logger.String("path", cfg.File))
	}

	collation, err := collect.ParseCollation(cfg.Collect.Collation)
	if err != nil {
		return nil, config.Invalid(err)
	}
	collector, err := collect.New(collect.Options{
		Collation: collation,
		Include:   cfg.Collect.Include,
		Exclude:   cfg.Collect.Exclude,
	})
	if err != nil {
		return nil, config.Invalid(err)
	}
	logger.Debug("Collecting batches",
		logger.String("collation", string(collation)),
		logger.Strings("include", cfg.Collect.Include),
		logger.Strings("exclude", cfg.Collect.Exclude))
	missing, err := collect.ParseMissing(cfg.Missing)
	if err != nil {
		return nil, config.Invalid(err)
	}

	s := &session{workdir: workdir, cfg: cfg}
	if s.frontDir, err = resolveDir(workdir, cfg.Front, "front"); err != nil {
		return nil, err
	}
	if s.backDir, err = resolveDir(workdir, cfg.Back, "back"); err != nil {
		return nil, err
	}

	front, back, err := collector.Batches(s.frontDir, s.backDir, missing)
	if err != nil {
		return nil, err
	}

	s.doc, err = reconcile.NewDocument(front, back)
	if err != nil {
		return nil, err
	}
	summary := s.doc.Summary()
	logger.Info("Batches reconciled",
		logger.Int("total_pages", summary["total_pages"]),
		logger.Int("front_files", summary["front_files"]),
		logger.Int("back_files", summary["back_files"]),
		logger.Ints("missing", missing.Sorted()))
	for _, p := range parity.All() {
		logger.Debug("Available pages", logger.String("parity", p.String()), logger.Ints("pages", s.doc.AvailablePages(p)))
	}

	s.mapping, err = s.doc.Assign()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func resolveDir(workdir, dir, role string) (string, error) {
	p, err := safeio.ResolveWithin(workdir, dir)
	if err != nil {
		return "", config.Invalid(fmt.Errorf("%s directory %q: %w", role, dir, err))
	}
	return p, nil
}
