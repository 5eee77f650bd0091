package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/scansort/internal/parity"
	"github.com/fulmenhq/scansort/internal/review"
	"github.com/fulmenhq/scansort/pkg/config"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <workdir>",
		Short: "Print the proposed file to page mapping without touching any file",
		Long: `Plan runs the same collection and reconciliation as sort and prints the
proposed mapping. Nothing is opened in an editor and no file is written.

` + scanOrderNote,
		Example: `  scansort plan ./scans --front lside --back rside
  scansort plan ./scans --front lside --back rside --missing 4 --format yaml`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runPlan,
	}

	addBatchFlags(cmd.Flags())
	cmd.Flags().String("format", "text", "Output format (text|json|yaml|toml)")
	return cmd
}

type planBatch struct {
	Dir     string `json:"dir" yaml:"dir" toml:"dir"`
	Files   int    `json:"files" yaml:"files" toml:"files"`
	Missing []int  `json:"missing" yaml:"missing" toml:"missing"`
}

type planPage struct {
	Page int    `json:"page" yaml:"page" toml:"page"`
	File string `json:"file" yaml:"file" toml:"file"`
}

type planReport struct {
	TotalPages int        `json:"total_pages" yaml:"total_pages" toml:"total_pages"`
	Front      planBatch  `json:"front" yaml:"front" toml:"front"`
	Back       planBatch  `json:"back" yaml:"back" toml:"back"`
	Pages      []planPage `json:"pages" yaml:"pages" toml:"pages"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "text", "json", "yaml", "toml":
	default:
		return config.Invalid(fmt.Errorf("unknown format %q (use text, json, yaml or toml)", format))
	}

	s, err := reconcileBatches(cmd, args)
	if err != nil {
		return err
	}
	return writePlan(cmd.OutOrStdout(), format, s)
}

func writePlan(w io.Writer, format string, s *session) error {
	if format == "text" {
		_, err := io.WriteString(w, review.Present(s.mapping))
		return err
	}

	report := newPlanReport(s)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return toml.NewEncoder(w).Encode(report)
	}
}

func newPlanReport(s *session) planReport {
	batch := func(p parity.Parity, dir string) planBatch {
		b := s.doc.Batch(p)
		return planBatch{
			Dir:     relTo(s.workdir, dir),
			Files:   len(b.Files),
			Missing: b.Missing.Sorted(),
		}
	}

	entries := s.mapping.Entries()
	pages := make([]planPage, len(entries))
	for i, e := range entries {
		pages[i] = planPage{Page: e.Page, File: relTo(s.workdir, e.File)}
	}

	return planReport{
		TotalPages: s.doc.TotalPages(),
		Front:      batch(parity.Front, s.frontDir),
		Back:       batch(parity.Back, s.backDir),
		Pages:      pages,
	}
}

func relTo(base, p string) string {
	if rel, err := filepath.Rel(base, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p
}
