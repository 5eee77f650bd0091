package cmd

import (
	"fmt"

	"github.com/fulmenhq/scansort/internal/execute"
	"github.com/fulmenhq/scansort/internal/review"
	"github.com/fulmenhq/scansort/pkg/config"
	"github.com/fulmenhq/scansort/pkg/logger"
	"github.com/fulmenhq/scansort/pkg/safeio"
	"github.com/spf13/cobra"
)

func newSortCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort <workdir>",
		Short: "Review and place both batches in document order",
		Long: `Sort collects the front and back batches below <workdir>, proposes a page
number for every file and opens the proposal in an editor. Saving the file
accepts the (possibly edited) mapping; deleting every entry cancels the run.
The accepted files are then copied (or moved) to the output directory.

` + scanOrderNote + `

The total page count is derived from the batch sizes and the missing pages:
the front batch (with its missing pages) must hold as many pages as the back
batch, or exactly one more.`,
		Example: `  scansort sort ./scans --front lside --back rside
  scansort sort ./scans --front lside --back rside --missing 10,12 --action move
  scansort sort ./scans --front lside --back rside --yes --template page-%03d.png`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runSort,
	}

	defaults := config.Defaults()
	addBatchFlags(cmd.Flags())
	cmd.Flags().String("action", defaults.Action, "What to do with each reviewed file (copy|move)")
	cmd.Flags().String("output-dir", defaults.Output.Dir, "Output directory, relative to the working directory")
	cmd.Flags().String("template", defaults.Output.Template, "Output file name with one %d page placeholder")
	cmd.Flags().Bool("overwrite", defaults.Output.Overwrite, "Replace existing output files")
	cmd.Flags().String("editor", "", "Editor command for the review step (default: $VISUAL, $EDITOR, vi)")
	cmd.Flags().BoolP("yes", "y", false, "Accept the proposed mapping without opening an editor")
	return cmd
}

func runSort(cmd *cobra.Command, args []string) error {
	s, err := reconcileBatches(cmd, args)
	if err != nil {
		return err
	}
	cfg := s.cfg
	out := cmd.OutOrStdout()
	noOp, _ := cmd.Flags().GetBool("no-op")

	// Settle the output side before the operator spends time in the editor.
	outputDir, err := safeio.ResolveWithin(s.workdir, cfg.Output.Dir)
	if err != nil {
		return config.Invalid(fmt.Errorf("output directory %q: %w", cfg.Output.Dir, err))
	}
	tmpl, err := execute.ParseTemplate(outputDir, cfg.Output.Template)
	if err != nil {
		return config.Invalid(err)
	}
	var action execute.Action
	if noOp {
		action = execute.DryRun{Out: out}
	} else if action, err = execute.ParseAction(cfg.Action, cfg.Output.Overwrite, out); err != nil {
		return config.Invalid(err)
	}

	gate := review.Gate{BaseDir: s.workdir}
	if !cfg.Review.Yes {
		gate.Editor = &review.CommandEditor{
			Command: review.ResolveEditor(cfg.Review.Editor),
			Stdin:   cmd.InOrStdin(),
		}
	}
	reviewed, err := gate.Review(cmd.Context(), s.mapping)
	if err != nil {
		return err
	}
	if len(reviewed) == 0 {
		logger.Info("Review cancelled")
		fmt.Fprintln(out, "Nothing to do.")
		return nil
	}

	res, err := execute.Apply(cmd.Context(), reviewed, action, tmpl)
	if err != nil {
		return err
	}

	logger.Info("Files placed",
		logger.String("action", action.Name()),
		logger.Int("placed", res.Count),
		logger.Int("failed", len(res.Failures)),
		logger.String("output_dir", outputDir))
	fmt.Fprintf(out, "%s %d of %d files to %s\n", actionVerb(action), res.Count, res.Total(), outputDir)

	return res.Err()
}

func actionVerb(a execute.Action) string {
	switch a.(type) {
	case execute.Move:
		return "Moved"
	case execute.DryRun:
		return "Would place"
	default:
		return "Copied"
	}
}
