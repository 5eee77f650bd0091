/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/fulmenhq/scansort/pkg/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show scansort version",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show module and toolchain details")
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	out := cmd.OutOrStdout()
	version := buildinfo.Version()

	if jsonOutput {
		versionInfo := map[string]interface{}{
			"version":   version,
			"goVersion": runtime.Version(),
			"platform":  runtime.GOOS,
			"arch":      runtime.GOARCH,
		}
		if extended {
			versionInfo["binaryVersion"] = buildinfo.BinaryVersion
			versionInfo["moduleVersion"] = buildinfo.ModuleVersion()
		}
		jsonData, err := json.MarshalIndent(versionInfo, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		fmt.Fprintln(out, string(jsonData))
		return nil
	}

	fmt.Fprintf(out, "scansort %s\n", version)
	if extended {
		fmt.Fprintf(out, "Binary version: %s\n", buildinfo.BinaryVersion)
		if mv := buildinfo.ModuleVersion(); mv != "" {
			fmt.Fprintf(out, "Module version: %s\n", mv)
		}
	}
	fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
