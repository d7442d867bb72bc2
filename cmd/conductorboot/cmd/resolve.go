package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	cerrors "github.com/Aman-CERP/conductorboot/internal/errors"
	"github.com/Aman-CERP/conductorboot/internal/modules"
	"github.com/Aman-CERP/conductorboot/internal/output"
)

type resolveOutput struct {
	Backend       string            `json:"backend"`
	SearchVersion string            `json:"search_version"`
	Modules       []string          `json:"modules"`
	Bootstrapped  bool              `json:"bootstrapped"`
	EngineAddr    string            `json:"engine_addr,omitempty"`
	Properties    map[string]string `json:"properties"`
	Warnings      []any             `json:"warnings"`
}

func newResolveCmd() *cobra.Command {
	var (
		jsonOutput bool
		dir        string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the ordered module list for the current configuration",
		Long: `Load configuration, resolve the runtime modules and print them in
assembly order: backend bundle, index module, API pair (if enabled) and
extension modules.

An unknown db value is fatal. A failed embedded index start is reported
as a warning.`,
		Example: `  # Resolve for the project in the current directory
  conductorboot resolve

  # Machine-readable output
  CONDUCTOR_DB=redis conductorboot resolve --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, dir, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&dir, "dir", ".", "Project directory")

	return cmd
}

func runResolve(cmd *cobra.Command, dir string, jsonOutput bool) error {
	b, err := newBoot(cmd, dir)
	if err != nil {
		return err
	}
	defer b.shutdown()

	res, err := b.resolve(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeResolutionJSON(cmd.OutOrStdout(), b, res)
	}
	writeResolution(output.New(cmd.OutOrStdout()), b, res)
	return nil
}

func toResolveOutput(b *boot, res *modules.Resolution) resolveOutput {
	warnings := make([]any, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		warnings = append(warnings, cerrors.ToJSON(w))
	}
	return resolveOutput{
		Backend:       string(res.Backend),
		SearchVersion: res.SearchVersion.String(),
		Modules:       res.Modules.Strings(),
		Bootstrapped:  res.Bootstrapped,
		EngineAddr:    b.engine.Addr(),
		Properties:    b.props.Snapshot(),
		Warnings:      warnings,
	}
}

func writeResolutionJSON(w io.Writer, b *boot, res *modules.Resolution) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toResolveOutput(b, res))
}

func writeResolution(out *output.Writer, b *boot, res *modules.Resolution) {
	out.Header("Resolution")
	out.KeyValue("backend", string(res.Backend))
	out.KeyValue("search", res.SearchVersion.String())
	if res.Bootstrapped {
		addr := b.engine.Addr()
		if addr == "" {
			addr = "no listener"
		}
		out.KeyValue("embedded engine", addr)
	}
	out.Newline()

	out.Header("Modules")
	out.Numbered(res.Modules.Strings())

	for _, w := range res.Warnings {
		out.Newline()
		out.Warning(w.Error())
	}
}
