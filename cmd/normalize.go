package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ai-advisor/server/internal/visualization"
)

func newNormalizeCmd() *cobra.Command {
	var extract bool

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize a visualization payload read from a file or stdin",
		Long: `normalize reads one JSON document and prints the normalized result.

A document with a "visualizations" field is treated as an advisor response
and every entry is normalized. Any other document is normalized as a single
visualization. With --extract the passthrough extractor runs instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			payload, err := decodePayload(in)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(normalizePayload(payload, extract))
		},
	}
	cmd.Flags().BoolVar(&extract, "extract", false, "run the passthrough extractor instead of normalizing")
	return cmd
}

func decodePayload(r io.Reader) (any, error) {
	var payload any
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}

func normalizePayload(payload any, extract bool) any {
	if extract {
		return visualization.Extract(payload)
	}
	if obj, ok := payload.(map[string]any); ok {
		if _, ok := obj["visualizations"]; ok {
			return visualization.NormalizeAll(payload)
		}
	}
	return visualization.Normalize(payload)
}
