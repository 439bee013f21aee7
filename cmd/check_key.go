package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newCheckKeyCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "check-key",
		Short: "Report whether a model API key is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]bool{
				"configured": cfg.APIKeyConfigured(),
			})
		},
	}
}
