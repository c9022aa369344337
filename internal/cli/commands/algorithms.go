package commands

import (
	"github.com/cloo-solutions/searchbench/internal/search"
	"github.com/spf13/cobra"
)

type algorithmInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Short string `json:"short"`
}

// AlgorithmsCmd returns the algorithms command
func AlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the search algorithms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []algorithmInfo
			for _, alg := range search.Algorithms() {
				infos = append(infos, algorithmInfo{Name: string(alg), Label: alg.Label(), Short: alg.ShortLabel()})
			}

			if asJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), infos)
			}
			p := newPrinter(cmd.OutOrStdout(), noColor(cmd))
			for _, info := range infos {
				p.info("%-22s %s", info.Name, info.Label)
			}
			return nil
		},
	}
}
