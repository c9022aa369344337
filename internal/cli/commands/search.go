package commands

import (
	"fmt"
	"strconv"

	"github.com/cloo-solutions/searchbench/internal/cli/client"
	"github.com/cloo-solutions/searchbench/internal/search"
	"github.com/cloo-solutions/searchbench/internal/service"
	"github.com/spf13/cobra"
)

// SearchCmd returns the search command
func SearchCmd() *cobra.Command {
	var (
		target    uint64
		algorithm string
	)

	cmd := &cobra.Command{
		Use:   "search <value>...",
		Short: "Search a sorted sequence for a target",
		Long: `Runs the search algorithms over the given non-decreasing sequence and
reports the index found and the number of comparisons each one made.

With --api-url (or SEARCHBENCH_API_URL) the search runs on a searchbench server.`,
		Example: "  searchbench search --target 7 1 3 5 7 9 11",
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := parseSequence(args)
			if err != nil {
				return err
			}
			if algorithm != "" {
				if _, err := search.ParseAlgorithm(algorithm); err != nil {
					return err
				}
			}

			var outcomes []search.Outcome
			if c := client.NewAPIClientWithCmd(cmd); c != nil {
				resp, err := c.Search(cmd.Context(), client.SearchRequest{
					Algorithm: algorithm,
					Sequence:  seq,
					Target:    target,
				})
				if err != nil {
					return fmt.Errorf("remote search failed: %w", err)
				}
				outcomes = resp.Outcomes
			} else {
				outcomes, err = service.NewSearchService().Search(cmd.Context(), service.SearchInput{
					Algorithm: algorithm,
					Sequence:  seq,
					Target:    target,
				})
				if err != nil {
					return err
				}
			}

			if asJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), outcomes)
			}
			newPrinter(cmd.OutOrStdout(), noColor(cmd)).outcomes(target, outcomes)
			return nil
		},
	}

	cmd.Flags().Uint64VarP(&target, "target", "t", 0, "Value to search for")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Run only this algorithm (default: all)")
	cmd.Flags().String("api-url", "", "searchbench server URL (overrides SEARCHBENCH_API_URL)")
	cmd.Flags().String("api-token", "", "API token (overrides SEARCHBENCH_API_TOKEN)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func parseSequence(args []string) ([]uint64, error) {
	seq := make([]uint64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: must be an unsigned 64-bit integer", arg)
		}
		seq = append(seq, v)
	}
	return seq, nil
}
