package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sosie.dev/pkg/sosie/internal/domain"
	m "sosie.dev/pkg/sosie/internal/model"
)

const campaignLongDescription = `Compare every pair listed in a manifest and compute the sosie score: the
share of candidates that behaved like their reference.

A manifest lists the pairs as:
  pairs:
    - test: TestParse
      reference: traces/original/parse.yaml
      candidate: traces/variant-1/parse.yaml

Relative paths are resolved against the manifest directory. Large campaigns
can be split across machines with --shard and joined with merge.`

var campaignShardFlag string

// campaignCmd represents the campaign command.
var campaignCmd = newCampaignCmd()

func newCampaignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign <manifest>",
		Short: "Compare every pair of a manifest",
		Long:  campaignLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shardIndex, totalShards := parseShardFlag(campaignShardFlag)

			return workflow.Campaign(cmd.Context(), domain.CampaignArgs{
				Manifest:        m.Path(args[0]),
				Reports:         reportsPath(),
				Exclusions:      exclusionsPath(),
				Window:          viper.GetInt(syncWindowConfigKey),
				Timeout:         compareTimeout(),
				Threads:         viper.GetInt(runParallelConfigKey),
				ShardIndex:      shardIndex,
				TotalShardCount: totalShards,
			})
		},
	}

	configureCampaignFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(campaignCmd)
}

func configureCampaignFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&campaignShardFlag, shardFlagName, "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")
}

func parseShardFlag(shard string) (int, int) {
	if shard == "" {
		return 0, 1
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 1
	}

	return index, total
}
