package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// browseCommand creates the interactive "browse" command.
func (c *CLI) browseCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse top assets interactively",
		Long:  `Browse opens a scrollable list of the top assets. Press enter to show the selected asset's details; it is then remembered as recently viewed.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := c.openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Loading market data...")
			spinner.Start()
			assets, err := a.gateway.ListTopAssets(ctx, a.currency, limit)
			spinner.Stop()
			if err != nil {
				return err
			}
			if len(assets) == 0 {
				printInfo(out, "No assets to browse")
				return nil
			}

			p := tea.NewProgram(NewAssetListModel(assets, a.currency),
				tea.WithContext(ctx), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.ErrOrStderr()))
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}

			m, ok := final.(AssetListModel)
			if !ok || m.Selected == nil {
				return nil
			}
			return c.showAsset(ctx, a, out, cmd.ErrOrStderr(), m.Selected.ID)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "number of assets to load (1-250)")

	return cmd
}
