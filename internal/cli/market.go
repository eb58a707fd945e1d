package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tokenfolio/pkg/integrations/coingecko"
	"github.com/matzehuels/tokenfolio/pkg/market"
)

// =============================================================================
// top
// =============================================================================

type topOpts struct {
	limit  int
	filter string
}

// topCommand creates the "top" command listing assets by market cap.
func (c *CLI) topCommand() *cobra.Command {
	var opts topOpts

	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the top assets by market capitalization",
		Example: `  tokenfolio top
  tokenfolio top --limit 100 -c eur
  tokenfolio top --filter eth`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTop(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", coingecko.DefaultLimit, "number of assets to fetch (1-250)")
	cmd.Flags().StringVarP(&opts.filter, "filter", "f", "", "show only assets whose name or symbol contains this text")

	return cmd
}

func (c *CLI) runTop(ctx context.Context, out, errOut io.Writer, opts topOpts) error {
	a, err := c.openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, errOut, "Loading market data...")
	spinner.Start()
	assets, err := a.gateway.ListTopAssets(ctx, a.currency, opts.limit)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("loaded top assets", "count", len(assets), "currency", a.currency)

	if opts.filter != "" {
		assets = market.FilterAssets(assets, opts.filter, 0)
		if len(assets) == 0 {
			printInfo(out, "No assets match %q", opts.filter)
			return nil
		}
	}

	fmt.Fprintln(out, StyleTitle.Render(fmt.Sprintf("Top assets in %s", strings.ToUpper(a.currency))))
	fmt.Fprintln(out, renderAssetTable(assets, a.currency))
	return nil
}

// =============================================================================
// show
// =============================================================================

// showCommand creates the "show" command for a single asset.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Short:   "Show details for an asset and remember it as recently viewed",
		Example: `  tokenfolio show bitcoin`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()
			return c.showAsset(cmd.Context(), a, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
		},
	}
}

// showAsset fetches, prints and records one asset.
func (c *CLI) showAsset(ctx context.Context, a *app, out, errOut io.Writer, id string) error {
	spinner := newSpinner(ctx, errOut, "Loading "+id+"...")
	spinner.Start()
	detail, err := a.gateway.GetAssetDetail(ctx, id, a.currency)
	spinner.Stop()
	if err != nil {
		return err
	}

	printAssetDetail(out, detail, a.currency)

	if a.history != nil {
		if err := a.history.Add(ctx, detail.Summary(a.currency), a.currency); err != nil {
			c.Logger.Warn("could not record recently viewed asset", "id", id, "err", err)
		}
	}
	return nil
}

// printAssetDetail prints the detail view.
func printAssetDetail(w io.Writer, d *coingecko.AssetDetail, currency string) {
	md := d.MarketData
	price := func(m map[string]float64) string {
		v, ok := m[currency]
		if !ok {
			return market.NotAvailable
		}
		return market.FormatCurrency(v, currency)
	}

	fmt.Fprintln(w, StyleTitle.Render(d.Name)+" "+StyleDim.Render(strings.ToUpper(d.Symbol)))
	printNewline(w)
	printKeyValue(w, "Rank", rankCell(d.MarketCapRank))
	printKeyValue(w, "Price", price(md.CurrentPrice))
	change, ok := md.PriceChangePercentage24hInCurrency[currency]
	if !ok {
		change = md.PriceChangePercentage24h
	}
	printKeyValue(w, "24h", percentCell(change))
	printKeyValue(w, "7d", percentCell(md.PriceChangePercentage7d))
	printKeyValue(w, "30d", percentCell(md.PriceChangePercentage30d))
	printKeyValue(w, "24h range", price(md.Low24h)+" - "+price(md.High24h))
	printKeyValue(w, "Market cap", price(md.MarketCap))
	printKeyValue(w, "Volume", price(md.TotalVolume))
	printKeyValue(w, "All-time high", price(md.ATH))
	printKeyValue(w, "All-time low", price(md.ATL))
	printKeyValue(w, "Circulating", market.FormatNumber(md.CirculatingSupply))
	printKeyValue(w, "Max supply", optionalNumber(md.MaxSupply))
	if home := d.Homepage(); home != "" {
		printKeyValue(w, "Homepage", StyleLink.Render(home))
	}
	if len(d.Categories) > 0 {
		printKeyValue(w, "Categories", strings.Join(d.Categories, ", "))
	}
}

func optionalNumber(v *float64) string {
	if v == nil {
		return market.NotAvailable
	}
	return market.FormatNumber(*v)
}

// =============================================================================
// search
// =============================================================================

// searchCommand creates the "search" command.
func (c *CLI) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "search <query>",
		Short:   "Search assets by name or symbol",
		Example: `  tokenfolio search solana`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := c.openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Searching...")
			spinner.Start()
			res, err := a.gateway.SearchAssets(ctx, query)
			spinner.Stop()
			if err != nil {
				return err
			}

			if len(res.Coins) == 0 {
				printInfo(out, "No assets found for %q", query)
				return nil
			}
			fmt.Fprintln(out, renderSearchTable(res.Coins))
			printDetail(out, "%d results. Use \"tokenfolio show <id>\" for details.", len(res.Coins))
			return nil
		},
	}
}
