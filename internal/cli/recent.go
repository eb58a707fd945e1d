package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tokenfolio/pkg/history"
	"github.com/matzehuels/tokenfolio/pkg/market"
)

// =============================================================================
// recent
// =============================================================================

// recentCommand creates the "recent" command group. Without a subcommand it
// lists the recently viewed assets.
func (c *CLI) recentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Manage recently viewed assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRecentList(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recently viewed assets, refreshing stale prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRecentList(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	})
	cmd.AddCommand(c.recentRemoveCommand())
	cmd.AddCommand(c.recentClearCommand())

	return cmd
}

// runRecentList prints the stored list at once, then reprints it when
// stale entries have been refetched in the active currency.
func (c *CLI) runRecentList(ctx context.Context, out, errOut io.Writer) error {
	a, err := c.openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	staleAfter := a.cfg.Cache.TTL.Duration
	entries, updates := a.history.RecentFresh(ctx, a.currency)
	if len(entries) == 0 {
		<-updates
		printInfo(out, "No recently viewed assets")
		printDetail(out, "Use \"tokenfolio show <id>\" to view one.")
		return nil
	}

	fmt.Fprintln(out, StyleTitle.Render("Recently viewed"))
	fmt.Fprintln(out, renderRecentTable(entries, a.currency, staleAfter, time.Now()))
	if !anyStale(entries, a.currency, staleAfter, time.Now()) {
		<-updates
		return nil
	}

	spinner := newSpinner(ctx, errOut, "Refreshing prices in "+strings.ToUpper(a.currency)+"...")
	spinner.Start()
	var upd history.Update
	select {
	case upd = <-updates:
	case <-ctx.Done():
		spinner.Stop()
		return ctx.Err()
	}
	spinner.Stop()

	if upd.Err != nil {
		printWarning(out, "Some prices could not be refreshed: %s", upd.Err)
	}
	if changed(entries, upd.Entries) {
		fmt.Fprintln(out, StyleTitle.Render("Updated"))
		fmt.Fprintln(out, renderRecentTable(upd.Entries, a.currency, staleAfter, time.Now()))
	}
	return nil
}

func anyStale(entries []history.Entry, currency string, staleAfter time.Duration, now time.Time) bool {
	for _, e := range entries {
		if e.Currency != currency || now.Sub(e.FetchedAt) >= staleAfter {
			return true
		}
	}
	return false
}

// changed reports whether a revalidation replaced any snapshot.
func changed(before, after []history.Entry) bool {
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		if before[i].ID != after[i].ID || !before[i].FetchedAt.Equal(after[i].FetchedAt) {
			return true
		}
	}
	return false
}

func (c *CLI) recentRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Forget a recently viewed asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := c.openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := a.history.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				printInfo(out, "%s is not in the recently viewed list", args[0])
				return nil
			}
			printSuccess(out, "Removed %s", args[0])
			return nil
		},
	}
}

func (c *CLI) recentClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all recently viewed assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			n := len(a.history.Recent())
			if err := a.history.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Cleared %d recently viewed assets", n)
			return nil
		},
	}
}

// =============================================================================
// currency
// =============================================================================

// currencyCommand creates the "currency" command group for the saved
// display currency. Without a subcommand it prints the current value.
func (c *CLI) currencyCommand() *cobra.Command {
	get := func(cmd *cobra.Command, args []string) error {
		a, err := c.openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()
		cur := a.history.Currency()
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", StyleHighlight.Render(cur), market.CurrencyName(cur))
		return nil
	}

	cmd := &cobra.Command{
		Use:   "currency",
		Short: "Show or change the display currency",
		Args:  cobra.NoArgs,
		RunE:  get,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the saved display currency",
		Args:  cobra.NoArgs,
		RunE:  get,
	})
	cmd.AddCommand(c.currencySetCommand())
	cmd.AddCommand(c.currencyListCommand())

	return cmd
}

func (c *CLI) currencySetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "set <code>",
		Short:     "Save the display currency and refresh recently viewed prices",
		Example:   `  tokenfolio currency set eur`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: market.Currencies,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := c.openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			changedCurrency, err := a.history.SetCurrency(ctx, args[0])
			if err != nil {
				return err
			}
			cur := a.history.Currency()
			if !changedCurrency {
				printInfo(out, "Display currency is already %s", strings.ToUpper(cur))
				return nil
			}

			if n := len(a.history.Recent()); n > 0 {
				spinner := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Refreshing %d recently viewed assets...", n))
				spinner.Start()
				a.history.Wait()
				spinner.Stop()
			}
			printSuccess(out, "Display currency set to %s (%s)", strings.ToUpper(cur), market.CurrencyName(cur))
			return nil
		},
	}
}

func (c *CLI) currencyListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List supported display currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()
			printCurrencies(cmd.OutOrStdout(), a.history.Currency())
			return nil
		},
	}
}

// printCurrencies lists the display currencies, marking active.
func printCurrencies(w io.Writer, active string) {
	for _, code := range market.Currencies {
		marker := " "
		if code == active {
			marker = StyleSuccess.Render(iconActive)
		}
		fmt.Fprintf(w, "%s %s  %s\n", marker, StyleHighlight.Render(code), StyleDim.Render(market.CurrencyName(code)))
	}
}
