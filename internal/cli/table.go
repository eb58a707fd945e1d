package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/tokenfolio/pkg/history"
	"github.com/matzehuels/tokenfolio/pkg/integrations/coingecko"
	"github.com/matzehuels/tokenfolio/pkg/market"
)

// newTable returns a table with the shared border and header style.
// Columns listed in numeric are right-aligned.
func newTable(headers []string, rows [][]string, numeric ...int) *table.Table {
	right := make(map[int]bool, len(numeric))
	for _, col := range numeric {
		right[col] = true
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if right[col] {
				s = s.Align(lipgloss.Right)
			}
			if row == -1 { // header
				return s.Inherit(styleHeader)
			}
			return s
		})
}

// renderAssetTable renders a market listing priced in currency.
func renderAssetTable(assets []coingecko.AssetSummary, currency string) string {
	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, []string{
			rankCell(a.MarketCapRank),
			a.Name,
			strings.ToUpper(a.Symbol),
			market.FormatCurrency(a.CurrentPrice, currency),
			percentCell(a.PriceChangePercentage24h),
			market.FormatCurrency(a.MarketCap, currency),
		})
	}
	return newTable([]string{"#", "Name", "Symbol", "Price", "24h", "Market Cap"}, rows, 0, 3, 4, 5).Render()
}

// renderSearchTable renders remote search hits.
func renderSearchTable(coins []coingecko.SearchCoin) string {
	rows := make([][]string, 0, len(coins))
	for _, c := range coins {
		rank := "-"
		if c.MarketCapRank != nil {
			rank = rankCell(*c.MarketCapRank)
		}
		rows = append(rows, []string{rank, c.Name, strings.ToUpper(c.Symbol), StyleDim.Render(c.ID)})
	}
	return newTable([]string{"#", "Name", "Symbol", "ID"}, rows, 0).Render()
}

// renderRecentTable renders the recently viewed list. Entries priced in a
// currency other than active, or older than the cache TTL, are marked stale.
func renderRecentTable(entries []history.Entry, active string, staleAfter time.Duration, now time.Time) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := styleFresh.Render(iconFresh)
		if e.Currency != active || now.Sub(e.FetchedAt) >= staleAfter {
			status = styleStale.Render(iconStale)
		}
		rows = append(rows, []string{
			e.Name,
			strings.ToUpper(e.Symbol),
			market.FormatCurrency(e.CurrentPrice, e.Currency),
			percentCell(e.PriceChangePercentage24h),
			relativeTime(now, e.FetchedAt),
			status,
		})
	}
	return newTable([]string{"Name", "Symbol", "Price", "24h", "Viewed", ""}, rows, 2, 3).Render()
}

func rankCell(rank int) string {
	if rank <= 0 {
		return "-"
	}
	return strconv.Itoa(rank)
}

// percentCell colors a 24h change green or red.
func percentCell(p float64) string {
	s := market.FormatPercent(p)
	switch {
	case strings.HasPrefix(s, "+"):
		return styleGain.Render(s)
	case strings.HasPrefix(s, "-"):
		return styleLoss.Render(s)
	default:
		return s
	}
}

// relativeTime renders t relative to now ("3m ago").
func relativeTime(now, t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return strconv.Itoa(int(diff.Minutes())) + "m ago"
	case diff < 24*time.Hour:
		return strconv.Itoa(int(diff.Hours())) + "h ago"
	case diff < 7*24*time.Hour:
		return strconv.Itoa(int(diff.Hours()/24)) + "d ago"
	default:
		return t.Format("Jan 2, 2006")
	}
}
