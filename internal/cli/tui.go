package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tokenfolio/pkg/integrations/coingecko"
	"github.com/matzehuels/tokenfolio/pkg/market"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// AssetListModel - Interactive asset selection
// =============================================================================

// AssetListModel is the bubbletea model for browsing a market listing.
// Typing "/" starts a local filter over name and symbol.
type AssetListModel struct {
	Assets   []coingecko.AssetSummary
	Currency string
	Cursor   int
	Offset   int
	Height   int
	Selected *coingecko.AssetSummary

	Filter    string
	Filtering bool
	visible   []coingecko.AssetSummary
}

// NewAssetListModel creates a new asset list model.
func NewAssetListModel(assets []coingecko.AssetSummary, currency string) AssetListModel {
	return AssetListModel{
		Assets:   assets,
		Currency: currency,
		Height:   15,
		visible:  assets,
	}
}

func (m AssetListModel) Init() tea.Cmd {
	return nil
}

func (m AssetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "/":
			m.Filtering = true
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "enter":
			if len(m.visible) == 0 {
				return m, nil
			}
			a := m.visible[m.Cursor]
			m.Selected = &a
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 7
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m AssetListModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.Filtering = false
		m.setFilter("")
	case tea.KeyEnter:
		m.Filtering = false
	case tea.KeyBackspace:
		if r := []rune(m.Filter); len(r) > 0 {
			m.setFilter(string(r[:len(r)-1]))
		}
	case tea.KeyRunes, tea.KeySpace:
		m.setFilter(m.Filter + string(msg.Runes))
	}
	return m, nil
}

// setFilter narrows the visible rows and resets the cursor.
func (m *AssetListModel) setFilter(q string) {
	m.Filter = q
	m.Cursor, m.Offset = 0, 0
	if strings.TrimSpace(q) == "" {
		m.visible = m.Assets
		return
	}
	m.visible = market.FilterAssets(m.Assets, q, len(m.Assets))
}

func (m *AssetListModel) moveCursor(delta int) {
	next := m.Cursor + delta
	if next < 0 || next >= len(m.visible) {
		return
	}
	m.Cursor = next
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m AssetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Top assets in " + strings.ToUpper(m.Currency)))
	b.WriteString("\n")
	if m.Filtering || m.Filter != "" {
		b.WriteString(StyleHighlight.Render("/" + m.Filter))
		if m.Filtering {
			b.WriteString(listDimStyle.Render("_  enter apply  esc clear"))
		}
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ navigate  / filter  ⏎ details  q quit"))
	}
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  no matches"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.visible))
	for i := m.Offset; i < end; i++ {
		a := m.visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%4s  %-20s %-6s %16s",
			cursor,
			rankCell(a.MarketCapRank),
			truncate(a.Name, 20),
			strings.ToUpper(truncate(a.Symbol, 6)),
			market.FormatCurrency(a.CurrentPrice, m.Currency),
		)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString(" " + percentCell(a.PriceChangePercentage24h))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.visible))))

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
