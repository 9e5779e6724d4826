package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/ledger"
	"github.com/olekukonko/tablewriter"
)

// Format es el modo de salida de la consola.
type Format string

const (
	FormatTable   Format = "table"
	FormatCompact Format = "compact"
	FormatJSON    Format = "json"
)

// ParseFormat acepta table, compact o json. Vacío = table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatCompact, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("notify.ParseFormat: unknown format %q", s)
	}
}

// Console implementa ports.Notifier.
type Console struct {
	out    io.Writer
	format Format
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(format Format) *Console {
	return &Console{out: os.Stdout, format: format}
}

// NewConsoleWriter crea un notificador sobre un writer arbitrario (tests).
func NewConsoleWriter(w io.Writer, format Format) *Console {
	return &Console{out: w, format: format}
}

// Notify imprime el reporte diario en el modo configurado.
func (c *Console) Notify(_ context.Context, r domain.Report) error {
	switch c.format {
	case FormatJSON:
		return c.writeJSON(r)
	case FormatCompact:
		c.printCompact(r)
	default:
		c.printFull(r)
	}
	return nil
}

// printCompact imprime lo esencial en una línea por oportunidad.
func (c *Console) printCompact(r domain.Report) {
	now := r.GeneratedAt.Format("15:04:05")
	fmt.Fprintf(c.out, "[%s] phase %s bank %.2f | %d matches (%d matched) → %d opps, %d multiples, %d rejected\n",
		now, r.Phase.Phase, r.Phase.Bankroll, r.MatchesProcessed, r.MatchesMatched,
		len(r.Opportunities), len(r.Multiples), len(r.Rejections))
	for i, o := range r.Opportunities {
		fmt.Fprintf(c.out, "  %d. %s | %s @ %.2f | ev +%.1f%% | stake %.2f\n",
			i+1, truncate(o.Match, 40), o.MarketLabel(), o.Odds, o.EV, o.Stake)
	}
	if r.Completion != nil {
		fmt.Fprintf(c.out, "  !! phase %s complete: withdraw %.2f, keep %.2f\n",
			r.Completion.Phase, r.Completion.Withdraw, r.Completion.Remain)
	}
}

// printFull imprime fase, riesgo, tablas de oportunidades y combinadas.
func (c *Console) printFull(r domain.Report) {
	fmt.Fprintf(c.out, "\n%s\n  DAILY REPORT %s", strings.Repeat("=", 60), r.GeneratedAt.Format("2006-01-02 15:04"))
	if r.FromCache {
		fmt.Fprint(c.out, " (cached)")
	}
	fmt.Fprintf(c.out, "\n%s\n", strings.Repeat("=", 60))

	c.printPhase(r.Phase)
	c.printRisk(r.Phase, r.Risk)

	fmt.Fprintf(c.out, "\n  Matches: %d processed, %d matched with fixtures\n", r.MatchesProcessed, r.MatchesMatched)
	fmt.Fprintf(c.out, "  OPPORTUNITIES: %d  (rejected: %d)\n\n", len(r.Opportunities), len(r.Rejections))

	if len(r.Opportunities) > 0 {
		c.printOpportunities(r.Opportunities)
	}
	for i, m := range r.Multiples {
		c.printMultiple(i+1, m)
	}
	if r.Completion != nil {
		c.PrintPhaseCompletion(*r.Completion)
	}
}

func (c *Console) printPhase(p domain.PhaseInfo) {
	fmt.Fprintf(c.out, "\n  PHASE: %s\n", p.Phase)
	fmt.Fprintf(c.out, "  Bankroll: %.2f\n", p.Bankroll)
	if p.Phase != domain.PhaseConsolidation {
		fmt.Fprintf(c.out, "  Target:   %.2f\n", p.Target)
		fmt.Fprintf(c.out, "  Progress: %.1f%%\n", p.ProgressPct)
		fmt.Fprintf(c.out, "  Remaining: %.2f\n", p.Remaining)
	}
}

func (c *Console) printRisk(p domain.PhaseInfo, r domain.RiskSummary) {
	fmt.Fprintf(c.out, "\n  RISK CONTROLS:\n")
	fmt.Fprintf(c.out, "  - Min EV: %.1f%%\n", p.MinEV)
	fmt.Fprintf(c.out, "  - Max stake: %.1f%%\n", p.MaxStakePct)
	fmt.Fprintf(c.out, "  - Exposure today: %.2f (%.1f%%) of %.2f\n", r.DailyExposure, r.DailyExposurePct, r.DailyLimit)
	fmt.Fprintf(c.out, "  - Bets today: %d\n", r.BetsToday)
	fmt.Fprintf(c.out, "  - Streak: %dW / %dL\n", r.Wins, r.Losses)
	if r.StakeAdjustment < 1 {
		fmt.Fprintf(c.out, "  ! Stakes reduced to %.0f%% (losing streak)\n", r.StakeAdjustment*100)
	}
}

func (c *Console) printOpportunities(opps []domain.Opportunity) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Match", "Competition", "Market", "Odds", "Prob", "EV", "Stake", "Return")

	for i, o := range opps {
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(o.Match, 38),
			o.Competition,
			o.MarketLabel(),
			fmt.Sprintf("%.2f", o.Odds),
			fmt.Sprintf("%.1f%%", o.Probability*100),
			fmt.Sprintf("+%.1f%%", o.EV),
			fmt.Sprintf("%.2f", o.Stake),
			fmt.Sprintf("%.2f", o.Return),
		)
	}
	table.Render()
}

func (c *Console) printMultiple(n int, m domain.MultipleCandidate) {
	fmt.Fprintf(c.out, "\n  MULTIPLE #%d (%d legs)\n", n, len(m.Legs))
	fmt.Fprintf(c.out, "  Combined odds: %.2f | Prob: %.1f%% | EV: +%.1f%%\n", m.Odds, m.Probability*100, m.EV)
	for i, leg := range m.Legs {
		fmt.Fprintf(c.out, "    %d. %s - %s @ %.2f\n", i+1, leg.Match, leg.MarketLabel(), leg.Odds)
	}
	if m.Stake > 0 {
		fmt.Fprintf(c.out, "  Stake: %.2f | Return: %.2f | Profit: %.2f\n", m.Stake, m.Return, m.Profit)
	}
}

// PrintPhaseCompletion imprime el protocolo de retirada al cerrar una fase.
func (c *Console) PrintPhaseCompletion(pc domain.PhaseCompletion) {
	fmt.Fprintf(c.out, "\n%s\n  PHASE %s COMPLETE\n%s\n", strings.Repeat("=", 60), pc.Phase, strings.Repeat("=", 60))
	fmt.Fprintf(c.out, "  Target %.2f reached with %.2f\n", pc.Target, pc.Bankroll)
	fmt.Fprintf(c.out, "  Withdraw now: %.2f (50%% of bankroll)\n", pc.Withdraw)
	fmt.Fprintf(c.out, "  Keep operating: %.2f\n\n", pc.Remain)
}

// PrintSettlement confirma una liquidación con el bankroll resultante.
func (c *Console) PrintSettlement(st ledger.Settlement) {
	if c.format == FormatJSON {
		c.writeJSON(st)
		return
	}
	c.PrintBet("settled", st.Bet)
	fmt.Fprintf(c.out, "  Bankroll: %.2f (phase %s)\n", st.Bankroll, st.Phase)
	if st.Completion != nil {
		c.PrintPhaseCompletion(*st.Completion)
	}
}

// PrintStats imprime el agregado del historial.
func (c *Console) PrintStats(st domain.BetStats) {
	if c.format == FormatJSON {
		c.writeJSON(st)
		return
	}
	if st.Total == 0 {
		fmt.Fprintln(c.out, "\n  STATS: no settled bets yet.")
		return
	}
	fmt.Fprintf(c.out, "\n  STATS\n")
	fmt.Fprintf(c.out, "  - Bets: %d (won %d, lost %d, void %d)\n", st.Total, st.Won, st.Lost, st.Void)
	fmt.Fprintf(c.out, "  - Win rate: %.1f%%\n", st.WinRate)
	fmt.Fprintf(c.out, "  - Staked: %.2f | Profit: %.2f | ROI: %.2f%%\n", st.TotalStaked, st.TotalProfit, st.ROI)
	fmt.Fprintf(c.out, "  - Avg odds: %.2f | Avg stake: %.2f\n", st.AvgOdds, st.AvgStake)
}

// PrintBets imprime el historial de apuestas.
func (c *Console) PrintBets(bets []domain.Bet) {
	if c.format == FormatJSON {
		c.writeJSON(bets)
		return
	}
	if len(bets) == 0 {
		fmt.Fprintln(c.out, "  No bets recorded.")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Date", "Match", "Market", "Odds", "Stake", "Status", "Profit")
	for _, b := range bets {
		table.Append(
			shortID(b.ID),
			b.CreatedAt.Format("01-02 15:04"),
			truncate(b.Match, 38),
			b.Market,
			fmt.Sprintf("%.2f", b.Odds),
			fmt.Sprintf("%.2f", b.Stake),
			string(b.Status),
			profitLabel(b),
		)
	}
	table.Render()
}

// PrintBet confirma un registro o una liquidación.
func (c *Console) PrintBet(action string, b domain.Bet) {
	if c.format == FormatJSON {
		c.writeJSON(b)
		return
	}
	fmt.Fprintf(c.out, "  %s %s | %s | %s @ %.2f | stake %.2f | %s %s\n",
		action, b.ID, b.Match, b.Market, b.Odds, b.Stake, b.Status, profitLabel(b))
}

func (c *Console) writeJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("notify.Console: encode: %w", err)
	}
	return nil
}

// --- helpers ---

func profitLabel(b domain.Bet) string {
	if b.Status == domain.BetPending {
		return "-"
	}
	return fmt.Sprintf("%+.2f", b.Profit)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
