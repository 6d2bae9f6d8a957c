package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/bekzodm/omborscan/internal/gateway"
	"github.com/bekzodm/omborscan/internal/movement"
	"github.com/bekzodm/omborscan/internal/settings"
	"github.com/bekzodm/omborscan/internal/verify"
)

type movementState int

const (
	movementStateScan movementState = iota
	movementStateTable
	movementStateQuantity
	movementStateConfirmCancel
	movementStateConfirmDiscard
	movementStateDone
)

// PendingSource reports a pending movement left over from a prior session.
type PendingSource interface {
	PendingMovement(ctx context.Context, kind movement.Kind) (*gateway.Pending, error)
}

// MovementModel is the capture screen for one movement kind: a scan input,
// the accumulated lines, and the verify/finalize/cancel actions. The scan
// input owns the keyboard by default; Tab moves focus to the lines table
// where the single-letter actions live.
type MovementModel struct {
	CommonModel
	ctrl     *movement.Controller
	resolver *movement.Resolver
	gate     *verify.Gate
	pending  PendingSource
	store    *settings.Store

	state movementState
	scan  textinput.Model
	table table.Model
	form  *huh.Form

	settings settings.Settings
	staged   *movement.Product

	busy   bool
	status string
	isErr  bool
	done   string
}

func NewMovementModel(
	ctrl *movement.Controller,
	resolver *movement.Resolver,
	gate *verify.Gate,
	pending PendingSource,
	store *settings.Store,
	s settings.Settings,
) MovementModel {
	ti := textinput.New()
	ti.Placeholder = "scan or type a barcode"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	columns := []table.Column{
		{Title: "Product", Width: 28},
		{Title: "SKU", Width: 10},
		{Title: "Qty", Width: 5},
		{Title: "Unit", Width: 5},
		{Title: "Price", Width: 9},
		{Title: "Stock", Width: 6},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(12),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(st)

	ctrl.SetIgnoreStock(s.IgnoreStock)

	return MovementModel{
		ctrl:     ctrl,
		resolver: resolver,
		gate:     gate,
		pending:  pending,
		store:    store,
		scan:     ti,
		table:    t,
		settings: s,
		// Input stays locked until the pending-movement lookup settles so
		// an immediate scan cannot race the resume.
		busy: true,
	}
}

func (m MovementModel) Title() string {
	if m.ctrl.Snapshot().Kind == movement.KindIn {
		return "Inbound Movement"
	}

	return "Outbound Movement"
}

func (m MovementModel) ShortHelp() string {
	switch m.state {
	case movementStateTable:
		return "x: remove | v: verify | f: finalize | c: cancel | d: restart | t/s/i: toggles | Tab: scan"
	case movementStateQuantity:
		return "Navigate form | Esc: discard scan"
	case movementStateConfirmCancel, movementStateConfirmDiscard:
		return "Enter: confirm | Esc: keep working"
	case movementStateDone:
		return "Esc: back"
	}

	return "Enter: scan | Tab: lines | Esc: back"
}

func (m MovementModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.resumeCmd())
}

func (m MovementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resumeMsg:
		m.busy = false
		if msg.err != nil {
			m.setErr(msg.err)
			m.refreshTable()

			return m, nil
		}

		if msg.resumed {
			m.setInfo(fmt.Sprintf("Resumed pending movement with %d item(s)", msg.lines))
		}

		m.refreshTable()

		return m, nil

	case scanResolvedMsg:
		return m.onScanResolved(msg)

	case addResultMsg:
		m.busy = false
		m.refreshTable()

		if msg.err != nil {
			m.setErr(msg.err)
			return m, m.errorBellCmd()
		}

		line := msg.outcome.Line
		m.setInfo(fmt.Sprintf("Added %s ×%d (total %d %s)", line.Name, msg.added, line.Quantity, line.Unit))

		if msg.outcome.StockWarning != "" {
			m.status = m.status + "  ⚠ " + msg.outcome.StockWarning
		}

		return m, m.bellCmd()

	case removeResultMsg:
		m.busy = false
		m.refreshTable()

		if msg.err != nil {
			m.setErr(msg.err)
			return m, m.errorBellCmd()
		}

		m.setInfo("Item removed")

		return m, nil

	case captureResultMsg:
		m.busy = false

		if msg.err != nil {
			m.setErr(msg.err)
			return m, m.errorBellCmd()
		}

		m.refreshTable()
		m.setInfo(fmt.Sprintf("Verified: %s (%.0f%%)", msg.state.Name, msg.state.Confidence*100))

		return m, m.verifyBellCmd()

	case finalizeResultMsg:
		m.busy = false

		if msg.err != nil {
			m.setErr(msg.err)
			m.state = movementStateTable
			m.table.Focus()

			return m, m.errorBellCmd()
		}

		m.state = movementStateDone
		m.done = msg.message

		return m, m.bellCmd()

	case cancelResultMsg:
		m.busy = false

		if msg.err != nil {
			m.setErr(msg.err)
			return m, m.errorBellCmd()
		}

		return m, Back

	case discardResultMsg:
		m.busy = false
		m.refreshTable()

		if msg.err != nil {
			m.setErr(msg.err)
			return m, m.errorBellCmd()
		}

		m.setInfo("Started over with a fresh movement")

		return m, nil

	case settingsSavedMsg:
		if msg.err != nil {
			m.setErr(fmt.Errorf("saving settings: %w", msg.err))
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(5, msg.Height-14))
		return m, nil
	}

	if _, ok := msg.(tea.KeyMsg); ok && m.busy {
		// A gateway call is in flight; drop input until it settles.
		return m, nil
	}

	switch m.state {
	case movementStateScan:
		return m.updateScan(msg)
	case movementStateTable:
		return m.updateTable(msg)
	case movementStateQuantity:
		return m.updateQuantity(msg)
	case movementStateConfirmCancel, movementStateConfirmDiscard:
		return m.updateConfirm(msg)
	case movementStateDone:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m MovementModel) updateScan(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyTab:
			m.state = movementStateTable
			m.scan.Blur()
			m.table.Focus()

			return m, nil
		case tea.KeyEnter:
			code := m.scan.Value()
			m.scan.Reset()

			if strings.TrimSpace(code) == "" {
				return m, nil
			}

			m.busy = true
			m.status = ""

			return m, m.resolveCmd(code)
		}
	}

	var cmd tea.Cmd
	m.scan, cmd = m.scan.Update(msg)

	return m, cmd
}

func (m MovementModel) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case "esc", "tab":
		m.state = movementStateScan
		m.table.Blur()

		return m, m.scan.Focus()

	case "x":
		snap := m.ctrl.Snapshot()
		idx := m.table.Cursor()

		if idx < 0 || idx >= len(snap.Lines) {
			return m, nil
		}

		m.busy = true

		return m, m.removeCmd(snap.Lines[idx].ItemID)

	case "v":
		if m.ctrl.Snapshot().Verified {
			m.setInfo("Already verified")
			return m, nil
		}

		m.busy = true
		m.setInfo("Capturing frame...")

		return m, m.captureCmd()

	case "f":
		m.busy = true
		return m, m.finalizeCmd()

	case "c":
		m.form = confirmForm("Cancel this movement?", "All scanned items will be dropped.")
		m.state = movementStateConfirmCancel

		return m, m.form.Init()

	case "d":
		if !m.ctrl.Snapshot().Resumed {
			m.setInfo("Nothing to restart: this movement was started here")
			return m, nil
		}

		m.form = confirmForm("Start over?", "The resumed movement will be cancelled and replaced.")
		m.state = movementStateConfirmDiscard

		return m, m.form.Init()

	case "t":
		m.settings.Turbo = !m.settings.Turbo
		m.setInfo("Turbo mode " + onOff(m.settings.Turbo))

		return m, m.saveSettingsCmd()

	case "s":
		m.settings.Sound = !m.settings.Sound
		m.setInfo("Sound " + onOff(m.settings.Sound))

		return m, m.saveSettingsCmd()

	case "i":
		m.settings.IgnoreStock = !m.settings.IgnoreStock
		m.ctrl.SetIgnoreStock(m.settings.IgnoreStock)
		m.setInfo("Stock warnings " + onOff(!m.settings.IgnoreStock))

		return m, m.saveSettingsCmd()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m MovementModel) onScanResolved(msg scanResolvedMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.err != nil {
		m.setErr(msg.err)
		return m, m.errorBellCmd()
	}

	if msg.product == nil {
		return m, nil
	}

	// Turbo commits the scan immediately with quantity 1 and no price.
	if m.settings.Turbo {
		m.busy = true
		return m, m.commitCmd(msg.product, 1, 0)
	}

	m.staged = msg.product
	m.form = quantityForm()
	m.state = movementStateQuantity

	return m, m.form.Init()
}

func (m MovementModel) updateQuantity(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.staged = nil
		m.form = nil
		m.state = movementStateScan

		return m, m.scan.Focus()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	qty, _ := strconv.Atoi(strings.TrimSpace(m.form.GetString("quantity")))
	price, _ := strconv.ParseFloat(strings.TrimSpace(m.form.GetString("unit_price")), 64)

	p := m.staged
	m.staged = nil
	m.form = nil
	m.state = movementStateScan
	m.busy = true

	return m, tea.Batch(m.scan.Focus(), m.commitCmd(p, qty, price))
}

func (m MovementModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		m.state = movementStateTable
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	confirmed := m.form.GetBool("confirm")
	discard := m.state == movementStateConfirmDiscard

	m.form = nil
	m.state = movementStateTable
	m.table.Focus()

	if !confirmed {
		return m, nil
	}

	m.busy = true

	if discard {
		return m, m.discardCmd()
	}

	return m, m.cancelCmd()
}

func (m MovementModel) View() string {
	snap := m.ctrl.Snapshot()

	if m.state == movementStateDone {
		return lipgloss.NewStyle().Padding(2).Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.done) +
				"\n\n(Esc to go back)",
		)
	}

	header := m.viewHeader(snap)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.scan.View(),
		tableView,
		m.viewFooter(snap),
	)

	if m.form != nil {
		body := m.form.View()
		if m.state == movementStateQuantity && m.staged != nil {
			body = fmt.Sprintf("%s\n\n%s", m.staged.Name, body)
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(44).
			Render(body)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m MovementModel) viewHeader(snap movement.Snapshot) string {
	title := m.Title()
	if snap.Resumed {
		title += " (resumed)"
	}

	verified := lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("face verification required")
	if snap.Verified {
		verified = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).
			Render(fmt.Sprintf("verified: %s", snap.Operator))
	}

	ref := "no movement yet"
	if snap.MovementID != "" {
		ref = snap.MovementID
	}

	toggles := fmt.Sprintf("[t]urbo %s | [s]ound %s | [i]gnore stock %s",
		onOff(m.settings.Turbo), onOff(m.settings.Sound), onOff(m.settings.IgnoreStock))

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(title),
		fmt.Sprintf("%s | %s", ref, verified),
		lipgloss.NewStyle().Faint(true).PaddingBottom(1).Render(toggles),
	)
}

func (m MovementModel) viewFooter(snap movement.Snapshot) string {
	totalQty := 0
	totalValue := 0.0

	for _, l := range snap.Lines {
		totalQty += l.Quantity
		totalValue += float64(l.Quantity) * l.UnitPrice
	}

	totals := fmt.Sprintf("%d line(s), %d unit(s), value %s", len(snap.Lines), totalQty, FormatMoney(totalValue))

	finalize := "finalize blocked"
	if snap.FinalizeEnabled {
		finalize = "ready to finalize [f]"
	}

	footer := totals + " | " + finalize

	if m.busy {
		footer += " | working..."
	}

	out := lipgloss.NewStyle().Faint(true).Render(footer)

	if m.status != "" {
		style := lipgloss.NewStyle()
		if m.isErr {
			style = style.Foreground(lipgloss.Color("196"))
		}

		out = lipgloss.JoinVertical(lipgloss.Left, style.Render(m.status), out)
	}

	return lipgloss.JoinVertical(lipgloss.Left, out,
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()))
}

func (m *MovementModel) refreshTable() {
	snap := m.ctrl.Snapshot()

	rows := make([]table.Row, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		rows = append(rows, table.Row{
			l.Name,
			l.SKU,
			strconv.Itoa(l.Quantity),
			l.Unit,
			FormatMoney(l.UnitPrice),
			strconv.Itoa(l.StockQty),
		})
	}

	m.table.SetRows(rows)
}

func (m *MovementModel) setInfo(s string) {
	m.status = s
	m.isErr = false
}

func (m *MovementModel) setErr(err error) {
	m.isErr = true

	switch {
	case errors.Is(err, movement.ErrSuperseded):
		m.status = "The movement was already closed; the result was ignored"
	case errors.Is(err, movement.ErrProductNotFound):
		m.status = "No product matches that barcode"
	case errors.Is(err, movement.ErrNothingToCancel):
		m.status = "Nothing to cancel yet"
	default:
		m.status = err.Error()
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}

	return "off"
}

func quantityForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("quantity").
				Title("Quantity").
				Value(ptr("1")).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("quantity must be a positive number")
					}

					return nil
				}),

			huh.NewInput().
				Key("unit_price").
				Title("Unit price").
				Value(ptr("0")).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v < 0 {
						return fmt.Errorf("price must be zero or more")
					}

					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)
}

func confirmForm(title, description string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No"),
		),
	).WithWidth(44).WithShowHelp(false)
}

func ptr(s string) *string { return &s }

// Messages

type resumeMsg struct {
	resumed bool
	lines   int
	err     error
}

func (m MovementModel) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		var out resumeMsg

		p, err := m.pending.PendingMovement(ctx, m.ctrl.Snapshot().Kind)
		if err != nil {
			out.err = err
		} else if p != nil && m.ctrl.Resume(p.MovementID, p.Note, p.Lines) {
			out.resumed = true
			out.lines = len(p.Lines)
		}

		if err := m.gate.Resume(ctx); err != nil && out.err == nil {
			out.err = err
		}

		return out
	}
}

type scanResolvedMsg struct {
	product *movement.Product
	err     error
}

func (m MovementModel) resolveCmd(code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		p, err := m.resolver.Resolve(ctx, code)

		return scanResolvedMsg{product: p, err: err}
	}
}

type addResultMsg struct {
	outcome *movement.AddOutcome
	added   int
	err     error
}

func (m MovementModel) commitCmd(p *movement.Product, qty int, price float64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		out, err := m.ctrl.AddItem(ctx, p, qty, price)

		return addResultMsg{outcome: out, added: qty, err: err}
	}
}

type removeResultMsg struct {
	err error
}

func (m MovementModel) removeCmd(itemID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		return removeResultMsg{err: m.ctrl.RemoveItem(ctx, itemID)}
	}
}

type captureResultMsg struct {
	state verify.State
	err   error
}

func (m MovementModel) captureCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		state, err := m.gate.Capture(ctx)

		return captureResultMsg{state: state, err: err}
	}
}

type finalizeResultMsg struct {
	// message is the server's completion text, shown as-is.
	message string
	err     error
}

func (m MovementModel) finalizeCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		message, err := m.ctrl.Finalize(ctx)

		return finalizeResultMsg{message: message, err: err}
	}
}

type cancelResultMsg struct {
	err error
}

func (m MovementModel) cancelCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		return cancelResultMsg{err: m.ctrl.Cancel(ctx)}
	}
}

type discardResultMsg struct {
	err error
}

func (m MovementModel) discardCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		return discardResultMsg{err: m.ctrl.DiscardRestart(ctx)}
	}
}

type settingsSavedMsg struct {
	err error
}

func (m MovementModel) saveSettingsCmd() tea.Cmd {
	s := m.settings

	return func() tea.Msg {
		return settingsSavedMsg{err: m.store.Save(s)}
	}
}

func (m MovementModel) bellCmd() tea.Cmd {
	return m.bells(1)
}

// errorBellCmd makes failures audibly distinct from a successful scan.
func (m MovementModel) errorBellCmd() tea.Cmd {
	return m.bells(2)
}

// verifyBellCmd is the distinct chime for a successful face verification.
func (m MovementModel) verifyBellCmd() tea.Cmd {
	return m.bells(3)
}

func (m MovementModel) bells(n int) tea.Cmd {
	if !m.settings.Sound {
		return nil
	}

	return func() tea.Msg {
		fmt.Fprint(os.Stderr, strings.Repeat("\a", n))
		return nil
	}
}
