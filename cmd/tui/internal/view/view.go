package view

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const opTimeout = 30 * time.Second

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct{}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// FormatMoney formats a unit price or line value.
func FormatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// OpCtx returns a context with a standard timeout for remote operations.
func OpCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}
