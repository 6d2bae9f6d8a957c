package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/bekzodm/omborscan/cmd/tui/internal/view"
	"github.com/bekzodm/omborscan/internal/camera"
	"github.com/bekzodm/omborscan/internal/config"
	"github.com/bekzodm/omborscan/internal/gateway"
	"github.com/bekzodm/omborscan/internal/movement"
	"github.com/bekzodm/omborscan/internal/settings"
	"github.com/bekzodm/omborscan/internal/verify"
)

type model struct {
	gw       *gateway.Client
	cam      *camera.Command
	store    *settings.Store
	settings settings.Settings

	currentView View
	capture     view.MovementModel
}

type View int

const (
	ViewMenu     View = 0
	ViewInbound  View = 1
	ViewOutbound View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	gw := gateway.New(gateway.Config{
		BaseURL:   cfg.Server.BaseURL,
		APIToken:  cfg.Server.APIToken,
		CSRFToken: cfg.Server.CSRFToken,
		Timeout:   cfg.Server.Timeout,
	})

	cam, err := camera.New(cfg.Camera.Command)
	if err != nil {
		slog.Error("invalid camera command", "error", err)
		os.Exit(1)
	}

	store, err := settings.DefaultStore(cfg.App.Name)
	if err != nil {
		slog.Error("failed to locate settings", "error", err)
		os.Exit(1)
	}

	st, err := store.Load()
	if err != nil {
		slog.Warn("failed to load settings, using defaults", "error", err)
		st = settings.Default()
	}

	return model{
		gw:          gw,
		cam:         cam,
		store:       store,
		settings:    st,
		currentView: ViewMenu,
	}
}

func (m model) newCapture(kind movement.Kind) view.MovementModel {
	ctrl := movement.NewController(m.gw, kind)
	gate := verify.New(m.gw, m.cam, func(s verify.State) {
		ctrl.SetVerified(s.Name, s.Confidence)
	})

	return view.NewMovementModel(
		ctrl,
		movement.NewResolver(m.gw),
		gate,
		m.gw,
		m.store,
		m.settings,
	)
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewInbound
				m.capture = m.newCapture(movement.KindIn)

				return m, m.capture.Init()
			case "2":
				m.currentView = ViewOutbound
				m.capture = m.newCapture(movement.KindOut)

				return m, m.capture.Init()
			}
		}
	case view.BackMsg:
		// Toggle changes made on the capture screen survive the trip
		// back to the menu.
		if st, err := m.store.Load(); err == nil {
			m.settings = st
		}

		m.currentView = ViewMenu

		return m, nil
	}

	if m.currentView != ViewMenu {
		var newModel tea.Model
		newModel, cmd = m.capture.Update(msg)
		m.capture = newModel.(view.MovementModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Omborscan\n\n" +
				"1. Inbound Movement (receive stock)\n" +
				"2. Outbound Movement (issue stock)\n\n" +
				"q. Quit",
		)
	case ViewInbound, ViewOutbound:
		return m.capture.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
