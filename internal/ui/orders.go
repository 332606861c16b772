package ui

import (
	"context"
	"fmt"
	"strings"

	"orderdesk/internal/orders"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const ordersPerPage = 10

type ordersLoadedMsg struct {
	page   int
	orders []orders.Order
	err    error
}

type orderDetailMsg struct {
	order *orders.Order
	err   error
}

type ordersModel struct {
	client *orders.Client

	spin    spinner.Model
	loading bool
	page    int
	list    []orders.Order
	cursor  int
	detail  *orders.Order
	errText string
}

func newOrdersModel(client *orders.Client) ordersModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return ordersModel{client: client, spin: sp, page: 1}
}

// load fetches the current page. Called on entry and on refresh.
func (m *ordersModel) load() tea.Cmd {
	m.loading = true
	m.errText = ""
	client, page := m.client, m.page
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		list, err := client.List(context.Background(), page, ordersPerPage, "")
		return ordersLoadedMsg{page: page, orders: list, err: err}
	})
}

func (m *ordersModel) fetchDetail(orderID string) tea.Cmd {
	m.loading = true
	m.errText = ""
	client := m.client
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		order, err := client.Get(context.Background(), orderID)
		return orderDetailMsg{order: order, err: err}
	})
}

func (m ordersModel) update(msg tea.Msg) (ordersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case ordersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errText = "Could not load orders. Please try again."
			return m, nil
		}
		m.page = msg.page
		m.list = msg.orders
		if m.cursor >= len(m.list) {
			m.cursor = 0
		}
		return m, nil

	case orderDetailMsg:
		m.loading = false
		if msg.err != nil {
			m.errText = "Could not load that order. Please try again."
			return m, nil
		}
		m.detail = msg.order
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if m.detail != nil {
			if msg.String() == "esc" || msg.Type == tea.KeyEnter {
				m.detail = nil
			}
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.list)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.list) {
				return m, m.fetchDetail(m.list[m.cursor].SalesOrderNumber)
			}
		case "left", "h":
			if m.page > 1 {
				m.page--
				return m, m.load()
			}
		case "right", "l":
			if len(m.list) == ordersPerPage {
				m.page++
				return m, m.load()
			}
		case "r":
			return m, m.load()
		}
	}
	return m, nil
}

func (m ordersModel) view() string {
	if m.detail != nil {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Your orders"))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spin.View() + " Loading orders...")
	case m.errText != "":
		b.WriteString(errorStyle.Render(m.errText))
	case len(m.list) == 0:
		b.WriteString("No orders found.")
	default:
		for i, order := range m.list {
			row := fmt.Sprintf("%-10s  %-18s  %-12s  $%10.2f",
				order.SalesOrderNumber, order.DisplayStatus, order.OrderDate, order.OrderTotal)
			if i == m.cursor {
				row = selectedRowStyle.Render(row)
			}
			b.WriteString(row + "\n")
		}
		b.WriteString(statusBarStyle.Render(fmt.Sprintf("\npage %d", m.page)))
	}

	b.WriteString(helpStyle.Render("\n↑/↓ select • enter detail • ←/→ page • r refresh • c chat • esc home • ctrl+c quit"))
	return b.String()
}

func (m ordersModel) detailView() string {
	order := m.detail
	var b strings.Builder
	b.WriteString(titleStyle.Render("Order " + order.SalesOrderNumber))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Status:     %s\n", order.DisplayStatus)
	fmt.Fprintf(&b, "Order date: %s\n", order.OrderDate)
	if order.RequestedShipDate != "" {
		fmt.Fprintf(&b, "Ship date:  %s\n", order.RequestedShipDate)
	}
	fmt.Fprintf(&b, "Total:      $%.2f\n", order.OrderTotal)

	if len(order.Items) > 0 {
		b.WriteString("\nItems:\n")
		for _, item := range order.Items {
			fmt.Fprintf(&b, "  %-12s %-30s x%-3d $%8.2f\n",
				item.ItemNumber, item.ItemDescription, item.LineQuantity, item.LineNetAmount)
		}
	}

	b.WriteString(helpStyle.Render("\nesc back to list"))
	return b.String()
}
