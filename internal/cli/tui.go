package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/thoughttree/pkg/render"
	"github.com/matzehuels/thoughttree/pkg/tree"
	"github.com/matzehuels/thoughttree/pkg/view"
)

// One terminal cell covers cellWidth x cellHeight screen units, so the
// default 240x100 box is 30x5 cells at scale 1.
const (
	cellWidth  = 8.0
	cellHeight = 20.0

	panStepX = 4 * cellWidth
	panStepY = 2 * cellHeight

	chromeRows = 2 // status and help lines
)

// Canvas styles
var (
	boxStyle      = lipgloss.NewStyle().Foreground(colorGray)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	titleStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	reasonStyle   = lipgloss.NewStyle().Foreground(colorDim)
	edgeStyle     = lipgloss.NewStyle().Foreground(colorDim)
	expandedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	foldedStyle   = lipgloss.NewStyle().Foreground(colorYellow)
	statusStyle   = lipgloss.NewStyle().Foreground(colorGray)
	helpStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TreeModel - interactive tree viewer
// =============================================================================

// TreeModel is the bubbletea model behind the view command. Every input is
// forwarded to the controller; the model only keeps the keyboard selection
// and the terminal size.
type TreeModel struct {
	Ctrl     *view.Controller
	Text     render.TextConfig
	Source   string
	Selected tree.Identity
	Width    int
	Height   int

	nodes int // total nodes in the tree
}

// NewTreeModel creates a viewer over ctrl with the root selected.
func NewTreeModel(ctrl *view.Controller, text render.TextConfig, source string) TreeModel {
	m := TreeModel{
		Ctrl:   ctrl,
		Text:   text,
		Source: source,
		Width:  80,
		Height: 24,
		nodes:  tree.Measure(ctrl.Tree()).Nodes,
	}
	if res := ctrl.Layout(); res.Len() > 0 {
		m.Selected = res.Nodes[res.Root].ID
	}
	return m
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.BlurMsg:
		m.Ctrl.PointerLeave()
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
	}
	m.keepSelection()
	return m, nil
}

func (m TreeModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "n":
		m.moveSelection(1)
	case "shift+tab", "p":
		m.moveSelection(-1)
	case "enter", " ":
		if m.Selected != "" {
			m.Ctrl.Click(m.Selected)
		}
	case "up", "k":
		m.Ctrl.Pan(0, panStepY)
	case "down", "j":
		m.Ctrl.Pan(0, -panStepY)
	case "left", "h":
		m.Ctrl.Pan(panStepX, 0)
	case "right", "l":
		m.Ctrl.Pan(-panStepX, 0)
	case "+", "=":
		m.Ctrl.Wheel(-1)
	case "-", "_":
		m.Ctrl.Wheel(1)
	case "0":
		m.Ctrl.ResetView()
	case "e":
		m.Ctrl.ExpandAll()
	case "[":
		if d := m.Ctrl.MaxDepth(); d > 0 {
			m.Ctrl.SetMaxDepth(d - 1)
		} else if d < 0 {
			m.Ctrl.SetMaxDepth(tree.Measure(m.Ctrl.Tree()).MaxDepth - 1)
		}
	case "]":
		if d := m.Ctrl.MaxDepth(); d >= 0 {
			if d+1 >= tree.Measure(m.Ctrl.Tree()).MaxDepth {
				m.Ctrl.SetMaxDepth(-1)
			} else {
				m.Ctrl.SetMaxDepth(d + 1)
			}
		}
	}
	m.keepSelection()
	return m, nil
}

// handleMouse maps a terminal mouse event to the controller's raw pointer
// events, using the center of the cell as the screen position.
func (m *TreeModel) handleMouse(msg tea.MouseMsg) {
	x, y := cellCenter(msg.X, msg.Y)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.Ctrl.Wheel(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.Ctrl.Wheel(1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if n, ok := m.hit(x, y); ok {
			m.Selected = n
		}
		m.Ctrl.PointerDown(x, y)
	case msg.Action == tea.MouseActionMotion:
		m.Ctrl.PointerMove(x, y)
	case msg.Action == tea.MouseActionRelease:
		m.Ctrl.PointerUp(x, y)
	}
}

func (m TreeModel) hit(x, y float64) (tree.Identity, bool) {
	sx, sy := m.Ctrl.Viewport().Transform().Invert(x, y)
	n, ok := m.Ctrl.Layout().HitTest(sx, sy)
	if !ok {
		return "", false
	}
	return n.ID, true
}

func cellCenter(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * cellWidth, (float64(row) + 0.5) * cellHeight
}

// moveSelection steps through the visible nodes in pre-order.
func (m *TreeModel) moveSelection(step int) {
	res := m.Ctrl.Layout()
	n := res.Len()
	if n == 0 {
		return
	}
	i := 0
	if cur, ok := res.Lookup(m.Selected); ok {
		for j := range res.Nodes {
			if res.Nodes[j].ID == cur.ID {
				i = j
				break
			}
		}
		i = ((i+step)%n + n) % n
	}
	m.Selected = res.Nodes[i].ID
}

// keepSelection moves the selection to the nearest visible ancestor when
// its node disappears from the layout.
func (m *TreeModel) keepSelection() {
	res := m.Ctrl.Layout()
	if res.Len() == 0 {
		m.Selected = ""
		return
	}
	if _, ok := res.Lookup(m.Selected); ok {
		return
	}
	fallback := res.Nodes[res.Root].ID
	_, path, ok := tree.Find(m.Ctrl.Tree(), m.Selected)
	if !ok {
		m.Selected = fallback
		return
	}
	visible := make(map[string]tree.Identity, res.Len())
	for i := range res.Nodes {
		visible[res.Nodes[i].Path] = res.Nodes[i].ID
	}
	for {
		i := strings.LastIndexByte(path, '-')
		if i < 0 {
			break
		}
		path = path[:i]
		if id, ok := visible[path]; ok {
			m.Selected = id
			return
		}
	}
	m.Selected = fallback
}

func (m TreeModel) View() string {
	rows := max(1, m.Height-chromeRows)
	scene := render.FromController(m.Ctrl, render.WithText(m.Text))

	c := newCanvas(max(1, m.Width), rows)
	c.drawScene(scene, m.Selected)

	var b strings.Builder
	b.WriteString(c.String())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab select  ⏎ toggle  ←↑↓→ pan  +/- zoom  [ ] depth  e expand  0 reset  q quit"))
	return b.String()
}

func (m TreeModel) statusLine() string {
	res := m.Ctrl.Layout()
	depth := "all"
	if d := m.Ctrl.MaxDepth(); d >= 0 {
		depth = fmt.Sprint(d)
	}
	parts := []string{
		m.Source,
		fmt.Sprintf("%d/%d visible", res.Len(), m.nodes),
		"depth " + depth,
		fmt.Sprintf("zoom %d%%", int(math.Round(m.Ctrl.Viewport().Scale()*100))),
	}
	if n, ok := res.Lookup(m.Selected); ok {
		parts = append(parts, StyleHighlight.Render(string(n.ID))+" "+render.PrimaryText(n.Source))
	}
	return statusStyle.Render(strings.Join(parts, " · "))
}

// =============================================================================
// Canvas - cell grid for one frame
// =============================================================================

type cell struct {
	r     rune
	style *lipgloss.Style
}

type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

func (c *canvas) set(col, row int, r rune, style *lipgloss.Style) {
	if col < 0 || row < 0 || col >= c.w || row >= c.h {
		return
	}
	c.cells[row*c.w+col] = cell{r: r, style: style}
}

func (c *canvas) text(col, row, width int, s string, style *lipgloss.Style) {
	i := 0
	for _, r := range s {
		if i >= width {
			return
		}
		c.set(col+i, row, r, style)
		i++
	}
}

// toCell maps a scene point through the viewport transform to a cell.
func toCell(t view.Transform, x, y float64) (int, int) {
	sx, sy := t.Apply(x, y)
	return int(math.Floor(sx / cellWidth)), int(math.Floor(sy / cellHeight))
}

func (c *canvas) drawScene(s render.Scene, selected tree.Identity) {
	for _, e := range s.Edges {
		c.drawCurve(s.Transform, e)
	}
	for _, b := range s.Boxes {
		c.drawBox(s.Transform, b, b.ID == selected)
	}
}

// drawCurve plots the Bézier at roughly one sample per cell.
func (c *canvas) drawCurve(t view.Transform, e render.Curve) {
	x1, y1 := toCell(t, e.X1, e.Y1)
	x2, y2 := toCell(t, e.X2, e.Y2)
	steps := 2 * (abs(x2-x1) + abs(y2-y1) + 1)
	for i := 0; i <= steps; i++ {
		u := float64(i) / float64(steps)
		v := 1 - u
		x := v*v*v*e.X1 + 3*v*v*u*e.C1X + 3*v*u*u*e.C2X + u*u*u*e.X2
		y := v*v*v*e.Y1 + 3*v*v*u*e.C1Y + 3*v*u*u*e.C2Y + u*u*u*e.Y2
		col, row := toCell(t, x, y)
		c.set(col, row, '·', &edgeStyle)
	}
}

func (c *canvas) drawBox(t view.Transform, b render.Box, selected bool) {
	x0, y0 := toCell(t, b.X, b.Y)
	x1, y1 := toCell(t, b.X+b.Width, b.Y+b.Height)
	x1, y1 = max(x1-1, x0+1), max(y1-1, y0+1)

	border := &boxStyle
	if selected {
		border = &selectedStyle
	}
	for col := x0 + 1; col < x1; col++ {
		c.set(col, y0, '─', border)
		c.set(col, y1, '─', border)
	}
	for row := y0 + 1; row < y1; row++ {
		c.set(x0, row, '│', border)
		c.set(x1, row, '│', border)
		for col := x0 + 1; col < x1; col++ {
			c.set(col, row, ' ', nil)
		}
	}
	c.set(x0, y0, '╭', border)
	c.set(x1, y0, '╮', border)
	c.set(x0, y1, '╰', border)
	c.set(x1, y1, '╯', border)

	inner := x1 - x0 - 3
	row := y0 + 1
	for _, l := range b.Title {
		if row >= y1 {
			break
		}
		c.text(x0+2, row, inner, l.Text, &titleStyle)
		row++
	}
	for _, l := range b.Reason {
		if row >= y1 {
			break
		}
		c.text(x0+2, row, inner, l.Text, &reasonStyle)
		row++
	}

	if tg := b.Toggle; tg != nil {
		style := &expandedStyle
		if tg.Collapsed {
			style = &foldedStyle
		}
		c.text(x1-4, y0, 3, "["+tg.Glyph+"]", style)
	}
}

// String renders the grid, styling runs of cells that share a style.
func (c *canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.h; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		line := c.cells[row*c.w : (row+1)*c.w]
		for i := 0; i < len(line); {
			j := i
			var run strings.Builder
			for j < len(line) && line[j].style == line[i].style {
				run.WriteRune(line[j].r)
				j++
			}
			if st := line[i].style; st != nil {
				b.WriteString(st.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			i = j
		}
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
