package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// WriteList prints the loaded platforms, the dispatch table and what
// happened to every library.
func (a *App) WriteList(w io.Writer) error {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true).MarginTop(1)

	var b strings.Builder
	section := func(name string, headers []string, rows [][]string) {
		b.WriteString(title.Render(fmt.Sprintf("%s (%d)", name, len(rows))))
		b.WriteString("\n")
		if len(rows) == 0 {
			return
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(headers...).
			Rows(rows...)
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	section("Platforms", []string{"NAME", "EXTENSIONS"}, a.platformRows())
	section("Instructions", []string{"TYPE", "KIND", "ARITY", "EXTENSION"}, a.instructionRows())
	section("Expressions", []string{"TYPE", "RETURNS", "PARAMS", "EXTENSION"}, a.expressionRows())
	section("Libraries", []string{"PATH", "KIND", "NAME", "STATE", "ERROR"}, a.libraryRows())

	_, err := io.WriteString(w, b.String())
	return err
}

func (a *App) platformRows() [][]string {
	var rows [][]string
	for _, p := range a.manager.Platforms() {
		var names []string
		for _, ext := range p.Extensions() {
			names = append(names, ext.Name())
		}
		rows = append(rows, []string{p.Name(), strings.Join(names, ", ")})
	}
	return rows
}

func (a *App) instructionRows() [][]string {
	var rows [][]string
	for _, typ := range a.table.InstructionTypes() {
		e, _ := a.table.Instruction(typ)
		rows = append(rows, []string{typ, e.Kind.String(), strconv.Itoa(e.Arity), e.Extension})
	}
	return rows
}

func (a *App) expressionRows() [][]string {
	var rows [][]string
	for _, typ := range a.table.ExpressionTypes() {
		e, _ := a.table.Expression(typ)
		params := make([]string, len(e.Params))
		for i, p := range e.Params {
			params[i] = p.FriendlyName()
		}
		rows = append(rows, []string{typ, e.Returns.String(), strings.Join(params, ", "), e.Extension})
	}
	return rows
}

func (a *App) libraryRows() [][]string {
	if a.report == nil {
		return nil
	}
	var rows [][]string
	for _, c := range a.report.Candidates {
		state := c.State.String()
		errText := ""
		if c.Err != nil {
			state = fmt.Sprintf("%s at %s", state, c.RejectedAt)
			errText = c.Err.Error()
		}
		rows = append(rows, []string{c.Path, c.Kind.String(), c.Name, state, errText})
	}
	return rows
}
