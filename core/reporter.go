package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/encodeous/dvsim/state"
)

// Reporter receives the output of an engine run
type Reporter interface {
	DistanceTables(r *Round) error
	RoutingTables(routers []state.RouterId, tables map[state.RouterId][]RouteEntry) error
}

// TextReporter writes tables in the plain text output format. Each table is
// rendered fully before it is written, so a table is never partially emitted.
type TextReporter struct {
	W io.Writer
}

func (t *TextReporter) DistanceTables(r *Round) error {
	for _, id := range r.Routers {
		if _, err := io.WriteString(t.W, FormatDistanceTable(r.T, r.Tables[id])); err != nil {
			return err
		}
	}
	return nil
}

func (t *TextReporter) RoutingTables(routers []state.RouterId, tables map[state.RouterId][]RouteEntry) error {
	for _, id := range routers {
		if _, err := io.WriteString(t.W, FormatRoutingTable(id, tables[id])); err != nil {
			return err
		}
	}
	return nil
}

func FormatDistanceTable(t int, tbl *DistanceTable) string {
	width := len("INF")
	for _, id := range tbl.Ids {
		width = max(width, len(id))
		for _, via := range tbl.Ids {
			width = max(width, len(tbl.Cost(id, via).String()))
		}
	}
	width += 2

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Distance Table of router %s at t=%d:\n", tbl.Router, t))
	writeRow := func(label string, cells []string) {
		line := fmt.Sprintf("%-*s", width, label)
		for i, cell := range cells {
			if i == len(cells)-1 {
				line += cell
			} else {
				line += fmt.Sprintf("%-*s", width, cell)
			}
		}
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteString("\n")
	}

	header := make([]string, 0, len(tbl.Ids))
	for _, via := range tbl.Ids {
		header = append(header, string(via))
	}
	writeRow("", header)
	for _, dst := range tbl.Ids {
		cells := make([]string, 0, len(tbl.Ids))
		for _, via := range tbl.Ids {
			cells = append(cells, tbl.Cost(dst, via).String())
		}
		writeRow(string(dst), cells)
	}
	sb.WriteString("\n")
	return sb.String()
}

func FormatRoutingTable(id state.RouterId, entries []RouteEntry) string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Routing Table of router %s:\n", id))
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// MultiReporter forwards every report to each reporter in order, stopping at the first error
type MultiReporter []Reporter

func (m MultiReporter) DistanceTables(r *Round) error {
	for _, rep := range m {
		if err := rep.DistanceTables(r); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiReporter) RoutingTables(routers []state.RouterId, tables map[state.RouterId][]RouteEntry) error {
	for _, rep := range m {
		if err := rep.RoutingTables(routers, tables); err != nil {
			return err
		}
	}
	return nil
}
