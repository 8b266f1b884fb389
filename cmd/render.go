package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/ekaya-inc/fraudwatch/pkg/models"
)

// maxTableRows bounds how many rows a terminal table shows.
const maxTableRows = 50

// tableData converts rows into pterm table data with a header row. Columns
// keep the given order; keys missing from columns follow in name order.
func tableData(columns []string, rows []map[string]any, limit int) pterm.TableData {
	header := append([]string(nil), columns...)
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	var extra []string
	for _, row := range rows {
		for k := range row {
			if !known[k] {
				known[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	header = append(header, extra...)

	data := pterm.TableData{header}
	for i, row := range rows {
		if limit > 0 && i >= limit {
			break
		}
		cells := make([]string, len(header))
		for j, col := range header {
			cells[j] = cell(row[col])
		}
		data = append(data, cells)
	}
	return data
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

func renderRows(columns []string, rows []map[string]any) error {
	if len(rows) == 0 {
		pterm.Info.Println("No rows.")
		return nil
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData(columns, rows, maxTableRows)).Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	if len(rows) > maxTableRows {
		pterm.Info.Printfln("Showing %d of %d rows.", maxTableRows, len(rows))
	}
	return nil
}

// renderMessage prints the assistant's content blocks.
func renderMessage(message models.AnalystMessage) {
	for _, block := range message.Content {
		switch block.Type {
		case models.ContentTypeText:
			pterm.Println(block.Text)
		case models.ContentTypeSQL:
			pterm.DefaultBox.WithTitle("SQL").Println(strings.TrimSpace(block.Statement))
		case models.ContentTypeSuggestions:
			items := make([]pterm.BulletListItem, 0, len(block.Suggestions))
			for _, s := range block.Suggestions {
				items = append(items, pterm.BulletListItem{Level: 0, Text: s})
			}
			pterm.DefaultSection.WithLevel(2).Println("Try asking")
			_ = pterm.DefaultBulletList.WithItems(items).Render()
		}
	}
}
