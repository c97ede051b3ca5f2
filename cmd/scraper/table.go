package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/narwhalmedia/scraper/internal/domain/media"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func itemRows(items []media.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		scraped := "never"
		if at, ok := item.ScrapedAt(); ok {
			scraped = at.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			item.LogLabel(),
			string(item.Kind()),
			string(item.State()),
			scraped,
			fmt.Sprint(item.ScrapedTimes()),
			fmt.Sprint(len(item.Streams())),
		})
	}
	return rows
}

var itemHeaders = []string{"Item", "Kind", "State", "Scraped", "Times", "Streams"}

var itemAligns = []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}
