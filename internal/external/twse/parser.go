package twse

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/internal/marketdata"
)

// MI_INDEX quote table columns
const (
	colCode  = 0
	colName  = 1
	colHigh  = 6
	colLow   = 7
	colClose = 8
	minCols  = colClose + 1
)

// ParseCSV parses the UTF-8 MI_INDEX CSV.
// The report stacks several tables; only rows shaped like the quote table
// with a valid code survive. Lines starting with "=" are skipped.
func ParseCSV(r io.Reader) (contracts.Snapshot, error) {
	var kept strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "=") {
			continue
		}
		kept.WriteString(line)
		kept.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(kept.String()))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	snap := contracts.Snapshot{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}

		if rec, ok := rowRecord(row); ok {
			snap = append(snap, rec)
		}
	}

	return snap.Dedupe(), nil
}

// ParseHTML parses the response=html variant of the same report
func ParseHTML(r io.Reader) (contracts.Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	snap := contracts.Snapshot{}
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < minCols {
			return
		}

		row := make([]string, cells.Length())
		cells.Each(func(i int, td *goquery.Selection) {
			row[i] = strings.TrimSpace(td.Text())
		})

		if rec, ok := rowRecord(row); ok {
			snap = append(snap, rec)
		}
	})

	return snap.Dedupe(), nil
}

func rowRecord(row []string) (contracts.SecurityRecord, bool) {
	if len(row) < minCols {
		return contracts.SecurityRecord{}, false
	}
	return marketdata.BuildRecord(marketdata.RawRow{
		Code:  row[colCode],
		Name:  row[colName],
		Low:   row[colLow],
		High:  row[colHigh],
		Close: row[colClose],
	})
}
