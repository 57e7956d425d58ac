// Package datasource loads historical OHLCV bars for backtesting.
package datasource

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/QuantTradingOS/qtos-core/internal/types"
	"github.com/QuantTradingOS/qtos-core/pkg/errors"
	"github.com/gocarina/gocsv"
)

// Column aliases mapped to the canonical open/high/low/close/volume names.
// The date column also goes by several names in exported data.
var columnAliases = map[string]string{
	"o":         "open",
	"h":         "high",
	"l":         "low",
	"c":         "close",
	"v":         "volume",
	"vol":       "volume",
	"time":      "date",
	"datetime":  "date",
	"timestamp": "date",
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// csvTime parses the handful of datetime formats seen in exported bar data.
type csvTime struct {
	time.Time
}

func (t *csvTime) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)

	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			t.Time = parsed

			return nil
		}
	}

	return errors.Newf(errors.ErrCodeDataSourceFailed, "unparseable date %q", value)
}

type csvRow struct {
	Date   csvTime `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// LoadCSV loads OHLCV bars from a CSV file and tags every bar with the given
// symbol. Headers are case-insensitive and common aliases (o/h/l/c/v, vol,
// time, datetime, timestamp) are accepted; when no date column is found the
// first column is treated as the date. Bars are returned sorted ascending by
// time regardless of file order.
func LoadCSV(path string, symbol string) ([]types.MarketData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read %s", path)
	}

	normalized, err := normalizeHeader(string(raw))
	if err != nil {
		return nil, err
	}

	var rows []csvRow

	err = gocsv.UnmarshalString(normalized, &rows)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceFailed, err, "failed to parse %s", path)
	}

	if len(rows) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no bars in %s", path)
	}

	bars := make([]types.MarketData, len(rows))
	for i, row := range rows {
		bars[i] = types.MarketData{
			Symbol: symbol,
			Time:   row.Date.Time,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		}
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	return bars, nil
}

// normalizeHeader lowercases and de-aliases the header row so gocsv can match
// the canonical struct tags.
func normalizeHeader(raw string) (string, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")

	newline := strings.IndexByte(raw, '\n')
	if newline < 0 {
		return "", errors.New(errors.ErrCodeDataNotFound, "csv has no data rows")
	}

	header := strings.TrimRight(raw[:newline], "\r")
	columns := strings.Split(header, ",")
	hasDate := false

	for i, column := range columns {
		name := strings.ToLower(strings.TrimSpace(column))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}

		if name == "date" {
			hasDate = true
		}

		columns[i] = name
	}

	// Fall back to the original convention: first column is the date.
	if !hasDate && len(columns) > 0 {
		columns[0] = "date"
	}

	for _, required := range []string{"open", "high", "low", "close"} {
		found := false

		for _, column := range columns {
			if column == required {
				found = true

				break
			}
		}

		if !found {
			return "", errors.Newf(errors.ErrCodeDataSourceFailed, "missing required column %q", required)
		}
	}

	return strings.Join(columns, ",") + raw[newline:], nil
}
