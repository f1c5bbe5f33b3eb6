// File: internal/infra/adapters/feed/dose_feed.go
package feed

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.DoseFeed = (*DoseFeed)(nil)

// Column names of the Italian open-data vaccination summary.
const (
	colDate           = "data_somministrazione"
	colRegion         = "area"
	colTotal          = "totale"
	colFirstDose      = "prima_dose"
	colSecondDose     = "seconda_dose"
	colPriorInfection = "pregressa_infezione"
)

// boosterColumns are summed into DoseRecord.Booster; later feed revisions split boosters in several columns.
var boosterColumns = []string{"dose_addizionale_booster", "db1", "db2", "db3"}

// DoseFeed downloads the vaccination CSV and turns it into dose records.
type DoseFeed struct {
	client *Client
	url    string
	log    *zerolog.Logger
}

func NewDoseFeed(client *Client, url string, logger *zerolog.Logger) *DoseFeed {
	l := logger.With().Str("component", "DoseFeed").Logger()
	return &DoseFeed{client: client, url: url, log: &l}
}

func (f *DoseFeed) FetchDoseSeries(ctx context.Context) ([]model.DoseRecord, []error, error) {
	body, err := f.client.get(ctx, "doses", f.url)
	if err != nil {
		return nil, nil, err
	}
	rows, rejected, err := ParseDoseCSV(bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	if len(rejected) > 0 {
		f.log.Warn().Int("rejected", len(rejected)).Int("rows", len(rows)).Msg("feed rows rejected")
	}
	return rows, rejected, nil
}

type columns struct {
	date, region, total, first, second, prior int
	boosters                                  []int
}

func indexColumns(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	col := func(name string) int {
		if i, ok := idx[name]; ok {
			return i
		}
		return -1
	}
	c := columns{
		date:   col(colDate),
		region: col(colRegion),
		total:  col(colTotal),
		first:  col(colFirstDose),
		second: col(colSecondDose),
		prior:  col(colPriorInfection),
	}
	for _, name := range boosterColumns {
		if i := col(name); i >= 0 {
			c.boosters = append(c.boosters, i)
		}
	}
	var missing []string
	for name, i := range map[string]int{colDate: c.date, colTotal: c.total, colFirstDose: c.first, colSecondDose: c.second} {
		if i < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return c, fmt.Errorf("%w: missing columns %s", domain.ErrFetchFailed, strings.Join(missing, ", "))
	}
	return c, nil
}

// ParseDoseCSV reads the feed CSV. A malformed header fails the whole parse; a malformed
// or inconsistent row is reported as a *domain.DataQualityError and skipped.
func ParseDoseCSV(r io.Reader) ([]model.DoseRecord, []error, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read header: %v", domain.ErrFetchFailed, err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		rows     []model.DoseRecord
		rejected []error
	)
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				rejected = append(rejected, &domain.DataQualityError{Row: line, Reason: perr.Err.Error()})
				continue
			}
			return nil, nil, fmt.Errorf("%w: read csv: %v", domain.ErrFetchFailed, err)
		}
		rec, qerr := parseRow(fields, cols, line)
		if qerr != nil {
			rejected = append(rejected, qerr)
			continue
		}
		rows = append(rows, rec)
	}
	return rows, rejected, nil
}

func parseRow(fields []string, c columns, line int) (model.DoseRecord, error) {
	field := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}
	date, region := field(c.date), strings.ToUpper(field(c.region))
	var day time.Time
	reject := func(reason string) (model.DoseRecord, error) {
		return model.DoseRecord{}, &domain.DataQualityError{Row: line, Date: date, Day: day, Region: region, Reason: reason}
	}

	day, err := parseDate(date)
	if err != nil {
		return reject("invalid date")
	}

	var perr error
	count := func(i int, name string, optional bool) int64 {
		s := field(i)
		if s == "" && (optional || i < 0) {
			return 0
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil && perr == nil {
			perr = fmt.Errorf("invalid %s %q", name, s)
		}
		return n
	}
	rec := model.DoseRecord{
		Date:           day,
		Region:         region,
		Total:          count(c.total, colTotal, false),
		FirstDose:      count(c.first, colFirstDose, false),
		SecondDose:     count(c.second, colSecondDose, false),
		PriorInfection: count(c.prior, colPriorInfection, true),
	}
	for _, i := range c.boosters {
		rec.Booster += count(i, "booster", true)
	}
	if perr != nil {
		return reject(perr.Error())
	}
	if err := rec.Validate(); err != nil {
		return reject(strings.TrimPrefix(err.Error(), domain.ErrDataQuality.Error()+": "))
	}
	return rec, nil
}

// parseDate accepts plain dates and the ISO timestamps older feed revisions used.
func parseDate(s string) (time.Time, error) {
	if len(s) >= 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return model.Day(t), nil
}
