package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lsm5482-blip/my-coupang-bot/internal/notify"
	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printRunTable(w io.Writer, res *domain.RunResult) error {
	tw := newTabWriter(w)
	tw.writef("CATEGORY\tSTATE\tPRODUCTS\tALL-TIME LOWS\tERROR\n")

	row := func(cr *domain.CategoryResult) {
		lows := 0
		for _, p := range cr.Products {
			if p.IsAllTimeLow {
				lows++
			}
		}
		tw.writef("%s (%s)\t%s\t%d\t%d\t%s\n",
			cr.Category.Label,
			cr.Category.ID,
			cr.State,
			cr.Count,
			lows,
			truncate(cr.Error, 50),
		)
	}
	if res.Featured != nil {
		row(res.Featured)
	}
	for i := range res.Categories {
		row(&res.Categories[i])
	}
	tw.writef("\n")

	tw.writef("PRODUCT\tNAME\tPRICE\tORIGINAL\tDISCOUNT\n")
	for _, p := range res.AllTimeLowProducts() {
		tw.writef("%s\t%s\t%s\t%s\t%d%%\n",
			p.ProductID,
			truncate(p.Name, 40),
			notify.FormatWon(p.SalePrice),
			notify.FormatWon(p.OriginalPrice),
			p.DiscountRate,
		)
	}
	tw.writef("\nrun %s: %d products, %d all-time lows, %s\n",
		res.RunID, res.TotalProducts(), res.AllTimeLows, res.Duration.Round(time.Millisecond))
	return tw.finish()
}

func printHistoryTable(w io.Writer, records map[string]*domain.PriceRecord, ids []string) error {
	if len(ids) == 0 {
		ids = make([]string, 0, len(records))
		for id := range records {
			ids = append(ids, id)
		}
		slices.Sort(ids)
	}

	tw := newTabWriter(w)
	tw.writef("PRODUCT\tOBSERVATIONS\tLOW\tLATEST\tPRICES\n")
	for _, id := range ids {
		rec, ok := records[id]
		low, hasLow := rec.Min()
		if !ok || !hasLow {
			tw.writef("%s\t0\t-\t-\t-\n", id)
			continue
		}
		prices := make([]string, len(rec.Prices))
		for i, p := range rec.Prices {
			prices[i] = fmt.Sprintf("%d", p)
		}
		tw.writef("%s\t%d\t%s\t%s\t%s\n",
			id,
			len(rec.Prices),
			notify.FormatWon(low),
			notify.FormatWon(rec.Prices[len(rec.Prices)-1]),
			truncate(strings.Join(prices, ","), 60),
		)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to maxLen runes so Korean names are not cut mid
// character.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
