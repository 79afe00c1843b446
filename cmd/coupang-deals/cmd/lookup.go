package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lsm5482-blip/my-coupang-bot/internal/coupang"
	"github.com/lsm5482-blip/my-coupang-bot/internal/deals"
	"github.com/lsm5482-blip/my-coupang-bot/internal/notify"
	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

type searcher interface {
	Search(ctx context.Context, keyword string, limit int) ([]coupang.RawListing, error)
}

type deeplinker interface {
	Deeplink(ctx context.Context, urls []string) ([]coupang.Deeplink, error)
}

func searchCmd() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search the Partners API and compare results with recorded lows",
		Long: "search evaluates matching listings against the stored price history\n" +
			"without recording them.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.Fetch.CategoryLimit
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, cfg.Fetch.RunTimeout)
			defer cancel()

			api, _, err := newProductsAPI(cfg, log)
			if err != nil {
				return err
			}

			store, closeStore, err := newStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			records, err := store.Load(ctx)
			if err != nil {
				log.Warn("loading price history failed, lows not flagged", "error", err)
				records = nil
			}

			products, err := searchProducts(ctx, api, args[0], limit, records, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				return outputJSON(out, products)
			}
			return printSearchTable(out, products)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum listings to request (default fetch.category_limit)")
	cmd.Flags().StringVar(&format, "format", "table", "output format (table, json)")
	return cmd
}

// searchProducts evaluates search results against records without changing
// them. A nil records map leaves every product unflagged.
func searchProducts(
	ctx context.Context,
	s searcher,
	keyword string,
	limit int,
	records map[string]*domain.PriceRecord,
	log *slog.Logger,
) ([]domain.EvaluatedProduct, error) {
	raw, err := s.Search(ctx, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", keyword, err)
	}

	var obs deals.Observer
	if records != nil {
		obs = deals.ObserverFunc(func(id string, price int64) bool {
			low, ok := records[id].Min()
			return !ok || price <= low
		})
	}
	return deals.NewEvaluator(deals.WithLogger(log)).Evaluate(raw, obs), nil
}

func deeplinkCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "deeplink <url>...",
		Short:   "Convert Coupang product URLs into tracking links",
		Example: "  coupang-deals deeplink https://www.coupang.com/vp/products/184614775",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			api, _, err := newProductsAPI(cfg, log)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Coupang.Timeout*2)
			defer cancel()

			links, err := trackingLinks(ctx, api, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				return outputJSON(out, links)
			}
			return printDeeplinkTable(out, links)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format (table, json)")
	return cmd
}

func trackingLinks(ctx context.Context, d deeplinker, urls []string) ([]coupang.Deeplink, error) {
	links, err := d.Deeplink(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("creating deeplinks: %w", err)
	}
	return links, nil
}

func printSearchTable(w io.Writer, products []domain.EvaluatedProduct) error {
	tw := newTabWriter(w)
	tw.writef("PRODUCT\tNAME\tPRICE\tORIGINAL\tDISCOUNT\tLOW\n")
	for _, p := range products {
		low := "-"
		if p.IsAllTimeLow {
			low = "yes"
		}
		tw.writef("%s\t%s\t%s\t%s\t%d%%\t%s\n",
			p.ProductID,
			truncate(p.Name, 40),
			notify.FormatWon(p.SalePrice),
			notify.FormatWon(p.OriginalPrice),
			p.DiscountRate,
			low,
		)
	}
	return tw.finish()
}

func printDeeplinkTable(w io.Writer, links []coupang.Deeplink) error {
	tw := newTabWriter(w)
	tw.writef("ORIGINAL\tTRACKING\n")
	for _, l := range links {
		tw.writef("%s\t%s\n", l.OriginalURL, l.ShortenURL)
	}
	return tw.finish()
}
