// Package engine drives the page loop: fetch, parse, export, repeat until a
// stop condition is met.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/skoeller/rankscrape/internal/config"
	"github.com/skoeller/rankscrape/internal/fetcher"
	"github.com/skoeller/rankscrape/internal/parser"
	"github.com/skoeller/rankscrape/internal/storage"
	"github.com/skoeller/rankscrape/internal/types"
	"github.com/skoeller/rankscrape/internal/urlutil"
)

// Summary reports what one scrape run produced.
type Summary struct {
	Pages    int
	Parsed   int
	Written  int
	RankWeek string
	Caption  string
	CSVPath  string
	Duration time.Duration
}

// Runner scrapes one ranking category end to end. The first page fixes the
// publication week, the caption, and the header schema for the whole run;
// later pages only contribute rows.
type Runner struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	parser  *parser.TableParser
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewRunner creates a runner around an already-constructed fetcher.
func NewRunner(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) *Runner {
	limit := rate.Inf
	if cfg.Scrape.PolitenessDelay > 0 {
		limit = rate.Every(cfg.Scrape.PolitenessDelay)
	}
	return &Runner{
		cfg:     cfg,
		fetcher: f,
		parser:  parser.NewTableParser(logger),
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With("component", "engine"),
	}
}

// Run scrapes all pages of the ranking at rawURL and streams them to the
// configured sinks.
func (r *Runner) Run(ctx context.Context, rawURL string) (*Summary, error) {
	if err := config.ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidURL, err)
	}

	start := time.Now()
	page := r.cfg.Scrape.StartPage

	resp, err := r.fetchPage(ctx, rawURL, page)
	if err != nil {
		return nil, err
	}

	html := resp.Text()

	rankWeek, ok := parser.ParseRankWeek(html)
	if !ok {
		rankWeek = "UnknownWeek"
		r.logger.Warn("publication week not found on page", "url", resp.FinalURL)
	}
	caption, _ := parser.ExtractCaption(html)

	opts := parser.Options{
		KeepFlag: r.cfg.Scrape.KeepFlag,
		KeepRaw:  r.cfg.Scrape.KeepRaw,
		RankWeek: rankWeek,
	}

	records, headerSchema, err := r.parser.Parse(html, opts)
	if err != nil {
		return nil, err
	}

	csvPath := r.csvPath(rankWeek, caption)
	sink, csvSink, err := r.openSinks(csvPath, headerSchema, caption, rankWeek)
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	summary := &Summary{
		RankWeek: rankWeek,
		Caption:  caption,
		CSVPath:  csvSink.Path(),
	}
	r.logger.Info("scrape started",
		"url", rawURL,
		"rank_week", rankWeek,
		"caption", caption,
		"csv", summary.CSVPath,
	)

	for {
		summary.Pages++
		summary.Parsed += len(records)

		kept, done := r.applyCutoff(records)
		if len(kept) > 0 {
			if err := sink.Write(kept); err != nil {
				return nil, err
			}
			summary.Written += len(kept)
		}
		r.logger.Debug("page done",
			"page", page,
			"rows", len(records),
			"kept", len(kept),
			"total", summary.Written,
		)

		if done || r.stop(len(records), summary.Pages) {
			break
		}

		page++
		resp, err = r.fetchPage(ctx, rawURL, page)
		if err != nil {
			return nil, err
		}
		records, _, err = r.parser.Parse(resp.Text(), opts)
		if err != nil {
			return nil, err
		}
	}

	summary.Duration = time.Since(start)
	r.logger.Info("scrape finished",
		"pages", summary.Pages,
		"parsed", summary.Parsed,
		"written", summary.Written,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (r *Runner) fetchPage(ctx context.Context, rawURL string, page int) (*types.Response, error) {
	pageURL, err := urlutil.SetQueryParams(rawURL, map[string]string{
		"p":  strconv.Itoa(page),
		"ps": strconv.Itoa(r.cfg.Scrape.PageSize),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidURL, err)
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.fetcher.Fetch(ctx, pageURL)
}

// applyCutoff trims a page to the records still within --max-rank. Ranks
// arrive sorted, so the first record past the cutoff ends the run. Records
// without a numeric rank never trigger the cutoff.
func (r *Runner) applyCutoff(records []*types.RankingRecord) ([]*types.RankingRecord, bool) {
	maxRank := r.cfg.Scrape.MaxRank
	if maxRank <= 0 {
		return records, false
	}
	for i, rec := range records {
		if rec.Rank.Valid && rec.Rank.Value > maxRank {
			return records[:i], true
		}
	}
	// A short page means the table is exhausted before the cutoff.
	return records, len(records) < r.cfg.Scrape.PageSize
}

// stop decides whether another page should be fetched. --max-rank overrides
// --max-pages so an explicit cutoff always scans far enough.
func (r *Runner) stop(pageRows, pagesDone int) bool {
	if pageRows < r.cfg.Scrape.PageSize {
		return true
	}
	if r.cfg.Scrape.MaxRank > 0 {
		return false
	}
	return r.cfg.Scrape.MaxPages > 0 && pagesDone >= r.cfg.Scrape.MaxPages
}

// csvPath builds output-csv/<week>/dbv_rankings_<week>_<slug>[_first_N].csv,
// unless an explicit output file overrides the generated name.
func (r *Runner) csvPath(rankWeek, caption string) string {
	if r.cfg.Output.File != "" {
		return r.cfg.Output.File
	}
	name := fmt.Sprintf("dbv_rankings_%s_%s", rankWeek, urlutil.Slugify(caption))
	if r.cfg.Scrape.MaxRank > 0 {
		name += fmt.Sprintf("_first_%d", r.cfg.Scrape.MaxRank)
	}
	return filepath.Join(r.cfg.Output.Dir, rankWeek, name+".csv")
}

func (r *Runner) openSinks(csvPath string, headerSchema []string, caption, rankWeek string) (storage.Sink, *storage.CSVSink, error) {
	csvSink, err := storage.NewCSVSink(csvPath, headerSchema, r.cfg.Scrape.KeepRaw, r.logger)
	if err != nil {
		return nil, nil, &types.StorageError{Backend: "csv", Err: err}
	}

	if !r.cfg.Output.ToSQLite {
		return csvSink, csvSink, nil
	}

	dbSink, err := storage.NewSQLiteSink(r.cfg.Output.DBPath, caption, rankWeek, r.logger)
	if err != nil {
		csvSink.Close()
		return nil, nil, &types.StorageError{Backend: "sqlite", Err: err}
	}
	return storage.NewMultiSink(csvSink, dbSink), csvSink, nil
}
