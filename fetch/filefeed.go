package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// FileBarFeedConfig represents the offline bar feed configuration.
type FileBarFeedConfig struct {
	// FilePath is the filepath to the recorded bar data. The file holds an object keyed by
	// timeframe ("1m", "1D"), each an object of symbol to bar arrays.
	FilePath string
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *FileBarFeedConfig) Validate() error {
	var errs error

	if cfg.FilePath == "" {
		errs = errors.Join(errs, fmt.Errorf("file path cannot be empty"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// FileBarFeed replays recorded bars from a json file.
type FileBarFeed struct {
	cfg  *FileBarFeedConfig
	bars map[shared.Timeframe]map[string][]shared.Bar
}

var _ shared.BarFetcher = (*FileBarFeed)(nil)

// loadBarData loads the bar data bytes from the provided file path.
func loadBarData(filepath string) (gjson.Result, error) {
	readb, err := os.ReadFile(filepath)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading bar data from file with path '%s': %w", filepath, err)
	}

	if !gjson.ValidBytes(readb) {
		return gjson.Result{}, fmt.Errorf("bar data file '%s' is not valid json", filepath)
	}

	return gjson.ParseBytes(readb), nil
}

// NewFileBarFeed initializes a new offline bar feed.
func NewFileBarFeed(cfg *FileBarFeedConfig) (*FileBarFeed, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating file bar feed config: %w", err)
	}

	data, err := loadBarData(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("loading bar data: %w", err)
	}

	_, loc, err := shared.NewYorkTime()
	if err != nil {
		return nil, err
	}

	feed := &FileBarFeed{
		cfg:  cfg,
		bars: make(map[shared.Timeframe]map[string][]shared.Bar),
	}

	var total int
	for _, timeframe := range []shared.Timeframe{shared.OneMinute, shared.OneDay} {
		set := make(map[string][]shared.Bar)
		var parseErr error
		data.Get(timeframe.String()).ForEach(func(key gjson.Result, value gjson.Result) bool {
			bars, err := ParseBars(value.Array(), loc)
			if err != nil {
				parseErr = fmt.Errorf("parsing %s bars for %s: %w", timeframe, key.String(), err)
				return false
			}

			set[key.String()] = bars
			total += len(bars)
			return true
		})
		if parseErr != nil {
			return nil, parseErr
		}

		feed.bars[timeframe] = set
	}

	cfg.Logger.Info().Msgf("loaded %d recorded bars from %s", total, cfg.FilePath)

	return feed, nil
}

// FetchBars returns the recorded bars for the provided symbols within [start, end]. Symbols
// without recorded bars are omitted.
func (f *FileBarFeed) FetchBars(ctx context.Context, symbols []string, timeframe shared.Timeframe, start time.Time, end time.Time) (map[string][]shared.Bar, error) {
	set, ok := f.bars[timeframe]
	if !ok {
		return nil, fmt.Errorf("unknown timeframe provided: %s", timeframe.String())
	}

	result := make(map[string][]shared.Bar, len(symbols))
	for _, sym := range symbols {
		bars := withinRange(set[sym], start, end)
		if len(bars) == 0 {
			continue
		}

		result[sym] = bars
	}

	return result, nil
}
