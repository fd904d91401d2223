package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/orbflow/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createOpenPositionTableSQL   = "CREATE TABLE IF NOT EXISTS open_position (ticker TEXT PRIMARY KEY, id TEXT NOT NULL, direction TEXT NOT NULL, entry_price REAL NOT NULL, entry_reason TEXT, entry_timestamp INTEGER NOT NULL)"
	createCompletedTradeTableSQL = "CREATE TABLE IF NOT EXISTS completed_trade (id TEXT PRIMARY KEY, ticker TEXT NOT NULL, direction TEXT NOT NULL, entry_price REAL, entry_reason TEXT, entry_timestamp INTEGER, exit_price REAL, exit_reason TEXT, exit_timestamp INTEGER, profit_or_loss REAL, pnl_percent REAL)"
	createInactiveTickerTableSQL = "CREATE TABLE IF NOT EXISTS inactive_ticker (ticker TEXT PRIMARY KEY, long_reason TEXT, short_reason TEXT, indicator_values TEXT, updated_on INTEGER)"
	findOpenPositionSQL          = "SELECT id, ticker, direction, entry_price, entry_reason, entry_timestamp FROM open_position WHERE ticker = ?"
	listOpenPositionsSQL         = "SELECT ticker FROM open_position ORDER BY ticker"
	// The upsert only touches an existing row holding the same position, a different position
	// for the ticker affects no rows.
	putOpenPositionSQL         = "INSERT INTO open_position(ticker, id, direction, entry_price, entry_reason, entry_timestamp) VALUES(?,?,?,?,?,?) ON CONFLICT(ticker) DO UPDATE SET entry_price = excluded.entry_price, entry_reason = excluded.entry_reason WHERE open_position.id = excluded.id"
	deleteOpenPositionSQL      = "DELETE FROM open_position WHERE ticker = ?"
	persistCompletedTradeSQL   = "INSERT INTO completed_trade(id, ticker, direction, entry_price, entry_reason, entry_timestamp, exit_price, exit_reason, exit_timestamp, profit_or_loss, pnl_percent) VALUES(?,?,?,?,?,?,?,?,?,?,?)"
	persistInactiveTickerSQL   = "INSERT INTO inactive_ticker(ticker, long_reason, short_reason, indicator_values, updated_on) VALUES(?,?,?,?,?) ON CONFLICT(ticker) DO UPDATE SET long_reason = excluded.long_reason, short_reason = excluded.short_reason, indicator_values = excluded.indicator_values, updated_on = excluded.updated_on"
	summarizeCompletedTradeSQL = "SELECT direction, COUNT(*) AS trades, SUM(CASE WHEN profit_or_loss > 0 THEN 1 ELSE 0 END) AS wins, SUM(CASE WHEN profit_or_loss < 0 THEN 1 ELSE 0 END) AS losses, SUM(profit_or_loss) AS profit FROM completed_trade WHERE exit_timestamp >= ? AND exit_timestamp < ? GROUP BY direction"
)

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Timeout is the database request timeout, optional.
	Timeout time.Duration
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *DatabaseConfig) Validate() error {
	var errs error

	if cfg.Endpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("database endpoint cannot be empty"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
	loc    *time.Location
}

// Ensure the database implements the position store and trade journal interfaces.
var _ shared.PositionStorer = (*Database)(nil)
var _ shared.TradeJournal = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating database config: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = time.Second * 5
	}

	httpc := &http.Client{Timeout: timeout}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	if cfg.User != "" {
		client.SetBasicAuth(cfg.User, cfg.Pass)
	}

	_, loc, err := shared.NewYorkTime()
	if err != nil {
		return nil, err
	}

	db := &Database{
		cfg:    cfg,
		client: client,
		loc:    loc,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	_, err := db.execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createOpenPositionTableSQL},
		{SQL: createCompletedTradeTableSQL},
		{SQL: createInactiveTickerTableSQL},
	})

	return err
}

// execute runs the provided statements in a transaction, surfacing statement errors.
func (db *Database) execute(ctx context.Context, stmts rqlitehttp.SQLStatements) (*rqlitehttp.ExecuteResponse, error) {
	resp, err := db.client.Execute(ctx, stmts, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return nil, err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return nil, fmt.Errorf("executing statement %d: %s", idx, errStr)
	}

	return resp, nil
}

// query runs the provided statement and returns its rows keyed by column.
func (db *Database) query(ctx context.Context, sql string, params ...any) ([]map[string]any, error) {
	resp, err := db.client.Query(ctx, rqlitehttp.SQLStatements{
		{SQL: sql, PositionalParams: params},
	}, &rqlitehttp.QueryOptions{Associative: true})
	if err != nil {
		return nil, err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return nil, fmt.Errorf("querying statement %d: %s", idx, errStr)
	}

	results := resp.GetQueryResultsAssoc()
	if len(results) == 0 {
		return nil, nil
	}

	return results[0].Rows, nil
}

// Get returns the open position for the ticker, nil if there is none.
func (db *Database) Get(ctx context.Context, ticker string) (*shared.Position, error) {
	rows, err := db.query(ctx, findOpenPositionSQL, ticker)
	if err != nil {
		return nil, fmt.Errorf("finding %s position: %w", ticker, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	pos, err := db.positionFromRow(rows[0])
	if err != nil {
		db.cfg.Logger.Error().Msgf("unexpected open position row: %s", spew.Sdump(rows[0]))
		return nil, fmt.Errorf("decoding %s position: %w", ticker, err)
	}

	return pos, nil
}

// Put stores the provided position. A ticker can only have one open position, a different
// position for an already tracked ticker is rejected.
func (db *Database) Put(ctx context.Context, pos *shared.Position) error {
	if pos == nil {
		return fmt.Errorf("position cannot be nil")
	}

	resp, err := db.execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL: putOpenPositionSQL,
			PositionalParams: []any{pos.Ticker, pos.ID, pos.Direction.String(), pos.EntryPrice,
				pos.EntryReason, pos.EntryTimestamp.Unix()},
		},
	})
	if err != nil {
		return fmt.Errorf("storing %s position: %w", pos.Ticker, err)
	}

	if len(resp.Results) == 0 || resp.Results[0].RowsAffected == 0 {
		return fmt.Errorf("%s already has an open position", pos.Ticker)
	}

	return nil
}

// Delete removes the open position for the ticker.
func (db *Database) Delete(ctx context.Context, ticker string) error {
	_, err := db.execute(ctx, rqlitehttp.SQLStatements{
		{SQL: deleteOpenPositionSQL, PositionalParams: []any{ticker}},
	})
	if err != nil {
		return fmt.Errorf("removing %s position: %w", ticker, err)
	}

	return nil
}

// ListOpen returns the tickers with open positions.
func (db *Database) ListOpen(ctx context.Context) ([]string, error) {
	rows, err := db.query(ctx, listOpenPositionsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing open positions: %w", err)
	}

	tickers := make([]string, 0, len(rows))
	for _, row := range rows {
		ticker, ok := row["ticker"].(string)
		if !ok {
			db.cfg.Logger.Error().Msgf("unexpected open position row: %s", spew.Sdump(row))
			continue
		}

		tickers = append(tickers, ticker)
	}

	return tickers, nil
}

// RecordClosedTrade stores the provided closed trade.
func (db *Database) RecordClosedTrade(ctx context.Context, trade *shared.ClosedTrade) error {
	if trade == nil {
		return fmt.Errorf("closed trade cannot be nil")
	}

	_, err := db.execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL: persistCompletedTradeSQL,
			PositionalParams: []any{trade.ID, trade.Ticker, trade.Direction.String(), trade.EntryPrice,
				trade.EntryReason, trade.EntryTimestamp.Unix(), trade.ExitPrice, trade.ExitReason,
				trade.ExitTimestamp.Unix(), trade.ProfitOrLoss, trade.PNLPercent},
		},
	})
	if err != nil {
		return fmt.Errorf("recording closed %s trade: %w", trade.Ticker, err)
	}

	return nil
}

// RecordInactiveTicker stores why a ticker did not enter, replacing the previous record.
func (db *Database) RecordInactiveTicker(ctx context.Context, inactive *shared.InactiveTicker) error {
	if inactive == nil {
		return fmt.Errorf("inactive ticker cannot be nil")
	}

	values, err := json.Marshal(inactive.IndicatorValues)
	if err != nil {
		return fmt.Errorf("encoding %s indicator values: %w", inactive.Ticker, err)
	}

	_, err = db.execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL: persistInactiveTickerSQL,
			PositionalParams: []any{inactive.Ticker, inactive.LongReason, inactive.ShortReason,
				string(values), inactive.UpdatedOn.Unix()},
		},
	})
	if err != nil {
		return fmt.Errorf("recording inactive ticker %s: %w", inactive.Ticker, err)
	}

	return nil
}

// TradeSummary represents the completed trade totals of a day.
type TradeSummary struct {
	Day         time.Time
	Trades      int
	Wins        int
	Losses      int
	LongProfit  float64
	ShortProfit float64
}

// TotalProfit returns the combined long and short profit or loss.
func (s *TradeSummary) TotalProfit() float64 {
	return s.LongProfit + s.ShortProfit
}

// SummarizeDay returns the completed trade totals for the calendar day of the provided time.
func (db *Database) SummarizeDay(ctx context.Context, day time.Time) (*TradeSummary, error) {
	day = day.In(db.loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, db.loc)
	end := start.AddDate(0, 0, 1)

	rows, err := db.query(ctx, summarizeCompletedTradeSQL, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("summarizing trades for %s: %w", start.Format(time.DateOnly), err)
	}

	summary := &TradeSummary{Day: start}
	for _, row := range rows {
		trades, _ := toFloat(row["trades"])
		wins, _ := toFloat(row["wins"])
		losses, _ := toFloat(row["losses"])
		profit, _ := toFloat(row["profit"])

		summary.Trades += int(trades)
		summary.Wins += int(wins)
		summary.Losses += int(losses)

		direction, _ := row["direction"].(string)
		switch direction {
		case shared.Long.String():
			summary.LongProfit += profit
		case shared.Short.String():
			summary.ShortProfit += profit
		default:
			db.cfg.Logger.Error().Msgf("unexpected trade summary row: %s", spew.Sdump(row))
		}
	}

	return summary, nil
}

// toFloat converts a decoded column value to a float.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected numeric column type %T", v)
	}
}

// positionFromRow decodes an open position row.
func (db *Database) positionFromRow(row map[string]any) (*shared.Position, error) {
	id, _ := row["id"].(string)
	ticker, _ := row["ticker"].(string)
	reason, _ := row["entry_reason"].(string)
	if id == "" || ticker == "" {
		return nil, fmt.Errorf("missing position id or ticker")
	}

	dir, _ := row["direction"].(string)
	direction, ok := shared.ParseDirection(dir)
	if !ok {
		return nil, fmt.Errorf("unknown position direction %q", dir)
	}

	price, err := toFloat(row["entry_price"])
	if err != nil {
		return nil, fmt.Errorf("decoding entry price: %w", err)
	}

	ts, err := toFloat(row["entry_timestamp"])
	if err != nil {
		return nil, fmt.Errorf("decoding entry timestamp: %w", err)
	}

	pos := &shared.Position{
		ID:             id,
		Ticker:         ticker,
		Direction:      direction,
		EntryPrice:     price,
		EntryReason:    reason,
		EntryTimestamp: time.Unix(int64(ts), 0).In(db.loc),
	}

	return pos, nil
}
