package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/orbflow/indicator"
	"github.com/dnldd/orbflow/market"
	"github.com/dnldd/orbflow/metrics"
	"github.com/dnldd/orbflow/position"
	"github.com/dnldd/orbflow/sentiment"
	"github.com/dnldd/orbflow/shared"
	"github.com/rs/zerolog"
)

// SentimentReader defines the requirements for reading ticker sentiment.
type SentimentReader interface {
	// Snapshot fetches every sentiment source for the ticker.
	Snapshot(ctx context.Context, ticker string) sentiment.Snapshot
	// Flow fetches only the options flow bias for the ticker.
	Flow(ctx context.Context, ticker string) shared.Bias
}

var _ SentimentReader = (*sentiment.Aggregator)(nil)

// Engine drives the per-ticker position state machine. A ticker is flat, long or short as
// reported by the position store; longs and shorts only transition through flat.
type Engine struct {
	cfg         *EngineConfig
	logger      zerolog.Logger
	loc         *time.Location
	inflight    map[string]struct{}
	inflightMtx sync.Mutex
}

// NewEngine initializes a new position engine.
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating engine config: %w", err)
	}

	_, loc, err := shared.NewYorkTime()
	if err != nil {
		return nil, err
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Engine{
		cfg:      cfg,
		logger:   cfg.Logger.With().Str("component", "engine").Logger(),
		loc:      loc,
		inflight: make(map[string]struct{}),
	}, nil
}

// acquire marks the ticker as being evaluated, it returns false if an evaluation is already
// in flight.
func (e *Engine) acquire(ticker string) bool {
	e.inflightMtx.Lock()
	defer e.inflightMtx.Unlock()

	if _, ok := e.inflight[ticker]; ok {
		return false
	}

	e.inflight[ticker] = struct{}{}
	return true
}

// release clears the ticker's in flight mark.
func (e *Engine) release(ticker string) {
	e.inflightMtx.Lock()
	delete(e.inflight, ticker)
	e.inflightMtx.Unlock()
}

// Evaluate runs the state machine for the provided series. The current position is read
// before any condition is computed so evaluating an unchanged state neither writes to the
// store nor emits a signal. Only store failures are returned as errors.
func (e *Engine) Evaluate(ctx context.Context, series *market.Series) (*Decision, error) {
	if series == nil {
		return nil, fmt.Errorf("series cannot be nil")
	}

	now := e.cfg.Now().In(e.loc)
	decision := &Decision{
		Ticker: series.Ticker,
		Phase:  e.cfg.Strategy.PhaseAt(now),
	}

	if !e.acquire(series.Ticker) {
		decision.Kind = Skip
		decision.Reason = shared.SkipInFlight
		return decision, nil
	}
	defer e.release(series.Ticker)

	pos, err := e.cfg.Store.Get(ctx, series.Ticker)
	if err != nil {
		return nil, fmt.Errorf("fetching %s position: %w", series.Ticker, err)
	}

	decision.Indicators.Price = series.Price()

	if pos != nil {
		decision.Position = pos
		return e.evaluateExit(ctx, decision, pos, now)
	}

	return e.evaluateEntry(ctx, decision, series, now)
}

// skip marks the decision as a soft skip.
func skip(decision *Decision, reason shared.SkipReason, detail string) (*Decision, error) {
	decision.Kind = Skip
	decision.Reason = reason
	decision.Detail = detail
	return decision, nil
}

// evaluateExit decides whether the open position is closed. The end of session flatten
// always wins, followed by the profit target and then the stop loss; the thresholds only
// close the position when fresh options flow opposes the held side.
func (e *Engine) evaluateExit(ctx context.Context, decision *Decision, pos *shared.Position, now time.Time) (*Decision, error) {
	price := decision.Indicators.Price
	if decision.Phase == PastSessionEnd {
		return e.commitExit(ctx, decision, pos, []shared.Reason{shared.EODFlatten}, now)
	}

	pnl, err := position.PNLPercent(pos.Direction, pos.EntryPrice, price)
	if err != nil {
		e.logger.Error().Msgf("computing pnl for %s: %v\n%s", pos.Ticker, err, spew.Sdump(pos))
		decision.Kind = Hold
		decision.Detail = err.Error()
		return decision, nil
	}

	var threshold shared.Reason
	switch {
	case pnl >= e.cfg.Strategy.ProfitTargetPercent:
		threshold = shared.ProfitTarget
	case pnl <= -e.cfg.Strategy.StopLossPercent:
		threshold = shared.StopLoss
	default:
		decision.Kind = Hold
		decision.Detail = fmt.Sprintf("%s pnl %.2f%% within thresholds", pos.Direction, pnl)
		return decision, nil
	}

	flow := e.cfg.Sentiment.Flow(ctx, pos.Ticker)
	if !pos.Direction.Opposes(flow) {
		decision.Kind = Hold
		decision.Detail = fmt.Sprintf("%s pnl %.2f%% at %s, flow %s does not oppose",
			pos.Direction, pnl, threshold, flow)
		return decision, nil
	}

	return e.commitExit(ctx, decision, pos, []shared.Reason{threshold, shared.OpposingFlow}, now)
}

// commitExit removes the position from the store and emits the exit signal. A store failure
// aborts before anything is emitted; a delivery failure keeps the store change.
func (e *Engine) commitExit(ctx context.Context, decision *Decision, pos *shared.Position, reasons []shared.Reason, now time.Time) (*Decision, error) {
	price := decision.Indicators.Price
	signal := shared.NewSignal(pos.Ticker, shared.ExitAction(pos.Direction),
		shared.JoinReasons(reasons), price, now)

	err := e.cfg.Store.Delete(ctx, pos.Ticker)
	if err != nil {
		return nil, fmt.Errorf("removing %s position: %w", pos.Ticker, err)
	}

	trade, err := position.Close(pos, price, signal.Reason, now)
	if err != nil {
		e.logger.Error().Msgf("closing %s position: %v\n%s", pos.Ticker, err, spew.Sdump(pos))
	} else {
		signal.Extra = map[string]string{
			"entry_price": fmt.Sprintf("%.2f", pos.EntryPrice),
			"pnl_percent": fmt.Sprintf("%.2f", trade.PNLPercent),
		}

		if e.cfg.Journal != nil {
			err = e.cfg.Journal.RecordClosedTrade(ctx, trade)
			if err != nil {
				e.logger.Error().Msgf("recording closed %s trade: %v", pos.Ticker, err)
			}
		}
	}

	decision.Kind = Exit
	decision.Signal = signal
	decision.DeliveryErr = e.emit(ctx, signal)

	e.logger.Info().Msgf("closed %s %s position (%s) @ %.2f: %s", pos.Direction, pos.Ticker,
		pos.ID, price, signal.Reason)

	return decision, nil
}

// evaluateEntry decides whether a flat ticker enters a position.
func (e *Engine) evaluateEntry(ctx context.Context, decision *Decision, series *market.Series, now time.Time) (*Decision, error) {
	strategy := &e.cfg.Strategy
	switch {
	case decision.Phase == PreSession:
		return skip(decision, shared.SkipPreSession, "")
	case decision.Phase == PastSessionEnd || !strategy.EntryOpen(now):
		return skip(decision, shared.SkipEntryWindowClosed, "")
	}

	ind := &decision.Indicators
	if ind.Price < strategy.MinPrice {
		return skip(decision, shared.SkipBelowMinPrice,
			fmt.Sprintf("%.2f < %.2f", ind.Price, strategy.MinPrice))
	}

	ind.RVOL = indicator.RelativeVolume(series.Intraday, series.Daily, now)
	ind.RVOLFloor = indicator.RVOLFloor(now)
	if ind.RVOL < ind.RVOLFloor {
		return skip(decision, shared.SkipLowRelativeVolume,
			fmt.Sprintf("%.2f < %.2f", ind.RVOL, ind.RVOLFloor))
	}

	high, low, ok := indicator.OpeningRange(series.Today, strategy.SessionStart.On(now), strategy.ORBWindow())
	if !ok {
		return skip(decision, shared.SkipNoOpeningRange, "")
	}

	ind.ORBHigh = high
	ind.ORBLow = low
	ind.VWAP = indicator.VWAP(series.Today)
	ind.Trend = indicator.Trend(series.Daily)

	longReasons, longDetail := checkSetup(decision.Phase, shared.Long, ind)
	shortReasons, shortDetail := checkSetup(decision.Phase, shared.Short, ind)

	var direction shared.Direction
	var reasons []shared.Reason
	switch {
	case longReasons != nil:
		direction = shared.Long
		reasons = longReasons
	case shortReasons != nil:
		direction = shared.Short
		reasons = shortReasons
	default:
		e.recordInactive(ctx, series.Ticker, longDetail, shortDetail, ind, now)
		return skip(decision, shared.SkipNoSetup, "")
	}

	// Sentiment is only fetched once a technical setup is in place.
	snapshot := e.cfg.Sentiment.Snapshot(ctx, series.Ticker)
	decision.Sentiment = &snapshot

	if !snapshot.PassesIVRank(strategy.MinIVRank) {
		detail := fmt.Sprintf("iv rank %.2f < %.2f", snapshot.IVRank, strategy.MinIVRank)
		e.recordInactiveDirection(ctx, series.Ticker, direction, detail, longDetail, shortDetail, ind, now)

		decision.Kind = Reject
		decision.Reason = shared.RejectIVRank
		decision.Detail = detail
		return decision, nil
	}

	confirmed, confirmations := snapshot.Confirms(direction)
	if !confirmed {
		detail := fmt.Sprintf("sentiment does not confirm %s (flow %s, congress %s, dark pool %s)",
			direction, snapshot.Flow, snapshot.Congress, snapshot.DarkPool)
		e.recordInactiveDirection(ctx, series.Ticker, direction, detail, longDetail, shortDetail, ind, now)
		return skip(decision, shared.SkipNoSetup, detail)
	}

	reasons = append(reasons, confirmations...)
	reason := shared.JoinReasons(reasons, gateDetails(ind, &snapshot, strategy.MinIVRank)...)

	return e.commitEntry(ctx, decision, direction, reason, now)
}

// gateDetails renders the measured relative volume and iv rank against their gates.
func gateDetails(ind *Indicators, snapshot *sentiment.Snapshot, minIVRank float64) []string {
	return []string{
		fmt.Sprintf("RVOL %.1fx (floor %.1fx)", ind.RVOL, ind.RVOLFloor),
		fmt.Sprintf("IV rank %.0f (min %.0f)", snapshot.IVRank, minIVRank),
	}
}

// commitEntry stores the new position and emits the entry signal. A store failure aborts
// before anything is emitted; a delivery failure keeps the store change.
func (e *Engine) commitEntry(ctx context.Context, decision *Decision, direction shared.Direction, reason string, now time.Time) (*Decision, error) {
	ind := &decision.Indicators
	signal := shared.NewSignal(decision.Ticker, shared.EntryAction(direction), reason, ind.Price, now)
	signal.Extra = map[string]string{
		"phase":    decision.Phase.String(),
		"trend":    ind.Trend.String(),
		"vwap":     fmt.Sprintf("%.2f", ind.VWAP),
		"rvol":     fmt.Sprintf("%.2f", ind.RVOL),
		"orb_high": fmt.Sprintf("%.2f", ind.ORBHigh),
		"orb_low":  fmt.Sprintf("%.2f", ind.ORBLow),
	}
	if decision.Sentiment != nil {
		signal.Extra["iv_rank"] = fmt.Sprintf("%.2f", decision.Sentiment.IVRank)
	}

	pos, err := position.NewPosition(signal)
	if err != nil {
		return nil, fmt.Errorf("creating %s position: %w", decision.Ticker, err)
	}

	err = e.cfg.Store.Put(ctx, pos)
	if err != nil {
		return nil, fmt.Errorf("storing %s position: %w", decision.Ticker, err)
	}

	decision.Kind = Enter
	decision.Signal = signal
	decision.Position = pos
	decision.DeliveryErr = e.emit(ctx, signal)

	e.logger.Info().Msgf("opened %s %s position (%s) @ %.2f: %s", direction, pos.Ticker,
		pos.ID, pos.EntryPrice, pos.EntryReason)

	return decision, nil
}

// emit delivers the provided signal, returning the delivery error if any.
func (e *Engine) emit(ctx context.Context, signal *shared.Signal) error {
	err := e.cfg.Emitter.Emit(ctx, signal)
	if err != nil {
		metrics.DeliveryFailuresTotal.WithLabelValues(signal.Action.String()).Inc()
		e.logger.Error().Msgf("delivering %s signal for %s: %v", signal.Action, signal.Ticker, err)
		return fmt.Errorf("delivering %s signal for %s: %w", signal.Action, signal.Ticker, err)
	}

	metrics.SignalsTotal.WithLabelValues(signal.Action.String()).Inc()
	return nil
}

// recordInactiveDirection records an inactive ticker whose setup in the provided direction was
// turned down by sentiment.
func (e *Engine) recordInactiveDirection(ctx context.Context, ticker string, direction shared.Direction, detail string, longDetail string, shortDetail string, ind *Indicators, now time.Time) {
	switch direction {
	case shared.Long:
		longDetail = detail
	case shared.Short:
		shortDetail = detail
	}

	e.recordInactive(ctx, ticker, longDetail, shortDetail, ind, now)
}

// recordInactive journals why a flat ticker did not enter.
func (e *Engine) recordInactive(ctx context.Context, ticker string, longDetail string, shortDetail string, ind *Indicators, now time.Time) {
	if e.cfg.Journal == nil {
		return
	}

	inactive := &shared.InactiveTicker{
		Ticker:          ticker,
		LongReason:      longDetail,
		ShortReason:     shortDetail,
		IndicatorValues: ind.Values(),
		UpdatedOn:       now,
	}

	err := e.cfg.Journal.RecordInactiveTicker(ctx, inactive)
	if err != nil {
		e.logger.Error().Msgf("recording inactive ticker %s: %v", ticker, err)
	}
}
