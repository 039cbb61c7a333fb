package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketSeries/internal/collector"
	"MarketSeries/internal/logging"
	"MarketSeries/internal/model"
	"MarketSeries/internal/recorder"
	"MarketSeries/internal/registry"
	"MarketSeries/internal/table"
)

var (
	start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
)

func day(d int) time.Time { return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC) }

func flat(d int, close float64) model.RawBar {
	return model.RawBar{Date: day(d), Open: close, High: close, Low: close, Close: close, AdjClose: close, Volume: 100}
}

type fixture struct {
	dir    string
	mock   *collector.MockFetcher
	specs  []model.TickerSpec
	opts   Options
	rec    recorder.Recorder
	notify Notifier
}

func newFixture(t *testing.T, symbols ...string) *fixture {
	t.Helper()
	f := &fixture{
		dir:  t.TempDir(),
		mock: &collector.MockFetcher{Bars: map[string][]model.RawBar{}, Errors: map[string]error{}},
	}
	for _, s := range symbols {
		f.specs = append(f.specs, model.TickerSpec{Symbol: s, DisplayName: s})
	}
	f.opts = Options{
		OnError:    OnErrorAbort,
		OutputPath: filepath.Join(f.dir, "out", "daily_data.csv"),
		Join:       table.JoinOptions{Collision: table.CollisionReject},
		NullPolicy: table.NullZero,
		Precision:  -1,
	}
	return f
}

func (f *fixture) earnings(t *testing.T, body string) {
	t.Helper()
	f.opts.EarningsPath = filepath.Join(f.dir, "earnings.csv")
	require.NoError(t, os.WriteFile(f.opts.EarningsPath, []byte(body), 0o644))
}

func (f *fixture) run(t *testing.T) (*RunResult, error) {
	t.Helper()
	reg, err := registry.New(f.specs)
	require.NoError(t, err)
	logger := logging.Discard()
	col := collector.NewCollector(f.mock, start, end, logger)
	p := New(reg, col, f.opts, logger)
	if f.rec != nil {
		p.Recorder = f.rec
	}
	p.Notifier = f.notify
	return p.Run(context.Background())
}

func TestRun_SingleTickerReturn(t *testing.T) {
	f := newFixture(t, "NVDA")
	f.mock.Bars["NVDA"] = []model.RawBar{flat(3, 100), flat(4, 110)}

	res, err := f.run(t)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, 7, res.Columns)
	assert.NotEmpty(t, res.RunID)

	ret, ok := res.Table.Column("NVDA_RET")
	require.True(t, ok)
	assert.InDelta(t, 0.10, ret[0], 1e-12)
	assert.Equal(t, day(4), res.Table.Dates[0])
	require.NotNil(t, res.Tickers[0].Summary)
	assert.Equal(t, 110.0, res.Tickers[0].Summary.LastClose)

	_, err = os.Stat(f.opts.OutputPath)
	assert.NoError(t, err)
}

func TestRun_OuterUnionWithEarnings(t *testing.T) {
	f := newFixture(t, "AAA", "BBB")
	f.mock.Bars["AAA"] = []model.RawBar{flat(3, 10), flat(4, 11), flat(5, 12)}
	f.mock.Bars["BBB"] = []model.RawBar{flat(4, 20), flat(5, 21), flat(6, 22)}
	f.earnings(t, "DATE,EPS\n2023-01-05,1.5\n2023-01-20,2\n")

	res, err := f.run(t)
	require.NoError(t, err)

	// union {3,4,5,6} minus the first row
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 7*2+1, res.Columns)
	assert.Equal(t, "EPS", res.Table.Columns[len(res.Table.Columns)-1])
	assert.Equal(t, "AAA_OPEN", res.Table.Columns[0])
	assert.Equal(t, "BBB_OPEN", res.Table.Columns[7])
	assert.Zero(t, res.Table.NullCount())

	eps, _ := res.Table.Column("EPS")
	assert.Equal(t, []float64{0, 1.5, 0}, eps)

	aaaClose, _ := res.Table.Column("AAA_CLOSE")
	assert.Equal(t, []float64{11, 12, 0}, aaaClose, "AAA has no bar on the 6th")
}

func TestRun_IsByteIdentical(t *testing.T) {
	f := newFixture(t, "AAA", "BBB")
	f.mock.Bars["AAA"] = []model.RawBar{flat(3, 10), flat(4, 10.3), flat(5, 9.7)}
	f.mock.Bars["BBB"] = []model.RawBar{flat(3, 1), flat(5, 1.1)}
	f.opts.Precision = 6

	_, err := f.run(t)
	require.NoError(t, err)
	first, err := os.ReadFile(f.opts.OutputPath)
	require.NoError(t, err)

	_, err = f.run(t)
	require.NoError(t, err)
	second, err := os.ReadFile(f.opts.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_ZeroCloseIsZeroFilled(t *testing.T) {
	f := newFixture(t, "AAA")
	f.mock.Bars["AAA"] = []model.RawBar{
		flat(3, 10),
		{Date: day(4), Open: 10, High: 10, Low: 10, Close: 0, AdjClose: 10, Volume: 100},
		flat(5, 10),
	}

	res, err := f.run(t)
	require.NoError(t, err)
	open, _ := res.Table.Column("AAA_OPEN")
	assert.Equal(t, 0.0, open[0])
	assert.Zero(t, res.Table.NullCount())
}

func TestRun_AbortLeavesPreviousOutput(t *testing.T) {
	f := newFixture(t, "AAA", "BBB")
	f.mock.Bars["AAA"] = []model.RawBar{flat(3, 10), flat(4, 11)}
	f.mock.Errors["BBB"] = errors.New("connection reset")

	require.NoError(t, os.MkdirAll(filepath.Dir(f.opts.OutputPath), 0o755))
	require.NoError(t, os.WriteFile(f.opts.OutputPath, []byte("previous"), 0o644))

	res, err := f.run(t)
	require.Error(t, err)
	assert.Equal(t, StageFetch, StageOf(err))

	var fe *collector.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "BBB", fe.Symbol)
	assert.Nil(t, res.Table)
	assert.Equal(t, 1, res.Failed())

	got, err := os.ReadFile(f.opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))
}

func TestRun_SkipPolicyDropsFailedTicker(t *testing.T) {
	f := newFixture(t, "AAA", "BBB")
	f.opts.OnError = OnErrorSkip
	f.mock.Bars["AAA"] = []model.RawBar{flat(3, 10), flat(4, 11)}
	f.mock.Errors["BBB"] = errors.New("connection reset")

	res, err := f.run(t)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Columns)
	assert.False(t, res.Table.HasColumn("BBB_OPEN"))
	assert.Equal(t, 1, res.Failed())
}

func TestRun_AllTickersFailed(t *testing.T) {
	f := newFixture(t, "AAA")
	f.opts.OnError = OnErrorSkip

	_, err := f.run(t)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllTickersFailed))
	assert.True(t, errors.Is(err, collector.ErrNoData))
	_, statErr := os.Stat(f.opts.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_MissingEarningsIsFatal(t *testing.T) {
	f := newFixture(t, "AAA")
	f.mock.Bars["AAA"] = []model.RawBar{flat(3, 10), flat(4, 11)}
	f.opts.EarningsPath = filepath.Join(f.dir, "absent.csv")

	_, err := f.run(t)
	require.Error(t, err)
	assert.Equal(t, StageEarnings, StageOf(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRun_EarningsCollision(t *testing.T) {
	f := newFixture(t, "AAA")
	f.mock.Bars["AAA"] = []model.RawBar{flat(3, 10), flat(4, 11)}
	f.earnings(t, "DATE,AAA_OPEN\n2023-01-04,7\n")

	_, err := f.run(t)
	require.Error(t, err)
	assert.True(t, errors.Is(err, table.ErrColumnCollision))

	f.opts.Join = table.JoinOptions{Collision: table.CollisionSuffix, Suffix: "_EARN"}
	res, err := f.run(t)
	require.NoError(t, err)
	col, ok := res.Table.Column("AAA_OPEN_EARN")
	require.True(t, ok)
	assert.Equal(t, []float64{7}, col)
}

type captureNotifier struct {
	res *RunResult
	err error
}

func (c *captureNotifier) NotifyRun(_ context.Context, res *RunResult, err error) error {
	c.res, c.err = res, err
	return errors.New("telegram down")
}

func TestRun_RecordsAndNotifies(t *testing.T) {
	f := newFixture(t, "AAA", "BBB")
	f.opts.OnError = OnErrorSkip
	f.mock.Bars["AAA"] = []model.RawBar{flat(3, 10), flat(4, 11)}
	f.mock.Errors["BBB"] = collector.ErrNoData

	sr, err := recorder.NewSQLiteRecorder(filepath.Join(f.dir, "runs.db"))
	require.NoError(t, err)
	defer sr.Close()
	f.rec = sr
	cn := &captureNotifier{}
	f.notify = cn

	res, err := f.run(t)
	require.NoError(t, err, "notifier failures are not fatal")
	assert.Same(t, res, cn.res)
	assert.NoError(t, cn.err)

	runs, err := sr.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].RunID)
	assert.Equal(t, recorder.StatusOK, runs[0].Status)
	assert.Equal(t, 1, runs[0].Failed)

	fetches, err := sr.TickerFetches(res.RunID)
	require.NoError(t, err)
	require.Len(t, fetches, 2)
	assert.Equal(t, "2023-01-03", fetches[0].FirstDate)
	assert.NotEmpty(t, fetches[1].Error)
}

func TestParseOnError(t *testing.T) {
	p, err := ParseOnError("")
	require.NoError(t, err)
	assert.Equal(t, OnErrorAbort, p)

	p, err = ParseOnError("SKIP")
	require.NoError(t, err)
	assert.Equal(t, OnErrorSkip, p)

	_, err = ParseOnError("retry")
	assert.Error(t, err)
}
