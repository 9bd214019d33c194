package ingest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/0xdefence/basetrace/internal/chain/base/rpc"
	storemocks "github.com/0xdefence/basetrace/internal/store/mocks"
	"go.uber.org/mock/gomock"
)

// fakeDriver / fakeConn / fakeTxImpl provide a minimal sql.Driver
// so we can call BeginTx and get a real *sql.Tx for testing.
type fakeDriver struct{}
type fakeConn struct{}
type fakeTxImpl struct{}

func (d *fakeDriver) Open(name string) (driver.Conn, error) { return &fakeConn{}, nil }
func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("not implemented")
}
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return &fakeTxImpl{}, nil }
func (tx *fakeTxImpl) Commit() error          { return nil }
func (tx *fakeTxImpl) Rollback() error        { return nil }

func init() {
	sql.Register("fake_ingest", &fakeDriver{})
}

func openFakeDB() *sql.DB {
	db, _ := sql.Open("fake_ingest", "")
	return db
}

func setupBeginTx(mockDB *storemocks.MockTxBeginner) *gomock.Call {
	fakeDB := openFakeDB()
	return mockDB.EXPECT().BeginTx(gomock.Any(), gomock.Nil()).
		DoAndReturn(func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
			return fakeDB.BeginTx(ctx, opts)
		})
}

type testMocks struct {
	ctrl         *gomock.Controller
	db           *storemocks.MockTxBeginner
	cursors      *storemocks.MockCursorRepository
	deadLetters  *storemocks.MockDeadLetterRepository
	transactions *storemocks.MockTransactionRepository
	transfers    *storemocks.MockTokenTransferRepository
	addressStats *storemocks.MockAddressStatRepository
	edges        *storemocks.MockEdgeRepository
}

func newTestMocks(t *testing.T) *testMocks {
	ctrl := gomock.NewController(t)
	return &testMocks{
		ctrl:         ctrl,
		db:           storemocks.NewMockTxBeginner(ctrl),
		cursors:      storemocks.NewMockCursorRepository(ctrl),
		deadLetters:  storemocks.NewMockDeadLetterRepository(ctrl),
		transactions: storemocks.NewMockTransactionRepository(ctrl),
		transfers:    storemocks.NewMockTokenTransferRepository(ctrl),
		addressStats: storemocks.NewMockAddressStatRepository(ctrl),
		edges:        storemocks.NewMockEdgeRepository(ctrl),
	}
}

func (m *testMocks) stores() Stores {
	return Stores{
		DB:             m.db,
		Cursors:        m.cursors,
		DeadLetters:    m.deadLetters,
		Transactions:   m.transactions,
		TokenTransfers: m.transfers,
		AddressStats:   m.addressStats,
		Edges:          m.edges,
	}
}

// allowDiagnostics accepts any diagnostic key write.
func (m *testMocks) allowDiagnostics() {
	m.cursors.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWorker(client ChainClient, m *testMocks, cfg Config, opts ...Option) *Worker {
	opts = append([]Option{
		WithSleepFunc(func(ctx context.Context, d time.Duration) error { return ctx.Err() }),
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }),
	}, opts...)
	return New(client, m.stores(), cfg, discardLogger(), opts...)
}

// fakeChain serves blocks and logs from memory. Any eth_getLogs range that
// contains a block in badBlocks fails.
type fakeChain struct {
	mu        sync.Mutex
	head      int64
	headErr   error
	blocks    map[int64]*rpc.Block
	logs      map[int64][]*rpc.Log
	badBlocks map[int64]bool
	logCalls  [][2]int64
	onLogs    func(from, to int64)
}

func newFakeChain(head int64) *fakeChain {
	return &fakeChain{
		head:      head,
		blocks:    map[int64]*rpc.Block{},
		logs:      map[int64][]*rpc.Log{},
		badBlocks: map[int64]bool{},
	}
}

var testMeta = rpc.CallMeta{Endpoint: "http://primary.local", Attempt: 0}

func (f *fakeChain) BlockNumber(ctx context.Context) (int64, rpc.CallMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headErr != nil {
		return 0, rpc.CallMeta{}, f.headErr
	}
	return f.head, testMeta, nil
}

func (f *fakeChain) BlockByNumber(ctx context.Context, number int64, fullTx bool) (*rpc.Block, rpc.CallMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blocks[number]
	if !ok {
		return &rpc.Block{Number: rpc.FormatHexInt64(number), Timestamp: "0x65e1c2c0"}, testMeta, nil
	}
	return b, testMeta, nil
}

func (f *fakeChain) Logs(ctx context.Context, filter rpc.LogFilter) ([]*rpc.Log, rpc.CallMeta, error) {
	from, err := rpc.ParseHexInt64(filter.FromBlock)
	if err != nil {
		return nil, rpc.CallMeta{}, err
	}
	to, err := rpc.ParseHexInt64(filter.ToBlock)
	if err != nil {
		return nil, rpc.CallMeta{}, err
	}

	f.mu.Lock()
	f.logCalls = append(f.logCalls, [2]int64{from, to})
	hook := f.onLogs
	f.mu.Unlock()
	if hook != nil {
		hook(from, to)
	}
	if err := ctx.Err(); err != nil {
		return nil, rpc.CallMeta{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*rpc.Log
	for b := from; b <= to; b++ {
		if f.badBlocks[b] {
			return nil, rpc.CallMeta{}, &rpc.ExhaustedError{
				Method:    "eth_getLogs",
				Endpoints: 1,
				Attempts:  3,
				Last:      fmt.Errorf("response size exceeded at block %d", b),
			}
		}
		out = append(out, f.logs[b]...)
	}
	return out, testMeta, nil
}

func transferLog(block int64, tx string, from, to string, amount string) *rpc.Log {
	return &rpc.Log{
		Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		Topics: []string{
			TransferTopic,
			"0x000000000000000000000000" + from,
			"0x000000000000000000000000" + to,
		},
		Data:            amount,
		BlockNumber:     rpc.FormatHexInt64(block),
		TransactionHash: tx,
		LogIndex:        "0x0",
	}
}
