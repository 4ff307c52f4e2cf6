// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/chain"
	"github.com/meterio/meter-auction/co"
	"github.com/meterio/meter-auction/eventbus"
	"github.com/meterio/meter-auction/kv"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/tx"
	"github.com/meterio/meter-auction/xenv"
	"github.com/pkg/errors"
)

const outboxSize = 1024

var (
	ErrChainTagMismatch = errors.New("chain tag mismatch")
	ErrKnownTx          = errors.New("known transaction")
)

// Node sequences transactions one at a time; each accepted transaction is
// committed in its own block.
type Node struct {
	goes         co.Goes
	chain        *chain.Chain
	stateCreator *state.Creator
	engine       *script.ScriptEngine
	logDB        *logdb.LogDB
	publisher    eventbus.Publisher
	chainTag     byte
	callGasLimit uint64
	clock        func() uint64

	lock   sync.Mutex
	outbox chan []*eventbus.Message
	logger *slog.Logger
}

// Option configures a Node.
type Option func(*Node)

// WithPublisher exports committed events to p.
func WithPublisher(p eventbus.Publisher) Option {
	return func(n *Node) { n.publisher = p }
}

// WithClock sets the source of block timestamps, in unix ms.
func WithClock(clock func() uint64) Option {
	return func(n *Node) { n.clock = clock }
}

func New(
	chain *chain.Chain,
	stateCreator *state.Creator,
	engine *script.ScriptEngine,
	logDB *logdb.LogDB,
	chainTag byte,
	callGasLimit uint64,
	opts ...Option,
) *Node {
	n := &Node{
		chain:        chain,
		stateCreator: stateCreator,
		engine:       engine,
		logDB:        logDB,
		chainTag:     chainTag,
		callGasLimit: callGasLimit,
		clock:        func() uint64 { return uint64(time.Now().UnixMilli()) },
		outbox:       make(chan []*eventbus.Message, outboxSize),
		logger:       slog.Default().With("pkg", "node"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Node) Chain() *chain.Chain           { return n.chain }
func (n *Node) LogDB() *logdb.LogDB           { return n.logDB }
func (n *Node) Engine() *script.ScriptEngine  { return n.engine }
func (n *Node) StateCreator() *state.Creator  { return n.stateCreator }
func (n *Node) ChainTag() byte                { return n.chainTag }
func (n *Node) CallGasLimit() uint64          { return n.callGasLimit }
func (n *Node) Publisher() eventbus.Publisher { return n.publisher }
func (n *Node) BestBlock() *block.Header      { return n.chain.BestBlock() }
func (n *Node) GenesisBlock() *block.Header   { return n.chain.GenesisBlock() }

// Run exports events until ctx is done.
func (n *Node) Run(ctx context.Context) error {
	n.goes.Go(func() { n.publishLoop(ctx) })
	n.goes.Go(func() { n.houseKeeping(ctx) })
	n.goes.Wait()
	return nil
}

// nextBlockContext returns the context of the block after parent. Block time
// never goes backwards.
func (n *Node) nextBlockContext(parent *block.Header) *xenv.BlockContext {
	now := n.clock()
	if now <= parent.Timestamp() {
		now = parent.Timestamp() + 1
	}
	return &xenv.BlockContext{Number: parent.Number() + 1, Time: now}
}

// Submit executes trx and commits it in a new block. A transaction failing
// validation is rejected with an error; one whose call fails is committed
// with a reverted receipt.
func (n *Node) Submit(trx *tx.Transaction) (*tx.Receipt, error) {
	if trx.ChainTag() != n.chainTag {
		return nil, ErrChainTagMismatch
	}

	n.lock.Lock()
	defer n.lock.Unlock()

	start := time.Now()
	if _, err := n.chain.GetTransaction(trx.ID()); err == nil {
		return nil, ErrKnownTx
	} else if !n.chain.IsNotFound(err) {
		return nil, err
	}

	parent := n.chain.BestBlock()
	ctx := n.nextBlockContext(parent)
	st := n.stateCreator.NewState()
	receipt, err := runtime.New(n.engine, st, ctx).ExecuteTransaction(trx)
	if err != nil {
		txCounter.WithLabelValues("rejected").Inc()
		return nil, err
	}

	stage := st.Stage()
	stateChange, err := stage.Hash()
	if err != nil {
		return nil, err
	}
	header := block.NewHeader(parent.ID(), ctx.Time, trx.ID(), stateChange, receipt.GasUsed)
	receipt.BlockID = header.ID()
	receipt.BlockNumber = header.Number()
	receipt.BlockTime = header.Timestamp()

	commit := func(extra func(kv.Putter) error) error {
		return n.stateCreator.Commit(stage, extra)
	}
	if err := n.chain.AddBlock(header, trx, receipt, commit); err != nil {
		return nil, errors.WithMessage(err, "commit block")
	}
	if !receipt.Reverted {
		if err := n.logDB.Prepare(header).Insert(receipt.TxID, receipt.Origin, receipt.Events, receipt.Transfers).Commit(); err != nil {
			return nil, err
		}
		n.enqueue(header, receipt)
		n.countEvents(receipt)
		txCounter.WithLabelValues("ok").Inc()
	} else {
		txCounter.WithLabelValues("reverted").Inc()
	}
	blockDuration.Observe(time.Since(start).Seconds())

	n.logger.Info("block committed",
		"number", header.Number(),
		"id", header.ID(),
		"tx", trx.ID(),
		"entrypoint", trx.Entrypoint(),
		"reverted", receipt.Reverted,
		"gasUsed", receipt.GasUsed,
		"elapsed", meter.PrettyDuration(time.Since(start)))
	return receipt, nil
}

// Call runs a call against the best state without committing it. Zero gas
// means the call gas limit.
func (n *Node) Call(to meter.Address, entrypoint string, param []byte, origin meter.Address, gas uint64) *runtime.Output {
	if gas == 0 || gas > n.callGasLimit {
		gas = n.callGasLimit
	}
	ctx := n.nextBlockContext(n.chain.BestBlock())
	st := n.stateCreator.NewState()
	return runtime.New(n.engine, st, ctx).ExecuteCall(to, entrypoint, param, gas, &xenv.TransactionContext{Origin: origin})
}

// countEvents counts what a committed receipt did, such as accepted bids.
func (n *Node) countEvents(receipt *tx.Receipt) {
	for _, ev := range receipt.Events {
		contract := "unknown"
		if mod, ok := n.engine.Find(ev.Address); ok {
			contract = mod.Name()
		}
		eventCounter.WithLabelValues(contract, eventbus.EventName(ev)).Inc()
	}
}

func (n *Node) enqueue(header *block.Header, receipt *tx.Receipt) {
	if n.publisher == nil || len(receipt.Events) == 0 {
		return
	}
	meta := eventbus.Meta{
		TxID:        receipt.TxID,
		TxOrigin:    receipt.Origin,
		BlockID:     header.ID(),
		BlockNumber: header.Number(),
		BlockTime:   header.Timestamp(),
	}
	msgs := make([]*eventbus.Message, 0, len(receipt.Events))
	for _, ev := range receipt.Events {
		msgs = append(msgs, eventbus.NewMessage(ev, meta))
	}
	select {
	case n.outbox <- msgs:
	default:
		n.logger.Warn("event outbox full, dropped", "block", header.Number(), "events", len(msgs))
	}
}

func (n *Node) publishLoop(ctx context.Context) {
	if n.publisher == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case msgs := <-n.outbox:
			for _, msg := range msgs {
				pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				if err := n.publisher.Publish(pctx, msg); err != nil {
					n.logger.Warn("failed to publish event", "name", msg.Name, "block", msg.BlockNumber, "err", err)
				}
				cancel()
			}
		}
	}
}

func (n *Node) houseKeeping(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			best := n.chain.BestBlock()
			n.logger.Info("<Stats>", "best", best.Number(), "outbox", len(n.outbox))
		}
	}
}
