package reader

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stakeMetrics/internal/model"
)

// Caller performs a read-only contract call. chain.Client implements it.
type Caller interface {
	Call(ctx context.Context, to common.Address, data []byte, block *big.Int) ([]byte, error)
}

// Reader fetches raw staking snapshots from the Reader contract.
type Reader struct {
	caller    Caller
	contracts Contracts
	abi       abi.ABI
	logger    *zap.Logger
}

func NewReader(caller Caller, contracts Contracts, logger *zap.Logger) (*Reader, error) {
	if caller == nil {
		return nil, fmt.Errorf("caller is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := ReaderABI()
	if err != nil {
		return nil, fmt.Errorf("parse reader abi: %w", err)
	}
	return &Reader{
		caller:    caller,
		contracts: contracts,
		abi:       parsed,
		logger:    logger,
	}, nil
}

// Fetch reads the five snapshot inputs for account at block concurrently. A
// block of zero reads the latest state. Calls that fail leave their slot nil;
// the returned error is set only when ctx ends before the reads finish.
func (r *Reader) Fetch(ctx context.Context, account common.Address, block uint64) (model.SnapshotSet, error) {
	set := model.SnapshotSet{BlockNumber: block}
	var blockPtr *big.Int
	if block > 0 {
		blockPtr = new(big.Int).SetUint64(block)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := r.callSlice(gctx, methodBalances, blockPtr, account, r.contracts.BalanceTokens)
		set.Balances = out
		return r.tolerate(gctx, methodBalances, err)
	})
	g.Go(func() error {
		out, err := r.callSlice(gctx, methodStaking, blockPtr, account, r.contracts.YieldTrackers)
		set.Staking = out
		return r.tolerate(gctx, methodStaking, err)
	})
	g.Go(func() error {
		out, err := r.callSlice(gctx, methodTotalStaked, blockPtr, r.contracts.YieldTokens)
		set.TotalStaked = out
		return r.tolerate(gctx, methodTotalStaked, err)
	})
	g.Go(func() error {
		out, err := r.callSlice(gctx, methodPairs, blockPtr, r.contracts.Factory, r.contracts.PairTokens)
		set.Pairs = out
		return r.tolerate(gctx, methodPairs, err)
	})
	g.Go(func() error {
		out, err := r.callScalar(gctx, methodSupply, blockPtr, r.contracts.Xgmt, r.contracts.ExcludedAccounts)
		set.ExternalSupply = out
		return r.tolerate(gctx, methodSupply, err)
	})

	if err := g.Wait(); err != nil {
		return model.SnapshotSet{}, err
	}
	return set, nil
}

// tolerate logs a failed call and swallows it unless the context is done.
func (r *Reader) tolerate(ctx context.Context, method string, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	r.logger.Warn("reader call failed", zap.String("method", method), zap.Error(err))
	return nil
}

func (r *Reader) call(ctx context.Context, method string, block *big.Int, args ...interface{}) ([]interface{}, error) {
	data, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := r.caller.Call(ctx, r.contracts.Reader, data, block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := r.abi.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return values, nil
}

func (r *Reader) callSlice(ctx context.Context, method string, block *big.Int, args ...interface{}) (model.RawSnapshot, error) {
	values, err := r.call(ctx, method, block, args...)
	if err != nil {
		return nil, err
	}
	out, ok := values[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected output type %T", method, values[0])
	}
	return model.RawSnapshot(out), nil
}

func (r *Reader) callScalar(ctx context.Context, method string, block *big.Int, args ...interface{}) (*big.Int, error) {
	values, err := r.call(ctx, method, block, args...)
	if err != nil {
		return nil, err
	}
	out, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected output type %T", method, values[0])
	}
	return out, nil
}
