package fsm

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/crossbeam-network/crossbeam/lib/crypto"
)

/*
	pool.go implements the constant-product liquidity pools. A pool holds
	reserves of two assets and issues shares against deposits:

	  first deposit:  shares = floor(sqrt(amountA * amountB))
	  later deposits: shares = min(amountA*totalShares/reserveA,
	                               amountB*totalShares/reserveB)

	Swaps charge a 0.3% fee on the input side and preserve the product
	reserveA * reserveB: it never decreases across a successful swap.
*/

const (
	SwapFeeNumerator   = uint64(3)    // 0.3% taken from the input amount
	SwapFeeDenominator = uint64(1000) // fee basis
)

// Pool is the durable state of a single two-asset liquidity pool
type Pool struct {
	Id          uint64          `json:"id"`          // stable pool identifier
	AssetA      lib.HexBytes    `json:"assetA"`      // the first asset of the pair
	AssetB      lib.HexBytes    `json:"assetB"`      // the second asset of the pair
	ReserveA    uint64          `json:"reserveA"`    // custodied amount of asset A
	ReserveB    uint64          `json:"reserveB"`    // custodied amount of asset B
	TotalShares uint64          `json:"totalShares"` // sum of all issued shares
	Shares      []*ShareBalance `json:"shares"`      // per-provider share balances
}

// ShareBalance is a single provider's stake in a pool
type ShareBalance struct {
	Address lib.HexBytes `json:"address"` // the provider
	Amount  uint64       `json:"amount"`  // the shares held
}

// GetSharesFor() returns the shares held by a provider, zero if none
func (p *Pool) GetSharesFor(address lib.HexBytes) uint64 {
	for _, share := range p.Shares {
		if bytes.Equal(share.Address, address) {
			return share.Amount
		}
	}
	return 0
}

// AddShares() credits shares to a provider
func (p *Pool) AddShares(address lib.HexBytes, amount uint64) {
	for _, share := range p.Shares {
		if bytes.Equal(share.Address, address) {
			share.Amount += amount
			return
		}
	}
	p.Shares = append(p.Shares, &ShareBalance{Address: address, Amount: amount})
}

// RemoveShares() debits shares from a provider, dropping emptied balances
func (p *Pool) RemoveShares(address lib.HexBytes, amount uint64) lib.ErrorI {
	for i, share := range p.Shares {
		if bytes.Equal(share.Address, address) {
			if share.Amount < amount {
				return ErrInsufficientShares()
			}
			share.Amount -= amount
			if share.Amount == 0 {
				p.Shares = append(p.Shares[:i], p.Shares[i+1:]...)
			}
			return nil
		}
	}
	return ErrInsufficientShares()
}

// CreatePool() registers a new empty pool for an asset pair
func (s *StateMachine) CreatePool(id uint64, assetA, assetB lib.HexBytes) lib.ErrorI {
	if err := checkAsset(assetA); err != nil {
		return err
	}
	if err := checkAsset(assetB); err != nil {
		return err
	}
	if bytes.Equal(assetA, assetB) {
		return ErrInvalidAsset()
	}
	existing, err := s.Get(KeyForPool(id))
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrPoolExists(id)
	}
	return s.SetPool(&Pool{Id: id, AssetA: assetA, AssetB: assetB})
}

// HandleMessageAddLiquidity() deposits both pool assets and mints shares
func (s *StateMachine) HandleMessageAddLiquidity(msg *MessageAddLiquidity) lib.ErrorI {
	pool, err := s.GetPool(msg.PoolId)
	if err != nil {
		return err
	}
	// compute issuance before moving any funds
	var shares uint64
	if pool.TotalShares == 0 {
		shares, err = lib.SqrtProduct(msg.AmountA, msg.AmountB)
	} else {
		shares, err = proRataShares(pool, msg.AmountA, msg.AmountB)
	}
	if err != nil {
		return err
	}
	if shares == 0 {
		return ErrZeroLiquidityMinted()
	}
	// reject before moving funds if a reserve or the share supply would overflow
	newReserveA, err := lib.SafeAdd(pool.ReserveA, msg.AmountA)
	if err != nil {
		return err
	}
	newReserveB, err := lib.SafeAdd(pool.ReserveB, msg.AmountB)
	if err != nil {
		return err
	}
	newTotalShares, err := lib.SafeAdd(pool.TotalShares, shares)
	if err != nil {
		return err
	}
	// pull both deposits into custody; refund the first if the second fails
	provider := crypto.NewAddress(msg.Provider)
	if err = s.port.TransferIn(pool.AssetA, provider, msg.AmountA); err != nil {
		return err
	}
	if err = s.port.TransferIn(pool.AssetB, provider, msg.AmountB); err != nil {
		if refundErr := s.port.TransferOut(pool.AssetA, provider, msg.AmountA); refundErr != nil {
			return s.halt(fmt.Sprintf("refund of deposit A failed: %s", refundErr.Error()))
		}
		return err
	}
	// apply the deposit
	pool.ReserveA, pool.ReserveB, pool.TotalShares = newReserveA, newReserveB, newTotalShares
	pool.AddShares(msg.Provider, shares)
	if err = s.checkPoolInvariant(pool); err != nil {
		return err
	}
	if err = s.SetPool(pool); err != nil {
		return err
	}
	s.AddLiquidityAddedEvent(msg.Provider, pool.Id, msg.AmountA, msg.AmountB, shares)
	return nil
}

// HandleMessageRemoveLiquidity() burns shares and pays out pro-rata reserves
func (s *StateMachine) HandleMessageRemoveLiquidity(msg *MessageRemoveLiquidity) lib.ErrorI {
	pool, err := s.GetPool(msg.PoolId)
	if err != nil {
		return err
	}
	if pool.GetSharesFor(msg.Provider) < msg.Shares {
		return ErrInsufficientShares()
	}
	// truncating pro-rata entitlement
	amountA, err := lib.SafeMulDiv(msg.Shares, pool.ReserveA, pool.TotalShares)
	if err != nil {
		return err
	}
	amountB, err := lib.SafeMulDiv(msg.Shares, pool.ReserveB, pool.TotalShares)
	if err != nil {
		return err
	}
	// a withdrawal that rounds to zero on either side is rejected
	if amountA == 0 || amountB == 0 {
		return ErrInsufficientWithdrawAmount()
	}
	// pay out both sides; claw back the first if the second fails
	provider := crypto.NewAddress(msg.Provider)
	if err = s.port.TransferOut(pool.AssetA, provider, amountA); err != nil {
		return err
	}
	if err = s.port.TransferOut(pool.AssetB, provider, amountB); err != nil {
		if clawbackErr := s.port.TransferIn(pool.AssetA, provider, amountA); clawbackErr != nil {
			return s.halt(fmt.Sprintf("clawback of withdrawal A failed: %s", clawbackErr.Error()))
		}
		return err
	}
	// apply the withdrawal
	if err = pool.RemoveShares(msg.Provider, msg.Shares); err != nil {
		return err
	}
	pool.ReserveA -= amountA
	pool.ReserveB -= amountB
	pool.TotalShares -= msg.Shares
	if err = s.checkPoolInvariant(pool); err != nil {
		return err
	}
	if err = s.SetPool(pool); err != nil {
		return err
	}
	s.AddLiquidityRemovedEvent(msg.Provider, pool.Id, amountA, amountB, msg.Shares)
	return nil
}

// HandleMessageSwap() trades one pool asset for the other, charging the fee
// on the input side
func (s *StateMachine) HandleMessageSwap(msg *MessageSwap) lib.ErrorI {
	pool, err := s.GetPool(msg.PoolId)
	if err != nil {
		return err
	}
	assetIn, assetOut := pool.AssetA, pool.AssetB
	reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
	if msg.Direction == SwapDirectionBToA {
		assetIn, assetOut = pool.AssetB, pool.AssetA
		reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
	}
	amountOut, err := lib.SwapOutput(msg.AmountIn, reserveIn, reserveOut, SwapFeeNumerator, SwapFeeDenominator)
	if err != nil {
		return err
	}
	// a swap may never empty the output reserve or pay nothing
	if amountOut == 0 || amountOut >= reserveOut {
		return ErrInsufficientLiquidity()
	}
	// reject before moving funds if the input reserve would overflow
	newReserveIn, err := lib.SafeAdd(reserveIn, msg.AmountIn)
	if err != nil {
		return err
	}
	oldProduct := reserveProduct(pool.ReserveA, pool.ReserveB)
	// take the input, then pay the output; refund the input if the payout fails
	trader := crypto.NewAddress(msg.Trader)
	if err = s.port.TransferIn(assetIn, trader, msg.AmountIn); err != nil {
		return err
	}
	if err = s.port.TransferOut(assetOut, trader, amountOut); err != nil {
		if refundErr := s.port.TransferOut(assetIn, trader, msg.AmountIn); refundErr != nil {
			return s.halt(fmt.Sprintf("refund of swap input failed: %s", refundErr.Error()))
		}
		return err
	}
	// apply the trade
	if msg.Direction == SwapDirectionBToA {
		pool.ReserveB, pool.ReserveA = newReserveIn, reserveOut-amountOut
	} else {
		pool.ReserveA, pool.ReserveB = newReserveIn, reserveOut-amountOut
	}
	// the product must not decrease across the swap
	if reserveProduct(pool.ReserveA, pool.ReserveB).Cmp(oldProduct) < 0 {
		return s.halt(fmt.Sprintf("pool %d product decreased", pool.Id))
	}
	if err = s.checkPoolInvariant(pool); err != nil {
		return err
	}
	if err = s.SetPool(pool); err != nil {
		return err
	}
	s.AddSwapEvent(msg.Trader, pool.Id, msg.AmountIn, amountOut, msg.Direction)
	return nil
}

// GetPool() returns the pool for an id, erroring if unknown
func (s *StateMachine) GetPool(id uint64) (*Pool, lib.ErrorI) {
	bz, err := s.Get(KeyForPool(id))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, ErrUnknownPool(id)
	}
	pool := new(Pool)
	if err = s.unmarshal(bz, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// SetPool() persists the pool state
func (s *StateMachine) SetPool(pool *Pool) lib.ErrorI {
	bz, err := s.marshal(pool)
	if err != nil {
		return err
	}
	return s.Set(KeyForPool(pool.Id), bz)
}

// GetPools() lists every pool in id order
func (s *StateMachine) GetPools() (results []*Pool, err lib.ErrorI) {
	it, err := s.store.Iterator(PoolPrefix())
	if err != nil {
		return nil, err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		pool := new(Pool)
		if err = s.unmarshal(it.Value(), pool); err != nil {
			return nil, err
		}
		// the key is authoritative for the pool id
		if pool.Id, err = IdFromKey(it.Key()); err != nil {
			return nil, err
		}
		results = append(results, pool)
	}
	return results, nil
}

// checkPoolInvariant halts the machine if the share balances drifted from the
// issued supply after a mutation
func (s *StateMachine) checkPoolInvariant(pool *Pool) lib.ErrorI {
	var sum uint64
	for _, share := range pool.Shares {
		total, err := lib.SafeAdd(sum, share.Amount)
		if err != nil {
			return s.halt(fmt.Sprintf("pool %d share supply overflow", pool.Id))
		}
		sum = total
	}
	if sum != pool.TotalShares {
		return s.halt(fmt.Sprintf("pool %d shares %d != supply %d", pool.Id, sum, pool.TotalShares))
	}
	return nil
}

// proRataShares computes the issuance against existing reserves: the lesser of
// the two per-asset entitlements, so an imbalanced deposit donates the excess
func proRataShares(pool *Pool, amountA, amountB uint64) (uint64, lib.ErrorI) {
	sharesA, err := lib.SafeMulDiv(amountA, pool.TotalShares, pool.ReserveA)
	if err != nil {
		return 0, err
	}
	sharesB, err := lib.SafeMulDiv(amountB, pool.TotalShares, pool.ReserveB)
	if err != nil {
		return 0, err
	}
	return lib.MinUint64(sharesA, sharesB), nil
}

// reserveProduct computes reserveA * reserveB at full precision
func reserveProduct(a, b uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
}
