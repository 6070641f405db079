package fsm

import (
	"bytes"

	"github.com/crossbeam-network/crossbeam/lib"
	"github.com/crossbeam-network/crossbeam/lib/crypto"
)

/*
	bridge.go implements the bridge ledger: custody of locked funds per asset
	and the insert-only set of processed release proofs.

	Lock: funds move into custody before the ledger records them, so a failed
	transfer leaves no trace. Release: funds move out before the proof is
	marked and the balance decremented; both writes stage in the same store
	transaction and become durable together.
*/

// LockedBalance is the custodied total for a single asset
type LockedBalance struct {
	Asset  lib.HexBytes `json:"asset"`  // the asset identifier
	Amount uint64       `json:"amount"` // the total amount in custody
}

// ReleaseReceipt is the durable record of a processed release proof
type ReleaseReceipt struct {
	ProofId   lib.HexBytes `json:"proofId"`   // the source chain transaction hash
	Asset     lib.HexBytes `json:"asset"`     // the released asset
	Recipient lib.HexBytes `json:"recipient"` // who the funds were paid to
	Amount    uint64       `json:"amount"`    // how much was paid out
}

// HandleMessageLock() moves funds from the sender into custody and credits
// the asset's locked balance
func (s *StateMachine) HandleMessageLock(msg *MessageLock) lib.ErrorI {
	// read the current custody balance for the asset
	balance, err := s.GetLockedBalance(msg.Asset)
	if err != nil {
		return err
	}
	// reject before moving funds if the credit would overflow
	newAmount, err := lib.SafeAdd(balance.Amount, msg.Amount)
	if err != nil {
		return err
	}
	// pull the funds into custody
	if err = s.port.TransferIn(msg.Asset, crypto.NewAddress(msg.Sender), msg.Amount); err != nil {
		return err
	}
	// credit the ledger
	balance.Amount = newAmount
	if err = s.SetLockedBalance(balance); err != nil {
		return err
	}
	s.AddLockedEvent(msg)
	s.log.Debugf("locked %d of asset %s for chain %d", msg.Amount,
		lib.BytesToTruncatedString(msg.Asset), msg.TargetChainId)
	return nil
}

// HandleMessageRelease() pays out custodied funds against an unseen proof,
// then marks the proof processed and debits the asset's locked balance
func (s *StateMachine) HandleMessageRelease(msg *MessageRelease) lib.ErrorI {
	// only the owner may release
	if !bytes.Equal(msg.Authority, s.owner.Bytes()) {
		return ErrUnauthorized()
	}
	// a proof is consumed exactly once
	processed, err := s.ProofProcessed(msg.ProofId)
	if err != nil {
		return err
	}
	if processed {
		return ErrProofAlreadyProcessed()
	}
	// the ledger must cover the payout
	balance, err := s.GetLockedBalance(msg.Asset)
	if err != nil {
		return err
	}
	if balance.Amount < msg.Amount {
		return ErrInsufficientLockedBalance()
	}
	// pay out first; a failed transfer leaves the proof unconsumed
	if err = s.port.TransferOut(msg.Asset, crypto.NewAddress(msg.Recipient), msg.Amount); err != nil {
		return err
	}
	// mark the proof and debit the ledger in the same staged transaction
	if err = s.SetProofProcessed(&ReleaseReceipt{
		ProofId:   msg.ProofId,
		Asset:     msg.Asset,
		Recipient: msg.Recipient,
		Amount:    msg.Amount,
	}); err != nil {
		return err
	}
	balance.Amount -= msg.Amount
	if err = s.SetLockedBalance(balance); err != nil {
		return err
	}
	s.AddReleasedEvent(msg)
	s.log.Debugf("released %d of asset %s against proof %s", msg.Amount,
		lib.BytesToTruncatedString(msg.Asset), lib.BytesToTruncatedString(msg.ProofId))
	return nil
}

// GetLockedBalance() returns the custody balance for an asset, zero if unseen
func (s *StateMachine) GetLockedBalance(asset lib.HexBytes) (*LockedBalance, lib.ErrorI) {
	balance := &LockedBalance{Asset: asset}
	bz, err := s.Get(KeyForLockedBalance(asset))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return balance, nil
	}
	if err = s.unmarshal(bz, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// SetLockedBalance() persists the custody balance for an asset
func (s *StateMachine) SetLockedBalance(balance *LockedBalance) lib.ErrorI {
	bz, err := s.marshal(balance)
	if err != nil {
		return err
	}
	return s.Set(KeyForLockedBalance(balance.Asset), bz)
}

// ProofProcessed() returns true if a release proof was already consumed
func (s *StateMachine) ProofProcessed(proofId lib.HexBytes) (bool, lib.ErrorI) {
	bz, err := s.Get(KeyForProof(proofId))
	if err != nil {
		return false, err
	}
	return bz != nil, nil
}

// SetProofProcessed() records a consumed release proof; proofs are never removed
func (s *StateMachine) SetProofProcessed(receipt *ReleaseReceipt) lib.ErrorI {
	bz, err := s.marshal(receipt)
	if err != nil {
		return err
	}
	return s.Set(KeyForProof(receipt.ProofId), bz)
}

// GetReleaseReceipt() returns the receipt stored for a processed proof
func (s *StateMachine) GetReleaseReceipt(proofId lib.HexBytes) (*ReleaseReceipt, lib.ErrorI) {
	bz, err := s.Get(KeyForProof(proofId))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}
	receipt := new(ReleaseReceipt)
	if err = s.unmarshal(bz, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// GetLockedBalances() lists every asset custody balance in key order
func (s *StateMachine) GetLockedBalances() (results []*LockedBalance, err lib.ErrorI) {
	it, err := s.store.Iterator(LockedBalancePrefix())
	if err != nil {
		return nil, err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		balance := new(LockedBalance)
		if err = s.unmarshal(it.Value(), balance); err != nil {
			return nil, err
		}
		// the key is authoritative for the asset identifier
		if balance.Asset, err = AssetFromKey(it.Key()); err != nil {
			return nil, err
		}
		results = append(results, balance)
	}
	return results, nil
}
