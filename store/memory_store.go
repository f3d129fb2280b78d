package store

import (
	"context"
	"sort"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
)

// memoryStore is the in-memory Store variant named in spec.md §6.1's
// repository.memory_db, used for testing: no durability, same contract.
type memoryStore struct {
	mu       sync.Mutex
	heights  map[string]uint64
	deposits map[string]*DepositRecord // keyed by chain+"|"+txHash
}

// NewMemoryStore returns an in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{
		heights:  make(map[string]uint64),
		deposits: make(map[string]*DepositRecord),
	}
}

func depositKey(chain, txHash string) string { return chain + "|" + txHash }

func (s *memoryStore) GetLastProcessed(ctx context.Context, chainSymbol string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heights[chainSymbol], nil
}

func (s *memoryStore) SetLastProcessed(ctx context.Context, chainSymbol string, height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heights[chainSymbol] = height
	return nil
}

func (s *memoryStore) InitLastProcessed(ctx context.Context, chainSymbol string, start uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.heights[chainSymbol]; ok {
		return nil
	}
	seed := uint64(0)
	if start > 0 {
		seed = start - 1
	}
	s.heights[chainSymbol] = seed
	return nil
}

func (s *memoryStore) SaveDeposit(ctx context.Context, in DepositInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := depositKey(in.Chain, in.TxHash)
	if _, exists := s.deposits[k]; exists {
		return nil // unique-conflict no-op, spec.md invariant 1
	}
	s.deposits[k] = &DepositRecord{
		ID:            uuid.NewV4().String(),
		Address:       in.Address,
		WalletID:      in.WalletID,
		AccountID:     in.AccountID,
		ChainSymbol:   in.Chain,
		TxHash:        in.TxHash,
		BlockNumber:   in.BlockNumber,
		AmountRaw:     in.AmountRaw,
		AmountDecimal: in.AmountDecimal,
		Confirmed:     false,
		CreatedAt:     time.Now().UTC(),
	}
	return nil
}

func (s *memoryStore) DepositExists(ctx context.Context, chainSymbol, txHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.deposits[depositKey(chainSymbol, txHash)]
	return ok, nil
}

func (s *memoryStore) GetDepositBlockNumber(ctx context.Context, chainSymbol, txHash string) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deposits[depositKey(chainSymbol, txHash)]
	if !ok {
		return 0, false, nil
	}
	return d.BlockNumber, true, nil
}

func (s *memoryStore) IsDepositConfirmed(ctx context.Context, txHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.deposits {
		if d.TxHash == txHash {
			return d.Confirmed, nil
		}
	}
	return false, nil
}

func (s *memoryStore) MarkConfirmed(ctx context.Context, txHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.deposits {
		if d.TxHash == txHash {
			d.Confirmed = true
		}
	}
	return nil
}

func (s *memoryStore) GetPendingDeposits(ctx context.Context) ([]PendingDeposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingDeposit, 0)
	for _, d := range s.deposits {
		if !d.Confirmed {
			out = append(out, PendingDeposit{
				Address:     d.Address,
				WalletID:    d.WalletID,
				AccountID:   d.AccountID,
				ChainSymbol: d.ChainSymbol,
				TxHash:      d.TxHash,
				BlockNumber: d.BlockNumber,
				AmountRaw:   d.AmountRaw,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BlockNumber < out[j].BlockNumber })
	return out, nil
}

func (s *memoryStore) Close() error { return nil }
