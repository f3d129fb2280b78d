package store

import (
	"context"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/lib/pq"
	uuid "github.com/satori/go.uuid"

	"github.com/ground-x/xscanner/common"
	xlog "github.com/ground-x/xscanner/log"
)

var logger = xlog.NewModuleLogger("store")

// blockchainStateRow backs the blockchain_state table of spec.md §6.4.
type blockchainStateRow struct {
	ChainName          string `gorm:"primary_key;column:chain_name"`
	LastProcessedBlock uint64 `gorm:"column:last_processed_block"`
}

func (blockchainStateRow) TableName() string { return "blockchain_state" }

// depositEventRow backs the deposit_events table of spec.md §6.4.
type depositEventRow struct {
	ID            string  `gorm:"primary_key;column:id"`
	Address       string  `gorm:"column:address"`
	WalletID      string  `gorm:"column:wallet_id"`
	AccountID     *string `gorm:"column:account_id"`
	ChainName     string  `gorm:"column:chain_name;unique_index:idx_chain_tx"`
	TxHash        string  `gorm:"column:tx_hash;unique_index:idx_chain_tx"`
	BlockNumber   uint64  `gorm:"column:block_number"`
	Amount        string  `gorm:"column:amount"`
	AmountDecimal *string `gorm:"column:amount_decimal;type:numeric(36,18)"`
	Confirmed     bool    `gorm:"column:confirmed;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (depositEventRow) TableName() string { return "deposit_events" }

// gormStore is the durable deposit store, backed by PostgreSQL through
// jinzhu/gorm (a teacher dependency) with the lib/pq driver registered
// under gorm's postgres dialect — the relational counterpart to the
// teacher's go-sql-driver/mysql usage, swapped because spec.md's
// repository.postgresql_url names PostgreSQL specifically (see DESIGN.md).
type gormStore struct {
	db *gorm.DB
}

// NewGormStore opens a pooled connection to postgresURL and migrates the
// schema. Pool size is small per spec.md §5 ("target pool size small, e.g.
// 5"); an unreachable database is a fatal initialization error.
func NewGormStore(postgresURL string) (Store, error) {
	db, err := gorm.Open("postgres", postgresURL)
	if err != nil {
		return nil, common.Wrap(common.KindInitialization, "NewGormStore", err)
	}
	db.DB().SetMaxOpenConns(5)
	db.DB().SetMaxIdleConns(5)

	if err := db.AutoMigrate(&blockchainStateRow{}, &depositEventRow{}).Error; err != nil {
		db.Close()
		return nil, common.Wrap(common.KindInitialization, "NewGormStore", err)
	}

	logger.Info("deposit store connected")
	return &gormStore{db: db}, nil
}

func (s *gormStore) GetLastProcessed(ctx context.Context, chainSymbol string) (uint64, error) {
	var row blockchainStateRow
	err := s.db.Where("chain_name = ?", chainSymbol).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return 0, nil
	}
	if err != nil {
		return 0, common.Wrap(common.KindTransient, "gormStore.GetLastProcessed", err)
	}
	return row.LastProcessedBlock, nil
}

func (s *gormStore) SetLastProcessed(ctx context.Context, chainSymbol string, height uint64) error {
	row := blockchainStateRow{ChainName: chainSymbol, LastProcessedBlock: height}
	err := s.db.Exec(
		`INSERT INTO blockchain_state (chain_name, last_processed_block) VALUES (?, ?)
		 ON CONFLICT (chain_name) DO UPDATE SET last_processed_block = EXCLUDED.last_processed_block`,
		row.ChainName, row.LastProcessedBlock,
	).Error
	if err != nil {
		return common.Wrap(common.KindTransient, "gormStore.SetLastProcessed", err)
	}
	return nil
}

func (s *gormStore) InitLastProcessed(ctx context.Context, chainSymbol string, start uint64) error {
	seed := uint64(0)
	if start > 0 {
		seed = start - 1
	}
	err := s.db.Exec(
		`INSERT INTO blockchain_state (chain_name, last_processed_block) VALUES (?, ?)
		 ON CONFLICT (chain_name) DO NOTHING`,
		chainSymbol, seed,
	).Error
	if err != nil {
		return common.Wrap(common.KindTransient, "gormStore.InitLastProcessed", err)
	}
	return nil
}

func (s *gormStore) SaveDeposit(ctx context.Context, in DepositInput) error {
	id := uuid.NewV4().String()
	err := s.db.Exec(
		`INSERT INTO deposit_events
		   (id, address, wallet_id, account_id, chain_name, tx_hash, block_number, amount, amount_decimal, confirmed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, false, ?)
		 ON CONFLICT (chain_name, tx_hash) DO NOTHING`,
		id, in.Address, in.WalletID, in.AccountID, in.Chain, in.TxHash, in.BlockNumber, in.AmountRaw, in.AmountDecimal, time.Now().UTC(),
	).Error
	if err != nil {
		return common.Wrap(common.KindTransient, "gormStore.SaveDeposit", err)
	}
	return nil
}

func (s *gormStore) DepositExists(ctx context.Context, chainSymbol, txHash string) (bool, error) {
	var count int
	err := s.db.Model(&depositEventRow{}).
		Where("chain_name = ? AND tx_hash = ?", chainSymbol, txHash).
		Count(&count).Error
	if err != nil {
		return false, common.Wrap(common.KindTransient, "gormStore.DepositExists", err)
	}
	return count > 0, nil
}

func (s *gormStore) GetDepositBlockNumber(ctx context.Context, chainSymbol, txHash string) (uint64, bool, error) {
	var row depositEventRow
	err := s.db.Where("chain_name = ? AND tx_hash = ?", chainSymbol, txHash).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, common.Wrap(common.KindTransient, "gormStore.GetDepositBlockNumber", err)
	}
	return row.BlockNumber, true, nil
}

func (s *gormStore) IsDepositConfirmed(ctx context.Context, txHash string) (bool, error) {
	var row depositEventRow
	err := s.db.Where("tx_hash = ?", txHash).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, common.Wrap(common.KindTransient, "gormStore.IsDepositConfirmed", err)
	}
	return row.Confirmed, nil
}

func (s *gormStore) MarkConfirmed(ctx context.Context, txHash string) error {
	err := s.db.Model(&depositEventRow{}).
		Where("tx_hash = ? AND confirmed = ?", txHash, false).
		Update("confirmed", true).Error
	if err != nil {
		return common.Wrap(common.KindTransient, "gormStore.MarkConfirmed", err)
	}
	return nil
}

func (s *gormStore) GetPendingDeposits(ctx context.Context) ([]PendingDeposit, error) {
	var rows []depositEventRow
	err := s.db.Where("confirmed = ?", false).Order("block_number ASC").Find(&rows).Error
	if err != nil {
		return nil, common.Wrap(common.KindTransient, "gormStore.GetPendingDeposits", err)
	}
	out := make([]PendingDeposit, 0, len(rows))
	for _, r := range rows {
		out = append(out, PendingDeposit{
			Address:     r.Address,
			WalletID:    r.WalletID,
			AccountID:   r.AccountID,
			ChainSymbol: r.ChainName,
			TxHash:      r.TxHash,
			BlockNumber: r.BlockNumber,
			AmountRaw:   r.Amount,
		})
	}
	return out, nil
}

func (s *gormStore) Close() error {
	return s.db.Close()
}
