package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"paynest/internal/core/domain"
	"paynest/internal/core/ports"
	"paynest/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

// seed installs a wallet with a starting balance, for test setup.
func (r *inMemoryWalletRepo) seed(userID uuid.UUID, currency, balance string) *domain.Wallet {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := &domain.Wallet{
		ID:       uuid.New(),
		UserID:   userID,
		Currency: currency,
		Balance:  decimal.RequireFromString(balance),
		IsCrypto: domain.IsCryptoCurrency(currency),
	}
	r.wallets[w.ID] = w
	return w
}

func (r *inMemoryWalletRepo) balance(userID uuid.UUID, currency string) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.UserID == userID && w.Currency == currency {
			return w.Balance
		}
	}
	return decimal.Zero
}

func (r *inMemoryWalletRepo) GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.UserID == userID && w.Currency == currency {
			cp := *w
			return &cp, nil
		}
	}
	w := &domain.Wallet{
		ID:       uuid.New(),
		UserID:   userID,
		Currency: currency,
		Balance:  decimal.Zero,
		IsCrypto: domain.IsCryptoCurrency(currency),
	}
	r.wallets[w.ID] = w
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return apperror.ErrNotFound("wallet")
	}
	w.Balance = balance
	return nil
}

func (r *inMemoryWalletRepo) GetByUserCurrency(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.UserID == userID && w.Currency == currency {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Wallet
	for _, w := range r.wallets {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu   sync.Mutex
	txns map[string]*domain.Transaction // by reference id
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{txns: make(map[string]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.txns[t.ReferenceID]; exists {
		return apperror.ErrDuplicateReference()
	}
	cp := *t
	r.txns[t.ReferenceID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[referenceID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) GetByReferenceAny(ctx context.Context, referenceID string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[referenceID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) AdvanceStatus(ctx context.Context, tx pgx.Tx, referenceID string, from, to domain.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[referenceID]
	if !ok || t.Status != from {
		return apperror.ErrStaleStatus()
	}
	t.Status = to
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryTransactionRepo) AttachProof(ctx context.Context, tx pgx.Tx, userID uuid.UUID, referenceID, proofURL string, submittedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[referenceID]
	if !ok || t.UserID != userID || t.Kind != domain.TransactionKindTransfer || t.Status != domain.TransactionStatusPending {
		return apperror.ErrStaleStatus()
	}
	t.ProofURL = &proofURL
	t.ProofSubmittedAt = &submittedAt
	t.Status = domain.TransactionStatusProcessing
	t.UpdatedAt = submittedAt
	return nil
}

func (r *inMemoryTransactionRepo) RejectProof(ctx context.Context, tx pgx.Tx, referenceID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[referenceID]
	if !ok || t.Kind != domain.TransactionKindTransfer || t.Status != domain.TransactionStatusProcessing {
		return 0, apperror.ErrStaleStatus()
	}
	t.ProofURL = nil
	t.ProofSubmittedAt = nil
	t.ProofRejects++
	t.Status = domain.TransactionStatusPending
	t.UpdatedAt = time.Now().UTC()
	return t.ProofRejects, nil
}

func (r *inMemoryTransactionRepo) FindOverdue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Transaction
	for _, t := range r.txns {
		if t.Kind != domain.TransactionKindTransfer || t.IsTerminal() {
			continue
		}
		if t.CreatedAt.Before(cutoff) {
			out = append(out, *t)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Transaction
	for _, t := range r.txns {
		if t.UserID == userID {
			all = append(all, *t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *inMemoryTransactionRepo) GetStats(ctx context.Context, userID uuid.UUID, periodStart *time.Time) (*ports.TransactionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &ports.TransactionStats{}
	for _, t := range r.txns {
		if t.UserID != userID {
			continue
		}
		if periodStart != nil && t.CreatedAt.Before(*periodStart) {
			continue
		}
		stats.TotalTransactions++
		switch t.Status {
		case domain.TransactionStatusCompleted:
			stats.Completed++
			stats.TotalFees = stats.TotalFees.Add(t.Fee)
			if t.Kind == domain.TransactionKindExchange {
				stats.TotalExchanged = stats.TotalExchanged.Add(t.FromAmount)
			} else {
				stats.TotalTransferred = stats.TotalTransferred.Add(t.FromAmount)
			}
		case domain.TransactionStatusPending, domain.TransactionStatusProcessing:
			stats.Pending++
		case domain.TransactionStatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes units of work with a single mutex, standing
// in for the row locks the real store takes under FOR UPDATE.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &noopTx{release: &t.mu}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *noopTx) done() {
	if t.release != nil {
		t.once.Do(t.release.Unlock)
	}
}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
