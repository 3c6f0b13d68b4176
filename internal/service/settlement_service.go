package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paynest/internal/core/domain"
	"paynest/internal/core/ports"
	"paynest/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// overdueBatchSize bounds how many transfers a single expiry sweep handles.
const overdueBatchSize = 100

// SettlementServiceImpl implements ports.SettlementService: the state
// machine driving transfers from reserved-but-unconfirmed to terminal.
type SettlementServiceImpl struct {
	txRepo       ports.TransactionRepository
	walletRepo   ports.WalletRepository
	transactor   ports.DBTransactor
	proofTimeout time.Duration
	maxRejects   int
	log          zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	proofTimeout time.Duration,
	maxRejects int,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		txRepo:       txRepo,
		walletRepo:   walletRepo,
		transactor:   transactor,
		proofTimeout: proofTimeout,
		maxRejects:   maxRejects,
		log:          log,
	}
}

// SubmitProof attaches a proof artifact reference to the caller's pending
// transfer and advances it to processing. The artifact itself lives in
// external storage; only its reference is recorded here.
func (s *SettlementServiceImpl) SubmitProof(ctx context.Context, userID uuid.UUID, referenceID, proofURL string) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByReference(ctx, userID, referenceID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		// Unknown reference and someone else's reference are deliberately
		// indistinguishable.
		return nil, apperror.ErrNotFound("transaction")
	}
	if !txn.AwaitsProof() {
		return nil, apperror.ErrInvalidState("pending")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	if err := s.txRepo.AttachProof(ctx, dbTx, userID, referenceID, proofURL, now); err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reference", referenceID).
		Str("user_id", userID.String()).
		Msg("settlement proof submitted")

	txn.Status = domain.TransactionStatusProcessing
	txn.ProofURL = &proofURL
	txn.ProofSubmittedAt = &now
	txn.UpdatedAt = now
	return txn, nil
}

// Verify finalizes (accept) or bounces (reject) a processing transfer.
// Accepting is the settlement point; the only wallet effect already
// happened at creation time, so no credit is applied here. Rejecting
// clears the proof slot for resubmission until the reject budget runs
// out, at which point the transfer fails and the reservation is released.
func (s *SettlementServiceImpl) Verify(ctx context.Context, referenceID string, outcome ports.VerifyOutcome) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByReferenceAny(ctx, referenceID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if txn.Kind != domain.TransactionKindTransfer || txn.Status != domain.TransactionStatusProcessing {
		return nil, apperror.ErrInvalidState("processing")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	switch outcome {
	case ports.VerifyAccept:
		if err := s.txRepo.AdvanceStatus(ctx, dbTx, referenceID, domain.TransactionStatusProcessing, domain.TransactionStatusCompleted); err != nil {
			return nil, err
		}

	case ports.VerifyReject:
		rejects, err := s.txRepo.RejectProof(ctx, dbTx, referenceID)
		if err != nil {
			return nil, err
		}
		if rejects >= s.maxRejects {
			// Budget exhausted: fail the transfer and release the full
			// reservation, fee included.
			if err := s.failAndRelease(ctx, dbTx, txn, domain.TransactionStatusPending); err != nil {
				return nil, err
			}
		}

	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown verify outcome: %s", outcome))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reference", referenceID).
		Str("outcome", string(outcome)).
		Msg("settlement proof verified")

	updated, err := s.txRepo.GetByReferenceAny(ctx, referenceID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reload transaction: %w", err))
	}
	return updated, nil
}

// ExpireOverdue fails transfers that sat in pending/processing past the
// proof timeout and releases their reserved funds. Each transfer gets its
// own unit of work: a sweep never holds one wallet's lock while waiting
// on another, and one bad row cannot abort the rest of the batch.
func (s *SettlementServiceImpl) ExpireOverdue(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.proofTimeout)
	overdue, err := s.txRepo.FindOverdue(ctx, cutoff, overdueBatchSize)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("find overdue: %w", err))
	}

	expired := 0
	var firstErr error
	for i := range overdue {
		txn := &overdue[i]
		switch err := s.expireOne(ctx, txn); {
		case err == nil:
			expired++
			s.log.Warn().
				Str("reference", txn.ReferenceID).
				Str("released", txn.ReservedAmount().String()).
				Msg("transfer expired, reservation released")
		case isStaleStatus(err):
			// Settled or released between the scan and our unit of work;
			// the winner already applied the only valid outcome.
			continue
		default:
			if firstErr == nil {
				firstErr = err
			}
			s.log.Error().Err(err).
				Str("reference", txn.ReferenceID).
				Msg("expiry release failed")
		}
	}
	return expired, firstErr
}

// expireOne fails a single overdue transfer and releases its reservation.
// The conditional status advance inside failAndRelease makes concurrent
// sweeps of the same transfer safe: exactly one commits the release.
func (s *SettlementServiceImpl) expireOne(ctx context.Context, txn *domain.Transaction) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.failAndRelease(ctx, dbTx, txn, txn.Status); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

func isStaleStatus(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == "SET_002"
}

// failAndRelease moves a transfer to failed and re-credits the exact
// original reservation. No fee is retained on a failed transfer.
func (s *SettlementServiceImpl) failAndRelease(ctx context.Context, dbTx pgx.Tx, txn *domain.Transaction, from domain.TransactionStatus) error {
	if err := s.txRepo.AdvanceStatus(ctx, dbTx, txn.ReferenceID, from, domain.TransactionStatusFailed); err != nil {
		return err
	}

	wallet, err := s.walletRepo.GetOrCreateForUpdate(ctx, dbTx, txn.UserID, txn.FromCurrency)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if err := wallet.Credit(txn.ReservedAmount()); err != nil {
		return apperror.InternalError(fmt.Errorf("release reservation: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance); err != nil {
		return apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	return nil
}
