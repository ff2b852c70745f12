package services

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shelfwise/internal/models"
	"shelfwise/internal/repositories"
)

// TxManager runs a function inside a single database transaction.
// *gorm.DB satisfies it.
type TxManager interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// ─── Service Interface ────────────────────────────────────────────────────────

// CirculationService owns the issue/return lifecycle. It is the only writer of
// book availability and the only component that flips an issue to returned.
type CirculationService interface {
	IssueBook(userID, bookID uuid.UUID, issueType models.IssueType, groupSize int) (*models.Issue, *models.Book, error)

	// ReturnBook returns (issue, book, error). book is nil when the catalog
	// record was deleted after the issue was created; the return still
	// succeeds in that case, using the cost denormalized onto the issue.
	ReturnBook(issueID uuid.UUID, damage models.DamageType) (*models.Issue, *models.Book, error)

	ListOverdue(now time.Time) ([]models.Issue, error)
	ListUserIssues(userID uuid.UUID) ([]models.Issue, error)
}

// ─── Implementation ───────────────────────────────────────────────────────────

type circulationService struct {
	tx        TxManager
	userRepo  repositories.UserRepository
	bookRepo  repositories.BookRepository
	issueRepo repositories.IssueRepository
}

// NewCirculationService wires up all dependencies and returns a CirculationService.
func NewCirculationService(
	tx TxManager,
	userRepo repositories.UserRepository,
	bookRepo repositories.BookRepository,
	issueRepo repositories.IssueRepository,
) CirculationService {
	return &circulationService{
		tx:        tx,
		userRepo:  userRepo,
		bookRepo:  bookRepo,
		issueRepo: issueRepo,
	}
}

// ─── Issue ────────────────────────────────────────────────────────────────────

// IssueBook implements the transactional issue flow.
//
// The loan policy runs first, before any mutation, so a validation failure
// never reserves a copy. Inside the transaction the copy reservation is a
// single conditional decrement (see BookRepository.ReserveCopy) and the
// single-active-loan rule is enforced twice: an application-level check for a
// friendly error, and the partial unique index on issues(user_id) as the
// authoritative guard — losing that race surfaces as ErrActiveLoanExists and
// the rollback releases the reserved copy.
func (s *circulationService) IssueBook(userID, bookID uuid.UUID, issueType models.IssueType, groupSize int) (*models.Issue, *models.Book, error) {
	durationDays, err := PlanIssue(issueType, groupSize)
	if err != nil {
		return nil, nil, err
	}

	var issue *models.Issue
	var book *models.Book

	err = s.tx.Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.GetByID(tx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		active, err := s.issueRepo.HasActiveLoan(tx, userID)
		if err != nil {
			return err
		}
		if active {
			return ErrActiveLoanExists
		}

		if _, err := s.bookRepo.GetByID(tx, bookID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		reserved, err := s.bookRepo.ReserveCopy(tx, bookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[INFO] IssueBook: no available copies of book %s for user %s", bookID, userID)
				return ErrNoCopiesAvailable
			}
			return err
		}

		now := time.Now().UTC()
		rec := &models.Issue{
			UserID:     userID,
			BookID:     bookID,
			IssueType:  issueType,
			GroupSize:  groupSize,
			IssueDate:  now,
			DueDate:    now.AddDate(0, 0, durationDays),
			DamageType: models.DamageTypeNone,
			BookCost:   reserved.Cost,
		}
		if err := s.issueRepo.Create(tx, rec); err != nil {
			if isUniqueViolation(err) {
				// Lost the single-active-loan race; the rollback also undoes
				// the copy reservation.
				log.Printf("[WARN] IssueBook: concurrent active loan detected for user %s", userID)
				return ErrActiveLoanExists
			}
			return err
		}

		issue = rec
		book = reserved
		return nil
	})

	if err != nil {
		return nil, nil, err
	}
	log.Printf("[INFO] IssueBook: issue %s created for user %s / book %s (%s), due %s",
		issue.ID, userID, bookID, issueType, issue.DueDate.Format("2006-01-02"))
	return issue, book, nil
}

// ─── Return ───────────────────────────────────────────────────────────────────

// ReturnBook implements the transactional return flow.
//
// Steps (all in one transaction):
//  1. Lock the Issue row (FOR UPDATE) and guard against double-return.
//  2. Resolve the Book. A dangling catalog reference does not block the
//     return: the fine is computed from the cost captured at issue time and
//     the inventory release is skipped.
//  3. Compute the fine with the current time as return date.
//  4. Mark the issue returned (compare-and-set on returned = false) and
//     release the copy; either failing rolls back both.
func (s *circulationService) ReturnBook(issueID uuid.UUID, damage models.DamageType) (*models.Issue, *models.Book, error) {
	if !damage.Valid() {
		return nil, nil, ErrInvalidDamageType
	}

	var issue *models.Issue
	var book *models.Book

	err := s.tx.Transaction(func(tx *gorm.DB) error {
		rec, err := s.issueRepo.GetByIDForUpdate(tx, issueID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIssueNotFound
			}
			return err
		}
		if rec.Returned {
			log.Printf("[WARN] ReturnBook: issue %s already returned at %s", issueID, rec.ReturnDate)
			return ErrAlreadyReturned
		}

		cost := rec.BookCost
		bookMissing := false
		b, err := s.bookRepo.GetByID(tx, rec.BookID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			log.Printf("[WARN] ReturnBook: book %s no longer exists for issue %s, recording return without inventory release", rec.BookID, issueID)
			bookMissing = true
		case err != nil:
			return err
		default:
			cost = b.Cost
		}

		now := time.Now().UTC()
		fine, lateDays := ComputeFine(rec.DueDate, now, damage, cost)
		log.Printf("[INFO] ReturnBook: returning issue %s (user=%s, book=%s), lateDays=%d fine=%.2f",
			issueID, rec.UserID, rec.BookID, lateDays, fine)

		if err := s.issueRepo.MarkReturned(tx, rec.ID, now, fine, lateDays, damage); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlreadyReturned
			}
			return err
		}

		if !bookMissing {
			released, err := s.bookRepo.ReleaseCopy(tx, rec.BookID)
			if err != nil {
				log.Printf("[ERROR] ReturnBook: failed to release copy of book %s: %v", rec.BookID, err)
				return err
			}
			book = released
		}

		rec.Returned = true
		rec.ReturnDate = &now
		rec.Fine = fine
		rec.LateDays = lateDays
		rec.DamageType = damage
		issue = rec
		return nil
	})

	if err != nil {
		return nil, nil, err
	}
	return issue, book, nil
}

// ─── Queries ──────────────────────────────────────────────────────────────────

// ListOverdue returns unreturned issues whose due date has passed. Overdue
// status is computed on read; no background scheduler exists.
func (s *circulationService) ListOverdue(now time.Time) ([]models.Issue, error) {
	return s.issueRepo.ListOverdue(nil, now)
}

// ListUserIssues returns all issue records (active and past) for a user.
func (s *circulationService) ListUserIssues(userID uuid.UUID) ([]models.Issue, error) {
	return s.issueRepo.ListByUser(nil, userID)
}
