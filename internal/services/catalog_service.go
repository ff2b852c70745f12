package services

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shelfwise/internal/models"
	"shelfwise/internal/repositories"
)

// BookParams carries the caller-supplied fields of a catalog entry.
type BookParams struct {
	Title         string
	Author        string
	Category      string
	Cost          float64
	TotalQuantity int
}

// CatalogService owns CRUD on the book catalog. Availability is never written
// here except through quantity adjustments that preserve the copies already
// out on loan; issuing and returning go through CirculationService.
type CatalogService interface {
	CreateBook(p BookParams) (*models.Book, error)
	ListBooks() ([]models.Book, error)
	GetBook(id uuid.UUID) (*models.Book, error)
	UpdateBook(id uuid.UUID, p BookParams) (*models.Book, error)
	DeleteBook(id uuid.UUID) error
}

type catalogService struct {
	tx        TxManager
	bookRepo  repositories.BookRepository
	issueRepo repositories.IssueRepository
}

func NewCatalogService(tx TxManager, bookRepo repositories.BookRepository, issueRepo repositories.IssueRepository) CatalogService {
	return &catalogService{tx: tx, bookRepo: bookRepo, issueRepo: issueRepo}
}

func (s *catalogService) CreateBook(p BookParams) (*models.Book, error) {
	if p.Cost < 0 || p.TotalQuantity < 0 {
		return nil, ErrInvalidQuantity
	}
	book := &models.Book{
		Title:             p.Title,
		Author:            p.Author,
		Category:          p.Category,
		Cost:              p.Cost,
		TotalQuantity:     p.TotalQuantity,
		AvailableQuantity: p.TotalQuantity,
	}
	if err := s.bookRepo.Create(nil, book); err != nil {
		log.Printf("[ERROR] CreateBook: failed to create book record: %v", err)
		return nil, err
	}
	log.Printf("[INFO] CreateBook: created book %q (id=%s) with %d copies", book.Title, book.ID, book.TotalQuantity)
	return book, nil
}

func (s *catalogService) ListBooks() ([]models.Book, error) {
	return s.bookRepo.List(nil)
}

func (s *catalogService) GetBook(id uuid.UUID) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// UpdateBook replaces the catalog fields of a book. Changing the total
// quantity shifts availability by the same delta; the new total may not drop
// below the number of copies currently out on loan.
func (s *catalogService) UpdateBook(id uuid.UUID, p BookParams) (*models.Book, error) {
	if p.Cost < 0 || p.TotalQuantity < 0 {
		return nil, ErrInvalidQuantity
	}

	var updated *models.Book
	err := s.tx.Transaction(func(tx *gorm.DB) error {
		book, err := s.bookRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		copiesOut := book.TotalQuantity - book.AvailableQuantity
		if p.TotalQuantity < copiesOut {
			return ErrInvalidQuantity
		}

		book.Title = p.Title
		book.Author = p.Author
		book.Category = p.Category
		book.Cost = p.Cost
		book.TotalQuantity = p.TotalQuantity
		book.AvailableQuantity = p.TotalQuantity - copiesOut

		if err := s.bookRepo.Update(tx, book); err != nil {
			log.Printf("[ERROR] UpdateBook: failed to update book %s: %v", id, err)
			return err
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBook removes a catalog entry. Refused while unreturned issues still
// reference the book; returned issues keep their denormalized cost and survive
// the deletion.
func (s *catalogService) DeleteBook(id uuid.UUID) error {
	return s.tx.Transaction(func(tx *gorm.DB) error {
		if _, err := s.bookRepo.GetByIDForUpdate(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		active, err := s.issueRepo.CountActiveForBook(tx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			log.Printf("[WARN] DeleteBook: book %s has %d active issues, refusing delete", id, active)
			return ErrBookHasActiveIssues
		}

		if err := s.bookRepo.Delete(tx, id); err != nil {
			log.Printf("[ERROR] DeleteBook: failed to delete book %s: %v", id, err)
			return err
		}
		log.Printf("[INFO] DeleteBook: deleted book %s", id)
		return nil
	})
}
