package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shelfwise/internal/models"
	"shelfwise/internal/repositories"
)

// ReviewService owns book reviews.
type ReviewService interface {
	AddReview(userID, bookID uuid.UUID, title, description string, rating int) (*models.Review, error)
	ListBookReviews(bookID uuid.UUID) ([]models.Review, error)

	// DeleteReview removes a review. Only its author or an admin may delete it.
	DeleteReview(reviewID, requesterID uuid.UUID, requesterRole models.UserRole) error
}

type reviewService struct {
	userRepo   repositories.UserRepository
	bookRepo   repositories.BookRepository
	reviewRepo repositories.ReviewRepository
}

func NewReviewService(userRepo repositories.UserRepository, bookRepo repositories.BookRepository, reviewRepo repositories.ReviewRepository) ReviewService {
	return &reviewService{userRepo: userRepo, bookRepo: bookRepo, reviewRepo: reviewRepo}
}

func (s *reviewService) AddReview(userID, bookID uuid.UUID, title, description string, rating int) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.bookRepo.GetByID(nil, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if _, err := s.userRepo.GetByID(nil, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	review := &models.Review{
		BookID:      bookID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Rating:      rating,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.reviewRepo.Create(nil, review); err != nil {
		log.Printf("[ERROR] AddReview: failed to create review for book %s: %v", bookID, err)
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListBookReviews(bookID uuid.UUID) ([]models.Review, error) {
	if _, err := s.bookRepo.GetByID(nil, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return s.reviewRepo.ListByBook(nil, bookID)
}

func (s *reviewService) DeleteReview(reviewID, requesterID uuid.UUID, requesterRole models.UserRole) error {
	review, err := s.reviewRepo.GetByID(nil, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	if review.UserID != requesterID && requesterRole != models.UserRoleAdmin {
		return ErrNotReviewOwner
	}
	return s.reviewRepo.Delete(nil, reviewID)
}
