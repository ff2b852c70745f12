package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"shelfwise/internal/models"
	"shelfwise/internal/repositories"
)

type mockReviewRepo struct {
	createFn  func(review *models.Review) error
	getByIDFn func(id uuid.UUID) (*models.Review, error)

	deleteCalls int
}

var _ repositories.ReviewRepository = (*mockReviewRepo)(nil)

func (m *mockReviewRepo) Create(_ *gorm.DB, review *models.Review) error {
	if m.createFn == nil {
		review.ID = uuid.New()
		return nil
	}
	return m.createFn(review)
}

func (m *mockReviewRepo) GetByID(_ *gorm.DB, id uuid.UUID) (*models.Review, error) {
	if m.getByIDFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.getByIDFn(id)
}

func (m *mockReviewRepo) ListByBook(_ *gorm.DB, bookID uuid.UUID) ([]models.Review, error) {
	return nil, nil
}

func (m *mockReviewRepo) Delete(_ *gorm.DB, id uuid.UUID) error {
	m.deleteCalls++
	return nil
}

func TestAddReview(t *testing.T) {
	svc := NewReviewService(&mockUserRepo{}, &mockBookRepo{}, &mockReviewRepo{})

	review, err := svc.AddReview(uuid.New(), uuid.New(), "great read", "", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.False(t, review.CreatedAt.IsZero())
}

func TestAddReview_RatingBounds(t *testing.T) {
	svc := NewReviewService(&mockUserRepo{}, &mockBookRepo{}, &mockReviewRepo{})

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.AddReview(uuid.New(), uuid.New(), "t", "", rating)
		require.ErrorIs(t, err, ErrInvalidRating, "rating=%d", rating)
	}
}

func TestAddReview_BookMustExist(t *testing.T) {
	books := &mockBookRepo{
		getByIDFn: func(uuid.UUID) (*models.Book, error) { return nil, gorm.ErrRecordNotFound },
	}
	svc := NewReviewService(&mockUserRepo{}, books, &mockReviewRepo{})

	_, err := svc.AddReview(uuid.New(), uuid.New(), "t", "", 3)
	require.ErrorIs(t, err, ErrBookNotFound)
}

func TestDeleteReview_Authorization(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	reviewID := uuid.New()

	reviews := &mockReviewRepo{
		getByIDFn: func(id uuid.UUID) (*models.Review, error) {
			return &models.Review{ID: id, UserID: owner}, nil
		},
	}
	svc := NewReviewService(&mockUserRepo{}, &mockBookRepo{}, reviews)

	require.ErrorIs(t, svc.DeleteReview(reviewID, stranger, models.UserRoleMember), ErrNotReviewOwner)
	assert.Zero(t, reviews.deleteCalls)

	require.NoError(t, svc.DeleteReview(reviewID, owner, models.UserRoleMember))
	require.NoError(t, svc.DeleteReview(reviewID, stranger, models.UserRoleAdmin))
	assert.Equal(t, 2, reviews.deleteCalls)
}
