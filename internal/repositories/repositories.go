package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shelfwise/internal/models"
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.User, error)
	GetByEmail(db *gorm.DB, email string) (*models.User, error)
}

type BookRepository interface {
	Create(db *gorm.DB, book *models.Book) error
	List(db *gorm.DB) ([]models.Book, error)
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error)
	GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.Book, error)
	Update(db *gorm.DB, book *models.Book) error
	Delete(db *gorm.DB, id uuid.UUID) error

	// ReserveCopy decrements available_quantity by one, conditioned on
	// available_quantity > 0, as a single UPDATE. It returns
	// gorm.ErrRecordNotFound when no row matched (book gone or no copies
	// left); callers that have already resolved the book interpret that as
	// "no copies available".
	ReserveCopy(db *gorm.DB, bookID uuid.UUID) (*models.Book, error)

	// ReleaseCopy increments available_quantity by one. The circulation
	// workflow calls it exactly once per returned issue, so availability can
	// never climb past total_quantity.
	ReleaseCopy(db *gorm.DB, bookID uuid.UUID) (*models.Book, error)
}

type IssueRepository interface {
	Create(db *gorm.DB, issue *models.Issue) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Issue, error)
	GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.Issue, error)
	HasActiveLoan(db *gorm.DB, userID uuid.UUID) (bool, error)

	// MarkReturned sets the terminal state of an issue, conditioned on
	// returned = false so a concurrent double return loses cleanly. Returns
	// gorm.ErrRecordNotFound when the guard failed.
	MarkReturned(db *gorm.DB, issueID uuid.UUID, returnDate time.Time, fine float64, lateDays int, damage models.DamageType) error

	ListOverdue(db *gorm.DB, now time.Time) ([]models.Issue, error)
	ListByUser(db *gorm.DB, userID uuid.UUID) ([]models.Issue, error)
	CountActiveForBook(db *gorm.DB, bookID uuid.UUID) (int64, error)
}

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.Review) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Review, error)
	ListByBook(db *gorm.DB, bookID uuid.UUID) ([]models.Review, error)
	Delete(db *gorm.DB, id uuid.UUID) error
}

// concrete implementations

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	return db.Create(user).Error
}

func (r *userRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Create(book).Error
}

func (r *bookRepository) List(db *gorm.DB) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	var books []models.Book
	if err := db.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	if err := db.First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) Update(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Save(book).Error
}

func (r *bookRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Book{}, "id = ?", id).Error
}

func (r *bookRepository) ReserveCopy(db *gorm.DB, bookID uuid.UUID) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	// Check-and-decrement in one statement; a read-then-write here would
	// oversell under concurrent issues.
	res := db.Model(&models.Book{}).
		Where("id = ? AND available_quantity > 0", bookID).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity - 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.reload(db, bookID)
}

func (r *bookRepository) ReleaseCopy(db *gorm.DB, bookID uuid.UUID) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Book{}).
		Where("id = ?", bookID).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.reload(db, bookID)
}

func (r *bookRepository) reload(db *gorm.DB, bookID uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := db.First(&book, "id = ?", bookID).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

type issueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) Create(db *gorm.DB, issue *models.Issue) error {
	if db == nil {
		db = r.db
	}
	return db.Create(issue).Error
}

func (r *issueRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Issue, error) {
	if db == nil {
		db = r.db
	}
	var issue models.Issue
	if err := db.First(&issue, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.Issue, error) {
	if db == nil {
		db = r.db
	}
	var issue models.Issue
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&issue, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) HasActiveLoan(db *gorm.DB, userID uuid.UUID) (bool, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.Issue{}).
		Where("user_id = ? AND returned = false", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *issueRepository) MarkReturned(db *gorm.DB, issueID uuid.UUID, returnDate time.Time, fine float64, lateDays int, damage models.DamageType) error {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Issue{}).
		Where("id = ? AND returned = false", issueID).
		Updates(map[string]interface{}{
			"returned":    true,
			"return_date": returnDate,
			"fine":        fine,
			"late_days":   lateDays,
			"damage_type": damage,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *issueRepository) ListOverdue(db *gorm.DB, now time.Time) ([]models.Issue, error) {
	if db == nil {
		db = r.db
	}
	var issues []models.Issue
	err := db.Where("returned = false AND due_date < ?", now).
		Order("due_date ASC").
		Find(&issues).Error
	if err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *issueRepository) ListByUser(db *gorm.DB, userID uuid.UUID) ([]models.Issue, error) {
	if db == nil {
		db = r.db
	}
	var issues []models.Issue
	if err := db.Where("user_id = ?", userID).Order("issue_date DESC").Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *issueRepository) CountActiveForBook(db *gorm.DB, bookID uuid.UUID) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.Issue{}).
		Where("book_id = ? AND returned = false", bookID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(db *gorm.DB, review *models.Review) error {
	if db == nil {
		db = r.db
	}
	return db.Create(review).Error
}

func (r *reviewRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Review, error) {
	if db == nil {
		db = r.db
	}
	var review models.Review
	if err := db.First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByBook(db *gorm.DB, bookID uuid.UUID) ([]models.Review, error) {
	if db == nil {
		db = r.db
	}
	var reviews []models.Review
	err := db.Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Review{}, "id = ?", id).Error
}
