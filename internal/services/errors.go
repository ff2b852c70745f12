package services

import (
	"errors"
	"strings"
)

// Business-rule failures are sentinel errors so handlers can map them to HTTP
// statuses with errors.Is; infrastructure errors pass through unwrapped.
var (
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrBookNotFound is returned when the requested book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrIssueNotFound is returned when the referenced issue record does not exist.
	ErrIssueNotFound = errors.New("issue record not found")

	// ErrReviewNotFound is returned when the referenced review does not exist.
	ErrReviewNotFound = errors.New("review not found")

	// ErrNoCopiesAvailable is returned when every copy of the book is out on loan.
	ErrNoCopiesAvailable = errors.New("no copies available")

	// ErrActiveLoanExists is returned when a user with an unreturned issue
	// attempts to issue another book.
	ErrActiveLoanExists = errors.New("user already has an active loan")

	// ErrAlreadyReturned is returned when a return is attempted on an issue
	// that has already been marked returned.
	ErrAlreadyReturned = errors.New("book already returned")

	// ErrInvalidIssueType is returned for an issue type outside
	// {individual, group}.
	ErrInvalidIssueType = errors.New("invalid issue type")

	// ErrInvalidGroupSize is returned when the group size violates the loan
	// policy for the requested issue type.
	ErrInvalidGroupSize = errors.New("invalid group size")

	// ErrInvalidDamageType is returned for a damage classification outside
	// {none, small, large}.
	ErrInvalidDamageType = errors.New("invalid damage type")

	// ErrInvalidRating is returned when a review rating falls outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidQuantity is returned when a catalog update would shrink
	// total quantity below the number of copies currently on loan.
	ErrInvalidQuantity = errors.New("total quantity below copies on loan")

	// ErrBookHasActiveIssues is returned when deleting a book that still has
	// unreturned issues referencing it.
	ErrBookHasActiveIssues = errors.New("book has active issues")

	// ErrEmailTaken is returned on signup with an already registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login with a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotReviewOwner is returned when a user attempts to delete someone
	// else's review without the admin role.
	ErrNotReviewOwner = errors.New("not the review owner")
)

// isUniqueViolation checks whether a PostgreSQL unique-constraint error occurred.
// PostgreSQL error code 23505 = unique_violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
