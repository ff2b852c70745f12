package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shelfwise/internal/models"
	"shelfwise/internal/services"
)

type Handler struct {
	auth        services.AuthService
	catalog     services.CatalogService
	circulation services.CirculationService
	reviews     services.ReviewService
}

// RegisterRoutes mounts all API routes. Catalog mutations require the admin
// role; issue/return and reviews require any authenticated user; reads and
// auth endpoints are public.
func RegisterRoutes(r *gin.Engine, secret string, auth services.AuthService, catalog services.CatalogService, circulation services.CirculationService, reviews services.ReviewService) {
	h := &Handler{auth: auth, catalog: catalog, circulation: circulation, reviews: reviews}

	api := r.Group("/api")

	api.POST("/auth/signup", h.signup)
	api.POST("/auth/login", h.login)

	api.GET("/books", h.listBooks)
	api.GET("/books/:id", h.getBook)
	api.GET("/books/:id/reviews", h.listBookReviews)

	authed := api.Group("", AuthRequired(secret))
	{
		authed.POST("/books/issue", h.issueBook)
		authed.POST("/books/return", h.returnBook)
		authed.GET("/issues/overdue", h.listOverdue)
		authed.GET("/users/:id/issues", h.listUserIssues)
		authed.POST("/books/:id/reviews", h.addReview)
		authed.DELETE("/reviews/:id", h.deleteReview)
	}

	admin := authed.Group("", AdminRequired())
	{
		admin.POST("/books", h.createBook)
		admin.PUT("/books/:id", h.updateBook)
		admin.DELETE("/books/:id", h.deleteBook)
	}
}

// statusForError maps domain errors onto HTTP statuses: validation failures to
// 400, missing records to 404, expected concurrent-use conflicts to 409.
// Anything unrecognized is an infrastructure error and stays a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidIssueType),
		errors.Is(err, services.ErrInvalidGroupSize),
		errors.Is(err, services.ErrInvalidDamageType),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotReviewOwner):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrBookNotFound),
		errors.Is(err, services.ErrIssueNotFound),
		errors.Is(err, services.ErrReviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrActiveLoanExists),
		errors.Is(err, services.ErrNoCopiesAvailable),
		errors.Is(err, services.ErrAlreadyReturned),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrBookHasActiveIssues):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin user"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Signup(req.Name, req.Email, req.Password, models.UserRole(req.Role))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "signup successful", "user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token, "user": user})
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

type bookRequest struct {
	Title         string  `json:"title" binding:"required"`
	Author        string  `json:"author" binding:"required"`
	Category      string  `json:"category" binding:"required"`
	Cost          float64 `json:"cost" binding:"min=0"`
	TotalQuantity int     `json:"total_quantity" binding:"min=0"`
}

func (r bookRequest) params() services.BookParams {
	return services.BookParams{
		Title:         r.Title,
		Author:        r.Author,
		Category:      r.Category,
		Cost:          r.Cost,
		TotalQuantity: r.TotalQuantity,
	}
}

func (h *Handler) createBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.catalog.CreateBook(req.params())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "book added successfully", "book": book})
}

func (h *Handler) listBooks(c *gin.Context) {
	books, err := h.catalog.ListBooks()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) getBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	book, err := h.catalog.GetBook(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) updateBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.catalog.UpdateBook(id, req.params())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book updated successfully", "book": book})
}

func (h *Handler) deleteBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	if err := h.catalog.DeleteBook(id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book deleted successfully"})
}

// ─── Circulation ──────────────────────────────────────────────────────────────

type issueRequest struct {
	UserID    string `json:"user_id" binding:"required,uuid"`
	BookID    string `json:"book_id" binding:"required,uuid"`
	IssueType string `json:"issue_type" binding:"required"`
	GroupSize int    `json:"group_size" binding:"omitempty,min=0"`
}

func (h *Handler) issueBook(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := uuid.Parse(req.UserID)
	bookID, _ := uuid.Parse(req.BookID)

	issue, book, err := h.circulation.IssueBook(userID, bookID, models.IssueType(req.IssueType), req.GroupSize)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":          "book issued successfully",
		"issue":            issue,
		"copies_remaining": book.AvailableQuantity,
	})
}

type returnRequest struct {
	IssueID    string `json:"issue_id" binding:"required,uuid"`
	DamageType string `json:"damage_type" binding:"omitempty,oneof=none small large"`
}

func (h *Handler) returnBook(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	issueID, _ := uuid.Parse(req.IssueID)

	damage := models.DamageType(req.DamageType)
	if req.DamageType == "" {
		damage = models.DamageTypeNone
	}

	issue, book, err := h.circulation.ReturnBook(issueID, damage)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := gin.H{"message": "book returned successfully", "issue": issue}
	if book != nil {
		resp["copies_remaining"] = book.AvailableQuantity
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listOverdue(c *gin.Context) {
	now := time.Now().UTC()
	if raw := c.Query("now"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid now timestamp"})
			return
		}
		now = parsed
	}

	issues, err := h.circulation.ListOverdue(now)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

func (h *Handler) listUserIssues(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	issues, err := h.circulation.ListUserIssues(userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

// ─── Reviews ──────────────────────────────────────────────────────────────────

type reviewRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
}

func (h *Handler) addReview(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := MustClaims(c)
	review, err := h.reviews.AddReview(claims.UserID, bookID, req.Title, req.Description, req.Rating)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "review added successfully", "review": review})
}

func (h *Handler) listBookReviews(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	reviews, err := h.reviews.ListBookReviews(bookID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) deleteReview(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	claims := MustClaims(c)
	if err := h.reviews.DeleteReview(reviewID, claims.UserID, claims.Role); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted successfully"})
}
