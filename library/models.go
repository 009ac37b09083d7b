package library

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Circulation limits.
const (
	MaxBooksPerUser = 5
	LoanPeriodDays  = 14
)

// Book holds catalog metadata plus the current loan and rating state.
// Borrower and DueDate are both set while the book is out and both
// cleared when it is available; Available mirrors that.
type Book struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Author        string         `json:"author"`
	Genre         string         `json:"genre"`
	Year          int            `json:"year"`
	Available     bool           `json:"available"`
	Borrower      string         `json:"borrower,omitempty"`
	DueDate       *time.Time     `json:"due_date,omitempty"`
	Ratings       map[string]int `json:"ratings"`
	AverageRating float64        `json:"average_rating"`
	RatingCount   int            `json:"rating_count"`
}

// NewBook creates an available book with no ratings. Field values are
// taken as given; there is no validation on id format or year.
func NewBook(id, title, author, genre string, year int) *Book {
	return &Book{
		ID:        id,
		Title:     title,
		Author:    author,
		Genre:     genre,
		Year:      year,
		Available: true,
		Ratings:   make(map[string]int),
	}
}

// AddRating records or replaces the user's rating. Values outside
// [1,5] are ignored. The average is maintained incrementally: a
// replacement swaps the old contribution out of the running average
// instead of recomputing over the whole map.
func (b *Book) AddRating(username string, rating int) {
	if rating < 1 || rating > 5 {
		return
	}
	if b.Ratings == nil {
		b.Ratings = make(map[string]int)
	}

	previous, rated := b.Ratings[username]
	b.Ratings[username] = rating

	if rated {
		b.AverageRating = (b.AverageRating*float64(b.RatingCount) - float64(previous) + float64(rating)) / float64(b.RatingCount)
	} else {
		b.AverageRating = (b.AverageRating*float64(b.RatingCount) + float64(rating)) / float64(b.RatingCount+1)
		b.RatingCount++
	}
}

// UserRating reports the rating the user gave, if any.
func (b *Book) UserRating(username string) (int, bool) {
	r, ok := b.Ratings[username]
	return r, ok
}

// Clone returns an independent copy safe for callers to hold across
// service calls.
func (b *Book) Clone() *Book {
	c := *b
	c.Ratings = make(map[string]int, len(b.Ratings))
	for user, r := range b.Ratings {
		c.Ratings[user] = r
	}
	if b.DueDate != nil {
		due := *b.DueDate
		c.DueDate = &due
	}
	return &c
}

// User is a registered account. BorrowedBooks lists the IDs of books
// currently out to this user, in borrow order.
type User struct {
	Username      string   `json:"username"`
	PasswordHash  string   `json:"password_hash"`
	FullName      string   `json:"full_name"`
	Email         string   `json:"email"`
	Admin         bool     `json:"admin"`
	Active        bool     `json:"active"`
	BorrowedBooks []string `json:"borrowed_books"`
}

// NewUser creates an active user with a bcrypt-hashed password.
func NewUser(username, password, fullName, email string, admin bool) (*User, error) {
	u := &User{
		Username: username,
		FullName: fullName,
		Email:    email,
		Admin:    admin,
		Active:   true,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// AddBorrowedBook appends the book ID. Duplicate prevention is the
// caller's job, not enforced here.
func (u *User) AddBorrowedBook(bookID string) {
	u.BorrowedBooks = append(u.BorrowedBooks, bookID)
}

// RemoveBorrowedBook drops the first matching ID, if present.
func (u *User) RemoveBorrowedBook(bookID string) {
	for i, id := range u.BorrowedBooks {
		if id == bookID {
			u.BorrowedBooks = append(u.BorrowedBooks[:i], u.BorrowedBooks[i+1:]...)
			return
		}
	}
}

// Clone returns an independent copy safe for callers to hold.
func (u *User) Clone() *User {
	c := *u
	c.BorrowedBooks = append([]string(nil), u.BorrowedBooks...)
	return &c
}
