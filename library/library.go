// Package library implements the domain and persistence layer of a
// small single-operator library manager: catalog, user accounts,
// borrow/return circulation with a fixed loan period, star ratings,
// snapshot persistence and CSV exports.
package library

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Status messages returned to the interactive layer. Expected business
// failures are reported through these values, never through errors.
const (
	MsgBookNotFound    = "Book not found!"
	MsgUserNotFound    = "User not found!"
	MsgAlreadyBorrowed = "Book already borrowed!"
	MsgBorrowLimit     = "Borrow limit reached!"
	MsgBookNotBorrowed = "Book wasn't borrowed!"
	MsgBookReturned    = "Book returned successfully!"
	MsgRatingSubmitted = "Rating submitted!"
)

// Seeded when the user store is empty on startup.
const (
	defaultAdminUser     = "admin"
	defaultAdminPassword = "admin123"
	defaultAdminName     = "System Admin"
	defaultAdminEmail    = "admin@ewu.edu"
)

// Library owns the book and user collections and is the single source
// of truth. Every mutation rewrites the whole dataset through the
// snapshot store before returning. A single mutex serializes all
// operations; the design assumes one active session, so there is no
// finer-grained locking.
type Library struct {
	mu     sync.Mutex
	store  *Store
	logger *log.Logger
	books  []*Book
	users  []*User
}

// NewLibrary loads the persisted dataset from store. A missing or
// unreadable snapshot starts the library empty (the failure is logged,
// not surfaced), and an empty user set gets the default admin account.
func NewLibrary(store *Store, logger *log.Logger) (*Library, error) {
	if logger == nil {
		logger = log.Default()
	}
	lib := &Library{store: store, logger: logger}

	books, users, err := store.Load()
	if err != nil {
		logger.Error("load library data, starting empty", "err", err)
		books, users = nil, nil
	}
	lib.books, lib.users = books, users

	if len(lib.users) == 0 {
		admin, err := NewUser(defaultAdminUser, defaultAdminPassword, defaultAdminName, defaultAdminEmail, true)
		if err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		lib.users = append(lib.users, admin)
		lib.persist()
	}

	logger.Debug("library loaded", "books", len(lib.books), "users", len(lib.users))
	return lib, nil
}

// persist rewrites the whole dataset. Save failures are logged and
// suppressed so the triggering operation still reports its business
// outcome.
func (l *Library) persist() {
	if err := l.store.Save(l.books, l.users); err != nil {
		l.logger.Error("save library data", "err", err)
	}
}

func (l *Library) findBook(id string) *Book {
	for _, b := range l.books {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (l *Library) findUser(username string) *User {
	for _, u := range l.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

// Login returns a copy of the active user whose password matches, or
// nil. No lockout, no attempt counting.
func (l *Library) Login(username, password string) *User {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, u := range l.users {
		if u.Username == username && u.Active && u.CheckPassword(password) {
			return u.Clone()
		}
	}
	return nil
}

// Register creates a new account. Returns false if the username is
// taken. No password strength rules.
func (l *Library) Register(username, password, fullName, email string, admin bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.findUser(username) != nil {
		return false
	}
	user, err := NewUser(username, password, fullName, email, admin)
	if err != nil {
		l.logger.Error("hash password", "user", username, "err", err)
		return false
	}
	l.users = append(l.users, user)
	l.persist()
	return true
}

// SearchBooks matches the query case-insensitively against title,
// author, genre and ID, returning copies in catalog order. The empty
// query matches everything.
func (l *Library) SearchBooks(query string) []*Book {
	l.mu.Lock()
	defer l.mu.Unlock()

	q := strings.ToLower(query)
	var results []*Book
	for _, b := range l.books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.Genre), q) ||
			strings.Contains(strings.ToLower(b.ID), q) {
			results = append(results, b.Clone())
		}
	}
	return results
}

// BorrowBook checks the book out to the user for LoanPeriodDays.
// Validation order: book exists, user exists, book available, user
// under the borrow limit. Failures return their message with no state
// change; success applies all four effects (availability, borrower,
// due date, borrowed list) and persists.
func (l *Library) BorrowBook(bookID, username string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	book := l.findBook(bookID)
	if book == nil {
		return MsgBookNotFound
	}
	user := l.findUser(username)
	if user == nil {
		return MsgUserNotFound
	}
	if !book.Available {
		return MsgAlreadyBorrowed
	}
	if len(user.BorrowedBooks) >= MaxBooksPerUser {
		return MsgBorrowLimit
	}

	due := time.Now().AddDate(0, 0, LoanPeriodDays)
	book.Available = false
	book.Borrower = username
	book.DueDate = &due
	user.AddBorrowedBook(bookID)
	l.persist()

	return fmt.Sprintf("Book borrowed! Due: %s", due.Format("2006-01-02"))
}

// ReturnBook clears the loan state and removes the ID from the
// borrower's list. If the borrower's user record is gone the list
// update is skipped but the book is still returned. Due dates are
// informational only; late returns are not special.
func (l *Library) ReturnBook(bookID string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	book := l.findBook(bookID)
	if book == nil {
		return MsgBookNotFound
	}
	if book.Available {
		return MsgBookNotBorrowed
	}

	if user := l.findUser(book.Borrower); user != nil {
		user.RemoveBorrowedBook(bookID)
	}
	book.Available = true
	book.Borrower = ""
	book.DueDate = nil
	l.persist()

	return MsgBookReturned
}

// RateBook records the user's rating on the book. Out-of-range values
// are silently ignored by the book, but the dataset is persisted
// either way.
func (l *Library) RateBook(bookID, username string, rating int) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	book := l.findBook(bookID)
	if book == nil {
		return MsgBookNotFound
	}
	book.AddRating(username, rating)
	l.persist()
	return MsgRatingSubmitted
}

// AddBook appends a new book to the catalog. Returns false if the ID
// is already in use.
func (l *Library) AddBook(id, title, author, genre string, year int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.findBook(id) != nil {
		return false
	}
	l.books = append(l.books, NewBook(id, title, author, genre, year))
	l.persist()
	return true
}

// RemoveBook deletes the book and purges its ID from every user's
// borrowed list, not just the recorded borrower's.
func (l *Library) RemoveBook(bookID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	book := l.findBook(bookID)
	if book == nil {
		return false
	}
	for _, u := range l.users {
		u.RemoveBorrowedBook(bookID)
	}
	for i, b := range l.books {
		if b == book {
			l.books = append(l.books[:i], l.books[i+1:]...)
			break
		}
	}
	l.persist()
	return true
}

// GetAllBooks returns an independent snapshot of the catalog.
func (l *Library) GetAllBooks() []*Book {
	l.mu.Lock()
	defer l.mu.Unlock()

	books := make([]*Book, len(l.books))
	for i, b := range l.books {
		books[i] = b.Clone()
	}
	return books
}

// GetAllUsers returns an independent snapshot of the accounts.
func (l *Library) GetAllUsers() []*User {
	l.mu.Lock()
	defer l.mu.Unlock()

	users := make([]*User, len(l.users))
	for i, u := range l.users {
		users[i] = u.Clone()
	}
	return users
}

// GetUser returns a copy of the named account, or nil.
func (l *Library) GetUser(username string) *User {
	l.mu.Lock()
	defer l.mu.Unlock()

	if u := l.findUser(username); u != nil {
		return u.Clone()
	}
	return nil
}

// SetUserActive toggles the account's active flag. Returns false if
// the user does not exist.
func (l *Library) SetUserActive(username string, active bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	user := l.findUser(username)
	if user == nil {
		return false
	}
	user.Active = active
	l.persist()
	return true
}

// UpdateProfile replaces the user's full name and email.
func (l *Library) UpdateProfile(username, fullName, email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	user := l.findUser(username)
	if user == nil {
		return false
	}
	user.FullName = fullName
	user.Email = email
	l.persist()
	return true
}

// ChangePassword replaces the user's password hash.
func (l *Library) ChangePassword(username, newPassword string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	user := l.findUser(username)
	if user == nil {
		return false
	}
	if err := user.SetPassword(newPassword); err != nil {
		l.logger.Error("hash password", "user", username, "err", err)
		return false
	}
	l.persist()
	return true
}
