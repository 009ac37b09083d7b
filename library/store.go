package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists the whole (books, users) dataset in a single SQLite
// file. Save rewrites every table inside one transaction, so the file
// always holds the complete serialized state after each mutation; Load
// reads it all back at startup.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the snapshot file at path and applies
// the schema.
func OpenStore(path string) (*Store, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            genre TEXT NOT NULL,
            year INTEGER NOT NULL,
            available BOOLEAN NOT NULL DEFAULT 1,
            borrower TEXT NOT NULL DEFAULT '',
            due_date TEXT,
            avg_rating REAL NOT NULL DEFAULT 0,
            rating_count INTEGER NOT NULL DEFAULT 0,
            position INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS ratings (
            book_id TEXT NOT NULL REFERENCES books(id),
            username TEXT NOT NULL,
            rating INTEGER NOT NULL,
            PRIMARY KEY(book_id, username)
        );`,
		`CREATE TABLE IF NOT EXISTS users (
            username TEXT PRIMARY KEY,
            password_hash TEXT NOT NULL,
            full_name TEXT NOT NULL,
            email TEXT NOT NULL,
            is_admin BOOLEAN NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            position INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS borrowed (
            username TEXT NOT NULL REFERENCES users(username),
            book_id TEXT NOT NULL,
            position INTEGER NOT NULL,
            PRIMARY KEY(username, book_id)
        );`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Load reads the entire dataset. A freshly created file yields empty
// slices; catalog and registration order are preserved via the
// position columns.
func (s *Store) Load() ([]*Book, []*User, error) {
	books, byID, err := s.loadBooks()
	if err != nil {
		return nil, nil, err
	}
	if err := s.loadRatings(byID); err != nil {
		return nil, nil, err
	}
	users, byName, err := s.loadUsers()
	if err != nil {
		return nil, nil, err
	}
	if err := s.loadBorrowed(byName); err != nil {
		return nil, nil, err
	}
	return books, users, nil
}

func (s *Store) loadBooks() ([]*Book, map[string]*Book, error) {
	rows, err := s.db.Query(`SELECT id, title, author, genre, year, available, borrower, due_date, avg_rating, rating_count
        FROM books ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("load books: %w", err)
	}
	defer rows.Close()

	var books []*Book
	byID := make(map[string]*Book)
	for rows.Next() {
		b := &Book{Ratings: make(map[string]int)}
		var due sql.NullString
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.Year,
			&b.Available, &b.Borrower, &due, &b.AverageRating, &b.RatingCount); err != nil {
			return nil, nil, fmt.Errorf("scan book: %w", err)
		}
		if due.Valid {
			t, err := time.Parse(time.RFC3339Nano, due.String)
			if err != nil {
				return nil, nil, fmt.Errorf("parse due date for %s: %w", b.ID, err)
			}
			b.DueDate = &t
		}
		books = append(books, b)
		byID[b.ID] = b
	}
	return books, byID, rows.Err()
}

func (s *Store) loadRatings(byID map[string]*Book) error {
	rows, err := s.db.Query(`SELECT book_id, username, rating FROM ratings`)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID, username string
		var rating int
		if err := rows.Scan(&bookID, &username, &rating); err != nil {
			return fmt.Errorf("scan rating: %w", err)
		}
		if b, ok := byID[bookID]; ok {
			b.Ratings[username] = rating
		}
	}
	return rows.Err()
}

func (s *Store) loadUsers() ([]*User, map[string]*User, error) {
	rows, err := s.db.Query(`SELECT username, password_hash, full_name, email, is_admin, is_active
        FROM users ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	var users []*User
	byName := make(map[string]*User)
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Admin, &u.Active); err != nil {
			return nil, nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
		byName[u.Username] = u
	}
	return users, byName, rows.Err()
}

func (s *Store) loadBorrowed(byName map[string]*User) error {
	rows, err := s.db.Query(`SELECT username, book_id FROM borrowed ORDER BY username, position`)
	if err != nil {
		return fmt.Errorf("load borrowed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var username, bookID string
		if err := rows.Scan(&username, &bookID); err != nil {
			return fmt.Errorf("scan borrowed: %w", err)
		}
		if u, ok := byName[username]; ok {
			u.BorrowedBooks = append(u.BorrowedBooks, bookID)
		}
	}
	return rows.Err()
}

// Save replaces the stored dataset with the given collections, all in
// one transaction.
func (s *Store) Save(books []*Book, users []*User) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	// Child tables go first to satisfy foreign keys.
	for _, table := range []string{"ratings", "borrowed", "books", "users"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, b := range books {
		var due any
		if b.DueDate != nil {
			due = b.DueDate.Format(time.RFC3339Nano)
		}
		if _, err := tx.Exec(`INSERT INTO books(id, title, author, genre, year, available, borrower, due_date, avg_rating, rating_count, position)
            VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
			b.ID, b.Title, b.Author, b.Genre, b.Year, b.Available, b.Borrower, due, b.AverageRating, b.RatingCount, i); err != nil {
			return fmt.Errorf("save book %s: %w", b.ID, err)
		}
		for user, rating := range b.Ratings {
			if _, err := tx.Exec(`INSERT INTO ratings(book_id, username, rating) VALUES(?,?,?)`,
				b.ID, user, rating); err != nil {
				return fmt.Errorf("save rating for %s: %w", b.ID, err)
			}
		}
	}

	for i, u := range users {
		if _, err := tx.Exec(`INSERT INTO users(username, password_hash, full_name, email, is_admin, is_active, position)
            VALUES(?,?,?,?,?,?,?)`,
			u.Username, u.PasswordHash, u.FullName, u.Email, u.Admin, u.Active, i); err != nil {
			return fmt.Errorf("save user %s: %w", u.Username, err)
		}
		for j, bookID := range u.BorrowedBooks {
			if _, err := tx.Exec(`INSERT INTO borrowed(username, book_id, position) VALUES(?,?,?)`,
				u.Username, bookID, j); err != nil {
				return fmt.Errorf("save borrowed %s/%s: %w", u.Username, bookID, err)
			}
		}
	}

	return tx.Commit()
}
