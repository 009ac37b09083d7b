package library

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Export file names, fixed by convention.
const (
	AdminsExportFile = "admins.csv"
	BooksExportFile  = "books.csv"
	UsersExportFile  = "users.csv"
)

// Export writes three comma-delimited snapshots (admins, catalog,
// non-admin users) into dir for human inspection. The projection is
// one-way; nothing ever reads these files back. The Password column
// carries the stored bcrypt hash.
func (l *Library) Export(dir string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := exportAdmins(filepath.Join(dir, AdminsExportFile), l.users); err != nil {
		return err
	}
	if err := exportBooks(filepath.Join(dir, BooksExportFile), l.books); err != nil {
		return err
	}
	return exportUsers(filepath.Join(dir, UsersExportFile), l.users)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func exportAdmins(path string, users []*User) error {
	var rows [][]string
	for _, u := range users {
		if !u.Admin {
			continue
		}
		rows = append(rows, []string{
			u.Username, u.PasswordHash, u.FullName, u.Email, strconv.FormatBool(u.Active),
		})
	}
	return writeCSV(path, []string{"Username", "Password", "Full Name", "Email", "Active"}, rows)
}

func exportBooks(path string, books []*Book) error {
	var rows [][]string
	for _, b := range books {
		due := ""
		if b.DueDate != nil {
			due = b.DueDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			b.ID, b.Title, b.Author, b.Genre,
			strconv.Itoa(b.Year),
			strconv.FormatBool(b.Available),
			b.Borrower,
			due,
			fmt.Sprintf("%.2f", b.AverageRating),
			strconv.Itoa(b.RatingCount),
		})
	}
	return writeCSV(path, []string{"ID", "Title", "Author", "Genre", "Year", "Available",
		"Borrower", "Due Date", "Average Rating", "Rating Count"}, rows)
}

func exportUsers(path string, users []*User) error {
	var rows [][]string
	for _, u := range users {
		if u.Admin {
			continue
		}
		rows = append(rows, []string{
			u.Username, u.PasswordHash, u.FullName, u.Email,
			strconv.FormatBool(u.Active),
			strings.Join(u.BorrowedBooks, ";"),
		})
	}
	return writeCSV(path, []string{"Username", "Password", "Full Name", "Email", "Active", "Borrowed Books"}, rows)
}
