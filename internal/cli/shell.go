package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Lab80p/Library-management-project/library"
)

func newShellCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, store, cfg, err := openLibrary(cmd, opts)
			if err != nil {
				return err
			}
			defer store.Close()

			sh := &shell{
				lib:       lib,
				sessions:  library.NewSessionManager(0),
				exportDir: cfg.ExportDir,
				in:        bufio.NewScanner(os.Stdin),
				logger:    loggerFromContext(cmd.Context()),
			}
			sh.run()
			return nil
		},
	}
}

// shell drives the interactive loop. It holds at most one open
// session; all state changes go through the Library service.
type shell struct {
	lib       *library.Library
	sessions  *library.SessionManager
	session   *library.Session
	exportDir string
	in        *bufio.Scanner
	logger    *charmlog.Logger
}

// readPassword reads a masked password from the terminal.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(b)), nil
}

// prompt prints label and reads one trimmed line. ok is false on EOF.
func (sh *shell) prompt(label string) (string, bool) {
	fmt.Print(label)
	if !sh.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(sh.in.Text()), true
}

func (sh *shell) run() {
	fmt.Println("Library Management System")
	sh.printHelp()

	for {
		// Expired sessions force a logout before the next command.
		if sh.session != nil && sh.sessions.Get(sh.session.ID) == nil {
			fmt.Println("Session expired, please log in again.")
			sh.session = nil
		}

		who := "guest"
		if sh.session != nil {
			who = sh.session.Username
		}
		cmd, ok := sh.prompt(fmt.Sprintf("\n%s> ", who))
		if !ok {
			return
		}

		switch cmd {
		case "help":
			sh.printHelp()
		case "exit":
			fmt.Println("Goodbye!")
			return
		case "export":
			sh.handleExport()
		case "login":
			sh.handleLogin()
		case "register":
			sh.handleRegister()
		case "search":
			sh.handleSearch()
		case "books":
			sh.handleListBooks()
		case "":
			// Ignore blank lines.
		default:
			if sh.session == nil {
				fmt.Println("Please log in first. Type 'help' for commands.")
				continue
			}
			sh.dispatchAuthed(cmd)
		}
	}
}

func (sh *shell) dispatchAuthed(cmd string) {
	switch cmd {
	case "borrow":
		sh.handleBorrow()
	case "return":
		sh.handleReturn()
	case "rate":
		sh.handleRate()
	case "account":
		sh.handleAccount()
	case "password":
		sh.handleChangePassword()
	case "profile":
		sh.handleUpdateProfile()
	case "logout":
		sh.sessions.Close(sh.session.ID)
		sh.session = nil
		fmt.Println("Logged out.")
	case "add book", "remove book", "users", "toggle user", "reset password":
		if !sh.session.Admin {
			fmt.Println("Admin privileges required.")
			return
		}
		sh.dispatchAdmin(cmd)
	default:
		fmt.Println("Unknown command. Type 'help' for the list.")
	}
}

func (sh *shell) dispatchAdmin(cmd string) {
	switch cmd {
	case "add book":
		sh.handleAddBook()
	case "remove book":
		sh.handleRemoveBook()
	case "users":
		sh.handleListUsers()
	case "toggle user":
		sh.handleToggleUser()
	case "reset password":
		sh.handleResetPassword()
	}
}

func (sh *shell) printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  Anyone:   login, register, search, books, export, help, exit")
	fmt.Println("  Users:    borrow, return, rate, account, password, profile, logout")
	fmt.Println("  Admins:   add book, remove book, users, toggle user, reset password")
}

func (sh *shell) handleLogin() {
	if sh.session != nil {
		fmt.Println("Already logged in. Use 'logout' first.")
		return
	}
	username, ok := sh.prompt("Username: ")
	if !ok {
		return
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}

	user := sh.lib.Login(username, password)
	if user == nil {
		fmt.Println("Invalid login!")
		return
	}
	sh.session = sh.sessions.Open(user)
	sh.logger.Debug("session opened", "user", user.Username, "session", sh.session.ID)

	role := "User"
	if user.Admin {
		role = "Admin"
	}
	fmt.Printf("Welcome, %s (%s)!\n", user.FullName, role)
}

func (sh *shell) handleRegister() {
	username, ok := sh.prompt("Username: ")
	if !ok {
		return
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	fullName, ok := sh.prompt("Full name: ")
	if !ok {
		return
	}
	email, ok := sh.prompt("Email: ")
	if !ok {
		return
	}
	adminAns, ok := sh.prompt("Admin privileges? [y/N]: ")
	if !ok {
		return
	}
	admin := strings.EqualFold(adminAns, "y") || strings.EqualFold(adminAns, "yes")

	if sh.lib.Register(username, password, fullName, email, admin) {
		fmt.Println("Registration successful!")
	} else {
		fmt.Println("Username already exists!")
	}
}

func (sh *shell) handleSearch() {
	query, ok := sh.prompt("Query: ")
	if !ok {
		return
	}
	books := sh.lib.SearchBooks(query)
	if len(books) == 0 {
		fmt.Printf("No books found matching '%s'.\n", query)
		return
	}
	fmt.Printf("Found %d book(s):\n", len(books))
	printBookTable(books)
}

func (sh *shell) handleListBooks() {
	books := sh.lib.GetAllBooks()
	if len(books) == 0 {
		fmt.Println("No books in library.")
		return
	}
	printBookTable(books)
}

func printBookTable(books []*library.Book) {
	fmt.Printf("%-10s %-35s %-25s %-15s %-6s %-10s %-15s %s\n",
		"ID", "Title", "Author", "Genre", "Year", "Status", "Due", "Rating")
	fmt.Println(strings.Repeat("-", 130))
	for _, b := range books {
		status := "Available"
		due := ""
		if !b.Available {
			status = "Borrowed"
			if b.DueDate != nil {
				due = b.DueDate.Format("2006-01-02")
			}
		}
		fmt.Printf("%-10s %-35s %-25s %-15s %-6d %-10s %-15s ★%.1f (%d)\n",
			b.ID,
			truncateString(b.Title, 35),
			truncateString(b.Author, 25),
			truncateString(b.Genre, 15),
			b.Year, status, due, b.AverageRating, b.RatingCount)
	}
}

func (sh *shell) handleBorrow() {
	bookID, ok := sh.prompt("Book ID: ")
	if !ok {
		return
	}
	fmt.Println(sh.lib.BorrowBook(bookID, sh.session.Username))
}

func (sh *shell) handleReturn() {
	bookID, ok := sh.prompt("Book ID: ")
	if !ok {
		return
	}
	// Only the borrower may hand a book back through the shell.
	book := findBookByID(sh.lib.GetAllBooks(), bookID)
	if book != nil && !book.Available && book.Borrower != sh.session.Username {
		fmt.Println("That book is borrowed by someone else.")
		return
	}
	fmt.Println(sh.lib.ReturnBook(bookID))
}

func (sh *shell) handleRate() {
	bookID, ok := sh.prompt("Book ID: ")
	if !ok {
		return
	}
	ratingStr, ok := sh.prompt("Rating (1-5): ")
	if !ok {
		return
	}
	rating, err := strconv.Atoi(ratingStr)
	if err != nil {
		fmt.Printf("Invalid rating: %s\n", ratingStr)
		return
	}
	fmt.Println(sh.lib.RateBook(bookID, sh.session.Username, rating))
}

func (sh *shell) handleAccount() {
	user := sh.lib.GetUser(sh.session.Username)
	if user == nil {
		fmt.Println("Account no longer exists.")
		return
	}
	role := "User"
	if user.Admin {
		role = "Admin"
	}
	status := "Active"
	if !user.Active {
		status = "Inactive"
	}
	fmt.Printf("Username: %s\nName: %s\nEmail: %s\nRole: %s\nStatus: %s\n",
		user.Username, user.FullName, user.Email, role, status)

	if len(user.BorrowedBooks) == 0 {
		fmt.Println("No borrowed books.")
		return
	}
	fmt.Println("Borrowed books:")
	books := sh.lib.GetAllBooks()
	for _, id := range user.BorrowedBooks {
		if b := findBookByID(books, id); b != nil {
			due := ""
			if b.DueDate != nil {
				due = " (due " + b.DueDate.Format("2006-01-02") + ")"
			}
			fmt.Printf("  %s - %s by %s%s\n", b.ID, b.Title, b.Author, due)
		} else {
			fmt.Printf("  %s\n", id)
		}
	}
}

func (sh *shell) handleChangePassword() {
	newPass, err := readPassword("New password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	if newPass == "" {
		fmt.Println("Error: Password cannot be empty")
		return
	}
	if sh.lib.ChangePassword(sh.session.Username, newPass) {
		fmt.Println("Password changed!")
	} else {
		fmt.Println("Error changing password.")
	}
}

func (sh *shell) handleUpdateProfile() {
	fullName, ok := sh.prompt("Full name: ")
	if !ok {
		return
	}
	email, ok := sh.prompt("Email: ")
	if !ok {
		return
	}
	if sh.lib.UpdateProfile(sh.session.Username, fullName, email) {
		fmt.Println("Information updated!")
	} else {
		fmt.Println("Error updating profile.")
	}
}

func (sh *shell) handleAddBook() {
	id, ok := sh.prompt("Book ID: ")
	if !ok {
		return
	}
	title, ok := sh.prompt("Title: ")
	if !ok {
		return
	}
	author, ok := sh.prompt("Author: ")
	if !ok {
		return
	}
	genre, ok := sh.prompt("Genre: ")
	if !ok {
		return
	}
	yearStr, ok := sh.prompt("Year: ")
	if !ok {
		return
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		fmt.Println("Invalid year!")
		return
	}

	if sh.lib.AddBook(id, title, author, genre, year) {
		fmt.Println("Book added!")
	} else {
		fmt.Println("Book ID already exists!")
	}
}

func (sh *shell) handleRemoveBook() {
	bookID, ok := sh.prompt("Book ID: ")
	if !ok {
		return
	}
	if sh.lib.RemoveBook(bookID) {
		fmt.Println("Book removed successfully!")
	} else {
		fmt.Println("Failed to remove book!")
	}
}

func (sh *shell) handleListUsers() {
	users := sh.lib.GetAllUsers()
	fmt.Printf("%-20s %-30s %-30s %-8s %-8s %s\n", "Username", "Name", "Email", "Role", "Active", "Borrowed")
	fmt.Println(strings.Repeat("-", 110))
	for _, u := range users {
		role := "User"
		if u.Admin {
			role = "Admin"
		}
		fmt.Printf("%-20s %-30s %-30s %-8s %-8t %d\n",
			u.Username,
			truncateString(u.FullName, 30),
			truncateString(u.Email, 30),
			role, u.Active, len(u.BorrowedBooks))
	}
}

func (sh *shell) handleToggleUser() {
	username, ok := sh.prompt("Username: ")
	if !ok {
		return
	}
	user := sh.lib.GetUser(username)
	if user == nil {
		fmt.Printf("Error: User '%s' not found\n", username)
		return
	}
	if sh.lib.SetUserActive(username, !user.Active) {
		state := "activated"
		if user.Active {
			state = "deactivated"
		}
		fmt.Printf("User '%s' %s.\n", username, state)
	}
}

func (sh *shell) handleResetPassword() {
	username, ok := sh.prompt("Username: ")
	if !ok {
		return
	}
	if sh.lib.GetUser(username) == nil {
		fmt.Printf("Error: User '%s' not found\n", username)
		return
	}
	newPass, err := readPassword(fmt.Sprintf("New password for %s: ", username))
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	if newPass == "" {
		fmt.Println("Error: Password cannot be empty")
		return
	}
	if sh.lib.ChangePassword(username, newPass) {
		fmt.Printf("Password reset for %s.\n", username)
	}
}

func (sh *shell) handleExport() {
	if err := sh.lib.Export(sh.exportDir); err != nil {
		sh.logger.Error("export data", "err", err)
		fmt.Printf("Export failed: %v\n", err)
		return
	}
	fmt.Printf("Data exported to %s.\n", sh.exportDir)
}

func findBookByID(books []*library.Book, id string) *library.Book {
	for _, b := range books {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
