// Command import_catalog bulk-loads books into the library data file
// from a CSV with columns: ID,Title,Author,Genre,Year. A header row is
// detected and skipped. Existing book IDs are reported and left alone.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Lab80p/Library-management-project/library"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <books.csv> [data-file]\n", os.Args[0])
		os.Exit(2)
	}
	csvPath := os.Args[1]
	dataFile := "library.db"
	if len(os.Args) == 3 {
		dataFile = os.Args[2]
	}

	store, err := library.OpenStore(dataFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data file: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	lib, err := library.NewLibrary(store, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading library: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5

	successCount := 0
	errorCount := 0
	line := 0

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			fmt.Fprintf(os.Stderr, "Line %d: %v\n", line, err)
			errorCount++
			continue
		}
		if line == 1 && strings.EqualFold(record[0], "id") {
			continue // header row
		}

		id, title, author, genre := record[0], record[1], record[2], record[3]
		year, err := strconv.Atoi(strings.TrimSpace(record[4]))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Line %d: invalid year %q\n", line, record[4])
			errorCount++
			continue
		}

		fmt.Printf("Importing: %s by %s... ", title, author)
		if !lib.AddBook(id, title, author, genre, year) {
			fmt.Println("SKIPPED (ID already exists)")
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %s)\n", id)
		successCount++
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Skipped or failed: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nCatalog:")
		fmt.Printf("%-10s %-50s %-30s\n", "ID", "Title", "Author")
		fmt.Println(strings.Repeat("-", 92))
		for _, book := range lib.GetAllBooks() {
			fmt.Printf("%-10s %-50s %-30s\n", book.ID, truncateString(book.Title, 50), truncateString(book.Author, 30))
		}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
