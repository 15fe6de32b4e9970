package database

import (
	"bufio"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const denylistURL = "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en"

// baselineDenylist keeps word selection safe even when the remote list
// cannot be fetched at startup.
var baselineDenylist = []string{
	"damn", "hell", "crap", "piss", "bastard", "bitch", "shit", "fuck",
	"whore", "slut", "dick", "cock", "pussy", "nigger", "faggot", "cunt",
	"sex", "sexy", "nude", "naked", "porn", "rape", "drug", "cocaine",
	"heroin", "meth", "suicide", "kill", "murder",
}

// SeedDenylist populates the denylist_words table on first run. It prefers
// the maintained remote list and falls back to the embedded baseline when
// the download fails; selection must never run with an empty denylist.
func (db *DB) SeedDenylist() error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM denylist_words").Scan(&count); err != nil {
		return fmt.Errorf("failed to check denylist count: %w", err)
	}
	if count > 0 {
		log.Printf("Denylist already populated with %d words", count)
		return nil
	}

	words, err := fetchDenylist()
	if err != nil {
		log.Printf("Denylist download failed, seeding embedded baseline: %v", err)
		words = baselineDenylist
	}

	added, err := db.insertDenylistWords(words)
	if err != nil {
		return err
	}
	log.Printf("Denylist seeded with %d words", added)
	return nil
}

// LoadDenylistWords returns every denied word for the in-memory selector
// denylist.
func (db *DB) LoadDenylistWords() ([]string, error) {
	rows, err := db.Query("SELECT word FROM denylist_words")
	if err != nil {
		return nil, fmt.Errorf("failed to load denylist: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func fetchDenylist() ([]string, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(denylistURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download denylist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status code from denylist URL: %d", resp.StatusCode)
	}

	var words []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read denylist: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("denylist download was empty")
	}
	return words, nil
}

func (db *DB) insertDenylistWords(words []string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Tx.Prepare(db.Dialect.RewriteQuery("INSERT INTO denylist_words (word) VALUES (?)"))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	added := 0
	seen := make(map[string]bool)
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		if _, err := stmt.Exec(word); err != nil {
			return 0, fmt.Errorf("failed to insert word: %w", err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit denylist seed: %w", err)
	}
	return added, nil
}
