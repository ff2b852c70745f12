//go:build ignore
// +build ignore

// Package main provides a manual concurrency stress test for the book issue API.
//
// Usage:
//
//	go run ./scripts/concurrency_test.go <book_id> <user1_id> [user2_id ...]
//
// Or use the convenience environment variables:
//
//	BOOK_ID=<uuid>  USER_IDS=<uuid1>,<uuid2>,...  go run ./scripts/concurrency_test.go
//
// What it does:
//  1. Fires N goroutines (one per user) all attempting to issue the same book simultaneously.
//  2. Prints how many got an issue vs. were rejected with "no copies available"
//     or "active loan exists".
//  3. Issues recorded must never exceed the book's available copies — the
//     conditional-decrement reserve makes overselling impossible.
//
// Prerequisites:
//   - Server must be running and DATABASE_URL must be set for it.
//   - At least 1 book with some copies and N users without active loans must exist.
//   - AUTH_TOKEN must hold a valid bearer token for an authenticated user.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const defaultServerAddr = "http://localhost:8080"

type issueResult struct {
	UserID     string
	StatusCode int
	ErrMsg     string
	Err        error
}

func main() {
	serverAddr := os.Getenv("SERVER_ADDR")
	if serverAddr == "" {
		serverAddr = defaultServerAddr
	}
	token := os.Getenv("AUTH_TOKEN")

	// Collect book_id and user_ids from cli args or env.
	bookID := os.Getenv("BOOK_ID")
	userIDsEnv := os.Getenv("USER_IDS")

	var userIDs []string
	if userIDsEnv != "" {
		userIDs = strings.Split(userIDsEnv, ",")
	}

	// Support positional args: script <book_id> [user_ids...]
	args := os.Args[1:]
	if len(args) >= 1 {
		bookID = args[0]
	}
	if len(args) >= 2 {
		userIDs = args[1:]
	}

	if bookID == "" {
		log.Fatal("Usage: BOOK_ID=<uuid> USER_IDS=<u1,u2,...> go run ./scripts/concurrency_test.go\n" +
			"  or: go run ./scripts/concurrency_test.go <book_id> <user1_id> [user2_id ...]")
	}
	if len(userIDs) == 0 {
		log.Fatal("At least one user ID must be provided via USER_IDS env or positional args")
	}

	fmt.Printf("=== Issue Concurrency Test ===\n")
	fmt.Printf("Server : %s\n", serverAddr)
	fmt.Printf("Book   : %s\n", bookID)
	fmt.Printf("Users  : %d\n\n", len(userIDs))

	results := make([]issueResult, len(userIDs))
	var wg sync.WaitGroup

	// Fire all goroutines simultaneously using a barrier.
	start := make(chan struct{})

	for i, uid := range userIDs {
		wg.Add(1)
		go func(idx int, userID string) {
			defer wg.Done()
			<-start // wait for the barrier
			results[idx] = attemptIssue(serverAddr, token, bookID, strings.TrimSpace(userID))
		}(i, uid)
	}

	// Release all goroutines at once.
	fmt.Println("Firing all requests simultaneously...")
	close(start)

	wg.Wait()
	fmt.Println("All requests completed.\n")

	// Tally results.
	var issued, unavailable, conflicts, failures int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failures++
			fmt.Printf("  [ERR ] user=%-38s err=%v\n", r.UserID, r.Err)
		case r.StatusCode == http.StatusCreated:
			issued++
			fmt.Printf("  [ISSU] user=%-38s status=%d\n", r.UserID, r.StatusCode)
		case r.StatusCode == http.StatusConflict && strings.Contains(r.ErrMsg, "no copies"):
			unavailable++
			fmt.Printf("  [FULL] user=%-38s status=%d %s\n", r.UserID, r.StatusCode, r.ErrMsg)
		case r.StatusCode == http.StatusConflict:
			conflicts++
			fmt.Printf("  [CONF] user=%-38s status=%d %s\n", r.UserID, r.StatusCode, r.ErrMsg)
		default:
			failures++
			fmt.Printf("  [FAIL] user=%-38s status=%d %s\n", r.UserID, r.StatusCode, r.ErrMsg)
		}
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Issued       : %d\n", issued)
	fmt.Printf("No copies    : %d\n", unavailable)
	fmt.Printf("Other 409    : %d\n", conflicts)
	fmt.Printf("Failures     : %d\n", failures)
	fmt.Printf("Total        : %d\n\n", len(userIDs))

	// Verify invariant: the reserve operation is a single conditional UPDATE
	// (available_quantity > 0), so the number of issued responses can never
	// exceed the copies that were available when the stampede started.
	fmt.Println("--- Invariant Check ---")
	fmt.Printf("Issues recorded: %d — if this is ≤ the book's available copies, the system is correct.\n", issued)

	if failures > 0 {
		fmt.Printf("\n[WARNING] %d request(s) failed — check server logs for details.\n", failures)
		os.Exit(1)
	}
}

// attemptIssue sends POST /api/books/issue for the given user and parses the
// JSON response.
func attemptIssue(serverAddr, token, bookID, userID string) issueResult {
	url := fmt.Sprintf("%s/api/books/issue", serverAddr)
	body := fmt.Sprintf(`{"user_id":"%s","book_id":"%s","issue_type":"individual"}`, userID, bookID)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		return issueResult{UserID: userID, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return issueResult{UserID: userID, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return issueResult{UserID: userID, StatusCode: resp.StatusCode, Err: fmt.Errorf("bad JSON: %s", raw)}
	}

	errMsg, _ := parsed["error"].(string)
	return issueResult{
		UserID:     userID,
		StatusCode: resp.StatusCode,
		ErrMsg:     errMsg,
	}
}
