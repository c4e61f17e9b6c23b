package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// TestSubscriptionFlow creates subscriptions and projects them into a month's
// budgets, covering duplicates, out-of-window billing dates and bad IDs.
func TestSubscriptionFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.newUser(t, "streamer@example.com")

	monthID := app.createMonth(t, token)

	// A budget already named Spotify makes that subscription a duplicate
	app.createBudget(t, token, monthID, "Spotify", 12)

	subIDs := make(map[string]float64)
	for _, payload := range []string{
		`{"name":"Netflix","amount":15.99,"frequency":"monthly","next_billing_date":"2026-06-05T00:00:00Z"}`,
		`{"name":"Gym","amount":600,"frequency":"yearly","next_billing_date":"2026-09-01T00:00:00Z"}`,
		`{"name":"Spotify","amount":11.99,"frequency":"monthly"}`,
	} {
		rec := app.request("POST", "/api/v1/subscriptions", payload, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("creating subscription failed: %d %s", rec.Code, rec.Body.String())
		}
		sub := parseJSON(t, rec)["subscription"].(map[string]interface{})
		if sub["status"] != "active" {
			t.Errorf("expected new subscription to default to active, got %v", sub["status"])
		}
		subIDs[sub["name"].(string)] = sub["id"].(float64)
	}

	// Convert: Netflix bills inside June, Gym bills in September, Spotify
	// collides with the existing budget, and 9999 does not exist.
	rec := app.request("POST", "/api/v1/subscriptions/convert-to-budgets",
		fmt.Sprintf(`{"monthly_overview_id":%.0f,"start_date":"2026-06-01T00:00:00Z","end_date":"2026-06-30T23:59:59Z","subscription_ids":[%.0f,%.0f,%.0f,9999]}`,
			monthID, subIDs["Netflix"], subIDs["Gym"], subIDs["Spotify"]), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("conversion failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)["result"].(map[string]interface{})
	if result["created"].(float64) != 1 {
		t.Errorf("expected 1 budget created, got %v", result["created"])
	}
	if result["skipped"].(float64) != 2 {
		t.Errorf("expected 2 skipped, got %v", result["skipped"])
	}
	if errs := result["errors"].([]interface{}); len(errs) != 1 {
		t.Errorf("expected 1 error for the unknown ID, got %d", len(errs))
	}

	// The generated budget carries the subscription's monthly cost
	rec = app.request("GET", fmt.Sprintf("/api/v1/months/%.0f/budgets", monthID), "", token)
	page := parseJSON(t, rec)
	var netflixAmount float64
	for _, item := range page["data"].([]interface{}) {
		budget := item.(map[string]interface{})
		if budget["name"] == "Netflix" {
			netflixAmount = budget["amount"].(float64)
		}
	}
	if !almostEqual(netflixAmount, 15.99) {
		t.Errorf("expected Netflix budget at 15.99, got %v", netflixAmount)
	}

	// Converting again skips the now-existing Netflix budget too
	rec = app.request("POST", "/api/v1/subscriptions/convert-to-budgets",
		fmt.Sprintf(`{"monthly_overview_id":%.0f,"start_date":"2026-06-01T00:00:00Z","end_date":"2026-06-30T23:59:59Z","subscription_ids":[%.0f]}`,
			monthID, subIDs["Netflix"]), token)
	result = parseJSON(t, rec)["result"].(map[string]interface{})
	if result["created"].(float64) != 0 || result["skipped"].(float64) != 1 {
		t.Errorf("expected repeat conversion to skip, got %v", result)
	}

	// Cancel Netflix and filter the listing by status
	rec = app.request("PUT", fmt.Sprintf("/api/v1/subscriptions/%.0f", subIDs["Netflix"]),
		`{"status":"cancelled"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancelling subscription failed: %d %s", rec.Code, rec.Body.String())
	}
	if sub := parseJSON(t, rec)["subscription"].(map[string]interface{}); sub["status"] != "cancelled" {
		t.Errorf("expected cancelled status, got %v", sub["status"])
	}

	rec = app.request("GET", "/api/v1/subscriptions?status=active", "", token)
	page = parseJSON(t, rec)
	if page["total_items"].(float64) != 2 {
		t.Errorf("expected 2 active subscriptions, got %v", page["total_items"])
	}

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/subscriptions/%.0f", subIDs["Gym"]), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("deleting subscription failed: %d %s", rec.Code, rec.Body.String())
	}
	if body := parseJSON(t, rec); body["message"] != "Subscription deleted" {
		t.Errorf("unexpected delete message: %v", body["message"])
	}
}
