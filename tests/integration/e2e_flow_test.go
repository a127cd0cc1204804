//go:build integration

// End-to-end API flow tests that verify the complete renter journey through
// the live docker-compose server: finish a rental, earn points, check the
// summary, and spend the points on a reward.
package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_CompleteEarnRedeemFlow tests the complete happy path flow:
// 1. Complete a booking with a recorded distance via API
// 2. Check the loyalty summary reflects the earned points
// 3. Redeem a reward via API
// 4. Verify the summary reflects the deduction and the ledger entries
func TestE2E_CompleteEarnRedeemFlow(t *testing.T) {
	cleanupTables(t)

	userID := createTestUser(t, 0, "Bronze")
	carID := createTestCar(t, "RENTED")
	bookingID := createTestBooking(t, userID, carID, "CONFIRMED")

	// Step 1: Complete the booking via API
	t.Log("Step 1: Completing booking via API")
	completeResp, err := postJSON(t, formatURL("/api/bookings/"+bookingID+"/complete"), userID,
		map[string]interface{}{"kilometers": 35})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, completeResp.StatusCode, "Should complete booking successfully")

	var completeData map[string]interface{}
	require.NoError(t, readJSONResponse(completeResp, &completeData))

	reward, ok := completeData["loyalty_reward"].(map[string]interface{})
	require.True(t, ok, "loyalty_reward should be an object")
	// 35km earns floor(60 + 4 x 15) = 120 points
	assert.Equal(t, float64(120), reward["points_earned"], "Points earned should match the formula")
	assert.Equal(t, "silver", reward["distance_band"])

	// Step 2: Check the loyalty summary via API
	t.Log("Step 2: Checking loyalty summary via API")
	summaryResp, err := getJSON(t, formatURL("/api/loyalty"), userID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, summaryResp.StatusCode)

	var summary map[string]interface{}
	require.NoError(t, readJSONResponse(summaryResp, &summary))
	assert.Equal(t, float64(120), summary["balance"], "Summary balance should reflect the award")
	assert.Equal(t, "Bronze", summary["membership_tier"])

	// Step 3: Redeem a reward via API
	t.Log("Step 3: Redeeming discount-5 via API")
	redeemResp, err := postJSON(t, formatURL("/api/loyalty/redeem"), userID,
		map[string]string{"redemption_id": "discount-5"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, redeemResp.StatusCode, "Should redeem successfully")

	var redeemData map[string]interface{}
	require.NoError(t, readJSONResponse(redeemResp, &redeemData))
	redemption, ok := redeemData["redemption"].(map[string]interface{})
	require.True(t, ok, "redemption should be an object")
	assert.Equal(t, float64(100), redemption["points_deducted"])
	assert.Equal(t, float64(20), redemption["remaining_points"])

	// Step 4: Verify the ledger via the summary and the database
	t.Log("Step 4: Verifying final state")
	finalResp, err := getJSON(t, formatURL("/api/loyalty"), userID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, finalResp.StatusCode)

	require.NoError(t, readJSONResponse(finalResp, &summary))
	assert.Equal(t, float64(20), summary["balance"])

	transactions, ok := summary["transactions"].([]interface{})
	require.True(t, ok, "transactions should be an array")
	assert.Len(t, transactions, 2, "Both the award and the redemption should be in the history")

	assert.Equal(t, 20, sumTransactions(t, userID), "Ledger sum must equal the balance")

	t.Log("E2E flow completed successfully!")
}

// TestE2E_InsufficientPointsFlow tests a redemption the balance cannot cover:
// 1. Complete a short rental earning a few points
// 2. Attempt an expensive redemption - should fail with 400 and details
func TestE2E_InsufficientPointsFlow(t *testing.T) {
	cleanupTables(t)

	userID := createTestUser(t, 0, "Bronze")
	carID := createTestCar(t, "RENTED")
	bookingID := createTestBooking(t, userID, carID, "IN_PROGRESS")

	// Step 1: Complete a 10km rental (30 points)
	t.Log("Step 1: Completing a short rental")
	completeResp, err := postJSON(t, formatURL("/api/bookings/"+bookingID+"/complete"), userID,
		map[string]interface{}{"kilometers": 10})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, completeResp.StatusCode)
	completeResp.Body.Close()

	// Step 2: Attempt a 600-point redemption
	t.Log("Step 2: Attempting an unaffordable redemption")
	redeemResp, err := postJSON(t, formatURL("/api/loyalty/redeem"), userID,
		map[string]string{"redemption_id": "discount-40"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, redeemResp.StatusCode, "Should fail with 400")

	var errData map[string]interface{}
	require.NoError(t, readJSONResponse(redeemResp, &errData))
	assert.Equal(t, "insufficient points", errData["error"])
	assert.Equal(t, float64(600), errData["required"])
	assert.Equal(t, float64(30), errData["available"])

	// Balance untouched by the failed redemption
	points, _ := getUserFromDB(t, userID)
	assert.Equal(t, 30, points)

	t.Log("E2E insufficient points flow verified!")
}

// TestE2E_MultiplierFlow tests that an established member earns boosted points:
// 1. Seed a Silver member
// 2. Complete a rental and verify the 1.25x multiplier applied
func TestE2E_MultiplierFlow(t *testing.T) {
	cleanupTables(t)

	userID := createTestUser(t, 600, "Silver")
	carID := createTestCar(t, "RENTED")
	bookingID := createTestBooking(t, userID, carID, "CONFIRMED")

	t.Log("Completing rental as a Silver member")
	completeResp, err := postJSON(t, formatURL("/api/bookings/"+bookingID+"/complete"), userID,
		map[string]interface{}{"kilometers": 35})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, completeResp.StatusCode)

	var completeData map[string]interface{}
	require.NoError(t, readJSONResponse(completeResp, &completeData))
	reward, ok := completeData["loyalty_reward"].(map[string]interface{})
	require.True(t, ok)

	// floor(120 x 1.25) = 150
	assert.Equal(t, float64(120), reward["base_points"])
	assert.Equal(t, float64(1.25), reward["multiplier"])
	assert.Equal(t, float64(150), reward["points_earned"])
	assert.Equal(t, float64(750), reward["new_balance"])

	t.Log("E2E multiplier flow verified!")
}

// TestE2E_NonExistentBooking tests error handling for a missing booking.
func TestE2E_NonExistentBooking(t *testing.T) {
	cleanupTables(t)

	userID := createTestUser(t, 0, "Bronze")

	resp, err := postJSON(t, formatURL("/api/bookings/00000000-0000-0000-0000-000000000000/complete"), userID,
		map[string]interface{}{"kilometers": 10})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "Should return 404 for a missing booking")
	resp.Body.Close()
}

// TestE2E_ValidationErrors tests API-level input validation.
func TestE2E_ValidationErrors(t *testing.T) {
	cleanupTables(t)

	userID := createTestUser(t, 0, "Bronze")
	carID := createTestCar(t, "RENTED")
	bookingID := createTestBooking(t, userID, carID, "CONFIRMED")

	// Test 1: Negative distance
	t.Log("Test 1: Complete with negative kilometers")
	resp1, err := postJSON(t, formatURL("/api/bookings/"+bookingID+"/complete"), userID,
		map[string]interface{}{"kilometers": -5})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp1.StatusCode, "Should reject negative kilometers")
	resp1.Body.Close()

	// Test 2: Redeem with missing redemption_id
	t.Log("Test 2: Redeem with missing redemption_id")
	resp2, err := postJSON(t, formatURL("/api/loyalty/redeem"), userID, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode, "Should reject missing redemption_id")
	resp2.Body.Close()

	// Test 3: Redeem with blank redemption_id
	t.Log("Test 3: Redeem with blank redemption_id")
	resp3, err := postJSON(t, formatURL("/api/loyalty/redeem"), userID,
		map[string]string{"redemption_id": "   "})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode, "Should reject blank redemption_id")
	resp3.Body.Close()

	// Booking untouched after the rejected completion
	var status string
	err = testPool.QueryRow(t.Context(), "SELECT status FROM bookings WHERE id = $1", bookingID).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", status)

	t.Log("E2E validation errors verified!")
}
