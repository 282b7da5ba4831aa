package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/nilp12200/truckproject/internal/trucking/entity"
	"github.com/nilp12200/truckproject/internal/trucking/repository"
	"github.com/nilp12200/truckproject/internal/trucking/service"
	"github.com/nilp12200/truckproject/internal/trucking/testutil"
	"go.uber.org/zap"
)

func setupTruckingTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, zap.NewNop(), testutil.JWTSecret)
	handlers := NewHandlers(services)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api")
	api.POST("/truck-transaction", handlers.Transaction.Submit)
	api.GET("/truck-transaction/:truckNo", handlers.Transaction.Open)
	api.DELETE("/truck-transaction/detail/:detailId", handlers.Transaction.DeleteDetail)
	api.POST("/update-truck-status", handlers.Status.Advance)
	api.GET("/check-priority-status", handlers.Status.PriorityStatus)
	api.GET("/finished-plant", handlers.Status.FinishedPlant)
	api.GET("/trucks", handlers.Report.TrucksAwaitingCheckIn)
	api.GET("/checked-in-trucks", handlers.Report.CheckedInTrucks)
	api.GET("/truck-plant-quantities", handlers.Report.PlantQuantities)
	api.GET("/truck-find", handlers.Report.ActiveTrucks)
	api.GET("/fetch-remarks", handlers.Report.Remarks)
	api.GET("/truck-report", handlers.Report.Report)
	api.GET("/truck-report/export", handlers.Report.ExportReport)
	api.GET("/truck-schedule", handlers.Report.Schedule)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func itineraryRow(plant, slip string, qty float64, priority int) map[string]interface{} {
	return map[string]interface{}{
		"plant_name":      plant,
		"loading_slip_no": slip,
		"qty":             qty,
		"priority":        priority,
		"freight":         entity.FreightToPay,
	}
}

func submitBody(truckNo string, rows ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"truck_no":         truckNo,
		"transaction_date": "2026-08-01",
		"city_name":        "Nagpur",
		"deliver_point":    "Gate 2",
		"truck_weight":     18.5,
		"transporter":      "Shree Logistics",
		"amount_per_ton":   950,
		"rows":             rows,
	}
}

// submitItinerary posts a new itinerary and returns the transaction id.
func submitItinerary(t *testing.T, env *testutil.TestEnv, body map[string]interface{}) uint {
	t.Helper()
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/truck-transaction", body, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on submit, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	return uint(data["transaction_id"].(float64))
}

// advanceStatus performs a check-in or check-out, failing the test on any
// non-200 answer.
func advanceStatus(t *testing.T, env *testutil.TestEnv, truckNo, plant, action, invoice string) {
	t.Helper()
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/update-truck-status", map[string]interface{}{
		"truck_no":       truckNo,
		"plant_name":     plant,
		"action":         action,
		"invoice_number": invoice,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on %s at %s, got %d: %s", action, plant, w.Code, w.Body.String())
	}
}

// completeVisit checks a truck in and out at one plant.
func completeVisit(t *testing.T, env *testutil.TestEnv, truckNo, plant string) {
	t.Helper()
	advanceStatus(t, env, truckNo, plant, service.ActionCheckIn, "")
	advanceStatus(t, env, truckNo, plant, service.ActionCheckOut, "INV-"+plant)
}

// TestSubmitItineraryAtomicity verifies that a submission failing on an
// unresolved plant name mid-batch leaves zero persisted changes.
func TestSubmitItineraryAtomicity(t *testing.T) {
	env := setupTruckingTest(t)
	testutil.SeedPlant(t, env.DB, "PlantA")
	testutil.SeedPlant(t, env.DB, "PlantB")

	body := submitBody("MH12AB1234",
		itineraryRow("PlantA", "SLIP-1", 10, 1),
		itineraryRow("PlantB", "SLIP-2", 12, 2),
		itineraryRow("NoSuchPlant", "SLIP-3", 8, 3),
		itineraryRow("PlantA2", "SLIP-4", 5, 4),
	)
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/truck-transaction", body, testutil.DefaultTestToken())
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown plant, got %d: %s", w.Code, w.Body.String())
	}

	var headers, details int64
	env.DB.Model(&entity.TruckTransaction{}).Count(&headers)
	env.DB.Model(&entity.TransactionDetail{}).Count(&details)
	if headers != 0 || details != 0 {
		t.Fatalf("expected no persisted rows after failed submission, got %d headers, %d details", headers, details)
	}
}

// TestSingleOpenItinerary verifies the one-open-header-per-truck rule and
// that a fully completed itinerary frees the truck again.
func TestSingleOpenItinerary(t *testing.T) {
	env := setupTruckingTest(t)
	testutil.SeedPlant(t, env.DB, "PlantA")

	submitItinerary(t, env, submitBody("ABC123", itineraryRow("PlantA", "SLIP-1", 10, 1)))

	// Same truck under a different spelling of the number.
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/truck-transaction",
		submitBody(" abc-123 ", itineraryRow("PlantA", "SLIP-2", 7, 1)), testutil.DefaultTestToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for busy truck, got %d: %s", w.Code, w.Body.String())
	}

	completeVisit(t, env, "ABC123", "PlantA")

	submitItinerary(t, env, submitBody("abc123", itineraryRow("PlantA", "SLIP-3", 9, 1)))
}

// TestOpenHeaderUniqueAtStore verifies the store itself rejects a second
// open header for a truck, independent of the service-level conflict
// check, while completed trips for the same truck stack up freely.
func TestOpenHeaderUniqueAtStore(t *testing.T) {
	env := setupTruckingTest(t)
	testutil.SeedPlant(t, env.DB, "PlantA")

	submitItinerary(t, env, submitBody("DL08HH8888", itineraryRow("PlantA", "SLIP-1", 10, 1)))

	date, _ := time.Parse("2006-01-02", "2026-08-01")
	dup := &entity.TruckTransaction{
		TruckNo:         "DL08HH8888",
		TransactionDate: date,
		CityName:        "Nagpur",
		TruckWeight:     18.5,
		DeliverPoint:    "Gate 2",
	}
	if err := env.DB.Create(dup).Error; err == nil {
		t.Fatal("expected unique violation inserting a second open header")
	}

	done := &entity.TruckTransaction{
		TruckNo:         "DL08HH8888",
		TransactionDate: date,
		CityName:        "Nagpur",
		TruckWeight:     18.5,
		DeliverPoint:    "Gate 2",
		Completed:       true,
	}
	if err := env.DB.Create(done).Error; err != nil {
		t.Fatalf("completed header for the same truck must insert: %v", err)
	}
}

// TestSubmitValidation rejects missing required fields before any write.
func TestSubmitValidation(t *testing.T) {
	env := setupTruckingTest(t)
	testutil.SeedPlant(t, env.DB, "PlantA")

	cases := []struct {
		name   string
		mutate func(body map[string]interface{})
	}{
		{"missing truck no", func(b map[string]interface{}) { b["truck_no"] = "  " }},
		{"missing date", func(b map[string]interface{}) { b["transaction_date"] = "" }},
		{"missing city", func(b map[string]interface{}) { b["city_name"] = "" }},
		{"missing deliver point", func(b map[string]interface{}) { b["deliver_point"] = "" }},
		{"missing truck weight", func(b map[string]interface{}) { b["truck_weight"] = 0 }},
		{"duplicate priority", func(b map[string]interface{}) {
			b["rows"] = []map[string]interface{}{
				itineraryRow("PlantA", "SLIP-1", 10, 1),
				itineraryRow("PlantB", "SLIP-2", 10, 1),
			}
		}},
		{"duplicate plant", func(b map[string]interface{}) {
			b["rows"] = []map[string]interface{}{
				itineraryRow("PlantA", "SLIP-1", 10, 1),
				itineraryRow(" planta ", "SLIP-2", 10, 2),
			}
		}},
	}

	for _, tc := range cases {
		body := submitBody("KA05XY9999", itineraryRow("PlantA", "SLIP-1", 10, 1))
		tc.mutate(body)
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/truck-transaction", body, testutil.DefaultTestToken())
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", tc.name, w.Code, w.Body.String())
		}
	}

	var headers int64
	env.DB.Model(&entity.TruckTransaction{}).Count(&headers)
	if headers != 0 {
		t.Fatalf("expected no headers after rejected submissions, got %d", headers)
	}
}

// TestLockedRowCarriedForward verifies that a checked-in row survives a
// resubmission unchanged even when the client sends edits or drops it.
func TestLockedRowCarriedForward(t *testing.T) {
	env := setupTruckingTest(t)
	testutil.SeedPlant(t, env.DB, "PlantA")
	testutil.SeedPlant(t, env.DB, "PlantB")

	txnID := submitItinerary(t, env, submitBody("GJ01AA1111",
		itineraryRow("PlantA", "SLIP-1", 10, 1),
		itineraryRow("PlantB", "SLIP-2", 12, 2),
	))

	advanceStatus(t, env, "GJ01AA1111", "PlantA", service.ActionCheckIn, "")

	var locked entity.TransactionDetail
	if err := env.DB.Where("transaction_id = ? AND priority = ?", txnID, 1).First(&locked).Error; err != nil {
		t.Fatalf("failed to load locked row: %v", err)
	}

	// Resubmit: attempt to edit the locked row and drop the other one.
	row := itineraryRow("PlantA", "SLIP-EDITED", 99, 5)
	row["detail_id"] = locked.ID
	body := submitBody("GJ01AA1111", row)
	body["transaction_id"] = txnID
	submitItinerary(t, env, body)

	var after entity.TransactionDetail
	if err := env.DB.Where("id = ?", locked.ID).First(&after).Error; err != nil {
		t.Fatalf("locked row disappeared: %v", err)
	}
	if after.Qty != 10 || after.Priority != 1 || after.LoadingSlipNo != "SLIP-1" {
		t.Fatalf("locked row was edited: qty=%v priority=%d slip=%s", after.Qty, after.Priority, after.LoadingSlipNo)
	}

	// The unlocked PlantB row was dropped client-side and must be gone.
	var count int64
	env.DB.Model(&entity.TransactionDetail{}).Where("transaction_id = ?", txnID).Count(&count)
	if count != 1 {
		t.Fatalf("expected only the locked row to remain, got %d rows", count)
	}
}

// TestDeleteDetailLockEnforcement verifies the lock is enforced at the
// store boundary, not just in the UI.
func TestDeleteDetailLockEnforcement(t *testing.T) {
	env := setupTruckingTest(t)
	testutil.SeedPlant(t, env.DB, "PlantA")
	testutil.SeedPlant(t, env.DB, "PlantB")

	txnID := submitItinerary(t, env, submitBody("RJ14BB2222",
		itineraryRow("PlantA", "SLIP-1", 10, 1),
		itineraryRow("PlantB", "SLIP-2", 12, 2),
	))

	advanceStatus(t, env, "RJ14BB2222", "PlantA", service.ActionCheckIn, "")

	var rows []entity.TransactionDetail
	env.DB.Where("transaction_id = ?", txnID).Order("priority ASC").Find(&rows)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodDelete, fmt.Sprintf("/api/truck-transaction/detail/%d", rows[0].ID), nil, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting locked row, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodDelete, fmt.Sprintf("/api/truck-transaction/detail/%d", rows[1].ID), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting unlocked row, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodDelete, "/api/truck-transaction/detail/99999", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown detail, got %d: %s", w.Code, w.Body.String())
	}
}

// TestOpenItineraryNormalizedLookup fetches the open itinerary under
// differently formatted truck numbers.
func TestOpenItineraryNormalizedLookup(t *testing.T) {
	env := setupTruckingTest(t)
	testutil.SeedPlant(t, env.DB, "PlantA")

	txnID := submitItinerary(t, env, submitBody("abc-123", itineraryRow("PlantA", "SLIP-1", 10, 1)))

	for _, lookup := range []string{"ABC123", "abc123", " abc-123 "} {
		w := testutil.DoRequest(env.Router, http.MethodGet, "/api/truck-transaction/"+lookup, nil, testutil.DefaultTestToken())
		if w.Code != http.StatusOK {
			t.Fatalf("lookup %q: expected 200, got %d", lookup, w.Code)
		}
		resp := testutil.ParseResponse(w)
		data := resp["data"].(map[string]interface{})
		if uint(data["transaction_id"].(float64)) != txnID {
			t.Fatalf("lookup %q resolved to wrong transaction", lookup)
		}
	}

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/truck-transaction/ZZ99ZZ", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown truck, got %d", w.Code)
	}
}
