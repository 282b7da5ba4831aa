package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/nilp12200/truckproject/internal/trucking/entity"
	"github.com/nilp12200/truckproject/internal/trucking/repository"
	"github.com/nilp12200/truckproject/internal/trucking/service"
	"github.com/nilp12200/truckproject/internal/trucking/testutil"
)

func listData(t *testing.T, env *testutil.TestEnv, path string) []interface{} {
	t.Helper()
	w := testutil.DoRequest(env.Router, http.MethodGet, path, nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d: %s", path, w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["data"] == nil {
		return nil
	}
	return resp["data"].([]interface{})
}

// TestTruckQueues drives two trucks through PlantA and checks the
// awaiting/checked-in queue endpoints at each step.
func TestTruckQueues(t *testing.T) {
	env := setupTruckingTest(t)
	testutil.SeedPlant(t, env.DB, "PlantA")

	submitItinerary(t, env, submitBody("QUEUE1", itineraryRow("PlantA", "SLIP-1", 10, 1)))
	submitItinerary(t, env, submitBody("QUEUE2", itineraryRow("PlantA", "SLIP-2", 12, 1)))

	awaiting := listData(t, env, "/api/trucks?plantName=PlantA")
	if len(awaiting) != 2 {
		t.Fatalf("expected 2 trucks awaiting check-in, got %v", awaiting)
	}

	advanceStatus(t, env, "QUEUE1", "PlantA", service.ActionCheckIn, "")

	awaiting = listData(t, env, "/api/trucks?plantName=PlantA")
	checkedIn := listData(t, env, "/api/checked-in-trucks?plantName=PlantA")
	if len(awaiting) != 1 || awaiting[0] != "QUEUE2" {
		t.Fatalf("expected only QUEUE2 awaiting, got %v", awaiting)
	}
	if len(checkedIn) != 1 || checkedIn[0] != "QUEUE1" {
		t.Fatalf("expected only QUEUE1 checked in, got %v", checkedIn)
	}

	advanceStatus(t, env, "QUEUE1", "PlantA", service.ActionCheckOut, "INV-Q1")

	checkedIn = listData(t, env, "/api/checked-in-trucks?plantName=PlantA")
	if len(checkedIn) != 0 {
		t.Fatalf("expected empty checked-in queue after check-out, got %v", checkedIn)
	}

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/trucks", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without plantName, got %d", w.Code)
	}
}

// TestPlantQuantitiesAndRemarks checks the per-truck plant breakdown and
// the remarks lookup used by the gate screen.
func TestPlantQuantitiesAndRemarks(t *testing.T) {
	env := setupTruckingTest(t)
	testutil.SeedPlant(t, env.DB, "PlantA")
	testutil.SeedPlant(t, env.DB, "PlantB")

	body := submitBody("LOAD99",
		itineraryRow("PlantB", "SLIP-2", 12.5, 2),
		itineraryRow("PlantA", "SLIP-1", 10, 1),
	)
	rows := body["rows"].([]map[string]interface{})
	rows[1]["remarks"] = "fragile cargo"
	submitItinerary(t, env, body)

	quantities := listData(t, env, "/api/truck-plant-quantities?truckNo=load-99")
	if len(quantities) != 2 {
		t.Fatalf("expected 2 plant quantity rows, got %v", quantities)
	}
	first := quantities[0].(map[string]interface{})
	if first["plant_name"] != "PlantA" || first["quantity"].(float64) != 10 {
		t.Fatalf("expected PlantA with qty 10 first by priority, got %v", first)
	}

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/fetch-remarks?truckNo=LOAD99&plantName=PlantA", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from fetch-remarks, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["remarks"] != "fragile cargo" {
		t.Fatalf("expected row remarks, got %v", data["remarks"])
	}
}

// TestActiveTrucks lists open itineraries and drops completed ones.
func TestActiveTrucks(t *testing.T) {
	env := setupTruckingTest(t)
	testutil.SeedPlant(t, env.DB, "PlantA")

	submitItinerary(t, env, submitBody("ACTIVE1", itineraryRow("PlantA", "SLIP-1", 10, 1)))
	submitItinerary(t, env, submitBody("ACTIVE2", itineraryRow("PlantA", "SLIP-2", 8, 1)))

	completeVisit(t, env, "ACTIVE2", "PlantA")

	trucks := listData(t, env, "/api/truck-find")
	if len(trucks) != 1 {
		t.Fatalf("expected 1 active truck, got %v", trucks)
	}
	if trucks[0].(map[string]interface{})["truck_no"] != "ACTIVE1" {
		t.Fatalf("expected ACTIVE1, got %v", trucks[0])
	}
}

// TestReportAndSchedule exercises the date/plant filtered report and the
// check-state schedule views.
func TestReportAndSchedule(t *testing.T) {
	env := setupTruckingTest(t)
	plantA := testutil.SeedPlant(t, env.DB, "PlantA")
	plantB := testutil.SeedPlant(t, env.DB, "PlantB")

	submitItinerary(t, env, submitBody("REP111",
		itineraryRow("PlantA", "SLIP-1", 10, 1),
		itineraryRow("PlantB", "SLIP-2", 12, 2),
	))
	completeVisit(t, env, "REP111", "PlantA")
	advanceStatus(t, env, "REP111", "PlantB", service.ActionCheckIn, "")

	base := fmt.Sprintf("fromDate=2026-08-01&toDate=2026-08-01&plant=%d,%d", plantA.ID, plantB.ID)

	rows := listData(t, env, "/api/truck-report?"+base)
	if len(rows) != 2 {
		t.Fatalf("expected 2 report rows, got %v", rows)
	}

	// Outside the date window the report is empty.
	empty := listData(t, env, fmt.Sprintf("/api/truck-report?fromDate=2026-07-01&toDate=2026-07-31&plant=%d", plantA.ID))
	if len(empty) != 0 {
		t.Fatalf("expected empty report outside date range, got %v", empty)
	}

	// Plant filter narrows to the matching rows only.
	one := listData(t, env, fmt.Sprintf("/api/truck-report?fromDate=2026-08-01&toDate=2026-08-01&plant=%d", plantA.ID))
	if len(one) != 1 || one[0].(map[string]interface{})["plant_name"] != "PlantA" {
		t.Fatalf("expected only the PlantA row, got %v", one)
	}

	cases := []struct {
		status string
		want   int
	}{
		{repository.ScheduleDispatched, 0},
		{repository.ScheduleInTransit, 1},
		{repository.ScheduleCheckedOut, 1},
		{repository.ScheduleAll, 2},
	}
	for _, tc := range cases {
		rows := listData(t, env, "/api/truck-schedule?"+base+"&status="+tc.status)
		if len(rows) != tc.want {
			t.Fatalf("schedule status %s: expected %d rows, got %v", tc.status, tc.want, rows)
		}
	}

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/truck-schedule?"+base+"&status=Bogus", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown schedule status, got %d", w.Code)
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/truck-report?fromDate=2026-08-01", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing filters, got %d", w.Code)
	}
}

// TestExportReport downloads the report workbook and checks the
// attachment headers and a sane payload.
func TestExportReport(t *testing.T) {
	env := setupTruckingTest(t)
	plantA := testutil.SeedPlant(t, env.DB, "PlantA")

	submitItinerary(t, env, submitBody("EXP123", itineraryRow("PlantA", "SLIP-1", 10, 1)))

	path := fmt.Sprintf("/api/truck-report/export?fromDate=2026-08-01&toDate=2026-08-01&plant=%d", plantA.ID)
	w := testutil.DoRequest(env.Router, http.MethodGet, path, nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from export, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Fatal("missing attachment disposition")
	}
	// xlsx files are zip archives.
	body := w.Body.Bytes()
	if len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Fatalf("export payload is not a workbook (%d bytes)", len(body))
	}
}

// TestFinishedPlantNoHistory returns a null marker for a truck that has
// never checked out anywhere.
func TestFinishedPlantNoHistory(t *testing.T) {
	env := setupTruckingTest(t)
	testutil.SeedPlant(t, env.DB, "PlantA")

	submitItinerary(t, env, submitBody("FRESH1", itineraryRow("PlantA", "SLIP-1", 10, 1)))

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/finished-plant?truckNo=FRESH1", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["last_finished"] != nil {
		t.Fatalf("expected null last finished plant, got %v", data["last_finished"])
	}

	var header entity.TruckTransaction
	if err := env.DB.Where("truck_no = ?", "FRESH1").First(&header).Error; err != nil {
		t.Fatalf("header not persisted: %v", err)
	}
}
