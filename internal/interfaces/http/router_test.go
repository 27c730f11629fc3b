package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/mes-dispatch/internal/application/dispatch"
	"github.com/jhoicas/mes-dispatch/internal/application/inventory"
	"github.com/jhoicas/mes-dispatch/internal/application/production"
	"github.com/jhoicas/mes-dispatch/internal/application/workorder"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/infrastructure/memory"
	"github.com/jhoicas/mes-dispatch/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/mes-dispatch/internal/interfaces/http"
	"github.com/jhoicas/mes-dispatch/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp arma la API completa sobre el almacén en memoria:
// producto P1 (3 × M1 por unidad), máquinas A y B, stock inicial de M1 = 10.
func newTestApp(t *testing.T, jwtSecret string) *fiber.App {
	t.Helper()
	s := memory.NewStore()
	s.AddProduct(entity.Product{Code: "P1", Name: "Soporte"})
	s.AddEquipment(entity.Equipment{ID: "A", Line: "L1", Active: true})
	s.AddEquipment(entity.Equipment{ID: "B", Line: "L1", Active: true})
	s.AddEquipment(entity.Equipment{ID: "OFF", Line: "L1", Active: false})
	s.AddMaterial(entity.Material{Code: "M1", Name: "Lámina", Unit: "KG"}, decimal.NewFromInt(10))
	s.AddBOMLine(entity.BOMLine{ProductCode: "P1", MaterialCode: "M1", QtyPerUnit: decimal.NewFromInt(3)})

	log := logger.Nop()
	bom := inventory.NewBomResolver(s.Products(), s.BOM())
	ledger := inventory.NewMaterialLedger(s, s.Materials(), s.Transactions(), log)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		WorkOrders: workorder.NewUseCase(s, s.WorkOrders(), s.Products(), s.Materials(), s.Logs(),
			bom, pdf.NewTravelerGenerator("Planta de prueba"), log),
		Queue:         dispatch.NewQueue(s, s.Equipment(), log),
		Recorder:      production.NewRecorder(s, s.Equipment(), ledger, production.Options{}, log),
		Ledger:        ledger,
		BOM:           bom,
		Replenishment: inventory.NewReplenishmentUseCase(s.WorkOrders(), s.Materials(), s.BOM()),
		JWTSecret:     jwtSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

// issuedOrder crea y libera una orden de P1.
func issuedOrder(t *testing.T, app *fiber.App, target int) string {
	t.Helper()
	status, wo := call(t, app, http.MethodPost, "/work-orders",
		map[string]any{"productCode": "P1", "targetQty": target, "targetLine": "L1"})
	require.Equal(t, http.StatusCreated, status)
	id := wo["id"].(string)

	status, wo = call(t, app, http.MethodPost, "/work-orders/"+id+"/release", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ISSUED", wo["status"])
	return id
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, "")
	status, body := call(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestDispatchAndReportFlow(t *testing.T) {
	app := newTestApp(t, "")
	id := issuedOrder(t, app, 2)

	status, wo := call(t, app, http.MethodGet, "/machine/poll?machineId=A", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, wo["id"])
	assert.Equal(t, "RUNNING", wo["status"])
	assert.Equal(t, "A", wo["assignedMachine"])

	// B no encuentra trabajo
	status, _ = call(t, app, http.MethodGet, "/machine/poll?machineId=B", nil)
	assert.Equal(t, http.StatusNoContent, status)

	// Re-poll de A devuelve la misma orden
	status, wo = call(t, app, http.MethodGet, "/machine/poll?machineId=A", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, wo["id"])

	status, ack := call(t, app, http.MethodPost, "/machine/report",
		map[string]any{"orderId": id, "machineId": "A", "result": "OK", "serialNo": "S-1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ACK", ack["status"])
	assert.EqualValues(t, 1, ack["currentQty"])

	status, ack = call(t, app, http.MethodPost, "/machine/report",
		map[string]any{"orderId": id, "machineId": "A", "result": "PASS", "serialNo": "S-2"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, ack["completed"])
	assert.Equal(t, "DONE", ack["orderStatus"])

	// Reporte tardío sobre una orden DONE: ACK sin efecto
	status, ack = call(t, app, http.MethodPost, "/machine/report",
		map[string]any{"orderId": id, "machineId": "A", "result": "OK", "serialNo": "S-3"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, ack["duplicate"])

	status, m := call(t, app, http.MethodGet, "/materials/M1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "4", m["currentStock"])

	status, rec := call(t, app, http.MethodGet, "/materials/M1/reconcile", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, rec["consistent"])
	assert.EqualValues(t, 3, rec["entries"])

	status, txs := call(t, app, http.MethodGet, "/materials/M1/transactions?limit=1", nil)
	require.Equal(t, http.StatusOK, status)
	items := txs["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].(map[string]any)["reference"])
}

func TestReport_ShortageNamesMaterial(t *testing.T) {
	app := newTestApp(t, "")
	status, _ := call(t, app, http.MethodPost, "/material/out", map[string]any{"materialCode": "M1", "quantity": "8"})
	require.Equal(t, http.StatusCreated, status)

	id := issuedOrder(t, app, 1)
	status, _ = call(t, app, http.MethodGet, "/machine/poll?machineId=A", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := call(t, app, http.MethodPost, "/machine/report",
		map[string]any{"orderId": id, "machineId": "A", "result": "OK", "serialNo": "S-1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, "M1", body["materialCode"])

	status, wo := call(t, app, http.MethodGet, "/work-orders/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, wo["currentQty"])
}

func TestReport_WrongMachineIsConflict(t *testing.T) {
	app := newTestApp(t, "")
	id := issuedOrder(t, app, 1)
	status, _ := call(t, app, http.MethodGet, "/machine/poll?machineId=A", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := call(t, app, http.MethodPost, "/machine/report",
		map[string]any{"orderId": id, "machineId": "B", "result": "OK", "serialNo": "S-1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])
}

func TestErrorMapping(t *testing.T) {
	app := newTestApp(t, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"crear sin targetQty", http.MethodPost, "/work-orders", map[string]any{"productCode": "P1", "targetLine": "L1"}, http.StatusBadRequest, "VALIDATION"},
		{"producto inexistente", http.MethodPost, "/work-orders", map[string]any{"productCode": "X", "targetQty": 1, "targetLine": "L1"}, http.StatusNotFound, "NOT_FOUND"},
		{"orden inexistente", http.MethodGet, "/work-orders/nope", nil, http.StatusNotFound, "NOT_FOUND"},
		{"estado inválido", http.MethodGet, "/work-orders?status=PAUSED", nil, http.StatusBadRequest, "VALIDATION"},
		{"poll sin máquina", http.MethodGet, "/machine/poll", nil, http.StatusBadRequest, "VALIDATION"},
		{"máquina desconocida", http.MethodGet, "/machine/poll?machineId=Z", nil, http.StatusNotFound, "NOT_FOUND"},
		{"máquina inactiva", http.MethodGet, "/machine/poll?machineId=OFF", nil, http.StatusBadRequest, "VALIDATION"},
		{"resultado inválido", http.MethodPost, "/machine/report", map[string]any{"orderId": "x", "machineId": "A", "result": "MAYBE", "serialNo": "S"}, http.StatusBadRequest, "VALIDATION"},
		{"cantidad cero", http.MethodPost, "/material/in", map[string]any{"materialCode": "M1", "quantity": "0"}, http.StatusBadRequest, "VALIDATION"},
		{"salida sin stock", http.MethodPost, "/material/out", map[string]any{"materialCode": "M1", "quantity": "11"}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"bom de producto inexistente", http.MethodGet, "/products/X/bom", nil, http.StatusNotFound, "NOT_FOUND"},
		{"ruta inexistente", http.MethodGet, "/nada", nil, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestWorkOrderLifecycle(t *testing.T) {
	app := newTestApp(t, "")
	id := issuedOrder(t, app, 3)

	status, body := call(t, app, http.MethodPost, "/work-orders/"+id+"/release", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", body["code"])

	status, wo := call(t, app, http.MethodPut, "/work-orders/"+id, map[string]any{"targetQty": 5})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 5, wo["targetQty"])

	status, wo = call(t, app, http.MethodPost, "/work-orders/"+id+"/cancel", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CANCELLED", wo["status"])

	status, _ = call(t, app, http.MethodDelete, "/work-orders/"+id, nil)
	assert.Equal(t, http.StatusConflict, status)

	other := issuedOrder(t, app, 1)
	status, _ = call(t, app, http.MethodDelete, "/work-orders/"+other, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, list := call(t, app, http.MethodGet, "/work-orders?status=cancelled", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list["items"], 1)
}

func TestBOMAndReplenishment(t *testing.T) {
	app := newTestApp(t, "")
	issuedOrder(t, app, 4)

	status, bom := call(t, app, http.MethodGet, "/products/P1/bom", nil)
	require.Equal(t, http.StatusOK, status)
	reqs := bom["requirements"].([]any)
	require.Len(t, reqs, 1)
	assert.Equal(t, "M1", reqs[0].(map[string]any)["materialCode"])

	status, rep := call(t, app, http.MethodGet, "/materials/replenishment", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, rep["total"])
	first := rep["replenishments"].([]any)[0].(map[string]any)
	assert.Equal(t, "M1", first["materialCode"])
	assert.Equal(t, "2", first["suggestedQty"])
}

func TestTravelerPDF(t *testing.T) {
	app := newTestApp(t, "")
	id := issuedOrder(t, app, 2)

	req := httptest.NewRequest(http.MethodGet, "/work-orders/"+id+"/traveler", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "orden_")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}
