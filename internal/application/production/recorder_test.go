package production

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jhoicas/mes-dispatch/internal/application/dispatch"
	"github.com/jhoicas/mes-dispatch/internal/application/inventory"
	"github.com/jhoicas/mes-dispatch/internal/domain"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/infrastructure/memory"
	"github.com/jhoicas/mes-dispatch/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type fixture struct {
	store    *memory.Store
	queue    *dispatch.Queue
	recorder *Recorder
	ledger   *inventory.MaterialLedger
}

// newFixture: producto P1 con BOM 3 × M1, máquinas M-01 y M-02, stock inicial de M1 = stock.
func newFixture(t *testing.T, stock int64, opts Options) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.AddProduct(entity.Product{Code: "P1", Name: "Soporte"})
	s.AddEquipment(entity.Equipment{ID: "M-01", Line: "L1", Active: true})
	s.AddEquipment(entity.Equipment{ID: "M-02", Line: "L1", Active: true})
	s.AddMaterial(entity.Material{Code: "M1"}, decimal.NewFromInt(stock))
	s.AddBOMLine(entity.BOMLine{ProductCode: "P1", MaterialCode: "M1", QtyPerUnit: decimal.NewFromInt(3)})

	log := logger.Nop()
	ledger := inventory.NewMaterialLedger(s, s.Materials(), s.Transactions(), log)
	return &fixture{
		store:    s,
		queue:    dispatch.NewQueue(s, s.Equipment(), log),
		recorder: NewRecorder(s, s.Equipment(), ledger, opts, log),
		ledger:   ledger,
	}
}

// runningOrder crea una orden ISSUED de P1 y la despacha a M-01.
func (f *fixture) runningOrder(t *testing.T, target int) string {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	id := fmt.Sprintf("wo-%d", now.UnixNano())
	require.NoError(t, f.store.WorkOrders().Create(ctx, &entity.WorkOrder{
		ID: id, ProductCode: "P1", TargetQty: target, Status: entity.WorkOrderIssued, TargetLine: "L1", CreatedAt: now, UpdatedAt: now,
	}))
	wo, found, err := f.queue.Poll(ctx, "M-01")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, id, wo.ID)
	return id
}

func (f *fixture) stock(t *testing.T) decimal.Decimal {
	t.Helper()
	m, err := f.store.Materials().GetByCode(context.Background(), "M1")
	require.NoError(t, err)
	return m.CurrentStock
}

func (f *fixture) outbound(t *testing.T) []*entity.MaterialTransaction {
	t.Helper()
	all, err := f.store.Transactions().AllByMaterial(context.Background(), "M1")
	require.NoError(t, err)
	var out []*entity.MaterialTransaction
	for _, tx := range all {
		if tx.Type == entity.TransactionOutbound {
			out = append(out, tx)
		}
	}
	return out
}

func report(orderID, result, serial string) ReportInput {
	return ReportInput{OrderID: orderID, MachineID: "M-01", Result: result, SerialNo: serial}
}

func TestReportUnit_TwoPassesCompleteOrderAndBackflush(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, Options{})
	id := f.runningOrder(t, 2)

	first, err := f.recorder.ReportUnit(ctx, report(id, "OK", "S-1"))
	require.NoError(t, err)
	assert.Equal(t, "ACK", first.Status)
	assert.Equal(t, 1, first.CurrentQty)
	assert.Equal(t, string(entity.WorkOrderRunning), first.OrderState)
	assert.False(t, first.Completed)

	second, err := f.recorder.ReportUnit(ctx, report(id, "PASS", "S-2"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.CurrentQty)
	assert.True(t, second.Completed)
	assert.Equal(t, string(entity.WorkOrderDone), second.OrderState)

	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(4)))
	out := f.outbound(t)
	require.Len(t, out, 2)
	for _, tx := range out {
		assert.True(t, tx.Quantity.Equal(decimal.NewFromInt(3)))
		assert.Equal(t, id, tx.Reference)
		assert.Equal(t, "M-01", tx.Location)
	}

	wo, err := f.store.WorkOrders().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.WorkOrderDone, wo.Status)
	assert.Empty(t, wo.AssignedMachine)
	assert.NotNil(t, wo.CompletedAt)

	logs, err := f.store.Logs().ListByWorkOrder(ctx, id)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	// la máquina queda libre para la siguiente orden
	_, found, err := f.queue.Poll(ctx, "M-01")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReportUnit_ShortageAbortsEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2, Options{})
	id := f.runningOrder(t, 2)

	_, err := f.recorder.ReportUnit(ctx, report(id, "OK", "S-1"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var shortage *domain.ShortageError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, "M1", shortage.MaterialCode)

	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(2)))
	assert.Empty(t, f.outbound(t))

	wo, err := f.store.WorkOrders().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, wo.CurrentQty)
	assert.Equal(t, entity.WorkOrderRunning, wo.Status)

	logs, err := f.store.Logs().ListByWorkOrder(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, logs, "el hecho de producción también se revierte")
}

func TestReportUnit_DefectDoesNotConsumeNorAdvance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, Options{})
	id := f.runningOrder(t, 2)

	resp, err := f.recorder.ReportUnit(ctx, ReportInput{OrderID: id, MachineID: "M-01", Result: "ng", DefectCode: "SCRATCH", SerialNo: "S-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.CurrentQty)
	assert.Equal(t, 1, resp.DefectQty)
	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(10)))

	logs, err := f.store.Logs().ListByWorkOrder(ctx, id)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.ResultNG, logs[0].Result)
	assert.Equal(t, "SCRATCH", logs[0].DefectCode)
}

func TestReportUnit_CountDefectsOption(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, Options{CountDefects: true})
	id := f.runningOrder(t, 1)

	resp, err := f.recorder.ReportUnit(ctx, report(id, "FAIL", "S-1"))
	require.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.Equal(t, 1, resp.DefectQty)
	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(10)))
}

func TestReportUnit_DoneOrderIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, Options{})
	id := f.runningOrder(t, 1)

	_, err := f.recorder.ReportUnit(ctx, report(id, "OK", "S-1"))
	require.NoError(t, err)

	resp, err := f.recorder.ReportUnit(ctx, report(id, "OK", "S-2"))
	require.NoError(t, err)
	assert.True(t, resp.Duplicate)
	assert.Equal(t, "ACK", resp.Status)
	assert.Equal(t, 1, resp.CurrentQty)
	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(7)))
	assert.Len(t, f.outbound(t), 1)

	logs, err := f.store.Logs().ListByWorkOrder(ctx, id)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestReportUnit_DoneOrderIsNoopAfterMachineRetired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, Options{})
	id := f.runningOrder(t, 1)

	_, err := f.recorder.ReportUnit(ctx, report(id, "OK", "S-1"))
	require.NoError(t, err)

	f.store.AddEquipment(entity.Equipment{ID: "M-01", Line: "L1", Active: false})
	resp, err := f.recorder.ReportUnit(ctx, report(id, "OK", "S-1"))
	require.NoError(t, err)
	assert.True(t, resp.Duplicate)
	assert.Equal(t, string(entity.WorkOrderDone), resp.OrderState)

	// la máquina ya no está en el catálogo
	resp, err = f.recorder.ReportUnit(ctx, ReportInput{OrderID: id, MachineID: "M-99", Result: "OK", SerialNo: "S-1"})
	require.NoError(t, err)
	assert.True(t, resp.Duplicate)

	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(7)))
	assert.Len(t, f.outbound(t), 1)
}

func TestReportUnit_InactiveMachineRejectedWhileRunning(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, Options{})
	id := f.runningOrder(t, 2)

	f.store.AddEquipment(entity.Equipment{ID: "M-01", Line: "L1", Active: false})
	_, err := f.recorder.ReportUnit(ctx, report(id, "OK", "S-1"))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(10)))
}

func TestReportUnit_ShortageOnSecondMaterialRollsBackFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, Options{})
	f.store.AddMaterial(entity.Material{Code: "M2"}, decimal.NewFromInt(1))
	f.store.AddBOMLine(entity.BOMLine{ProductCode: "P1", MaterialCode: "M2", QtyPerUnit: decimal.NewFromInt(2)})
	id := f.runningOrder(t, 2)

	_, err := f.recorder.ReportUnit(ctx, report(id, "OK", "S-1"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var shortage *domain.ShortageError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, "M2", shortage.MaterialCode)
	assert.True(t, shortage.Required.Equal(decimal.NewFromInt(2)))
	assert.True(t, shortage.Available.Equal(decimal.NewFromInt(1)))

	// M1 se descontó antes que M2 dentro de la transacción y debe quedar intacto
	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(10)))
	assert.Empty(t, f.outbound(t))
	m2Txs, err := f.store.Transactions().AllByMaterial(ctx, "M2")
	require.NoError(t, err)
	require.Len(t, m2Txs, 1)
	assert.Equal(t, entity.TransactionInbound, m2Txs[0].Type)
	m2, err := f.store.Materials().GetByCode(ctx, "M2")
	require.NoError(t, err)
	assert.True(t, m2.CurrentStock.Equal(decimal.NewFromInt(1)))

	wo, err := f.store.WorkOrders().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, wo.CurrentQty)
	assert.Equal(t, entity.WorkOrderRunning, wo.Status)

	logs, err := f.store.Logs().ListByWorkOrder(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, logs)

	for _, code := range []string{"M1", "M2"} {
		rec, err := f.ledger.Reconcile(ctx, code)
		require.NoError(t, err)
		assert.True(t, rec.Consistent, code)
	}
}

func TestReportUnit_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10, Options{})
	id := f.runningOrder(t, 2)

	_, err := f.recorder.ReportUnit(ctx, report("missing", "OK", "S-1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.recorder.ReportUnit(ctx, report(id, "MAYBE", "S-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.recorder.ReportUnit(ctx, report(id, "OK", " "))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.recorder.ReportUnit(ctx, ReportInput{OrderID: id, MachineID: "M-02", Result: "OK", SerialNo: "S-1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.recorder.ReportUnit(ctx, ReportInput{OrderID: id, MachineID: "GHOST", Result: "OK", SerialNo: "S-1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	now := time.Now()
	require.NoError(t, f.store.WorkOrders().Create(ctx, &entity.WorkOrder{ID: "waiting", ProductCode: "P1", TargetQty: 1, Status: entity.WorkOrderWait, CreatedAt: now}))
	_, err = f.recorder.ReportUnit(ctx, report("waiting", "OK", "S-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(10)))
}

func TestReportUnit_ProductWithoutBOM(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0, Options{})
	f.store.AddProduct(entity.Product{Code: "P2"})
	now := time.Now()
	require.NoError(t, f.store.WorkOrders().Create(ctx, &entity.WorkOrder{ID: "p2", ProductCode: "P2", TargetQty: 1, Status: entity.WorkOrderIssued, CreatedAt: now}))
	_, _, err := f.queue.Poll(ctx, "M-01")
	require.NoError(t, err)

	resp, err := f.recorder.ReportUnit(ctx, report("p2", "OK", "S-1"))
	require.NoError(t, err)
	assert.True(t, resp.Completed)
}

func TestReportUnit_ConcurrentReportsNeverOvershoot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, Options{})
	id := f.runningOrder(t, 3)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := f.recorder.ReportUnit(ctx, report(id, "OK", fmt.Sprintf("S-%d", i)))
			return err
		})
	}
	require.NoError(t, g.Wait())

	wo, err := f.store.WorkOrders().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, wo.CurrentQty)
	assert.Equal(t, entity.WorkOrderDone, wo.Status)
	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(91)))

	rec, err := f.ledger.Reconcile(ctx, "M1")
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
}
