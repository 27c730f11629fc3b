package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/mes-dispatch/internal/domain"
)

// WorkOrderStatus estado del ciclo de vida de una orden de trabajo.
type WorkOrderStatus string

// Estados de la orden. WAIT es el inicial; DONE y CANCELLED son terminales.
const (
	WorkOrderWait      WorkOrderStatus = "WAIT"
	WorkOrderIssued    WorkOrderStatus = "ISSUED"
	WorkOrderRunning   WorkOrderStatus = "RUNNING"
	WorkOrderDone      WorkOrderStatus = "DONE"
	WorkOrderCancelled WorkOrderStatus = "CANCELLED"
)

// Valid informa si s es uno de los cinco estados canónicos.
func (s WorkOrderStatus) Valid() bool {
	switch s {
	case WorkOrderWait, WorkOrderIssued, WorkOrderRunning, WorkOrderDone, WorkOrderCancelled:
		return true
	}
	return false
}

// Terminal informa si el estado ya no admite transiciones.
func (s WorkOrderStatus) Terminal() bool {
	return s == WorkOrderDone || s == WorkOrderCancelled
}

// WorkOrder orden de producción de un producto hacia una línea.
// AssignedMachine solo tiene valor mientras la orden está RUNNING.
type WorkOrder struct {
	ID              string
	Seq             int64 // orden de inserción; el despacho toma el menor ISSUED
	ProductCode     string
	TargetQty       int
	CurrentQty      int
	DefectQty       int
	Status          WorkOrderStatus
	AssignedMachine string
	TargetLine      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ReleasedAt      *time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

func (w *WorkOrder) transitionError(action string) error {
	return fmt.Errorf("%w: %s desde %s (orden %s)", domain.ErrInvalidTransition, action, w.Status, w.ID)
}

// CanEdit informa si la orden admite edición o borrado (solo WAIT o ISSUED).
func (w *WorkOrder) CanEdit() bool {
	return w.Status == WorkOrderWait || w.Status == WorkOrderIssued
}

// Release WAIT → ISSUED.
func (w *WorkOrder) Release(now time.Time) error {
	if w.Status != WorkOrderWait {
		return w.transitionError("liberar")
	}
	w.Status = WorkOrderIssued
	w.ReleasedAt = &now
	w.UpdatedAt = now
	return nil
}

// Start ISSUED → RUNNING con la máquina asignada. Solo lo invoca el despacho.
func (w *WorkOrder) Start(machineID string, now time.Time) error {
	if w.Status != WorkOrderIssued {
		return w.transitionError("iniciar")
	}
	if w.AssignedMachine != "" {
		return fmt.Errorf("%w: orden %s ya asignada a %s", domain.ErrConflict, w.ID, w.AssignedMachine)
	}
	w.Status = WorkOrderRunning
	w.AssignedMachine = machineID
	w.StartedAt = &now
	w.UpdatedAt = now
	return nil
}

// Cancel WAIT|ISSUED → CANCELLED.
func (w *WorkOrder) Cancel(now time.Time) error {
	if !w.CanEdit() {
		return w.transitionError("cancelar")
	}
	w.Status = WorkOrderCancelled
	w.UpdatedAt = now
	return nil
}

// RecordUnit suma una unidad al avance. counts=false solo incrementa DefectQty.
// Al alcanzar la meta pasa a DONE y libera la máquina.
func (w *WorkOrder) RecordUnit(pass, counts bool, now time.Time) error {
	if w.Status != WorkOrderRunning {
		return w.transitionError("reportar")
	}
	if w.CurrentQty >= w.TargetQty {
		return fmt.Errorf("%w: orden %s ya tiene %d/%d unidades", domain.ErrConflict, w.ID, w.CurrentQty, w.TargetQty)
	}
	if !pass {
		w.DefectQty++
	}
	if pass || counts {
		w.CurrentQty++
	}
	w.UpdatedAt = now
	if w.CurrentQty >= w.TargetQty {
		w.Status = WorkOrderDone
		w.AssignedMachine = ""
		w.CompletedAt = &now
	}
	return nil
}
