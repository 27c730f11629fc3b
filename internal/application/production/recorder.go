package production

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/mes-dispatch/internal/application/dispatch"
	"github.com/jhoicas/mes-dispatch/internal/application/dto"
	"github.com/jhoicas/mes-dispatch/internal/application/inventory"
	"github.com/jhoicas/mes-dispatch/internal/application/ports"
	"github.com/jhoicas/mes-dispatch/internal/domain"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
	"github.com/jhoicas/mes-dispatch/pkg/logger"
)

// Options comportamiento configurable del registro de producción.
type Options struct {
	// CountDefects: las unidades NG también avanzan CurrentQty.
	CountDefects bool
}

// Recorder registra cada unidad reportada por una máquina: hecho de producción,
// backflush de materiales y avance de la orden en una sola unidad de trabajo.
type Recorder struct {
	txRunner  ports.TxRunner
	equipment repository.EquipmentRepository
	ledger    *inventory.MaterialLedger
	opts      Options
	log       *logger.Logger
}

// NewRecorder construye el registrador.
func NewRecorder(
	txRunner ports.TxRunner,
	equipment repository.EquipmentRepository,
	ledger *inventory.MaterialLedger,
	opts Options,
	log *logger.Logger,
) *Recorder {
	return &Recorder{
		txRunner:  txRunner,
		equipment: equipment,
		ledger:    ledger,
		opts:      opts,
		log:       log.Component("production"),
	}
}

// ReportInput unidad reportada por la máquina.
type ReportInput struct {
	OrderID    string
	MachineID  string
	Result     string // OK|PASS|NG|FAIL
	DefectCode string
	SerialNo   string
	LotNo      string
}

func (in *ReportInput) normalize() (string, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.MachineID = strings.TrimSpace(in.MachineID)
	in.SerialNo = strings.TrimSpace(in.SerialNo)
	if in.OrderID == "" {
		return "", domain.InvalidInputf("orderId es requerido")
	}
	if in.SerialNo == "" {
		return "", domain.InvalidInputf("serialNo es requerido")
	}
	result, ok := entity.NormalizeResult(in.Result)
	if !ok {
		return "", domain.InvalidInputf("result %q (use OK o NG)", in.Result)
	}
	return result, nil
}

// ReportUnit aplica un reporte. Pasos, todos en la misma transacción:
//  1. bloquear la orden; DONE → no-op con Duplicate=true
//  2. la máquina debe existir y estar activa; la orden, RUNNING en esa máquina
//  3. insertar el ProductionLog
//  4. si la unidad pasa, descontar cada material de la BOM (por código); un faltante aborta todo
//  5. avanzar CurrentQty y cerrar la orden al llegar a la meta
func (rec *Recorder) ReportUnit(ctx context.Context, in ReportInput) (*dto.ReportResponse, error) {
	result, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if in.MachineID == "" {
		return nil, domain.InvalidInputf("machineId es requerido")
	}
	// El catálogo se lee fuera de la transacción; el error solo cuenta si la orden aún puede cambiar.
	_, machineErr := dispatch.RequireActiveMachine(ctx, rec.equipment, in.MachineID)

	var (
		wo       *entity.WorkOrder
		logID    string
		dup      bool
		consumed int
	)
	err = rec.txRunner.Run(ctx, func(r ports.TxRepos) error {
		var err error
		wo, err = r.WorkOrders.GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if wo == nil {
			return domain.NotFoundf("orden %s", in.OrderID)
		}
		if wo.Status == entity.WorkOrderDone {
			dup = true
			return nil
		}
		if machineErr != nil {
			return machineErr
		}
		if wo.Status != entity.WorkOrderRunning {
			return fmt.Errorf("%w: reportar desde %s (orden %s)", domain.ErrInvalidTransition, wo.Status, wo.ID)
		}
		if wo.AssignedMachine != in.MachineID {
			return fmt.Errorf("%w: orden %s asignada a %s, reporta %s", domain.ErrConflict, wo.ID, wo.AssignedMachine, in.MachineID)
		}
		if wo.CurrentQty >= wo.TargetQty {
			return fmt.Errorf("%w: orden %s ya tiene %d/%d unidades", domain.ErrConflict, wo.ID, wo.CurrentQty, wo.TargetQty)
		}

		now := time.Now()
		pl := &entity.ProductionLog{
			ID:          uuid.New().String(),
			WorkOrderID: wo.ID,
			EquipmentID: in.MachineID,
			SerialNo:    in.SerialNo,
			LotNo:       strings.TrimSpace(in.LotNo),
			Result:      result,
			ProducedAt:  now,
			CreatedAt:   now,
		}
		if result == entity.ResultNG {
			pl.DefectCode = strings.TrimSpace(in.DefectCode)
		}
		if err := r.Logs.Create(ctx, pl); err != nil {
			return err
		}
		logID = pl.ID

		if pl.Passed() {
			reqs, err := inventory.Requirements(ctx, r.BOM, wo.ProductCode)
			if err != nil {
				return err
			}
			for _, req := range reqs {
				_, err := rec.ledger.MoveStockInTx(ctx, r, inventory.MoveStockInput{
					MaterialCode: req.MaterialCode,
					Type:         entity.TransactionOutbound,
					Quantity:     req.QtyPerUnit,
					Location:     in.MachineID,
					Reference:    wo.ID,
					Note:         "backflush " + in.SerialNo,
				}, now)
				if err != nil {
					return err
				}
				consumed++
			}
		}

		if err := wo.RecordUnit(pl.Passed(), rec.opts.CountDefects, now); err != nil {
			return err
		}
		return r.WorkOrders.Update(ctx, wo)
	})
	if err != nil {
		ev := rec.log.Error()
		var shortage *domain.ShortageError
		if errors.As(err, &shortage) {
			ev = rec.log.Warn().
				Str("material_code", shortage.MaterialCode).
				Str("required", shortage.Required.String()).
				Str("available", shortage.Available.String())
		} else if isBusinessError(err) {
			ev = rec.log.Warn()
		}
		ev.Err(err).
			Str("order_id", in.OrderID).
			Str("machine_id", in.MachineID).
			Str("serial_no", in.SerialNo).
			Msg("reporte rechazado")
		return nil, err
	}

	resp := &dto.ReportResponse{
		Status:     "ACK",
		OrderID:    wo.ID,
		LogID:      logID,
		OrderState: string(wo.Status),
		CurrentQty: wo.CurrentQty,
		TargetQty:  wo.TargetQty,
		DefectQty:  wo.DefectQty,
		Completed:  wo.Status == entity.WorkOrderDone,
		Duplicate:  dup,
	}
	if dup {
		rec.log.Info().Str("order_id", wo.ID).Str("machine_id", in.MachineID).Msg("reporte sobre orden terminada ignorado")
		return resp, nil
	}
	rec.log.Info().
		Str("order_id", wo.ID).
		Str("machine_id", in.MachineID).
		Str("result", result).
		Int("current_qty", wo.CurrentQty).
		Int("target_qty", wo.TargetQty).
		Int("materials_consumed", consumed).
		Str("status", string(wo.Status)).
		Msg("unidad registrada")
	return resp, nil
}

// FromRequest adapta el body HTTP.
func FromRequest(req dto.ReportRequest) ReportInput {
	return ReportInput{
		OrderID:    req.OrderID,
		MachineID:  req.MachineID,
		Result:     req.Result,
		DefectCode: req.DefectCode,
		SerialNo:   req.SerialNo,
		LotNo:      req.LotNo,
	}
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrInvalidInput, domain.ErrInvalidTransition, domain.ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
