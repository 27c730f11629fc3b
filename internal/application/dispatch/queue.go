package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/mes-dispatch/internal/application/ports"
	"github.com/jhoicas/mes-dispatch/internal/domain"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
	"github.com/jhoicas/mes-dispatch/pkg/logger"
)

// Queue despacha órdenes ISSUED a las máquinas que consultan por trabajo.
type Queue struct {
	txRunner  ports.TxRunner
	equipment repository.EquipmentRepository
	log       *logger.Logger
}

// NewQueue construye la cola de despacho.
func NewQueue(txRunner ports.TxRunner, equipment repository.EquipmentRepository, log *logger.Logger) *Queue {
	return &Queue{txRunner: txRunner, equipment: equipment, log: log.Component("dispatch")}
}

// RequireActiveMachine valida que la máquina exista y esté activa.
func RequireActiveMachine(ctx context.Context, equipment repository.EquipmentRepository, machineID string) (*entity.Equipment, error) {
	if strings.TrimSpace(machineID) == "" {
		return nil, domain.InvalidInputf("machineId es requerido")
	}
	eq, err := equipment.GetByID(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if eq == nil {
		return nil, domain.NotFoundf("máquina %s", machineID)
	}
	if !eq.Active {
		return nil, domain.InvalidInputf("máquina %s inactiva", machineID)
	}
	return eq, nil
}

// Poll devuelve la orden que la máquina debe producir.
// Si la máquina ya tiene una orden RUNNING la devuelve sin cambios (consulta idempotente);
// si no, reclama la orden ISSUED más antigua y la pasa a RUNNING.
// found=false significa que no hay trabajo.
func (q *Queue) Poll(ctx context.Context, machineID string) (wo *entity.WorkOrder, found bool, err error) {
	if _, err := RequireActiveMachine(ctx, q.equipment, machineID); err != nil {
		return nil, false, err
	}

	claimed := false
	err = q.txRunner.Run(ctx, func(r ports.TxRepos) error {
		if err := r.WorkOrders.LockMachine(ctx, machineID); err != nil {
			return err
		}
		running, err := r.WorkOrders.GetRunningByMachine(ctx, machineID)
		if err != nil {
			return err
		}
		if running != nil {
			wo = running
			return nil
		}
		next, err := r.WorkOrders.ClaimOldestIssued(ctx)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if err := next.Start(machineID, time.Now()); err != nil {
			return err
		}
		if err := r.WorkOrders.Update(ctx, next); err != nil {
			return err
		}
		wo, claimed = next, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if wo == nil {
		q.log.Debug().Str("machine_id", machineID).Msg("sin órdenes para despachar")
		return nil, false, nil
	}
	if claimed {
		q.log.Info().
			Str("order_id", wo.ID).
			Str("machine_id", machineID).
			Str("status", string(wo.Status)).
			Msg("orden despachada")
	}
	return wo, true, nil
}
