package workorder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/mes-dispatch/internal/application/dto"
	"github.com/jhoicas/mes-dispatch/internal/application/inventory"
	"github.com/jhoicas/mes-dispatch/internal/application/ports"
	"github.com/jhoicas/mes-dispatch/internal/domain"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
	"github.com/jhoicas/mes-dispatch/pkg/logger"
	"github.com/shopspring/decimal"
)

// UseCase administra el ciclo de vida de las órdenes de trabajo (creación, liberación,
// edición, cancelación y borrado). RUNNING y DONE solo los fijan el despacho y el reporte.
type UseCase struct {
	txRunner   ports.TxRunner
	workOrders repository.WorkOrderRepository
	products   repository.ProductRepository
	materials  repository.MaterialRepository
	logs       repository.ProductionLogRepository
	bom        *inventory.BomResolver
	generator  TravelerPDFGenerator
	log        *logger.Logger
}

// NewUseCase construye el caso de uso de órdenes.
func NewUseCase(
	txRunner ports.TxRunner,
	workOrders repository.WorkOrderRepository,
	products repository.ProductRepository,
	materials repository.MaterialRepository,
	logs repository.ProductionLogRepository,
	bom *inventory.BomResolver,
	generator TravelerPDFGenerator,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:   txRunner,
		workOrders: workOrders,
		products:   products,
		materials:  materials,
		logs:       logs,
		bom:        bom,
		generator:  generator,
		log:        log.Component("workorder"),
	}
}

func (uc *UseCase) requireProduct(ctx context.Context, code string) (*entity.Product, error) {
	p, err := uc.products.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFoundf("producto %s", code)
	}
	return p, nil
}

// Create crea una orden en estado WAIT.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateWorkOrderRequest) (*dto.WorkOrderResponse, error) {
	productCode := strings.TrimSpace(in.ProductCode)
	targetLine := strings.TrimSpace(in.TargetLine)
	if productCode == "" {
		return nil, domain.InvalidInputf("productCode es requerido")
	}
	if in.TargetQty <= 0 {
		return nil, domain.InvalidInputf("targetQty debe ser mayor que cero")
	}
	if targetLine == "" {
		return nil, domain.InvalidInputf("targetLine es requerido")
	}
	if _, err := uc.requireProduct(ctx, productCode); err != nil {
		return nil, err
	}

	now := time.Now()
	wo := &entity.WorkOrder{
		ID:          uuid.New().String(),
		ProductCode: productCode,
		TargetQty:   in.TargetQty,
		Status:      entity.WorkOrderWait,
		TargetLine:  targetLine,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.workOrders.Create(ctx, wo); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order_id", wo.ID).
		Str("product_code", wo.ProductCode).
		Int("target_qty", wo.TargetQty).
		Str("status", string(wo.Status)).
		Msg("orden creada")
	return ToWorkOrderResponse(wo), nil
}

// Get obtiene una orden por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.WorkOrderResponse, error) {
	wo, err := uc.workOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, domain.NotFoundf("orden %s", id)
	}
	return ToWorkOrderResponse(wo), nil
}

// List lista órdenes por Seq, opcionalmente filtradas por estado.
func (uc *UseCase) List(ctx context.Context, status string, limit, offset int) (*dto.WorkOrderListResponse, error) {
	st := entity.WorkOrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, domain.InvalidInputf("estado %q", status)
	}
	list, err := uc.workOrders.List(ctx, repository.WorkOrderFilter{Status: st, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.WorkOrderResponse, 0, len(list))
	for _, wo := range list {
		items = append(items, *ToWorkOrderResponse(wo))
	}
	return &dto.WorkOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// mutate bloquea la orden, aplica fn y persiste, todo en una transacción.
func (uc *UseCase) mutate(ctx context.Context, id string, fn func(wo *entity.WorkOrder, now time.Time) error) (*entity.WorkOrder, error) {
	var out *entity.WorkOrder
	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		wo, err := r.WorkOrders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if wo == nil {
			return domain.NotFoundf("orden %s", id)
		}
		if err := fn(wo, time.Now()); err != nil {
			return err
		}
		if err := r.WorkOrders.Update(ctx, wo); err != nil {
			return err
		}
		out = wo
		return nil
	})
	return out, err
}

// Release WAIT → ISSUED; la orden queda disponible para el despacho.
func (uc *UseCase) Release(ctx context.Context, id string) (*dto.WorkOrderResponse, error) {
	wo, err := uc.mutate(ctx, id, func(wo *entity.WorkOrder, now time.Time) error {
		return wo.Release(now)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", wo.ID).Str("status", string(wo.Status)).Msg("orden liberada")
	return ToWorkOrderResponse(wo), nil
}

// Cancel WAIT|ISSUED → CANCELLED.
func (uc *UseCase) Cancel(ctx context.Context, id string) (*dto.WorkOrderResponse, error) {
	wo, err := uc.mutate(ctx, id, func(wo *entity.WorkOrder, now time.Time) error {
		return wo.Cancel(now)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", wo.ID).Str("status", string(wo.Status)).Msg("orden cancelada")
	return ToWorkOrderResponse(wo), nil
}

// Update edita producto, meta o línea de una orden WAIT o ISSUED.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateWorkOrderRequest) (*dto.WorkOrderResponse, error) {
	if in.TargetQty != nil && *in.TargetQty <= 0 {
		return nil, domain.InvalidInputf("targetQty debe ser mayor que cero")
	}
	if in.TargetLine != nil && strings.TrimSpace(*in.TargetLine) == "" {
		return nil, domain.InvalidInputf("targetLine no puede ser vacío")
	}
	if in.ProductCode != nil {
		code := strings.TrimSpace(*in.ProductCode)
		if code == "" {
			return nil, domain.InvalidInputf("productCode no puede ser vacío")
		}
		if _, err := uc.requireProduct(ctx, code); err != nil {
			return nil, err
		}
	}
	wo, err := uc.mutate(ctx, id, func(wo *entity.WorkOrder, now time.Time) error {
		if !wo.CanEdit() {
			return fmt.Errorf("%w: editar desde %s (orden %s)", domain.ErrInvalidTransition, wo.Status, wo.ID)
		}
		if in.ProductCode != nil {
			wo.ProductCode = strings.TrimSpace(*in.ProductCode)
		}
		if in.TargetQty != nil {
			wo.TargetQty = *in.TargetQty
		}
		if in.TargetLine != nil {
			wo.TargetLine = strings.TrimSpace(*in.TargetLine)
		}
		wo.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", wo.ID).Str("status", string(wo.Status)).Msg("orden actualizada")
	return ToWorkOrderResponse(wo), nil
}

// Delete borra una orden WAIT o ISSUED.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	err := uc.txRunner.Run(ctx, func(r ports.TxRepos) error {
		wo, err := r.WorkOrders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if wo == nil {
			return domain.NotFoundf("orden %s", id)
		}
		if !wo.CanEdit() {
			return fmt.Errorf("%w: borrar desde %s (orden %s)", domain.ErrInvalidTransition, wo.Status, wo.ID)
		}
		return r.WorkOrders.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("order_id", id).Msg("orden eliminada")
	return nil
}

// Logs devuelve los hechos de producción de la orden en orden de creación.
func (uc *UseCase) Logs(ctx context.Context, id string) ([]dto.ProductionLogResponse, error) {
	if _, err := uc.Get(ctx, id); err != nil {
		return nil, err
	}
	list, err := uc.logs.ListByWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductionLogResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.ProductionLogResponse{
			ID:          l.ID,
			WorkOrderID: l.WorkOrderID,
			EquipmentID: l.EquipmentID,
			SerialNo:    l.SerialNo,
			LotNo:       l.LotNo,
			Result:      l.Result,
			DefectCode:  l.DefectCode,
			ProducedAt:  l.ProducedAt,
		})
	}
	return out, nil
}

// Traveler genera el PDF de la hoja de ruta de la orden.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la orden o su producto no existen.
func (uc *UseCase) Traveler(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	wo, err := uc.workOrders.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("traveler: obtener orden: %w", err)
	}
	if wo == nil {
		return nil, "", domain.NotFoundf("orden %s", id)
	}
	product, err := uc.requireProduct(ctx, wo.ProductCode)
	if err != nil {
		return nil, "", err
	}
	reqs, err := uc.bom.RequirementsFor(ctx, wo.ProductCode)
	if err != nil {
		return nil, "", err
	}

	target := decimal.NewFromInt(int64(wo.TargetQty))
	lines := make([]TravelerLine, 0, len(reqs))
	for _, r := range reqs {
		line := TravelerLine{
			MaterialCode: r.MaterialCode,
			MaterialName: r.MaterialCode, // fallback
			QtyPerUnit:   r.QtyPerUnit,
			TotalQty:     r.QtyPerUnit.Mul(target),
		}
		if m, mErr := uc.materials.GetByCode(ctx, r.MaterialCode); mErr == nil && m != nil {
			line.MaterialName = m.Name
			line.Unit = m.Unit
		}
		lines = append(lines, line)
	}

	pdfBytes, err = uc.generator.GenerateTraveler(ctx, wo, product, lines)
	if err != nil {
		return nil, "", fmt.Errorf("traveler: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("orden_%d.pdf", wo.Seq), nil
}

// ToWorkOrderResponse mapea la entidad a su respuesta HTTP.
func ToWorkOrderResponse(wo *entity.WorkOrder) *dto.WorkOrderResponse {
	if wo == nil {
		return nil
	}
	out := &dto.WorkOrderResponse{
		ID:          wo.ID,
		Seq:         wo.Seq,
		ProductCode: wo.ProductCode,
		TargetQty:   wo.TargetQty,
		CurrentQty:  wo.CurrentQty,
		DefectQty:   wo.DefectQty,
		Status:      string(wo.Status),
		TargetLine:  wo.TargetLine,
		CreatedAt:   wo.CreatedAt,
		ReleasedAt:  wo.ReleasedAt,
		StartedAt:   wo.StartedAt,
		CompletedAt: wo.CompletedAt,
	}
	if wo.AssignedMachine != "" {
		m := wo.AssignedMachine
		out.AssignedMachine = &m
	}
	return out
}
