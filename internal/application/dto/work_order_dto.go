package dto

import "time"

// CreateWorkOrderRequest body para POST /work-orders.
type CreateWorkOrderRequest struct {
	ProductCode string `json:"productCode" validate:"required,max=64"`
	TargetQty   int    `json:"targetQty" validate:"required,gt=0"`
	TargetLine  string `json:"targetLine" validate:"required,max=64"`
}

// UpdateWorkOrderRequest body para PUT /work-orders/{id}. Campos nil no se modifican.
type UpdateWorkOrderRequest struct {
	ProductCode *string `json:"productCode" validate:"omitempty,min=1,max=64"`
	TargetQty   *int    `json:"targetQty" validate:"omitempty,gt=0"`
	TargetLine  *string `json:"targetLine" validate:"omitempty,min=1,max=64"`
}

// WorkOrderResponse salida de una orden de trabajo.
type WorkOrderResponse struct {
	ID              string     `json:"id"`
	Seq             int64      `json:"seq"`
	ProductCode     string     `json:"productCode"`
	TargetQty       int        `json:"targetQty"`
	CurrentQty      int        `json:"currentQty"`
	DefectQty       int        `json:"defectQty"`
	Status          string     `json:"status"`
	AssignedMachine *string    `json:"assignedMachine"`
	TargetLine      string     `json:"targetLine"`
	CreatedAt       time.Time  `json:"createdAt"`
	ReleasedAt      *time.Time `json:"releasedAt,omitempty"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// WorkOrderListResponse lista paginada de órdenes.
type WorkOrderListResponse struct {
	Items []WorkOrderResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// ProductionLogResponse hecho de producción de una unidad.
type ProductionLogResponse struct {
	ID          string    `json:"id"`
	WorkOrderID string    `json:"workOrderId"`
	EquipmentID string    `json:"equipmentId"`
	SerialNo    string    `json:"serialNo"`
	LotNo       string    `json:"lotNo,omitempty"`
	Result      string    `json:"result"`
	DefectCode  string    `json:"defectCode,omitempty"`
	ProducedAt  time.Time `json:"producedAt"`
}
