package dto

// ReportRequest body para POST /machine/report.
type ReportRequest struct {
	OrderID    string `json:"orderId" validate:"required"`
	MachineID  string `json:"machineId" validate:"required"`
	Result     string `json:"result" validate:"required"`
	DefectCode string `json:"defectCode,omitempty" validate:"max=64"`
	SerialNo   string `json:"serialNo" validate:"required,max=128"`
	LotNo      string `json:"lotNo,omitempty" validate:"max=128"`
}

// ReportResponse acuse de recibo del reporte.
// Duplicate=true cuando la orden ya estaba DONE y el reporte no tuvo efecto.
type ReportResponse struct {
	Status     string `json:"status"` // siempre "ACK"
	OrderID    string `json:"orderId"`
	LogID      string `json:"logId,omitempty"`
	OrderState string `json:"orderStatus"`
	CurrentQty int    `json:"currentQty"`
	TargetQty  int    `json:"targetQty"`
	DefectQty  int    `json:"defectQty"`
	Completed  bool   `json:"completed"`
	Duplicate  bool   `json:"duplicate"`
}
