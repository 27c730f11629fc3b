package dto

import "github.com/shopspring/decimal"

// ReplenishmentSuggestionDTO material cuyo stock no cubre la demanda de las órdenes abiertas.
type ReplenishmentSuggestionDTO struct {
	MaterialCode   string          `json:"materialCode"`
	MaterialName   string          `json:"materialName"`
	Unit           string          `json:"unit"`
	CurrentStock   decimal.Decimal `json:"currentStock"`
	OpenDemand     decimal.Decimal `json:"openDemand"`     // suma(qtyPerUnit * unidades pendientes)
	SuggestedQty   decimal.Decimal `json:"suggestedQty"`   // OpenDemand - CurrentStock
	AffectedOrders int             `json:"affectedOrders"` // órdenes abiertas que usan el material
	Priority       int             `json:"priority"`       // 1 = mayor déficit
}
