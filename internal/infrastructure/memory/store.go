// Package memory implementa los puertos de persistencia en memoria del proceso.
// Cada Run trabaja sobre una copia del estado y solo la publica si fn no falla,
// así un error deja el estado exactamente como estaba (rollback completo).
// Los históricos (logs y movimientos) son solo de inserción: la copia comparte
// el arreglo subyacente y lo publicado nunca ve más allá de su propio largo.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jhoicas/mes-dispatch/internal/application/ports"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type state struct {
	products   map[string]entity.Product
	equipment  map[string]entity.Equipment
	materials  map[string]entity.Material
	bom        map[string][]entity.BOMLine
	workOrders map[string]entity.WorkOrder
	seq        int64
	logs       []entity.ProductionLog
	txs        []entity.MaterialTransaction
}

func newState() *state {
	return &state{
		products:   map[string]entity.Product{},
		equipment:  map[string]entity.Equipment{},
		materials:  map[string]entity.Material{},
		bom:        map[string][]entity.BOMLine{},
		workOrders: map[string]entity.WorkOrder{},
	}
}

// clone copia catálogos y órdenes. logs y txs se comparten: las inserciones de la
// transacción quedan después del largo publicado y un rollback simplemente las ignora.
func (s *state) clone() *state {
	c := &state{
		products:   maps.Clone(s.products),
		equipment:  maps.Clone(s.equipment),
		materials:  maps.Clone(s.materials),
		bom:        make(map[string][]entity.BOMLine, len(s.bom)),
		workOrders: maps.Clone(s.workOrders),
		seq:        s.seq,
		logs:       s.logs,
		txs:        s.txs,
	}
	for k, v := range s.bom {
		c.bom[k] = slices.Clone(v)
	}
	return c
}

// Store almacén en memoria. Las transacciones se serializan con un único mutex,
// lo que equivale a bloquear todas las filas que toca la unidad de trabajo.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState(), now: time.Now}
}

var _ ports.TxRunner = (*Store)(nil)

// Run ejecuta fn con repositorios atados a una copia del estado.
// Commit si fn retorna nil; en cualquier otro caso la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(r ports.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.state.clone()
	if err := fn(reposFor(s, tx)); err != nil {
		return err
	}
	s.state = tx
	return nil
}

// read ejecuta fn sobre el estado publicado (lecturas fuera de transacción).
func (s *Store) read(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func reposFor(s *Store, tx *state) ports.TxRepos {
	b := base{store: s, tx: tx}
	return ports.TxRepos{
		WorkOrders:   &workOrderRepo{b},
		Materials:    &materialRepo{b},
		Transactions: &transactionRepo{b},
		BOM:          &bomRepo{b},
		Logs:         &productionLogRepo{b},
	}
}

// base resuelve el estado sobre el que trabaja un repositorio: el de la transacción
// en curso (el mutex ya está tomado por Run) o el publicado.
type base struct {
	store *Store
	tx    *state
}

func (b base) with(fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	return b.store.read(fn)
}

// WorkOrders repositorio de órdenes fuera de transacción.
func (s *Store) WorkOrders() repository.WorkOrderRepository { return &workOrderRepo{base{store: s}} }

// Materials repositorio de materiales fuera de transacción.
func (s *Store) Materials() repository.MaterialRepository { return &materialRepo{base{store: s}} }

// Transactions libro de movimientos fuera de transacción.
func (s *Store) Transactions() repository.MaterialTransactionRepository { return &transactionRepo{base{store: s}} }

// BOM lista de materiales.
func (s *Store) BOM() repository.BOMRepository { return &bomRepo{base{store: s}} }

// Logs hechos de producción.
func (s *Store) Logs() repository.ProductionLogRepository { return &productionLogRepo{base{store: s}} }

// Products catálogo de productos.
func (s *Store) Products() repository.ProductRepository { return &productRepo{base{store: s}} }

// Equipment catálogo de máquinas.
func (s *Store) Equipment() repository.EquipmentRepository { return &equipmentRepo{base{store: s}} }

// ── Carga de catálogo ─────────────────────────────────────────────────────────

// AddProduct registra (o reemplaza) un producto.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.state.products[p.Code] = p
}

// AddEquipment registra (o reemplaza) una máquina.
func (s *Store) AddEquipment(e entity.Equipment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.state.equipment[e.ID] = e
}

// AddMaterial registra un material con stock cero y, si opening > 0, un movimiento
// INBOUND de apertura para que el libro cuadre desde la primera fila.
func (s *Store) AddMaterial(m entity.Material, opening decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	m.CurrentStock = decimal.Zero
	m.UpdatedAt = now
	if opening.GreaterThan(decimal.Zero) {
		m.CurrentStock = opening
		s.state.txs = append(s.state.txs, entity.MaterialTransaction{
			ID:           "opening-" + m.Code,
			MaterialCode: m.Code,
			Type:         entity.TransactionInbound,
			Quantity:     opening,
			Note:         "saldo inicial",
			CreatedAt:    now,
		})
	}
	s.state.materials[m.Code] = m
}

// AddBOMLine agrega una línea a la lista de materiales del producto.
func (s *Store) AddBOMLine(l entity.BOMLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.bom[l.ProductCode] = append(s.state.bom[l.ProductCode], l)
}
