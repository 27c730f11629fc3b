package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/mes-dispatch/internal/domain"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/infrastructure/memory"
	"github.com/jhoicas/mes-dispatch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newQueue(t *testing.T, machines ...string) (*Queue, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	for _, id := range machines {
		s.AddEquipment(entity.Equipment{ID: id, Line: "L1", Active: true})
	}
	return NewQueue(s, s.Equipment(), logger.Nop()), s
}

func addIssued(t *testing.T, s *memory.Store, id string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, s.WorkOrders().Create(context.Background(), &entity.WorkOrder{
		ID: id, ProductCode: "P1", TargetQty: 2, Status: entity.WorkOrderIssued, TargetLine: "L1", CreatedAt: now, UpdatedAt: now,
	}))
}

func TestPoll_EmptyQueue(t *testing.T) {
	q, _ := newQueue(t, "M-01")
	wo, found, err := q.Poll(context.Background(), "M-01")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, wo)
}

func TestPoll_ClaimsOldestIssued(t *testing.T) {
	ctx := context.Background()
	q, s := newQueue(t, "M-01")
	addIssued(t, s, "first")
	addIssued(t, s, "second")

	wo, found, err := q.Poll(ctx, "M-01")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "first", wo.ID)
	assert.Equal(t, entity.WorkOrderRunning, wo.Status)
	assert.Equal(t, "M-01", wo.AssignedMachine)
	assert.NotNil(t, wo.StartedAt)

	stored, err := s.WorkOrders().GetByID(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, entity.WorkOrderRunning, stored.Status)
}

func TestPoll_IsIdempotentForRunningOrder(t *testing.T) {
	ctx := context.Background()
	q, s := newQueue(t, "M-01")
	addIssued(t, s, "first")
	addIssued(t, s, "second")

	first, _, err := q.Poll(ctx, "M-01")
	require.NoError(t, err)
	again, found, err := q.Poll(ctx, "M-01")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first.ID, again.ID)

	second, err := s.WorkOrders().GetByID(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, entity.WorkOrderIssued, second.Status, "la segunda orden sigue en cola")
}

func TestPoll_WaitOrdersAreNotDispatched(t *testing.T) {
	ctx := context.Background()
	q, s := newQueue(t, "M-01")
	now := time.Now()
	require.NoError(t, s.WorkOrders().Create(ctx, &entity.WorkOrder{ID: "w", ProductCode: "P1", TargetQty: 1, Status: entity.WorkOrderWait, CreatedAt: now}))

	_, found, err := q.Poll(ctx, "M-01")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPoll_ConcurrentMachinesNeverShareAnOrder(t *testing.T) {
	ctx := context.Background()
	q, s := newQueue(t, "A", "B")
	addIssued(t, s, "only")

	var (
		mu     sync.Mutex
		winner []string
	)
	var g errgroup.Group
	for _, m := range []string{"A", "B"} {
		g.Go(func() error {
			wo, found, err := q.Poll(ctx, m)
			if err != nil {
				return err
			}
			if found {
				mu.Lock()
				winner = append(winner, m+":"+wo.ID)
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Len(t, winner, 1)

	stored, err := s.WorkOrders().GetByID(ctx, "only")
	require.NoError(t, err)
	assert.Equal(t, entity.WorkOrderRunning, stored.Status)
	assert.Contains(t, []string{"A", "B"}, stored.AssignedMachine)
}

func TestPoll_ManyOrdersManyMachines(t *testing.T) {
	ctx := context.Background()
	machines := []string{"M-01", "M-02", "M-03", "M-04"}
	q, s := newQueue(t, machines...)
	for _, id := range []string{"o1", "o2", "o3"} {
		addIssued(t, s, id)
	}

	claimed := make(map[string]string)
	var mu sync.Mutex
	var g errgroup.Group
	for _, m := range machines {
		g.Go(func() error {
			wo, found, err := q.Poll(ctx, m)
			if err != nil || !found {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if prev, dup := claimed[wo.ID]; dup {
				t.Errorf("orden %s despachada a %s y %s", wo.ID, prev, m)
			}
			claimed[wo.ID] = m
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, claimed, 3)
}

func TestPoll_UnknownOrInactiveMachine(t *testing.T) {
	ctx := context.Background()
	q, s := newQueue(t)
	s.AddEquipment(entity.Equipment{ID: "OFF", Active: false})

	_, _, err := q.Poll(ctx, "GHOST")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = q.Poll(ctx, "OFF")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = q.Poll(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
