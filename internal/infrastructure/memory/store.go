// Package memory implementa los puertos de persistencia sobre mapas en
// memoria. Lo usan los tests de los casos de uso para ejercitar el motor de
// movimientos, la conciliación y el verificador sin una base de datos real.
package memory

import (
	"sort"
	"sync"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// Store estado compartido de los repositorios en memoria.
type Store struct {
	mu sync.Mutex

	assets      map[int64]*entity.Asset
	movements   map[int64]*entity.Movement
	items       map[int64][]int64 // movementID -> assetIDs en orden de inserción
	locations   map[int64]*entity.Location
	departments map[int64]*entity.Department
	checkpoints map[int64]*entity.Checkpoint
	orders      map[int64]*entity.PurchaseOrder
	users       map[string]*entity.User

	nextID int64
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		assets:      make(map[int64]*entity.Asset),
		movements:   make(map[int64]*entity.Movement),
		items:       make(map[int64][]int64),
		locations:   make(map[int64]*entity.Location),
		departments: make(map[int64]*entity.Department),
		checkpoints: make(map[int64]*entity.Checkpoint),
		orders:      make(map[int64]*entity.PurchaseOrder),
		users:       make(map[string]*entity.User),
	}
}

func (s *Store) nextSerial() int64 {
	s.nextID++
	return s.nextID
}

// Seed helpers: asignan id y registran la entidad.

func (s *Store) AddLocation(l *entity.Location) *entity.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.nextSerial()
	}
	s.locations[l.ID] = l
	return l
}

func (s *Store) AddDepartment(d *entity.Department) *entity.Department {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == 0 {
		d.ID = s.nextSerial()
	}
	s.departments[d.ID] = d
	return d
}

func (s *Store) AddAsset(a *entity.Asset) *entity.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.nextSerial()
	}
	s.assets[a.ID] = a
	return a
}

func (s *Store) AddCheckpoint(c *entity.Checkpoint) *entity.Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.nextSerial()
	}
	s.checkpoints[c.ID] = c
	return c
}

func (s *Store) AddOrder(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.nextSerial()
	}
	for _, l := range o.Lines {
		if l.ID == 0 {
			l.ID = s.nextSerial()
		}
		l.OrderID = o.ID
	}
	s.orders[o.ID] = o
	return o
}

// AddMovement registra un movimiento ya armado junto con sus ítems.
func (s *Store) AddMovement(m *entity.Movement, assetIDs ...int64) *entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == 0 {
		m.ID = s.nextSerial()
	}
	s.movements[m.ID] = m
	s.items[m.ID] = append(s.items[m.ID], assetIDs...)
	return m
}

func (s *Store) AddUser(u *entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return u
}

// Accessors de inspección para asserts.

func (s *Store) Asset(id int64) *entity.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets[id]
}

func (s *Store) Movement(id int64) *entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.movements[id]
}

func (s *Store) ItemIDs(movementID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.items[movementID]))
	copy(out, s.items[movementID])
	return out
}

func (s *Store) AssetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
