package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// Assets implementa repository.AssetRepository sobre el Store.
type Assets struct{ s *Store }

func NewAssets(s *Store) *Assets { return &Assets{s: s} }

var _ repository.AssetRepository = (*Assets)(nil)

func (r *Assets) GetByID(_ context.Context, id int64) (*entity.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.assets[id], nil
}

func (r *Assets) Create(_ context.Context, a *entity.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == 0 {
		a.ID = r.s.nextSerial()
	}
	r.s.assets[a.ID] = a
	return nil
}

func (r *Assets) Update(_ context.Context, a *entity.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assets[a.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.assets[a.ID] = a
	return nil
}

func (r *Assets) GetOrCreateSerial(_ context.Context, templateID int64, serial string) (*entity.Asset, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.assets) {
		a := r.s.assets[id]
		if a.TemplateID == templateID && a.SerialNumber != nil && *a.SerialNumber == serial {
			return a, false, nil
		}
	}
	a := &entity.Asset{
		ID:           r.s.nextSerial(),
		TemplateID:   templateID,
		SerialNumber: &serial,
		Quantity:     1,
		Active:       true,
	}
	r.s.assets[a.ID] = a
	return a, true, nil
}

func (r *Assets) Relocate(_ context.Context, ids []int64, destID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		if _, ok := r.s.assets[id]; !ok {
			return domain.ErrNotFound
		}
	}
	for _, id := range ids {
		a := r.s.assets[id]
		dest := destID
		a.LocationID = &dest
		a.BundleID = nil
	}
	return nil
}

func (r *Assets) ListByMovement(_ context.Context, movementID int64, _ bool) ([]*entity.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Asset
	for _, id := range r.s.items[movementID] {
		if a := r.s.assets[id]; a != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *Assets) ListByOrder(_ context.Context, orderID int64) ([]*entity.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[int64]bool{}
	var out []*entity.Asset
	for _, mid := range sortedIDs(r.s.movements) {
		m := r.s.movements[mid]
		if m.PurchaseOrderID == nil || *m.PurchaseOrderID != orderID {
			continue
		}
		for _, aid := range r.s.items[mid] {
			if seen[aid] {
				continue
			}
			seen[aid] = true
			if a := r.s.assets[aid]; a != nil {
				out = append(out, a)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Assets) ListIDs(_ context.Context, offset, limit int) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := sortedIDs(r.s.assets)
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *Assets) ListUnmovedWithoutLocation(_ context.Context) ([]*entity.Asset, error) {
	return r.listUnmoved(false)
}

func (r *Assets) ListUnmovedWithLocation(_ context.Context) ([]*entity.Asset, error) {
	return r.listUnmoved(true)
}

func (r *Assets) listUnmoved(withLocation bool) ([]*entity.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	moved := map[int64]bool{}
	for _, ids := range r.s.items {
		for _, id := range ids {
			moved[id] = true
		}
	}
	var out []*entity.Asset
	for _, id := range sortedIDs(r.s.assets) {
		a := r.s.assets[id]
		if moved[a.ID] {
			continue
		}
		if withLocation == (a.LocationID != nil) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *Assets) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.assets, id)
	return nil
}

// Movements implementa repository.MovementRepository sobre el Store.
type Movements struct{ s *Store }

func NewMovements(s *Store) *Movements { return &Movements{s: s} }

var _ repository.MovementRepository = (*Movements)(nil)

func (r *Movements) Create(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == 0 {
		m.ID = r.s.nextSerial()
	}
	r.s.movements[m.ID] = m
	return nil
}

func (r *Movements) GetByID(_ context.Context, id int64) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.movements[id], nil
}

func (r *Movements) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *Movements) Update(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.movements[m.ID] = m
	return nil
}

func (r *Movements) AddItem(_ context.Context, movementID, assetID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.items[movementID] {
		if id == assetID {
			return domain.ErrDuplicate
		}
	}
	r.s.items[movementID] = append(r.s.items[movementID], assetID)
	return nil
}

func (r *Movements) RemoveItem(_ context.Context, movementID, assetID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := r.s.items[movementID]
	for i, id := range ids {
		if id == assetID {
			r.s.items[movementID] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *Movements) HasItem(_ context.Context, movementID, assetID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.items[movementID] {
		if id == assetID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Movements) CountItems(_ context.Context, movementID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.items[movementID]), nil
}

func (r *Movements) ListDoneByAsset(_ context.Context, assetID int64) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Movement
	for _, mid := range sortedIDs(r.s.movements) {
		m := r.s.movements[mid]
		if m.State != entity.MovementDone {
			continue
		}
		for _, aid := range r.s.items[mid] {
			if aid == assetID {
				// Copia: el caller recibe filas sueltas, como con una DB real.
				cp := *m
				out = append(out, &cp)
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DateAct.Equal(out[j].DateAct) {
			return out[i].DateAct.Before(out[j].DateAct)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Movements) UpdateDateAct(_ context.Context, movementID int64, dateAct time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movements[movementID]
	if !ok {
		return domain.ErrNotFound
	}
	m.DateAct = dateAct
	return nil
}

// Locations implementa repository.LocationRepository sobre el Store.
type Locations struct{ s *Store }

func NewLocations(s *Store) *Locations { return &Locations{s: s} }

var _ repository.LocationRepository = (*Locations)(nil)

func (r *Locations) GetByID(_ context.Context, id int64) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.locations[id], nil
}

func (r *Locations) Create(_ context.Context, l *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == 0 {
		l.ID = r.s.nextSerial()
	}
	r.s.locations[l.ID] = l
	return nil
}

func (r *Locations) List(_ context.Context, limit, offset int) ([]*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := sortedIDs(r.s.locations)
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	out := make([]*entity.Location, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.locations[id])
	}
	return out, nil
}

func (r *Locations) FindBundling(_ context.Context) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.locations) {
		l := r.s.locations[id]
		if l.Usage == entity.UsageBundle && l.DepartmentID == nil && l.Active {
			return l, nil
		}
	}
	return nil, nil
}

// Departments implementa repository.DepartmentRepository sobre el Store.
type Departments struct{ s *Store }

func NewDepartments(s *Store) *Departments { return &Departments{s: s} }

var _ repository.DepartmentRepository = (*Departments)(nil)

func (r *Departments) GetByID(_ context.Context, id int64) (*entity.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.departments[id], nil
}

// Checkpoints implementa repository.CheckpointRepository sobre el Store.
type Checkpoints struct{ s *Store }

func NewCheckpoints(s *Store) *Checkpoints { return &Checkpoints{s: s} }

var _ repository.CheckpointRepository = (*Checkpoints)(nil)

func (r *Checkpoints) GetByID(_ context.Context, id int64) (*entity.Checkpoint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.checkpoints[id], nil
}

func (r *Checkpoints) LastValidated(_ context.Context, locationID int64) (*entity.Checkpoint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var last *entity.Checkpoint
	for _, id := range sortedIDs(r.s.checkpoints) {
		c := r.s.checkpoints[id]
		if c.LocationID != locationID || c.DateVal == nil {
			continue
		}
		if last == nil || c.DateAct.After(last.DateAct) {
			last = c
		}
	}
	return last, nil
}

// Orders implementa repository.PurchaseOrderRepository sobre el Store.
type Orders struct{ s *Store }

func NewOrders(s *Store) *Orders { return &Orders{s: s} }

var _ repository.PurchaseOrderRepository = (*Orders)(nil)

func (r *Orders) Create(_ context.Context, o *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o.ID == 0 {
		o.ID = r.s.nextSerial()
	}
	for _, l := range o.Lines {
		if l.ID == 0 {
			l.ID = r.s.nextSerial()
		}
		l.OrderID = o.ID
	}
	r.s.orders[o.ID] = o
	return nil
}

func (r *Orders) GetByID(_ context.Context, id int64) (*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.orders[id], nil
}

func (r *Orders) List(_ context.Context, limit, offset int) ([]*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := sortedIDs(r.s.orders)
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	out := make([]*entity.PurchaseOrder, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.orders[id])
	}
	return out, nil
}

func (r *Orders) UpdateLine(_ context.Context, line *entity.PurchaseOrderLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o := r.s.orders[line.OrderID]
	if o == nil {
		return domain.ErrNotFound
	}
	for i, l := range o.Lines {
		if l.ID == line.ID {
			o.Lines[i] = line
			return nil
		}
	}
	return domain.ErrNotFound
}

// Users implementa repository.UserRepository sobre el Store.
type Users struct{ s *Store }

func NewUsers(s *Store) *Users { return &Users{s: s} }

var _ repository.UserRepository = (*Users)(nil)

func (r *Users) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.users {
		if x.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	r.s.users[u.ID] = u
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.users[id], nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
