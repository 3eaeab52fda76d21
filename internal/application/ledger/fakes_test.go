package ledger_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba: un almacén en memoria con semántica transaccional
// (snapshot + rollback) y un TxRunner que serializa transacciones con un
// mutex global, igual que lo harían los bloqueos de fila de la BD. El mutex
// también reproduce la garantía de visibilidad del adaptador real: un lector
// entre transacciones nunca observa un traslado a medio aplicar, porque las
// dos caras confirman en una sola transacción.
// ──────────────────────────────────────────────────────────────────────────────

type pairKey struct {
	productID  int64
	locationID int64
}

type memStore struct {
	mu        sync.Mutex
	products  map[int64]*entity.Product
	locations map[int64]*entity.Location
	stocks    map[pairKey]*entity.ProductLocation
	movements []*entity.StockMovement
	nextMovID int64
	nextPLID  int64

	// Inyección de fallos para probar rollback y reintentos.
	failAppend    error
	conflictTimes int // veces que Run devuelve ErrConcurrencyConflict antes de funcionar
	txDelay       time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[int64]*entity.Product),
		locations: make(map[int64]*entity.Location),
		stocks:    make(map[pairKey]*entity.ProductLocation),
	}
}

func (s *memStore) addProduct(id int64, minStock int) {
	s.products[id] = &entity.Product{ID: id, SKU: "SKU-" + time.Now().Format("150405"), MinimumStock: minStock, IsActive: true}
}

func (s *memStore) addLocation(id int64, active bool) {
	s.locations[id] = &entity.Location{ID: id, Code: "A1", IsActive: active}
}

func (s *memStore) quantity(productID, locationID int64) int {
	if pl, ok := s.stocks[pairKey{productID, locationID}]; ok {
		return pl.Quantity
	}
	return 0
}

// snapshot copia profunda del estado mutable para simular rollback.
func (s *memStore) snapshot() (map[int64]int, map[pairKey]entity.ProductLocation, int) {
	aggregates := make(map[int64]int, len(s.products))
	for id, p := range s.products {
		aggregates[id] = p.CurrentStock
	}
	stocks := make(map[pairKey]entity.ProductLocation, len(s.stocks))
	for k, pl := range s.stocks {
		stocks[k] = *pl
	}
	return aggregates, stocks, len(s.movements)
}

func (s *memStore) restore(aggregates map[int64]int, stocks map[pairKey]entity.ProductLocation, movCount int) {
	for id, cs := range aggregates {
		s.products[id].CurrentStock = cs
	}
	s.stocks = make(map[pairKey]*entity.ProductLocation, len(stocks))
	for k, pl := range stocks {
		cp := pl
		s.stocks[k] = &cp
	}
	s.movements = s.movements[:movCount]
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

type memTxRunner struct {
	store *memStore
}

func (r *memTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.ProductLocationRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) error) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.txDelay > 0 {
		select {
		case <-time.After(s.txDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.conflictTimes > 0 {
		s.conflictTimes--
		return domain.ErrConcurrencyConflict
	}

	aggregates, stocks, movCount := s.snapshot()
	err := fn(&memMovementRepo{s}, &memStockRepo{s}, &memProductRepo{s}, &memLocationRepo{s})
	if err != nil {
		s.restore(aggregates, stocks, movCount)
		return err
	}
	return nil
}

// interceptTxRunner ejecuta un gancho justo antes de abrir la transacción,
// para simular mutaciones ajenas entre el prechequeo del motor y la tx.
type interceptTxRunner struct {
	inner  *memTxRunner
	before func()
}

func (r *interceptTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.ProductLocationRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
) error) error {
	if r.before != nil {
		hook := r.before
		r.before = nil
		hook()
	}
	return r.inner.Run(ctx, fn)
}

// ── Repositorios ─────────────────────────────────────────────────────────────

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.products[p.ID] = p
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok || p.IsDeleted {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetByIDIncludeDeleted(_ context.Context, id int64) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku && !p.IsDeleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.products[p.ID] = p
	return nil
}

func (r *memProductRepo) List(_ context.Context, _, _ int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if !p.IsDeleted {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProductRepo) ListBelowMinimum(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if !p.IsDeleted && p.CurrentStock <= p.MinimumStock {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProductRepo) UpdateAggregateStock(_ context.Context, productID int64, delta int) error {
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.CurrentStock += delta
	return nil
}

func (r *memProductRepo) SoftDelete(_ context.Context, id int64) error {
	if p, ok := r.s.products[id]; ok {
		p.IsDeleted = true
	}
	return nil
}

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) Get(_ context.Context, productID, locationID int64) (*entity.ProductLocation, error) {
	pl, ok := r.s.stocks[pairKey{productID, locationID}]
	if !ok {
		return nil, nil
	}
	cp := *pl
	return &cp, nil
}

// GetForUpdate materializa la fila con cantidad cero si no existe, como el
// adaptador real: la fila bloqueada es la que serializa a los escritores.
// El rollback de la transacción la descarta si la operación falla.
func (r *memStockRepo) GetForUpdate(_ context.Context, productID, locationID int64) (*entity.ProductLocation, error) {
	key := pairKey{productID, locationID}
	if pl, ok := r.s.stocks[key]; ok {
		cp := *pl
		return &cp, nil
	}
	r.s.nextPLID++
	pl := &entity.ProductLocation{ID: r.s.nextPLID, ProductID: productID, LocationID: locationID, LastUpdated: time.Now().UTC()}
	r.s.stocks[key] = pl
	cp := *pl
	return &cp, nil
}

func (r *memStockRepo) Upsert(_ context.Context, record *entity.ProductLocation) error {
	key := pairKey{record.ProductID, record.LocationID}
	if existing, ok := r.s.stocks[key]; ok {
		record.ID = existing.ID
	} else {
		r.s.nextPLID++
		record.ID = r.s.nextPLID
	}
	cp := *record
	r.s.stocks[key] = &cp
	return nil
}

func (r *memStockRepo) ListByProduct(_ context.Context, productID int64) ([]*entity.ProductLocation, error) {
	var out []*entity.ProductLocation
	for k, pl := range r.s.stocks {
		if k.productID == productID {
			cp := *pl
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memStockRepo) ListByLocation(_ context.Context, locationID int64) ([]*entity.ProductLocation, error) {
	var out []*entity.ProductLocation
	for k, pl := range r.s.stocks {
		if k.locationID == locationID {
			cp := *pl
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memStockRepo) ListBelowMinimum(_ context.Context) ([]*entity.ProductLocation, error) {
	var out []*entity.ProductLocation
	for _, pl := range r.s.stocks {
		if pl.Quantity <= pl.MinimumStock {
			cp := *pl
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memStockRepo) SetPrimary(_ context.Context, productID, locationID int64) error {
	for k, pl := range r.s.stocks {
		if k.productID == productID {
			pl.IsPrimaryLocation = k.locationID == locationID
		}
	}
	return nil
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Append(_ context.Context, m *entity.StockMovement) (int64, error) {
	if r.s.failAppend != nil {
		return 0, r.s.failAppend
	}
	r.s.nextMovID++
	cp := *m
	cp.ID = r.s.nextMovID
	r.s.movements = append(r.s.movements, &cp)
	return cp.ID, nil
}

func (r *memMovementRepo) GetByID(_ context.Context, id int64) (*entity.StockMovement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) Query(_ context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.StockMovement, int, error) {
	var matched []*entity.StockMovement
	for _, m := range r.s.movements {
		if matchesFilter(m, filter) {
			cp := *m
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].MovementDate.After(matched[j].MovementDate) })
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *memMovementRepo) ListByProductLocation(_ context.Context, productID, locationID int64) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			continue
		}
		if m.LocationID == locationID || (m.ToLocationID != nil && *m.ToLocationID == locationID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovementDate.Before(out[j].MovementDate) })
	return out, nil
}

func (r *memMovementRepo) SumByTypeForDate(_ context.Context, date time.Time) ([]repository.DailyTotal, error) {
	totals := make(map[entity.MovementType]*repository.DailyTotal)
	y, mo, d := date.UTC().Date()
	for _, m := range r.s.movements {
		my, mmo, md := m.MovementDate.UTC().Date()
		if my != y || mmo != mo || md != d {
			continue
		}
		t, ok := totals[m.Type]
		if !ok {
			t = &repository.DailyTotal{Type: m.Type}
			totals[m.Type] = t
		}
		t.Count++
		t.Quantity += m.Quantity
	}
	out := make([]repository.DailyTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	return out, nil
}

func matchesFilter(m *entity.StockMovement, f repository.MovementFilter) bool {
	if f.ProductID != nil && m.ProductID != *f.ProductID {
		return false
	}
	if f.LocationID != nil {
		if m.LocationID != *f.LocationID && (m.ToLocationID == nil || *m.ToLocationID != *f.LocationID) {
			return false
		}
	}
	if f.Type != nil && m.Type != *f.Type {
		return false
	}
	if f.From != nil && m.MovementDate.Before(*f.From) {
		return false
	}
	if f.To != nil && m.MovementDate.After(*f.To) {
		return false
	}
	return true
}

// ── Repositorios fuera de transacción ────────────────────────────────────────

type memLocationRepo struct{ s *memStore }

func (r *memLocationRepo) Create(_ context.Context, l *entity.Location) error {
	r.s.locations[l.ID] = l
	return nil
}

func (r *memLocationRepo) GetByID(_ context.Context, id int64) (*entity.Location, error) {
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *memLocationRepo) GetByCode(_ context.Context, code string) (*entity.Location, error) {
	for _, l := range r.s.locations {
		if l.Code == code {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memLocationRepo) Update(_ context.Context, l *entity.Location) error {
	r.s.locations[l.ID] = l
	return nil
}

func (r *memLocationRepo) List(_ context.Context, _, _ int) ([]*entity.Location, error) {
	var out []*entity.Location
	for _, l := range r.s.locations {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memLocationRepo) ListChildren(_ context.Context, parentID int64) ([]*entity.Location, error) {
	var out []*entity.Location
	for _, l := range r.s.locations {
		if l.ParentID != nil && *l.ParentID == parentID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memLocationRepo) HasReferences(_ context.Context, id int64) (bool, error) {
	for k, pl := range r.s.stocks {
		if k.locationID == id && pl.Quantity != 0 {
			return true, nil
		}
	}
	for _, m := range r.s.movements {
		if m.LocationID == id || (m.ToLocationID != nil && *m.ToLocationID == id) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLocationRepo) Delete(_ context.Context, id int64) error {
	delete(r.s.locations, id)
	return nil
}

// ── Envolturas con bloqueo para acceso fuera de transacción ──────────────────
// El runner ya serializa las transacciones con s.mu; las lecturas del motor
// previas a la transacción necesitan el mismo mutex para no correr contra
// una transacción en curso.

type lockedProductRepo struct{ s *memStore }

func (r *lockedProductRepo) withLock(fn func(inner *memProductRepo) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(&memProductRepo{r.s})
}

func (r *lockedProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.withLock(func(in *memProductRepo) error { return in.Create(ctx, p) })
}

func (r *lockedProductRepo) GetByID(ctx context.Context, id int64) (p *entity.Product, err error) {
	err = r.withLock(func(in *memProductRepo) error { p, err = in.GetByID(ctx, id); return err })
	return
}

func (r *lockedProductRepo) GetByIDIncludeDeleted(ctx context.Context, id int64) (p *entity.Product, err error) {
	err = r.withLock(func(in *memProductRepo) error { p, err = in.GetByIDIncludeDeleted(ctx, id); return err })
	return
}

func (r *lockedProductRepo) GetBySKU(ctx context.Context, sku string) (p *entity.Product, err error) {
	err = r.withLock(func(in *memProductRepo) error { p, err = in.GetBySKU(ctx, sku); return err })
	return
}

func (r *lockedProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.withLock(func(in *memProductRepo) error { return in.Update(ctx, p) })
}

func (r *lockedProductRepo) List(ctx context.Context, limit, offset int) (ps []*entity.Product, err error) {
	err = r.withLock(func(in *memProductRepo) error { ps, err = in.List(ctx, limit, offset); return err })
	return
}

func (r *lockedProductRepo) ListBelowMinimum(ctx context.Context) (ps []*entity.Product, err error) {
	err = r.withLock(func(in *memProductRepo) error { ps, err = in.ListBelowMinimum(ctx); return err })
	return
}

func (r *lockedProductRepo) UpdateAggregateStock(ctx context.Context, productID int64, delta int) error {
	return r.withLock(func(in *memProductRepo) error { return in.UpdateAggregateStock(ctx, productID, delta) })
}

func (r *lockedProductRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.withLock(func(in *memProductRepo) error { return in.SoftDelete(ctx, id) })
}

type lockedLocationRepo struct{ s *memStore }

func (r *lockedLocationRepo) withLock(fn func(inner *memLocationRepo) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(&memLocationRepo{r.s})
}

func (r *lockedLocationRepo) Create(ctx context.Context, l *entity.Location) error {
	return r.withLock(func(in *memLocationRepo) error { return in.Create(ctx, l) })
}

func (r *lockedLocationRepo) GetByID(ctx context.Context, id int64) (l *entity.Location, err error) {
	err = r.withLock(func(in *memLocationRepo) error { l, err = in.GetByID(ctx, id); return err })
	return
}

func (r *lockedLocationRepo) GetByCode(ctx context.Context, code string) (l *entity.Location, err error) {
	err = r.withLock(func(in *memLocationRepo) error { l, err = in.GetByCode(ctx, code); return err })
	return
}

func (r *lockedLocationRepo) Update(ctx context.Context, l *entity.Location) error {
	return r.withLock(func(in *memLocationRepo) error { return in.Update(ctx, l) })
}

func (r *lockedLocationRepo) List(ctx context.Context, limit, offset int) (ls []*entity.Location, err error) {
	err = r.withLock(func(in *memLocationRepo) error { ls, err = in.List(ctx, limit, offset); return err })
	return
}

func (r *lockedLocationRepo) ListChildren(ctx context.Context, parentID int64) (ls []*entity.Location, err error) {
	err = r.withLock(func(in *memLocationRepo) error { ls, err = in.ListChildren(ctx, parentID); return err })
	return
}

func (r *lockedLocationRepo) HasReferences(ctx context.Context, id int64) (ok bool, err error) {
	err = r.withLock(func(in *memLocationRepo) error { ok, err = in.HasReferences(ctx, id); return err })
	return
}

func (r *lockedLocationRepo) Delete(ctx context.Context, id int64) error {
	return r.withLock(func(in *memLocationRepo) error { return in.Delete(ctx, id) })
}
