package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/core/domain"

	"gorm.io/gorm"
)

// In-memory repository implementations backing the service unit tests. They
// return gorm.ErrRecordNotFound for misses so services behave identically
// over either store. All mutating paths take the store mutex, which gives
// the same linearization the SQL stores get from row locks.

// MemoryStore holds all in-memory tables behind one mutex.
type MemoryStore struct {
	mu sync.Mutex

	customers          map[uint]*models.Customer
	moderators         map[uint]*models.Moderator
	clients            map[uint]*models.Client
	categories         map[uint]*models.Category
	locations          map[uint]*models.Location
	applications       map[uint]*models.Application
	media              map[uint]*models.Media
	applicationMedia   map[uint][]uint
	refreshTokens      map[uint]*models.RefreshToken
	customerCategories map[uint][]uint

	nextID map[string]uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:          make(map[uint]*models.Customer),
		moderators:         make(map[uint]*models.Moderator),
		clients:            make(map[uint]*models.Client),
		categories:         make(map[uint]*models.Category),
		locations:          make(map[uint]*models.Location),
		applications:       make(map[uint]*models.Application),
		media:              make(map[uint]*models.Media),
		applicationMedia:   make(map[uint][]uint),
		refreshTokens:      make(map[uint]*models.RefreshToken),
		customerCategories: make(map[uint][]uint),
		nextID:             make(map[string]uint),
	}
}

func (s *MemoryStore) nextFor(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

// Customers returns the in-memory CustomerRepository.
func (s *MemoryStore) Customers() CustomerRepository { return &memoryCustomerRepo{s} }

// Moderators returns the in-memory ModeratorRepository.
func (s *MemoryStore) Moderators() ModeratorRepository { return &memoryModeratorRepo{s} }

// Clients returns the in-memory ClientRepository.
func (s *MemoryStore) Clients() ClientRepository { return &memoryClientRepo{s} }

// Categories returns the in-memory CategoryRepository.
func (s *MemoryStore) Categories() CategoryRepository { return &memoryCategoryRepo{s} }

// Locations returns the in-memory LocationRepository.
func (s *MemoryStore) Locations() LocationRepository { return &memoryLocationRepo{s} }

// Applications returns the in-memory ApplicationRepository.
func (s *MemoryStore) Applications() ApplicationRepository { return &memoryApplicationRepo{s} }

// Media returns the in-memory MediaRepository.
func (s *MemoryStore) Media() MediaRepository { return &memoryMediaRepo{s} }

// RefreshTokens returns the in-memory RefreshTokenRepository.
func (s *MemoryStore) RefreshTokens() RefreshTokenRepository { return &memoryRefreshTokenRepo{s} }

type memoryCustomerRepo struct{ s *MemoryStore }

func (r *memoryCustomerRepo) Create(_ context.Context, customer *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if customer.ID == 0 {
		customer.ID = r.s.nextFor("customers")
	}
	customer.CreatedAt = time.Now()
	cp := *customer
	r.s.customers[customer.ID] = &cp
	return nil
}

func (r *memoryCustomerRepo) GetByID(_ context.Context, id uint) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	customer, ok := r.s.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *customer
	if cp.LocationID != nil {
		if loc, ok := r.s.locations[*cp.LocationID]; ok {
			lc := *loc
			cp.Location = &lc
		}
	}
	for _, catID := range r.s.customerCategories[id] {
		if cat, ok := r.s.categories[catID]; ok {
			cp.Categories = append(cp.Categories, *cat)
		}
	}
	return &cp, nil
}

func (r *memoryCustomerRepo) GetByTgIDAndRole(_ context.Context, tgID string, roleID uint) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, customer := range r.s.customers {
		if customer.TgID == tgID && customer.RoleID == roleID {
			cp := *customer
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryCustomerRepo) ExistsActiveByTgID(_ context.Context, tgID string, roleID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, customer := range r.s.customers {
		if customer.TgID == tgID && customer.RoleID == roleID && customer.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryCustomerRepo) ExistsActiveByPhone(_ context.Context, phone string, roleID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, customer := range r.s.customers {
		if customer.PhoneNum == phone && customer.RoleID == roleID && customer.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryCustomerRepo) Update(_ context.Context, customer *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[customer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *customer
	cp.Location = nil
	cp.Categories = nil
	r.s.customers[customer.ID] = &cp
	return nil
}

func (r *memoryCustomerRepo) SetVerified(ctx context.Context, id uint, verified bool) (*models.Customer, error) {
	r.s.mu.Lock()
	customer, ok := r.s.customers[id]
	if !ok {
		r.s.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	customer.IsVerified = verified
	r.s.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r *memoryCustomerRepo) Deactivate(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	customer, ok := r.s.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	customer.IsActive = false
	return nil
}

func (r *memoryCustomerRepo) ListUnverified(_ context.Context, offset, limit int) ([]*models.Customer, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*models.Customer
	for _, customer := range r.s.customers {
		if !customer.IsVerified && customer.IsActive {
			cp := *customer
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memoryCustomerRepo) CategoryIDs(_ context.Context, customerID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]uint, len(r.s.customerCategories[customerID]))
	copy(ids, r.s.customerCategories[customerID])
	return ids, nil
}

func (r *memoryCustomerRepo) ReplaceCategories(_ context.Context, customerID uint, categoryIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]uint, len(categoryIDs))
	copy(ids, categoryIDs)
	r.s.customerCategories[customerID] = ids
	return nil
}

type memoryModeratorRepo struct{ s *MemoryStore }

func (r *memoryModeratorRepo) Create(_ context.Context, moderator *models.Moderator) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if moderator.ID == 0 {
		moderator.ID = r.s.nextFor("moderators")
	}
	cp := *moderator
	r.s.moderators[moderator.ID] = &cp
	return nil
}

func (r *memoryModeratorRepo) GetByID(_ context.Context, id uint) (*models.Moderator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	moderator, ok := r.s.moderators[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *moderator
	return &cp, nil
}

func (r *memoryModeratorRepo) GetByPhone(_ context.Context, phone string) (*models.Moderator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, moderator := range r.s.moderators {
		if moderator.PhoneNumber == phone {
			cp := *moderator
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type memoryClientRepo struct{ s *MemoryStore }

func (r *memoryClientRepo) Create(_ context.Context, client *models.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if client.ID == 0 {
		client.ID = r.s.nextFor("clients")
	}
	cp := *client
	r.s.clients[client.ID] = &cp
	return nil
}

func (r *memoryClientRepo) GetByName(_ context.Context, name string) (*models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, client := range r.s.clients {
		if client.Name == name {
			cp := *client
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type memoryCategoryRepo struct{ s *MemoryStore }

func (r *memoryCategoryRepo) Create(_ context.Context, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if category.ID == 0 {
		category.ID = r.s.nextFor("categories")
	}
	cp := *category
	r.s.categories[category.ID] = &cp
	return nil
}

func (r *memoryCategoryRepo) GetByID(_ context.Context, id uint) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	category, ok := r.s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *category
	return &cp, nil
}

func (r *memoryCategoryRepo) ListActive(_ context.Context) ([]*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var categories []*models.Category
	for _, category := range r.s.categories {
		if category.IsActive {
			cp := *category
			categories = append(categories, &cp)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (r *memoryCategoryRepo) ExistingIDs(_ context.Context, ids []uint) (map[uint]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if category, ok := r.s.categories[id]; ok && category.IsActive {
			existing[id] = true
		}
	}
	return existing, nil
}

func (r *memoryCategoryRepo) Deactivate(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	category, ok := r.s.categories[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	category.IsActive = false
	return nil
}

type memoryLocationRepo struct{ s *MemoryStore }

func (r *memoryLocationRepo) FindOrCreate(_ context.Context, latitude, longitude float64, address string) (*models.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, location := range r.s.locations {
		if location.Latitude == latitude && location.Longitude == longitude && location.AddressName == address {
			cp := *location
			return &cp, nil
		}
	}
	location := &models.Location{
		ID:          r.s.nextFor("locations"),
		Latitude:    latitude,
		Longitude:   longitude,
		AddressName: address,
	}
	r.s.locations[location.ID] = location
	cp := *location
	return &cp, nil
}

func (r *memoryLocationRepo) GetByID(_ context.Context, id uint) (*models.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	location, ok := r.s.locations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *location
	return &cp, nil
}

type memoryApplicationRepo struct{ s *MemoryStore }

func (r *memoryApplicationRepo) Create(_ context.Context, app *models.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if app.ID == 0 {
		app.ID = r.s.nextFor("applications")
	}
	if app.DateAt.IsZero() {
		app.DateAt = time.Now()
	}
	cp := *app
	cp.Location = nil
	cp.Category = nil
	cp.Media = nil
	r.s.applications[app.ID] = &cp
	return nil
}

func (r *memoryApplicationRepo) getLocked(id uint) (*models.Application, error) {
	app, ok := r.s.applications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return app, nil
}

func (r *memoryApplicationRepo) withRelations(app *models.Application) *models.Application {
	cp := *app
	if loc, ok := r.s.locations[cp.LocationID]; ok {
		lc := *loc
		cp.Location = &lc
	}
	if cat, ok := r.s.categories[cp.CategoryID]; ok {
		cc := *cat
		cp.Category = &cc
	}
	for _, mediaID := range r.s.applicationMedia[cp.ID] {
		if m, ok := r.s.media[mediaID]; ok {
			cp.Media = append(cp.Media, *m)
		}
	}
	return &cp
}

func (r *memoryApplicationRepo) GetByID(_ context.Context, id uint) (*models.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, err := r.getLocked(id)
	if err != nil {
		return nil, err
	}
	return r.withRelations(app), nil
}

func (r *memoryApplicationRepo) Accept(_ context.Context, appID, volunteerID uint, maxInProgress int) (*models.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, err := r.getLocked(appID)
	if err != nil {
		return nil, err
	}

	var inProgress int
	for _, other := range r.s.applications {
		if other.ExecutorID != nil && *other.ExecutorID == volunteerID && other.IsInProgress {
			inProgress++
		}
	}
	if inProgress >= maxInProgress {
		return nil, domain.ErrVolunteerSaturated
	}

	if err := app.Accept(volunteerID); err != nil {
		return nil, err
	}
	return r.withRelations(app), nil
}

func (r *memoryApplicationRepo) Transition(_ context.Context, appID uint, fn func(*models.Application) error) (*models.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, err := r.getLocked(appID)
	if err != nil {
		return nil, err
	}
	// Apply to a copy so a failed transition leaves the record untouched.
	cp := *app
	if err := fn(&cp); err != nil {
		return nil, err
	}
	*app = cp
	return r.withRelations(app), nil
}

func (r *memoryApplicationRepo) CountInProgressByExecutor(_ context.Context, volunteerID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, app := range r.s.applications {
		if app.ExecutorID != nil && *app.ExecutorID == volunteerID && app.IsInProgress {
			count++
		}
	}
	return count, nil
}

func (r *memoryApplicationRepo) ListOpenActive(_ context.Context, now time.Time) ([]*models.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var apps []*models.Application
	for _, app := range r.s.applications {
		if !app.IsDone && !app.IsInProgress && app.IsActive && app.ActiveTo.After(now) {
			apps = append(apps, r.withRelations(app))
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps, nil
}

func (r *memoryApplicationRepo) ListByExecutor(_ context.Context, executorID uint, done bool, now time.Time) ([]*models.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var apps []*models.Application
	for _, app := range r.s.applications {
		if app.ExecutorID == nil || *app.ExecutorID != executorID {
			continue
		}
		if !app.IsActive || !app.ActiveTo.After(now) {
			continue
		}
		if done && !app.IsDone {
			continue
		}
		if !done && (!app.IsInProgress || app.IsDone) {
			continue
		}
		apps = append(apps, r.withRelations(app))
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps, nil
}

func (r *memoryApplicationRepo) ListByCreator(_ context.Context, creatorID uint) ([]*models.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var apps []*models.Application
	for _, app := range r.s.applications {
		if app.CreatorID == creatorID {
			apps = append(apps, r.withRelations(app))
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID > apps[j].ID })
	return apps, nil
}

func (r *memoryApplicationRepo) Rating(_ context.Context) ([]RatingEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[uint]int64)
	for _, app := range r.s.applications {
		if app.IsDone && app.ExecutorID != nil {
			counts[*app.ExecutorID]++
		}
	}
	var entries []RatingEntry
	for executorID, count := range counts {
		name := fmt.Sprintf("volunteer %d", executorID)
		if customer, ok := r.s.customers[executorID]; ok {
			name = customer.Firstname + " " + customer.Lastname
		}
		entries = append(entries, RatingEntry{VolunteerName: name, ClosedAppCount: count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ClosedAppCount > entries[j].ClosedAppCount })
	return entries, nil
}

func (r *memoryApplicationRepo) DeactivateExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var affected int64
	for _, app := range r.s.applications {
		if app.IsActive && !app.IsInProgress && !app.IsDone && app.ActiveTo.Before(cutoff) {
			app.IsActive = false
			affected++
		}
	}
	return affected, nil
}

type memoryMediaRepo struct{ s *MemoryStore }

func (r *memoryMediaRepo) AttachToApplication(_ context.Context, media *models.Media, applicationID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if media.ID == 0 {
		media.ID = r.s.nextFor("media")
	}
	cp := *media
	r.s.media[media.ID] = &cp
	r.s.applicationMedia[applicationID] = append(r.s.applicationMedia[applicationID], media.ID)
	return nil
}

func (r *memoryMediaRepo) ListByApplication(_ context.Context, applicationID uint) ([]*models.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var media []*models.Media
	for _, mediaID := range r.s.applicationMedia[applicationID] {
		if m, ok := r.s.media[mediaID]; ok {
			cp := *m
			media = append(media, &cp)
		}
	}
	return media, nil
}

type memoryRefreshTokenRepo struct{ s *MemoryStore }

func (r *memoryRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if token.ID == 0 {
		token.ID = r.s.nextFor("refresh_tokens")
	}
	cp := *token
	r.s.refreshTokens[token.ID] = &cp
	return nil
}

func (r *memoryRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, token := range r.s.refreshTokens {
		if token.TokenHash == tokenHash {
			cp := *token
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryRefreshTokenRepo) Revoke(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token, ok := r.s.refreshTokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if token.RevokedAt == nil {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (r *memoryRefreshTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, token := range r.s.refreshTokens {
		if token.TokenHash == tokenHash && token.RevokedAt == nil {
			now := time.Now()
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *memoryRefreshTokenRepo) RevokeAllByPrincipal(_ context.Context, principalID, roleID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, token := range r.s.refreshTokens {
		if token.PrincipalID == principalID && token.RoleID == roleID && token.RevokedAt == nil {
			now := time.Now()
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *memoryRefreshTokenRepo) DeleteExpired(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, token := range r.s.refreshTokens {
		if token.IsExpired() {
			delete(r.s.refreshTokens, id)
		}
	}
	return nil
}
