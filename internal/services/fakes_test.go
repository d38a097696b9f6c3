package services

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medibook/booking-api/internal/gateway"
	"github.com/medibook/booking-api/internal/models"
	"github.com/medibook/booking-api/internal/repository"
)

// fakeDoctorRepo is an in-memory DoctorRepository. Its mutex plays the role
// of MongoDB's per-document atomicity: ReserveSlot checks and appends under
// one lock, so it has the same winner-takes-all behavior as the conditional
// update in production.
type fakeDoctorRepo struct {
	mu      sync.Mutex
	doctors map[primitive.ObjectID]*models.Doctor
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: map[primitive.ObjectID]*models.Doctor{}}
}

func (r *fakeDoctorRepo) put(d *models.Doctor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.SlotsBooked == nil {
		d.SlotsBooked = models.SlotLedger{}
	}
	r.doctors[d.ID] = d
}

func (r *fakeDoctorRepo) ledger(id primitive.ObjectID) models.SlotLedger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyLedger(r.doctors[id].SlotsBooked)
}

func (r *fakeDoctorRepo) Insert(ctx context.Context, doctor *models.Doctor) error {
	r.put(doctor)
	return nil
}

func (r *fakeDoctorRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *d
	copied.SlotsBooked = copyLedger(d.SlotsBooked)
	return &copied, nil
}

func (r *fakeDoctorRepo) FindByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.doctors {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDoctorRepo) FindAll(ctx context.Context) ([]models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDoctorRepo) SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Available = available
	return nil
}

func (r *fakeDoctorRepo) ReserveSlot(ctx context.Context, docID primitive.ObjectID, date, slot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[docID]
	if !ok {
		return repository.ErrNotFound
	}
	if !d.SlotsBooked.Reserve(date, slot) {
		return repository.ErrSlotTaken
	}
	return nil
}

func (r *fakeDoctorRepo) ReleaseSlot(ctx context.Context, docID primitive.ObjectID, date, slot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[docID]
	if !ok {
		return repository.ErrNotFound
	}
	d.SlotsBooked.Release(date, slot)
	return nil
}

func copyLedger(l models.SlotLedger) models.SlotLedger {
	copied := models.SlotLedger{}
	for date, slots := range l {
		copied[date] = append([]string(nil), slots...)
	}
	return copied
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (r *fakeUserRepo) put(u *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

func (r *fakeUserRepo) Insert(ctx context.Context, user *models.User) error {
	r.put(user)
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = update.Name
	u.Phone = update.Phone
	u.DOB = update.DOB
	u.Gender = update.Gender
	u.Address = update.Address
	if update.Image != "" {
		u.Image = update.Image
	}
	return nil
}

// fakeAppointmentRepo mirrors the conditional-update semantics of the Mongo
// implementation, including the cancelled:false guard on flag flips.
// insertErr lets a test force the appointment write to fail after the slot
// was reserved.
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[primitive.ObjectID]*models.Appointment
	insertErr    error
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: map[primitive.ObjectID]*models.Appointment{}}
}

func (r *fakeAppointmentRepo) get(id primitive.ObjectID) *models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appointments[id]
}

func (r *fakeAppointmentRepo) Insert(ctx context.Context, apt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	copied := *apt
	r.appointments[apt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *apt
	return &copied, nil
}

func (r *fakeAppointmentRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Appointment, 0)
	for _, apt := range r.appointments {
		if apt.UserID == userID {
			out = append(out, *apt)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindAll(ctx context.Context) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Appointment, 0, len(r.appointments))
	for _, apt := range r.appointments {
		out = append(out, *apt)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) MarkCancelled(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if apt.Cancelled {
		return repository.ErrAlreadyCancelled
	}
	apt.Cancelled = true
	return nil
}

func (r *fakeAppointmentRepo) MarkPaid(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if apt.Cancelled {
		return repository.ErrAlreadyCancelled
	}
	apt.Payment = true
	return nil
}

// fakeGateway records orders in memory. markPaid flips an order's status so
// confirmation paths can be exercised.
type fakeGateway struct {
	mu          sync.Mutex
	orders      map[string]*gateway.Order
	createCalls int
	fetchCalls  int
	createErr   error
	nextID      int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{orders: map[string]*gateway.Order{}}
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextID++
	order := &gateway.Order{
		ID:       fmt.Sprintf("order_%d", g.nextID),
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Status:   gateway.OrderStatusCreated,
	}
	g.orders[order.ID] = order
	return order, nil
}

func (g *fakeGateway) FetchOrder(ctx context.Context, orderID string) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchCalls++
	order, ok := g.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s not found", orderID)
	}
	copied := *order
	return &copied, nil
}

func (g *fakeGateway) markPaid(orderID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders[orderID].Status = gateway.OrderStatusPaid
}
