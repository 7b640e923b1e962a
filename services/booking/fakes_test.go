package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gigbook/database/repository"
	"gigbook/models"
	"gigbook/services/payment"
	"gigbook/utils"
)

// monday is 2025-08-18.
var monday = time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type fakeDirectory struct {
	offerings map[string]*models.Offering
	payouts   map[string]string
	users     map[string]*models.User
	stored    map[string]string
}

func (d *fakeDirectory) GetOffering(_ context.Context, ref models.OfferingRef) (*models.Offering, error) {
	off, ok := d.offerings[ref.Key()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *off
	return &cp, nil
}

func (d *fakeDirectory) GetPayoutDestination(_ context.Context, providerID string) (string, error) {
	if _, ok := d.users[providerID]; !ok {
		return "", repository.ErrNotFound
	}
	return d.payouts[providerID], nil
}

func (d *fakeDirectory) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (d *fakeDirectory) SetGatewayCustomerID(_ context.Context, userID, customerID string) error {
	u, ok := d.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.CustomerID = customerID
	d.stored[userID] = customerID
	return nil
}

type memPayments struct {
	mu   sync.Mutex
	byID map[string]models.Payment
}

func (r *memPayments) Create(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = *p
	return nil
}

func (r *memPayments) GetByID(_ context.Context, id string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *memPayments) SetBookingIDs(_ context.Context, id string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.BookingIDs = append([]string(nil), ids...)
	r.byID[id] = p
	return nil
}

func (r *memPayments) UpdateStatus(_ context.Context, id string, from, to models.PaymentStatus, u models.PaymentUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok || p.Status != from {
		return repository.ErrStaleState
	}
	p.Status = to
	if u.ProviderTransferID != nil {
		p.ProviderTransferID = u.ProviderTransferID
	}
	if u.ProviderTransferReversedID != nil {
		p.ProviderTransferReversedID = u.ProviderTransferReversedID
	}
	r.byID[id] = p
	return nil
}

func (r *memPayments) list(match func(models.Payment) bool) []models.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Payment{}
	for _, p := range r.byID {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memPayments) ListByCustomer(_ context.Context, id string) ([]models.Payment, error) {
	return r.list(func(p models.Payment) bool { return p.CustomerID == id }), nil
}

func (r *memPayments) ListByProvider(_ context.Context, id string) ([]models.Payment, error) {
	return r.list(func(p models.Payment) bool { return p.ProviderID == id }), nil
}

type memBookings struct {
	mu       sync.Mutex
	all      []models.Booking
	reserved []string
}

func (r *memBookings) CreateMany(_ context.Context, bs []*models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range bs {
		r.all = append(r.all, *b)
	}
	return nil
}

func (r *memBookings) FindOverlapping(_ context.Context, ref models.OfferingRef, start, end time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.all {
		if b.Offering() == ref && b.Status != models.BookingCancelled && b.Overlaps(start, end) {
			cp := b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memBookings) ListByPayment(_ context.Context, paymentID string) ([]models.Booking, error) {
	return r.ListByPaymentIDs(context.Background(), []string{paymentID})
}

func (r *memBookings) ListByPaymentIDs(_ context.Context, ids []string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []models.Booking{}
	for _, b := range r.all {
		if want[b.PaymentID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookings) UpdateStatusByPayment(_ context.Context, paymentID string, status models.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.all {
		if r.all[i].PaymentID == paymentID {
			r.all[i].Status = status
		}
	}
	return nil
}

func (r *memBookings) ReserveOffering(_ context.Context, ref models.OfferingRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reserved = append(r.reserved, ref.Key())
	return nil
}

type memRefunds struct {
	mu   sync.Mutex
	byID map[string]models.RefundRequest
}

func (r *memRefunds) Create(_ context.Context, rr *models.RefundRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rr.ID] = *rr
	return nil
}

func (r *memRefunds) GetByID(_ context.Context, id string) (*models.RefundRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rr, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rr, nil
}

func (r *memRefunds) FindPendingByPayment(_ context.Context, paymentID string) (*models.RefundRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rr := range r.byID {
		if rr.PaymentID == paymentID && rr.Status == models.RefundPending {
			cp := rr
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRefunds) UpdateStatus(_ context.Context, id string, from, to models.RefundStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rr, ok := r.byID[id]
	if !ok || rr.Status != from {
		return repository.ErrStaleState
	}
	rr.Status = to
	r.byID[id] = rr
	return nil
}

func (r *memRefunds) ListByStatus(_ context.Context, status models.RefundStatus) ([]models.RefundRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.RefundRequest{}
	for _, rr := range r.byID {
		if rr.Status == status {
			out = append(out, rr)
		}
	}
	return out, nil
}

type memNotifications struct {
	mu  sync.Mutex
	all []models.Notification
}

func (r *memNotifications) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, *n)
	return nil
}

func (r *memNotifications) GetByID(_ context.Context, id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.all {
		if n.ID == id {
			cp := n
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memNotifications) MarkSent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.all {
		if r.all[i].ID == id {
			r.all[i].Sent = true
		}
	}
	return nil
}

func (r *memNotifications) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.all))
	for i, n := range r.all {
		out[i] = n.Type
	}
	return out
}

// fakeTx fails without running fn when err is set, like an aborted transaction.
type fakeTx struct {
	err   error
	calls int
}

func (t *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if t.err != nil {
		return t.err
	}
	return fn(ctx)
}

type fakeGateway struct {
	mu sync.Mutex

	captureStatus string
	captureErr    error
	transferErr   error
	refundErr     error

	customers []payment.CustomerRequest
	captures  []payment.CaptureRequest
	transfers []payment.TransferRequest
	refunds   []payment.RefundRequest
}

func (g *fakeGateway) CreateCustomer(_ context.Context, req payment.CustomerRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customers = append(g.customers, req)
	return "cus_new", nil
}

func (g *fakeGateway) Capture(_ context.Context, req payment.CaptureRequest) (*payment.CaptureResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captures = append(g.captures, req)
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	status := g.captureStatus
	if status == "" {
		status = payment.CaptureStatusSucceeded
	}
	return &payment.CaptureResult{IntentID: "pi_1", ChargeID: "ch_1", Status: status}, nil
}

func (g *fakeGateway) Transfer(_ context.Context, req payment.TransferRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transfers = append(g.transfers, req)
	if g.transferErr != nil {
		return "", g.transferErr
	}
	return "tr_1", nil
}

func (g *fakeGateway) Refund(_ context.Context, req payment.RefundRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds = append(g.refunds, req)
	if g.refundErr != nil {
		return "", g.refundErr
	}
	return "re_1", nil
}

type fakeEmitter struct {
	err     error
	emitted []string
}

func (e *fakeEmitter) Emit(_ context.Context, n *models.Notification) error {
	e.emitted = append(e.emitted, n.Type)
	return e.err
}

type fakeLocker struct {
	busy     map[string]bool
	acquired []string
	released int
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	if l.busy[key] {
		return nil, utils.ErrLockNotAcquired
	}
	l.acquired = append(l.acquired, key)
	return func() { l.released++ }, nil
}

type harness struct {
	svc           *DefaultEscrowService
	dir           *fakeDirectory
	payments      *memPayments
	bookings      *memBookings
	refunds       *memRefunds
	notifications *memNotifications
	tx            *fakeTx
	gateway       *fakeGateway
	emitter       *fakeEmitter
	locker        *fakeLocker
}

// newHarness has one musician m1 owned by provider p1 at 20.00/hour on Mondays
// and Wednesdays, and a customer c1 already registered with the gateway.
func newHarness() *harness {
	h := &harness{
		dir: &fakeDirectory{
			offerings: map[string]*models.Offering{
				"musician:m1": {
					Ref:                models.OfferingRef{Kind: models.OfferingMusician, ID: "m1"},
					ProviderID:         "p1",
					HourlyRate:         20.00,
					WeeklyAvailability: []string{"Monday", "WEDNESDAY"},
				},
			},
			payouts: map[string]string{"p1": "acct_p1"},
			users: map[string]*models.User{
				"c1":    {ID: "c1", Name: "Cara", Email: "c1@example.com", Role: models.RoleUser, CustomerID: "cus_c1"},
				"c2":    {ID: "c2", Name: "Cole", Email: "c2@example.com", Role: models.RoleUser},
				"p1":    {ID: "p1", Name: "Pat", Role: models.RoleMusician},
				"admin": {ID: "admin", Role: models.RoleSuperAdmin},
			},
			stored: map[string]string{},
		},
		payments:      &memPayments{byID: map[string]models.Payment{}},
		bookings:      &memBookings{},
		refunds:       &memRefunds{byID: map[string]models.RefundRequest{}},
		notifications: &memNotifications{},
		tx:            &fakeTx{},
		gateway:       &fakeGateway{},
		emitter:       &fakeEmitter{},
		locker:        &fakeLocker{busy: map[string]bool{}},
	}
	h.svc = &DefaultEscrowService{
		Directory:       h.dir,
		Users:           h.dir,
		Payments:        h.payments,
		Bookings:        h.bookings,
		Refunds:         h.refunds,
		Notifications:   h.notifications,
		Tx:              h.tx,
		Gateway:         h.gateway,
		Emitter:         h.emitter,
		Locker:          h.locker,
		FeePercent:      10,
		DefaultCurrency: "USD",
		Clock:           func() time.Time { return monday.Add(-24 * time.Hour) },
	}
	return h
}

var (
	customer = models.Caller{ID: "c1", Role: models.RoleUser}
	provider = models.Caller{ID: "p1", Role: models.RoleMusician}
	admin    = models.Caller{ID: "admin", Role: models.RoleSuperAdmin}
	stranger = models.Caller{ID: "x9", Role: models.RoleUser}
)

// seedPayment stores a payment of 40.00 (4.00 / 36.00) with one pending booking.
func (h *harness) seedPayment(id string, status models.PaymentStatus) models.Payment {
	p := models.Payment{
		ID:              id,
		CustomerID:      "c1",
		ProviderID:      "p1",
		Amount:          4000,
		Currency:        "USD",
		PlatformShare:   400,
		ProviderShare:   3600,
		Status:          status,
		PaymentIntentID: "pi_" + id,
		BookingIDs:      []string{"b-" + id},
	}
	h.payments.byID[id] = p
	b := models.Booking{
		ID:        "b-" + id,
		PaymentID: id,
		StartTime: at(monday, 10, 0),
		EndTime:   at(monday, 12, 0),
		Status:    models.BookingPending,
	}
	b.SetOffering(models.OfferingRef{Kind: models.OfferingMusician, ID: "m1"})
	h.bookings.all = append(h.bookings.all, b)
	return p
}

func slot(day string, start, end time.Time) models.BookingSlot {
	return models.BookingSlot{BookDate: day, StartTime: start, EndTime: end}
}

var errWriteConflict = errors.New("write conflict")
