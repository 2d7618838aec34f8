//go:build unit

package commands_test

import (
	"context"
	"time"

	"rently-backend/internal/domain/billing"
	"rently-backend/internal/domain/booking"
	"rently-backend/internal/domain/payment"
	"rently-backend/internal/infra"
	"rently-backend/internal/infra/db"
	"rently-backend/internal/pkg/errs"
	"rently-backend/internal/usecase/commands"
	"rently-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

// In-memory unit of work. Every fake repository persists reconstructed
// snapshots, so aggregate mutations only land through explicit writes, the
// same way the real pgx-backed repositories behave.

type fakeUoW struct {
	tx *fakeTx
}

func newFakeUoW() *fakeUoW {
	return &fakeUoW{tx: newFakeTx()}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

type fakeTx struct {
	bookings      *fakeBookingRepo
	bills         *fakeBillRepo
	transactions  *fakeTransactionRepo
	events        *fakeEventRepo
	logistics     *fakeLogisticsRepo
	notifications *fakeNotificationRepo
	idempotency   *fakeIdempotencyRepo
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		bookings:      &fakeBookingRepo{rows: map[uuid.UUID]*bookingRow{}},
		bills:         &fakeBillRepo{rows: map[uuid.UUID]*billRow{}},
		transactions:  &fakeTransactionRepo{},
		events:        &fakeEventRepo{},
		logistics:     &fakeLogisticsRepo{},
		notifications: &fakeNotificationRepo{},
		idempotency:   newFakeIdempotencyRepo(),
	}
}

func (t *fakeTx) Bookings() shared.BookingRepository          { return t.bookings }
func (t *fakeTx) Bills() shared.BillRepository                { return t.bills }
func (t *fakeTx) Transactions() shared.TransactionRepository  { return t.transactions }
func (t *fakeTx) Events() shared.EventRepository              { return t.events }
func (t *fakeTx) Logistics() shared.LogisticsRepository       { return t.logistics }
func (t *fakeTx) Notifications() shared.NotificationRepository { return t.notifications }
func (t *fakeTx) Idempotency() shared.IdempotencyRepository   { return t.idempotency }

// ---- bookings ----

type bookingRow struct {
	itemID             uuid.UUID
	ownerID            uuid.UUID
	renterID           uuid.UUID
	startDate          time.Time
	endDate            time.Time
	status             booking.Status
	renterNote         string
	ownerNote          string
	thirdPartyRequired bool
	itemReturned       bool
	pricePerDayPaise   int64
	totalPricePaise    int64
	logistics          *booking.LogisticsAssignment
	createdAt          time.Time
	updatedAt          time.Time
}

type fakeBookingRepo struct {
	rows    map[uuid.UUID]*bookingRow
	overlap bool
	failCAS bool
}

func notFound(msg string) error {
	return infra.WrapRepoErrKind(infra.KindNotFound, msg, nil)
}

func (r *fakeBookingRepo) put(b *booking.Booking, now time.Time) {
	r.rows[b.ID()] = &bookingRow{
		itemID:             b.ItemID(),
		ownerID:            b.OwnerID(),
		renterID:           b.RenterID(),
		startDate:          b.Period().Start(),
		endDate:            b.Period().End(),
		status:             b.Status(),
		renterNote:         b.RenterNote().String(),
		ownerNote:          b.OwnerNote().String(),
		thirdPartyRequired: b.ThirdPartyRequired(),
		itemReturned:       b.ItemReturned(),
		pricePerDayPaise:   b.PricePerDay().Paise(),
		totalPricePaise:    b.TotalPrice().Paise(),
		logistics:          b.Logistics(),
		createdAt:          now,
		updatedAt:          now,
	}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *booking.Booking, now time.Time) error {
	r.put(b, now)
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, notFound("booking not found")
	}
	period, err := booking.NewDateRange(row.startDate, row.endDate)
	if err != nil {
		return nil, err
	}
	return booking.ReconstructBooking(
		id, row.itemID, row.ownerID, row.renterID,
		period, row.status,
		booking.NewNote(row.renterNote), booking.NewNote(row.ownerNote),
		row.thirdPartyRequired, row.itemReturned,
		booking.NewMoney(row.pricePerDayPaise), booking.NewMoney(row.totalPricePaise),
		row.logistics,
		row.createdAt, row.updatedAt,
	), nil
}

func (r *fakeBookingRepo) CompareAndSetStatus(_ context.Context, id uuid.UUID, from, to booking.Status, updatedAt time.Time) (bool, error) {
	if r.failCAS {
		return false, nil
	}
	row, ok := r.rows[id]
	if !ok || row.status != from {
		return false, nil
	}
	row.status = to
	row.updatedAt = updatedAt
	return true, nil
}

func (r *fakeBookingRepo) UpdatePeriodAndPrice(_ context.Context, id uuid.UUID, endDate time.Time, totalPricePaise int64, updatedAt time.Time) error {
	row, ok := r.rows[id]
	if !ok {
		return notFound("booking not found")
	}
	row.endDate = endDate
	row.totalPricePaise = totalPricePaise
	row.updatedAt = updatedAt
	return nil
}

func (r *fakeBookingRepo) SetItemReturned(_ context.Context, id uuid.UUID, updatedAt time.Time) error {
	row, ok := r.rows[id]
	if !ok {
		return notFound("booking not found")
	}
	row.itemReturned = true
	row.updatedAt = updatedAt
	return nil
}

func (r *fakeBookingRepo) SetOwnerNote(_ context.Context, id uuid.UUID, note string, updatedAt time.Time) error {
	row, ok := r.rows[id]
	if !ok {
		return notFound("booking not found")
	}
	row.ownerNote = note
	row.updatedAt = updatedAt
	return nil
}

func (r *fakeBookingRepo) HasOverlapping(_ context.Context, _ uuid.UUID, _, _ time.Time, _ uuid.UUID) (bool, error) {
	return r.overlap, nil
}

// ---- bills ----

type billRow struct {
	bookingID       uuid.UUID
	number          string
	subtotalPaise   int64
	taxPaise        int64
	serviceFeePaise int64
	discountPaise   int64
	totalPaise      int64
	status          billing.PaymentStatus
	method          *billing.PaymentMethod
	paidAt          *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

type fakeBillRepo struct {
	rows map[uuid.UUID]*billRow
}

func (r *fakeBillRepo) Create(_ context.Context, bill *billing.Bill, now time.Time) error {
	for _, row := range r.rows {
		if row.bookingID == bill.BookingID() {
			return infra.WrapRepoErrKind(infra.KindDuplicateKey, "bill already exists", nil)
		}
	}
	r.rows[bill.ID()] = &billRow{
		bookingID:       bill.BookingID(),
		number:          bill.Number(),
		subtotalPaise:   bill.Subtotal().Paise(),
		taxPaise:        bill.Tax().Paise(),
		serviceFeePaise: bill.ServiceFee().Paise(),
		discountPaise:   bill.Discount().Paise(),
		totalPaise:      bill.Total().Paise(),
		status:          bill.PaymentStatus(),
		method:          bill.PaymentMethod(),
		paidAt:          bill.PaidAt(),
		createdAt:       now,
		updatedAt:       now,
	}
	return nil
}

func (r *fakeBillRepo) reconstruct(id uuid.UUID, row *billRow) *billing.Bill {
	return billing.ReconstructBill(
		id, row.bookingID, row.number,
		booking.NewMoney(row.subtotalPaise), booking.NewMoney(row.taxPaise),
		booking.NewMoney(row.serviceFeePaise), booking.NewMoney(row.discountPaise),
		booking.NewMoney(row.totalPaise),
		row.status, row.method, row.paidAt,
		row.createdAt, row.updatedAt,
	)
}

func (r *fakeBillRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Bill, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, notFound("bill not found")
	}
	return r.reconstruct(id, row), nil
}

func (r *fakeBillRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*billing.Bill, error) {
	for id, row := range r.rows {
		if row.bookingID == bookingID {
			return r.reconstruct(id, row), nil
		}
	}
	return nil, notFound("bill not found")
}

func (r *fakeBillRepo) SetMethod(_ context.Context, billID uuid.UUID, method billing.PaymentMethod, updatedAt time.Time) error {
	row, ok := r.rows[billID]
	if !ok {
		return notFound("bill not found")
	}
	row.method = &method
	row.updatedAt = updatedAt
	return nil
}

func (r *fakeBillRepo) CompareAndSetPaymentStatus(_ context.Context, billID uuid.UUID, from, to billing.PaymentStatus, paidAt *time.Time, updatedAt time.Time) (bool, error) {
	row, ok := r.rows[billID]
	if !ok || row.status != from {
		return false, nil
	}
	row.status = to
	row.paidAt = paidAt
	row.updatedAt = updatedAt
	return true, nil
}

// ---- transactions ----

type txnRow struct {
	id         uuid.UUID
	billID     uuid.UUID
	orderID    string
	paymentID  *string
	amount     int64
	method     billing.PaymentMethod
	status     payment.Status
	createdAt  time.Time
	resolvedAt *time.Time
}

type fakeTransactionRepo struct {
	rows []*txnRow
}

func (r *fakeTransactionRepo) Create(_ context.Context, txn *payment.Transaction, now time.Time) error {
	r.rows = append(r.rows, &txnRow{
		id:         txn.ID(),
		billID:     txn.BillID(),
		orderID:    txn.GatewayOrderID(),
		paymentID:  txn.GatewayPaymentID(),
		amount:     txn.Amount().Paise(),
		method:     txn.Method(),
		status:     txn.Status(),
		createdAt:  now,
		resolvedAt: txn.ResolvedAt(),
	})
	return nil
}

func (r *fakeTransactionRepo) FindByGatewayOrderID(_ context.Context, orderID string) (*payment.Transaction, error) {
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		if row.orderID == orderID {
			return payment.ReconstructTransaction(
				row.id, row.billID, row.orderID, row.paymentID,
				booking.NewMoney(row.amount), row.method, row.status,
				row.createdAt, row.resolvedAt,
			), nil
		}
	}
	return nil, notFound("transaction not found")
}

func (r *fakeTransactionRepo) HasSucceededForBill(_ context.Context, billID uuid.UUID) (bool, error) {
	for _, row := range r.rows {
		if row.billID == billID && row.status == payment.StatusSucceeded {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTransactionRepo) CompareAndResolve(_ context.Context, id uuid.UUID, to payment.Status, gatewayPaymentID *string, resolvedAt time.Time) (bool, error) {
	for _, row := range r.rows {
		if row.id != id {
			continue
		}
		if row.status != payment.StatusInitiated {
			return false, nil
		}
		row.status = to
		if gatewayPaymentID != nil {
			row.paymentID = gatewayPaymentID
		}
		row.resolvedAt = &resolvedAt
		return true, nil
	}
	return false, nil
}

func (r *fakeTransactionRepo) VoidInitiatedByBillID(_ context.Context, billID uuid.UUID, resolvedAt time.Time) error {
	for _, row := range r.rows {
		if row.billID == billID && row.status == payment.StatusInitiated {
			row.status = payment.StatusFailed
			row.resolvedAt = &resolvedAt
		}
	}
	return nil
}

// ---- events, logistics, notification jobs ----

type fakeEventRepo struct {
	appended []*booking.Event
}

func (r *fakeEventRepo) Append(_ context.Context, ev *booking.Event) error {
	r.appended = append(r.appended, ev)
	return nil
}

func (r *fakeEventRepo) last() *booking.Event {
	if len(r.appended) == 0 {
		return nil
	}
	return r.appended[len(r.appended)-1]
}

type fakeLogisticsRepo struct {
	upserted []*booking.LogisticsAssignment
}

func (r *fakeLogisticsRepo) Upsert(_ context.Context, a *booking.LogisticsAssignment) error {
	r.upserted = append(r.upserted, a)
	return nil
}

type jobRecord struct {
	kind  string
	topic string
}

type fakeNotificationRepo struct {
	jobs []jobRecord
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, kind, topic string, _ []byte, _ time.Time) error {
	r.jobs = append(r.jobs, jobRecord{kind: kind, topic: topic})
	return nil
}

func (r *fakeNotificationRepo) topics() []string {
	out := make([]string, len(r.jobs))
	for i, j := range r.jobs {
		out[i] = j.topic
	}
	return out
}

// ---- idempotency ----

type idemKey struct {
	key     uuid.UUID
	actorID uuid.UUID
}

type fakeIdempotencyRepo struct {
	records map[idemKey]*shared.IdempotencyRecord
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{records: map[idemKey]*shared.IdempotencyRecord{}}
}

func (r *fakeIdempotencyRepo) TryInsert(_ context.Context, key, actorID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	k := idemKey{key: key, actorID: actorID}
	if _, ok := r.records[k]; ok {
		return infra.WrapRepoErrKind(infra.KindDuplicateKey, "idempotency key exists", nil)
	}
	r.records[k] = &shared.IdempotencyRecord{
		Key:         key,
		ActorID:     actorID,
		Endpoint:    endpoint,
		RequestHash: requestHash,
		Status:      "processing",
		ExpiresAt:   expiresAt,
	}
	return nil
}

func (r *fakeIdempotencyRepo) Get(_ context.Context, key, actorID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.records[idemKey{key: key, actorID: actorID}]
	if !ok {
		return nil, notFound("idempotency key not found")
	}
	return rec, nil
}

func (r *fakeIdempotencyRepo) UpdateStatusCompleted(_ context.Context, key, actorID uuid.UUID, responseBodyHash string, resultBookingID uuid.UUID) error {
	rec, ok := r.records[idemKey{key: key, actorID: actorID}]
	if !ok {
		return notFound("idempotency key not found")
	}
	rec.Status = "completed"
	rec.ResultBookingID = &resultBookingID
	_ = responseBodyHash
	return nil
}

// ---- catalog and gateway ----

type lockCall struct {
	itemID    uuid.UUID
	bookingID uuid.UUID
	start     time.Time
	end       time.Time
}

type fakeCatalog struct {
	item     *commands.ItemSnapshot
	itemErr  error
	lockErr  error
	locks    []lockCall
	releases []uuid.UUID
}

func (c *fakeCatalog) GetItem(_ context.Context, _ uuid.UUID) (*commands.ItemSnapshot, error) {
	if c.itemErr != nil {
		return nil, c.itemErr
	}
	return c.item, nil
}

func (c *fakeCatalog) LockRange(_ context.Context, itemID, bookingID uuid.UUID, start, end time.Time) error {
	if c.lockErr != nil {
		return c.lockErr
	}
	c.locks = append(c.locks, lockCall{itemID: itemID, bookingID: bookingID, start: start, end: end})
	return nil
}

func (c *fakeCatalog) ReleaseRange(_ context.Context, _ uuid.UUID, bookingID uuid.UUID) error {
	c.releases = append(c.releases, bookingID)
	return nil
}

type fakeGateway struct {
	orderID  string
	orderErr error
	validSig string
	orders   int
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, _ string) (*commands.CheckoutSession, error) {
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	g.orders++
	return &commands.CheckoutSession{
		OrderID:     g.orderID,
		KeyID:       "rzp_test_key",
		AmountPaise: amountPaise,
		Currency:    "INR",
	}, nil
}

func (g *fakeGateway) VerifySignature(_, _, signature string) bool {
	return signature == g.validSig
}

var errCatalogDown = errs.New("catalog unavailable")
