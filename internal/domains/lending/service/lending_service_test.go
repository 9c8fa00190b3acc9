package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/config"
	bookmodel "library-backend/internal/domains/book/model"
	bookrepo "library-backend/internal/domains/book/repository"
	"library-backend/internal/domains/lending/model"
	lendingrepo "library-backend/internal/domains/lending/repository"
	membermodel "library-backend/internal/domains/member/model"
	memberrepo "library-backend/internal/domains/member/repository"
	"library-backend/pkg/database"
)

// fakeRunner executes the transaction function directly; the mocks below
// ignore the tx handle.
type fakeRunner struct{}

func (fakeRunner) WithinTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

// Mock book repository

type mockBookRepo struct {
	books   map[uuid.UUID]bookmodel.Book
	updates int
}

func newMockBookRepo(books ...*bookmodel.Book) *mockBookRepo {
	m := &mockBookRepo{books: make(map[uuid.UUID]bookmodel.Book)}
	for _, b := range books {
		m.books[b.ID] = *b
	}
	return m
}

func (m *mockBookRepo) WithTx(tx pgx.Tx) bookrepo.Repository { return m }

func (m *mockBookRepo) Create(ctx context.Context, b *bookmodel.Book) error {
	m.books[b.ID] = *b
	return nil
}

func (m *mockBookRepo) FindByID(ctx context.Context, id uuid.UUID) (*bookmodel.Book, error) {
	b, ok := m.books[id]
	if !ok {
		return nil, bookmodel.ErrBookNotFound
	}
	return &b, nil
}

func (m *mockBookRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookmodel.Book, error) {
	return m.FindByID(ctx, id)
}

func (m *mockBookRepo) FindAll(ctx context.Context) ([]bookmodel.Book, error) {
	out := make([]bookmodel.Book, 0, len(m.books))
	for _, b := range m.books {
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBookRepo) Search(ctx context.Context, q bookmodel.SearchBooksQuery) ([]bookmodel.Book, error) {
	return m.FindAll(ctx)
}

func (m *mockBookRepo) Update(ctx context.Context, b *bookmodel.Book) error {
	if _, ok := m.books[b.ID]; !ok {
		return bookmodel.ErrBookNotFound
	}
	m.books[b.ID] = *b
	m.updates++
	return nil
}

func (m *mockBookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.books[id]; !ok {
		return bookmodel.ErrBookNotFound
	}
	delete(m.books, id)
	return nil
}

// Mock member repository

type mockMemberRepo struct {
	members map[uuid.UUID]membermodel.Member
}

func newMockMemberRepo(members ...*membermodel.Member) *mockMemberRepo {
	m := &mockMemberRepo{members: make(map[uuid.UUID]membermodel.Member)}
	for _, mem := range members {
		m.members[mem.ID] = *mem
	}
	return m
}

func (m *mockMemberRepo) WithTx(tx pgx.Tx) memberrepo.Repository { return m }

func (m *mockMemberRepo) Create(ctx context.Context, mem *membermodel.Member) error {
	m.members[mem.ID] = *mem
	return nil
}

func (m *mockMemberRepo) FindByID(ctx context.Context, id uuid.UUID) (*membermodel.Member, error) {
	mem, ok := m.members[id]
	if !ok {
		return nil, membermodel.ErrMemberNotFound
	}
	return &mem, nil
}

func (m *mockMemberRepo) FindAll(ctx context.Context) ([]membermodel.Member, error) {
	out := make([]membermodel.Member, 0, len(m.members))
	for _, mem := range m.members {
		out = append(out, mem)
	}
	return out, nil
}

func (m *mockMemberRepo) Update(ctx context.Context, mem *membermodel.Member) error {
	if _, ok := m.members[mem.ID]; !ok {
		return membermodel.ErrMemberNotFound
	}
	m.members[mem.ID] = *mem
	return nil
}

// Mock ledger

type mockLedger struct {
	records []model.BorrowingRecord
}

func (m *mockLedger) WithTx(tx pgx.Tx) lendingrepo.Ledger { return m }

func (m *mockLedger) Append(ctx context.Context, rec *model.BorrowingRecord) error {
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockLedger) FindOpenByBook(ctx context.Context, bookID uuid.UUID) (*model.BorrowingRecord, error) {
	for i := range m.records {
		if m.records[i].BookID == bookID && m.records[i].Open() {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *mockLedger) CountOpenByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	count := 0
	for i := range m.records {
		if m.records[i].MemberID == memberID && m.records[i].Open() {
			count++
		}
	}
	return count, nil
}

func (m *mockLedger) Update(ctx context.Context, rec *model.BorrowingRecord) error {
	for i := range m.records {
		if m.records[i].ID == rec.ID {
			m.records[i] = *rec
			return nil
		}
	}
	return model.ErrRecordNotFound
}

func (m *mockLedger) ListByMember(ctx context.Context, memberID uuid.UUID) ([]model.BorrowingRecord, error) {
	out := make([]model.BorrowingRecord, 0)
	for i := range m.records {
		if m.records[i].MemberID == memberID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

// Fixtures

var testLendingConfig = config.LendingConfig{
	BorrowingLimit: 5,
	LoanPeriodDays: 14,
	LateFeePerDay:  decimal.RequireFromString("0.5"),
}

func availableBook() *bookmodel.Book {
	return &bookmodel.Book{
		ID:        uuid.New(),
		Title:     "The Go Programming Language",
		Author:    "Donovan",
		Available: true,
	}
}

func member() *membermodel.Member {
	return &membermodel.Member{
		ID:    uuid.New(),
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  membermodel.RoleMember,
	}
}

func newTestService(books *mockBookRepo, members *mockMemberRepo, ledger lendingrepo.Ledger, day time.Time) *lendingService {
	svc := NewLendingService(fakeRunner{}, books, members, ledger, testLendingConfig).(*lendingService)
	svc.now = func() time.Time { return day }
	return svc
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Borrow

func TestBorrowBook_Success(t *testing.T) {
	b := availableBook()
	mem := member()
	books := newMockBookRepo(b)
	ledger := &mockLedger{}
	borrowDay := day(2025, time.March, 10)

	svc := newTestService(books, newMockMemberRepo(mem), ledger, borrowDay)

	got, err := svc.BorrowBook(context.Background(), b.ID, mem.ID)
	require.NoError(t, err)

	assert.False(t, got.Available)
	require.NotNil(t, got.BorrowedBy)
	assert.Equal(t, mem.ID, *got.BorrowedBy)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, day(2025, time.March, 24), *got.DueDate)

	require.Len(t, ledger.records, 1)
	rec := ledger.records[0]
	assert.Equal(t, b.ID, rec.BookID)
	assert.Equal(t, mem.ID, rec.MemberID)
	assert.Equal(t, borrowDay, rec.BorrowDate)
	assert.Equal(t, day(2025, time.March, 24), rec.DueDate)
	assert.True(t, rec.Open())
	assert.True(t, rec.LateFee.IsZero())

	// Store reflects the returned value.
	stored, err := books.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.False(t, stored.Available)
}

func TestBorrowBook_BookNotFound(t *testing.T) {
	svc := newTestService(newMockBookRepo(), newMockMemberRepo(member()), &mockLedger{}, day(2025, time.March, 10))

	_, err := svc.BorrowBook(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, bookmodel.ErrBookNotFound)
}

func TestBorrowBook_MemberNotFound(t *testing.T) {
	b := availableBook()
	books := newMockBookRepo(b)
	ledger := &mockLedger{}
	svc := newTestService(books, newMockMemberRepo(), ledger, day(2025, time.March, 10))

	_, err := svc.BorrowBook(context.Background(), b.ID, uuid.New())
	assert.ErrorIs(t, err, membermodel.ErrMemberNotFound)

	assert.Empty(t, ledger.records)
	stored, _ := books.FindByID(context.Background(), b.ID)
	assert.True(t, stored.Available)
}

func TestBorrowBook_NotAvailable(t *testing.T) {
	b := availableBook()
	first := member()
	second := member()
	books := newMockBookRepo(b)
	members := newMockMemberRepo(first, second)
	ledger := &mockLedger{}
	svc := newTestService(books, members, ledger, day(2025, time.March, 10))

	_, err := svc.BorrowBook(context.Background(), b.ID, first.ID)
	require.NoError(t, err)

	// Second borrow of the same book must fail and change nothing.
	_, err = svc.BorrowBook(context.Background(), b.ID, second.ID)
	assert.ErrorIs(t, err, model.ErrBookNotAvailable)

	require.Len(t, ledger.records, 1)
	assert.Equal(t, first.ID, ledger.records[0].MemberID)

	stored, _ := books.FindByID(context.Background(), b.ID)
	assert.Equal(t, first.ID, *stored.BorrowedBy)
}

func TestBorrowBook_LimitBoundary(t *testing.T) {
	mem := member()
	members := newMockMemberRepo(mem)
	borrowDay := day(2025, time.March, 10)

	// limit-1 open loans: one more borrow succeeds.
	ledger := &mockLedger{}
	for i := 0; i < testLendingConfig.BorrowingLimit-1; i++ {
		ledger.records = append(ledger.records, *model.NewBorrowingRecord(uuid.New(), mem.ID, borrowDay, borrowDay.AddDate(0, 0, 14)))
	}

	b := availableBook()
	books := newMockBookRepo(b)
	svc := newTestService(books, members, ledger, borrowDay)

	_, err := svc.BorrowBook(context.Background(), b.ID, mem.ID)
	require.NoError(t, err)
	require.Len(t, ledger.records, testLendingConfig.BorrowingLimit)

	// Now at the limit: the next borrow is refused without mutation.
	next := availableBook()
	require.NoError(t, books.Create(context.Background(), next))

	_, err = svc.BorrowBook(context.Background(), next.ID, mem.ID)
	assert.ErrorIs(t, err, model.ErrBorrowingLimitExceeded)

	assert.Len(t, ledger.records, testLendingConfig.BorrowingLimit)
	stored, _ := books.FindByID(context.Background(), next.ID)
	assert.True(t, stored.Available)
}

// Return

func TestReturnBook_OnTime(t *testing.T) {
	b := availableBook()
	mem := member()
	books := newMockBookRepo(b)
	members := newMockMemberRepo(mem)
	ledger := &mockLedger{}

	svc := newTestService(books, members, ledger, day(2025, time.March, 10))
	_, err := svc.BorrowBook(context.Background(), b.ID, mem.ID)
	require.NoError(t, err)

	// Return exactly on the due date.
	svc.now = func() time.Time { return day(2025, time.March, 24) }

	got, err := svc.ReturnBook(context.Background(), b.ID)
	require.NoError(t, err)

	assert.True(t, got.Available)
	assert.Nil(t, got.BorrowedBy)
	assert.Nil(t, got.DueDate)

	rec := ledger.records[0]
	assert.False(t, rec.Open())
	assert.Equal(t, day(2025, time.March, 24), *rec.ReturnDate)
	assert.True(t, rec.LateFee.IsZero())
}

func TestReturnBook_LateChargesPerDay(t *testing.T) {
	b := availableBook()
	mem := member()
	books := newMockBookRepo(b)
	ledger := &mockLedger{}

	svc := newTestService(books, newMockMemberRepo(mem), ledger, day(2025, time.March, 10))
	_, err := svc.BorrowBook(context.Background(), b.ID, mem.ID)
	require.NoError(t, err)

	// Due March 24, returned March 26: 2 days x 0.5.
	svc.now = func() time.Time { return day(2025, time.March, 26) }

	got, err := svc.ReturnBook(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, got.Available)

	rec := ledger.records[0]
	assert.True(t, rec.LateFee.Equal(decimal.RequireFromString("1.0")),
		"expected late fee 1.0, got %s", rec.LateFee)
}

func TestReturnBook_NoActiveLoan(t *testing.T) {
	b := availableBook()
	books := newMockBookRepo(b)
	ledger := &mockLedger{}
	svc := newTestService(books, newMockMemberRepo(), ledger, day(2025, time.March, 10))

	_, err := svc.ReturnBook(context.Background(), b.ID)
	assert.ErrorIs(t, err, model.ErrNoActiveLoan)

	// Book untouched.
	stored, _ := books.FindByID(context.Background(), b.ID)
	assert.True(t, stored.Available)
	assert.Zero(t, books.updates)
}

func TestReturnBook_BookNotFound(t *testing.T) {
	svc := newTestService(newMockBookRepo(), newMockMemberRepo(), &mockLedger{}, day(2025, time.March, 10))

	_, err := svc.ReturnBook(context.Background(), uuid.New())
	assert.ErrorIs(t, err, bookmodel.ErrBookNotFound)
}

// vanishingLedger finds an open record but fails to close it, as if the
// row disappeared between the read and the write.
type vanishingLedger struct {
	mockLedger
}

func (m *vanishingLedger) WithTx(tx pgx.Tx) lendingrepo.Ledger { return m }

func (m *vanishingLedger) Update(ctx context.Context, rec *model.BorrowingRecord) error {
	return model.ErrRecordNotFound
}

func TestReturnBook_MissingLedgerRowSurfacesSentinel(t *testing.T) {
	b := availableBook()
	mem := member()
	books := newMockBookRepo(b)
	ledger := &vanishingLedger{}

	svc := newTestService(books, newMockMemberRepo(mem), ledger, day(2025, time.March, 10))
	_, err := svc.BorrowBook(context.Background(), b.ID, mem.ID)
	require.NoError(t, err)

	_, err = svc.ReturnBook(context.Background(), b.ID)
	assert.ErrorIs(t, err, model.ErrRecordNotFound)
}

func TestReturnBook_TwiceFailsSecondTime(t *testing.T) {
	b := availableBook()
	mem := member()
	books := newMockBookRepo(b)
	ledger := &mockLedger{}

	svc := newTestService(books, newMockMemberRepo(mem), ledger, day(2025, time.March, 10))
	_, err := svc.BorrowBook(context.Background(), b.ID, mem.ID)
	require.NoError(t, err)

	_, err = svc.ReturnBook(context.Background(), b.ID)
	require.NoError(t, err)

	_, err = svc.ReturnBook(context.Background(), b.ID)
	assert.ErrorIs(t, err, model.ErrNoActiveLoan)
}

// End-to-end scenario: borrow on day D, return on D+16 with a 14-day loan.
func TestBorrowThenLateReturnScenario(t *testing.T) {
	b := availableBook()
	mem := member()
	books := newMockBookRepo(b)
	ledger := &mockLedger{}
	d := day(2025, time.June, 1)

	svc := newTestService(books, newMockMemberRepo(mem), ledger, d)

	borrowed, err := svc.BorrowBook(context.Background(), b.ID, mem.ID)
	require.NoError(t, err)
	assert.False(t, borrowed.Available)
	assert.Equal(t, d.AddDate(0, 0, 14), *borrowed.DueDate)

	svc.now = func() time.Time { return d.AddDate(0, 0, 16) }

	returned, err := svc.ReturnBook(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, returned.Available)
	assert.Nil(t, returned.BorrowedBy)

	rec := ledger.records[0]
	assert.False(t, rec.Open())
	assert.Equal(t, d.AddDate(0, 0, 16), *rec.ReturnDate)
	assert.True(t, rec.LateFee.Equal(decimal.RequireFromString("1.0")),
		"expected late fee 1.0, got %s", rec.LateFee)
}

// History

func TestListMemberLoans(t *testing.T) {
	b := availableBook()
	other := availableBook()
	mem := member()
	books := newMockBookRepo(b, other)
	ledger := &mockLedger{}

	svc := newTestService(books, newMockMemberRepo(mem), ledger, day(2025, time.March, 10))
	_, err := svc.BorrowBook(context.Background(), b.ID, mem.ID)
	require.NoError(t, err)
	_, err = svc.BorrowBook(context.Background(), other.ID, mem.ID)
	require.NoError(t, err)

	loans, err := svc.ListMemberLoans(context.Background(), mem.ID)
	require.NoError(t, err)
	assert.Len(t, loans, 2)
}

func TestListMemberLoans_MemberNotFound(t *testing.T) {
	svc := newTestService(newMockBookRepo(), newMockMemberRepo(), &mockLedger{}, day(2025, time.March, 10))

	_, err := svc.ListMemberLoans(context.Background(), uuid.New())
	assert.ErrorIs(t, err, membermodel.ErrMemberNotFound)
}
