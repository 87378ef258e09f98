package directory

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"return-notifier/internal/common/logger"
	"return-notifier/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestStore(t *testing.T, db *sql.DB, rdb *redis.Client) *Store {
	return NewStore(db, rdb, Config{CacheTTL: time.Minute, FallbackSender: "noreply@returns.test"}, logger.NewTestLogger(t))
}

// ==========================
// Entity lookups
// ==========================

func TestStore_FindSellerByID(t *testing.T) {
	db, mock := setupMockDB(t)
	store := newTestStore(t, db, nil)

	mock.ExpectQuery("FROM sellers").WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(10, "Seller Ten"))
	mock.ExpectQuery("FROM sellers").WithArgs(11).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM sellers").WithArgs(12).
		WillReturnError(errors.New("connection reset"))

	seller, err := store.FindSellerByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, &models.Seller{ID: 10, Name: "Seller Ten"}, seller)

	seller, err = store.FindSellerByID(context.Background(), 11)
	assert.NoError(t, err)
	assert.Nil(t, seller)

	_, err = store.FindSellerByID(context.Background(), 12)
	assert.ErrorContains(t, err, "connection reset")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FindContractorByID(t *testing.T) {
	db, mock := setupMockDB(t)
	store := newTestStore(t, db, nil)

	mock.ExpectQuery("FROM contractors").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "type", "seller_id", "name", "first_name", "middle_name", "last_name", "email", "mobile",
		}).AddRow(5, models.ContractorTypeCustomer, 10, "ACME", "Anna", "", "Nowak", "anna@example.com", "+48600100200"))

	c, err := store.FindContractorByID(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, c.IsCustomerOf(10))
	assert.Equal(t, "Anna Nowak", c.DisplayName())
	assert.Equal(t, "+48600100200", c.Mobile)

	mock.ExpectQuery("FROM contractors").WithArgs(6).WillReturnError(sql.ErrNoRows)
	c, err = store.FindContractorByID(context.Background(), 6)
	assert.NoError(t, err)
	assert.Nil(t, c)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FindEmployeeByID(t *testing.T) {
	db, mock := setupMockDB(t)
	store := newTestStore(t, db, nil)

	mock.ExpectQuery("FROM employees").WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "first_name", "middle_name", "last_name", "email"}).
			AddRow(7, "jk", "Jan", "", "Kowalski", "jan@seller.test"))

	e, err := store.FindEmployeeByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Jan Kowalski", e.FullName())

	mock.ExpectQuery("FROM employees").WithArgs(8).WillReturnError(sql.ErrNoRows)
	e, err = store.FindEmployeeByID(context.Background(), 8)
	assert.NoError(t, err)
	assert.Nil(t, e)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Cached settings
// ==========================

func TestStore_EmailsPermittedFor_CachesResult(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, mr := setupRedis(t)
	store := newTestStore(t, db, rdb)

	mock.ExpectQuery("FROM employees e").WithArgs(10, models.PermitGoodsReturn).
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("a@seller.test").AddRow("b@seller.test"))

	emails, err := store.EmailsPermittedFor(context.Background(), 10, models.PermitGoodsReturn)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@seller.test", "b@seller.test"}, emails)

	cached, err := mr.Get("notify:roster:10:tsGoodsReturn")
	require.NoError(t, err)
	assert.JSONEq(t, `["a@seller.test","b@seller.test"]`, cached)

	// second call is served from Redis; no further query expected
	emails, err = store.EmailsPermittedFor(context.Background(), 10, models.PermitGoodsReturn)
	require.NoError(t, err)
	assert.Len(t, emails, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_EmailsPermittedFor_EmptyRoster(t *testing.T) {
	db, mock := setupMockDB(t)
	store := newTestStore(t, db, nil)

	mock.ExpectQuery("FROM employees e").WithArgs(10, models.PermitGoodsReturn).
		WillReturnRows(sqlmock.NewRows([]string{"email"}))

	emails, err := store.EmailsPermittedFor(context.Background(), 10, models.PermitGoodsReturn)
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestStore_DefaultSenderEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, mr := setupRedis(t)
	store := newTestStore(t, db, rdb)

	t.Run("configured sender is cached", func(t *testing.T) {
		mock.ExpectQuery("FROM reseller_settings").WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"email_from"}).AddRow("returns@seller.test"))

		sender, err := store.DefaultSenderEmail(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, "returns@seller.test", sender)
		assert.True(t, mr.Exists("notify:sender:10"))
	})

	t.Run("missing settings fall back", func(t *testing.T) {
		mock.ExpectQuery("FROM reseller_settings").WithArgs(11).WillReturnError(sql.ErrNoRows)

		sender, err := store.DefaultSenderEmail(context.Background(), 11)
		require.NoError(t, err)
		assert.Equal(t, "noreply@returns.test", sender)
		assert.False(t, mr.Exists("notify:sender:11"))
	})

	t.Run("database failure", func(t *testing.T) {
		mock.ExpectQuery("FROM reseller_settings").WithArgs(12).WillReturnError(errors.New("timeout"))

		_, err := store.DefaultSenderEmail(context.Background(), 12)
		assert.ErrorContains(t, err, "timeout")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_StatusName(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, mr := setupRedis(t)
	store := newTestStore(t, db, rdb)

	mr.Set("notify:status:5", "Shipped back")
	name, err := store.StatusName(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Shipped back", name)

	mock.ExpectQuery("FROM return_statuses").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Awaiting review"))
	name, err = store.StatusName(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Awaiting review", name)

	mock.ExpectQuery("FROM return_statuses").WithArgs(2).WillReturnError(sql.ErrNoRows)
	name, err = store.StatusName(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Rejected", name)

	mock.ExpectQuery("FROM return_statuses").WithArgs(99).WillReturnError(sql.ErrNoRows)
	name, err = store.StatusName(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, "", name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CacheFailuresFallThroughToDatabase(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, redisMock := redismock.NewClientMock()
	store := newTestStore(t, db, rdb)

	redisMock.ExpectGet("notify:status:2").SetErr(errors.New("redis down"))
	mock.ExpectQuery("FROM return_statuses").WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Rejected"))
	redisMock.ExpectSet("notify:status:2", "Rejected", time.Minute).SetErr(errors.New("redis down"))

	name, err := store.StatusName(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Rejected", name)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
