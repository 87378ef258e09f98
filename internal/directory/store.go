// Package directory looks up sellers, contractors, employees and per-reseller
// notification settings in Postgres, caching the settings in Redis.
package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"return-notifier/internal/common/logger"
	"return-notifier/internal/models"

	"github.com/redis/go-redis/v9"
)

// builtinStatusNames is used when return_statuses has no row for a code.
var builtinStatusNames = map[int]string{
	0: "Completed",
	1: "Pending",
	2: "Rejected",
}

type Config struct {
	CacheTTL time.Duration
	// FallbackSender is used when a reseller has no email_from configured.
	FallbackSender string
}

// Store implements the entity, roster, sender and status lookups. A nil
// redis client disables caching.
type Store struct {
	db     *sql.DB
	redis  *redis.Client
	config Config
	logger logger.Logger
}

func NewStore(db *sql.DB, rdb *redis.Client, cfg Config, log logger.Logger) *Store {
	return &Store{
		db:     db,
		redis:  rdb,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"component": "directory"}),
	}
}

// FindSellerByID returns nil, nil when the seller does not exist.
func (s *Store) FindSellerByID(ctx context.Context, id int) (*models.Seller, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(name, '')
		FROM sellers
		WHERE id = $1`, id)

	var seller models.Seller
	if err := row.Scan(&seller.ID, &seller.Name); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query seller %d: %w", id, err)
	}
	return &seller, nil
}

// FindContractorByID returns nil, nil when the contractor does not exist.
func (s *Store) FindContractorByID(ctx context.Context, id int) (*models.Contractor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, seller_id, COALESCE(name, ''),
		       COALESCE(first_name, ''), COALESCE(middle_name, ''), COALESCE(last_name, ''),
		       COALESCE(email, ''), COALESCE(mobile, '')
		FROM contractors
		WHERE id = $1`, id)

	var c models.Contractor
	err := row.Scan(&c.ID, &c.Type, &c.SellerID, &c.Name,
		&c.FirstName, &c.MiddleName, &c.LastName, &c.Email, &c.Mobile)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query contractor %d: %w", id, err)
	}
	return &c, nil
}

// FindEmployeeByID returns nil, nil when the employee does not exist.
func (s *Store) FindEmployeeByID(ctx context.Context, id int) (*models.Employee, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(name, ''),
		       COALESCE(first_name, ''), COALESCE(middle_name, ''), COALESCE(last_name, ''),
		       COALESCE(email, '')
		FROM employees
		WHERE id = $1`, id)

	var e models.Employee
	err := row.Scan(&e.ID, &e.Name, &e.FirstName, &e.MiddleName, &e.LastName, &e.Email)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query employee %d: %w", id, err)
	}
	return &e, nil
}

// EmailsPermittedFor lists staff addresses holding permit for the reseller.
func (s *Store) EmailsPermittedFor(ctx context.Context, resellerID int, permit string) ([]string, error) {
	cacheKey := fmt.Sprintf("notify:roster:%d:%s", resellerID, permit)
	if val, ok := s.cacheGet(ctx, cacheKey); ok {
		var emails []string
		if err := json.Unmarshal([]byte(val), &emails); err == nil {
			return emails, nil
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT e.email
		FROM employees e
		JOIN employee_permits p ON p.employee_id = e.id
		WHERE p.reseller_id = $1 AND p.permit = $2 AND COALESCE(e.email, '') <> ''
		ORDER BY e.email`, resellerID, permit)
	if err != nil {
		return nil, fmt.Errorf("query roster for reseller %d: %w", resellerID, err)
	}
	defer rows.Close()

	emails := []string{}
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster rows: %w", err)
	}

	if encoded, err := json.Marshal(emails); err == nil {
		s.cacheSet(ctx, cacheKey, string(encoded))
	}
	return emails, nil
}

// DefaultSenderEmail returns the reseller's configured from-address, or the
// fallback sender when none is configured.
func (s *Store) DefaultSenderEmail(ctx context.Context, resellerID int) (string, error) {
	cacheKey := "notify:sender:" + strconv.Itoa(resellerID)
	if val, ok := s.cacheGet(ctx, cacheKey); ok {
		return val, nil
	}

	var emailFrom string
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(email_from, '')
		FROM reseller_settings
		WHERE reseller_id = $1`, resellerID).Scan(&emailFrom)
	if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("query sender for reseller %d: %w", resellerID, err)
	}

	if emailFrom == "" {
		return s.config.FallbackSender, nil
	}

	s.cacheSet(ctx, cacheKey, emailFrom)
	return emailFrom, nil
}

// StatusName returns the display name of a return status code. Unknown codes
// yield an empty name.
func (s *Store) StatusName(ctx context.Context, code int) (string, error) {
	cacheKey := "notify:status:" + strconv.Itoa(code)
	if val, ok := s.cacheGet(ctx, cacheKey); ok {
		return val, nil
	}

	var name string
	err := s.db.QueryRowContext(ctx, `
		SELECT name
		FROM return_statuses
		WHERE code = $1`, code).Scan(&name)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return builtinStatusNames[code], nil
	case err != nil:
		return "", fmt.Errorf("query status %d: %w", code, err)
	}

	s.cacheSet(ctx, cacheKey, name)
	return name, nil
}

func (s *Store) cacheGet(ctx context.Context, key string) (string, bool) {
	if s.redis == nil {
		return "", false
	}
	val, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			s.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
		}
		return "", false
	}
	return val, true
}

func (s *Store) cacheSet(ctx context.Context, key, val string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, val, s.config.CacheTTL).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
