package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PostgresConfig configures the durable session backend.
type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type sessionRow struct {
	bun.BaseModel `bun:"table:negotiation_sessions,alias:ns"`

	CustomerID string    `bun:"customer_id,pk"`
	Payload    []byte    `bun:"payload,type:jsonb,notnull"`
	Version    int       `bun:"version,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// PostgresStore persists sessions in Postgres through bun, one JSONB row per
// customer. The whole session is written atomically, matching the
// whole-object swap semantics the turn loop relies on.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &PostgresStore{db: db}, nil
}

// Init creates the backing table if it does not exist yet.
func (p *PostgresStore) Init(ctx context.Context) error {
	_, err := p.db.NewCreateTable().
		Model((*sessionRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (p *PostgresStore) Load(ctx context.Context, customerID string) (*Session, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, ErrNotFound
	}

	row := new(sessionRow)
	err := p.db.NewSelect().
		Model(row).
		Where("customer_id = ?", customerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session customer=%s: %w", customerID, err)
	}

	var s Session
	if err := json.Unmarshal(row.Payload, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session customer=%s: %w", customerID, err)
	}
	return &s, nil
}

func (p *PostgresStore) Save(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(s.CustomerID) == "" {
		return errors.New("session customer id is empty")
	}
	if s.Version <= 0 {
		s.Version = 1
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session customer=%s: %w", s.CustomerID, err)
	}

	row := &sessionRow{
		CustomerID: s.CustomerID,
		Payload:    payload,
		Version:    s.Version,
		UpdatedAt:  s.UpdatedAt,
	}
	_, err = p.db.NewInsert().
		Model(row).
		On("CONFLICT (customer_id) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("version = EXCLUDED.version").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save session customer=%s: %w", s.CustomerID, err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, customerID string) error {
	_, err := p.db.NewDelete().
		Model((*sessionRow)(nil)).
		Where("customer_id = ?", strings.TrimSpace(customerID)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete session customer=%s: %w", customerID, err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
