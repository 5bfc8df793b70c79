package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inbox/internal/store"
)

// Services reads the sender-service registry and per-service remote-content
// configuration. Both tables are versioned; reads take the highest version.
type Services struct {
	DB *pgxpool.Pool
}

func NewServices(db *pgxpool.Pool) *Services { return &Services{DB: db} }

func (s *Services) FindLatestByID(ctx context.Context, serviceID string) (store.ServiceMetadata, bool, error) {
	var md store.ServiceMetadata
	row := s.DB.QueryRow(ctx, `
		SELECT service_id, version, service_name, organization_name
		FROM services
		WHERE service_id = $1
		ORDER BY version DESC
		LIMIT 1
	`, serviceID)
	if err := row.Scan(&md.ServiceID, &md.Version, &md.ServiceName, &md.OrganizationName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ServiceMetadata{}, false, nil
		}
		return store.ServiceMetadata{}, false, fmt.Errorf("query service %s: %w", serviceID, err)
	}
	return md, true, nil
}

func (s *Services) FindRemoteContentConfig(ctx context.Context, serviceID string) (store.RemoteContentConfig, bool, error) {
	var cfg store.RemoteContentConfig
	row := s.DB.QueryRow(ctx, `
		SELECT service_id, version, has_precondition
		FROM remote_content_configs
		WHERE service_id = $1
		ORDER BY version DESC
		LIMIT 1
	`, serviceID)
	if err := row.Scan(&cfg.ServiceID, &cfg.Version, &cfg.HasPrecondition); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.RemoteContentConfig{}, false, nil
		}
		return store.RemoteContentConfig{}, false, fmt.Errorf("query remote content config %s: %w", serviceID, err)
	}
	return cfg, true, nil
}
