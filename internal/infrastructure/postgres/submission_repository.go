package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	"github.com/jhoicas/nfse-emissor/internal/domain/repository"
)

var _ repository.SubmissionRepository = (*SubmissionRepo)(nil)

// SchemaSubmissions DDL de la tabla de envíos. Se aplica con Migrate al arrancar.
const SchemaSubmissions = `
CREATE TABLE IF NOT EXISTS nfse_submissions (
	id            UUID PRIMARY KEY,
	kind          TEXT NOT NULL,
	document_id   TEXT NOT NULL,
	access_key    TEXT,
	environment   TEXT NOT NULL,
	status        TEXT NOT NULL,
	service_value NUMERIC(15,2) NOT NULL DEFAULT 0,
	signed_xml    TEXT NOT NULL,
	nfse_xml      TEXT,
	errors        TEXT,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	UNIQUE (kind, document_id)
)`

// EnsureSchema crea las tablas de envíos y de clientes si no existen.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, SchemaSubmissions); err != nil {
		return fmt.Errorf("postgres: crear nfse_submissions: %w", err)
	}
	if _, err := q.Exec(ctx, SchemaAPIClients); err != nil {
		return fmt.Errorf("postgres: crear nfse_api_clients: %w", err)
	}
	return nil
}

// SubmissionRepo implementación de SubmissionRepository (usable con pool o tx).
type SubmissionRepo struct {
	q   Querier
	now func() time.Time
}

// NewSubmissionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubmissionRepository(q Querier) *SubmissionRepo {
	return &SubmissionRepo{q: q, now: time.Now}
}

// Create persiste un envío nuevo; asigna ID y fechas si faltan.
func (r *SubmissionRepo) Create(ctx context.Context, s *entity.Submission) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	now := r.now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	query := `
		INSERT INTO nfse_submissions (id, kind, document_id, access_key, environment, status, service_value, signed_xml, nfse_xml, errors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		s.ID, string(s.Kind), s.DocumentID, nullIfEmpty(s.AccessKey), s.Environment, s.Status,
		s.ServiceValue, s.SignedXML, nullIfEmpty(s.NFSeXML), nullIfEmpty(s.Errors),
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("postgres: el documento %s ya fue registrado: %w", s.DocumentID, domain.ErrInvalidInput)
		}
		return fmt.Errorf("postgres: insert submission: %w", err)
	}
	return nil
}

// Update guarda el resultado del ADN (estado, chave, NFS-e y errores).
func (r *SubmissionRepo) Update(ctx context.Context, s *entity.Submission) error {
	s.UpdatedAt = r.now().UTC()
	query := `
		UPDATE nfse_submissions
		SET status     = $2,
		    access_key = COALESCE($3, access_key),
		    nfse_xml   = COALESCE($4, nfse_xml),
		    errors     = $5,
		    updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.Status, nullIfEmpty(s.AccessKey), nullIfEmpty(s.NFSeXML), nullIfEmpty(s.Errors), s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: submission %s: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

// GetByID obtiene un envío; devuelve domain.ErrNotFound si no existe.
func (r *SubmissionRepo) GetByID(ctx context.Context, id string) (*entity.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("postgres: id %q: %w", id, domain.ErrNotFound)
	}
	query := `
		SELECT id, kind, document_id, access_key, environment, status, service_value,
		       signed_xml, nfse_xml, errors, created_at, updated_at
		FROM nfse_submissions WHERE id = $1`
	var s entity.Submission
	var kind string
	var accessKey, nfseXML, errs *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &kind, &s.DocumentID, &accessKey, &s.Environment, &s.Status, &s.ServiceValue,
		&s.SignedXML, &nfseXML, &errs, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("postgres: submission %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("postgres: get submission: %w", err)
	}
	s.Kind = entity.SubmissionKind(kind)
	s.AccessKey = derefString(accessKey)
	s.NFSeXML = derefString(nfseXML)
	s.Errors = derefString(errs)
	return &s, nil
}
