package repository

import (
	"context"

	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
)

// SubmissionRepository puerto de persistencia del registro de envíos.
type SubmissionRepository interface {
	Create(ctx context.Context, s *entity.Submission) error
	Update(ctx context.Context, s *entity.Submission) error
	GetByID(ctx context.Context, id string) (*entity.Submission, error)
}
