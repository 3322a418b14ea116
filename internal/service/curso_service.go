package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/politrack/politrack-api/internal/models"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

type cursoStore interface {
	SaveCurso(ctx context.Context, cursoID string, update models.CursoUpdate) error
	GetCurso(ctx context.Context, cursoID string) (*models.Curso, error)
	ListCursos(ctx context.Context) (map[string]models.Curso, error)
	DeleteCurso(ctx context.Context, cursoID string) error
	DeleteEvaluacionesEstudiante(ctx context.Context, cursoID, correo string) error
}

// CreateCursoRequest carries a new course payload.
type CreateCursoRequest struct {
	Nombre      string              `json:"nombre" validate:"required"`
	Estudiantes []models.Estudiante `json:"estudiantes" validate:"required,min=1,dive"`
}

// ImportCursoRequest creates a course from raw CSV content.
type ImportCursoRequest struct {
	Nombre     string `json:"nombre" validate:"required"`
	CSVContent string `json:"csvContent" validate:"required"`
	// Delimiter is optional; empty means autodetect between comma and semicolon.
	Delimiter string `json:"delimiter" validate:"omitempty,oneof=0x2C ;"`
}

// RenameCursoRequest updates the course name only.
type RenameCursoRequest struct {
	Nombre string `json:"nombre" validate:"required"`
}

// ReplaceEstudiantesRequest swaps the full roster of a course.
type ReplaceEstudiantesRequest struct {
	Estudiantes []models.Estudiante `json:"estudiantes" validate:"required,min=1,dive"`
}

// CursoService orchestrates the course lifecycle on top of the hybrid store.
type CursoService struct {
	store     cursoStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCursoService constructs CursoService.
func NewCursoService(store cursoStore, validate *validator.Validate, logger *zap.Logger) *CursoService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CursoService{store: store, validator: validate, logger: logger}
}

// Create validates and persists a new course with a generated id.
func (s *CursoService) Create(ctx context.Context, req CreateCursoRequest) (*models.Curso, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid curso payload")
	}
	if err := validateRoster(req.Estudiantes); err != nil {
		return nil, err
	}

	cursoID := uuid.NewString()
	update := models.CursoUpdate{Nombre: &req.Nombre, Estudiantes: &req.Estudiantes}
	if err := s.store.SaveCurso(ctx, cursoID, update); err != nil {
		return nil, err
	}

	s.logger.Info("curso created", zap.String("curso_id", cursoID), zap.Int("estudiantes", len(req.Estudiantes)))
	return s.store.GetCurso(ctx, cursoID)
}

// ImportCSV parses a student roster CSV and creates a course from it.
func (s *CursoService) ImportCSV(ctx context.Context, req ImportCursoRequest) (*models.Curso, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import payload")
	}
	var delimiter rune
	if req.Delimiter != "" {
		delimiter = rune(req.Delimiter[0])
	}
	estudiantes, err := ParseEstudiantesCSV(req.CSVContent, delimiter)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, CreateCursoRequest{Nombre: req.Nombre, Estudiantes: estudiantes})
}

// List returns every course keyed by id.
func (s *CursoService) List(ctx context.Context) (map[string]models.Curso, error) {
	return s.store.ListCursos(ctx)
}

// Get returns one course.
func (s *CursoService) Get(ctx context.Context, cursoID string) (*models.Curso, error) {
	return s.store.GetCurso(ctx, cursoID)
}

// Rename updates the course name, leaving the roster untouched.
func (s *CursoService) Rename(ctx context.Context, cursoID string, req RenameCursoRequest) (*models.Curso, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rename payload")
	}
	if _, err := s.store.GetCurso(ctx, cursoID); err != nil {
		return nil, err
	}
	if err := s.store.SaveCurso(ctx, cursoID, models.CursoUpdate{Nombre: &req.Nombre}); err != nil {
		return nil, err
	}
	return s.store.GetCurso(ctx, cursoID)
}

// ReplaceEstudiantes swaps the roster. Evaluations of students no longer on
// the roster are deleted across all deliveries.
func (s *CursoService) ReplaceEstudiantes(ctx context.Context, cursoID string, req ReplaceEstudiantesRequest) (*models.Curso, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid roster payload")
	}
	if err := validateRoster(req.Estudiantes); err != nil {
		return nil, err
	}

	curso, err := s.store.GetCurso(ctx, cursoID)
	if err != nil {
		return nil, err
	}

	kept := make(map[string]struct{}, len(req.Estudiantes))
	for _, est := range req.Estudiantes {
		kept[est.Correo] = struct{}{}
	}

	if err := s.store.SaveCurso(ctx, cursoID, models.CursoUpdate{Estudiantes: &req.Estudiantes}); err != nil {
		return nil, err
	}

	for _, est := range curso.Estudiantes {
		if _, ok := kept[est.Correo]; ok {
			continue
		}
		if err := s.store.DeleteEvaluacionesEstudiante(ctx, cursoID, est.Correo); err != nil {
			return nil, err
		}
		s.logger.Info("evaluaciones removed with estudiante",
			zap.String("curso_id", cursoID),
			zap.String("correo", est.Correo))
	}

	return s.store.GetCurso(ctx, cursoID)
}

// Delete removes the course and, transitively, all its evaluations.
func (s *CursoService) Delete(ctx context.Context, cursoID string) error {
	if _, err := s.store.GetCurso(ctx, cursoID); err != nil {
		return err
	}
	return s.store.DeleteCurso(ctx, cursoID)
}

// validateRoster enforces unique correos within one course.
func validateRoster(estudiantes []models.Estudiante) error {
	seen := make(map[string]struct{}, len(estudiantes))
	for _, est := range estudiantes {
		correo := strings.ToLower(strings.TrimSpace(est.Correo))
		if _, ok := seen[correo]; ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicated correo %s in roster", est.Correo))
		}
		seen[correo] = struct{}{}
	}
	return nil
}
