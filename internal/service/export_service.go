package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/politrack/politrack-api/internal/models"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
	"github.com/politrack/politrack-api/pkg/export"
)

type exportStore interface {
	GetCurso(ctx context.Context, cursoID string) (*models.Curso, error)
	GetEvaluacionesCurso(ctx context.Context, cursoID string) (models.EvaluacionesCurso, error)
}

// ExportService renders per-course score sheets. One row per enrolled
// student, ordered like the roster, with group and individual scores plus
// the combined total for every delivery.
type ExportService struct {
	store  exportStore
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

func NewExportService(store exportStore, csvDelimiter rune, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		store:  store,
		csv:    export.NewCSVExporter(csvDelimiter),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// ScoreSheetCSV renders the course score sheet as CSV bytes and returns the
// suggested filename.
func (s *ExportService) ScoreSheetCSV(ctx context.Context, cursoID string) ([]byte, string, error) {
	curso, data, err := s.buildDataset(ctx, cursoID)
	if err != nil {
		return nil, "", err
	}
	out, err := s.csv.Render(data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv render failed")
	}
	return out, exportFilename(curso.Nombre, "csv"), nil
}

// ScoreSheetPDF renders the course score sheet as a landscape PDF.
func (s *ExportService) ScoreSheetPDF(ctx context.Context, cursoID string) ([]byte, string, error) {
	curso, data, err := s.buildDataset(ctx, cursoID)
	if err != nil {
		return nil, "", err
	}
	subtitle := fmt.Sprintf("%d estudiantes", len(curso.Estudiantes))
	out, err := s.pdf.Render(data, "Notas - "+curso.Nombre, subtitle)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf render failed")
	}
	return out, exportFilename(curso.Nombre, "pdf"), nil
}

func (s *ExportService) buildDataset(ctx context.Context, cursoID string) (*models.Curso, export.Dataset, error) {
	curso, err := s.store.GetCurso(ctx, cursoID)
	if err != nil {
		return nil, export.Dataset{}, err
	}
	evaluaciones, err := s.store.GetEvaluacionesCurso(ctx, cursoID)
	if err != nil {
		return nil, export.Dataset{}, err
	}

	headers := []string{"Apellidos", "Nombres", "Correo", "Grupo", "Subgrupo"}
	for _, entrega := range models.Entregas {
		label := models.EntregaLabels[entrega]
		headers = append(headers, label+" PG", label+" PI", label+" Total")
	}

	estudiantes := make([]models.Estudiante, len(curso.Estudiantes))
	copy(estudiantes, curso.Estudiantes)
	sort.SliceStable(estudiantes, func(i, j int) bool {
		if estudiantes[i].Apellidos != estudiantes[j].Apellidos {
			return estudiantes[i].Apellidos < estudiantes[j].Apellidos
		}
		return estudiantes[i].Nombres < estudiantes[j].Nombres
	})

	rows := make([][]string, 0, len(estudiantes))
	for _, est := range estudiantes {
		row := []string{est.Apellidos, est.Nombres, est.Correo, est.Grupo, est.Subgrupo}
		for _, entrega := range models.Entregas {
			ev, ok := evaluaciones[entrega][est.Correo]
			if !ok {
				row = append(row, "", "", "")
				continue
			}
			row = append(row, formatScore(ev.PGScore), formatScore(ev.PIScore), fmt.Sprintf("%d", ev.Sumatoria))
		}
		rows = append(rows, row)
	}

	return curso, export.Dataset{Headers: headers, Rows: rows}, nil
}

func formatScore(score *int) string {
	if score == nil {
		return ""
	}
	return fmt.Sprintf("%d", *score)
}

func exportFilename(nombre, ext string) string {
	slug := strings.ToLower(strings.TrimSpace(nombre))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			return -1
		}
	}, slug)
	if slug == "" {
		slug = "curso"
	}
	return "notas_" + slug + "." + ext
}
