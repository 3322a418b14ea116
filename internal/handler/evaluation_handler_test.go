package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/politrack/politrack-api/internal/models"
	"github.com/politrack/politrack-api/internal/service"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

type evaluationServiceMock struct {
	detalle  *models.EvaluacionDetalle
	saveErr  error
	grupal   bool
	cursoID  string
	targetID string
}

func (m *evaluationServiceMock) Evaluaciones(ctx context.Context, cursoID string) (models.EvaluacionesCurso, error) {
	return models.NewEvaluacionesCurso(), nil
}

func (m *evaluationServiceMock) SaveGrupal(ctx context.Context, cursoID, subgrupoID string, req service.SaveEvaluacionRequest) (*models.EvaluacionDetalle, error) {
	m.grupal = true
	m.cursoID = cursoID
	m.targetID = subgrupoID
	return m.detalle, m.saveErr
}

func (m *evaluationServiceMock) SaveIndividual(ctx context.Context, cursoID, correo string, req service.SaveEvaluacionRequest) (*models.EvaluacionDetalle, error) {
	m.cursoID = cursoID
	m.targetID = correo
	return m.detalle, m.saveErr
}

func (m *evaluationServiceMock) ComentariosComunes(ctx context.Context) ([]string, error) {
	return []string{"Buen trabajo en equipo."}, nil
}

func (m *evaluationServiceMock) AddComentarioComun(ctx context.Context, texto string) error {
	return m.saveErr
}

func (m *evaluationServiceMock) Rubricas(ctx context.Context) (map[string]models.Rubrica, error) {
	return map[string]models.Rubrica{}, nil
}

func (m *evaluationServiceMock) SaveRubrica(ctx context.Context, rubricaID string, r models.Rubrica) error {
	return m.saveErr
}

func evalTestContext(t *testing.T, method, path string, body []byte, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	return c, w
}

func TestEvaluationHandlerSaveGrupal(t *testing.T) {
	total := 32
	mock := &evaluationServiceMock{detalle: &models.EvaluacionDetalle{TotalScore: total}}
	handler := NewEvaluationHandler(mock)

	body := []byte(`{"entrega":"EF","criterios":{"producto_final":{"selectedLevel":3}}}`)
	c, w := evalTestContext(t, http.MethodPut, "/cursos/curso-1/evaluaciones/grupal/A", body, gin.Params{
		{Key: "cursoId", Value: "curso-1"},
		{Key: "subgrupoId", Value: "A"},
	})

	handler.SaveGrupal(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mock.grupal)
	assert.Equal(t, "curso-1", mock.cursoID)
	assert.Equal(t, "A", mock.targetID)
}

func TestEvaluationHandlerSaveIndividualMalformedBody(t *testing.T) {
	handler := NewEvaluationHandler(&evaluationServiceMock{})

	c, w := evalTestContext(t, http.MethodPut, "/cursos/curso-1/evaluaciones/individual/a@uni.edu", []byte(`{`), gin.Params{
		{Key: "cursoId", Value: "curso-1"},
		{Key: "correo", Value: "a@uni.edu"},
	})

	handler.SaveIndividual(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluationHandlerSaveGrupalUnknownSubgrupo(t *testing.T) {
	mock := &evaluationServiceMock{saveErr: appErrors.Clone(appErrors.ErrNotFound, "subgrupo Z has no students")}
	handler := NewEvaluationHandler(mock)

	body := []byte(`{"entrega":"E1","criterios":{"organizacion":{"selectedLevel":2}}}`)
	c, w := evalTestContext(t, http.MethodPut, "/cursos/curso-1/evaluaciones/grupal/Z", body, gin.Params{
		{Key: "cursoId", Value: "curso-1"},
		{Key: "subgrupoId", Value: "Z"},
	})

	handler.SaveGrupal(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvaluationHandlerAddComentarioRequiresTexto(t *testing.T) {
	handler := NewEvaluationHandler(&evaluationServiceMock{})

	c, w := evalTestContext(t, http.MethodPost, "/comentarios-comunes", []byte(`{}`), nil)

	handler.AddComentarioComun(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluationHandlerComentariosComunes(t *testing.T) {
	handler := NewEvaluationHandler(&evaluationServiceMock{})

	c, w := evalTestContext(t, http.MethodGet, "/comentarios-comunes", nil, nil)

	handler.ComentariosComunes(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Buen trabajo en equipo.")
}
