package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/politrack/politrack-api/internal/models"
)

func TestDecodeOrReturnsDefaultOnMalformedPayload(t *testing.T) {
	def := []models.Estudiante{}
	out := decodeOr(zap.NewNop(), `{"not":"a list"`, "cursos.x.estudiantes", def)
	assert.Equal(t, def, out)

	out = decodeOr(zap.NewNop(), "", "cursos.x.estudiantes", def)
	assert.Equal(t, def, out)
}

func TestDecodeOrParsesValidPayload(t *testing.T) {
	out := decodeOr(zap.NewNop(), `["uno","dos"]`, KeyComentariosComunes, []string{})
	assert.Equal(t, []string{"uno", "dos"}, out)
}

func TestEvaluacionIDCompositeKey(t *testing.T) {
	id := evaluacionID("curso-1", "alice@uni.edu", models.EntregaE2)
	assert.Equal(t, "curso-1-alice@uni.edu-E2", id)
}

func TestEvaluacionRowToModelFallbacks(t *testing.T) {
	row := evaluacionRow{
		ID:           "curso-1-alice@uni.edu-E1",
		EstudianteID: "alice@uni.edu",
		Entrega:      "E1",
		Data:         `{"pi_score":35,"sumatoria":35}`,
	}
	ev := row.toModel(zap.NewNop())
	assert.Equal(t, "alice@uni.edu", ev.Correo)
	require.NotNil(t, ev.PIScore)
	assert.Equal(t, 35, *ev.PIScore)
}

func TestRubricaRowToModelMalformedDefinicion(t *testing.T) {
	row := rubricaRow{ID: "individual", Nombre: "Evaluación Individual", Definicion: `{broken`}
	r := row.toModel(zap.NewNop())
	assert.Equal(t, "individual", r.ID)
	assert.Equal(t, "Evaluación Individual", r.Nombre)
	assert.Empty(t, r.Criterios)
}
