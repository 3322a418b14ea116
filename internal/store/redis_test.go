package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/politrack/politrack-api/internal/models"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

func newLiveRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client, nil)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreDeleteCursoDropsEvaluacionDocument(t *testing.T) {
	store, mr := newLiveRedisStore(t)
	ctx := context.Background()

	nombre := "Arquitectura de Software"
	require.NoError(t, store.SaveCurso(ctx, "curso-1", models.CursoUpdate{Nombre: &nombre}))

	ev := models.Evaluacion{Correo: "alice@uni.edu", PGScore: scoreOf(30)}
	ev.RecalcSumatoria()
	require.NoError(t, store.SaveFullEvaluacion(ctx, "curso-1", "alice@uni.edu", models.EntregaE1, ev))
	require.True(t, mr.Exists(evaluacionesKey("curso-1")))

	require.NoError(t, store.DeleteCurso(ctx, "curso-1"))

	_, err := store.GetCurso(ctx, "curso-1")
	assert.True(t, appErrors.IsNotFound(err))
	assert.False(t, mr.Exists(evaluacionesKey("curso-1")), "evaluacion document survived the course delete")

	evs, err := store.GetEvaluacionesCurso(ctx, "curso-1")
	require.NoError(t, err)
	for _, entrega := range models.Entregas {
		assert.Empty(t, evs[entrega])
	}
}

func TestRedisStoreSaveFullEvaluacionReadModifyWrite(t *testing.T) {
	store, _ := newLiveRedisStore(t)
	ctx := context.Background()

	nombre := "Bases de Datos"
	require.NoError(t, store.SaveCurso(ctx, "curso-2", models.CursoUpdate{Nombre: &nombre}))

	first := models.Evaluacion{Correo: "alice@uni.edu", PGScore: scoreOf(30)}
	first.RecalcSumatoria()
	require.NoError(t, store.SaveFullEvaluacion(ctx, "curso-2", "alice@uni.edu", models.EntregaE1, first))

	second := models.Evaluacion{Correo: "benito@uni.edu", PIScore: scoreOf(22)}
	second.RecalcSumatoria()
	require.NoError(t, store.SaveFullEvaluacion(ctx, "curso-2", "benito@uni.edu", models.EntregaE1, second))

	evs, err := store.GetEvaluacionesCurso(ctx, "curso-2")
	require.NoError(t, err)

	// the second write must not clobber the first inside the shared document
	alice, ok := evs[models.EntregaE1]["alice@uni.edu"]
	require.True(t, ok)
	require.NotNil(t, alice.PGScore)
	assert.Equal(t, 30, *alice.PGScore)

	benito, ok := evs[models.EntregaE1]["benito@uni.edu"]
	require.True(t, ok)
	require.NotNil(t, benito.PIScore)
	assert.Equal(t, 22, *benito.PIScore)

	curso, err := store.GetCurso(ctx, "curso-2")
	require.NoError(t, err)
	assert.Equal(t, benito.UpdatedAt, curso.UpdatedAt)
}

func TestRedisStoreComentariosNotSeeded(t *testing.T) {
	store, _ := newLiveRedisStore(t)

	_, err := store.GetComentariosComunes(context.Background())
	assert.True(t, appErrors.IsNotFound(err))
}

func TestRedisStoreClearRemovesEveryNamespaceKey(t *testing.T) {
	store, mr := newLiveRedisStore(t)
	ctx := context.Background()

	nombre := "Redes"
	require.NoError(t, store.SaveCurso(ctx, "curso-3", models.CursoUpdate{Nombre: &nombre}))
	ev := models.Evaluacion{Correo: "carla@uni.edu", PIScore: scoreOf(18)}
	require.NoError(t, store.SaveFullEvaluacion(ctx, "curso-3", "carla@uni.edu", models.EntregaEF, ev))
	require.NoError(t, store.SaveComentariosComunes(ctx, []string{"Buen trabajo."}))

	require.NoError(t, store.Clear(ctx))

	assert.False(t, mr.Exists(KeyCursos))
	assert.False(t, mr.Exists(KeyComentariosComunes))
	assert.False(t, mr.Exists(evaluacionesKey("curso-3")))
}
