package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

func TestParseEstudiantesCSVComma(t *testing.T) {
	content := "apellidos,nombres,correo,grupo,subgrupo\n" +
		"Aguirre,Alice,alice@uni.edu,G1,G1-A\n" +
		"Bravo,Benito,benito@uni.edu,G1,G1-B\n"

	estudiantes, err := ParseEstudiantesCSV(content, 0)
	require.NoError(t, err)
	require.Len(t, estudiantes, 2)
	assert.Equal(t, "Aguirre", estudiantes[0].Apellidos)
	assert.Equal(t, "benito@uni.edu", estudiantes[1].Correo)
	assert.Equal(t, "G1-B", estudiantes[1].Subgrupo)
}

func TestParseEstudiantesCSVAutodetectsSemicolon(t *testing.T) {
	content := "apellidos;nombres;correo;grupo;subgrupo\n" +
		"Castro;Carla;carla@uni.edu;G2;G2-A\n"

	estudiantes, err := ParseEstudiantesCSV(content, 0)
	require.NoError(t, err)
	require.Len(t, estudiantes, 1)
	assert.Equal(t, "Carla", estudiantes[0].Nombres)
	assert.Equal(t, "G2", estudiantes[0].Grupo)
}

func TestParseEstudiantesCSVSkipsBlankRows(t *testing.T) {
	content := "apellidos,nombres,correo,grupo,subgrupo\n" +
		"Aguirre,Alice,alice@uni.edu,G1,G1-A\n" +
		",,,,\n" +
		"Bravo,Benito,benito@uni.edu,G1,G1-B\n"

	estudiantes, err := ParseEstudiantesCSV(content, 0)
	require.NoError(t, err)
	assert.Len(t, estudiantes, 2)
}

func TestParseEstudiantesCSVTrimsWhitespace(t *testing.T) {
	content := "apellidos,nombres,correo,grupo,subgrupo\n" +
		" Aguirre , Alice , alice@uni.edu , G1 , G1-A \n"

	estudiantes, err := ParseEstudiantesCSV(content, ',')
	require.NoError(t, err)
	require.Len(t, estudiantes, 1)
	assert.Equal(t, "alice@uni.edu", estudiantes[0].Correo)
	assert.Equal(t, "G1-A", estudiantes[0].Subgrupo)
}

func TestParseEstudiantesCSVRejectsMissingColumns(t *testing.T) {
	content := "apellidos,nombres,correo,grupo,subgrupo\n" +
		"Aguirre,Alice,alice@uni.edu\n"

	_, err := ParseEstudiantesCSV(content, 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestParseEstudiantesCSVRejectsEmptyContent(t *testing.T) {
	_, err := ParseEstudiantesCSV("   ", 0)
	require.Error(t, err)

	_, err = ParseEstudiantesCSV("apellidos,nombres,correo,grupo,subgrupo\n", 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
