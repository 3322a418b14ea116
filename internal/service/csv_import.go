package service

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/politrack/politrack-api/internal/models"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
)

// Expected CSV column order for roster imports.
const csvColumns = 5

// ParseEstudiantesCSV reads a roster from CSV content with a header row and
// columns apellidos, nombres, correo, grupo, subgrupo. A zero delimiter
// autodetects between comma and semicolon on the header line, the two
// variants observed in exported rosters.
func ParseEstudiantesCSV(content string, delimiter rune) ([]models.Estudiante, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv content is empty")
	}

	if delimiter == 0 {
		delimiter = detectDelimiter(content)
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed csv content")
	}
	if len(records) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv must contain a header row and at least one student")
	}

	estudiantes := make([]models.Estudiante, 0, len(records)-1)
	for i, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		if len(record) < csvColumns {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("csv row %d has %d columns, expected %d", i+2, len(record), csvColumns))
		}
		estudiantes = append(estudiantes, models.Estudiante{
			Apellidos: strings.TrimSpace(record[0]),
			Nombres:   strings.TrimSpace(record[1]),
			Correo:    strings.TrimSpace(record[2]),
			Grupo:     strings.TrimSpace(record[3]),
			Subgrupo:  strings.TrimSpace(record[4]),
		})
	}
	if len(estudiantes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv contains no student rows")
	}
	return estudiantes, nil
}

func detectDelimiter(content string) rune {
	header := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		header = content[:idx]
	}
	if strings.Contains(header, ";") && !strings.Contains(header, ",") {
		return ';'
	}
	return ','
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
