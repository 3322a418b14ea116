package models

import "fmt"

// Entrega is one of three graded milestones within a course.
type Entrega string

const (
	EntregaE1 Entrega = "E1"
	EntregaE2 Entrega = "E2"
	EntregaEF Entrega = "EF"
)

// Entregas lists every delivery in milestone order, for iteration.
var Entregas = []Entrega{EntregaE1, EntregaE2, EntregaEF}

// EntregaLabels maps deliveries to display labels.
var EntregaLabels = map[Entrega]string{
	EntregaE1: "Entrega 1",
	EntregaE2: "Entrega 2",
	EntregaEF: "Entrega Final",
}

// Valid reports whether the value is a known delivery.
func (e Entrega) Valid() bool {
	switch e {
	case EntregaE1, EntregaE2, EntregaEF:
		return true
	}
	return false
}

// ParseEntrega converts a raw string into an Entrega.
func ParseEntrega(raw string) (Entrega, error) {
	e := Entrega(raw)
	if !e.Valid() {
		return "", fmt.Errorf("invalid entrega %q", raw)
	}
	return e, nil
}
