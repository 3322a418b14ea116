package rubric

import "github.com/politrack/politrack-api/internal/models"

// Static rubric configuration. The individual rubric applies to every
// delivery; each delivery has its own group rubric.

func niveles(vals [4]int, labels [4]string) []models.Nivel {
	return []models.Nivel{
		{Valor: vals[0], Nombre: labels[0]},
		{Valor: vals[1], Nombre: labels[1]},
		{Valor: vals[2], Nombre: labels[2]},
		{Valor: vals[3], Nombre: labels[3]},
	}
}

var individual = models.Rubrica{
	ID:     "individual",
	Nombre: "Evaluación Individual",
	Criterios: []models.Criterio{
		{
			Codigo:    "conocimiento_tecnico",
			Nombre:    "Conocimiento Técnico",
			MaxPuntos: 15,
			Niveles: niveles([4]int{4, 8, 12, 15},
				[4]string{"Insuficiente (0-4)", "Básico (5-8)", "Bueno (9-12)", "Excelente (13-15)"}),
		},
		{
			Codigo:    "participacion",
			Nombre:    "Participación",
			MaxPuntos: 10,
			Niveles: niveles([4]int{2, 5, 8, 10},
				[4]string{"Insuficiente (0-2)", "Básico (3-5)", "Bueno (6-8)", "Excelente (9-10)"}),
		},
		{
			Codigo:    "comunicacion",
			Nombre:    "Comunicación",
			MaxPuntos: 10,
			Niveles: niveles([4]int{2, 5, 8, 10},
				[4]string{"Insuficiente (0-2)", "Básico (3-5)", "Bueno (6-8)", "Excelente (9-10)"}),
		},
		{
			Codigo:    "responsabilidad",
			Nombre:    "Responsabilidad",
			MaxPuntos: 5,
			Niveles: niveles([4]int{1, 2, 4, 5},
				[4]string{"Insuficiente (0-1)", "Básico (2)", "Bueno (3-4)", "Excelente (5)"}),
		},
	},
}

var grupales = map[models.Entrega]models.Rubrica{
	models.EntregaE1: {
		ID:     "grupal_e1",
		Nombre: "Evaluación Grupal - Entrega 1",
		Criterios: []models.Criterio{
			{
				Codigo:    "propuesta",
				Nombre:    "Propuesta de Proyecto",
				MaxPuntos: 10,
				Niveles: niveles([4]int{2, 5, 8, 10},
					[4]string{"Insuficiente (0-2)", "Básico (3-5)", "Bueno (6-8)", "Excelente (9-10)"}),
			},
			{
				Codigo:    "investigacion",
				Nombre:    "Investigación Preliminar",
				MaxPuntos: 10,
				Niveles: niveles([4]int{2, 5, 8, 10},
					[4]string{"Insuficiente (0-2)", "Básico (3-5)", "Bueno (6-8)", "Excelente (9-10)"}),
			},
			{
				Codigo:    "documentacion",
				Nombre:    "Documentación",
				MaxPuntos: 10,
				Niveles: niveles([4]int{2, 5, 8, 10},
					[4]string{"Insuficiente (0-2)", "Básico (3-5)", "Bueno (6-8)", "Excelente (9-10)"}),
			},
		},
	},
	models.EntregaE2: {
		ID:     "grupal_e2",
		Nombre: "Evaluación Grupal - Entrega 2",
		Criterios: []models.Criterio{
			{
				Codigo:    "avance_tecnico",
				Nombre:    "Avance Técnico",
				MaxPuntos: 15,
				Niveles: niveles([4]int{4, 8, 12, 15},
					[4]string{"Insuficiente (0-4)", "Básico (5-8)", "Bueno (9-12)", "Excelente (13-15)"}),
			},
			{
				Codigo:    "calidad_codigo",
				Nombre:    "Calidad del Código",
				MaxPuntos: 10,
				Niveles: niveles([4]int{2, 5, 8, 10},
					[4]string{"Insuficiente (0-2)", "Básico (3-5)", "Bueno (6-8)", "Excelente (9-10)"}),
			},
			{
				Codigo:    "documentacion",
				Nombre:    "Documentación",
				MaxPuntos: 10,
				Niveles: niveles([4]int{2, 5, 8, 10},
					[4]string{"Insuficiente (0-2)", "Básico (3-5)", "Bueno (6-8)", "Excelente (9-10)"}),
			},
			{
				Codigo:    "trabajo_equipo",
				Nombre:    "Trabajo en Equipo",
				MaxPuntos: 5,
				Niveles: niveles([4]int{1, 2, 4, 5},
					[4]string{"Insuficiente (0-1)", "Básico (2)", "Bueno (3-4)", "Excelente (5)"}),
			},
		},
	},
	models.EntregaEF: {
		ID:     "grupal_ef",
		Nombre: "Evaluación Grupal - Entrega Final",
		Criterios: []models.Criterio{
			{
				Codigo:    "producto_final",
				Nombre:    "Producto Final",
				MaxPuntos: 20,
				Niveles: niveles([4]int{5, 10, 15, 20},
					[4]string{"Insuficiente (0-5)", "Básico (6-10)", "Bueno (11-15)", "Excelente (16-20)"}),
			},
			{
				Codigo:    "presentacion",
				Nombre:    "Presentación y Sustentación",
				MaxPuntos: 15,
				Niveles: niveles([4]int{4, 8, 12, 15},
					[4]string{"Insuficiente (0-4)", "Básico (5-8)", "Bueno (9-12)", "Excelente (13-15)"}),
			},
			{
				Codigo:    "documentacion",
				Nombre:    "Documentación Final",
				MaxPuntos: 10,
				Niveles: niveles([4]int{2, 5, 8, 10},
					[4]string{"Insuficiente (0-2)", "Básico (3-5)", "Bueno (6-8)", "Excelente (9-10)"}),
			},
			{
				Codigo:    "innovacion",
				Nombre:    "Innovación",
				MaxPuntos: 15,
				Niveles: niveles([4]int{4, 8, 12, 15},
					[4]string{"Insuficiente (0-4)", "Básico (5-8)", "Bueno (9-12)", "Excelente (13-15)"}),
			},
		},
	},
}

// Individual returns the delivery-invariant individual rubric.
func Individual() models.Rubrica {
	return individual
}

// Grupal returns the group rubric for the given delivery.
func Grupal(entrega models.Entrega) (models.Rubrica, bool) {
	r, ok := grupales[entrega]
	return r, ok
}

// Definiciones returns every built-in rubric keyed by id.
func Definiciones() map[string]models.Rubrica {
	defs := make(map[string]models.Rubrica, len(grupales)+1)
	defs[individual.ID] = individual
	for _, r := range grupales {
		defs[r.ID] = r
	}
	return defs
}
