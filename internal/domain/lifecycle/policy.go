package lifecycle

import (
	"fmt"
	"sort"

	"github.com/jhoicas/Gestion-api/internal/domain"
)

// Policy decide si una transición de estado es legal. Las reglas dependen de cada
// despliegue; el esquema de datos no las codifica.
type Policy interface {
	Check(from, to Status) error
}

// AllowAll acepta cualquier transición entre estados del mismo kind: solo se registra
// lo ocurrido en el historial.
type AllowAll struct{}

// Check implementa Policy.
func (AllowAll) Check(from, to Status) error {
	if from == nil || to == nil || from.Kind() != to.Kind() {
		return fmt.Errorf("%w: tipos distintos", domain.ErrInvalidTransition)
	}
	return nil
}

// Graph es una política de grafo explícito por kind. Los kinds sin reglas declaradas
// aceptan cualquier transición; los declarados solo las aristas listadas.
type Graph struct {
	edges map[Kind]map[string]map[string]struct{}
}

// NewGraph construye la política desde reglas crudas: kind -> estado origen -> destinos.
// Valida que cada kind y cada estado pertenezcan a las enumeraciones conocidas.
func NewGraph(rules map[string]map[string][]string) (*Graph, error) {
	g := &Graph{edges: make(map[Kind]map[string]map[string]struct{})}
	for rawKind, transitions := range rules {
		kind := Kind(rawKind)
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: tipo %q desconocido en la política", domain.ErrInvalidInput, rawKind)
		}
		byFrom := make(map[string]map[string]struct{})
		for from, targets := range transitions {
			if _, err := Parse(kind, from); err != nil {
				return nil, err
			}
			set := make(map[string]struct{}, len(targets))
			for _, to := range targets {
				if _, err := Parse(kind, to); err != nil {
					return nil, err
				}
				set[to] = struct{}{}
			}
			byFrom[from] = set
		}
		g.edges[kind] = byFrom
	}
	return g, nil
}

// Check implementa Policy.
func (g *Graph) Check(from, to Status) error {
	if err := (AllowAll{}).Check(from, to); err != nil {
		return err
	}
	byFrom, ok := g.edges[from.Kind()]
	if !ok {
		return nil
	}
	if _, ok := byFrom[from.String()][to.String()]; !ok {
		return fmt.Errorf("%w: %s %s -> %s", domain.ErrInvalidTransition, from.Kind(), from, to)
	}
	return nil
}

// Allowed lista los destinos permitidos desde un estado (ordenados), o todos los
// estados del kind si no hay reglas para él.
func (g *Graph) Allowed(from Status) []Status {
	byFrom, ok := g.edges[from.Kind()]
	if !ok {
		return Values(from.Kind())
	}
	targets := make([]string, 0, len(byFrom[from.String()]))
	for to := range byFrom[from.String()] {
		targets = append(targets, to)
	}
	sort.Strings(targets)
	out := make([]Status, 0, len(targets))
	for _, t := range targets {
		s, _ := Parse(from.Kind(), t)
		out = append(out, s)
	}
	return out
}
