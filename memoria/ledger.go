package memoria

import (
	"sort"

	set "github.com/deckarep/golang-set"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// PaginaResidente identifica una página cargada en un marco
type PaginaResidente struct {
	PID int
	VPN int
}

// Ledger registra las páginas residentes de todos los procesos en el orden en
// que se cargaron. La más vieja es la próxima víctima.
type Ledger struct {
	orden      *orderedmap.OrderedMap[PaginaResidente, *TranslationEntry]
	porProceso map[int]set.Set
}

func NewLedger() *Ledger {
	return &Ledger{
		orden:      orderedmap.New[PaginaResidente, *TranslationEntry](),
		porProceso: make(map[int]set.Set),
	}
}

func (l *Ledger) Len() int { return l.orden.Len() }

// Agregar pone la página al final de la cola
func (l *Ledger) Agregar(pid int, entrada *TranslationEntry) {
	clave := PaginaResidente{PID: pid, VPN: entrada.VirtualPage}
	l.orden.Delete(clave)
	l.orden.Set(clave, entrada)

	paginas, ok := l.porProceso[pid]
	if !ok {
		paginas = set.NewSet()
		l.porProceso[pid] = paginas
	}
	paginas.Add(entrada.VirtualPage)
}

func (l *Ledger) Quitar(pid int, vpn int) {
	l.orden.Delete(PaginaResidente{PID: pid, VPN: vpn})
	if paginas, ok := l.porProceso[pid]; ok {
		paginas.Remove(vpn)
		if paginas.Cardinality() == 0 {
			delete(l.porProceso, pid)
		}
	}
}

// MasVieja devuelve la primera página de la cola sin sacarla
func (l *Ledger) MasVieja() (PaginaResidente, *TranslationEntry, bool) {
	par := l.orden.Oldest()
	if par == nil {
		return PaginaResidente{}, nil, false
	}
	return par.Key, par.Value, true
}

func (l *Ledger) Contiene(pid int, vpn int) bool {
	paginas, ok := l.porProceso[pid]
	return ok && paginas.Contains(vpn)
}

// PaginasDe lista las páginas residentes de pid, ordenadas
func (l *Ledger) PaginasDe(pid int) []int {
	paginas, ok := l.porProceso[pid]
	if !ok {
		return nil
	}
	vpns := make([]int, 0, paginas.Cardinality())
	for _, v := range paginas.ToSlice() {
		vpns = append(vpns, v.(int))
	}
	sort.Ints(vpns)
	return vpns
}

// QuitarProceso saca todas las páginas de pid y devuelve sus entradas
func (l *Ledger) QuitarProceso(pid int) []*TranslationEntry {
	var entradas []*TranslationEntry
	for _, vpn := range l.PaginasDe(pid) {
		clave := PaginaResidente{PID: pid, VPN: vpn}
		if entrada, ok := l.orden.Get(clave); ok {
			entradas = append(entradas, entrada)
		}
		l.orden.Delete(clave)
	}
	delete(l.porProceso, pid)
	return entradas
}

// Orden devuelve la cola completa, de la más vieja a la más nueva
func (l *Ledger) Orden() []PaginaResidente {
	claves := make([]PaginaResidente, 0, l.orden.Len())
	for par := l.orden.Oldest(); par != nil; par = par.Next() {
		claves = append(claves, par.Key)
	}
	return claves
}
