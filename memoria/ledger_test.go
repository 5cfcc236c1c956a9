package memoria

import (
	"testing"

	"github.com/magiconair/properties/assert"
)

func TestLedgerOrdenDeCarga(t *testing.T) {
	l := NewLedger()
	e := []*TranslationEntry{{VirtualPage: 0}, {VirtualPage: 1}, {VirtualPage: 0}}
	l.Agregar(1, e[0])
	l.Agregar(1, e[1])
	l.Agregar(2, e[2])

	clave, entrada, ok := l.MasVieja()
	assert.Equal(t, ok, true)
	assert.Equal(t, clave, PaginaResidente{PID: 1, VPN: 0})
	assert.Equal(t, entrada == e[0], true)

	// volver a agregar la manda al final
	l.Agregar(1, e[0])
	assert.Equal(t, l.Orden(), []PaginaResidente{{1, 1}, {2, 0}, {1, 0}})
	assert.Equal(t, l.Len(), 3)
}

func TestLedgerQuitarProceso(t *testing.T) {
	l := NewLedger()
	for vpn := 0; vpn < 3; vpn++ {
		l.Agregar(1, &TranslationEntry{VirtualPage: vpn})
		l.Agregar(2, &TranslationEntry{VirtualPage: vpn})
	}
	l.Quitar(2, 1)
	assert.Equal(t, l.Contiene(2, 1), false)
	assert.Equal(t, l.PaginasDe(2), []int{0, 2})

	entradas := l.QuitarProceso(1)
	assert.Equal(t, len(entradas), 3)
	assert.Equal(t, l.Orden(), []PaginaResidente{{2, 0}, {2, 2}})
	assert.Equal(t, len(l.PaginasDe(1)), 0)

	_, _, ok := NewLedger().MasVieja()
	assert.Equal(t, ok, false)
}
