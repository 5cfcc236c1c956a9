package carga

import (
	"testing"

	"github.com/magiconair/properties/assert"
)

func TestGenerarDentroDelRango(t *testing.T) {
	for _, dist := range []string{Zipf, Uniforme, Secuencial} {
		traza, err := Generar(Config{Distribucion: dist, Paginas: 8, Accesos: 500, Escrituras: 0.3, Semilla: 7}, 128)
		assert.Equal(t, err, nil, dist)
		assert.Equal(t, len(traza), 500)
		for _, a := range traza {
			assert.Equal(t, a.VAddr >= 0 && a.VAddr < 8*128, true, dist)
		}
	}
}

func TestGenerarEsDeterminista(t *testing.T) {
	cfg := Config{Distribucion: Zipf, Paginas: 16, Accesos: 200, Escrituras: 0.5, Semilla: 42}
	a, err := Generar(cfg, 64)
	assert.Equal(t, err, nil)
	b, err := Generar(cfg, 64)
	assert.Equal(t, err, nil)
	assert.Equal(t, a, b)
}

func TestSecuencialRecorreTodo(t *testing.T) {
	traza, err := Generar(Config{Distribucion: Secuencial, Paginas: 5, Accesos: 12}, 100)
	assert.Equal(t, err, nil)
	for i, a := range traza {
		assert.Equal(t, a.VAddr/100, i%5)
		assert.Equal(t, a.Escritura, false)
	}
	assert.Equal(t, PaginasDistintas(traza, 100), 5)
}

func TestGenerarErrores(t *testing.T) {
	_, err := Generar(Config{Distribucion: "normal", Paginas: 4, Accesos: 1}, 128)
	assert.Equal(t, err != nil, true)
	_, err = Generar(Config{Paginas: 0, Accesos: 1}, 128)
	assert.Equal(t, err != nil, true)
}
