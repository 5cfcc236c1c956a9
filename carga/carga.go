// Package carga genera trazas de accesos a memoria para ejercitar la
// paginación con distintas distribuciones de páginas.
package carga

import (
	"fmt"
	"math/rand"

	"github.com/pingcap/go-ycsb/pkg/generator"
)

const (
	Zipf       = "zipf"
	Uniforme   = "uniforme"
	Secuencial = "secuencial"
)

type Config struct {
	Distribucion string  `json:"distribucion"`
	Paginas      int     `json:"paginas"`
	Accesos      int     `json:"accesos"`
	Escrituras   float64 `json:"proporcion_escrituras"`
	Sesgo        float64 `json:"sesgo"`
	Semilla      int64   `json:"semilla"`
}

// Acceso es una referencia a memoria virtual
type Acceso struct {
	VAddr     int  `json:"vaddr"`
	Escritura bool `json:"escritura"`
}

type generadorPaginas interface {
	Next(r *rand.Rand) int64
}

// secuencial recorre las páginas en orden, dando la vuelta al final
type secuencial struct {
	proxima int64
	paginas int64
}

func (s *secuencial) Next(_ *rand.Rand) int64 {
	p := s.proxima
	s.proxima = (s.proxima + 1) % s.paginas
	return p
}

func nuevoGenerador(cfg Config) (generadorPaginas, error) {
	ultima := int64(cfg.Paginas - 1)
	switch cfg.Distribucion {
	case Zipf, "":
		sesgo := cfg.Sesgo
		if sesgo <= 0 {
			sesgo = generator.ZipfianConstant
		}
		return generator.NewZipfianWithRange(0, ultima, sesgo), nil
	case Uniforme:
		return generator.NewUniform(0, ultima), nil
	case Secuencial:
		return &secuencial{paginas: int64(cfg.Paginas)}, nil
	}
	return nil, fmt.Errorf("distribución desconocida: %q", cfg.Distribucion)
}

// Generar arma una traza de cfg.Accesos referencias sobre cfg.Paginas páginas
// de tamPagina bytes. Con la misma semilla la traza es la misma.
func Generar(cfg Config, tamPagina int) ([]Acceso, error) {
	if cfg.Paginas <= 0 || cfg.Accesos < 0 || tamPagina <= 0 {
		return nil, fmt.Errorf("traza inválida: %+v con páginas de %d bytes", cfg, tamPagina)
	}
	gen, err := nuevoGenerador(cfg)
	if err != nil {
		return nil, err
	}

	r := rand.New(rand.NewSource(cfg.Semilla*11 + 31))
	traza := make([]Acceso, cfg.Accesos)
	for i := range traza {
		pagina := int(gen.Next(r))
		traza[i] = Acceso{
			VAddr:     pagina*tamPagina + r.Intn(tamPagina),
			Escritura: r.Float64() < cfg.Escrituras,
		}
	}
	return traza, nil
}

// PaginasDistintas cuenta cuántas páginas distintas toca la traza
func PaginasDistintas(traza []Acceso, tamPagina int) int {
	vistas := make(map[int]struct{})
	for _, a := range traza {
		vistas[a.VAddr/tamPagina] = struct{}{}
	}
	return len(vistas)
}
