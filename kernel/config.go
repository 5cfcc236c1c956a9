package kernel

import (
	"github.com/pavancse/Unix-Fast-File-System/bitmap"
	"github.com/pavancse/Unix-Fast-File-System/memoria"
)

// Config es la configuración del sistema completo: disco, file system y memoria
type Config struct {
	IPMemoria            string `json:"IP_MEMORIA"`
	PuertoMemoria        int    `json:"PUERTO_MEMORIA"`
	LogLevel             string `json:"LOG_LEVEL"`
	DiskPath             string `json:"DISK_PATH"`              // vacío = disco en memoria
	SectorSize           int    `json:"TAM_SECTOR"`             // Tamaño de sector en bytes
	NumSectors           int    `json:"CANTIDAD_SECTORES"`      // Sectores del disco
	SectoresPorFragmento int    `json:"SECTORES_POR_FRAGMENTO"` // Sectores por fragmento
	FragmentosPorBloque  int    `json:"FRAGMENTOS_POR_BLOQUE"`  // Fragmentos por bloque
	RetardoDisco         int    `json:"RETARDO_DISCO"`          // Retardo por acceso a disco en ms
	PageSize             int    `json:"TAM_PAGINA"`             // Tamaño de página en bytes
	NumFrames            int    `json:"CANTIDAD_MARCOS"`        // Marcos de memoria física
	UserStackSize        int    `json:"TAM_PILA"`               // Pila de cada proceso en bytes
	EntradasDirectorio   int    `json:"ENTRADAS_DIRECTORIO"`
	Formatear            bool   `json:"FORMATEAR"`
	DumpPath             string `json:"DUMP_PATH"` // Ruta para los archivos de dump
}

func ConfigPorDefecto() Config {
	return Config{
		IPMemoria:            "127.0.0.1",
		PuertoMemoria:        8002,
		LogLevel:             "INFO",
		SectorSize:           128,
		NumSectors:           1024,
		SectoresPorFragmento: 2,
		FragmentosPorBloque:  4,
		PageSize:             128,
		NumFrames:            32,
		UserStackSize:        1024,
		EntradasDirectorio:   10,
		DumpPath:             "dump_files",
	}
}

// completar rellena con los valores por defecto lo que el archivo no trae
func (c *Config) completar() {
	def := ConfigPorDefecto()
	if c.SectorSize <= 0 {
		c.SectorSize = def.SectorSize
	}
	if c.NumSectors <= 0 {
		c.NumSectors = def.NumSectors
	}
	if c.SectoresPorFragmento <= 0 {
		c.SectoresPorFragmento = def.SectoresPorFragmento
	}
	if c.FragmentosPorBloque <= 0 {
		c.FragmentosPorBloque = def.FragmentosPorBloque
	}
	if c.PageSize <= 0 {
		c.PageSize = def.PageSize
	}
	if c.NumFrames <= 0 {
		c.NumFrames = def.NumFrames
	}
	if c.UserStackSize <= 0 {
		c.UserStackSize = def.UserStackSize
	}
	if c.EntradasDirectorio <= 0 {
		c.EntradasDirectorio = def.EntradasDirectorio
	}
	if c.DumpPath == "" {
		c.DumpPath = def.DumpPath
	}
}

func (c Config) Geometria() bitmap.Geometria {
	return bitmap.Geometria{
		UnitSize:          c.SectorSize,
		UnitsPerFragment:  c.SectoresPorFragmento,
		FragmentsPerBlock: c.FragmentosPorBloque,
	}
}

func (c Config) Memoria() memoria.Config {
	return memoria.Config{
		PageSize:      c.PageSize,
		NumFrames:     c.NumFrames,
		UserStackSize: c.UserStackSize,
	}
}
