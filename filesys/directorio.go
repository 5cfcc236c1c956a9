package filesys

import (
	"encoding/binary"
	"fmt"
)

const (
	// MaxLargoNombre es el largo máximo de un nombre de archivo
	MaxLargoNombre = 9

	// enUso(1) + sector(4) + nombre(MaxLargoNombre+1)
	tamEntrada = 1 + 4 + MaxLargoNombre + 1
)

type entradaDirectorio struct {
	enUso  bool
	sector int
	nombre string
}

// Directory es una tabla fija de nombre → sector del header.
// Vive en memoria; FetchFrom y WriteBack la sincronizan con su archivo.
type Directory struct {
	tabla []entradaDirectorio
}

func NewDirectory(entradas int) *Directory {
	return &Directory{tabla: make([]entradaDirectorio, entradas)}
}

// TamArchivoDirectorio es lo que ocupa una tabla de n entradas en disco
func TamArchivoDirectorio(entradas int) int {
	return 4 + entradas*tamEntrada
}

func nombreValido(nombre string) bool {
	return nombre != "" && len(nombre) <= MaxLargoNombre
}

func (d *Directory) buscarIndice(nombre string) int {
	for i, e := range d.tabla {
		if e.enUso && e.nombre == nombre {
			return i
		}
	}
	return -1
}

// Find devuelve el sector del header de nombre
func (d *Directory) Find(nombre string) (int, bool) {
	if i := d.buscarIndice(nombre); i >= 0 {
		return d.tabla[i].sector, true
	}
	return -1, false
}

// Add falla si el nombre ya está o si no quedan entradas
func (d *Directory) Add(nombre string, sector int) bool {
	if !nombreValido(nombre) || d.buscarIndice(nombre) >= 0 {
		return false
	}
	for i := range d.tabla {
		if !d.tabla[i].enUso {
			d.tabla[i] = entradaDirectorio{enUso: true, sector: sector, nombre: nombre}
			return true
		}
	}
	return false
}

func (d *Directory) Remove(nombre string) bool {
	i := d.buscarIndice(nombre)
	if i < 0 {
		return false
	}
	d.tabla[i].enUso = false
	return true
}

func (d *Directory) Lleno() bool {
	for _, e := range d.tabla {
		if !e.enUso {
			return false
		}
	}
	return true
}

func (d *Directory) List() []string {
	nombres := make([]string, 0, len(d.tabla))
	for _, e := range d.tabla {
		if e.enUso {
			nombres = append(nombres, e.nombre)
		}
	}
	return nombres
}

func (d *Directory) FetchFrom(f OpenFile) error {
	buf := make([]byte, TamArchivoDirectorio(len(d.tabla)))
	if _, err := f.ReadAt(buf, len(buf), 0); err != nil {
		return fmt.Errorf("error leyendo directorio: %w", err)
	}

	if n := int(int32(binary.LittleEndian.Uint32(buf))); n != len(d.tabla) {
		return fmt.Errorf("directorio de %d entradas, se esperaban %d", n, len(d.tabla))
	}

	for i := range d.tabla {
		e := buf[4+i*tamEntrada:]
		nombre := e[5 : 5+MaxLargoNombre+1]
		largo := 0
		for largo < len(nombre) && nombre[largo] != 0 {
			largo++
		}
		d.tabla[i] = entradaDirectorio{
			enUso:  e[0] != 0,
			sector: int(int32(binary.LittleEndian.Uint32(e[1:]))),
			nombre: string(nombre[:largo]),
		}
	}
	return nil
}

func (d *Directory) WriteBack(f OpenFile) error {
	buf := make([]byte, TamArchivoDirectorio(len(d.tabla)))
	binary.LittleEndian.PutUint32(buf, uint32(len(d.tabla)))
	for i, entrada := range d.tabla {
		e := buf[4+i*tamEntrada:]
		if entrada.enUso {
			e[0] = 1
		}
		binary.LittleEndian.PutUint32(e[1:], uint32(int32(entrada.sector)))
		copy(e[5:5+MaxLargoNombre], entrada.nombre)
	}

	if _, err := f.WriteAt(buf, len(buf), 0); err != nil {
		return fmt.Errorf("error escribiendo directorio: %w", err)
	}
	return nil
}
