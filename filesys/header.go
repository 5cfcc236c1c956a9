package filesys

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pavancse/Unix-Fast-File-System/bitmap"
	"github.com/pavancse/Unix-Fast-File-System/disco"
)

// tamaño del registro fijo: numBytes + numSectors, ambos int32
const encabezadoHeader = 8

// MaxSectores es la cantidad de extents que entran en un header de un sector
func MaxSectores(sectorSize int) int {
	return (sectorSize - encabezadoHeader) / 4
}

// FileHeader es el registro en disco de un archivo: su largo en bytes y la
// lista ordenada de sectores que lo componen. Ocupa exactamente un sector.
type FileHeader struct {
	NumBytes int
	Sectors  []int
}

// Allocate reserva los sectores de datos para un archivo nuevo de size bytes
func (h *FileHeader) Allocate(libres *bitmap.BitMap, size int) error {
	geo := libres.Geometry()
	necesarios := geo.UnidadesPara(size)
	if necesarios > MaxSectores(geo.UnitSize) {
		return fmt.Errorf("%d sectores para %d bytes: %w", necesarios, size, ErrArchivoMuyGrande)
	}
	if libres.NumClear() < necesarios {
		return fmt.Errorf("%d sectores pedidos, %d libres: %w", necesarios, libres.NumClear(), bitmap.ErrAgotado)
	}

	sectores, err := libres.FindBytes(size)
	if err != nil {
		return err
	}
	h.NumBytes = size
	h.Sectors = sectores
	return nil
}

// Deallocate devuelve al mapa todos los sectores de datos
func (h *FileHeader) Deallocate(libres *bitmap.BitMap) {
	for _, s := range h.Sectors {
		libres.Clear(s)
	}
	h.Sectors = nil
}

// FetchFrom lee el header desde el sector indicado
func (h *FileHeader) FetchFrom(d disco.Disco, sector int) error {
	buf := make([]byte, d.SectorSize())
	if err := d.ReadSector(sector, buf); err != nil {
		return fmt.Errorf("error leyendo header en sector %d: %w", sector, err)
	}

	h.NumBytes = int(int32(binary.LittleEndian.Uint32(buf[0:])))
	cantidad := int(int32(binary.LittleEndian.Uint32(buf[4:])))
	if cantidad < 0 || cantidad > MaxSectores(d.SectorSize()) {
		return fmt.Errorf("header corrupto en sector %d: %d sectores", sector, cantidad)
	}

	h.Sectors = make([]int, cantidad)
	for i := range h.Sectors {
		h.Sectors[i] = int(int32(binary.LittleEndian.Uint32(buf[encabezadoHeader+4*i:])))
	}
	return nil
}

// WriteBack guarda el header en el sector indicado
func (h *FileHeader) WriteBack(d disco.Disco, sector int) error {
	if len(h.Sectors) > MaxSectores(d.SectorSize()) {
		return fmt.Errorf("header con %d sectores: %w", len(h.Sectors), ErrArchivoMuyGrande)
	}

	buf := make([]byte, d.SectorSize())
	binary.LittleEndian.PutUint32(buf[0:], uint32(int32(h.NumBytes)))
	binary.LittleEndian.PutUint32(buf[4:], uint32(int32(len(h.Sectors))))
	for i, s := range h.Sectors {
		binary.LittleEndian.PutUint32(buf[encabezadoHeader+4*i:], uint32(int32(s)))
	}

	if err := d.WriteSector(sector, buf); err != nil {
		return fmt.Errorf("error escribiendo header en sector %d: %w", sector, err)
	}
	return nil
}

func (h *FileHeader) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FileHeader: %d bytes, sectores:", h.NumBytes)
	for _, s := range h.Sectors {
		fmt.Fprintf(&sb, " %d", s)
	}
	return sb.String()
}
