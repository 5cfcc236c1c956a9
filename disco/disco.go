// Package disco modela el dispositivo de bloques crudo: lecturas y
// escrituras síncronas de sectores de tamaño fijo.
package disco

import (
	"errors"
	"fmt"
)

// ErrSectorInvalido se devuelve cuando se pide un sector fuera del disco
var ErrSectorInvalido = errors.New("sector fuera de rango")

// Disco es la interfaz que consume el sistema de archivos
type Disco interface {
	ReadSector(sector int, buf []byte) error
	WriteSector(sector int, buf []byte) error
	SectorSize() int
	NumSectors() int
}

func validarPedido(d Disco, sector int, buf []byte) error {
	if sector < 0 || sector >= d.NumSectors() {
		return fmt.Errorf("sector %d de %d: %w", sector, d.NumSectors(), ErrSectorInvalido)
	}
	if len(buf) < d.SectorSize() {
		return fmt.Errorf("buffer de %d bytes para sector de %d bytes", len(buf), d.SectorSize())
	}
	return nil
}

// MemDisk guarda los sectores en memoria, sin persistencia
type MemDisk struct {
	sectorSize int
	datos      []byte
}

// NewMemDisk crea un disco en memoria con todos los sectores en cero
func NewMemDisk(sectorSize int, numSectors int) *MemDisk {
	return &MemDisk{
		sectorSize: sectorSize,
		datos:      make([]byte, sectorSize*numSectors),
	}
}

func (d *MemDisk) SectorSize() int { return d.sectorSize }
func (d *MemDisk) NumSectors() int { return len(d.datos) / d.sectorSize }

func (d *MemDisk) ReadSector(sector int, buf []byte) error {
	if err := validarPedido(d, sector, buf); err != nil {
		return err
	}
	inicio := sector * d.sectorSize
	copy(buf[:d.sectorSize], d.datos[inicio:inicio+d.sectorSize])
	return nil
}

func (d *MemDisk) WriteSector(sector int, buf []byte) error {
	if err := validarPedido(d, sector, buf); err != nil {
		return err
	}
	inicio := sector * d.sectorSize
	copy(d.datos[inicio:inicio+d.sectorSize], buf[:d.sectorSize])
	return nil
}
