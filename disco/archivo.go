package disco

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// FileDisk respalda el disco simulado en un archivo del host
type FileDisk struct {
	ruta       string
	archivo    *os.File
	sectorSize int
	numSectors int
}

// AbrirFileDisk abre (o crea) el archivo del disco y lo lleva al tamaño
// exacto del disco. Un archivo nuevo queda en ceros, que el sistema de
// archivos interpreta como disco sin formato.
func AbrirFileDisk(ruta string, sectorSize int, numSectors int) (*FileDisk, error) {
	utils.InfoLog.Info("Abriendo disco", "ruta", ruta, "tam_sector", sectorSize, "sectores", numSectors)

	// Crear directorio si no existe
	dir := filepath.Dir(ruta)
	if err := os.MkdirAll(dir, 0755); err != nil {
		utils.ErrorLog.Error("Error creando directorio para el disco", "directorio", dir, "error", err)
		return nil, fmt.Errorf("error al crear directorio para el disco: %w", err)
	}

	archivo, err := os.OpenFile(ruta, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		utils.ErrorLog.Error("Error abriendo archivo de disco", "archivo", ruta, "error", err)
		return nil, fmt.Errorf("error al abrir archivo de disco: %w", err)
	}

	tamanio := int64(sectorSize) * int64(numSectors)
	if err := archivo.Truncate(tamanio); err != nil {
		archivo.Close()
		return nil, fmt.Errorf("error al dimensionar archivo de disco: %w", err)
	}

	return &FileDisk{
		ruta:       ruta,
		archivo:    archivo,
		sectorSize: sectorSize,
		numSectors: numSectors,
	}, nil
}

func (d *FileDisk) SectorSize() int { return d.sectorSize }
func (d *FileDisk) NumSectors() int { return d.numSectors }

func (d *FileDisk) ReadSector(sector int, buf []byte) error {
	if err := validarPedido(d, sector, buf); err != nil {
		return err
	}
	offset := int64(sector) * int64(d.sectorSize)
	if _, err := d.archivo.ReadAt(buf[:d.sectorSize], offset); err != nil {
		utils.ErrorLog.Error("Error leyendo disco", "archivo", d.ruta, "offset", offset, "error", err)
		return fmt.Errorf("error al leer sector %d: %w", sector, err)
	}
	return nil
}

func (d *FileDisk) WriteSector(sector int, buf []byte) error {
	if err := validarPedido(d, sector, buf); err != nil {
		return err
	}
	offset := int64(sector) * int64(d.sectorSize)
	if _, err := d.archivo.WriteAt(buf[:d.sectorSize], offset); err != nil {
		utils.ErrorLog.Error("Error escribiendo disco", "archivo", d.ruta, "offset", offset, "error", err)
		return fmt.Errorf("error al escribir sector %d: %w", sector, err)
	}
	return nil
}

// Close sincroniza y cierra el archivo del host
func (d *FileDisk) Close() error {
	if err := d.archivo.Sync(); err != nil {
		d.archivo.Close()
		return err
	}
	return d.archivo.Close()
}
