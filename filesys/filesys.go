package filesys

import (
	"fmt"
	"strings"

	"github.com/pavancse/Unix-Fast-File-System/bitmap"
	"github.com/pavancse/Unix-Fast-File-System/disco"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// Sectores con lugar fijo en el disco
const (
	FreeMapSector   = 0
	DirectorySector = 1
)

// FileSystem junta el disco, el mapa de libres y el directorio raíz.
// El mapa de libres y el directorio se guardan como archivos comunes cuyos
// headers están en FreeMapSector y DirectorySector.
type FileSystem struct {
	disco             disco.Disco
	libres            *bitmap.BitMap
	archivoLibres     *ExtentFile
	archivoDirectorio *ExtentFile
	entradas          int
}

// Format inicializa un file system vacío sobre el disco
func Format(d disco.Disco, geo bitmap.Geometria, entradas int) (*FileSystem, error) {
	utils.Assert(geo.UnitSize == d.SectorSize(),
		"geometría de %d bytes sobre sectores de %d", geo.UnitSize, d.SectorSize())

	libres := bitmap.New(d.NumSectors(), geo)
	libres.Mark(FreeMapSector)
	libres.Mark(DirectorySector)

	var hdrLibres, hdrDirectorio FileHeader
	if err := hdrLibres.Allocate(libres, d.NumSectors()); err != nil {
		return nil, fmt.Errorf("no entra el mapa de libres: %w", err)
	}
	if err := hdrDirectorio.Allocate(libres, TamArchivoDirectorio(entradas)); err != nil {
		return nil, fmt.Errorf("no entra el directorio: %w", err)
	}
	if err := hdrLibres.WriteBack(d, FreeMapSector); err != nil {
		return nil, err
	}
	if err := hdrDirectorio.WriteBack(d, DirectorySector); err != nil {
		return nil, err
	}

	fs, err := abrir(d, libres, entradas)
	if err != nil {
		return nil, err
	}
	if err := NewDirectory(entradas).WriteBack(fs.archivoDirectorio); err != nil {
		return nil, err
	}
	if err := fs.Sync(); err != nil {
		return nil, err
	}

	utils.InfoLog.Info("File system formateado",
		"sectores", d.NumSectors(),
		"libres", libres.NumClear(),
		"entradas", entradas)
	return fs, nil
}

// Mount levanta el file system que ya está en el disco; si el disco está
// en blanco lo formatea
func Mount(d disco.Disco, geo bitmap.Geometria, entradas int) (*FileSystem, error) {
	var hdr FileHeader
	if err := hdr.FetchFrom(d, FreeMapSector); err != nil {
		return nil, err
	}
	if hdr.NumBytes == 0 {
		utils.InfoLog.Info("Disco sin formato, formateando")
		return Format(d, geo, entradas)
	}

	libres := bitmap.New(d.NumSectors(), geo)
	fs, err := abrir(d, libres, entradas)
	if err != nil {
		return nil, err
	}
	if err := libres.FetchFrom(fs.archivoLibres); err != nil {
		return nil, fmt.Errorf("error leyendo mapa de libres: %w", err)
	}

	utils.InfoLog.Info("File system montado", "libres", libres.NumClear())
	return fs, nil
}

func abrir(d disco.Disco, libres *bitmap.BitMap, entradas int) (*FileSystem, error) {
	archivoLibres, err := AbrirExtentFile(d, libres, FreeMapSector)
	if err != nil {
		return nil, err
	}
	archivoDirectorio, err := AbrirExtentFile(d, libres, DirectorySector)
	if err != nil {
		return nil, err
	}
	return &FileSystem{
		disco:             d,
		libres:            libres,
		archivoLibres:     archivoLibres,
		archivoDirectorio: archivoDirectorio,
		entradas:          entradas,
	}, nil
}

func (fs *FileSystem) FreeMap() *bitmap.BitMap { return fs.libres }
func (fs *FileSystem) Disco() disco.Disco      { return fs.disco }
func (fs *FileSystem) NumClear() int           { return fs.libres.NumClear() }

func (fs *FileSystem) directorio() (*Directory, error) {
	dir := NewDirectory(fs.entradas)
	if err := dir.FetchFrom(fs.archivoDirectorio); err != nil {
		return nil, err
	}
	return dir, nil
}

// Create reserva el header y los datos iniciales de un archivo nuevo.
// Si no hay lugar para los datos, el sector del header se devuelve.
func (fs *FileSystem) Create(nombre string, tamInicial int) error {
	if !nombreValido(nombre) {
		return fmt.Errorf("%q: %w", nombre, ErrNombreInvalido)
	}
	dir, err := fs.directorio()
	if err != nil {
		return err
	}
	if _, ok := dir.Find(nombre); ok {
		return fmt.Errorf("%q: %w", nombre, ErrYaExiste)
	}
	if dir.Lleno() {
		return fmt.Errorf("%q: %w", nombre, ErrDirectorioLleno)
	}

	sector, err := fs.libres.Find()
	if err != nil {
		return fmt.Errorf("sin sector para el header de %q: %w", nombre, err)
	}

	var hdr FileHeader
	if err := hdr.Allocate(fs.libres, tamInicial); err != nil {
		fs.libres.Clear(sector)
		return fmt.Errorf("no se pudo crear %q de %d bytes: %w", nombre, tamInicial, err)
	}

	vacio := make([]byte, fs.disco.SectorSize())
	for _, s := range hdr.Sectors {
		if err := fs.disco.WriteSector(s, vacio); err != nil {
			return err
		}
	}
	if err := hdr.WriteBack(fs.disco, sector); err != nil {
		return err
	}

	dir.Add(nombre, sector)
	if err := dir.WriteBack(fs.archivoDirectorio); err != nil {
		return err
	}
	if err := fs.Sync(); err != nil {
		return err
	}

	utils.InfoLog.Debug("Archivo creado",
		"nombre", nombre,
		"header", sector,
		"tamaño", tamInicial,
		"sectores", len(hdr.Sectors))
	return nil
}

func (fs *FileSystem) Open(nombre string) (*ExtentFile, error) {
	dir, err := fs.directorio()
	if err != nil {
		return nil, err
	}
	sector, ok := dir.Find(nombre)
	if !ok {
		return nil, fmt.Errorf("%q: %w", nombre, ErrNoEncontrado)
	}
	return AbrirExtentFile(fs.disco, fs.libres, sector)
}

// Remove libera header y datos. Los ExtentFile abiertos sobre el archivo
// quedan apuntando a sectores libres.
func (fs *FileSystem) Remove(nombre string) error {
	dir, err := fs.directorio()
	if err != nil {
		return err
	}
	sector, ok := dir.Find(nombre)
	if !ok {
		return fmt.Errorf("%q: %w", nombre, ErrNoEncontrado)
	}

	archivo, err := AbrirExtentFile(fs.disco, fs.libres, sector)
	if err != nil {
		return err
	}
	archivo.Deallocate()

	dir.Remove(nombre)
	if err := dir.WriteBack(fs.archivoDirectorio); err != nil {
		return err
	}
	if err := fs.Sync(); err != nil {
		return err
	}

	utils.InfoLog.Debug("Archivo borrado", "nombre", nombre, "header", sector)
	return nil
}

func (fs *FileSystem) List() ([]string, error) {
	dir, err := fs.directorio()
	if err != nil {
		return nil, err
	}
	return dir.List(), nil
}

// Sync guarda el mapa de libres en su archivo
func (fs *FileSystem) Sync() error {
	if err := fs.libres.WriteBack(fs.archivoLibres); err != nil {
		return fmt.Errorf("error guardando mapa de libres: %w", err)
	}
	return nil
}

func (fs *FileSystem) Print() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Mapa de libres (header en %d): %s\n",
		FreeMapSector, fs.archivoLibres.hdr.String())
	fmt.Fprintf(&sb, "Directorio (header en %d): %s\n",
		DirectorySector, fs.archivoDirectorio.hdr.String())
	sb.WriteString(fs.libres.String())
	sb.WriteString("\n")

	dir, err := fs.directorio()
	if err != nil {
		fmt.Fprintf(&sb, "directorio ilegible: %v\n", err)
		return sb.String()
	}
	for _, e := range dir.tabla {
		if !e.enUso {
			continue
		}
		var hdr FileHeader
		if err := hdr.FetchFrom(fs.disco, e.sector); err != nil {
			fmt.Fprintf(&sb, "%s: header ilegible: %v\n", e.nombre, err)
			continue
		}
		fmt.Fprintf(&sb, "%s (header en %d): %s\n", e.nombre, e.sector, hdr.String())
	}
	return sb.String()
}
