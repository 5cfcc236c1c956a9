package filesys

import (
	"fmt"

	"github.com/pavancse/Unix-Fast-File-System/bitmap"
	"github.com/pavancse/Unix-Fast-File-System/disco"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// OpenFile es lo que el resto del kernel ve de un archivo abierto
type OpenFile interface {
	ReadAt(buf []byte, numBytes int, position int) (int, error)
	WriteAt(buf []byte, numBytes int, position int) (int, error)
	Length() int
	Close() error
}

// ExtentFile es un archivo abierto sobre una lista de sectores reservados
// con el mapa de libres. Crece al escribir más allá del final.
// Dos ExtentFile sobre el mismo header no se ven entre sí.
type ExtentFile struct {
	disco        disco.Disco
	libres       *bitmap.BitMap
	hdr          *FileHeader
	sectorHeader int
	posicion     int
	modificado   bool
}

var _ OpenFile = (*ExtentFile)(nil)

// AbrirExtentFile carga el header que vive en sector
func AbrirExtentFile(d disco.Disco, libres *bitmap.BitMap, sector int) (*ExtentFile, error) {
	utils.Assert(d.SectorSize() == libres.Geometry().UnitSize,
		"sector de %d bytes con unidad de %d bytes", d.SectorSize(), libres.Geometry().UnitSize)

	hdr := &FileHeader{}
	if err := hdr.FetchFrom(d, sector); err != nil {
		return nil, err
	}
	return &ExtentFile{
		disco:        d,
		libres:       libres,
		hdr:          hdr,
		sectorHeader: sector,
	}, nil
}

func (f *ExtentFile) Length() int        { return f.hdr.NumBytes }
func (f *ExtentFile) HeaderSector() int  { return f.sectorHeader }
func (f *ExtentFile) Header() FileHeader { return *f.hdr }

func (f *ExtentFile) Seek(posicion int) {
	f.posicion = posicion
}

// Read lee desde el cursor y lo avanza. Devuelve lo que haya hasta el final.
func (f *ExtentFile) Read(buf []byte, numBytes int) (int, error) {
	if restante := f.hdr.NumBytes - f.posicion; numBytes > restante {
		numBytes = max(restante, 0)
	}
	n, err := f.ReadAt(buf, numBytes, f.posicion)
	f.posicion += n
	return n, err
}

// Write escribe en el cursor y lo avanza
func (f *ExtentFile) Write(buf []byte, numBytes int) (int, error) {
	n, err := f.WriteAt(buf, numBytes, f.posicion)
	f.posicion += n
	return n, err
}

func validarArgumentos(buf []byte, numBytes, position int) error {
	if numBytes < 0 || position < 0 || len(buf) < numBytes {
		return fmt.Errorf("%d bytes en posición %d con buffer de %d: %w",
			numBytes, position, len(buf), ErrArgumentoInvalido)
	}
	return nil
}

// ReadAt nunca lee más allá del largo del archivo
func (f *ExtentFile) ReadAt(buf []byte, numBytes int, position int) (int, error) {
	if err := validarArgumentos(buf, numBytes, position); err != nil {
		return 0, err
	}
	if position+numBytes > f.hdr.NumBytes {
		return 0, fmt.Errorf("lectura de %d bytes en %d con largo %d: %w",
			numBytes, position, f.hdr.NumBytes, ErrFueraDeRango)
	}

	ss := f.disco.SectorSize()
	sector := make([]byte, ss)
	leidos := 0
	for i := position / ss; leidos < numBytes; i++ {
		if err := f.disco.ReadSector(f.hdr.Sectors[i], sector); err != nil {
			return leidos, err
		}
		desde := 0
		if i == position/ss {
			desde = position % ss
		}
		leidos += copy(buf[leidos:numBytes], sector[desde:])
	}
	return numBytes, nil
}

// WriteAt sobrescribe lo ya reservado y, si hace falta, hace crecer el archivo
func (f *ExtentFile) WriteAt(buf []byte, numBytes int, position int) (int, error) {
	if err := validarArgumentos(buf, numBytes, position); err != nil {
		return 0, err
	}
	if numBytes == 0 {
		return 0, nil
	}

	geo := f.libres.Geometry()
	ss := geo.UnitSize
	oldLen := geo.RedondearAFragmento(f.hdr.NumBytes)
	newLen := position + numBytes
	escritos := 0

	if position < oldLen {
		fin := min(newLen, oldLen)
		sector := make([]byte, ss)
		for i := position / ss; i*ss < fin; i++ {
			if err := f.disco.ReadSector(f.hdr.Sectors[i], sector); err != nil {
				return escritos, err
			}
			desde := 0
			if i == position/ss {
				desde = position % ss
			}
			hasta := min(ss, fin-i*ss)
			escritos += copy(sector[desde:hasta], buf[escritos:numBytes])
			if err := f.disco.WriteSector(f.hdr.Sectors[i], sector); err != nil {
				return escritos, err
			}
		}
	}

	if newLen > oldLen {
		if err := f.crecer(buf[escritos:numBytes], oldLen, position); err != nil {
			return escritos, err
		}
	}

	if newLen > f.hdr.NumBytes {
		f.hdr.NumBytes = newLen
		f.modificado = true
	}
	return numBytes, nil
}

// crecer rearma el bloque parcial del final junto con los bytes nuevos y
// pide todo de nuevo al mapa, así el archivo vuelve a ocupar bloques enteros
func (f *ExtentFile) crecer(nuevos []byte, oldLen int, position int) error {
	geo := f.libres.Geometry()
	ss := geo.UnitSize

	inicioBloque := oldLen / geo.BlockBytes() * geo.BlockBytes()
	primero := inicioBloque / ss
	sobrantes := f.hdr.Sectors[primero:]

	hueco := max(position-oldLen, 0)
	combinado := (oldLen - inicioBloque) + hueco + len(nuevos)
	if primero+geo.UnidadesPara(combinado) > MaxSectores(ss) {
		return fmt.Errorf("crecer a %d bytes: %w", inicioBloque+combinado, ErrArchivoMuyGrande)
	}

	datos := make([]byte, 0, combinado)
	sector := make([]byte, ss)
	for _, s := range sobrantes {
		if err := f.disco.ReadSector(s, sector); err != nil {
			return err
		}
		datos = append(datos, sector...)
	}
	datos = append(datos, make([]byte, hueco)...)
	datos = append(datos, nuevos...)

	for _, s := range sobrantes {
		f.libres.Clear(s)
	}

	unidades, err := f.libres.FindBytes(len(datos))
	if err != nil {
		// el contenido de los sobrantes sigue intacto en disco
		for _, s := range sobrantes {
			f.libres.Mark(s)
		}
		return fmt.Errorf("crecer a %d bytes: %w", inicioBloque+combinado, err)
	}

	for i, u := range unidades {
		clear(sector)
		if desde := i * ss; desde < len(datos) {
			copy(sector, datos[desde:])
		}
		if err := f.disco.WriteSector(u, sector); err != nil {
			return err
		}
	}

	utils.InfoLog.Debug("Archivo extendido",
		"header", f.sectorHeader,
		"liberados", len(sobrantes),
		"nuevos", len(unidades))

	f.hdr.Sectors = append(f.hdr.Sectors[:primero:primero], unidades...)
	f.modificado = true
	return nil
}

// WriteHeader persiste el header en su sector
func (f *ExtentFile) WriteHeader() error {
	if err := f.hdr.WriteBack(f.disco, f.sectorHeader); err != nil {
		return err
	}
	f.modificado = false
	return nil
}

// Deallocate libera los datos y el propio sector del header
func (f *ExtentFile) Deallocate() {
	f.hdr.Deallocate(f.libres)
	f.hdr.NumBytes = 0
	f.libres.Clear(f.sectorHeader)
	f.modificado = false
}

func (f *ExtentFile) Close() error {
	if !f.modificado {
		return nil
	}
	return f.WriteHeader()
}
