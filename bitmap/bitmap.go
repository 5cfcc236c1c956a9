// Package bitmap lleva la cuenta de unidades libres (sectores de disco o
// marcos de memoria) con dos resúmenes más gruesos: fragmentos y bloques.
package bitmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Workiva/go-datastructures/bitarray"

	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// ErrAgotado indica que ninguna unidad, bloque o corrida de fragmentos
// libres satisface el pedido.
var ErrAgotado = errors.New("no hay espacio libre suficiente")

// Archivo es lo mínimo que necesita el BitMap para persistirse
type Archivo interface {
	ReadAt(buf []byte, numBytes int, position int) (int, error)
	WriteAt(buf []byte, numBytes int, position int) (int, error)
}

// BitMap asigna unidades. Invariantes:
//   - fragmentos[i] está marcado sii alguna unidad del fragmento i está usada
//   - bloques[j] está marcado sii algún fragmento del bloque j está usado
//   - numClear == numBits - unidades usadas
type BitMap struct {
	geo        Geometria
	numBits    int
	numClear   int
	usados     bitarray.BitArray
	fragmentos bitarray.BitArray
	bloques    bitarray.BitArray
}

// New crea un BitMap de numBits unidades, todas libres
func New(numBits int, geo Geometria) *BitMap {
	utils.Assert(geo.valida(), "geometría inválida %+v", geo)
	utils.Assert(numBits > 0 && numBits%geo.UnitsPerBlock() == 0,
		"la cantidad de unidades (%d) debe ser múltiplo de las unidades por bloque (%d)", numBits, geo.UnitsPerBlock())

	return &BitMap{
		geo:        geo,
		numBits:    numBits,
		numClear:   numBits,
		usados:     bitarray.NewBitArray(uint64(numBits)),
		fragmentos: bitarray.NewBitArray(uint64(numBits / geo.UnitsPerFragment)),
		bloques:    bitarray.NewBitArray(uint64(numBits / geo.UnitsPerBlock())),
	}
}

func (b *BitMap) NumBits() int            { return b.numBits }
func (b *BitMap) NumClear() int           { return b.numClear }
func (b *BitMap) Geometry() Geometria     { return b.geo }
func (b *BitMap) NumFragments() int       { return b.numBits / b.geo.UnitsPerFragment }
func (b *BitMap) NumBlocks() int          { return b.numBits / b.geo.UnitsPerBlock() }
func (b *BitMap) FragmentUsed(i int) bool { return leer(b.fragmentos, i) }
func (b *BitMap) BlockUsed(j int) bool    { return leer(b.bloques, j) }

func leer(ba bitarray.BitArray, k int) bool {
	v, err := ba.GetBit(uint64(k))
	utils.Assert(err == nil, "lectura de bit %d: %v", k, err)
	return v
}

func poner(ba bitarray.BitArray, k int) {
	err := ba.SetBit(uint64(k))
	utils.Assert(err == nil, "marcado de bit %d: %v", k, err)
}

func sacar(ba bitarray.BitArray, k int) {
	err := ba.ClearBit(uint64(k))
	utils.Assert(err == nil, "limpieza de bit %d: %v", k, err)
}

func (b *BitMap) enRango(u int) {
	utils.Assert(u >= 0 && u < b.numBits, "unidad %d fuera de [0,%d)", u, b.numBits)
}

// Test indica si la unidad u está usada
func (b *BitMap) Test(u int) bool {
	b.enRango(u)
	return leer(b.usados, u)
}

// Mark marca la unidad u como usada junto con su fragmento y su bloque
func (b *BitMap) Mark(u int) {
	b.enRango(u)

	if !leer(b.usados, u) {
		b.numClear--
	}
	poner(b.usados, u)
	poner(b.fragmentos, u/b.geo.UnitsPerFragment)
	poner(b.bloques, u/b.geo.UnitsPerBlock())
}

// Clear libera la unidad u. Si su fragmento queda sin unidades usadas se
// libera, y lo mismo en cascada con el bloque.
func (b *BitMap) Clear(u int) {
	b.enRango(u)

	if leer(b.usados, u) {
		b.numClear++
	}
	sacar(b.usados, u)

	fragmento := u / b.geo.UnitsPerFragment
	primera := fragmento * b.geo.UnitsPerFragment
	for i := 0; i < b.geo.UnitsPerFragment; i++ {
		if leer(b.usados, primera+i) {
			return
		}
	}
	sacar(b.fragmentos, fragmento)

	bloque := u / b.geo.UnitsPerBlock()
	primerFragmento := bloque * b.geo.FragmentsPerBlock
	for i := 0; i < b.geo.FragmentsPerBlock; i++ {
		if leer(b.fragmentos, primerFragmento+i) {
			return
		}
	}
	sacar(b.bloques, bloque)
}

// Find marca y devuelve la unidad libre de menor número
func (b *BitMap) Find() (int, error) {
	if b.numClear == 0 {
		return -1, ErrAgotado
	}
	for i := 0; i < b.numBits; i++ {
		if !leer(b.usados, i) {
			b.Mark(i)
			return i, nil
		}
	}
	return -1, ErrAgotado
}

// FindBytes asigna unidades para bytes: bloques completos libres mientras el
// resto alcance un bloque, y para el último pedazo la primera corrida de
// fragmentos libres contiguos dentro de un mismo bloque.
//
// Si falla a mitad de camino, las unidades ya marcadas NO se liberan; se
// devuelven junto con el error.
func (b *BitMap) FindBytes(bytes int) ([]int, error) {
	asignadas := make([]int, 0, b.geo.UnidadesPara(bytes))
	restante := bytes

	for restante >= b.geo.BlockBytes() {
		bloque := b.primerBloqueLibre()
		if bloque == -1 {
			return asignadas, fmt.Errorf("sin bloque libre para %d bytes: %w", restante, ErrAgotado)
		}
		primera := bloque * b.geo.UnitsPerBlock()
		for i := 0; i < b.geo.UnitsPerBlock(); i++ {
			b.Mark(primera + i)
			asignadas = append(asignadas, primera+i)
		}
		restante -= b.geo.BlockBytes()
	}

	if restante > 0 {
		necesarios := (restante + b.geo.FragmentBytes() - 1) / b.geo.FragmentBytes()
		inicio := b.corridaDeFragmentos(necesarios)
		if inicio == -1 {
			return asignadas, fmt.Errorf("sin %d fragmentos contiguos libres: %w", necesarios, ErrAgotado)
		}
		for f := inicio; f < inicio+necesarios; f++ {
			for i := 0; i < b.geo.UnitsPerFragment; i++ {
				u := f*b.geo.UnitsPerFragment + i
				b.Mark(u)
				asignadas = append(asignadas, u)
			}
		}
	}

	return asignadas, nil
}

func (b *BitMap) primerBloqueLibre() int {
	for j := 0; j < b.NumBlocks(); j++ {
		if !leer(b.bloques, j) {
			return j
		}
	}
	return -1
}

// corridaDeFragmentos busca, bloque por bloque, la primera corrida de
// necesarios fragmentos libres. Devuelve el número del primer fragmento o -1.
func (b *BitMap) corridaDeFragmentos(necesarios int) int {
	for j := 0; j < b.NumBlocks(); j++ {
		total := 0
		for k := 0; k < b.geo.FragmentsPerBlock; k++ {
			f := j*b.geo.FragmentsPerBlock + k
			if leer(b.fragmentos, f) {
				total = 0
				continue
			}
			total++
			if total == necesarios {
				return f - necesarios + 1
			}
		}
	}
	return -1
}

// WriteBack guarda un byte (0 o 1) por unidad desde el offset 0 de f
func (b *BitMap) WriteBack(f Archivo) error {
	buffer := make([]byte, b.numBits)
	for i := 0; i < b.numBits; i++ {
		if leer(b.usados, i) {
			buffer[i] = 1
		}
	}
	if _, err := f.WriteAt(buffer, b.numBits, 0); err != nil {
		return fmt.Errorf("error guardando bitmap: %w", err)
	}
	return nil
}

// FetchFrom reemplaza el estado por el guardado en f y recalcula los resúmenes
func (b *BitMap) FetchFrom(f Archivo) error {
	buffer := make([]byte, b.numBits)
	if _, err := f.ReadAt(buffer, b.numBits, 0); err != nil {
		return fmt.Errorf("error leyendo bitmap: %w", err)
	}

	b.usados.Reset()
	b.fragmentos.Reset()
	b.bloques.Reset()
	b.numClear = b.numBits
	for i := 0; i < b.numBits; i++ {
		if buffer[i] == 1 {
			b.Mark(i)
		}
	}
	return nil
}

// String dibuja el mapa bloque por bloque, un carácter por unidad
func (b *BitMap) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "BitMap %d unidades, %d libres\n", b.numBits, b.numClear)
	for j := 0; j < b.NumBlocks(); j++ {
		fmt.Fprintf(&sb, "%4d ", j)
		for k := 0; k < b.geo.FragmentsPerBlock; k++ {
			sb.WriteByte('[')
			for i := 0; i < b.geo.UnitsPerFragment; i++ {
				u := (j*b.geo.FragmentsPerBlock+k)*b.geo.UnitsPerFragment + i
				if leer(b.usados, u) {
					sb.WriteByte('#')
				} else {
					sb.WriteByte('.')
				}
			}
			sb.WriteByte(']')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
