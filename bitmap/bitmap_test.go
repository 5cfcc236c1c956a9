package bitmap

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/magiconair/properties/assert"
)

// memFile implementa Archivo sobre un slice, para probar la persistencia
type memFile struct {
	datos []byte
}

func (m *memFile) ReadAt(buf []byte, n int, pos int) (int, error) {
	return copy(buf[:n], m.datos[pos:pos+n]), nil
}

func (m *memFile) WriteAt(buf []byte, n int, pos int) (int, error) {
	if len(m.datos) < pos+n {
		m.datos = append(m.datos, make([]byte, pos+n-len(m.datos))...)
	}
	return copy(m.datos[pos:pos+n], buf[:n]), nil
}

// 16 bytes por unidad, 2 unidades por fragmento, 4 fragmentos por bloque:
// un bloque son 8 unidades = 128 bytes.
func newBitMapTestKit(unidades int) *BitMap {
	return New(unidades, Geometria{UnitSize: 16, UnitsPerFragment: 2, FragmentsPerBlock: 4})
}

func contarUsadas(b *BitMap) int {
	n := 0
	for u := 0; u < b.NumBits(); u++ {
		if b.Test(u) {
			n++
		}
	}
	return n
}

func TestMarkClearResumenes(t *testing.T) {
	b := New(8, Geometria{UnitSize: 1, UnitsPerFragment: 2, FragmentsPerBlock: 2})
	assert.Equal(t, b.NumClear(), 8)

	b.Mark(0)
	b.Mark(1)
	assert.Equal(t, b.NumClear(), 6)
	assert.Equal(t, b.FragmentUsed(0), true)
	assert.Equal(t, b.BlockUsed(0), true)

	b.Clear(0)
	assert.Equal(t, b.NumClear(), 7)
	assert.Equal(t, b.FragmentUsed(0), true, "la unidad 1 sigue marcada")
	assert.Equal(t, b.BlockUsed(0), true)

	b.Clear(1)
	assert.Equal(t, b.NumClear(), 8)
	assert.Equal(t, b.FragmentUsed(0), false)
	assert.Equal(t, b.BlockUsed(0), false)
}

func TestMarkIdempotente(t *testing.T) {
	b := newBitMapTestKit(16)
	b.Mark(3)
	b.Mark(3)
	assert.Equal(t, b.NumClear(), 15)
	b.Clear(3)
	b.Clear(3)
	assert.Equal(t, b.NumClear(), 16)
}

func TestClearCascadaSoloConFragmentosVacios(t *testing.T) {
	b := newBitMapTestKit(16)
	b.Mark(0)
	b.Mark(6)
	b.Clear(0)
	assert.Equal(t, b.FragmentUsed(0), false)
	assert.Equal(t, b.BlockUsed(0), true, "el fragmento 3 todavía tiene la unidad 6")
	b.Clear(6)
	assert.Equal(t, b.BlockUsed(0), false)
}

func TestMarkFueraDeRango(t *testing.T) {
	b := newBitMapTestKit(16)
	defer func() {
		assert.Equal(t, recover() != nil, true, "marcar fuera de rango debe abortar")
	}()
	b.Mark(16)
}

func TestContadorSiempreConsistente(t *testing.T) {
	b := newBitMapTestKit(64)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		u := r.Intn(64)
		if r.Intn(2) == 0 {
			b.Mark(u)
			assert.Equal(t, b.Test(u), true)
		} else {
			b.Clear(u)
			assert.Equal(t, b.Test(u), false)
		}
		assert.Equal(t, b.NumClear(), 64-contarUsadas(b))
	}
}

func TestFindMenorLibre(t *testing.T) {
	b := newBitMapTestKit(16)
	b.Mark(0)
	b.Mark(2)
	u, err := b.Find()
	assert.Equal(t, err, nil)
	assert.Equal(t, u, 1)
	u, _ = b.Find()
	assert.Equal(t, u, 3)
	assert.Equal(t, b.Test(3), true)
}

func TestFindAgotado(t *testing.T) {
	b := newBitMapTestKit(8)
	for i := 0; i < 8; i++ {
		_, err := b.Find()
		assert.Equal(t, err, nil)
	}
	u, err := b.Find()
	assert.Equal(t, u, -1)
	assert.Equal(t, errors.Is(err, ErrAgotado), true)
}

func TestFindBytesBloqueYFragmentos(t *testing.T) {
	b := newBitMapTestKit(32)
	unidades, err := b.FindBytes(128 + 40)
	assert.Equal(t, err, nil)
	assert.Equal(t, unidades, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11})
	assert.Equal(t, len(unidades), b.Geometry().UnidadesPara(168))
	assert.Equal(t, b.NumClear(), 20)
}

func TestFindBytesCorridaSeReinicia(t *testing.T) {
	b := newBitMapTestKit(32)
	b.Mark(2) // fragmento 1 del bloque 0
	unidades, err := b.FindBytes(64)
	assert.Equal(t, err, nil)
	assert.Equal(t, unidades, []int{4, 5, 6, 7})
}

func TestFindBytesBloqueSaltaLosOcupados(t *testing.T) {
	b := newBitMapTestKit(32)
	b.Mark(5)
	unidades, err := b.FindBytes(128)
	assert.Equal(t, err, nil)
	assert.Equal(t, unidades[0], 8)
	assert.Equal(t, len(unidades), 8)
}

func TestFindBytesCorridaNoCruzaBloques(t *testing.T) {
	b := newBitMapTestKit(16)
	// bloque 0: solo el último fragmento libre; bloque 1: solo el primero usado
	for u := 0; u < 6; u++ {
		b.Mark(u)
	}
	b.Mark(8)
	unidades, err := b.FindBytes(64)
	assert.Equal(t, err, nil)
	assert.Equal(t, unidades, []int{10, 11, 12, 13})
}

func TestFindBytesFallaSinDeshacer(t *testing.T) {
	b := newBitMapTestKit(16)
	b.Mark(8)
	unidades, err := b.FindBytes(256)
	assert.Equal(t, errors.Is(err, ErrAgotado), true)
	assert.Equal(t, len(unidades), 8, "el primer bloque ya quedó asignado")
	assert.Equal(t, b.NumClear(), 16-1-8)
	for _, u := range unidades {
		assert.Equal(t, b.Test(u), true)
	}
}

func TestFindBytesCero(t *testing.T) {
	b := newBitMapTestKit(16)
	unidades, err := b.FindBytes(0)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(unidades), 0)
	assert.Equal(t, b.NumClear(), 16)
}

func TestFindBytesDisjuntos(t *testing.T) {
	b := newBitMapTestKit(256)
	r := rand.New(rand.NewSource(42))
	vistas := make(map[int]bool)
	for i := 0; i < 20; i++ {
		pedido := 1 + r.Intn(200)
		libresAntes := b.NumClear()
		unidades, err := b.FindBytes(pedido)
		if err != nil {
			break
		}
		assert.Equal(t, len(unidades), b.Geometry().UnidadesPara(pedido))
		assert.Equal(t, b.NumClear(), libresAntes-len(unidades))
		for _, u := range unidades {
			assert.Equal(t, vistas[u], false, "unidad asignada dos veces")
			assert.Equal(t, b.Test(u), true)
			vistas[u] = true
		}
	}
}

func TestWriteBackFetchFrom(t *testing.T) {
	b := newBitMapTestKit(64)
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 30; i++ {
		b.Mark(r.Intn(64))
	}
	f := &memFile{}
	assert.Equal(t, b.WriteBack(f), nil)
	assert.Equal(t, len(f.datos), 64)

	otro := newBitMapTestKit(64)
	assert.Equal(t, otro.FetchFrom(f), nil)
	for u := 0; u < 64; u++ {
		assert.Equal(t, otro.Test(u), b.Test(u))
	}
	for i := 0; i < otro.NumFragments(); i++ {
		assert.Equal(t, otro.FragmentUsed(i), b.FragmentUsed(i))
	}
	for j := 0; j < otro.NumBlocks(); j++ {
		assert.Equal(t, otro.BlockUsed(j), b.BlockUsed(j))
	}
	assert.Equal(t, otro.NumClear(), b.NumClear())
}

func TestFetchFromDescartaEstadoPrevio(t *testing.T) {
	vacio := newBitMapTestKit(16)
	f := &memFile{}
	assert.Equal(t, vacio.WriteBack(f), nil)

	b := newBitMapTestKit(16)
	b.Mark(4)
	assert.Equal(t, b.FetchFrom(f), nil)
	assert.Equal(t, b.Test(4), false)
	assert.Equal(t, b.BlockUsed(0), false)
	assert.Equal(t, b.NumClear(), 16)
}

func TestGeometriaPlana(t *testing.T) {
	b := New(4, GeometriaPlana(128))
	unidades, err := b.FindBytes(200)
	assert.Equal(t, err, nil)
	assert.Equal(t, unidades, []int{0, 1})
}
