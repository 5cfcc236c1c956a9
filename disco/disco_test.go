package disco

import (
	"bytes"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/magiconair/properties/assert"
)

func sectorCon(tam int, valor byte) []byte {
	return bytes.Repeat([]byte{valor}, tam)
}

func TestMemDiskIdaYVuelta(t *testing.T) {
	d := NewMemDisk(64, 8)
	assert.Equal(t, d.SectorSize(), 64)
	assert.Equal(t, d.NumSectors(), 8)

	assert.Equal(t, d.WriteSector(3, sectorCon(64, 0xAB)), nil)
	buf := make([]byte, 64)
	assert.Equal(t, d.ReadSector(3, buf), nil)
	assert.Equal(t, buf, sectorCon(64, 0xAB))

	// los vecinos siguen en cero
	assert.Equal(t, d.ReadSector(2, buf), nil)
	assert.Equal(t, buf, make([]byte, 64))
	assert.Equal(t, d.ReadSector(4, buf), nil)
	assert.Equal(t, buf, make([]byte, 64))
}

func TestValidarPedido(t *testing.T) {
	d := NewMemDisk(64, 8)
	buf := make([]byte, 64)

	assert.Equal(t, errors.Is(d.ReadSector(-1, buf), ErrSectorInvalido), true)
	assert.Equal(t, errors.Is(d.ReadSector(8, buf), ErrSectorInvalido), true)
	assert.Equal(t, errors.Is(d.WriteSector(8, buf), ErrSectorInvalido), true)
	assert.Equal(t, d.ReadSector(7, buf), nil)

	err := d.WriteSector(0, make([]byte, 63))
	assert.Equal(t, err != nil, true, "buffer más chico que el sector")
	assert.Equal(t, errors.Is(err, ErrSectorInvalido), false)

	// un buffer más grande se acepta y solo se usa el primer sector
	grande := sectorCon(100, 7)
	assert.Equal(t, d.WriteSector(1, grande), nil)
	assert.Equal(t, d.ReadSector(2, buf), nil)
	assert.Equal(t, buf, make([]byte, 64))
}

func TestFileDiskPersiste(t *testing.T) {
	ruta := filepath.Join(t.TempDir(), "sub", "disco.bin")
	d, err := AbrirFileDisk(ruta, 128, 16)
	assert.Equal(t, err, nil)

	buf := make([]byte, 128)
	assert.Equal(t, d.ReadSector(15, buf), nil)
	assert.Equal(t, buf, make([]byte, 128), "un disco nuevo arranca en ceros")

	assert.Equal(t, d.WriteSector(0, sectorCon(128, 1)), nil)
	assert.Equal(t, d.WriteSector(15, sectorCon(128, 2)), nil)
	assert.Equal(t, errors.Is(d.WriteSector(16, buf), ErrSectorInvalido), true)
	assert.Equal(t, d.Close(), nil)

	d, err = AbrirFileDisk(ruta, 128, 16)
	assert.Equal(t, err, nil)
	defer d.Close()
	assert.Equal(t, d.NumSectors(), 16)
	assert.Equal(t, d.ReadSector(0, buf), nil)
	assert.Equal(t, buf, sectorCon(128, 1))
	assert.Equal(t, d.ReadSector(15, buf), nil)
	assert.Equal(t, buf, sectorCon(128, 2))
}

// discoContador registra cuántos pedidos atiende a la vez
type discoContador struct {
	*MemDisk
	enCurso atomic.Int32
	maximo  atomic.Int32
}

func (d *discoContador) pedido() func() {
	n := d.enCurso.Add(1)
	for {
		m := d.maximo.Load()
		if n <= m || d.maximo.CompareAndSwap(m, n) {
			break
		}
	}
	return func() { d.enCurso.Add(-1) }
}

func (d *discoContador) ReadSector(sector int, buf []byte) error {
	defer d.pedido()()
	return d.MemDisk.ReadSector(sector, buf)
}

func (d *discoContador) WriteSector(sector int, buf []byte) error {
	defer d.pedido()()
	return d.MemDisk.WriteSector(sector, buf)
}

func TestSynchDiskCuentaYSerializa(t *testing.T) {
	crudo := &discoContador{MemDisk: NewMemDisk(32, 8)}
	s := NewSynchDisk(crudo, 0)
	assert.Equal(t, s.SectorSize(), 32)
	assert.Equal(t, s.NumSectors(), 8)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(sector int) {
			defer wg.Done()
			buf := sectorCon(32, byte(sector))
			_ = s.WriteSector(sector, buf)
			_ = s.ReadSector(sector, buf)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, s.Escrituras, 8)
	assert.Equal(t, s.Lecturas, 8)
	assert.Equal(t, crudo.maximo.Load(), int32(1), "un pedido a la vez")

	buf := make([]byte, 32)
	for i := 0; i < 8; i++ {
		assert.Equal(t, s.ReadSector(i, buf), nil)
		assert.Equal(t, buf, sectorCon(32, byte(i)))
	}
	assert.Equal(t, s.Lecturas, 16)

	// los pedidos inválidos también cuentan como transferencia intentada
	assert.Equal(t, errors.Is(s.ReadSector(8, buf), ErrSectorInvalido), true)
	assert.Equal(t, s.Lecturas, 17)
}
