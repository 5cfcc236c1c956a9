package memoria

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/magiconair/properties/assert"

	"github.com/pavancse/Unix-Fast-File-System/bitmap"
	"github.com/pavancse/Unix-Fast-File-System/disco"
	"github.com/pavancse/Unix-Fast-File-System/filesys"
)

const tamPagina = 128

// espacios hace de tabla de procesos para los desalojos cruzados
type espacios map[int]*AddrSpace

func (e espacios) SwapFile(pid int) (filesys.OpenFile, bool) {
	a, ok := e[pid]
	if !ok || a.SwapFile() == nil {
		return nil, false
	}
	return a.SwapFile(), true
}

type memoriaTestKit struct {
	mem      *Memoria
	fs       *filesys.FileSystem
	espacios espacios
	codigo   []byte
}

// cada proceso del kit ocupa 5 páginas: 3 de código y 2 de pila
func newMemoriaTestKit(t *testing.T, marcos int) *memoriaTestKit {
	d := disco.NewMemDisk(128, 1024)
	fs, err := filesys.Format(d, bitmap.Geometria{UnitSize: 128, UnitsPerFragment: 2, FragmentsPerBlock: 4}, 10)
	assert.Equal(t, err, nil)

	codigo := make([]byte, 3*tamPagina)
	for i := range codigo {
		codigo[i] = byte(i % 251)
	}
	exe := ConstruirNoff(codigo, nil, 0)
	assert.Equal(t, fs.Create("prog", 0), nil)
	f, err := fs.Open("prog")
	assert.Equal(t, err, nil)
	_, err = f.WriteAt(exe, len(exe), 0)
	assert.Equal(t, err, nil)
	assert.Equal(t, f.Close(), nil)

	kit := &memoriaTestKit{fs: fs, espacios: espacios{}, codigo: codigo}
	kit.mem = New(Config{PageSize: tamPagina, NumFrames: marcos, UserStackSize: 2 * tamPagina}, fs, kit.espacios)
	return kit
}

func (k *memoriaTestKit) cargar(t *testing.T, pid int) *AddrSpace {
	exe, err := k.fs.Open("prog")
	assert.Equal(t, err, nil)
	a, err := k.mem.NewAddrSpace(pid, exe)
	assert.Equal(t, err, nil)
	k.espacios[pid] = a
	return a
}

func fallar(t *testing.T, a *AddrSpace, paginas ...int) {
	for _, p := range paginas {
		assert.Equal(t, a.LoadPageFault(p*tamPagina+1), nil)
	}
}

func TestNewAddrSpace(t *testing.T) {
	k := newMemoriaTestKit(t, 4)
	a := k.cargar(t, 1)

	assert.Equal(t, a.NumPages(), 5)
	assert.Equal(t, a.StackTop(), 5*tamPagina-16)
	assert.Equal(t, k.mem.Ledger().Len(), 0, "nada se carga hasta el primer fallo")
	for vpn := 0; vpn < a.NumPages(); vpn++ {
		assert.Equal(t, a.Entrada(vpn).Valid, false)
	}

	leido, err := a.ReadMem(0, len(k.codigo))
	assert.Equal(t, err, nil)
	assert.Equal(t, bytes.Equal(leido, k.codigo), true)

	pila, err := a.ReadMem(3*tamPagina, 2*tamPagina)
	assert.Equal(t, err, nil)
	assert.Equal(t, pila, make([]byte, 2*tamPagina))
}

func TestEjecutableInvalido(t *testing.T) {
	k := newMemoriaTestKit(t, 4)
	assert.Equal(t, k.fs.Create("basura", 0), nil)
	f, _ := k.fs.Open("basura")
	_, err := f.WriteAt(make([]byte, 64), 64, 0)
	assert.Equal(t, err, nil)

	_, err = k.mem.NewAddrSpace(1, f)
	assert.Equal(t, errors.Is(err, ErrEjecutableInvalido), true)
}

func TestDesalojoFIFO(t *testing.T) {
	k := newMemoriaTestKit(t, 4)
	a := k.cargar(t, 1)

	fallar(t, a, 0, 1, 2, 3)
	assert.Equal(t, k.mem.MarcosLibres(), 0)
	marcoDeCero := a.Entrada(0).PhysicalPage

	fallar(t, a, 4)
	assert.Equal(t, a.Entrada(0).Valid, false)
	assert.Equal(t, a.Entrada(0).PhysicalPage, -1)
	assert.Equal(t, a.Entrada(4).PhysicalPage, marcoDeCero)
	assert.Equal(t, k.mem.Ledger().Orden(), []PaginaResidente{
		{PID: 1, VPN: 1}, {PID: 1, VPN: 2}, {PID: 1, VPN: 3}, {PID: 1, VPN: 4},
	})

	// la página 0 es la que vuelve a fallar, y desaloja a la 1
	fallar(t, a, 0)
	assert.Equal(t, a.Entrada(1).Valid, false)
	for _, vpn := range []int{0, 2, 3, 4} {
		assert.Equal(t, a.Entrada(vpn).Valid, true)
	}

	met := k.mem.Metricas(1)
	assert.Equal(t, met.FallosPagina, 6)
	assert.Equal(t, met.Desalojos, 2)
	assert.Equal(t, met.BajadasSwap, 0, "ninguna página estaba sucia")
}

func TestFalloSobrePaginaCargada(t *testing.T) {
	k := newMemoriaTestKit(t, 4)
	a := k.cargar(t, 1)

	fallar(t, a, 2, 2)
	assert.Equal(t, k.mem.Ledger().Len(), 1)
	assert.Equal(t, k.mem.Metricas(1).FallosPagina, 1)
}

func TestDireccionInvalida(t *testing.T) {
	k := newMemoriaTestKit(t, 4)
	a := k.cargar(t, 1)

	err := a.LoadPageFault(5 * tamPagina)
	assert.Equal(t, errors.Is(err, ErrDireccionInvalida), true)
	_, err = a.Translate(-1, false)
	assert.Equal(t, errors.Is(err, ErrDireccionInvalida), true)
}

func TestPaginaSuciaVuelveDelSwap(t *testing.T) {
	k := newMemoriaTestKit(t, 4)
	a := k.cargar(t, 1)

	assert.Equal(t, a.WriteMem(10, []byte("hola")), nil)
	assert.Equal(t, a.Entrada(0).Dirty, true)

	fallar(t, a, 1, 2, 3, 4)
	assert.Equal(t, a.Entrada(0).Valid, false)
	assert.Equal(t, k.mem.Metricas(1).BajadasSwap, 1)

	leido, err := a.ReadMem(10, 4)
	assert.Equal(t, err, nil)
	assert.Equal(t, string(leido), "hola")
}

func TestEscrituraCruzaPaginas(t *testing.T) {
	k := newMemoriaTestKit(t, 2)
	a := k.cargar(t, 1)

	datos := bytes.Repeat([]byte{0x5A}, 200)
	assert.Equal(t, a.WriteMem(tamPagina-50, datos), nil)

	fallar(t, a, 3, 4)
	leido, err := a.ReadMem(tamPagina-50, 200)
	assert.Equal(t, err, nil)
	assert.Equal(t, leido, datos)
}

func TestDesalojoDeOtroProceso(t *testing.T) {
	k := newMemoriaTestKit(t, 4)
	a := k.cargar(t, 1)
	b := k.cargar(t, 2)

	assert.Equal(t, a.WriteMem(10, []byte("hola")), nil)
	fallar(t, b, 0, 1, 2)
	assert.Equal(t, k.mem.MarcosLibres(), 0)

	fallar(t, b, 3)
	assert.Equal(t, a.Entrada(0).Valid, false)
	assert.Equal(t, k.mem.Metricas(1).BajadasSwap, 1)
	assert.Equal(t, k.mem.Metricas(1).Desalojos, 1)
	assert.Equal(t, k.mem.Metricas(2).Desalojos, 0)

	leido, err := a.ReadMem(10, 4)
	assert.Equal(t, err, nil)
	assert.Equal(t, string(leido), "hola")
}

func TestDesalojoSinSwapDelDueño(t *testing.T) {
	k := newMemoriaTestKit(t, 2)
	a := k.cargar(t, 1)
	b := k.cargar(t, 2)
	delete(k.espacios, 1)

	assert.Equal(t, a.WriteMem(0, []byte{0x77}), nil)
	fallar(t, b, 0)
	err := b.LoadPageFault(tamPagina)
	assert.Equal(t, errors.Is(err, ErrSwapInexistente), true)

	// la víctima no se pierde: sigue residente, sucia y en el ledger
	victima := a.Entrada(0)
	assert.Equal(t, victima.Valid, true)
	assert.Equal(t, victima.Dirty, true)
	assert.Equal(t, k.mem.MarcoUsado(victima.PhysicalPage), true)
	assert.Equal(t, k.mem.Ledger().Orden(), []PaginaResidente{{PID: 1, VPN: 0}, {PID: 2, VPN: 0}})
	assert.Equal(t, k.mem.MarcosLibres(), 0)
	assert.Equal(t, b.Entrada(1).Valid, false)

	leido, err := a.ReadMem(0, 1)
	assert.Equal(t, err, nil)
	assert.Equal(t, leido, []byte{0x77})

	// con el dueño de vuelta el desalojo baja la página y el dato sobrevive
	k.espacios[1] = a
	fallar(t, b, 1)
	assert.Equal(t, a.Entrada(0).Valid, false)
	leido, err = a.ReadMem(0, 1)
	assert.Equal(t, err, nil)
	assert.Equal(t, leido, []byte{0x77})
}

func TestReleaseNoTocaOtrosProcesos(t *testing.T) {
	k := newMemoriaTestKit(t, 4)
	a := k.cargar(t, 1)
	b := k.cargar(t, 2)
	libresEnDisco := k.fs.NumClear()

	assert.Equal(t, a.WriteMem(0, []byte("aaaa")), nil)
	fallar(t, a, 1)
	assert.Equal(t, b.WriteMem(0, []byte("bbbb")), nil)
	fallar(t, b, 1)

	marcosDeA := []int{a.Entrada(0).PhysicalPage, a.Entrada(1).PhysicalPage}
	nombreSwap := a.SwapName()
	assert.Equal(t, a.Release(), nil)
	delete(k.espacios, 1)

	assert.Equal(t, k.mem.MarcosLibres(), 2)
	assert.Equal(t, len(k.mem.Ledger().PaginasDe(1)), 0)
	assert.Equal(t, k.mem.Ledger().PaginasDe(2), []int{0, 1})
	for _, marco := range marcosDeA {
		assert.Equal(t, k.mem.MarcoUsado(marco), false)
		assert.Equal(t, k.mem.Marco(marco), make([]byte, tamPagina))
	}

	_, err := k.fs.Open(nombreSwap)
	assert.Equal(t, errors.Is(err, filesys.ErrNoEncontrado), true)
	assert.Equal(t, k.fs.NumClear() > libresEnDisco, true, "el swap devolvió sus sectores")

	leido, err := b.ReadMem(0, 4)
	assert.Equal(t, err, nil)
	assert.Equal(t, string(leido), "bbbb")
}

func TestCopiaIndependiente(t *testing.T) {
	k := newMemoriaTestKit(t, 4)
	padre := k.cargar(t, 1)
	assert.Equal(t, padre.WriteMem(0, []byte("padre")), nil)

	hijo, err := k.mem.CopyAddrSpace(2, padre)
	assert.Equal(t, err, nil)
	k.espacios[2] = hijo
	assert.Equal(t, hijo.NumPages(), padre.NumPages())
	assert.Equal(t, hijo.SwapName() != padre.SwapName(), true)
	for vpn := 0; vpn < hijo.NumPages(); vpn++ {
		assert.Equal(t, hijo.Entrada(vpn).Valid, false)
	}

	leido, err := hijo.ReadMem(0, 5)
	assert.Equal(t, err, nil)
	assert.Equal(t, string(leido), "padre")

	assert.Equal(t, hijo.WriteMem(0, []byte("hijo!")), nil)
	leido, err = padre.ReadMem(0, 5)
	assert.Equal(t, err, nil)
	assert.Equal(t, string(leido), "padre")

	leido, err = hijo.ReadMem(tamPagina, tamPagina)
	assert.Equal(t, err, nil)
	assert.Equal(t, leido, k.codigo[tamPagina:2*tamPagina])
}

func TestDump(t *testing.T) {
	k := newMemoriaTestKit(t, 4)
	a := k.cargar(t, 1)
	assert.Equal(t, a.WriteMem(3*tamPagina, []byte("pila")), nil)

	ruta, err := a.Dump(t.TempDir())
	assert.Equal(t, err, nil)
	contenido, err := os.ReadFile(ruta)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(contenido), 5*tamPagina)
	assert.Equal(t, contenido[:len(k.codigo)], k.codigo)
	assert.Equal(t, string(contenido[3*tamPagina:3*tamPagina+4]), "pila")
}
