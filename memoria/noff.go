package memoria

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// NoffMagic identifica un ejecutable NOFF
const NoffMagic = 0xbadfad

// TamNoffHeader es el tamaño en bytes del encabezado al principio del archivo
const TamNoffHeader = 40

var ErrEjecutableInvalido = errors.New("ejecutable NOFF inválido")

// Segmento describe una sección del ejecutable: dónde va en memoria virtual,
// dónde está en el archivo y cuánto mide
type Segmento struct {
	VirtualAddr int32
	InFileAddr  int32
	Size        int32
}

type NoffHeader struct {
	Magic      int32
	Code       Segmento
	InitData   Segmento
	UninitData Segmento
}

// ParsearNoff lee el encabezado; si viene con el orden de bytes invertido
// lo detecta por el magic y lo da vuelta
func ParsearNoff(buf []byte) (NoffHeader, error) {
	var h NoffHeader
	if len(buf) < TamNoffHeader {
		return h, fmt.Errorf("encabezado de %d bytes: %w", len(buf), ErrEjecutableInvalido)
	}

	for _, orden := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		if err := binary.Read(bytes.NewReader(buf[:TamNoffHeader]), orden, &h); err != nil {
			return h, fmt.Errorf("%v: %w", err, ErrEjecutableInvalido)
		}
		if h.Magic == NoffMagic {
			return h, h.validar()
		}
	}
	return h, fmt.Errorf("magic %#x: %w", uint32(h.Magic), ErrEjecutableInvalido)
}

func (h NoffHeader) validar() error {
	for _, s := range []Segmento{h.Code, h.InitData, h.UninitData} {
		if s.Size < 0 || s.InFileAddr < 0 || s.VirtualAddr < 0 {
			return fmt.Errorf("segmento %+v: %w", s, ErrEjecutableInvalido)
		}
	}
	return nil
}

// TamImagen es lo que ocupan código y datos, sin contar la pila
func (h NoffHeader) TamImagen() int {
	return int(h.Code.Size) + int(h.InitData.Size) + int(h.UninitData.Size)
}

func (h NoffHeader) Bytes() []byte {
	var buf bytes.Buffer
	// escribir en un bytes.Buffer no falla
	_ = binary.Write(&buf, binary.LittleEndian, h)
	return buf.Bytes()
}

// ConstruirNoff arma un ejecutable con el código y los datos inicializados
// contiguos a continuación del encabezado
func ConstruirNoff(codigo []byte, datos []byte, sinInicializar int) []byte {
	h := NoffHeader{
		Magic: NoffMagic,
		Code: Segmento{
			VirtualAddr: 0,
			InFileAddr:  TamNoffHeader,
			Size:        int32(len(codigo)),
		},
		InitData: Segmento{
			VirtualAddr: int32(len(codigo)),
			InFileAddr:  int32(TamNoffHeader + len(codigo)),
			Size:        int32(len(datos)),
		},
		UninitData: Segmento{
			VirtualAddr: int32(len(codigo) + len(datos)),
			Size:        int32(sinInicializar),
		},
	}

	exe := h.Bytes()
	exe = append(exe, codigo...)
	return append(exe, datos...)
}
