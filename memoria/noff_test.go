package memoria

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/magiconair/properties/assert"
)

func TestConstruirYParsearNoff(t *testing.T) {
	exe := ConstruirNoff([]byte("codigo"), []byte("dat"), 100)

	h, err := ParsearNoff(exe)
	assert.Equal(t, err, nil)
	assert.Equal(t, h.Code, Segmento{VirtualAddr: 0, InFileAddr: TamNoffHeader, Size: 6})
	assert.Equal(t, h.InitData, Segmento{VirtualAddr: 6, InFileAddr: TamNoffHeader + 6, Size: 3})
	assert.Equal(t, h.UninitData.Size, int32(100))
	assert.Equal(t, h.TamImagen(), 109)
	assert.Equal(t, string(exe[TamNoffHeader:]), "codigodat")
}

func TestParsearNoffOrdenInvertido(t *testing.T) {
	original := NoffHeader{
		Magic:    NoffMagic,
		Code:     Segmento{VirtualAddr: 0, InFileAddr: 40, Size: 256},
		InitData: Segmento{VirtualAddr: 256, InFileAddr: 296, Size: 32},
	}
	var buf bytes.Buffer
	assert.Equal(t, binary.Write(&buf, binary.BigEndian, original), nil)

	h, err := ParsearNoff(buf.Bytes())
	assert.Equal(t, err, nil)
	assert.Equal(t, h, original)
}

func TestParsearNoffMagicIncorrecto(t *testing.T) {
	_, err := ParsearNoff(make([]byte, TamNoffHeader))
	assert.Equal(t, errors.Is(err, ErrEjecutableInvalido), true)

	_, err = ParsearNoff([]byte{1, 2, 3})
	assert.Equal(t, errors.Is(err, ErrEjecutableInvalido), true)
}
