package main

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/magiconair/properties/assert"

	"github.com/pavancse/Unix-Fast-File-System/kernel"
	"github.com/pavancse/Unix-Fast-File-System/memoria"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

type llamada struct {
	numero int
	args   kernel.Argumentos
}

// memoriaFalsa guarda los bytes escritos y las syscalls recibidas
type memoriaFalsa struct {
	ram       map[int]byte
	llamadas  []llamada
	cadenas   []string
	programas map[string][]byte
}

func (f *memoriaFalsa) cadena(dir int) string {
	var b []byte
	for ; f.ram[dir] != 0; dir++ {
		b = append(b, f.ram[dir])
	}
	return string(b)
}

func nuevaMemoriaFalsa(t *testing.T) *memoriaFalsa {
	f := &memoriaFalsa{ram: make(map[int]byte), programas: make(map[string][]byte)}
	ok := func(campos map[string]interface{}) (interface{}, error) {
		respuesta := map[string]interface{}{"status": "OK"}
		for k, v := range campos {
			respuesta[k] = v
		}
		return respuesta, nil
	}

	m := utils.NuevoModulo("Memoria", "")
	m.RegistrarHandler(strconv.Itoa(utils.MensajeEscribirMemoria), "default", func(msg *utils.Mensaje) (interface{}, error) {
		dir, _ := utils.ExtraerEntero(msg, "direccion")
		datos, _ := utils.ExtraerBytes(msg, "datos")
		for i, b := range datos {
			f.ram[dir+i] = b
		}
		return ok(nil)
	})
	m.RegistrarHandler(strconv.Itoa(utils.MensajeLeerMemoria), "default", func(msg *utils.Mensaje) (interface{}, error) {
		dir, _ := utils.ExtraerEntero(msg, "direccion")
		tam, _ := utils.ExtraerEntero(msg, "tamanio")
		datos := make([]byte, tam)
		for i := range datos {
			datos[i] = f.ram[dir+i]
		}
		return ok(map[string]interface{}{"datos": datos})
	})
	m.RegistrarHandler(strconv.Itoa(utils.MensajeOperacion), "syscall", func(msg *utils.Mensaje) (interface{}, error) {
		numero, _ := utils.ExtraerEntero(msg, "numero")
		var args kernel.Argumentos
		for i := range args {
			args[i], _ = utils.ExtraerEntero(msg, "r"+strconv.Itoa(i+4))
		}
		f.llamadas = append(f.llamadas, llamada{numero, args})
		f.cadenas = append(f.cadenas, f.cadena(args[0]))

		resultado := 0
		switch numero {
		case kernel.SyscallOpen:
			resultado = 2
		case kernel.SyscallFork:
			resultado = 7
		case kernel.SyscallJoin:
			return map[string]interface{}{"error": "pid 9: proceso inexistente"}, nil
		}
		return ok(map[string]interface{}{"resultado": resultado})
	})
	m.RegistrarHandler(strconv.Itoa(utils.MensajeCopiarArchivo), "default", func(msg *utils.Mensaje) (interface{}, error) {
		nombre, _ := utils.ExtraerTexto(msg, "nombre")
		f.programas[nombre], _ = utils.ExtraerBytes(msg, "contenido")
		return ok(nil)
	})
	m.RegistrarHandler(strconv.Itoa(utils.MensajeEjecutarProceso), "default", func(msg *utils.Mensaje) (interface{}, error) {
		return ok(map[string]interface{}{"pid": 1})
	})

	srv := httptest.NewServer(m.PrepararServidor("127.0.0.1", 0).Handler())
	t.Cleanup(srv.Close)
	memoriaClient = utils.NewHTTPClientURL(srv.URL, "CPU->Memoria")
	config = &CPUConfig{MaxInstrucciones: 50}
	return f
}

func TestScriptConSyscalls(t *testing.T) {
	f := nuevaMemoriaFalsa(t)
	p := NuevoProceso(1, 200, 50)

	motivo, err := p.Ejecutar([]string{
		"WRITE 10 hola mundo",
		"READ 10 4",
		"CREATE notas",
		"OPEN notas",
		"FWRITE 2 10 10",
		"CLOSE 2",
		"PRINT listo",
		"FORK",
		"EXIT 3",
		"NOOP",
	})
	assert.Equal(t, err, nil)
	assert.Equal(t, motivo, MotivoExit)
	assert.Equal(t, p.Ejecutadas, 9)
	assert.Equal(t, p.ultimoHijo, 7)
	assert.Equal(t, f.cadena(10), "hola mundo")

	numeros := make([]int, len(f.llamadas))
	for i, l := range f.llamadas {
		numeros[i] = l.numero
	}
	assert.Equal(t, numeros, []int{
		kernel.SyscallCreate, kernel.SyscallOpen, kernel.SyscallWrite, kernel.SyscallClose,
		kernel.SyscallWrite, kernel.SyscallFork, kernel.SyscallExit,
	})

	assert.Equal(t, f.llamadas[0].args[0], 200, "los nombres van en la zona de argumentos")
	assert.Equal(t, f.cadenas[0], "notas")
	assert.Equal(t, f.llamadas[2].args, kernel.Argumentos{10, 10, 2, 0})
	assert.Equal(t, f.llamadas[4].args, kernel.Argumentos{200, 6, kernel.ConsolaSalida, 0})
	assert.Equal(t, f.cadena(200), "listo\n")
	assert.Equal(t, f.llamadas[6].args[0], 3)
}

func TestScriptSinExit(t *testing.T) {
	f := nuevaMemoriaFalsa(t)
	p := NuevoProceso(1, 100, 50)

	motivo, err := p.Ejecutar([]string{"NOOP", "YIELD"})
	assert.Equal(t, err, nil)
	assert.Equal(t, motivo, MotivoExit)
	assert.Equal(t, f.llamadas[len(f.llamadas)-1], llamada{kernel.SyscallExit, kernel.Argumentos{}})
}

func TestScriptErrores(t *testing.T) {
	nuevaMemoriaFalsa(t)

	p := NuevoProceso(1, 100, 5)
	motivo, err := p.Ejecutar([]string{"NOOP", "GOTO 0"})
	assert.Equal(t, motivo, MotivoError)
	assert.Equal(t, err != nil, true, "GOTO sin salida")
	assert.Equal(t, p.Ejecutadas, 5)

	for _, script := range [][]string{{"SALTAR 3"}, {"WRITE 10"}, {"READ x 4"}, {"JOIN 9"}} {
		motivo, err = NuevoProceso(1, 100, 5).Ejecutar(script)
		assert.Equal(t, motivo, MotivoError, strings.Join(script, " "))
		assert.Equal(t, err != nil, true, strings.Join(script, " "))
	}
}

func TestCargarProceso(t *testing.T) {
	f := nuevaMemoriaFalsa(t)
	ruta := filepath.Join(t.TempDir(), "programa_largo.noff")
	exe := memoria.ConstruirNoff(make([]byte, 100), make([]byte, 20), 8)
	assert.Equal(t, os.WriteFile(ruta, exe, 0644), nil)

	p, err := cargarProceso(ruta)
	assert.Equal(t, err, nil)
	assert.Equal(t, p.PID, 1)
	assert.Equal(t, p.DirArgumentos, 128)
	assert.Equal(t, f.programas["programa_"], exe)

}

func TestLeerScript(t *testing.T) {
	ruta := filepath.Join(t.TempDir(), "script")
	contenido := "# prueba\nWRITE 0 hola\n\n  READ 0 4  \nEXIT\n"
	assert.Equal(t, os.WriteFile(ruta, []byte(contenido), 0644), nil)

	instrucciones, err := leerScript(ruta)
	assert.Equal(t, err, nil)
	assert.Equal(t, instrucciones, []string{"WRITE 0 hola", "READ 0 4", "EXIT"})

	_, err = leerScript(filepath.Join(t.TempDir(), "nada"))
	assert.Equal(t, err != nil, true)
}
