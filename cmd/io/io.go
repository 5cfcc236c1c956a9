package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// comando de consola sobre el file system de la memoria
type comando struct {
	argumentos int
	ejecutar   func(w io.Writer, args []string) error
}

var comandos = map[string]comando{
	"cp":    {2, copiarDesdeHost},
	"rm":    {1, borrar},
	"ls":    {0, listar},
	"fs":    {0, imprimirFS},
	"libre": {0, espacioLibre},
}

func ejecutarComando(w io.Writer, nombre string, args []string) error {
	c, existe := comandos[nombre]
	if !existe {
		return fmt.Errorf("comando desconocido: %s", nombre)
	}
	if len(args) < c.argumentos {
		return fmt.Errorf("%s espera %d argumentos, recibió %d", nombre, c.argumentos, len(args))
	}

	if config != nil {
		utils.AplicarRetardo("io_operacion", config.RetardoBase)
	}
	utils.InfoLog.Info("Inicio de operación", "comando", nombre, "argumentos", args)
	return c.ejecutar(w, args)
}

// copiarDesdeHost manda el contenido del archivo del host; la memoria lo
// guarda con el nombre pedido
func copiarDesdeHost(w io.Writer, args []string) error {
	contenido, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	_, err = memoriaClient.EnviarHTTPMensaje(utils.MensajeCopiarArchivo, "", map[string]interface{}{
		"nombre":    args[1],
		"contenido": contenido,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s -> %s (%d bytes)\n", args[0], args[1], len(contenido))
	return nil
}

func borrar(w io.Writer, args []string) error {
	_, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeBorrarArchivo, "", map[string]interface{}{"nombre": args[0]})
	return err
}

func listar(w io.Writer, _ []string) error {
	resp, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeListarArchivos, "", nil)
	if err != nil {
		return err
	}
	archivos, _ := resp["archivos"].([]interface{})
	for _, archivo := range archivos {
		fmt.Fprintln(w, archivo)
	}
	return nil
}

func imprimirFS(w io.Writer, _ []string) error {
	resp, err := memoriaClient.EnviarHTTPOperacion("imprimir_fs", nil)
	if err != nil {
		return err
	}
	fmt.Fprint(w, resp["fs"])
	return nil
}

func espacioLibre(w io.Writer, _ []string) error {
	resp, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeEspacioLibre, "", nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Marcos libres: %v - Sectores libres: %v\n", resp["marcos_libres"], resp["sectores_libres"])
	return nil
}
