package main

import (
	"encoding/binary"
	"fmt"

	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// tramo de enteros escritos en un archivo de la prueba
type tramo struct {
	archivo    string
	desde      int
	hasta      int
	desplazado int // 0 para pares, 1 para impares
}

// pruebaFS llena "even" y "odd" en tramos que obligan a los archivos a crecer,
// después relee todo y compara. Los archivos se borran al final.
func pruebaFS(pid int) error {
	nombres := []string{"even", "odd"}
	fds := make(map[string]int)

	for _, nombre := range nombres {
		if err := crearArchivo(nombre, 40); err != nil {
			utils.InfoLog.Warn("No se pudo crear el archivo", "nombre", nombre, "error", err)
		}
		fd, err := abrirArchivo(pid, nombre)
		if err != nil {
			return err
		}
		fds[nombre] = fd
	}

	tramos := []tramo{
		{"even", 0, 64, 0},
		{"odd", 0, 64, 1},
		{"even", 64, 150, 0},
		{"odd", 64, 150, 1},
		{"even", 150, 210, 0},
	}
	ultimo := map[string]int{}
	for _, t := range tramos {
		datos := make([]byte, 4*(t.hasta-t.desde))
		for i := t.desde; i < t.hasta; i++ {
			binary.LittleEndian.PutUint32(datos[4*(i-t.desde):], uint32(2*i+t.desplazado))
		}
		if err := escribirArchivo(pid, fds[t.archivo], 4*t.desde, datos); err != nil {
			return fmt.Errorf("error escribiendo %s [%d, %d): %w", t.archivo, t.desde, t.hasta, err)
		}
		ultimo[t.archivo] = t.hasta
		utils.InfoLog.Info("Tramo escrito", "archivo", t.archivo, "desde", t.desde, "hasta", t.hasta)
	}

	for i, nombre := range nombres {
		datos, err := leerArchivo(pid, fds[nombre], 0, 4*ultimo[nombre])
		if err != nil {
			return err
		}
		for j := 0; j < ultimo[nombre]; j++ {
			if valor := binary.LittleEndian.Uint32(datos[4*j:]); valor != uint32(2*j+i) {
				return fmt.Errorf("%s: entero %d vale %d, se esperaba %d", nombre, j, valor, 2*j+i)
			}
		}
		if err := cerrarArchivo(pid, fds[nombre]); err != nil {
			return err
		}
		if err := borrarArchivo(nombre); err != nil {
			return err
		}
	}

	utils.InfoLog.Info("Prueba de file system completada", "archivos", nombres)
	return nil
}
