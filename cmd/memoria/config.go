package main

import (
	"github.com/jinzhu/copier"

	"github.com/pavancse/Unix-Fast-File-System/kernel"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

var config *kernel.Config

// cargarConfig parte de los valores por defecto y pisa solo los campos que
// el archivo trae con valor
func cargarConfig(ruta string) *kernel.Config {
	leida := utils.CargarConfiguracion[kernel.Config](ruta)
	cfg := kernel.ConfigPorDefecto()
	if err := copier.CopyWithOption(&cfg, leida, copier.Option{IgnoreEmpty: true}); err != nil {
		utils.ErrorLog.Error("Configuración inválida", "ruta", ruta, "error", err)
		return leida
	}
	return &cfg
}
