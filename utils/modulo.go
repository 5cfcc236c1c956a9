package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Modulo representa un módulo genérico del sistema
type Modulo struct {
	Nombre      string
	Server      *HTTPServer
	Clientes    map[string]*HTTPClient
	ConfigPath  string
	HandlerFunc map[string]map[string]HTTPHandlerFunc
}

// NuevoModulo crea una nueva instancia de un módulo
func NuevoModulo(nombre string, configPath string) *Modulo {
	return &Modulo{
		Nombre:      nombre,
		Clientes:    make(map[string]*HTTPClient),
		ConfigPath:  configPath,
		HandlerFunc: make(map[string]map[string]HTTPHandlerFunc),
	}
}

// RegistrarHandler registra un handler para un tipo de mensaje y operación específicos
func (m *Modulo) RegistrarHandler(tipo string, operacion string, handler HTTPHandlerFunc) {
	if _, existe := m.HandlerFunc[tipo]; !existe {
		m.HandlerFunc[tipo] = make(map[string]HTTPHandlerFunc)
	}
	m.HandlerFunc[tipo][operacion] = handler
}

// PrepararServidor crea el servidor HTTP del módulo y le conecta los handlers registrados
func (m *Modulo) PrepararServidor(ip string, puerto int) *HTTPServer {
	m.Server = NewHTTPServer(ip, puerto, m.Nombre)

	for tipoStr, handlersPorOperacion := range m.HandlerFunc {
		tipo, err := strconv.Atoi(tipoStr)
		if err != nil {
			ErrorLog.Error("Error al convertir tipo de mensaje a entero", "tipo", tipoStr, "error", err)
			continue
		}

		handlers := handlersPorOperacion
		m.Server.RegisterHTTPHandler(tipo, func(msg *Mensaje) (interface{}, error) {
			operacion := msg.Operacion
			if operacion == "" {
				operacion = "default"
			}

			handler, existe := handlers[operacion]
			if !existe {
				handler, existe = handlers["default"]
				if !existe {
					ErrorLog.Error("No hay handler para operación", "tipo", tipo, "operacion", operacion)
					return nil, fmt.Errorf("no hay handler para operación %s", operacion)
				}
			}

			return handler(msg)
		})
	}

	return m.Server
}

// IniciarServidor crea e inicializa el servidor HTTP del módulo
func (m *Modulo) IniciarServidor(ip string, puerto int) {
	m.PrepararServidor(ip, puerto)

	go func() {
		err := m.Server.Start()
		if err != nil {
			ErrorLog.Error("Error al iniciar servidor HTTP", "error", err)
			os.Exit(1)
		}
	}()

	InfoLog.Info("Servidor HTTP iniciado", "módulo", m.Nombre, "dirección", fmt.Sprintf("%s:%d", ip, puerto))
}

// CargarConfiguracion decodifica el JSON de la ruta en un T. Termina el
// proceso si el archivo no existe o no se puede decodificar.
func CargarConfiguracion[T any](ruta string) *T {
	config, err := LeerConfiguracion[T](ruta)
	if err != nil {
		ErrorLog.Error("Error cargando configuración", "error", err, "ruta", ruta)
		os.Exit(1)
	}
	return config
}

// LeerConfiguracion es la variante de CargarConfiguracion que devuelve el error
func LeerConfiguracion[T any](ruta string) (*T, error) {
	InfoLog.Info("Cargando configuración", "ruta", ruta)

	absPath, err := filepath.Abs(ruta)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo ruta absoluta %s: %w", ruta, err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("error abriendo archivo de configuración %s: %w", absPath, err)
	}
	defer file.Close()

	// Decodificar JSON directamente al tipo genérico
	var config T
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("error decodificando configuración %s: %w", absPath, err)
	}

	InfoLog.Info("Configuración cargada correctamente", "ruta", absPath)
	return &config, nil
}

// ============================================================================
// Constantes para tipos de mensajes entre módulos
// ============================================================================
const (
	// === COMUNICACIÓN BÁSICA (1-9) ===
	MensajeHandshake = 1 // Conexión inicial
	MensajeOperacion = 2 // Operaciones genéricas

	// === SISTEMA DE ARCHIVOS (10-19) ===
	MensajeCrearArchivo    = 10 // Create(nombre, tamaño)
	MensajeAbrirArchivo    = 11 // Open(nombre)
	MensajeLeerArchivo     = 12 // ReadAt(fd, cantidad, posición)
	MensajeEscribirArchivo = 13 // WriteAt(fd, datos, posición)
	MensajeCerrarArchivo   = 14 // Close(fd)
	MensajeBorrarArchivo   = 15 // Remove(nombre)
	MensajeListarArchivos  = 16 // Listado del directorio
	MensajeCopiarArchivo   = 17 // Copia desde el host

	// === MEMORIA VIRTUAL (20-29) ===
	MensajeFalloPagina     = 20 // LoadPageFault(dirección virtual)
	MensajeLeerMemoria     = 21 // Lectura por dirección virtual
	MensajeEscribirMemoria = 22 // Escritura por dirección virtual
	MensajeMemoryDump      = 23 // Volcado de memoria
	MensajeMetricas        = 24 // Métricas por proceso
	MensajeEspacioLibre    = 25 // Marcos y sectores libres

	// === GESTIÓN DE PROCESOS (30-39) ===
	MensajeEjecutarProceso  = 30 // Exec(programa)
	MensajeForkProceso      = 31 // Fork
	MensajeFinalizarProceso = 32 // Exit
	MensajeCambiarProceso   = 33 // Cambio de contexto
)
