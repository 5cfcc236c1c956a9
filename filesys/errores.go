package filesys

import "errors"

var (
	ErrNoEncontrado      = errors.New("archivo inexistente")
	ErrYaExiste          = errors.New("el archivo ya existe")
	ErrFueraDeRango      = errors.New("acceso fuera del largo del archivo")
	ErrDirectorioLleno   = errors.New("no hay entradas libres en el directorio")
	ErrArchivoMuyGrande  = errors.New("el archivo excede la capacidad del header")
	ErrNombreInvalido    = errors.New("nombre de archivo inválido")
	ErrArgumentoInvalido = errors.New("argumentos de lectura/escritura inválidos")
)
