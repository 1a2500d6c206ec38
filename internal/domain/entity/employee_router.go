package entity

// EmployeeRouter es el conteo de unidades de un modelo de router en poder de
// un técnico. La fila se elimina cuando el conteo llega a cero; la comparación
// de modelos es por cadena exacta, sin normalización.
type EmployeeRouter struct {
	EmployeeID  string
	RouterModel string
	Quantity    int
}
