// Package dto define los contratos JSON de la API administrativa.
package dto

// ErrorResponse respuesta de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LoginRequest credenciales del administrador.
type LoginRequest struct {
	AdminKey string `json:"admin_key"`
}

// LoginResponse token de acceso emitido.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // segundos
}

// RegisterEmployeeRequest alta de técnico.
type RegisterEmployeeRequest struct {
	FullName string `json:"full_name"`
}

// EmployeeResponse técnico con sus saldos.
type EmployeeResponse struct {
	ID                 string `json:"id"`
	FullName           string `json:"full_name"`
	FiberBalance       string `json:"fiber_balance"`
	TwistedPairBalance string `json:"twisted_pair_balance"`
	CreatedAt          string `json:"created_at"`
}

// AddMaterialRequest carga de metros al saldo de un técnico.
type AddMaterialRequest struct {
	Fiber       string `json:"fiber"`        // metros, decimal como string
	TwistedPair string `json:"twisted_pair"` // metros, decimal como string
}

// AddRoutersRequest carga de unidades de un modelo de router.
type AddRoutersRequest struct {
	RouterModel string `json:"router_model"`
	Quantity    int    `json:"quantity"`
}

// RouterResponse conteo de un modelo en poder de un técnico.
type RouterResponse struct {
	RouterModel string `json:"router_model"`
	Quantity    int    `json:"quantity"`
}

// BalancesResponse saldos tras una operación de inventario.
type BalancesResponse struct {
	Fiber       string `json:"fiber"`
	TwistedPair string `json:"twisted_pair"`
}

// MovementResponse una entrada del libro de movimientos.
type MovementResponse struct {
	ID           string  `json:"id"`
	Operation    string  `json:"operation"`
	ItemType     string  `json:"item_type"`
	ItemName     string  `json:"item_name"`
	Quantity     string  `json:"quantity"`
	BalanceAfter string  `json:"balance_after"`
	ConnectionID *string `json:"connection_id,omitempty"`
	CreatedBy    string  `json:"created_by"`
	CreatedAt    string  `json:"created_at"`
}

// CrewMemberResponse integrante de la cuadrilla de una instalación.
type CrewMemberResponse struct {
	EmployeeID string `json:"employee_id,omitempty"`
	FullName   string `json:"full_name"`
}

// ConnectionResponse instalación registrada.
type ConnectionResponse struct {
	ID                string               `json:"id"`
	Type              string               `json:"type"`
	Address           string               `json:"address"`
	RouterModel       string               `json:"router_model,omitempty"`
	RouterQuantity    int                  `json:"router_quantity,omitempty"`
	RouterAccess      bool                 `json:"router_access"`
	Port              string               `json:"port,omitempty"`
	FiberMeters       string               `json:"fiber_meters"`
	TwistedPairMeters string               `json:"twisted_pair_meters"`
	ContractSigned    bool                 `json:"contract_signed"`
	CreatedAt         string               `json:"created_at"`
	CreatedBy         string               `json:"created_by"`
	MaterialPayerID   *string              `json:"material_payer_id,omitempty"`
	RouterPayerID     *string              `json:"router_payer_id,omitempty"`
	Crew              []CrewMemberResponse `json:"crew"`
	Photos            []string             `json:"photos"`
}
