package models

import "errors"

// Sentinel errors shared by every workflow. Controllers translate them to
// HTTP status codes; anything else is reported as an internal error.
var (
	ErrNotFound          = errors.New("registro no encontrado")
	ErrInvalidState      = errors.New("operacion no valida en el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidQuantity   = errors.New("cantidad no valida")
	ErrDuplicate         = errors.New("registro duplicado")
	ErrUnauthorized      = errors.New("no tiene permisos para esta operacion")
)
