package core

import (
	"errors"
	"fmt"
)

// Errors surfaced to family members. Each maps to a fixed Spanish message
// through UserMessage; details stay in the logs.
var (
	ErrExtractionFailed      = errors.New("extraction returned no usable amount")
	ErrExtractionUnavailable = errors.New("extraction service unavailable")
	ErrNoCategories          = errors.New("no categories available")
	ErrIncompleteData        = errors.New("incomplete expense data")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUnknownUser           = errors.New("unknown family member")
)

const (
	MsgExtractionFailed      = `No pude entender el gasto. Intenta algo como: "Gasté 50.000 en supermercado"`
	MsgExtractionUnavailable = "Error al procesar con IA. Verifica tu conexión."
	MsgNoCategories          = "No hay categorías configuradas."
	MsgIncompleteData        = "Datos incompletos."
	MsgInvalidAmount         = "Monto inválido. Escribe solo números, sin puntos de miles (por ejemplo 50000); el punto o la coma se leen como decimales."
	MsgInvalidCredentials    = "Correo o contraseña incorrectos."
	MsgUnknownUser           = "Miembro de la familia desconocido."
	MsgGeneric               = "Algo salió mal. Intenta de nuevo."
)

// ConfirmationRequiredError is returned by destructive operations invoked
// without an explicit confirmation.
type ConfirmationRequiredError struct {
	Prompt string
}

func (e *ConfirmationRequiredError) Error() string {
	return "confirmation required: " + e.Prompt
}

// DeleteCategoryPrompt is the question shown before removing a category.
func DeleteCategoryPrompt(name string) string {
	return fmt.Sprintf("¿Eliminar la categoría \"%s\"?", name)
}

// UserMessage returns the message a family member sees for err.
func UserMessage(err error) string {
	var confirm *ConfirmationRequiredError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &confirm):
		return confirm.Prompt
	case errors.Is(err, ErrExtractionFailed):
		return MsgExtractionFailed
	case errors.Is(err, ErrExtractionUnavailable):
		return MsgExtractionUnavailable
	case errors.Is(err, ErrNoCategories):
		return MsgNoCategories
	case errors.Is(err, ErrInvalidAmount):
		return MsgInvalidAmount
	case errors.Is(err, ErrIncompleteData),
		errors.Is(err, ErrEmptyDescription),
		errors.Is(err, ErrEmptyCategory),
		errors.Is(err, ErrEmptyName),
		errors.Is(err, ErrNegativeBudget),
		errors.Is(err, ErrInvalidDate):
		return MsgIncompleteData
	case errors.Is(err, ErrInvalidCredentials):
		return MsgInvalidCredentials
	case errors.Is(err, ErrUnknownUser):
		return MsgUnknownUser
	default:
		return MsgGeneric
	}
}
