// Package i18n renders the short status messages shown to the user.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a user-facing message. The English text doubles as the key.
type Key = string

// Sales messages
const (
	MsgDishesLoadFailed  = "Could not load the available dishes"
	MsgSalesLoadFailed   = "Could not load the sales"
	MsgNoSalesForDate    = "No sales recorded for this date yet"
	MsgNoDishes          = "No dishes registered yet"
	MsgSelectDish        = "A dish must be selected"
	MsgQuantityPositive  = "Quantity must be greater than 0"
	MsgDishAlreadySold   = "This dish already has a sale recorded on this date"
	MsgSaleCreated       = "Sale recorded successfully"
	MsgSaleUpdated       = "Sale updated successfully"
	MsgSaleCreateFailed  = "Could not record the sale"
	MsgSaleUpdateFailed  = "Could not update the sale"
	MsgSaleDeleted       = "Sale deleted successfully"
	MsgSaleDeleteFailed  = "Could not delete the sale"
	MsgConfirmDeleteSale = "Are you sure you want to delete the sale of %s?"
	MsgDishNotFound      = "Dish not found"
)

// Purchase messages
const (
	MsgPurchasesLoadFailed   = "Could not load the purchases"
	MsgNoPurchasesForMonth   = "No purchases recorded for %s %s"
	MsgFormInvalid           = "Please complete all required fields."
	MsgNoValidIngredient     = "At least one valid ingredient must be added."
	MsgPurchaseCreated       = "Purchase recorded successfully"
	MsgPurchaseUpdated       = "Purchase updated successfully"
	MsgPurchaseCreateFailed  = "Could not record the purchase"
	MsgPurchaseUpdateFailed  = "Could not update the purchase"
	MsgPurchaseDeleted       = "Purchase deleted successfully"
	MsgPurchaseDeleteFailed  = "Could not delete the purchase"
	MsgInvalidMonth          = "Select a valid month"
	MsgConfirmDeletePurchase = "Are you sure you want to delete this purchase?"
)

// Shared and account messages
const (
	MsgNoCurrentUser       = "Could not determine the current user"
	MsgBusy                = "Another operation is still in progress"
	MsgSessionExpired      = "Your session has expired, please sign in again"
	MsgLoginInvalidForm    = "Please fill in all fields correctly."
	MsgLoginBadCredentials = "Incorrect credentials. Try again."
	MsgLoginFailed         = "Could not sign in. Try again."
	MsgRegisterEmailTaken  = "An account with this email already exists."
	MsgRegisterFailed      = "Could not create the account. Try again."
	MsgRecoverySent        = "A recovery link was sent to %s. Check your inbox and spam folder."
	MsgRecoveryUnknown     = "We could not find an account for this email address."
	MsgRecoveryCooldown    = "You can request another email in %d seconds."
	MsgRecoveryFailed      = "Could not verify the email. Try again later."
	MsgDishNameTaken       = "A dish with this name already exists."
)

var spanish = map[Key]string{
	MsgDishesLoadFailed:  "Error al cargar los platos disponibles",
	MsgSalesLoadFailed:   "Error al cargar las ventas",
	MsgNoSalesForDate:    "No se han registrado ventas aún para esta fecha",
	MsgNoDishes:          "No hay platos registrados aún",
	MsgSelectDish:        "Debe seleccionar un plato",
	MsgQuantityPositive:  "La cantidad debe ser mayor a 0",
	MsgDishAlreadySold:   "Este plato ya tiene una venta registrada en esta fecha",
	MsgSaleCreated:       "Venta registrada correctamente",
	MsgSaleUpdated:       "Venta actualizada correctamente",
	MsgSaleCreateFailed:  "Error al registrar la venta",
	MsgSaleUpdateFailed:  "Error al actualizar la venta",
	MsgSaleDeleted:       "Venta eliminada correctamente",
	MsgSaleDeleteFailed:  "Error al eliminar la venta",
	MsgConfirmDeleteSale: "¿Está seguro de eliminar la venta de %s?",
	MsgDishNotFound:      "Plato no encontrado",

	MsgPurchasesLoadFailed:   "Error al cargar las compras",
	MsgNoPurchasesForMonth:   "No hay compras registradas para %s %s",
	MsgFormInvalid:           "Por favor, complete todos los campos requeridos.",
	MsgNoValidIngredient:     "Debe agregar al menos un insumo válido.",
	MsgPurchaseCreated:       "Compra registrada correctamente",
	MsgPurchaseUpdated:       "Compra actualizada correctamente",
	MsgPurchaseCreateFailed:  "Error al registrar la compra",
	MsgPurchaseUpdateFailed:  "Error al actualizar la compra",
	MsgPurchaseDeleted:       "Compra eliminada correctamente",
	MsgPurchaseDeleteFailed:  "Error al eliminar la compra",
	MsgInvalidMonth:          "Seleccione un mes válido",
	MsgConfirmDeletePurchase: "¿Está seguro de eliminar esta compra?",

	MsgNoCurrentUser:       "No se pudo determinar el usuario actual",
	MsgBusy:                "Hay otra operación en curso",
	MsgSessionExpired:      "Su sesión expiró, inicie sesión nuevamente",
	MsgLoginInvalidForm:    "Por favor, completa todos los campos correctamente.",
	MsgLoginBadCredentials: "Credenciales incorrectas. Intenta nuevamente.",
	MsgLoginFailed:         "Error al iniciar sesión. Intenta nuevamente.",
	MsgRegisterEmailTaken:  "Ya existe una cuenta con este correo electrónico.",
	MsgRegisterFailed:      "Error al crear la cuenta. Intenta nuevamente.",
	MsgRecoverySent:        "Se ha enviado un enlace de recuperación a %s. Revisa tu bandeja de entrada y spam.",
	MsgRecoveryUnknown:     "No encontramos una cuenta asociada a este correo electrónico.",
	MsgRecoveryCooldown:    "Podrás solicitar otro correo en %d segundos.",
	MsgRecoveryFailed:      "Ocurrió un error al verificar el correo. Inténtalo más tarde.",
	MsgDishNameTaken:       "Ya existe un plato con este nombre.",
}

var monthNames = map[language.Tag][12]string{
	language.English: {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	language.Spanish: {
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	},
}

var supported = []language.Tag{language.Spanish, language.English}

var matcher = language.NewMatcher(supported)

var messages = buildCatalog()

// Translator formats messages for one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a translator for lang ("es", "en", or any BCP 47 tag).
// Unsupported languages fall back to Spanish.
func New(lang string) *Translator {
	tag := language.Spanish
	if parsed, err := language.Parse(lang); err == nil {
		_, idx, conf := matcher.Match(parsed)
		if conf != language.No {
			tag = supported[idx]
		}
	}

	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(messages)),
	}
}

// Language returns the language the translator renders.
func (t *Translator) Language() language.Tag {
	return t.tag
}

// Sprintf renders key with args in the translator's language.
func (t *Translator) Sprintf(key Key, args ...any) string {
	return t.printer.Sprintf(key, args...)
}

// MonthName returns the name of month (1-12), or "" when out of range.
func (t *Translator) MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[t.tag][month-1]
}

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for key, text := range spanish {
		_ = b.SetString(language.Spanish, key, text)
		_ = b.SetString(language.English, key, key)
	}
	return b
}
