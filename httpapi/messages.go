package httpapi

import (
	"errors"
	"net/http"

	"rentflow/auth"
	"rentflow/contract"
	"rentflow/maintenance"
	"rentflow/notification"
	"rentflow/payment"
	"rentflow/property"
	"rentflow/tenant"
)

// The outward-facing message catalogue. Internal errors are technical English;
// everything a user sees is rewritten here, with a generic per-status fallback
// for conditions the catalogue does not name.
var sentinelMessages = []struct {
	err     error
	message string
}{
	{auth.ErrInvalidCredentials, "Email ou mot de passe incorrect."},
	{auth.ErrWeakPassword, "Le mot de passe doit contenir au moins 8 caractères."},
	{auth.ErrTokenRevoked, "Votre session a expiré, veuillez vous reconnecter."},
	{auth.ErrDuplicateEmail, "Un compte existe déjà avec cette adresse email."},
	{auth.ErrUserNotFound, "Utilisateur introuvable."},
	{tenant.ErrDuplicateEmail, "Un locataire existe déjà avec cette adresse email."},
	{tenant.ErrTenantNotFound, "Locataire introuvable."},
	{property.ErrPropertyNotFound, "Bien introuvable."},
	{contract.ErrContractNotFound, "Contrat introuvable."},
	{contract.ErrPropertyNotFound, "Bien introuvable."},
	{contract.ErrPropertyUnavailable, "Ce bien n'est pas disponible à la location."},
	{contract.ErrInvalidTransition, "Cette opération n'est pas possible dans l'état actuel du contrat."},
	{contract.ErrNotOwned, "Vous n'avez pas accès à ce contrat."},
	{payment.ErrPaymentNotFound, "Paiement introuvable."},
	{payment.ErrDuplicatePeriod, "Un paiement existe déjà pour ce mois."},
	{maintenance.ErrRequestNotFound, "Demande d'intervention introuvable."},
	{notification.ErrNotificationNotFound, "Notification introuvable."},
}

var statusMessages = map[int]string{
	http.StatusBadRequest:            "Requête invalide.",
	http.StatusUnauthorized:          "Authentification requise.",
	http.StatusForbidden:             "Accès refusé.",
	http.StatusNotFound:              "Ressource introuvable.",
	http.StatusConflict:              "Conflit avec l'état actuel de la ressource.",
	http.StatusRequestEntityTooLarge: "Fichier trop volumineux.",
	http.StatusUnsupportedMediaType:  "Format de fichier non pris en charge.",
	http.StatusInternalServerError:   "Une erreur interne est survenue, veuillez réessayer.",
}

// userMessage localizes err for the given status, falling back to the generic
// per-status text for unrecognized errors.
func userMessage(err error, status int) string {
	for _, entry := range sentinelMessages {
		if errors.Is(err, entry.err) {
			return entry.message
		}
	}
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return statusMessages[http.StatusInternalServerError]
}
