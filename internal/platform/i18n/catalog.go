package i18n

import "golang.org/x/text/language"

var messages = map[string]map[language.Tag]string{
	"no_file_selected": {
		language.English: "Please select a file first.",
		language.Spanish: "Primero selecciona un archivo.",
		language.French:  "Veuillez d'abord sélectionner un fichier.",
	},
	"no_question_type": {
		language.English: "Please select at least one question type.",
		language.Spanish: "Selecciona al menos un tipo de pregunta.",
		language.French:  "Veuillez sélectionner au moins un type de question.",
	},
	"unsupported_file_type": {
		language.English: "Only PDF, DOCX and PPTX files are supported.",
		language.Spanish: "Solo se admiten archivos PDF, DOCX y PPTX.",
		language.French:  "Seuls les fichiers PDF, DOCX et PPTX sont pris en charge.",
	},
	"generation_taking_long": {
		language.English: "Generation is taking unusually long. Please check back in a few minutes.",
		language.Spanish: "La generación está tardando más de lo habitual. Vuelve a comprobarlo en unos minutos.",
		language.French:  "La génération prend un temps inhabituellement long. Revenez dans quelques minutes.",
	},
	"generation_failed": {
		language.English: "Generation failed. Please try again.",
		language.Spanish: "La generación falló. Inténtalo de nuevo.",
		language.French:  "La génération a échoué. Veuillez réessayer.",
	},
	"remote_job_error": {
		language.English: "The generator could not process this file. Please try again.",
		language.Spanish: "El generador no pudo procesar este archivo. Inténtalo de nuevo.",
		language.French:  "Le générateur n'a pas pu traiter ce fichier. Veuillez réessayer.",
	},
	"network_error": {
		language.English: "Could not reach the generation service. Please try again.",
		language.Spanish: "No se pudo contactar con el servicio de generación. Inténtalo de nuevo.",
		language.French:  "Impossible de joindre le service de génération. Veuillez réessayer.",
	},
	"poll_failed": {
		language.English: "We could not check on your generation. Please try again.",
		language.Spanish: "No pudimos comprobar el estado de la generación. Inténtalo de nuevo.",
		language.French:  "Impossible de vérifier l'état de la génération. Veuillez réessayer.",
	},
	"plan_limit_reached": {
		language.English: "You have reached the limit of your plan. Upgrade to premium for more.",
		language.Spanish: "Has alcanzado el límite de tu plan. Pásate a premium para obtener más.",
		language.French:  "Vous avez atteint la limite de votre forfait. Passez à premium pour en obtenir plus.",
	},
	"file_too_large": {
		language.English: "This file exceeds the upload limit of your plan.",
		language.Spanish: "Este archivo supera el límite de subida de tu plan.",
		language.French:  "Ce fichier dépasse la limite de téléversement de votre forfait.",
	},
	"not_found": {
		language.English: "Not found.",
		language.Spanish: "No encontrado.",
		language.French:  "Introuvable.",
	},
	"internal_error": {
		language.English: "Something went wrong. Please try again.",
		language.Spanish: "Algo salió mal. Inténtalo de nuevo.",
		language.French:  "Une erreur est survenue. Veuillez réessayer.",
	},
	"invalid_body": {
		language.English: "The request could not be read.",
		language.Spanish: "No se pudo leer la solicitud.",
		language.French:  "La requête n'a pas pu être lue.",
	},
	"shutting_down": {
		language.English: "The service is restarting. Please try again shortly.",
		language.Spanish: "El servicio se está reiniciando. Inténtalo de nuevo en breve.",
		language.French:  "Le service redémarre. Veuillez réessayer dans un instant.",
	},
	"billing_unavailable": {
		language.English: "Payments are not available right now.",
		language.Spanish: "Los pagos no están disponibles en este momento.",
		language.French:  "Les paiements ne sont pas disponibles pour le moment.",
	},
}
