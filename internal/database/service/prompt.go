package service

import (
	"fmt"

	"github.com/avisgenius/backend-go/internal/database/models"
)

// toneDescriptor maps an establishment's configured tone to the instruction
// given to the generator.
func toneDescriptor(tone models.AiTone) string {
	switch tone {
	case models.ToneFormal:
		return "formel et professionnel"
	case models.ToneFriendly:
		return "chaleureux et amical"
	default:
		return "professionnel mais accessible"
	}
}

// defaultSignature is used when the establishment has no signature template.
func defaultSignature(establishmentName string) string {
	return fmt.Sprintf("Cordialement, L'équipe %s", establishmentName)
}

// BuildPrompt assembles the generation prompt for a review response. Pure
// function: the tone mapping, signature defaulting and rating rules live here
// so they are testable without calling the generator.
func BuildPrompt(est *models.Establishment, review *models.Review) string {
	tone := toneDescriptor(est.AiTone)

	signature := defaultSignature(est.Name)
	if est.SignatureTemplate != nil && *est.SignatureTemplate != "" {
		signature = *est.SignatureTemplate
	}

	content := "Pas de commentaire"
	if review.Content != nil && *review.Content != "" {
		content = *review.Content
	}

	return fmt.Sprintf(`Tu es un assistant qui rédige des réponses aux avis Google My Business pour "%s".

Ton: %s
Signature à utiliser: %s

Avis client:
- Auteur: %s
- Note: %d/5 étoiles
- Contenu: "%s"

Règles:
- Réponse en français, 2-4 phrases maximum
- Personnalise avec le prénom du client
- Si avis négatif (1-2 étoiles): excuse-toi, propose une solution, invite à recontacter
- Si avis positif (4-5 étoiles): remercie chaleureusement, invite à revenir
- Si avis neutre (3 étoiles): remercie, demande comment améliorer
- Termine par la signature

Génère uniquement la réponse, sans guillemets ni explications.`,
		est.Name, tone, signature, review.AuthorName, review.Rating, content)
}

// ClassifySentiment derives the triage sentiment from the rating.
func ClassifySentiment(rating int) models.Sentiment {
	switch {
	case rating <= 2:
		return models.SentimentUrgent
	case rating >= 4:
		return models.SentimentPositive
	default:
		return models.SentimentNeutral
	}
}
