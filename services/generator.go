package services

import (
	"context"

	"reachly/models"
)

// TemplateGenerator is the text-generation collaborator: it turns a
// free-text instruction (plus an optional sample contact for context) into
// a subject/body template pair. Invoked only when a template is authored,
// never on the send path.
type TemplateGenerator interface {
	GenerateTemplate(ctx context.Context, instruction string, sample *models.Contact) (subject, body string, err error)
}
