package utils

import (
	"strings"

	"reachly/models"
)

// TemplateContext is the closed set of personalization fields substituted
// into subject/body text. Substitution is a pure function of (template,
// context); storage representation never leaks in here.
type TemplateContext struct {
	FirstName      string
	LastName       string
	FullName       string
	CompanyName    string
	CompanyWebsite string
	JobTitle       string
	Industry       string
	City           string
	Country        string
	LinkedinURL    string
}

// ContactContext builds a TemplateContext from a contact row.
func ContactContext(contact *models.Contact) TemplateContext {
	return TemplateContext{
		FirstName:      contact.FirstName,
		LastName:       contact.LastName,
		FullName:       contact.FullName,
		CompanyName:    contact.CompanyName,
		CompanyWebsite: contact.CompanyWebsite,
		JobTitle:       contact.JobTitle,
		Industry:       contact.Industry,
		City:           contact.City,
		Country:        contact.Country,
		LinkedinURL:    contact.LinkedinURL,
	}
}

// Personalize substitutes the known {{token}} placeholders in content.
// Missing fields fall back to a neutral default rather than an empty
// greeting ("Hi ," reads badly; "Hi there," does not). Unknown tokens are
// left verbatim so a template typo never blocks a send.
func Personalize(content string, ctx TemplateContext) string {
	replacer := strings.NewReplacer(
		"{{first_name}}", defaultIfEmpty(ctx.FirstName, "there"),
		"{{last_name}}", ctx.LastName,
		"{{full_name}}", ctx.FullName,
		"{{company_name}}", defaultIfEmpty(ctx.CompanyName, "your company"),
		"{{company_website}}", ctx.CompanyWebsite,
		"{{job_title}}", ctx.JobTitle,
		"{{industry}}", ctx.Industry,
		"{{city}}", ctx.City,
		"{{country}}", ctx.Country,
		"{{linkedin_url}}", ctx.LinkedinURL,
	)
	return replacer.Replace(content)
}

func defaultIfEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
