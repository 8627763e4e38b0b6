package utils

import (
	"strings"
	"testing"

	"reachly/models"
)

func TestPersonalize(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ctx     TemplateContext
		want    string
	}{
		{
			name:    "substitutes known tokens",
			content: "Hi {{first_name}}, greetings from us to {{company_name}}!",
			ctx:     TemplateContext{FirstName: "Ada", CompanyName: "Initech"},
			want:    "Hi Ada, greetings from us to Initech!",
		},
		{
			name:    "missing first name falls back to there",
			content: "Hi {{first_name}},",
			ctx:     TemplateContext{},
			want:    "Hi there,",
		},
		{
			name:    "missing company falls back to your company",
			content: "How is {{company_name}} doing?",
			ctx:     TemplateContext{FirstName: "Ada"},
			want:    "How is your company doing?",
		},
		{
			name:    "fields without fallback go empty",
			content: "Role: {{job_title}}.",
			ctx:     TemplateContext{},
			want:    "Role: .",
		},
		{
			name:    "unknown token left verbatim",
			content: "Hi {{first_name}}, ref {{order_number}}",
			ctx:     TemplateContext{FirstName: "Ada"},
			want:    "Hi Ada, ref {{order_number}}",
		},
		{
			name:    "repeated token substituted everywhere",
			content: "{{first_name}} {{first_name}}",
			ctx:     TemplateContext{FirstName: "Ada"},
			want:    "Ada Ada",
		},
		{
			name:    "no tokens passes through",
			content: "plain text",
			ctx:     TemplateContext{FirstName: "Ada"},
			want:    "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Personalize(tt.content, tt.ctx)
			if got != tt.want {
				t.Errorf("Personalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContactContext(t *testing.T) {
	contact := &models.Contact{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		FullName:    "Ada Lovelace",
		CompanyName: "Analytical Engines",
		JobTitle:    "Engineer",
		City:        "London",
	}

	ctx := ContactContext(contact)

	got := Personalize("{{full_name}}, {{job_title}} at {{company_name}} in {{city}}", ctx)
	want := "Ada Lovelace, Engineer at Analytical Engines in London"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPersonalizeIsPure(t *testing.T) {
	ctx := TemplateContext{FirstName: "Ada"}
	content := "Hi {{first_name}}"
	first := Personalize(content, ctx)
	second := Personalize(content, ctx)
	if first != second {
		t.Errorf("same inputs gave %q then %q", first, second)
	}
	if !strings.Contains(content, "{{first_name}}") {
		t.Error("input content was mutated")
	}
}
