package pack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jd-hilo/unreal/internal/store"
)

// NoProfilePlaceholder is returned instead of an error when the user has no
// profile yet, so a brand-new account can still run the pipeline.
const NoProfilePlaceholder = "No profile data available yet."

const maxSectionEntries = 5

// BuildCorePack renders the durable identity document: identity facts, core
// values, key relationships, career summary, and motivation, in that fixed
// order. Sections with no data are omitted entirely. The output is a pure
// function of stored state.
func (b *Builder) BuildCorePack(ctx context.Context, userID uuid.UUID) (string, error) {
	profile, err := b.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return NoProfilePlaceholder, nil
	}
	if err != nil {
		return "", fmt.Errorf("build core pack: %w", err)
	}

	relationships, err := b.store.GetRelationships(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("build core pack: %w", err)
	}
	career, err := b.store.GetCareerEntries(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("build core pack: %w", err)
	}

	var sections []string
	if s := identitySection(profile); s != "" {
		sections = append(sections, s)
	}
	if s := valuesSection(profile); s != "" {
		sections = append(sections, s)
	}
	if s := relationshipsSection(relationships); s != "" {
		sections = append(sections, s)
	}
	if s := careerSection(career); s != "" {
		sections = append(sections, s)
	}
	if motivation := profile.Core["motivation"]; motivation != "" {
		sections = append(sections, "What drives them: "+motivation)
	}

	return strings.Join(sections, "\n\n"), nil
}

func identitySection(p *store.Profile) string {
	var lines []string
	if v := p.Core["age_range"]; v != "" {
		lines = append(lines, "- Age: "+v)
	}
	if v := p.Core["city"]; v != "" {
		lines = append(lines, "- Location: "+v)
	}
	if role := p.Core["role"]; role != "" {
		line := "- Role: " + role
		if emp := p.Core["employment_type"]; emp != "" {
			line += " (" + emp + ")"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return ""
	}
	return "IDENTITY:\n" + strings.Join(lines, "\n")
}

func valuesSection(p *store.Profile) string {
	values := p.Values
	if len(values) == 0 {
		return ""
	}
	if len(values) > maxSectionEntries {
		values = values[:maxSectionEntries]
	}
	return "CORE VALUES: " + strings.Join(values, ", ")
}

func relationshipsSection(relationships []store.Relationship) string {
	if len(relationships) == 0 {
		return ""
	}
	if len(relationships) > maxSectionEntries {
		relationships = relationships[:maxSectionEntries]
	}

	var lines []string
	for _, r := range relationships {
		parts := []string{r.Name}
		if r.RelType != "" {
			parts = append(parts, r.RelType)
		}
		if r.YearsKnown > 0 {
			parts = append(parts, fmt.Sprintf("%dy", r.YearsKnown))
		}
		if r.ContactFrequency != "" {
			parts = append(parts, r.ContactFrequency)
		}
		parts = append(parts, fmt.Sprintf("influence: %.1f", r.Influence))
		lines = append(lines, "- "+strings.Join(parts, ", "))
	}
	return "KEY RELATIONSHIPS:\n" + strings.Join(lines, "\n")
}

func careerSection(entries []store.CareerEntry) string {
	if len(entries) == 0 {
		return ""
	}
	if len(entries) > maxSectionEntries {
		entries = entries[:maxSectionEntries]
	}

	var lines []string
	for _, e := range entries {
		line := "- " + e.Title
		if e.Company != "" {
			line += " at " + e.Company
		}
		end := "present"
		if e.EndedOn != nil {
			end = fmt.Sprintf("%d", e.EndedOn.Year())
		}
		line += fmt.Sprintf(" (%d - %s)", e.StartedOn.Year(), end)
		if e.Satisfaction > 0 {
			line += fmt.Sprintf(" satisfaction: %d/5", e.Satisfaction)
		}
		lines = append(lines, line)
	}
	return "CAREER SUMMARY:\n" + strings.Join(lines, "\n")
}
