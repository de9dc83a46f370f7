package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/csr-compliance-api/internal/models"
	"github.com/noah-isme/csr-compliance-api/pkg/client"
	"github.com/noah-isme/csr-compliance-api/pkg/viewstate"
)

var (
	colorCompliant    = lipgloss.Color("#2ECC71")
	colorNonCompliant = lipgloss.Color("#E74C3C")
	colorPending      = lipgloss.Color("#F4D03F")
	colorMuted        = lipgloss.Color("#7F8C8D")
)

var styles = struct {
	Title     lipgloss.Style
	Group     lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Compliant lipgloss.Style
	Failing   lipgloss.Style
	Pending   lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true),
	Group:     lipgloss.NewStyle().Bold(true).Underline(true),
	Muted:     lipgloss.NewStyle().Foreground(colorMuted),
	Error:     lipgloss.NewStyle().Foreground(colorNonCompliant),
	Compliant: lipgloss.NewStyle().Foreground(colorCompliant),
	Failing:   lipgloss.NewStyle().Foreground(colorNonCompliant),
	Pending:   lipgloss.NewStyle().Foreground(colorPending),
}

func renderStatus(s models.Status) string {
	switch s {
	case models.StatusCompliant:
		return styles.Compliant.Render(string(s))
	case models.StatusNonCompliant:
		return styles.Failing.Render(string(s))
	default:
		return styles.Pending.Render(string(s))
	}
}

// readFailure is the user-facing message for a failed listing.
func readFailure(what string, err error) string {
	if errors.Is(err, client.ErrFormat) {
		return styles.Error.Render("Unexpected response format")
	}
	return styles.Error.Render(fmt.Sprintf("Failed to fetch %s", what))
}

func renderRequirements(w io.Writer, reqs []models.Requirement) {
	if len(reqs) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("No requirements."))
		return
	}
	for _, req := range reqs {
		compliant, total, ratio := viewstate.ComplianceRatio(req.Documents)
		fmt.Fprintf(w, "%s %s  %s  %s\n",
			styles.Muted.Render(fmt.Sprintf("#%d", req.ID)),
			styles.Title.Render(req.Name),
			renderStatus(req.Status),
			styles.Muted.Render(fmt.Sprintf("%d/%d documents compliant (%.0f%%)", compliant, total, ratio*100)),
		)
		if req.Description != "" {
			fmt.Fprintf(w, "    %s\n", req.Description)
		}
	}
}

func renderDocuments(w io.Writer, groups []viewstate.Group, state viewstate.State) {
	if len(groups) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("No documents."))
		return
	}
	for _, group := range groups {
		fmt.Fprintln(w, styles.Group.Render(fmt.Sprintf("Requirement %d", group.RequirementID)))
		if !state.DocumentsVisible[group.RequirementID] {
			fmt.Fprintf(w, "  %s\n", styles.Muted.Render(fmt.Sprintf("%d documents hidden", len(group.Documents))))
			continue
		}
		for _, doc := range group.Documents {
			fmt.Fprintf(w, "  %s %s  %s\n", styles.Muted.Render(fmt.Sprintf("#%d", doc.ID)), doc.Name, renderStatus(doc.Status))
			displayed := state.DisplayedVersions(doc)
			if len(displayed) == 0 {
				fmt.Fprintf(w, "    %s\n", styles.Muted.Render("no active versions"))
				continue
			}
			for _, v := range displayed {
				fmt.Fprintf(w, "    v%-3s %s  %s  %s\n", v.Version, renderStatus(v.Status), fileLabel(v), styles.Muted.Render(fmt.Sprintf("id %d", v.ID)))
			}
			if hidden := len(viewstate.ActiveVersions(doc)) - len(displayed); hidden > 0 {
				fmt.Fprintf(w, "    %s\n", styles.Muted.Render(fmt.Sprintf("+%d older versions (--all-versions)", hidden)))
			}
		}
	}
}

func fileLabel(v models.DocumentVersion) string {
	if viewstate.FileState(v) == viewstate.HasFile {
		parts := strings.Split(v.Path, "/")
		return parts[len(parts)-1]
	}
	return styles.Muted.Render("no file")
}
