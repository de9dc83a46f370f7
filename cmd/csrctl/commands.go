package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/csr-compliance-api/internal/models"
	"github.com/noah-isme/csr-compliance-api/pkg/client"
)

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func parseStatus(raw string) (models.Status, error) {
	status := models.Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("status must be %s or %s", models.StatusCompliant, models.StatusNonCompliant)
	}
	return status, nil
}

func requirementsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "requirements", Aliases: []string{"req"}, Short: "List and update requirements"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List requirements with their compliance ratio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := newClient().ListRequirements(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), readFailure("requirements", err))
				return err
			}
			renderRequirements(cmd.OutOrStdout(), reqs)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status <id> <compliant|non-compliant>",
		Short: "Set a requirement's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			if err := newClient().UpdateRequirementStatus(cmd.Context(), id, status); err != nil {
				return fail(cmd, "update requirement status", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requirement %d is now %s\n", id, renderStatus(status))
			return nil
		},
	})
	return cmd
}

func documentsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "documents", Aliases: []string{"docs"}, Short: "List and update documents"}

	var (
		requirement uint
		allVersions bool
		expandAll   bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List documents grouped by requirement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := client.DocumentFilter{}
			if requirement > 0 {
				filter.RequirementID = &requirement
			}
			session := client.NewSession(newClient(), filter)
			if err := session.Reload(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), readFailure("documents", err))
				return err
			}
			groups := session.Groups()
			if expandAll {
				for _, g := range groups {
					if !session.State().DocumentsVisible[g.RequirementID] {
						session.ToggleDocuments(g.RequirementID)
					}
				}
			}
			if allVersions {
				for _, doc := range session.Documents() {
					session.ToggleAllVersions(doc.ID)
				}
			}
			renderDocuments(cmd.OutOrStdout(), groups, session.State())
			return nil
		},
	}
	list.Flags().UintVar(&requirement, "requirement", 0, "only documents of this requirement")
	list.Flags().BoolVar(&allVersions, "all-versions", false, "show every active version, not just the latest")
	list.Flags().BoolVar(&expandAll, "expand", false, "show documents of every requirement group")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "status <id> <compliant|non-compliant>",
		Short: "Set a document's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			if err := newClient().UpdateDocumentStatus(cmd.Context(), id, status); err != nil {
				return fail(cmd, "update document status", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Document %d is now %s\n", id, renderStatus(status))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := newClient().ArchiveDocument(cmd.Context(), id); err != nil {
				return fail(cmd, "archive document", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Document %d archived\n", id)
			return nil
		},
	})
	return cmd
}

func versionsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "versions", Aliases: []string{"ver"}, Short: "Create, update and attach files to versions"}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <documentID>",
		Short: "Create the next version of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docID, err := parseID(args[0])
			if err != nil {
				return err
			}
			id, err := newClient().CreateVersion(cmd.Context(), docID)
			if err != nil {
				return fail(cmd, "create version", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created version %d under document %d\n", id, docID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status <versionID> <compliant|non-compliant>",
		Short: "Set a version's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			if err := newClient().UpdateVersionStatus(cmd.Context(), id, status); err != nil {
				return fail(cmd, "update version status", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version %d is now %s\n", id, renderStatus(status))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "archive <versionID>",
		Short: "Archive a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := newClient().ArchiveVersion(cmd.Context(), id); err != nil {
				return fail(cmd, "archive version", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version %d archived\n", id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upload <versionID> <file>",
		Short: "Attach a file to a version, replacing any existing file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := newClient().AttachFile(cmd.Context(), id, filepath.Base(args[1]), f); err != nil {
				return fail(cmd, "upload file", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s to version %d\n", filepath.Base(args[1]), id)
			return nil
		},
	})
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv>",
		Short: "Bulk import requirements and documents from CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			result, err := newClient().ImportCSV(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return fail(cmd, "import", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d requirements, %d documents, %d versions\n", result.Requirements, result.Documents, result.Versions)
			for _, skip := range result.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", styles.Muted.Render(fmt.Sprintf("line %d skipped: %s", skip.Line, skip.Reason)))
			}
			return nil
		},
	}
}
