package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/redoffice/internal/connectors/google"
	"github.com/custodia-labs/redoffice/internal/connectors/google/gmail"
	"github.com/custodia-labs/redoffice/internal/core/domain"
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Read Gmail messages and compose drafts",
	Long: `List and read Gmail messages, download attachments and create drafts.

Examples:
  redoffice mail list --query "has:attachment from:a@example.com" --max 10
  redoffice mail get <message-id>
  redoffice mail attachment <message-id> <attachment-id> -o report.pdf
  redoffice mail draft --to a@example.com --subject Report --body "See attached" --attach data.csv`,
}

var mailListCmd = &cobra.Command{
	Use:   "list",
	Short: "List messages matching a query",
	Args:  cobra.NoArgs,
	RunE:  runMailList,
}

var mailGetCmd = &cobra.Command{
	Use:   "get [message-id]",
	Short: "Show one message",
	Args:  cobra.ExactArgs(1),
	RunE:  runMailGet,
}

var mailAttachmentCmd = &cobra.Command{
	Use:   "attachment [message-id] [attachment-id]",
	Short: "Download a decoded attachment",
	Args:  cobra.ExactArgs(2),
	RunE:  runMailAttachment,
}

var mailDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Create a draft, optionally with attachments",
	Args:  cobra.NoArgs,
	RunE:  runMailDraft,
}

// Flags for mail commands.
var (
	mailList   gmail.ListOptions
	mailLabels string
	mailFormat string
	mailOutput string

	draftFrom     string
	draftTo       []string
	draftCc       []string
	draftBcc      []string
	draftSubject  string
	draftBody     string
	draftBodyFile string
	draftHTML     bool
	draftAttach   []string
)

func init() {
	defaults := gmail.DefaultListOptions()
	flags := mailListCmd.Flags()
	flags.StringVar(&mailList.Query, "query", "", "Gmail search query")
	flags.StringVar(&mailLabels, "labels", "", "comma separated label IDs, e.g. INBOX,UNREAD")
	flags.Int64Var(&mailList.MaxResults, "max", defaults.MaxResults, "maximum messages to return")
	flags.BoolVar(&mailList.IncludeSpamTrash, "include-spam-trash", false, "include spam and trash")
	flags.StringVar(&mailList.PageToken, "page-token", "", "continue a previous listing")

	mailGetCmd.Flags().StringVar(&mailFormat, "format", gmail.FormatFull, "full, metadata, minimal or raw")

	mailAttachmentCmd.Flags().StringVarP(&mailOutput, "output", "o", "", "write to file instead of stdout")

	flags = mailDraftCmd.Flags()
	flags.StringVar(&draftFrom, "from", "", "sender address")
	flags.StringSliceVar(&draftTo, "to", nil, "recipient addresses")
	flags.StringSliceVar(&draftCc, "cc", nil, "cc addresses")
	flags.StringSliceVar(&draftBcc, "bcc", nil, "bcc addresses")
	flags.StringVar(&draftSubject, "subject", "", "subject line")
	flags.StringVar(&draftBody, "body", "", "message body")
	flags.StringVar(&draftBodyFile, "body-file", "", "read the body from a file (- for stdin)")
	flags.BoolVar(&draftHTML, "html", false, "send the body as text/html")
	flags.StringArrayVar(&draftAttach, "attach", nil, "file to attach (repeatable)")

	mailCmd.AddCommand(mailListCmd)
	mailCmd.AddCommand(mailGetCmd)
	mailCmd.AddCommand(mailAttachmentCmd)
	mailCmd.AddCommand(mailDraftCmd)
	rootCmd.AddCommand(mailCmd)
}

// withMail runs fn with a Mail client for a mail session.
func withMail(cmd *cobra.Command, fn func(m *gmail.Mail) error) error {
	return withSession(cmd, domain.ServiceMail, func(a *app, s *domain.Session) error {
		svc, err := google.GmailFrom(s)
		if err != nil {
			return err
		}
		return fn(gmail.New(svc, a.logger))
	})
}

func runMailList(cmd *cobra.Command, _ []string) error {
	opts := mailList
	opts.LabelIDs = gmail.ParseLabels(mailLabels)

	return withMail(cmd, func(m *gmail.Mail) error {
		resp, err := m.List(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), resp)
	})
}

func runMailGet(cmd *cobra.Command, args []string) error {
	return withMail(cmd, func(m *gmail.Mail) error {
		msg, err := m.Get(cmd.Context(), args[0], mailFormat)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), msg)
	})
}

func runMailAttachment(cmd *cobra.Command, args []string) error {
	return withMail(cmd, func(m *gmail.Mail) error {
		data, err := m.Attachment(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if mailOutput == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(mailOutput, data, 0o600); err != nil {
			return fmt.Errorf("write attachment: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"status": "success",
			"path":   mailOutput,
			"bytes":  len(data),
		})
	})
}

func runMailDraft(cmd *cobra.Command, _ []string) error {
	msg, err := buildDraft(cmd)
	if err != nil {
		return err
	}

	return withMail(cmd, func(m *gmail.Mail) error {
		draft, err := m.CreateDraft(cmd.Context(), msg)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), draft)
	})
}

// buildDraft assembles the message from flags before any session is opened.
func buildDraft(cmd *cobra.Command) (*gmail.Message, error) {
	body := draftBody
	if draftBodyFile != "" {
		data, err := readInput(cmd, draftBodyFile)
		if err != nil {
			return nil, err
		}
		body = string(data)
	}

	msg := &gmail.Message{
		From:    draftFrom,
		To:      draftTo,
		Cc:      draftCc,
		Bcc:     draftBcc,
		Subject: draftSubject,
		Body:    body,
		HTML:    draftHTML,
	}
	for _, path := range draftAttach {
		if err := msg.AttachFile(path); err != nil {
			return nil, err
		}
	}
	// Render once so bad addresses fail before authorization.
	if _, err := msg.Bytes(); err != nil {
		return nil, err
	}
	return msg, nil
}
