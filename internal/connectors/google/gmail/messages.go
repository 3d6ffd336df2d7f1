// Package gmail implements message, attachment and draft operations on the
// Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/redoffice/internal/connectors/google"
	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
)

// DefaultUser is the authenticated user.
const DefaultUser = "me"

// Mail performs Gmail operations for one session.
type Mail struct {
	svc    *gmail.Service
	user   string
	logger driven.Logger
}

// New creates a Mail client acting as the authenticated user.
func New(svc *gmail.Service, logger driven.Logger) *Mail {
	if logger == nil {
		logger = driven.NopLogger{}
	}
	return &Mail{svc: svc, user: DefaultUser, logger: logger}
}

// List returns one page of message references matching opts.
func (m *Mail) List(ctx context.Context, opts ListOptions) (*gmail.ListMessagesResponse, error) {
	call := m.svc.Users.Messages.List(m.user).IncludeSpamTrash(opts.IncludeSpamTrash)

	if opts.Query != "" {
		call = call.Q(opts.Query)
	}
	if len(opts.LabelIDs) > 0 {
		call = call.LabelIds(opts.LabelIDs...)
	}
	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", google.WrapError(err))
	}
	return resp, nil
}

// Get returns a message in the given format (full when empty).
func (m *Mail) Get(ctx context.Context, id, format string) (*gmail.Message, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: message id is required", domain.ErrInvalidInput)
	}

	call := m.svc.Users.Messages.Get(m.user, id)
	if format != "" {
		call = call.Format(format)
	}
	msg, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, google.WrapError(err))
	}
	return msg, nil
}

// Attachment downloads and decodes a message attachment.
func (m *Mail) Attachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if messageID == "" || attachmentID == "" {
		return nil, fmt.Errorf("%w: message id and attachment id are required", domain.ErrInvalidInput)
	}

	body, err := m.svc.Users.Messages.Attachments.Get(m.user, messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", google.WrapError(err))
	}

	data, err := DecodeData(body.Data)
	if err != nil {
		return nil, fmt.Errorf("decode attachment: %w", err)
	}
	return data, nil
}

// CreateDraft composes msg and stores it as a draft.
func (m *Mail) CreateDraft(ctx context.Context, msg *Message) (*gmail.Draft, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	raw, err := msg.Encode()
	if err != nil {
		return nil, err
	}

	draft, err := m.svc.Users.Drafts.Create(m.user, &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", google.WrapError(err))
	}

	m.logger.Info("Created draft %s", draft.Id)
	return draft, nil
}

// DecodeData decodes Gmail's URL-safe base64 body data, padded or not.
func DecodeData(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
