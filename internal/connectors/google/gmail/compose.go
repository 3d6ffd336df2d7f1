package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/redoffice/internal/core/domain"
)

// lineLength is the RFC 2045 limit for base64 encoded lines.
const lineLength = 76

// Attachment is a file attached to a composed message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an email to be composed into RFC 5322 form.
type Message struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	HTML        bool
	Attachments []Attachment
}

// AttachFile reads path and attaches it, guessing the content type from its
// extension.
func (m *Message) AttachFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read attachment: %v", domain.ErrInvalidInput, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	m.Attachments = append(m.Attachments, Attachment{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	})
	return nil
}

// Bytes renders the message. Messages with attachments are multipart/mixed.
func (m *Message) Bytes() ([]byte, error) {
	if len(m.To) == 0 && len(m.Cc) == 0 && len(m.Bcc) == 0 {
		return nil, fmt.Errorf("%w: message has no recipients", domain.ErrInvalidInput)
	}
	for _, addr := range m.recipients() {
		if _, err := mail.ParseAddress(addr); err != nil {
			return nil, fmt.Errorf("%w: recipient %q: %v", domain.ErrInvalidInput, addr, err)
		}
	}

	var buf bytes.Buffer
	writeHeader(&buf, "From", m.From)
	writeHeader(&buf, "To", strings.Join(m.To, ", "))
	writeHeader(&buf, "Cc", strings.Join(m.Cc, ", "))
	writeHeader(&buf, "Bcc", strings.Join(m.Bcc, ", "))
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	writeHeader(&buf, "MIME-Version", "1.0")

	if len(m.Attachments) == 0 {
		writeHeader(&buf, "Content-Type", m.bodyType())
		writeHeader(&buf, "Content-Transfer-Encoding", "quoted-printable")
		buf.WriteString("\r\n")
		if err := writeQuotedPrintable(&buf, m.Body); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	writeHeader(&buf, "Content-Type", mime.FormatMediaType("multipart/mixed",
		map[string]string{"boundary": mw.Boundary()}))
	buf.WriteString("\r\n")

	body, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {m.bodyType()},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeQuotedPrintable(body, m.Body); err != nil {
		return nil, err
	}

	for _, a := range m.Attachments {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type": {mime.FormatMediaType(a.ContentType, map[string]string{"name": a.Filename})},
			"Content-Disposition": {mime.FormatMediaType("attachment",
				map[string]string{"filename": a.Filename})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64Lines(part, a.Data); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode renders the message as Gmail's URL-safe base64 raw form.
func (m *Message) Encode() (string, error) {
	raw, err := m.Bytes()
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

func (m *Message) bodyType() string {
	subtype := "plain"
	if m.HTML {
		subtype = "html"
	}
	return mime.FormatMediaType("text/"+subtype, map[string]string{"charset": "utf-8"})
}

func (m *Message) recipients() []string {
	all := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	all = append(all, m.To...)
	all = append(all, m.Cc...)
	return append(all, m.Bcc...)
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	if value == "" {
		return
	}
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

func writeQuotedPrintable(w io.Writer, s string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(s)); err != nil {
		return err
	}
	return qp.Close()
}

func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(lineLength, len(encoded))
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
