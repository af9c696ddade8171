package mailer

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"
)

var (
	errNoRecipient = errors.New("mailer: at least one recipient required")
	errNoFrom      = errors.New("mailer: from address required")
	errNoSubject   = errors.New("mailer: subject required")
	errNoBody      = errors.New("mailer: text or html body required")
)

func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), addr)
}

func newMessageID(domain string) string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return fmt.Sprintf("<%s@%s>", hex.EncodeToString(b), domain)
}

func validate(m Message) error {
	switch {
	case len(m.To) == 0:
		return errNoRecipient
	case m.From == "":
		return errNoFrom
	case m.Subject == "":
		return errNoSubject
	case m.TextBody == "" && m.HTMLBody == "":
		return errNoBody
	}
	for _, addr := range append([]string{m.From, m.ReplyTo}, m.To...) {
		if strings.ContainsAny(addr, "\r\n") {
			return fmt.Errorf("mailer: invalid address %q", addr)
		}
	}
	return nil
}

// buildMIME renders m as an RFC 5322 message. Bodies are quoted-printable;
// attachments make it multipart/mixed around a multipart/alternative body.
func buildMIME(m Message, messageIDDomain string, now time.Time) ([]byte, error) {
	if err := validate(m); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writeHeader := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	writeHeader("Date", now.Format(time.RFC1123Z))
	writeHeader("Message-ID", newMessageID(messageIDDomain))
	writeHeader("From", formatAddress(m.FromName, m.From))
	writeHeader("To", strings.Join(m.To, ", "))
	if m.ReplyTo != "" {
		writeHeader("Reply-To", m.ReplyTo)
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	writeHeader("MIME-Version", "1.0")

	if len(m.Attachments) == 0 {
		if err := writeBody(&buf, m); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	mixed := multipart.NewWriter(&buf)
	writeHeader("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", mixed.Boundary()))
	buf.WriteString("\r\n")

	var body bytes.Buffer
	if err := writeBody(&body, m); err != nil {
		return nil, err
	}
	hdr, content, _ := bytes.Cut(body.Bytes(), []byte("\r\n\r\n"))
	part, err := mixed.CreatePart(parseHeader(string(hdr)))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}

	for _, a := range m.Attachments {
		if err := writeAttachment(mixed, a); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBody writes the Content-Type header block and the text and/or html body
func writeBody(buf *bytes.Buffer, m Message) error {
	if m.TextBody != "" && m.HTMLBody != "" {
		alt := multipart.NewWriter(buf)
		fmt.Fprintf(buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", alt.Boundary())
		if err := writeTextPart(alt, "text/plain", m.TextBody); err != nil {
			return err
		}
		if err := writeTextPart(alt, "text/html", m.HTMLBody); err != nil {
			return err
		}
		return alt.Close()
	}

	contentType, body := "text/plain", m.TextBody
	if m.TextBody == "" {
		contentType, body = "text/html", m.HTMLBody
	}
	fmt.Fprintf(buf, "Content-Type: %s; charset=UTF-8\r\nContent-Transfer-Encoding: quoted-printable\r\n\r\n", contentType)
	qp := quotedprintable.NewWriter(buf)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func writeTextPart(w *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+"; charset=UTF-8")
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func writeAttachment(w *multipart.Writer, a Attachment) error {
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "base64")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(a.Data)
	for len(encoded) > 76 {
		if _, err := part.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err = part.Write([]byte(encoded + "\r\n"))
	return err
}

func parseHeader(block string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	for _, line := range strings.Split(block, "\r\n") {
		k, v, ok := strings.Cut(line, ":")
		if ok {
			h.Set(strings.TrimSpace(k), strings.TrimSpace(v))
		}
	}
	return h
}
