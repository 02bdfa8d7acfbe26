package eml

import (
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// ErrNoTextBody means the message has no text/plain or text/html part
var ErrNoTextBody = errors.New("email has no readable text body")

var (
	tagPattern   = regexp.MustCompile(`(?s)<[^>]*>`)
	blankPattern = regexp.MustCompile(`\n{3,}`)
)

// Message is the readable part of an uploaded .eml file
type Message struct {
	Subject string
	From    string
	Date    time.Time
	Body    string
}

// Parse reads an RFC 5322 message and extracts its text body.
// A text/plain part wins over text/html; attachments are skipped.
func Parse(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		if !message.IsUnknownCharset(err) {
			return nil, fmt.Errorf("failed to read email: %w", err)
		}
		log.Printf("[EML] Unknown charset in header, continuing: %v", err)
	}

	msg := &Message{}
	if msg.Subject, err = mr.Header.Subject(); err != nil {
		msg.Subject = mr.Header.Get("Subject")
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = formatAddress(from[0])
	} else {
		msg.From = mr.Header.Get("From")
	}
	if date, err := mr.Header.Date(); err == nil {
		msg.Date = date
	}

	var plain, html string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return nil, fmt.Errorf("failed to read email part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		b, err := io.ReadAll(p.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read email part: %w", err)
		}

		switch contentType {
		case "text/plain", "":
			if plain == "" {
				plain = string(b)
			}
		case "text/html":
			if html == "" {
				html = string(b)
			}
		}
	}

	switch {
	case strings.TrimSpace(plain) != "":
		msg.Body = normalizeNewlines(plain)
	case strings.TrimSpace(html) != "":
		msg.Body = htmlToText(html)
	default:
		return nil, ErrNoTextBody
	}
	return msg, nil
}

// Text returns subject and sender above the body, ready to use as email input
func (m *Message) Text() string {
	var sb strings.Builder
	if m.Subject != "" {
		sb.WriteString("件名: " + m.Subject + "\n")
	}
	if m.From != "" {
		sb.WriteString("差出人: " + m.From + "\n")
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(m.Body)
	return sb.String()
}

// net/mail would MIME-encode a Japanese display name
func formatAddress(a *mail.Address) string {
	if a.Name == "" {
		return a.Address
	}
	return a.Name + " <" + a.Address + ">"
}

func normalizeNewlines(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}

func htmlToText(s string) string {
	s = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "\n", "</div>", "\n").Replace(s)
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`).Replace(s)
	s = normalizeNewlines(s)
	return blankPattern.ReplaceAllString(s, "\n\n")
}
