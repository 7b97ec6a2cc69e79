package emailalert

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
)

// Message is one alert email, bodies already decoded from MIME.
type Message struct {
	Subject string
	From    string
	Date    time.Time
	HTML    string
	Text    string
}

// Inbox abstracts the mail account so the adapter is testable without a
// live IMAP server.
type Inbox interface {
	// Fetch returns messages from any of the given senders received at or
	// after since, newest first, at most max.
	Fetch(ctx context.Context, senders []string, since time.Time, max int) ([]Message, error)
}

// IMAPInbox reads alerts over IMAP with TLS.
type IMAPInbox struct {
	Addr     string // host:port
	Host     string // for SNI
	Username string
	Password string
	Mailbox  string
}

var _ Inbox = (*IMAPInbox)(nil)

func (in *IMAPInbox) Fetch(ctx context.Context, senders []string, since time.Time, max int) ([]Message, error) {
	if in.Addr == "" {
		return nil, errors.New("imap addr is required")
	}
	if in.Username == "" || in.Password == "" {
		return nil, errors.New("imap username/password is required")
	}
	if max <= 0 {
		max = 50
	}

	c, err := imapclient.DialTLS(in.Addr, &imapclient.Options{
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: in.Host,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}
	defer func() { _ = c.Close() }()

	// Best-effort close on context cancel.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(in.Username, in.Password).Wait(); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	defer func() { _ = c.Logout().Wait() }()

	mailbox := in.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", mailbox, err)
	}

	uids, err := searchSenders(c, senders, since)
	if err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		return []Message{}, nil
	}

	// Newest first, capped.
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > max {
		uids = uids[:max]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	out := make([]Message, 0, len(uids))
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var m Message
		if buf.Envelope != nil {
			m.Subject = buf.Envelope.Subject
			m.Date = buf.Envelope.Date
			if len(buf.Envelope.From) > 0 {
				m.From = buf.Envelope.From[0].Addr()
			}
		}
		if raw := buf.FindBodySection(bodyAll); len(raw) > 0 {
			m.HTML, m.Text = decodeBodies(raw)
		}
		out = append(out, m)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

// searchSenders runs one UID search per sender and unions the results.
// IMAP OR trees get unwieldy past two terms; sequential searches are
// simpler and the sender list is short.
func searchSenders(c *imapclient.Client, senders []string, since time.Time) ([]imap.UID, error) {
	seen := map[imap.UID]struct{}{}
	var uids []imap.UID

	for _, from := range senders {
		criteria := &imap.SearchCriteria{
			Since: since,
			Header: []imap.SearchCriteriaHeaderField{
				{Key: "From", Value: from},
			},
		}
		data, err := c.UIDSearch(criteria, nil).Wait()
		if err != nil {
			return nil, fmt.Errorf("imap uid search from %s: %w", from, err)
		}
		for _, uid := range data.AllUIDs() {
			if _, ok := seen[uid]; ok {
				continue
			}
			seen[uid] = struct{}{}
			uids = append(uids, uid)
		}
	}
	return uids, nil
}

// decodeBodies walks the MIME tree and pulls out the html and plain
// text parts, charset-decoded.
func decodeBodies(raw []byte) (html, text string) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		// Non-MIME message: treat the whole body as plain text.
		if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
			return "", string(raw[i+4:])
		}
		return "", ""
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, err := h.ContentType()
		if err != nil {
			continue
		}
		b, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}
		switch strings.ToLower(ct) {
		case "text/html":
			if html == "" {
				html = string(b)
			}
		case "text/plain":
			if text == "" {
				text = string(b)
			}
		}
	}
	return html, text
}
