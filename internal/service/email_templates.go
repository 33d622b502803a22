package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// Email bodies are written in markdown: the source doubles as the plaintext
// part and goldmark renders the HTML part. User-supplied values go through
// escapeMarkdown so they render as literal text.
var emailMarkdown = goldmark.New()

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "{", `\{`, "}", `\}`,
	"[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`, "#", `\#`, "+", `\+`,
	"-", `\-`, ".", `\.`, "!", `\!`, "<", `\<`, ">", `\>`, "|", `\|`,
	"~", `\~`, "&", `\&`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func renderEmail(to, subject, body string) (Email, error) {
	var html bytes.Buffer
	err := emailMarkdown.Convert([]byte(body), &html)
	if err != nil {
		return Email{}, fmt.Errorf("failed to render email: %w", err)
	}

	return Email{
		To:      to,
		Subject: subject,
		HTML:    html.String(),
		Text:    body,
	}, nil
}

func verifyEmailTemplate(to, username, verifyURL, appName string, expiry time.Duration) (Email, error) {
	subject := fmt.Sprintf("Verify your email for %s", appName)
	body := fmt.Sprintf(`Hi %s,

Thanks for signing up. Please confirm your email address by opening this link:

<%s>

This link expires in %s.

If you didn't create an account, you can safely ignore this email.

Best,
The %s Team
`, escapeMarkdown(username), verifyURL, humanizeDuration(expiry), appName)

	return renderEmail(to, subject, body)
}

func resetPasswordEmailTemplate(to, username, resetURL, appName string, expiry time.Duration) (Email, error) {
	subject := fmt.Sprintf("Reset your password for %s", appName)
	body := fmt.Sprintf(`Hi %s,

We received a request to reset your password. Choose a new one here:

<%s>

This link expires in %s.

If you didn't request this, you can safely ignore this email. Your password won't be changed.

Best,
The %s Team
`, escapeMarkdown(username), resetURL, humanizeDuration(expiry), appName)

	return renderEmail(to, subject, body)
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
