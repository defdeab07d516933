package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const welcomeHTML = `<!doctype html>
<html><body style="font-family:sans-serif">
<h1>Welcome to {{.Product}}, {{.Name}}!</h1>
<p>Your account for <strong>{{.Email}}</strong> is ready.</p>
<p>If you did not sign up, you can ignore this message.</p>
</body></html>`

const welcomeText = `Welcome to {{.Product}}, {{.Name}}!

Your account for {{.Email}} is ready.
If you did not sign up, you can ignore this message.
`

var (
	welcomeHTMLTmpl = htmltemplate.Must(htmltemplate.New("welcome.html").Parse(welcomeHTML))
	welcomeTextTmpl = texttemplate.Must(texttemplate.New("welcome.txt").Parse(welcomeText))
)

// WelcomeData fills the welcome template.
type WelcomeData struct {
	Product string
	Name    string
	Email   string
}

// Welcome renders the message sent after registration.
func Welcome(data WelcomeData) (Message, error) {
	if data.Name == "" {
		data.Name = "there"
	}

	var html, text bytes.Buffer
	if err := welcomeHTMLTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to render welcome html: %w", err)
	}
	if err := welcomeTextTmpl.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("failed to render welcome text: %w", err)
	}

	return Message{
		To:       data.Email,
		Subject:  fmt.Sprintf("Welcome to %s", data.Product),
		HTMLBody: html.String(),
		TextBody: text.String(),
		Tag:      "welcome",
	}, nil
}
